package websocket

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionSwitchesRooms(t *testing.T) {
	hub := NewHub(nil)
	r := &recorder{}
	s := NewSession(hub, uuid.New(), r)
	r1, r2 := uuid.New(), uuid.New()

	s.Subscribe(r1)
	s.Subscribe(r2)

	room, ok := s.Room()
	require.True(t, ok)
	assert.Equal(t, r2, room)
	assert.Equal(t, 0, hub.Subscribers(RoomTopic(r1)))
	assert.Equal(t, 1, hub.Subscribers(RoomTopic(r2)))

	require.NoError(t, hub.Publish(context.Background(), RoomTopic(r1), NewDeletedEvent(r1, 1)))
	require.NoError(t, hub.Publish(context.Background(), RoomTopic(r2), NewDeletedEvent(r2, 2)))
	events := r.all()
	require.Len(t, events, 1)
	assert.Equal(t, r2, events[0].RoomID)
}

func TestSessionResubscribeSameRoom(t *testing.T) {
	hub := NewHub(nil)
	s := NewSession(hub, uuid.New(), &recorder{})
	room := uuid.New()

	s.Subscribe(room)
	s.Subscribe(room)
	assert.Equal(t, 1, hub.Subscribers(RoomTopic(room)))
}

func TestSessionUnsubscribeIdempotent(t *testing.T) {
	hub := NewHub(nil)
	s := NewSession(hub, uuid.New(), &recorder{})
	room := uuid.New()

	s.Unsubscribe()

	s.Subscribe(room)
	s.Unsubscribe()
	s.Unsubscribe()

	_, ok := s.Room()
	assert.False(t, ok)
	assert.Equal(t, 0, hub.Subscribers(RoomTopic(room)))
}
