package websocket

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thereayou/chitchat/internal/models"
)

func TestRedisRelayForwardsToLocalHub(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(nil)
	relay := NewRedisRelay(rdb, hub, nil)
	require.NoError(t, relay.Start(ctx))

	room := uuid.New()
	got := make(chan Event, 1)
	hub.Subscribe(RoomTopic(room), ListenerFunc(func(ev Event) { got <- ev }))

	msg := &models.Message{ID: 42, RoomID: room, SenderID: uuid.New(), Content: "hi", Type: models.MessageText}
	require.NoError(t, relay.Publish(ctx, RoomTopic(room), NewMessageEvent(EventMessageReceived, msg)))

	select {
	case ev := <-got:
		assert.Equal(t, EventMessageReceived, ev.Kind)
		assert.Equal(t, room, ev.RoomID)
		require.NotNil(t, ev.Message)
		assert.Equal(t, "hi", ev.Message.Content)
	case <-time.After(2 * time.Second):
		t.Fatal("event was not relayed")
	}
}

func TestRedisRelayStartFailsWhenRedisDown(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = rdb.Close() })
	mr.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	relay := NewRedisRelay(rdb, NewHub(nil), nil)
	assert.Error(t, relay.Start(ctx))
}
