package handlers

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thereayou/chitchat/internal/handlers/dto"
	"github.com/thereayou/chitchat/internal/models"
	"github.com/thereayou/chitchat/internal/services"
	"github.com/thereayou/chitchat/internal/websocket"
)

func frame(t *testing.T, typ websocket.MessageType, roomID *uuid.UUID, data any) *websocket.Message {
	t.Helper()
	msg := &websocket.Message{Type: typ, RoomID: roomID}
	if data != nil {
		raw, err := json.Marshal(data)
		require.NoError(t, err)
		msg.Data = raw
	}
	return msg
}

func TestMessageHandlerRoomCommands(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	alice := e.user(t, "alice")
	bob := e.user(t, "bob")
	carol := e.user(t, "carol")

	room := &models.Room{Name: "team", IsGroup: true, CreatedBy: alice}
	require.NoError(t, e.db.CreateRoomWithParticipants(ctx, room, []uuid.UUID{alice, bob}))
	roomID := room.ID

	h := NewMessageHandler(e.db, e.chat)
	bobClient := websocket.NewClient(e.hub, nil, bob, nil)
	carolClient := websocket.NewClient(e.hub, nil, carol, nil)

	err := h.HandleMessage(ctx, carolClient, frame(t, websocket.TypeRoomJoin, &roomID, nil))
	assert.ErrorIs(t, err, websocket.ErrUserNotInRoom)

	missing := uuid.New()
	err = h.HandleMessage(ctx, bobClient, frame(t, websocket.TypeRoomJoin, &missing, nil))
	assert.ErrorIs(t, err, services.ErrNotFound)

	require.NoError(t, h.HandleMessage(ctx, bobClient, frame(t, websocket.TypeRoomJoin, &roomID, nil)))
	joined, ok := bobClient.Session().Room()
	require.True(t, ok)
	assert.Equal(t, roomID, joined)
	assert.Equal(t, 1, e.hub.Subscribers(websocket.RoomTopic(roomID)))

	require.NoError(t, h.HandleMessage(ctx, bobClient, frame(t, websocket.TypeRoomLeave, nil, nil)))
	_, ok = bobClient.Session().Room()
	assert.False(t, ok)
	assert.Equal(t, 0, e.hub.Subscribers(websocket.RoomTopic(roomID)))

	err = h.HandleMessage(ctx, bobClient, frame(t, "dance", nil, nil))
	assert.ErrorIs(t, err, websocket.ErrUnknownCommand)
}

func TestMessageHandlerMessageCommands(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	alice := e.user(t, "alice")
	bob := e.user(t, "bob")

	room := &models.Room{Name: "team", IsGroup: true, CreatedBy: alice}
	require.NoError(t, e.db.CreateRoomWithParticipants(ctx, room, []uuid.UUID{alice, bob}))
	roomID := room.ID

	h := NewMessageHandler(e.db, e.chat)
	aliceClient := websocket.NewClient(e.hub, nil, alice, nil)
	bobClient := websocket.NewClient(e.hub, nil, bob, nil)

	err := h.HandleMessage(ctx, aliceClient, frame(t, websocket.TypeMessage, nil, dto.MessagePayload{Content: "hi"}))
	assert.ErrorIs(t, err, websocket.ErrInvalidMessage)

	require.NoError(t, h.HandleMessage(ctx, aliceClient, frame(t, websocket.TypeMessage, &roomID, dto.MessagePayload{Content: "hi"})))
	msgs, err := e.db.GetMessagesForRoom(ctx, roomID, 1, 10)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	id := msgs[0].ID

	err = h.HandleMessage(ctx, bobClient, frame(t, websocket.TypeMessageEdit, nil, dto.EditPayload{MessageID: id, Content: "nope"}))
	assert.ErrorIs(t, err, services.ErrForbidden)
	require.NoError(t, h.HandleMessage(ctx, aliceClient, frame(t, websocket.TypeMessageEdit, nil, dto.EditPayload{MessageID: id, Content: "hello"})))

	require.NoError(t, h.HandleMessage(ctx, bobClient, frame(t, websocket.TypeMessageRead, nil, dto.MessageRef{MessageID: id})))
	status, err := e.db.GetMessageStatus(ctx, id, bob)
	require.NoError(t, err)
	require.NotNil(t, status)
	assert.Equal(t, models.StatusRead, status.Status)

	got, err := e.db.GetMessage(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "hello", got.Content)
	assert.NotNil(t, got.EditedAt)
	assert.True(t, got.IsRead)

	require.NoError(t, h.HandleMessage(ctx, aliceClient, frame(t, websocket.TypeMessageDelete, nil, dto.MessageRef{MessageID: id})))
	got, err = e.db.GetMessage(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, got)
}
