package handlers

import (
	"context"
	"encoding/json"

	"github.com/thereayou/chitchat/internal/database"
	"github.com/thereayou/chitchat/internal/handlers/dto"
	"github.com/thereayou/chitchat/internal/services"
	"github.com/thereayou/chitchat/internal/websocket"
)

// MessageHandler обрабатывает команды клиента, пришедшие по websocket
type MessageHandler struct {
	db   *database.Database
	chat *services.ChatService
}

func NewMessageHandler(db *database.Database, chat *services.ChatService) *MessageHandler {
	return &MessageHandler{
		db:   db,
		chat: chat,
	}
}

var _ websocket.ClientMessageHandler = (*MessageHandler)(nil)

func (h *MessageHandler) HandleMessage(ctx context.Context, client *websocket.Client, msg *websocket.Message) error {
	switch msg.Type {
	case websocket.TypeRoomJoin:
		return h.handleRoomJoin(ctx, client, msg)

	case websocket.TypeRoomLeave:
		return h.handleRoomLeave(client)

	case websocket.TypeMessage:
		return h.handleTextMessage(ctx, client, msg)

	case websocket.TypeMessageEdit:
		return h.handleMessageEdit(ctx, client, msg)

	case websocket.TypeMessageDelete:
		return h.handleMessageDelete(ctx, client, msg)

	case websocket.TypeMessageRead:
		return h.handleMessageRead(ctx, client, msg)

	default:
		return websocket.ErrUnknownCommand
	}
}

// handleRoomJoin переводит сессию в комнату; прежняя подписка снимается
func (h *MessageHandler) handleRoomJoin(ctx context.Context, client *websocket.Client, msg *websocket.Message) error {
	if msg.RoomID == nil {
		return websocket.ErrInvalidMessage
	}
	roomID := *msg.RoomID

	room, err := h.db.GetRoom(ctx, roomID)
	if err != nil {
		return err
	}
	if room == nil || room.IsDeleted {
		return services.ErrNotFound
	}
	member, err := h.db.IsMember(ctx, roomID, client.UserID)
	if err != nil {
		return err
	}
	if !member {
		return websocket.ErrUserNotInRoom
	}

	client.Session().Subscribe(roomID)
	return client.SendMessage(websocket.TypeRoomJoined, &roomID, dto.NewRoomResponse(room))
}

func (h *MessageHandler) handleRoomLeave(client *websocket.Client) error {
	roomID, ok := client.Session().Room()
	client.Session().Unsubscribe()
	if !ok {
		return client.SendMessage(websocket.TypeRoomLeft, nil, nil)
	}
	return client.SendMessage(websocket.TypeRoomLeft, &roomID, nil)
}

// handleTextMessage пишет сообщение; событие придёт подписчикам через ChatService
func (h *MessageHandler) handleTextMessage(ctx context.Context, client *websocket.Client, msg *websocket.Message) error {
	if msg.RoomID == nil {
		return websocket.ErrInvalidMessage
	}

	var payload dto.MessagePayload
	if err := json.Unmarshal(msg.Data, &payload); err != nil {
		return websocket.ErrInvalidMessage
	}

	_, err := h.chat.Send(ctx, services.SendInput{
		RoomID:   *msg.RoomID,
		SenderID: client.UserID,
		Content:  payload.Content,
		Type:     payload.Type,
		Metadata: payload.Metadata,
	})
	return err
}

func (h *MessageHandler) handleMessageEdit(ctx context.Context, client *websocket.Client, msg *websocket.Message) error {
	var payload dto.EditPayload
	if err := json.Unmarshal(msg.Data, &payload); err != nil || payload.MessageID == 0 {
		return websocket.ErrInvalidMessage
	}

	_, err := h.chat.EditMessage(ctx, client.UserID, payload.MessageID, payload.Content)
	return err
}

func (h *MessageHandler) handleMessageDelete(ctx context.Context, client *websocket.Client, msg *websocket.Message) error {
	var payload dto.MessageRef
	if err := json.Unmarshal(msg.Data, &payload); err != nil || payload.MessageID == 0 {
		return websocket.ErrInvalidMessage
	}
	return h.chat.DeleteMessage(ctx, client.UserID, payload.MessageID).Err()
}

func (h *MessageHandler) handleMessageRead(ctx context.Context, client *websocket.Client, msg *websocket.Message) error {
	var payload dto.MessageRef
	if err := json.Unmarshal(msg.Data, &payload); err != nil || payload.MessageID == 0 {
		return websocket.ErrInvalidMessage
	}
	return h.chat.MarkRead(ctx, client.UserID, payload.MessageID).Err()
}
