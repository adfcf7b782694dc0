package websocket

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/thereayou/chitchat/internal/models"
)

const topicPrefix = "room_"

type EventKind string

const (
	EventMessageReceived EventKind = "message_received"
	EventMessageUpdated  EventKind = "message_updated"
	EventMessageDeleted  EventKind = "message_deleted"
)

// Event изменение в ленте комнаты. Для удаления Message == nil, есть только MessageID.
type Event struct {
	Kind      EventKind       `json:"kind"`
	RoomID    uuid.UUID       `json:"room_id"`
	MessageID int64           `json:"message_id"`
	Message   *models.Message `json:"message,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

func NewMessageEvent(kind EventKind, msg *models.Message) Event {
	return Event{
		Kind:      kind,
		RoomID:    msg.RoomID,
		MessageID: msg.ID,
		Message:   msg,
		Timestamp: time.Now().UTC(),
	}
}

func NewDeletedEvent(roomID uuid.UUID, messageID int64) Event {
	return Event{
		Kind:      EventMessageDeleted,
		RoomID:    roomID,
		MessageID: messageID,
		Timestamp: time.Now().UTC(),
	}
}

// RoomTopic ключ подписки комнаты
func RoomTopic(roomID uuid.UUID) string {
	return topicPrefix + roomID.String()
}

// Listener получает события темы. Deliver не должен блокироваться.
type Listener interface {
	Deliver(ev Event)
}

type ListenerFunc func(ev Event)

func (f ListenerFunc) Deliver(ev Event) { f(ev) }

// Publisher рассылает событие подписчикам темы: локальный Hub или RedisRelay
type Publisher interface {
	Publish(ctx context.Context, topic string, ev Event) error
}
