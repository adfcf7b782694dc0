package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/thereayou/chitchat/internal/models"
	"gorm.io/datatypes"
)

// MessagePayload структура для входящих сообщений
type MessagePayload struct {
	Content  string             `json:"content"`
	Type     models.MessageType `json:"type,omitempty"`
	Metadata datatypes.JSON     `json:"metadata,omitempty"`
}

type EditPayload struct {
	MessageID int64  `json:"message_id"`
	Content   string `json:"content"`
}

type MessageRef struct {
	MessageID int64 `json:"message_id"`
}

type EditMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

// MessageResponse структура для исходящих сообщений
type MessageResponse struct {
	ID       int64              `json:"id"`
	RoomID   uuid.UUID          `json:"room_id"`
	SenderID uuid.UUID          `json:"sender_id"`
	Content  string             `json:"content"`
	Type     models.MessageType `json:"type"`
	SentAt   time.Time          `json:"sent_at"`
	IsRead   bool               `json:"is_read"`
	EditedAt *time.Time         `json:"edited_at,omitempty"`
	Metadata datatypes.JSON     `json:"metadata,omitempty"`
	Sender   UserInfo           `json:"sender"`
}

// NewMessageResponses отправители, которых нет в senders, показываются как unknown user
func NewMessageResponses(msgs []models.Message, senders map[uuid.UUID]models.User) []MessageResponse {
	out := make([]MessageResponse, 0, len(msgs))
	for i := range msgs {
		out = append(out, NewMessageResponse(&msgs[i], senders))
	}
	return out
}

func NewMessageResponse(m *models.Message, senders map[uuid.UUID]models.User) MessageResponse {
	sender := UnknownUser(m.SenderID)
	if u, ok := senders[m.SenderID]; ok {
		sender = NewUserInfo(&u)
	}
	return MessageResponse{
		ID:       m.ID,
		RoomID:   m.RoomID,
		SenderID: m.SenderID,
		Content:  m.Content,
		Type:     m.Type,
		SentAt:   m.SentAt,
		IsRead:   m.IsRead,
		EditedAt: m.EditedAt,
		Metadata: m.Metadata,
		Sender:   sender,
	}
}

// SenderIDs уникальные отправители для пакетной загрузки
func SenderIDs(msgs []models.Message) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(msgs))
	ids := make([]uuid.UUID, 0, len(msgs))
	for _, m := range msgs {
		if _, ok := seen[m.SenderID]; ok {
			continue
		}
		seen[m.SenderID] = struct{}{}
		ids = append(ids, m.SenderID)
	}
	return ids
}
