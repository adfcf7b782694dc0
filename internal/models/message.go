package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type MessageType string

const (
	MessageText   MessageType = "text"
	MessageImage  MessageType = "image"
	MessageFile   MessageType = "file"
	MessageSystem MessageType = "system"
)

func (t MessageType) Valid() bool {
	switch t {
	case MessageText, MessageImage, MessageFile, MessageSystem:
		return true
	}
	return false
}

// Message: ID выдаёт хранилище, RoomID и SentAt после вставки не меняются
type Message struct {
	ID       int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	RoomID   uuid.UUID      `gorm:"type:char(36);not null;index:idx_messages_room_sent,priority:1" json:"room_id"`
	SenderID uuid.UUID      `gorm:"type:char(36);not null;index" json:"sender_id"`
	Content  string         `gorm:"type:text;not null" json:"content"`
	Type     MessageType    `gorm:"size:16;not null;default:text" json:"type"`
	SentAt   time.Time      `gorm:"not null;index:idx_messages_room_sent,priority:2" json:"sent_at"`
	IsRead   bool           `gorm:"not null;default:false" json:"is_read"`
	EditedAt *time.Time     `json:"edited_at,omitempty"`
	Metadata datatypes.JSON `json:"metadata,omitempty"`
}

func (Message) TableName() string {
	return "messages"
}
