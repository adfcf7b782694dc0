package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Room: IsGroup=false означает диалог 1:1 ровно из двух участников
type Room struct {
	ID        uuid.UUID `gorm:"type:char(36);primaryKey" json:"id"`
	Name      string    `gorm:"size:128" json:"name"`
	IsGroup   bool      `gorm:"not null;default:false" json:"is_group"`
	CreatedBy uuid.UUID `gorm:"type:char(36)" json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	IsDeleted bool      `gorm:"not null;default:false;index" json:"is_deleted"`
}

func (Room) TableName() string {
	return "chat_rooms"
}

func (r *Room) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// RoomParticipant связь комнаты и пользователя, пара (room_id, user_id) уникальна
type RoomParticipant struct {
	RoomID   uuid.UUID `gorm:"type:char(36);primaryKey" json:"room_id"`
	UserID   uuid.UUID `gorm:"type:char(36);primaryKey;index" json:"user_id"`
	JoinedAt time.Time `gorm:"not null" json:"joined_at"`
}

func (RoomParticipant) TableName() string {
	return "room_participants"
}
