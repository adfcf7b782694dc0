package models

import (
	"time"

	"github.com/google/uuid"
)

// Contact одно направление симметричной связи, всегда хранится парой (A,B) и (B,A)
type Contact struct {
	UserID    uuid.UUID `gorm:"type:char(36);primaryKey" json:"user_id"`
	FriendID  uuid.UUID `gorm:"type:char(36);primaryKey;index" json:"friend_id"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (Contact) TableName() string {
	return "user_contacts"
}

// BlockedUser односторонняя блокировка
type BlockedUser struct {
	UserID        uuid.UUID `gorm:"type:char(36);primaryKey" json:"user_id"`
	BlockedUserID uuid.UUID `gorm:"type:char(36);primaryKey" json:"blocked_user_id"`
	CreatedAt     time.Time `gorm:"not null" json:"created_at"`
}

func (BlockedUser) TableName() string {
	return "blocked_users"
}
