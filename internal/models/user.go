package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UnknownUsername подставляется вместо отправителя, чья запись удалена
const UnknownUsername = "unknown user"

type UserRole string

const (
	RoleAdmin  UserRole = "admin"
	RoleMember UserRole = "member"
	RoleNone   UserRole = "none"
)

type User struct {
	ID           uuid.UUID `gorm:"type:char(36);primaryKey" json:"id"`
	Email        string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Username     string    `gorm:"column:user_name;size:64;uniqueIndex;not null" json:"username"`
	FullName     string    `gorm:"size:128" json:"full_name"`
	AvatarURL    *string   `gorm:"size:512" json:"avatar_url,omitempty"`
	Status       bool      `gorm:"not null;default:false" json:"status"`
	Role         UserRole  `gorm:"size:16;not null;default:member" json:"role"`
	PasswordHash string    `gorm:"not null" json:"-"`
	LastSeenAt   time.Time `json:"last_seen_at"`
	CreatedAt    time.Time `json:"created_at"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Role == "" {
		u.Role = RoleMember
	}
	return nil
}
