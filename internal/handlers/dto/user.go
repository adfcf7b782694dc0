package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/thereayou/chitchat/internal/models"
)

type UserInfo struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	FullName  string    `json:"full_name,omitempty"`
	AvatarURL *string   `json:"avatar_url,omitempty"`
	Online    bool      `json:"online"`
}

type Profile struct {
	UserInfo
	Email      string          `json:"email"`
	Role       models.UserRole `json:"role"`
	CreatedAt  time.Time       `json:"created_at"`
	LastSeenAt time.Time       `json:"last_seen_at"`
}

type UpdateMeRequest struct {
	Username  *string `json:"username" binding:"omitempty,min=3,max=50"`
	FullName  *string `json:"full_name" binding:"omitempty,max=128"`
	AvatarURL *string `json:"avatar_url" binding:"omitempty,url"`
}

func NewUserInfo(u *models.User) UserInfo {
	return UserInfo{
		ID:        u.ID,
		Username:  u.Username,
		FullName:  u.FullName,
		AvatarURL: u.AvatarURL,
		Online:    u.Status,
	}
}

// UnknownUser заглушка для удалённого отправителя
func UnknownUser(id uuid.UUID) UserInfo {
	return UserInfo{ID: id, Username: models.UnknownUsername}
}

func NewProfile(u *models.User) Profile {
	return Profile{
		UserInfo:   NewUserInfo(u),
		Email:      u.Email,
		Role:       u.Role,
		CreatedAt:  u.CreatedAt,
		LastSeenAt: u.LastSeenAt,
	}
}

func NewUserList(users []models.User) []UserInfo {
	out := make([]UserInfo, 0, len(users))
	for i := range users {
		out = append(out, NewUserInfo(&users[i]))
	}
	return out
}
