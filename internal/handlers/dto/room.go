package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/thereayou/chitchat/internal/models"
)

type CreateRoomRequest struct {
	Name      string      `json:"name" binding:"max=128"`
	IsGroup   bool        `json:"is_group"`
	MemberIDs []uuid.UUID `json:"member_ids"`
}

type DirectRoomRequest struct {
	UserID uuid.UUID `json:"user_id" binding:"required"`
}

type UpdateRoomRequest struct {
	Name string `json:"name" binding:"required,max=128"`
}

type ParticipantRequest struct {
	UserID uuid.UUID `json:"user_id" binding:"required"`
}

type RoomResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	IsGroup     bool      `json:"is_group"`
	CreatedBy   uuid.UUID `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UnreadCount *int64    `json:"unread_count,omitempty"`
}

type ParticipantResponse struct {
	User      UserInfo  `json:"user"`
	JoinedAt  time.Time `json:"joined_at"`
	IsCreator bool      `json:"is_creator"`
}

func NewRoomResponse(r *models.Room) RoomResponse {
	return RoomResponse{
		ID:        r.ID,
		Name:      r.Name,
		IsGroup:   r.IsGroup,
		CreatedBy: r.CreatedBy,
		CreatedAt: r.CreatedAt,
	}
}
