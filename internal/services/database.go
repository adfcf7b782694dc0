package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/thereayou/chitchat/internal/database"
	"github.com/thereayou/chitchat/internal/models"
)

// ChatStore часть хранилища, нужная ChatService
type ChatStore interface {
	GetRoom(ctx context.Context, id uuid.UUID) (*models.Room, error)
	IsMember(ctx context.Context, roomID, userID uuid.UUID) (bool, error)

	SendMessage(ctx context.Context, msg *models.Message) error
	GetMessage(ctx context.Context, id int64) (*models.Message, error)
	UpdateMessage(ctx context.Context, msg *models.Message) error
	DeleteMessage(ctx context.Context, id int64) database.Outcome
	GetMessagesForRoom(ctx context.Context, roomID uuid.UUID, page, pageSize int) ([]models.Message, error)

	MarkRead(ctx context.Context, messageID int64, userID uuid.UUID) database.Outcome
	MarkDelivered(ctx context.Context, messageID int64, userID uuid.UUID) database.Outcome
	GetUnreadCount(ctx context.Context, roomID, userID uuid.UUID) (int64, error)
	GetRecipientUnreadCount(ctx context.Context, roomID, userID uuid.UUID) (int64, error)
}

// UserStore часть хранилища, нужная AuthService
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UserExists(ctx context.Context, email, username string) (bool, error)
	UpdateLastSeen(ctx context.Context, id uuid.UUID) error
}

var (
	_ ChatStore = (*database.Database)(nil)
	_ UserStore = (*database.Database)(nil)
)
