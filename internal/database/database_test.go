package database

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/thereayou/chitchat/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *Database {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Discard,
	})
	require.NoError(t, err)

	// одна in-memory база на соединение
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	d := NewDatabase(gdb, zap.NewNop())
	require.NoError(t, d.Migrate())
	return d
}

func mustUser(t *testing.T, d *Database, name string) *models.User {
	t.Helper()
	u := &models.User{
		Email:        name + "@example.com",
		Username:     name,
		FullName:     "User " + name,
		PasswordHash: "x",
	}
	require.NoError(t, d.CreateUser(context.Background(), u))
	return u
}

func mustGroup(t *testing.T, d *Database, name string, members ...uuid.UUID) *models.Room {
	t.Helper()
	room := &models.Room{Name: name, IsGroup: true, CreatedBy: members[0]}
	require.NoError(t, d.CreateRoomWithParticipants(context.Background(), room, members))
	return room
}

func mustSend(t *testing.T, d *Database, roomID, senderID uuid.UUID, content string) *models.Message {
	t.Helper()
	msg := &models.Message{RoomID: roomID, SenderID: senderID, Content: content}
	require.NoError(t, d.SendMessage(context.Background(), msg))
	return msg
}
