package services

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/thereayou/chitchat/internal/database"
	"github.com/thereayou/chitchat/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestStore(t *testing.T) *database.Database {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true, Logger: logger.Discard})
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	store := database.NewDatabase(gdb, zap.NewNop())
	require.NoError(t, store.Migrate())
	return store
}

func seedUser(t *testing.T, store *database.Database, name string) uuid.UUID {
	t.Helper()
	u := &models.User{Email: name + "@example.com", Username: name, PasswordHash: "x"}
	require.NoError(t, store.CreateUser(context.Background(), u))
	return u.ID
}

func seedRoom(t *testing.T, store *database.Database, members ...uuid.UUID) uuid.UUID {
	t.Helper()
	room := &models.Room{Name: "room", IsGroup: true, CreatedBy: members[0]}
	require.NoError(t, store.CreateRoomWithParticipants(context.Background(), room, members))
	return room.ID
}
