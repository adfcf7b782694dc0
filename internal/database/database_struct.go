package database

import (
	"github.com/thereayou/chitchat/pkg/keymutex"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Database хранилище чата поверх gorm. Методы безопасны для конкурентного вызова.
type Database struct {
	db  *gorm.DB
	log *zap.Logger

	// сериализует записи статусов по паре (message, receiver) и создание диалогов
	locks *keymutex.KeyMutex
}

func NewDatabase(db *gorm.DB, log *zap.Logger) *Database {
	if log == nil {
		log = zap.NewNop()
	}
	return &Database{db: db, log: log, locks: keymutex.New()}
}
