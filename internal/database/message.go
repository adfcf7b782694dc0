package database

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/thereayou/chitchat/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const MaxPageSize = 200

func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

func validateMessage(msg *models.Message) error {
	if msg.Type == "" {
		msg.Type = models.MessageText
	}
	if !msg.Type.Valid() {
		return validation("unknown message type %q", msg.Type)
	}
	if msg.Type == models.MessageText && strings.TrimSpace(msg.Content) == "" {
		return validation("message content is empty")
	}
	return nil
}

// SendMessage вставляет сообщение. sent_at ставит сервер, is_read всегда false.
func (d *Database) SendMessage(ctx context.Context, msg *models.Message) error {
	if msg.RoomID == uuid.Nil || msg.SenderID == uuid.Nil {
		return validation("room and sender are required")
	}
	if err := validateMessage(msg); err != nil {
		return err
	}
	msg.ID = 0
	msg.SentAt = now()
	msg.IsRead = false
	msg.EditedAt = nil
	return classify("send message", d.db.WithContext(ctx).Create(msg).Error)
}

func (d *Database) GetMessage(ctx context.Context, id int64) (*models.Message, error) {
	var msg models.Message
	err := d.db.WithContext(ctx).First(&msg, "id = ?", id).Error
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, classify("get message", err)
	}
	return &msg, nil
}

// UpdateMessage полная перезапись. id, room_id, sender_id, sent_at и is_read берутся из хранилища:
// is_read меняется только вместе со статусом в MarkRead.
func (d *Database) UpdateMessage(ctx context.Context, msg *models.Message) error {
	if err := validateMessage(msg); err != nil {
		return err
	}
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cur models.Message
		err := tx.First(&cur, "id = ?", msg.ID).Error
		if isNotFound(err) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		msg.RoomID = cur.RoomID
		msg.SenderID = cur.SenderID
		msg.SentAt = cur.SentAt
		msg.IsRead = cur.IsRead
		if msg.EditedAt == nil {
			msg.EditedAt = cur.EditedAt
		}
		return tx.Save(msg).Error
	})
	return classify("update message", err)
}

// DeleteMessage жёсткое удаление вместе со строками статусов
func (d *Database) DeleteMessage(ctx context.Context, id int64) Outcome {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.Message{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.Delete(&models.MessageStatus{}, "message_id = ?", id).Error
	})
	if err != nil {
		return d.fail("delete message", classify("delete message", err), zap.Int64("message_id", id))
	}
	return succeeded()
}

// GetMessagesForRoom окно выбирается от новых к старым ((page-1)*pageSize, pageSize),
// внутри страницы сообщения идут в хронологическом порядке
func (d *Database) GetMessagesForRoom(ctx context.Context, roomID uuid.UUID, page, pageSize int) ([]models.Message, error) {
	if page < 1 || pageSize < 1 {
		return nil, validation("page and page size must be positive")
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	messages := []models.Message{}
	err := d.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Order("sent_at DESC").
		Order("id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&messages).Error
	if err != nil {
		return nil, classify("get room messages", err)
	}

	// Разворачиваем порядок, чтобы старые сообщения были первыми
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// GetUnreadForUser все непрочитанные чужие сообщения по грубому флагу is_read.
// Членство в комнатах здесь не проверяется.
func (d *Database) GetUnreadForUser(ctx context.Context, userID uuid.UUID) ([]models.Message, error) {
	messages := []models.Message{}
	err := d.db.WithContext(ctx).
		Where("sender_id <> ? AND is_read = ?", userID, false).
		Order("sent_at").
		Order("id").
		Find(&messages).Error
	if err != nil {
		return nil, classify("get unread", err)
	}
	return messages, nil
}

// GetUnreadCount считает по общему флагу is_read, а не по статусам получателя.
// В групповых комнатах первый прочитавший обнуляет сообщение для всех.
func (d *Database) GetUnreadCount(ctx context.Context, roomID, userID uuid.UUID) (int64, error) {
	var n int64
	err := d.db.WithContext(ctx).Model(&models.Message{}).
		Where("room_id = ? AND sender_id <> ? AND is_read = ?", roomID, userID, false).
		Count(&n).Error
	if err != nil {
		return 0, classify("unread count", err)
	}
	return n, nil
}

// GetRecipientUnreadCount считает чужие сообщения комнаты без статуса read у userID
func (d *Database) GetRecipientUnreadCount(ctx context.Context, roomID, userID uuid.UUID) (int64, error) {
	var n int64
	err := d.db.WithContext(ctx).Model(&models.Message{}).
		Where("room_id = ? AND sender_id <> ?", roomID, userID).
		Where("NOT EXISTS (SELECT 1 FROM message_status ms WHERE ms.message_id = messages.id AND ms.receiver_id = ? AND ms.status = ?)",
			userID, models.StatusRead).
		Count(&n).Error
	if err != nil {
		return 0, classify("recipient unread count", err)
	}
	return n, nil
}
