package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/thereayou/chitchat/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func statusKey(messageID int64, receiverID uuid.UUID) string {
	return fmt.Sprintf("status:%d:%s", messageID, receiverID)
}

// MarkRead ставит is_read и статус read для получателя в одной транзакции.
// Других путей изменить is_read в обход статуса нет.
func (d *Database) MarkRead(ctx context.Context, messageID int64, userID uuid.UUID) Outcome {
	_, err := d.UpsertMessageStatus(ctx, models.MessageStatus{
		MessageID:  messageID,
		ReceiverID: userID,
		Status:     models.StatusRead,
	})
	if err != nil {
		return d.fail("mark read", err, zap.Int64("message_id", messageID), zap.String("user_id", userID.String()))
	}
	return succeeded()
}

func (d *Database) MarkDelivered(ctx context.Context, messageID int64, userID uuid.UUID) Outcome {
	_, err := d.UpsertMessageStatus(ctx, models.MessageStatus{
		MessageID:  messageID,
		ReceiverID: userID,
		Status:     models.StatusDelivered,
	})
	if err != nil {
		return d.fail("mark delivered", err, zap.Int64("message_id", messageID), zap.String("user_id", userID.String()))
	}
	return succeeded()
}

// UpsertMessageStatus применяет запись статуса, возможно пришедшую не по порядку.
// Статус не откатывается назад, updated_at остаётся наибольшим.
// Записи по одной паре (message, receiver) сериализуются внутри процесса,
// между процессами дубль отсекает уникальный индекс (ErrConflict).
func (d *Database) UpsertMessageStatus(ctx context.Context, in models.MessageStatus) (models.MessageStatus, error) {
	if !in.Status.Valid() {
		return models.MessageStatus{}, validation("unknown status %q", in.Status)
	}
	if in.ReceiverID == uuid.Nil {
		return models.MessageStatus{}, validation("receiver is required")
	}
	if in.UpdatedAt.IsZero() {
		in.UpdatedAt = now()
	}
	in.ID = 0

	unlock := d.locks.Lock(statusKey(in.MessageID, in.ReceiverID))
	defer unlock()

	var out models.MessageStatus
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var msg models.Message
		err := tx.Select("id").First(&msg, "id = ?", in.MessageID).Error
		if isNotFound(err) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		out, err = applyStatus(tx, in)
		if err != nil {
			return err
		}
		if out.Status == models.StatusRead {
			return tx.Model(&models.Message{}).Where("id = ?", in.MessageID).Update("is_read", true).Error
		}
		return nil
	})
	if err != nil {
		return models.MessageStatus{}, classify("upsert message status", err)
	}
	return out, nil
}

func applyStatus(tx *gorm.DB, in models.MessageStatus) (models.MessageStatus, error) {
	var cur models.MessageStatus
	err := tx.Where("message_id = ? AND receiver_id = ?", in.MessageID, in.ReceiverID).First(&cur).Error
	if isNotFound(err) {
		if err := tx.Create(&in).Error; err != nil {
			return models.MessageStatus{}, err
		}
		return in, nil
	}
	if err != nil {
		return models.MessageStatus{}, err
	}

	merged, changed := cur.Merge(in)
	if !changed {
		return cur, nil
	}
	err = tx.Model(&models.MessageStatus{}).Where("id = ?", cur.ID).
		Updates(map[string]any{"status": merged.Status, "updated_at": merged.UpdatedAt}).Error
	return merged, err
}

func (d *Database) GetMessageStatus(ctx context.Context, messageID int64, receiverID uuid.UUID) (*models.MessageStatus, error) {
	var st models.MessageStatus
	err := d.db.WithContext(ctx).
		Where("message_id = ? AND receiver_id = ?", messageID, receiverID).
		First(&st).Error
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, classify("get message status", err)
	}
	return &st, nil
}

func (d *Database) ListMessageStatuses(ctx context.Context, messageID int64) ([]models.MessageStatus, error) {
	statuses := []models.MessageStatus{}
	err := d.db.WithContext(ctx).Where("message_id = ?", messageID).Order("receiver_id").Find(&statuses).Error
	if err != nil {
		return nil, classify("list message statuses", err)
	}
	return statuses, nil
}
