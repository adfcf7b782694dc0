package database

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/thereayou/chitchat/internal/models"
	"go.uber.org/zap"
)

const searchLimit = 50

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// ListContacts возвращает пользователей, с которыми у userID есть контакт
func (d *Database) ListContacts(ctx context.Context, userID uuid.UUID) ([]models.User, error) {
	var friendIDs []uuid.UUID
	err := d.db.WithContext(ctx).Model(&models.Contact{}).
		Where("user_id = ?", userID).
		Pluck("friend_id", &friendIDs).Error
	if err != nil {
		return nil, classify("list contact ids", err)
	}
	return d.usersIn(ctx, "list contacts", friendIDs)
}

// AddContact пишет обе стороны связи одним multi-row insert
func (d *Database) AddContact(ctx context.Context, userID, friendID uuid.UUID) error {
	if userID == friendID {
		return validation("cannot add yourself as a contact")
	}
	now := time.Now().UTC()
	edges := []models.Contact{
		{UserID: userID, FriendID: friendID, CreatedAt: now},
		{UserID: friendID, FriendID: userID, CreatedAt: now},
	}
	return classify("add contact", d.db.WithContext(ctx).Create(&edges).Error)
}

// RemoveContact удаляет оба направления одним предикатом
func (d *Database) RemoveContact(ctx context.Context, userID, friendID uuid.UUID) Outcome {
	res := d.db.WithContext(ctx).Delete(&models.Contact{},
		"(user_id = ? AND friend_id = ?) OR (user_id = ? AND friend_id = ?)",
		userID, friendID, friendID, userID)
	err := res.Error
	if err == nil && res.RowsAffected == 0 {
		err = ErrNotFound
	}
	if err != nil {
		return d.fail("remove contact", classify("remove contact", err),
			zap.String("user_id", userID.String()), zap.String("friend_id", friendID.String()))
	}
	return succeeded()
}

func (d *Database) AreContacts(ctx context.Context, userID, friendID uuid.UUID) (bool, error) {
	var n int64
	err := d.db.WithContext(ctx).Model(&models.Contact{}).
		Where("user_id = ? AND friend_id = ?", userID, friendID).
		Count(&n).Error
	if err != nil {
		return false, classify("are contacts", err)
	}
	return n > 0, nil
}

// SearchUsers ищет подстроку без учёта регистра в user_name, full_name и email
func (d *Database) SearchUsers(ctx context.Context, term string) ([]models.User, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, validation("search term is empty")
	}
	pattern := "%" + likeEscaper.Replace(strings.ToLower(term)) + "%"

	users := []models.User{}
	err := d.db.WithContext(ctx).
		Where("LOWER(user_name) LIKE ? ESCAPE '!' OR LOWER(full_name) LIKE ? ESCAPE '!' OR LOWER(email) LIKE ? ESCAPE '!'",
			pattern, pattern, pattern).
		Order("user_name").
		Limit(searchLimit).
		Find(&users).Error
	if err != nil {
		return nil, classify("search users", err)
	}
	return users, nil
}

func (d *Database) Block(ctx context.Context, userID, blockedID uuid.UUID) Outcome {
	fields := []zap.Field{zap.String("user_id", userID.String()), zap.String("blocked_user_id", blockedID.String())}
	if userID == blockedID {
		return d.fail("block", validation("cannot block yourself"), fields...)
	}
	var n int64
	if err := d.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", blockedID).Count(&n).Error; err != nil {
		return d.fail("block", classify("block", err), fields...)
	}
	if n == 0 {
		return d.fail("block", ErrNotFound, fields...)
	}
	err := d.db.WithContext(ctx).Create(&models.BlockedUser{
		UserID:        userID,
		BlockedUserID: blockedID,
		CreatedAt:     time.Now().UTC(),
	}).Error
	if err != nil {
		return d.fail("block", classify("block", err), fields...)
	}
	return succeeded()
}

func (d *Database) Unblock(ctx context.Context, userID, blockedID uuid.UUID) Outcome {
	res := d.db.WithContext(ctx).Delete(&models.BlockedUser{}, "user_id = ? AND blocked_user_id = ?", userID, blockedID)
	err := res.Error
	if err == nil && res.RowsAffected == 0 {
		err = ErrNotFound
	}
	if err != nil {
		return d.fail("unblock", classify("unblock", err),
			zap.String("user_id", userID.String()), zap.String("blocked_user_id", blockedID.String()))
	}
	return succeeded()
}

func (d *Database) ListBlocked(ctx context.Context, userID uuid.UUID) ([]models.User, error) {
	var ids []uuid.UUID
	err := d.db.WithContext(ctx).Model(&models.BlockedUser{}).
		Where("user_id = ?", userID).
		Pluck("blocked_user_id", &ids).Error
	if err != nil {
		return nil, classify("list blocked ids", err)
	}
	return d.usersIn(ctx, "list blocked", ids)
}

// IsBlocked true, если userID заблокировал otherID. Обратное направление не проверяется.
func (d *Database) IsBlocked(ctx context.Context, userID, otherID uuid.UUID) (bool, error) {
	var n int64
	err := d.db.WithContext(ctx).Model(&models.BlockedUser{}).
		Where("user_id = ? AND blocked_user_id = ?", userID, otherID).
		Count(&n).Error
	if err != nil {
		return false, classify("is blocked", err)
	}
	return n > 0, nil
}

func (d *Database) usersIn(ctx context.Context, op string, ids []uuid.UUID) ([]models.User, error) {
	users := []models.User{}
	if len(ids) == 0 {
		return users, nil
	}
	if err := d.db.WithContext(ctx).Where("id IN ?", ids).Order("user_name").Find(&users).Error; err != nil {
		return nil, classify(op, err)
	}
	return users, nil
}
