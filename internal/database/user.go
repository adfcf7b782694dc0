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

func (d *Database) CreateUser(ctx context.Context, user *models.User) error {
	user.Email = strings.TrimSpace(user.Email)
	user.Username = strings.TrimSpace(user.Username)
	if user.Email == "" || user.Username == "" {
		return validation("email and username are required")
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	if user.LastSeenAt.IsZero() {
		user.LastSeenAt = user.CreatedAt
	}
	return classify("create user", d.db.WithContext(ctx).Create(user).Error)
}

// UpdateUser полностью перезаписывает запись: вызывающий читает, меняет и сохраняет её целиком
func (d *Database) UpdateUser(ctx context.Context, user *models.User) error {
	if user.ID == uuid.Nil {
		return validation("user id is required")
	}
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.User{}).Where("id = ?", user.ID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return ErrNotFound
		}
		return tx.Save(user).Error
	})
	return classify("update user", err)
}

func (d *Database) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return d.findUser(ctx, "get user", "id = ?", id)
}

func (d *Database) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return d.findUser(ctx, "get user by email", "email = ?", strings.TrimSpace(email))
}

func (d *Database) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return d.findUser(ctx, "get user by username", "user_name = ?", strings.TrimSpace(username))
}

func (d *Database) findUser(ctx context.Context, op, query string, arg any) (*models.User, error) {
	var user models.User
	err := d.db.WithContext(ctx).Where(query, arg).First(&user).Error
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, classify(op, err)
	}
	return &user, nil
}

func (d *Database) ListUsers(ctx context.Context) ([]models.User, error) {
	users := []models.User{}
	if err := d.db.WithContext(ctx).Order("user_name").Find(&users).Error; err != nil {
		return nil, classify("list users", err)
	}
	return users, nil
}

// GetUsersByIDs отсутствующие id просто не попадают в результат
func (d *Database) GetUsersByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.User, error) {
	out := make(map[uuid.UUID]models.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var users []models.User
	if err := d.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, classify("get users", err)
	}
	for _, u := range users {
		out[u.ID] = u
	}
	return out, nil
}

// UserExists true, если занят email или username
func (d *Database) UserExists(ctx context.Context, email, username string) (bool, error) {
	var n int64
	err := d.db.WithContext(ctx).Model(&models.User{}).
		Where("email = ? OR user_name = ?", strings.TrimSpace(email), strings.TrimSpace(username)).
		Count(&n).Error
	if err != nil {
		return false, classify("user exists", err)
	}
	return n > 0, nil
}

// DeleteUser удаляет пользователя и его связи. Сообщения остаются с прежним sender_id.
func (d *Database) DeleteUser(ctx context.Context, id uuid.UUID) Outcome {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.User{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		if err := tx.Delete(&models.Contact{}, "user_id = ? OR friend_id = ?", id, id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.BlockedUser{}, "user_id = ? OR blocked_user_id = ?", id, id).Error; err != nil {
			return err
		}
		return tx.Delete(&models.RoomParticipant{}, "user_id = ?", id).Error
	})
	if err != nil {
		return d.fail("delete user", classify("delete user", err), zap.String("user_id", id.String()))
	}
	return succeeded()
}

// SetOnline обновляет флаг присутствия и last_seen_at
func (d *Database) SetOnline(ctx context.Context, id uuid.UUID, online bool) error {
	err := d.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).
		Updates(map[string]any{"status": online, "last_seen_at": time.Now().UTC()}).Error
	return classify("set online", err)
}

func (d *Database) UpdateLastSeen(ctx context.Context, id uuid.UUID) error {
	err := d.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).
		Update("last_seen_at", time.Now().UTC()).Error
	return classify("update last seen", err)
}
