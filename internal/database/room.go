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

func validateRoom(room *models.Room) error {
	room.Name = strings.TrimSpace(room.Name)
	if room.IsGroup && room.Name == "" {
		return validation("group room requires a name")
	}
	return nil
}

// CreateRoom сохраняет только запись комнаты, участников добавляют отдельно.
// Комнаты без участников подчищает ReconcileOrphanRooms.
func (d *Database) CreateRoom(ctx context.Context, room *models.Room) error {
	if err := validateRoom(room); err != nil {
		return err
	}
	if room.CreatedAt.IsZero() {
		room.CreatedAt = time.Now().UTC()
	}
	room.IsDeleted = false
	return classify("create room", d.db.WithContext(ctx).Create(room).Error)
}

// CreateRoomWithParticipants создаёт комнату и участников одной транзакцией
func (d *Database) CreateRoomWithParticipants(ctx context.Context, room *models.Room, userIDs []uuid.UUID) error {
	if err := validateRoom(room); err != nil {
		return err
	}
	members := dedupe(userIDs)
	switch {
	case !room.IsGroup && len(members) != 2:
		return validation("direct room requires exactly two distinct users")
	case len(members) == 0:
		return validation("room requires at least one participant")
	}

	now := time.Now().UTC()
	if room.CreatedAt.IsZero() {
		room.CreatedAt = now
	}
	room.IsDeleted = false

	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(room).Error; err != nil {
			return err
		}
		return tx.Create(participantRows(room.ID, members, now)).Error
	})
	return classify("create room", err)
}

// GetOrCreateDirectRoom возвращает существующий диалог двух пользователей или создаёт новый
func (d *Database) GetOrCreateDirectRoom(ctx context.Context, user1ID, user2ID uuid.UUID) (*models.Room, error) {
	if user1ID == user2ID {
		return nil, validation("direct room requires two distinct users")
	}

	a, b := user1ID.String(), user2ID.String()
	if a > b {
		a, b = b, a
	}
	unlock := d.locks.Lock("direct:" + a + ":" + b)
	defer unlock()

	var room models.Room
	err := d.db.WithContext(ctx).
		Joins("JOIN room_participants rp1 ON rp1.room_id = chat_rooms.id AND rp1.user_id = ?", user1ID).
		Joins("JOIN room_participants rp2 ON rp2.room_id = chat_rooms.id AND rp2.user_id = ?", user2ID).
		Where("chat_rooms.is_group = ? AND chat_rooms.is_deleted = ?", false, false).
		Order("chat_rooms.created_at").
		First(&room).Error
	if err == nil {
		return &room, nil
	}
	if !isNotFound(err) {
		return nil, classify("find direct room", err)
	}

	room = models.Room{IsGroup: false, CreatedBy: user1ID}
	if err := d.CreateRoomWithParticipants(ctx, &room, []uuid.UUID{user1ID, user2ID}); err != nil {
		return nil, err
	}
	return &room, nil
}

// GetRoom находит комнату по id, в том числе удалённую
func (d *Database) GetRoom(ctx context.Context, id uuid.UUID) (*models.Room, error) {
	var room models.Room
	err := d.db.WithContext(ctx).First(&room, "id = ?", id).Error
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, classify("get room", err)
	}
	return &room, nil
}

// UpdateRoom полная перезапись. created_at и is_deleted здесь не меняются.
func (d *Database) UpdateRoom(ctx context.Context, room *models.Room) error {
	if err := validateRoom(room); err != nil {
		return err
	}
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cur models.Room
		err := tx.First(&cur, "id = ? AND is_deleted = ?", room.ID, false).Error
		if isNotFound(err) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		room.CreatedAt = cur.CreatedAt
		room.IsDeleted = cur.IsDeleted
		return tx.Save(room).Error
	})
	return classify("update room", err)
}

// DeleteRoom мягкое удаление: сообщения и участники остаются
func (d *Database) DeleteRoom(ctx context.Context, id uuid.UUID) Outcome {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var room models.Room
		err := tx.First(&room, "id = ? AND is_deleted = ?", id, false).Error
		if isNotFound(err) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return tx.Model(&models.Room{}).Where("id = ?", id).Update("is_deleted", true).Error
	})
	if err != nil {
		return d.fail("delete room", classify("delete room", err), zap.String("room_id", id.String()))
	}
	return succeeded()
}

func (d *Database) AddParticipant(ctx context.Context, roomID, userID uuid.UUID) Outcome {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var room models.Room
		err := tx.First(&room, "id = ? AND is_deleted = ?", roomID, false).Error
		if isNotFound(err) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		if !room.IsGroup {
			var n int64
			if err := tx.Model(&models.RoomParticipant{}).Where("room_id = ?", roomID).Count(&n).Error; err != nil {
				return err
			}
			if n >= 2 {
				return validation("direct room already has two participants")
			}
		}

		return tx.Create(&models.RoomParticipant{
			RoomID:   roomID,
			UserID:   userID,
			JoinedAt: time.Now().UTC(),
		}).Error
	})
	if err != nil {
		return d.fail("add participant", classify("add participant", err),
			zap.String("room_id", roomID.String()), zap.String("user_id", userID.String()))
	}
	return succeeded()
}

func (d *Database) RemoveParticipant(ctx context.Context, roomID, userID uuid.UUID) Outcome {
	res := d.db.WithContext(ctx).Delete(&models.RoomParticipant{}, "room_id = ? AND user_id = ?", roomID, userID)
	err := res.Error
	if err == nil && res.RowsAffected == 0 {
		err = ErrNotFound
	}
	if err != nil {
		return d.fail("remove participant", classify("remove participant", err),
			zap.String("room_id", roomID.String()), zap.String("user_id", userID.String()))
	}
	return succeeded()
}

// ListRoomsForUser в два шага: id комнат участника, затем сами комнаты
func (d *Database) ListRoomsForUser(ctx context.Context, userID uuid.UUID) ([]models.Room, error) {
	var roomIDs []uuid.UUID
	err := d.db.WithContext(ctx).Model(&models.RoomParticipant{}).
		Where("user_id = ?", userID).
		Pluck("room_id", &roomIDs).Error
	if err != nil {
		return nil, classify("list room ids", err)
	}

	rooms := []models.Room{}
	if len(roomIDs) == 0 {
		return rooms, nil
	}

	err = d.db.WithContext(ctx).
		Where("id IN ? AND is_deleted = ?", roomIDs, false).
		Order("created_at DESC").
		Find(&rooms).Error
	if err != nil {
		return nil, classify("list rooms", err)
	}
	return rooms, nil
}

func (d *Database) ListParticipants(ctx context.Context, roomID uuid.UUID) ([]models.RoomParticipant, error) {
	participants := []models.RoomParticipant{}
	err := d.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Order("joined_at").
		Find(&participants).Error
	if err != nil {
		return nil, classify("list participants", err)
	}
	return participants, nil
}

func (d *Database) IsMember(ctx context.Context, roomID, userID uuid.UUID) (bool, error) {
	var n int64
	err := d.db.WithContext(ctx).Model(&models.RoomParticipant{}).
		Where("room_id = ? AND user_id = ?", roomID, userID).
		Count(&n).Error
	if err != nil {
		return false, classify("is member", err)
	}
	return n > 0, nil
}

// ReconcileOrphanRooms мягко удаляет комнаты старше olderThan, у которых не осталось участников
func (d *Database) ReconcileOrphanRooms(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-olderThan)
	res := d.db.WithContext(ctx).Model(&models.Room{}).
		Where("is_deleted = ? AND created_at < ?", false, cutoff).
		Where("NOT EXISTS (SELECT 1 FROM room_participants rp WHERE rp.room_id = chat_rooms.id)").
		Update("is_deleted", true)
	if res.Error != nil {
		return 0, classify("reconcile rooms", res.Error)
	}
	if res.RowsAffected > 0 {
		d.log.Info("orphan rooms soft-deleted", zap.Int64("count", res.RowsAffected))
	}
	return res.RowsAffected, nil
}

func participantRows(roomID uuid.UUID, userIDs []uuid.UUID, joined time.Time) []models.RoomParticipant {
	rows := make([]models.RoomParticipant, 0, len(userIDs))
	for _, id := range userIDs {
		rows = append(rows, models.RoomParticipant{RoomID: roomID, UserID: id, JoinedAt: joined})
	}
	return rows
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
