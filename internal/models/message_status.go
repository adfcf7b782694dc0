package models

import (
	"time"

	"github.com/google/uuid"
)

type DeliveryStatus string

const (
	StatusSent      DeliveryStatus = "sent"
	StatusDelivered DeliveryStatus = "delivered"
	StatusRead      DeliveryStatus = "read"
)

func (s DeliveryStatus) rank() int {
	switch s {
	case StatusSent:
		return 1
	case StatusDelivered:
		return 2
	case StatusRead:
		return 3
	}
	return 0
}

func (s DeliveryStatus) Valid() bool {
	return s.rank() > 0
}

// MessageStatus не более одной строки на пару (message_id, receiver_id)
type MessageStatus struct {
	ID         int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	MessageID  int64          `gorm:"not null;uniqueIndex:uidx_status_message_receiver,priority:1" json:"message_id"`
	ReceiverID uuid.UUID      `gorm:"type:char(36);not null;uniqueIndex:uidx_status_message_receiver,priority:2;index" json:"receiver_id"`
	Status     DeliveryStatus `gorm:"size:16;not null" json:"status"`
	UpdatedAt  time.Time      `gorm:"autoUpdateTime:false;not null" json:"updated_at"`
}

func (MessageStatus) TableName() string {
	return "message_status"
}

// Merge применяет входящую запись к текущей.
// Статус только растёт sent -> delivered -> read, updated_at остаётся наибольшим.
// Второе значение false, если менять нечего.
func (s MessageStatus) Merge(in MessageStatus) (MessageStatus, bool) {
	out := s
	switch {
	case in.Status.rank() < s.Status.rank():
		return s, false
	case in.Status.rank() == s.Status.rank():
		if !in.UpdatedAt.After(s.UpdatedAt) {
			return s, false
		}
		out.UpdatedAt = in.UpdatedAt
	default:
		out.Status = in.Status
		if in.UpdatedAt.After(s.UpdatedAt) {
			out.UpdatedAt = in.UpdatedAt
		}
	}
	return out, true
}
