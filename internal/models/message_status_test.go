package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMergeStatus(t *testing.T) {
	t0 := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	t1 := t0.Add(time.Minute)

	tests := []struct {
		name    string
		cur     MessageStatus
		in      MessageStatus
		want    MessageStatus
		changed bool
	}{
		{
			name:    "upgrade",
			cur:     MessageStatus{Status: StatusDelivered, UpdatedAt: t0},
			in:      MessageStatus{Status: StatusRead, UpdatedAt: t1},
			want:    MessageStatus{Status: StatusRead, UpdatedAt: t1},
			changed: true,
		},
		{
			name:    "late delivered does not regress read",
			cur:     MessageStatus{Status: StatusRead, UpdatedAt: t1},
			in:      MessageStatus{Status: StatusDelivered, UpdatedAt: t0},
			want:    MessageStatus{Status: StatusRead, UpdatedAt: t1},
			changed: false,
		},
		{
			name:    "newer delivered still does not regress",
			cur:     MessageStatus{Status: StatusRead, UpdatedAt: t0},
			in:      MessageStatus{Status: StatusDelivered, UpdatedAt: t1},
			want:    MessageStatus{Status: StatusRead, UpdatedAt: t0},
			changed: false,
		},
		{
			name:    "same status newer time",
			cur:     MessageStatus{Status: StatusRead, UpdatedAt: t0},
			in:      MessageStatus{Status: StatusRead, UpdatedAt: t1},
			want:    MessageStatus{Status: StatusRead, UpdatedAt: t1},
			changed: true,
		},
		{
			name:    "upgrade with older stamp keeps max time",
			cur:     MessageStatus{Status: StatusSent, UpdatedAt: t1},
			in:      MessageStatus{Status: StatusRead, UpdatedAt: t0},
			want:    MessageStatus{Status: StatusRead, UpdatedAt: t1},
			changed: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, changed := tt.cur.Merge(tt.in)
			assert.Equal(t, tt.changed, changed)
			assert.Equal(t, tt.want.Status, got.Status)
			assert.True(t, tt.want.UpdatedAt.Equal(got.UpdatedAt))
		})
	}
}

func TestEnumsValid(t *testing.T) {
	assert.True(t, MessageFile.Valid())
	assert.False(t, MessageType("video").Valid())
	assert.True(t, StatusDelivered.Valid())
	assert.False(t, DeliveryStatus("").Valid())
}
