package database

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thereayou/chitchat/internal/models"
)

func TestContactSymmetry(t *testing.T) {
	d := newTestDB(t)
	ctx := context.Background()
	a := mustUser(t, d, "a")
	b := mustUser(t, d, "b")

	require.NoError(t, d.AddContact(ctx, a.ID, b.ID))

	ab, err := d.AreContacts(ctx, a.ID, b.ID)
	require.NoError(t, err)
	ba, err := d.AreContacts(ctx, b.ID, a.ID)
	require.NoError(t, err)
	assert.True(t, ab)
	assert.True(t, ba)

	contacts, err := d.ListContacts(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, contacts, 1)
	assert.Equal(t, a.ID, contacts[0].ID)

	require.ErrorIs(t, d.AddContact(ctx, b.ID, a.ID), ErrConflict)
	require.ErrorIs(t, d.AddContact(ctx, a.ID, a.ID), ErrValidation)
}

func TestAddThenRemoveContactLeavesNoRows(t *testing.T) {
	d := newTestDB(t)
	ctx := context.Background()
	a := mustUser(t, d, "a")
	b := mustUser(t, d, "b")

	require.NoError(t, d.AddContact(ctx, a.ID, b.ID))
	require.True(t, d.RemoveContact(ctx, b.ID, a.ID).OK)

	var n int64
	require.NoError(t, d.db.Model(&models.Contact{}).Count(&n).Error)
	assert.Zero(t, n)

	ab, err := d.AreContacts(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.False(t, ab)

	out := d.RemoveContact(ctx, a.ID, b.ID)
	assert.False(t, out.OK)
	assert.ErrorIs(t, out.Cause, ErrNotFound)
}

func TestSearchUsers(t *testing.T) {
	d := newTestDB(t)
	ctx := context.Background()
	mustUser(t, d, "Alice")
	mustUser(t, d, "bob")
	u := &models.User{Email: "c@corp.test", Username: "carol", FullName: "Carol 100%", PasswordHash: "x"}
	require.NoError(t, d.CreateUser(ctx, u))

	found, err := d.SearchUsers(ctx, "ALI")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Alice", found[0].Username)

	found, err = d.SearchUsers(ctx, "example.com")
	require.NoError(t, err)
	assert.Len(t, found, 2)

	found, err = d.SearchUsers(ctx, "100%")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "carol", found[0].Username)

	_, err = d.SearchUsers(ctx, "  ")
	require.ErrorIs(t, err, ErrValidation)
}

func TestBlockIsOneDirectional(t *testing.T) {
	d := newTestDB(t)
	ctx := context.Background()
	a := mustUser(t, d, "a")
	b := mustUser(t, d, "b")
	require.NoError(t, d.AddContact(ctx, a.ID, b.ID))

	require.True(t, d.Block(ctx, a.ID, b.ID).OK)
	assert.False(t, d.Block(ctx, a.ID, b.ID).OK)
	assert.False(t, d.Block(ctx, a.ID, a.ID).OK)

	missing := d.Block(ctx, a.ID, uuid.New())
	assert.False(t, missing.OK)
	assert.ErrorIs(t, missing.Cause, ErrNotFound)

	blocked, err := d.IsBlocked(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.True(t, blocked)

	blocked, err = d.IsBlocked(ctx, b.ID, a.ID)
	require.NoError(t, err)
	assert.False(t, blocked)

	// блокировка не трогает контакты
	contact, err := d.AreContacts(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.True(t, contact)

	list, err := d.ListBlocked(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, b.ID, list[0].ID)

	require.True(t, d.Unblock(ctx, a.ID, b.ID).OK)
	assert.False(t, d.Unblock(ctx, a.ID, b.ID).OK)

	list, err = d.ListBlocked(ctx, a.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}
