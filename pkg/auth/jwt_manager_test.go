package auth

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndVerify(t *testing.T) {
	m := NewJWTManager("secret", time.Hour)
	userID := uuid.New()

	token, exp, err := m.Generate(userID)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	got, gotExp, err := m.UserID(token)
	require.NoError(t, err)
	assert.Equal(t, userID, got)
	assert.WithinDuration(t, exp, gotExp, time.Second)
}

func TestVerifyRejectsForeignAndExpired(t *testing.T) {
	m := NewJWTManager("secret", time.Hour)
	other := NewJWTManager("other", time.Hour)

	token, _, err := other.Generate(uuid.New())
	require.NoError(t, err)
	_, err = m.Verify(token)
	assert.Error(t, err)

	expired := NewJWTManager("secret", -time.Minute)
	token, _, err = expired.Generate(uuid.New())
	require.NoError(t, err)
	_, _, err = m.UserID(token)
	assert.Error(t, err)

	_, err = m.Verify("not-a-token")
	assert.Error(t, err)
}

func TestExtractTokenFromHeader(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	_, err := ExtractTokenFromHeader(r)
	assert.ErrorIs(t, err, ErrMissingToken)

	r.Header.Set("Authorization", "bearer abc")
	tok, err := ExtractTokenFromHeader(r)
	require.NoError(t, err)
	assert.Equal(t, "abc", tok)

	r.Header.Set("Authorization", "Basic abc")
	_, err = ExtractTokenFromHeader(r)
	assert.ErrorIs(t, err, ErrMissingToken)
}
