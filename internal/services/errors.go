package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrNotMember          = errors.New("user is not a member of this room")
	ErrForbidden          = errors.New("forbidden")
	ErrUserExists         = errors.New("email or username already taken")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
)

// RegistrationError создание пользователя не удалось.
// UserID это id, назначенный до вставки: по нему можно проверить, появилась ли запись.
type RegistrationError struct {
	UserID uuid.UUID
	Err    error
}

func (e *RegistrationError) Error() string {
	return fmt.Sprintf("register user %s: %v", e.UserID, e.Err)
}

func (e *RegistrationError) Unwrap() error {
	return e.Err
}
