package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/thereayou/chitchat/internal/database"
	"github.com/thereayou/chitchat/internal/models"
	"github.com/thereayou/chitchat/pkg/auth"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	blacklistPrefix = "blacklist:"
	defaultFullName = "User"
)

type RegisterInput struct {
	Email    string
	Username string
	FullName string
	Password string
}

// Session выданный токен
type Session struct {
	UserID    uuid.UUID `json:"user_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AuthService поставщик идентичности: регистрация, вход, выход, проверка токена.
// Без redis выход не отзывает токен, он живёт до истечения.
type AuthService struct {
	users UserStore
	jwt   *auth.JWTManager
	redis *redis.Client
	log   *zap.Logger
}

func NewAuthService(users UserStore, jwt *auth.JWTManager, rdb *redis.Client, log *zap.Logger) *AuthService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthService{users: users, jwt: jwt, redis: rdb, log: log.Named("auth")}
}

// Register занятый email или username это жёсткий отказ, запись не создаётся
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	username := strings.TrimSpace(in.Username)
	if username == "" {
		username, _, _ = strings.Cut(email, "@")
	}
	fullName := strings.TrimSpace(in.FullName)
	if fullName == "" {
		fullName = defaultFullName
	}

	exists, err := s.users.UserExists(ctx, email, username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUserExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:           uuid.New(),
		Email:        email,
		Username:     username,
		FullName:     fullName,
		Role:         models.RoleMember,
		PasswordHash: string(hash),
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, database.ErrConflict) {
			return nil, &RegistrationError{UserID: user.ID, Err: ErrUserExists}
		}
		// ответ мог потеряться после фиксации: проверяем по назначенному id
		if created, lookupErr := s.users.GetUserByID(ctx, user.ID); lookupErr == nil && created != nil {
			s.log.Info("registration recovered by id", zap.String("user_id", user.ID.String()))
			return created, nil
		}
		return nil, &RegistrationError{UserID: user.ID, Err: err}
	}
	return user, nil
}

// Login неверный email и неверный пароль неразличимы
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.users.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, exp, err := s.jwt.Generate(user.ID)
	if err != nil {
		return nil, err
	}
	if err := s.users.UpdateLastSeen(ctx, user.ID); err != nil {
		s.log.Warn("update last seen failed", zap.String("user_id", user.ID.String()), zap.Error(err))
	}
	return &Session{UserID: user.ID, Token: token, ExpiresAt: exp}, nil
}

// Logout ставит токен в черный список в Redis до истечения
func (s *AuthService) Logout(ctx context.Context, token string) error {
	_, exp, err := s.jwt.UserID(token)
	if err != nil {
		return ErrInvalidToken
	}
	if s.redis == nil {
		s.log.Warn("logout without redis, token stays valid until expiry")
		return nil
	}
	ttl := time.Until(exp)
	if ttl <= 0 {
		return nil
	}
	return s.redis.Set(ctx, blacklistPrefix+token, 1, ttl).Err()
}

// Authenticate возвращает id пользователя для действующего токена
func (s *AuthService) Authenticate(ctx context.Context, token string) (uuid.UUID, error) {
	if s.redis != nil {
		n, err := s.redis.Exists(ctx, blacklistPrefix+token).Result()
		if err != nil {
			return uuid.Nil, err
		}
		if n > 0 {
			return uuid.Nil, ErrInvalidToken
		}
	}
	userID, _, err := s.jwt.UserID(token)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}
	return userID, nil
}
