// Package auth содержит бизнес-логику регистрации, входа и проверки
// сессионных токенов.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/catalog/internal/events"
	"github.com/magabrotheeeer/catalog/internal/lib/apperr"
	"github.com/magabrotheeeer/catalog/internal/lib/jwt"
	"github.com/magabrotheeeer/catalog/internal/lib/password"
	"github.com/magabrotheeeer/catalog/internal/models"
)

// Сообщения для клиента.
const (
	MsgUserExists         = "User already exists"
	MsgInvalidCredentials = "Invalid email or password"
	MsgTokenFailed        = "Not authorized, token failed"
	MsgTokenExpired       = "Not authorized, token expired"
	MsgUserGone           = "Not authorized, user not found"
	MsgPasswordTooLong    = "Password must be at most 72 bytes"
	MsgFieldsRequired     = "All fields are required"
)

// UserRepository описывает хранилище учётных записей.
type UserRepository interface {
	Create(ctx context.Context, u models.User) (models.User, error)
	FindByID(ctx context.Context, id string) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
	FindByEmailOrUsername(ctx context.Context, email, username string) (models.User, error)
}

// Hasher хэширует и проверяет пароли.
type Hasher interface {
	GetHash(raw string) (string, error)
	Verify(raw, digest string) bool
}

// Service отвечает за регистрацию, вход и проверку токенов.
type Service struct {
	log    *slog.Logger
	users  UserRepository
	hasher Hasher
	tokens jwt.Maker
	events events.Publisher
}

// New создаёт Service.
func New(log *slog.Logger, users UserRepository, hasher Hasher, tokens jwt.Maker, pub events.Publisher) *Service {
	return &Service{
		log:    log,
		users:  users,
		hasher: hasher,
		tokens: tokens,
		events: pub,
	}
}

// NormalizeEmail приводит email к виду, в котором он хранится.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register создаёт пользователя и выдаёт ему токен.
// Занятый email или username даёт apperr.ErrDuplicate.
func (s *Service) Register(ctx context.Context, username, email, rawPassword string) (models.AuthResult, error) {
	const op = "services.auth.Register"

	username = strings.TrimSpace(username)
	email = NormalizeEmail(email)
	if username == "" || email == "" || rawPassword == "" {
		return models.AuthResult{}, apperr.New(apperr.ErrValidation, MsgFieldsRequired)
	}

	_, err := s.users.FindByEmailOrUsername(ctx, email, username)
	switch {
	case err == nil:
		return models.AuthResult{}, apperr.New(apperr.ErrDuplicate, MsgUserExists)
	case !errors.Is(err, apperr.ErrNotFound):
		return models.AuthResult{}, fmt.Errorf("%s: %w", op, err)
	}

	hash, err := s.hasher.GetHash(rawPassword)
	if errors.Is(err, password.ErrTooLong) {
		return models.AuthResult{}, apperr.New(apperr.ErrValidation, MsgPasswordTooLong)
	}
	if err != nil {
		return models.AuthResult{}, fmt.Errorf("%s: %w", op, err)
	}

	user, err := s.users.Create(ctx, models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	})
	if errors.Is(err, apperr.ErrDuplicate) {
		return models.AuthResult{}, apperr.New(apperr.ErrDuplicate, MsgUserExists)
	}
	if err != nil {
		return models.AuthResult{}, fmt.Errorf("%s: %w", op, err)
	}

	token, err := s.tokens.GenerateToken(user.ID)
	if err != nil {
		return models.AuthResult{}, fmt.Errorf("%s: %w", op, err)
	}

	events.Emit(ctx, s.events, s.log, events.New(events.UserRegistered, user.Owner()))
	return models.NewAuthResult(user, token), nil
}

// Login проверяет email и пароль и выдаёт токен. Неизвестный email и
// неверный пароль неразличимы для клиента.
func (s *Service) Login(ctx context.Context, email, rawPassword string) (models.AuthResult, error) {
	const op = "services.auth.Login"

	user, err := s.users.FindByEmail(ctx, NormalizeEmail(email))
	if errors.Is(err, apperr.ErrNotFound) {
		return models.AuthResult{}, apperr.New(apperr.ErrUnauthenticated, MsgInvalidCredentials)
	}
	if err != nil {
		return models.AuthResult{}, fmt.Errorf("%s: %w", op, err)
	}

	if !s.hasher.Verify(rawPassword, user.PasswordHash) {
		return models.AuthResult{}, apperr.New(apperr.ErrUnauthenticated, MsgInvalidCredentials)
	}

	token, err := s.tokens.GenerateToken(user.ID)
	if err != nil {
		return models.AuthResult{}, fmt.Errorf("%s: %w", op, err)
	}
	return models.NewAuthResult(user, token), nil
}

// Authenticate проверяет токен и загружает пользователя, на которого он выписан.
func (s *Service) Authenticate(ctx context.Context, token string) (models.User, error) {
	const op = "services.auth.Authenticate"

	claims, err := s.tokens.ParseToken(token)
	if errors.Is(err, jwt.ErrTokenExpired) {
		return models.User{}, apperr.New(apperr.ErrUnauthenticated, MsgTokenExpired)
	}
	if err != nil {
		return models.User{}, apperr.New(apperr.ErrUnauthenticated, MsgTokenFailed)
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if errors.Is(err, apperr.ErrNotFound) {
		return models.User{}, apperr.New(apperr.ErrUnauthenticated, MsgUserGone)
	}
	if err != nil {
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}
