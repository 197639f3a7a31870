// Package users содержит операции над учётными записями: профиль текущего
// пользователя и административные список и удаление.
package users

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/catalog/internal/events"
	"github.com/magabrotheeeer/catalog/internal/lib/access"
	"github.com/magabrotheeeer/catalog/internal/lib/apperr"
	"github.com/magabrotheeeer/catalog/internal/lib/jwt"
	"github.com/magabrotheeeer/catalog/internal/lib/password"
	"github.com/magabrotheeeer/catalog/internal/lib/sl"
	"github.com/magabrotheeeer/catalog/internal/models"
)

// Сообщения для клиента.
const (
	MsgNotFound         = "User not found"
	MsgNotAdmin         = "Not authorized as an admin"
	MsgTaken            = "Username or email already in use"
	MsgCurrentRequired  = "Current password is required to set a new password"
	MsgCurrentIncorrect = "Current password is incorrect"
	MsgPasswordTooLong  = "Password must be at most 72 bytes"
	MsgUsernameEmpty    = "Username cannot be empty"
	MsgEmailEmpty       = "Email cannot be empty"
)

// UserRepository описывает хранилище учётных записей.
type UserRepository interface {
	FindByID(ctx context.Context, id string) (models.User, error)
	Update(ctx context.Context, id string, changes models.UserChanges) (models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Delete(ctx context.Context, id string) error
}

// ItemPurger удаляет товары пользователя.
type ItemPurger interface {
	DeleteByOwner(ctx context.Context, ownerID string) ([]string, error)
}

// Hasher хэширует и проверяет пароли.
type Hasher interface {
	GetHash(raw string) (string, error)
	Verify(raw, digest string) bool
}

// Service реализует операции над пользователями.
type Service struct {
	log    *slog.Logger
	users  UserRepository
	items  ItemPurger
	hasher Hasher
	tokens jwt.Maker
	events events.Publisher
}

// New создаёт Service.
func New(log *slog.Logger, users UserRepository, items ItemPurger, hasher Hasher, tokens jwt.Maker, pub events.Publisher) *Service {
	return &Service{
		log:    log,
		users:  users,
		items:  items,
		hasher: hasher,
		tokens: tokens,
		events: pub,
	}
}

// Profile возвращает актуальную запись текущего пользователя.
func (s *Service) Profile(ctx context.Context, actor models.User) (models.User, error) {
	return s.find(ctx, "services.users.Profile", actor.ID)
}

func (s *Service) find(ctx context.Context, op, id string) (models.User, error) {
	u, err := s.users.FindByID(ctx, id)
	if errors.Is(err, apperr.ErrNotFound) {
		return models.User{}, apperr.New(apperr.ErrNotFound, MsgNotFound)
	}
	if err != nil {
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// UpdateProfile меняет username, email и пароль текущего пользователя
// и выдаёт новый токен. Для смены пароля нужен текущий пароль.
func (s *Service) UpdateProfile(ctx context.Context, actor models.User, patch models.ProfilePatch) (models.AuthResult, error) {
	const op = "services.users.UpdateProfile"

	current, err := s.find(ctx, op, actor.ID)
	if err != nil {
		return models.AuthResult{}, err
	}

	changes, err := s.changes(current, patch)
	if err != nil {
		return models.AuthResult{}, err
	}

	updated := current
	if !changes.Empty() {
		updated, err = s.users.Update(ctx, current.ID, changes)
		switch {
		case errors.Is(err, apperr.ErrDuplicate):
			return models.AuthResult{}, apperr.New(apperr.ErrDuplicate, MsgTaken)
		case errors.Is(err, apperr.ErrNotFound):
			return models.AuthResult{}, apperr.New(apperr.ErrNotFound, MsgNotFound)
		case err != nil:
			return models.AuthResult{}, fmt.Errorf("%s: %w", op, err)
		}
	}

	token, err := s.tokens.GenerateToken(updated.ID)
	if err != nil {
		return models.AuthResult{}, fmt.Errorf("%s: %w", op, err)
	}
	return models.NewAuthResult(updated, token), nil
}

func (s *Service) changes(current models.User, patch models.ProfilePatch) (models.UserChanges, error) {
	var c models.UserChanges

	if patch.Username != nil {
		name := strings.TrimSpace(*patch.Username)
		if name == "" {
			return c, apperr.New(apperr.ErrValidation, MsgUsernameEmpty)
		}
		if name != current.Username {
			c.Username = &name
		}
	}
	if patch.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*patch.Email))
		if email == "" {
			return c, apperr.New(apperr.ErrValidation, MsgEmailEmpty)
		}
		if email != current.Email {
			c.Email = &email
		}
	}
	if patch.Password != nil && *patch.Password != "" {
		if patch.CurrentPassword == nil || *patch.CurrentPassword == "" {
			return c, apperr.New(apperr.ErrValidation, MsgCurrentRequired)
		}
		if !s.hasher.Verify(*patch.CurrentPassword, current.PasswordHash) {
			return c, apperr.New(apperr.ErrUnauthenticated, MsgCurrentIncorrect)
		}
		hash, err := s.hasher.GetHash(*patch.Password)
		if errors.Is(err, password.ErrTooLong) {
			return c, apperr.New(apperr.ErrValidation, MsgPasswordTooLong)
		}
		if err != nil {
			return c, fmt.Errorf("services.users.changes: %w", err)
		}
		c.PasswordHash = &hash
	}
	return c, nil
}

// List возвращает всех пользователей. Только для администратора.
func (s *Service) List(ctx context.Context, actor models.User) ([]models.User, error) {
	const op = "services.users.List"

	if !access.IsAdmin(actor) {
		return nil, apperr.New(apperr.ErrForbidden, MsgNotAdmin)
	}
	list, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return list, nil
}

// Delete удаляет пользователя id вместе с его товарами.
// Администратора удалить нельзя.
func (s *Service) Delete(ctx context.Context, actor models.User, id string) error {
	const op = "services.users.Delete"
	log := s.log.With(slog.String("op", op), slog.String("user_id", id))

	if !access.IsAdmin(actor) {
		return apperr.New(apperr.ErrForbidden, MsgNotAdmin)
	}
	target, err := s.find(ctx, op, id)
	if err != nil {
		return err
	}
	if err := access.CheckUserDeletion(actor, target); err != nil {
		return err
	}

	err = s.users.Delete(ctx, target.ID)
	if errors.Is(err, apperr.ErrNotFound) {
		return apperr.New(apperr.ErrNotFound, MsgNotFound)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if ids, err := s.items.DeleteByOwner(ctx, target.ID); err != nil {
		log.Warn("failed to delete items of removed user", sl.Err(err))
	} else {
		log.Info("items of removed user deleted", slog.Int("count", len(ids)))
	}

	events.Emit(ctx, s.events, s.log, events.New(events.UserDeleted, target))
	return nil
}
