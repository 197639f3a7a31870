// Package storage выбирает backend хранилища по конфигу и описывает
// общие интерфейсы репозиториев пользователей и товаров.
//
// Все backend'ы сообщают об отсутствии записи ошибкой apperr.ErrNotFound
// (в том числе для некорректного идентификатора), а о нарушении
// уникальности username/email ошибкой apperr.ErrDuplicate.
package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/catalog/internal/config"
	"github.com/magabrotheeeer/catalog/internal/models"
	"github.com/magabrotheeeer/catalog/internal/storage/memory"
	"github.com/magabrotheeeer/catalog/internal/storage/mongodb"
	"github.com/magabrotheeeer/catalog/internal/storage/postgresql"
)

// UserRepository хранит учётные записи пользователей.
type UserRepository interface {
	Create(ctx context.Context, u models.User) (models.User, error)
	FindByID(ctx context.Context, id string) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
	FindByEmailOrUsername(ctx context.Context, email, username string) (models.User, error)
	Update(ctx context.Context, id string, changes models.UserChanges) (models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Delete(ctx context.Context, id string) error
}

// ItemRepository хранит товары. FindByID и List возвращают товары
// с именем владельца.
type ItemRepository interface {
	Create(ctx context.Context, it models.Item) (models.Item, error)
	FindByID(ctx context.Context, id string) (models.Item, error)
	List(ctx context.Context) ([]models.Item, error)
	Update(ctx context.Context, id string, patch models.ItemPatch) (models.Item, error)
	Delete(ctx context.Context, id string) error
	// DeleteByOwner удаляет все товары пользователя и возвращает их идентификаторы.
	DeleteByOwner(ctx context.Context, ownerID string) ([]string, error)
}

// Store объединяет репозитории выбранного backend'а.
type Store struct {
	Users  UserRepository
	Items  ItemRepository
	Driver string
	closer func(ctx context.Context) error
}

// Close освобождает соединения backend'а.
func (s *Store) Close(ctx context.Context) error {
	if s.closer == nil {
		return nil
	}
	return s.closer(ctx)
}

// Open подключается к хранилищу, указанному в cfg.Driver.
func Open(ctx context.Context, cfg config.Storage, log *slog.Logger) (*Store, error) {
	const op = "storage.Open"
	log = log.With(slog.String("op", op), slog.String("driver", cfg.Driver))

	switch cfg.Driver {
	case config.DriverMongo:
		s, err := mongodb.New(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		log.Info("connected to mongodb", slog.String("database", cfg.MongoDatabase))
		return &Store{Users: s.Users, Items: s.Items, Driver: cfg.Driver, closer: s.Close}, nil

	case config.DriverPostgres:
		s, err := postgresql.New(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if err := postgresql.Migrate(s.DB, cfg.PostgresMigrations); err != nil {
			_ = s.Close(ctx)
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		log.Info("connected to postgres, migrations applied")
		return &Store{Users: s.Users, Items: s.Items, Driver: cfg.Driver, closer: s.Close}, nil

	case config.DriverMemory:
		s := memory.New()
		log.Warn("using in-memory storage, data is lost on restart")
		return &Store{Users: s.Users, Items: s.Items, Driver: cfg.Driver}, nil

	default:
		return nil, fmt.Errorf("%s: unknown driver %q", op, cfg.Driver)
	}
}
