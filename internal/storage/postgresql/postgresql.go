// Package postgresql реализует хранилище пользователей и товаров на PostgreSQL
// через database/sql с драйвером pgx. Схема создаётся миграциями golang-migrate.
package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	// Регистрация драйвера pgx для использования с database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/magabrotheeeer/catalog/internal/lib/apperr"
)

// uniqueViolation — SQLSTATE нарушения уникального ограничения.
const uniqueViolation = "23505"

// Storage инкапсулирует соединение с PostgreSQL и репозитории.
type Storage struct {
	DB    *sql.DB
	Users *UserRepo
	Items *ItemRepo
}

// New открывает пул соединений и проверяет доступность базы.
func New(ctx context.Context, dsn string) (*Storage, error) {
	const op = "storage.postgresql.New"

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return NewWithDB(db), nil
}

// NewWithDB строит Storage поверх готового *sql.DB.
func NewWithDB(db *sql.DB) *Storage {
	return &Storage{
		DB:    db,
		Users: &UserRepo{db: db, now: now},
		Items: &ItemRepo{db: db, now: now},
	}
}

// Close закрывает пул соединений.
func (s *Storage) Close(_ context.Context) error {
	return s.DB.Close()
}

func now() time.Time {
	return time.Now().UTC()
}

// parseID проверяет, что id является UUID. Некорректный id означает, что записи нет.
func parseID(id string) (uuid.UUID, error) {
	u, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, apperr.ErrNotFound
	}
	return u, nil
}

func mapError(err error) error {
	var pgErr *pgconn.PgError
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return apperr.ErrNotFound
	case errors.As(err, &pgErr) && pgErr.Code == uniqueViolation:
		return apperr.ErrDuplicate
	default:
		return err
	}
}

type scanner interface {
	Scan(dest ...any) error
}
