package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/catalog/internal/models"
)

const userColumns = `id, username, email, password_hash, is_admin, created_at, updated_at`

// UserRepo хранит пользователей в таблице users.
type UserRepo struct {
	db  *sql.DB
	now func() time.Time
}

func scanUser(row scanner) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.IsAdmin, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// Create сохраняет пользователя с новым UUID.
func (r *UserRepo) Create(ctx context.Context, u models.User) (models.User, error) {
	const op = "storage.postgresql.Users.Create"

	ts := r.now()
	u.ID = uuid.NewString()
	u.CreatedAt, u.UpdatedAt = ts, ts

	query := `INSERT INTO users (` + userColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := r.db.ExecContext(ctx, query,
		u.ID, u.Username, u.Email, u.PasswordHash, u.IsAdmin, u.CreatedAt, u.UpdatedAt); err != nil {
		return models.User{}, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return u, nil
}

// FindByID возвращает пользователя по id.
func (r *UserRepo) FindByID(ctx context.Context, id string) (models.User, error) {
	const op = "storage.postgresql.Users.FindByID"

	uid, err := parseID(id)
	if err != nil {
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	u, err := scanUser(r.db.QueryRowContext(ctx, query, uid.String()))
	if err != nil {
		return models.User{}, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return u, nil
}

// FindByEmail возвращает пользователя по email.
func (r *UserRepo) FindByEmail(ctx context.Context, email string) (models.User, error) {
	const op = "storage.postgresql.Users.FindByEmail"

	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	u, err := scanUser(r.db.QueryRowContext(ctx, query, email))
	if err != nil {
		return models.User{}, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return u, nil
}

// FindByEmailOrUsername возвращает любого пользователя с таким email или username.
func (r *UserRepo) FindByEmailOrUsername(ctx context.Context, email, username string) (models.User, error) {
	const op = "storage.postgresql.Users.FindByEmailOrUsername"

	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1 OR username = $2 LIMIT 1`
	u, err := scanUser(r.db.QueryRowContext(ctx, query, email, username))
	if err != nil {
		return models.User{}, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return u, nil
}

// Update применяет переданные поля. Поля со значением nil не меняются.
func (r *UserRepo) Update(ctx context.Context, id string, changes models.UserChanges) (models.User, error) {
	const op = "storage.postgresql.Users.Update"

	uid, err := parseID(id)
	if err != nil {
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}
	query := `UPDATE users SET
				username = COALESCE($2, username),
				email = COALESCE($3, email),
				password_hash = COALESCE($4, password_hash),
				updated_at = $5
			  WHERE id = $1
			  RETURNING ` + userColumns
	u, err := scanUser(r.db.QueryRowContext(ctx, query,
		uid.String(), changes.Username, changes.Email, changes.PasswordHash, r.now()))
	if err != nil {
		return models.User{}, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return u, nil
}

// List возвращает всех пользователей в порядке регистрации.
func (r *UserRepo) List(ctx context.Context) ([]models.User, error) {
	const op = "storage.postgresql.Users.List"

	rows, err := r.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = rows.Close() }()

	users := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return users, nil
}

// Delete удаляет пользователя по id.
func (r *UserRepo) Delete(ctx context.Context, id string) error {
	const op = "storage.postgresql.Users.Delete"

	uid, err := parseID(id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, uid.String())
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, mapError(sql.ErrNoRows))
	}
	return nil
}
