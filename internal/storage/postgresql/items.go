package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/catalog/internal/lib/apperr"
	"github.com/magabrotheeeer/catalog/internal/models"
)

const itemSelect = `SELECT i.id, i.title, i.description, i.price, i.category,
				i.created_by, COALESCE(u.username, ''), i.created_at, i.updated_at
			  FROM items i
			  LEFT JOIN users u ON u.id = i.created_by`

// ItemRepo хранит товары в таблице items.
type ItemRepo struct {
	db  *sql.DB
	now func() time.Time
}

func scanItem(row scanner) (models.Item, error) {
	var it models.Item
	err := row.Scan(&it.ID, &it.Title, &it.Description, &it.Price, &it.Category,
		&it.Owner.ID, &it.Owner.Username, &it.CreatedAt, &it.UpdatedAt)
	return it, err
}

// Create сохраняет товар с новым UUID. Имя владельца берётся из it.Owner.
func (r *ItemRepo) Create(ctx context.Context, it models.Item) (models.Item, error) {
	const op = "storage.postgresql.Items.Create"

	if _, err := uuid.Parse(it.Owner.ID); err != nil {
		return models.Item{}, fmt.Errorf("%s: owner id: %w", op, apperr.ErrValidation)
	}

	ts := r.now()
	it.ID = uuid.NewString()
	it.CreatedAt, it.UpdatedAt = ts, ts

	query := `INSERT INTO items (id, title, description, price, category, created_by, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	if _, err := r.db.ExecContext(ctx, query,
		it.ID, it.Title, it.Description, it.Price, it.Category, it.Owner.ID, it.CreatedAt, it.UpdatedAt); err != nil {
		return models.Item{}, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return it, nil
}

// FindByID возвращает товар с именем владельца.
func (r *ItemRepo) FindByID(ctx context.Context, id string) (models.Item, error) {
	const op = "storage.postgresql.Items.FindByID"

	uid, err := parseID(id)
	if err != nil {
		return models.Item{}, fmt.Errorf("%s: %w", op, err)
	}
	it, err := scanItem(r.db.QueryRowContext(ctx, itemSelect+` WHERE i.id = $1`, uid.String()))
	if err != nil {
		return models.Item{}, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return it, nil
}

// List возвращает все товары, новые первыми.
func (r *ItemRepo) List(ctx context.Context) ([]models.Item, error) {
	const op = "storage.postgresql.Items.List"

	rows, err := r.db.QueryContext(ctx, itemSelect+` ORDER BY i.created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = rows.Close() }()

	items := []models.Item{}
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return items, nil
}

// Update применяет переданные поля и возвращает товар после изменения.
func (r *ItemRepo) Update(ctx context.Context, id string, patch models.ItemPatch) (models.Item, error) {
	const op = "storage.postgresql.Items.Update"

	uid, err := parseID(id)
	if err != nil {
		return models.Item{}, fmt.Errorf("%s: %w", op, err)
	}
	query := `UPDATE items SET
				title = COALESCE($2, title),
				description = COALESCE($3, description),
				price = COALESCE($4, price),
				category = COALESCE($5, category),
				updated_at = $6
			  WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query,
		uid.String(), patch.Title, patch.Description, patch.Price, patch.Category, r.now())
	if err != nil {
		return models.Item{}, fmt.Errorf("%s: %w", op, mapError(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return models.Item{}, fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return models.Item{}, fmt.Errorf("%s: %w", op, apperr.ErrNotFound)
	}
	return r.FindByID(ctx, id)
}

// Delete удаляет товар по id.
func (r *ItemRepo) Delete(ctx context.Context, id string) error {
	const op = "storage.postgresql.Items.Delete"

	uid, err := parseID(id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM items WHERE id = $1`, uid.String())
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, apperr.ErrNotFound)
	}
	return nil
}

// DeleteByOwner удаляет все товары пользователя и возвращает их id.
func (r *ItemRepo) DeleteByOwner(ctx context.Context, ownerID string) ([]string, error) {
	const op = "storage.postgresql.Items.DeleteByOwner"

	uid, err := parseID(ownerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	rows, err := r.db.QueryContext(ctx, `DELETE FROM items WHERE created_by = $1 RETURNING id`, uid.String())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = rows.Close() }()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return ids, nil
}
