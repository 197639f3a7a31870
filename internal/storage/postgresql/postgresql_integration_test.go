//go:build integration

package postgresql

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/magabrotheeeer/catalog/internal/lib/apperr"
	"github.com/magabrotheeeer/catalog/internal/models"
)

func setupPostgres(t *testing.T) (*Storage, func()) {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("catalog"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	s, err := New(ctx, dsn)
	require.NoError(t, err)

	return s, func() {
		_ = s.Close(ctx)
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}
}

func migrationsURL(t *testing.T) string {
	root, err := filepath.Abs("../../..")
	require.NoError(t, err)
	return "file://" + filepath.Join(root, "migrations", "postgres")
}

func TestMigrate_Idempotent(t *testing.T) {
	s, cleanup := setupPostgres(t)
	defer cleanup()

	require.NoError(t, Migrate(s.DB, migrationsURL(t)))
	require.NoError(t, Migrate(s.DB, migrationsURL(t)))

	var exists bool
	err := s.DB.QueryRow(`SELECT EXISTS (
			SELECT 1 FROM information_schema.tables
			WHERE table_schema = 'public' AND table_name = 'items'
		)`).Scan(&exists)
	require.NoError(t, err)
	assert.True(t, exists, "Table 'items' should exist")
}

func TestPostgres_UserAndItemLifecycle(t *testing.T) {
	s, cleanup := setupPostgres(t)
	defer cleanup()
	require.NoError(t, Migrate(s.DB, migrationsURL(t)))
	ctx := context.Background()

	alice, err := s.Users.Create(ctx, models.User{Username: "alice", Email: "alice@example.com", PasswordHash: "h"})
	require.NoError(t, err)
	_, err = s.Users.Create(ctx, models.User{Username: "bob", Email: "alice@example.com", PasswordHash: "h"})
	assert.ErrorIs(t, err, apperr.ErrDuplicate)

	item, err := s.Items.Create(ctx, models.Item{Title: "Lamp", Description: "d", Price: 10, Category: "home", Owner: alice.Owner()})
	require.NoError(t, err)

	got, err := s.Items.FindByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Owner.Username)

	ids, err := s.Items.DeleteByOwner(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{item.ID}, ids)

	require.NoError(t, s.Users.Delete(ctx, alice.ID))
	assert.ErrorIs(t, s.Users.Delete(ctx, alice.ID), apperr.ErrNotFound)
}
