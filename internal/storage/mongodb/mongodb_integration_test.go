//go:build integration

package mongodb

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/magabrotheeeer/catalog/internal/lib/apperr"
	"github.com/magabrotheeeer/catalog/internal/models"
)

func setupMongo(t *testing.T) (*Storage, func()) {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "mongo:7",
			ExposedPorts: []string{"27017/tcp"},
			WaitingFor:   wait.ForListeningPort("27017/tcp").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)

	uri, err := container.Endpoint(ctx, "mongodb")
	require.NoError(t, err)

	s, err := New(ctx, uri, "catalog_test")
	require.NoError(t, err)

	return s, func() {
		_ = s.Close(ctx)
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}
}

func TestMongo_UserAndItemLifecycle(t *testing.T) {
	s, cleanup := setupMongo(t)
	defer cleanup()
	ctx := context.Background()

	alice, err := s.Users.Create(ctx, models.User{Username: "alice", Email: "alice@example.com", PasswordHash: "h"})
	require.NoError(t, err)

	_, err = s.Users.Create(ctx, models.User{Username: "alice", Email: "other@example.com", PasswordHash: "h"})
	assert.ErrorIs(t, err, apperr.ErrDuplicate)

	first, err := s.Items.Create(ctx, models.Item{Title: "A", Description: "a", Price: 1, Category: "c", Owner: alice.Owner()})
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)
	second, err := s.Items.Create(ctx, models.Item{Title: "B", Description: "b", Price: 2, Category: "c", Owner: alice.Owner()})
	require.NoError(t, err)

	list, err := s.Items.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID, "newest first")
	assert.Equal(t, "alice", list[1].Owner.Username)

	price := 0.0
	updated, err := s.Items.Update(ctx, first.ID, models.ItemPatch{Price: &price})
	require.NoError(t, err)
	assert.Zero(t, updated.Price)
	assert.Equal(t, "A", updated.Title)

	ids, err := s.Items.DeleteByOwner(ctx, alice.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{first.ID, second.ID}, ids)

	require.NoError(t, s.Users.Delete(ctx, alice.ID))
	_, err = s.Users.FindByID(ctx, alice.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
