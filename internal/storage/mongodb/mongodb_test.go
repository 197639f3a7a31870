package mongodb

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/magabrotheeeer/catalog/internal/lib/apperr"
	"github.com/magabrotheeeer/catalog/internal/models"
)

const (
	usersNS = "catalog.users"
	itemsNS = "catalog.items"
)

func newMock(t *testing.T) *mtest.T {
	return mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
}

func userBSON(id primitive.ObjectID, username, email string, admin bool) bson.D {
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "username", Value: username},
		{Key: "email", Value: email},
		{Key: "password", Value: "hash"},
		{Key: "isAdmin", Value: admin},
		{Key: "createdAt", Value: ts},
		{Key: "updatedAt", Value: ts},
	}
}

func TestUserRepo_Create(t *testing.T) {
	mt := newMock(t)

	mt.Run("success", func(mt *mtest.T) {
		repo := NewUserRepo(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		got, err := repo.Create(context.Background(), models.User{
			Username: "alice", Email: "alice@example.com", PasswordHash: "hash",
		})
		require.NoError(t, err)
		assert.Len(t, got.ID, 24)
		assert.Equal(t, "alice", got.Username)
		assert.Equal(t, "hash", got.PasswordHash)
		assert.False(t, got.CreatedAt.IsZero())
		assert.Equal(t, got.CreatedAt, got.UpdatedAt)
	})

	mt.Run("duplicate key", func(mt *mtest.T) {
		repo := NewUserRepo(mt.DB)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index: 0, Code: 11000, Message: "duplicate key error",
		}))

		_, err := repo.Create(context.Background(), models.User{Username: "alice", Email: "a@b.c"})
		assert.ErrorIs(t, err, apperr.ErrDuplicate)
	})
}

func TestUserRepo_FindByID(t *testing.T) {
	mt := newMock(t)
	id := primitive.NewObjectID()

	mt.Run("found", func(mt *mtest.T) {
		repo := NewUserRepo(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, usersNS, mtest.FirstBatch,
			userBSON(id, "alice", "alice@example.com", true)))

		got, err := repo.FindByID(context.Background(), id.Hex())
		require.NoError(t, err)
		assert.Equal(t, id.Hex(), got.ID)
		assert.Equal(t, "alice@example.com", got.Email)
		assert.True(t, got.IsAdmin)
	})

	mt.Run("not found", func(mt *mtest.T) {
		repo := NewUserRepo(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, usersNS, mtest.FirstBatch))

		_, err := repo.FindByID(context.Background(), id.Hex())
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})

	mt.Run("malformed id", func(mt *mtest.T) {
		repo := NewUserRepo(mt.DB)

		_, err := repo.FindByID(context.Background(), "not-an-object-id")
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})
}

func TestUserRepo_FindByEmailOrUsername(t *testing.T) {
	mt := newMock(t)

	mt.Run("match", func(mt *mtest.T) {
		repo := NewUserRepo(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, usersNS, mtest.FirstBatch,
			userBSON(primitive.NewObjectID(), "alice", "alice@example.com", false)))

		got, err := repo.FindByEmailOrUsername(context.Background(), "other@example.com", "alice")
		require.NoError(t, err)
		assert.Equal(t, "alice", got.Username)
	})
}

func TestUserRepo_Update(t *testing.T) {
	mt := newMock(t)
	id := primitive.NewObjectID()

	mt.Run("returns updated document", func(mt *mtest.T) {
		repo := NewUserRepo(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "value", Value: userBSON(id, "renamed", "alice@example.com", false)},
		))

		name := "renamed"
		got, err := repo.Update(context.Background(), id.Hex(), models.UserChanges{Username: &name})
		require.NoError(t, err)
		assert.Equal(t, "renamed", got.Username)
	})

	mt.Run("duplicate", func(mt *mtest.T) {
		repo := NewUserRepo(mt.DB)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code: 11000, Message: "E11000 duplicate key error",
		}))

		email := "taken@example.com"
		_, err := repo.Update(context.Background(), id.Hex(), models.UserChanges{Email: &email})
		assert.ErrorIs(t, err, apperr.ErrDuplicate)
	})
}

func TestUserRepo_Delete(t *testing.T) {
	mt := newMock(t)
	id := primitive.NewObjectID()

	mt.Run("deleted", func(mt *mtest.T) {
		repo := NewUserRepo(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))

		require.NoError(t, repo.Delete(context.Background(), id.Hex()))
	})

	mt.Run("missing", func(mt *mtest.T) {
		repo := NewUserRepo(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))

		assert.ErrorIs(t, repo.Delete(context.Background(), id.Hex()), apperr.ErrNotFound)
	})
}

func TestItemRepo_FindByID(t *testing.T) {
	mt := newMock(t)
	itemID := primitive.NewObjectID()
	ownerID := primitive.NewObjectID()
	ts := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	itemBSON := func(withOwner bool) bson.D {
		d := bson.D{
			{Key: "_id", Value: itemID},
			{Key: "title", Value: "Lamp"},
			{Key: "description", Value: "Desk lamp"},
			{Key: "price", Value: 19.5},
			{Key: "category", Value: "home"},
			{Key: "createdBy", Value: ownerID},
			{Key: "createdAt", Value: ts},
			{Key: "updatedAt", Value: ts},
		}
		if withOwner {
			d = append(d, bson.E{Key: "owner", Value: bson.D{
				{Key: "_id", Value: ownerID},
				{Key: "username", Value: "alice"},
			}})
		}
		return d
	}

	mt.Run("owner joined", func(mt *mtest.T) {
		repo := NewItemRepo(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, itemsNS, mtest.FirstBatch, itemBSON(true)))

		got, err := repo.FindByID(context.Background(), itemID.Hex())
		require.NoError(t, err)
		assert.Equal(t, itemID.Hex(), got.ID)
		assert.Equal(t, 19.5, got.Price)
		assert.Equal(t, models.Owner{ID: ownerID.Hex(), Username: "alice"}, got.Owner)
	})

	mt.Run("owner deleted", func(mt *mtest.T) {
		repo := NewItemRepo(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, itemsNS, mtest.FirstBatch, itemBSON(false)))

		got, err := repo.FindByID(context.Background(), itemID.Hex())
		require.NoError(t, err)
		assert.Equal(t, ownerID.Hex(), got.Owner.ID)
		assert.Empty(t, got.Owner.Username)
	})

	mt.Run("not found", func(mt *mtest.T) {
		repo := NewItemRepo(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, itemsNS, mtest.FirstBatch))

		_, err := repo.FindByID(context.Background(), itemID.Hex())
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})

	mt.Run("malformed id", func(mt *mtest.T) {
		repo := NewItemRepo(mt.DB)

		_, err := repo.FindByID(context.Background(), "123")
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})
}

func TestItemRepo_Create(t *testing.T) {
	mt := newMock(t)
	ownerID := primitive.NewObjectID()

	mt.Run("success keeps owner username", func(mt *mtest.T) {
		repo := NewItemRepo(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		got, err := repo.Create(context.Background(), models.Item{
			Title: "Lamp", Description: "Desk lamp", Price: 0, Category: "home",
			Owner: models.Owner{ID: ownerID.Hex(), Username: "alice"},
		})
		require.NoError(t, err)
		assert.Len(t, got.ID, 24)
		assert.Equal(t, models.Owner{ID: ownerID.Hex(), Username: "alice"}, got.Owner)
		assert.Zero(t, got.Price)
	})

	mt.Run("bad owner id", func(mt *mtest.T) {
		repo := NewItemRepo(mt.DB)

		_, err := repo.Create(context.Background(), models.Item{Owner: models.Owner{ID: "x"}})
		assert.ErrorIs(t, err, apperr.ErrValidation)
	})
}

func TestItemRepo_Update_NotFound(t *testing.T) {
	mt := newMock(t)

	mt.Run("no match", func(mt *mtest.T) {
		repo := NewItemRepo(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 0},
			bson.E{Key: "nModified", Value: 0},
		))

		title := "New"
		_, err := repo.Update(context.Background(), primitive.NewObjectID().Hex(), models.ItemPatch{Title: &title})
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})
}

func TestItemRepo_DeleteByOwner(t *testing.T) {
	mt := newMock(t)
	ownerID := primitive.NewObjectID()
	a, b := primitive.NewObjectID(), primitive.NewObjectID()

	mt.Run("returns deleted ids", func(mt *mtest.T) {
		repo := NewItemRepo(mt.DB)
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, itemsNS, mtest.FirstBatch,
				bson.D{{Key: "_id", Value: a}},
				bson.D{{Key: "_id", Value: b}},
			),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 2}),
		)

		ids, err := repo.DeleteByOwner(context.Background(), ownerID.Hex())
		require.NoError(t, err)
		assert.Equal(t, []string{a.Hex(), b.Hex()}, ids)
	})

	mt.Run("nothing to delete", func(mt *mtest.T) {
		repo := NewItemRepo(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, itemsNS, mtest.FirstBatch))

		ids, err := repo.DeleteByOwner(context.Background(), ownerID.Hex())
		require.NoError(t, err)
		assert.Empty(t, ids)
	})
}

func TestWithOwnerPipeline(t *testing.T) {
	all := withOwner(nil)
	require.Len(t, all, 4)
	assert.Equal(t, "$sort", all[0][0].Key)

	one := withOwner(bson.M{"_id": primitive.NewObjectID()})
	require.Len(t, one, 5)
	assert.Equal(t, "$match", one[0][0].Key)
	assert.Equal(t, "$lookup", one[2][0].Key)
}
