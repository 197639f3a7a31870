package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/magabrotheeeer/catalog/internal/models"
)

type userDoc struct {
	ID        primitive.ObjectID `bson:"_id"`
	Username  string             `bson:"username"`
	Email     string             `bson:"email"`
	Password  string             `bson:"password"`
	IsAdmin   bool               `bson:"isAdmin"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

func (d userDoc) model() models.User {
	return models.User{
		ID:           d.ID.Hex(),
		Username:     d.Username,
		Email:        d.Email,
		PasswordHash: d.Password,
		IsAdmin:      d.IsAdmin,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

// UserRepo хранит пользователей в коллекции users.
type UserRepo struct {
	collection *mongo.Collection
}

// NewUserRepo создаёт репозиторий пользователей.
func NewUserRepo(db *mongo.Database) *UserRepo {
	return &UserRepo{collection: db.Collection(usersCollection)}
}

// Create сохраняет пользователя и возвращает его с присвоенным id.
func (r *UserRepo) Create(ctx context.Context, u models.User) (models.User, error) {
	const op = "storage.mongodb.Users.Create"

	ts := now()
	doc := userDoc{
		ID:        primitive.NewObjectID(),
		Username:  u.Username,
		Email:     u.Email,
		Password:  u.PasswordHash,
		IsAdmin:   u.IsAdmin,
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return models.User{}, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return doc.model(), nil
}

// FindByID возвращает пользователя по id.
func (r *UserRepo) FindByID(ctx context.Context, id string) (models.User, error) {
	const op = "storage.mongodb.Users.FindByID"

	oid, err := objectID(id)
	if err != nil {
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}
	return r.findOne(ctx, op, bson.M{"_id": oid})
}

// FindByEmail возвращает пользователя по email.
func (r *UserRepo) FindByEmail(ctx context.Context, email string) (models.User, error) {
	return r.findOne(ctx, "storage.mongodb.Users.FindByEmail", bson.M{"email": email})
}

// FindByEmailOrUsername возвращает любого пользователя с таким email или username.
func (r *UserRepo) FindByEmailOrUsername(ctx context.Context, email, username string) (models.User, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"email": email},
		bson.M{"username": username},
	}}
	return r.findOne(ctx, "storage.mongodb.Users.FindByEmailOrUsername", filter)
}

func (r *UserRepo) findOne(ctx context.Context, op string, filter bson.M) (models.User, error) {
	var doc userDoc
	if err := r.collection.FindOne(ctx, filter).Decode(&doc); err != nil {
		return models.User{}, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return doc.model(), nil
}

// Update применяет изменения и возвращает обновлённого пользователя.
func (r *UserRepo) Update(ctx context.Context, id string, changes models.UserChanges) (models.User, error) {
	const op = "storage.mongodb.Users.Update"

	oid, err := objectID(id)
	if err != nil {
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	set := bson.M{"updatedAt": now()}
	if changes.Username != nil {
		set["username"] = *changes.Username
	}
	if changes.Email != nil {
		set["email"] = *changes.Email
	}
	if changes.PasswordHash != nil {
		set["password"] = *changes.PasswordHash
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc userDoc
	err = r.collection.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&doc)
	if err != nil {
		return models.User{}, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return doc.model(), nil
}

// List возвращает всех пользователей в порядке регистрации.
func (r *UserRepo) List(ctx context.Context) ([]models.User, error) {
	const op = "storage.mongodb.Users.List"

	cur, err := r.collection.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	var docs []userDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	users := make([]models.User, 0, len(docs))
	for _, d := range docs {
		users = append(users, d.model())
	}
	return users, nil
}

// Delete удаляет пользователя по id.
func (r *UserRepo) Delete(ctx context.Context, id string) error {
	const op = "storage.mongodb.Users.Delete"

	oid, err := objectID(id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%s: %w", op, mapError(mongo.ErrNoDocuments))
	}
	return nil
}
