package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/magabrotheeeer/catalog/internal/lib/apperr"
	"github.com/magabrotheeeer/catalog/internal/models"
)

type itemDoc struct {
	ID          primitive.ObjectID `bson:"_id"`
	Title       string             `bson:"title"`
	Description string             `bson:"description"`
	Price       float64            `bson:"price"`
	Category    string             `bson:"category"`
	CreatedBy   primitive.ObjectID `bson:"createdBy"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

// itemView — результат агрегации items + $lookup по users.
type itemView struct {
	itemDoc `bson:",inline"`
	Owner   *struct {
		Username string `bson:"username"`
	} `bson:"owner,omitempty"`
}

func (v itemView) model() models.Item {
	it := models.Item{
		ID:          v.ID.Hex(),
		Title:       v.Title,
		Description: v.Description,
		Price:       v.Price,
		Category:    v.Category,
		Owner:       models.Owner{ID: v.CreatedBy.Hex()},
		CreatedAt:   v.CreatedAt,
		UpdatedAt:   v.UpdatedAt,
	}
	if v.Owner != nil {
		it.Owner.Username = v.Owner.Username
	}
	return it
}

// ItemRepo хранит товары в коллекции items.
type ItemRepo struct {
	collection *mongo.Collection
}

// NewItemRepo создаёт репозиторий товаров.
func NewItemRepo(db *mongo.Database) *ItemRepo {
	return &ItemRepo{collection: db.Collection(itemsCollection)}
}

// withOwner строит конвейер: фильтр, сортировка от новых к старым и
// подстановка username владельца.
func withOwner(match bson.M) mongo.Pipeline {
	pipeline := mongo.Pipeline{}
	if match != nil {
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: match}})
	}
	return append(pipeline,
		bson.D{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}}}},
		bson.D{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: usersCollection},
			{Key: "localField", Value: "createdBy"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "owner"},
		}}},
		bson.D{{Key: "$unwind", Value: bson.D{
			{Key: "path", Value: "$owner"},
			{Key: "preserveNullAndEmptyArrays", Value: true},
		}}},
		bson.D{{Key: "$project", Value: bson.D{
			{Key: "owner.password", Value: 0},
			{Key: "owner.email", Value: 0},
		}}},
	)
}

// Create сохраняет товар. Имя владельца берётся из it.Owner.
func (r *ItemRepo) Create(ctx context.Context, it models.Item) (models.Item, error) {
	const op = "storage.mongodb.Items.Create"

	owner, err := primitive.ObjectIDFromHex(it.Owner.ID)
	if err != nil {
		return models.Item{}, fmt.Errorf("%s: owner id: %w", op, apperr.ErrValidation)
	}

	ts := now()
	doc := itemDoc{
		ID:          primitive.NewObjectID(),
		Title:       it.Title,
		Description: it.Description,
		Price:       it.Price,
		Category:    it.Category,
		CreatedBy:   owner,
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return models.Item{}, fmt.Errorf("%s: %w", op, mapError(err))
	}

	created := itemView{itemDoc: doc}.model()
	created.Owner.Username = it.Owner.Username
	return created, nil
}

// FindByID возвращает товар с именем владельца.
func (r *ItemRepo) FindByID(ctx context.Context, id string) (models.Item, error) {
	const op = "storage.mongodb.Items.FindByID"

	oid, err := objectID(id)
	if err != nil {
		return models.Item{}, fmt.Errorf("%s: %w", op, err)
	}
	items, err := r.aggregate(ctx, bson.M{"_id": oid})
	if err != nil {
		return models.Item{}, fmt.Errorf("%s: %w", op, err)
	}
	if len(items) == 0 {
		return models.Item{}, fmt.Errorf("%s: %w", op, apperr.ErrNotFound)
	}
	return items[0], nil
}

// List возвращает все товары, новые первыми.
func (r *ItemRepo) List(ctx context.Context) ([]models.Item, error) {
	const op = "storage.mongodb.Items.List"

	items, err := r.aggregate(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return items, nil
}

func (r *ItemRepo) aggregate(ctx context.Context, match bson.M) ([]models.Item, error) {
	cur, err := r.collection.Aggregate(ctx, withOwner(match))
	if err != nil {
		return nil, err
	}
	var views []itemView
	if err := cur.All(ctx, &views); err != nil {
		return nil, err
	}
	items := make([]models.Item, 0, len(views))
	for _, v := range views {
		items = append(items, v.model())
	}
	return items, nil
}

// Update применяет переданные поля и возвращает товар после изменения.
func (r *ItemRepo) Update(ctx context.Context, id string, patch models.ItemPatch) (models.Item, error) {
	const op = "storage.mongodb.Items.Update"

	oid, err := objectID(id)
	if err != nil {
		return models.Item{}, fmt.Errorf("%s: %w", op, err)
	}

	set := bson.M{"updatedAt": now()}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.Price != nil {
		set["price"] = *patch.Price
	}
	if patch.Category != nil {
		set["category"] = *patch.Category
	}

	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
	if err != nil {
		return models.Item{}, fmt.Errorf("%s: %w", op, err)
	}
	if res.MatchedCount == 0 {
		return models.Item{}, fmt.Errorf("%s: %w", op, apperr.ErrNotFound)
	}
	return r.FindByID(ctx, id)
}

// Delete удаляет товар по id.
func (r *ItemRepo) Delete(ctx context.Context, id string) error {
	const op = "storage.mongodb.Items.Delete"

	oid, err := objectID(id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%s: %w", op, apperr.ErrNotFound)
	}
	return nil
}

// DeleteByOwner удаляет все товары пользователя и возвращает их id.
func (r *ItemRepo) DeleteByOwner(ctx context.Context, ownerID string) ([]string, error) {
	const op = "storage.mongodb.Items.DeleteByOwner"

	oid, err := objectID(ownerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	filter := bson.M{"createdBy": oid}

	cur, err := r.collection.Find(ctx, filter, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	var docs []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if len(docs) == 0 {
		return nil, nil
	}

	if _, err := r.collection.DeleteMany(ctx, filter); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	ids := make([]string, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.ID.Hex())
	}
	return ids, nil
}
