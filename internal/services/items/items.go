// Package items содержит бизнес-логику каталога товаров: проверку полей,
// правило владения, кэширование чтения по id и публикацию событий.
package items

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/magabrotheeeer/catalog/internal/cache"
	"github.com/magabrotheeeer/catalog/internal/events"
	"github.com/magabrotheeeer/catalog/internal/lib/access"
	"github.com/magabrotheeeer/catalog/internal/lib/apperr"
	"github.com/magabrotheeeer/catalog/internal/lib/sl"
	"github.com/magabrotheeeer/catalog/internal/metrics"
	"github.com/magabrotheeeer/catalog/internal/models"
)

// Сообщения для клиента.
const (
	MsgNotFound        = "Item not found"
	MsgForbiddenUpdate = "Not authorized to update this item"
	MsgForbiddenDelete = "Not authorized to delete this item"
	MsgRequired        = "Title, description, price and category are required"
	MsgTitleTooLong    = "Title must be at most 100 characters"
	MsgNegativePrice   = "Price must be a non-negative number"
)

// ItemRepository описывает хранилище товаров.
type ItemRepository interface {
	Create(ctx context.Context, it models.Item) (models.Item, error)
	FindByID(ctx context.Context, id string) (models.Item, error)
	List(ctx context.Context) ([]models.Item, error)
	Update(ctx context.Context, id string, patch models.ItemPatch) (models.Item, error)
	Delete(ctx context.Context, id string) error
	DeleteByOwner(ctx context.Context, ownerID string) ([]string, error)
}

// Service реализует операции над товарами.
type Service struct {
	log      *slog.Logger
	items    ItemRepository
	cache    cache.Cache
	cacheTTL time.Duration
	events   events.Publisher
	metrics  *metrics.Metrics
}

// New создаёт Service. m может быть nil.
func New(log *slog.Logger, items ItemRepository, c cache.Cache, cacheTTL time.Duration, pub events.Publisher, m *metrics.Metrics) *Service {
	return &Service{
		log:      log,
		items:    items,
		cache:    c,
		cacheTTL: cacheTTL,
		events:   pub,
		metrics:  m,
	}
}

func cacheKey(id string) string {
	return "item:" + id
}

// List возвращает все товары, новые первыми.
func (s *Service) List(ctx context.Context) ([]models.Item, error) {
	const op = "services.items.List"

	items, err := s.items.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return items, nil
}

// Get возвращает товар по id, сначала заглядывая в кэш.
func (s *Service) Get(ctx context.Context, id string) (models.Item, error) {
	const op = "services.items.Get"
	log := s.log.With(slog.String("op", op), slog.String("item_id", id))

	var it models.Item
	found, err := s.cache.Get(ctx, cacheKey(id), &it)
	if err != nil {
		log.Warn("cache read failed", sl.Err(err))
	}
	if found {
		s.metrics.CacheHit()
		return it, nil
	}
	s.metrics.CacheMiss()

	it, err = s.find(ctx, op, id)
	if err != nil {
		return models.Item{}, err
	}
	if err := s.cache.Set(ctx, cacheKey(id), it, s.cacheTTL); err != nil {
		log.Warn("cache write failed", sl.Err(err))
	}
	return it, nil
}

func (s *Service) find(ctx context.Context, op, id string) (models.Item, error) {
	it, err := s.items.FindByID(ctx, id)
	if errors.Is(err, apperr.ErrNotFound) {
		return models.Item{}, apperr.New(apperr.ErrNotFound, MsgNotFound)
	}
	if err != nil {
		return models.Item{}, fmt.Errorf("%s: %w", op, err)
	}
	return it, nil
}

// Create сохраняет товар от имени actor.
func (s *Service) Create(ctx context.Context, actor models.User, in models.ItemInput) (models.Item, error) {
	const op = "services.items.Create"

	it := models.Item{
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Category:    strings.TrimSpace(in.Category),
		Owner:       actor.Owner(),
	}
	if it.Title == "" || it.Description == "" || it.Category == "" || in.Price == nil {
		return models.Item{}, apperr.New(apperr.ErrValidation, MsgRequired)
	}
	it.Price = *in.Price
	if err := validate(it.Title, it.Price); err != nil {
		return models.Item{}, err
	}

	created, err := s.items.Create(ctx, it)
	if err != nil {
		return models.Item{}, fmt.Errorf("%s: %w", op, err)
	}

	events.Emit(ctx, s.events, s.log, events.New(events.ItemCreated, created))
	return created, nil
}

// Update применяет частичное изменение. Пустые строки означают
// "не менять", цена 0 является допустимым значением.
func (s *Service) Update(ctx context.Context, actor models.User, id string, patch models.ItemPatch) (models.Item, error) {
	const op = "services.items.Update"

	existing, err := s.find(ctx, op, id)
	if err != nil {
		return models.Item{}, err
	}
	if !access.CanMutate(actor, existing.Owner.ID) {
		return models.Item{}, apperr.New(apperr.ErrForbidden, MsgForbiddenUpdate)
	}

	patch = normalize(patch)
	if patch.Empty() {
		return existing, nil
	}
	next := patch.Apply(existing)
	if err := validate(next.Title, next.Price); err != nil {
		return models.Item{}, err
	}

	updated, err := s.items.Update(ctx, id, patch)
	if errors.Is(err, apperr.ErrNotFound) {
		return models.Item{}, apperr.New(apperr.ErrNotFound, MsgNotFound)
	}
	if err != nil {
		return models.Item{}, fmt.Errorf("%s: %w", op, err)
	}

	s.invalidate(ctx, id)
	events.Emit(ctx, s.events, s.log, events.New(events.ItemUpdated, updated))
	return updated, nil
}

// Delete удаляет товар, если actor его владелец или администратор.
func (s *Service) Delete(ctx context.Context, actor models.User, id string) error {
	const op = "services.items.Delete"

	existing, err := s.find(ctx, op, id)
	if err != nil {
		return err
	}
	if !access.CanMutate(actor, existing.Owner.ID) {
		return apperr.New(apperr.ErrForbidden, MsgForbiddenDelete)
	}

	err = s.items.Delete(ctx, id)
	if errors.Is(err, apperr.ErrNotFound) {
		return apperr.New(apperr.ErrNotFound, MsgNotFound)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.invalidate(ctx, id)
	events.Emit(ctx, s.events, s.log, events.New(events.ItemDeleted, existing))
	return nil
}

// DeleteByOwner удаляет все товары пользователя.
func (s *Service) DeleteByOwner(ctx context.Context, ownerID string) ([]string, error) {
	const op = "services.items.DeleteByOwner"

	ids, err := s.items.DeleteByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.invalidate(ctx, ids...)
	for _, id := range ids {
		events.Emit(ctx, s.events, s.log, events.New(events.ItemDeleted, models.Item{
			ID:    id,
			Owner: models.Owner{ID: ownerID},
		}))
	}
	return ids, nil
}

func (s *Service) invalidate(ctx context.Context, ids ...string) {
	if len(ids) == 0 {
		return
	}
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, cacheKey(id))
	}
	if err := s.cache.Invalidate(ctx, keys...); err != nil {
		s.log.Warn("cache invalidation failed", slog.Any("keys", keys), sl.Err(err))
	}
}

func validate(title string, price float64) error {
	if utf8.RuneCountInString(title) > models.MaxTitleLength {
		return apperr.New(apperr.ErrValidation, MsgTitleTooLong)
	}
	if price < 0 {
		return apperr.New(apperr.ErrValidation, MsgNegativePrice)
	}
	return nil
}

// normalize обрезает пробелы и убирает пустые строки из патча.
func normalize(p models.ItemPatch) models.ItemPatch {
	p.Title = trimmed(p.Title)
	p.Description = trimmed(p.Description)
	p.Category = trimmed(p.Category)
	return p
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}
