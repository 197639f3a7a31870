// Package memory реализует хранилище в памяти процесса. Используется
// для локального запуска без базы данных и в сквозных тестах.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/catalog/internal/lib/apperr"
	"github.com/magabrotheeeer/catalog/internal/models"
)

// Storage держит пользователей и товары в map под общим мьютексом.
type Storage struct {
	mu    sync.RWMutex
	users map[string]models.User
	items map[string]models.Item
	seq   int64
	order map[string]int64

	Users *UserRepo
	Items *ItemRepo
}

// New создаёт пустое хранилище.
func New() *Storage {
	s := &Storage{
		users: make(map[string]models.User),
		items: make(map[string]models.Item),
		order: make(map[string]int64),
	}
	s.Users = &UserRepo{s: s}
	s.Items = &ItemRepo{s: s}
	return s
}

// next возвращает монотонный порядковый номер записи, чтобы порядок
// не зависел от разрешения часов.
func (s *Storage) next(id string) {
	s.seq++
	s.order[id] = s.seq
}

func now() time.Time {
	return time.Now().UTC()
}

// UserRepo хранит пользователей в памяти.
type UserRepo struct {
	s *Storage
}

// Create сохраняет пользователя; username и email уникальны.
func (r *UserRepo) Create(_ context.Context, u models.User) (models.User, error) {
	const op = "storage.memory.Users.Create"
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.taken(u.Username, u.Email, "") {
		return models.User{}, fmt.Errorf("%s: %w", op, apperr.ErrDuplicate)
	}
	ts := now()
	u.ID = uuid.NewString()
	u.CreatedAt, u.UpdatedAt = ts, ts
	r.s.users[u.ID] = u
	r.s.next(u.ID)
	return u, nil
}

func (r *UserRepo) taken(username, email, except string) bool {
	for id, existing := range r.s.users {
		if id == except {
			continue
		}
		if existing.Username == username || existing.Email == email {
			return true
		}
	}
	return false
}

// FindByID возвращает пользователя по id.
func (r *UserRepo) FindByID(_ context.Context, id string) (models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return models.User{}, fmt.Errorf("storage.memory.Users.FindByID: %w", apperr.ErrNotFound)
	}
	return u, nil
}

// FindByEmail возвращает пользователя по email.
func (r *UserRepo) FindByEmail(_ context.Context, email string) (models.User, error) {
	return r.find("storage.memory.Users.FindByEmail", func(u models.User) bool { return u.Email == email })
}

// FindByEmailOrUsername возвращает любого пользователя с таким email или username.
func (r *UserRepo) FindByEmailOrUsername(_ context.Context, email, username string) (models.User, error) {
	return r.find("storage.memory.Users.FindByEmailOrUsername", func(u models.User) bool {
		return u.Email == email || u.Username == username
	})
}

func (r *UserRepo) find(op string, match func(models.User) bool) (models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if match(u) {
			return u, nil
		}
	}
	return models.User{}, fmt.Errorf("%s: %w", op, apperr.ErrNotFound)
}

// Update применяет изменения пользователя.
func (r *UserRepo) Update(_ context.Context, id string, changes models.UserChanges) (models.User, error) {
	const op = "storage.memory.Users.Update"
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return models.User{}, fmt.Errorf("%s: %w", op, apperr.ErrNotFound)
	}
	next := u
	if changes.Username != nil {
		next.Username = *changes.Username
	}
	if changes.Email != nil {
		next.Email = *changes.Email
	}
	if changes.PasswordHash != nil {
		next.PasswordHash = *changes.PasswordHash
	}
	if r.taken(next.Username, next.Email, id) {
		return models.User{}, fmt.Errorf("%s: %w", op, apperr.ErrDuplicate)
	}
	next.UpdatedAt = now()
	r.s.users[id] = next
	return next, nil
}

// List возвращает пользователей в порядке регистрации.
func (r *UserRepo) List(_ context.Context) ([]models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	users := make([]models.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool {
		return r.s.order[users[i].ID] < r.s.order[users[j].ID]
	})
	return users, nil
}

// Delete удаляет пользователя.
func (r *UserRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[id]; !ok {
		return fmt.Errorf("storage.memory.Users.Delete: %w", apperr.ErrNotFound)
	}
	delete(r.s.users, id)
	delete(r.s.order, id)
	return nil
}

// ItemRepo хранит товары в памяти.
type ItemRepo struct {
	s *Storage
}

// withOwner подставляет текущее имя владельца. Вызывать под блокировкой.
func (r *ItemRepo) withOwner(it models.Item) models.Item {
	if u, ok := r.s.users[it.Owner.ID]; ok {
		it.Owner.Username = u.Username
	} else {
		it.Owner.Username = ""
	}
	return it
}

// Create сохраняет товар.
func (r *ItemRepo) Create(_ context.Context, it models.Item) (models.Item, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	ts := now()
	it.ID = uuid.NewString()
	it.CreatedAt, it.UpdatedAt = ts, ts
	r.s.items[it.ID] = it
	r.s.next(it.ID)
	return r.withOwner(it), nil
}

// FindByID возвращает товар с именем владельца.
func (r *ItemRepo) FindByID(_ context.Context, id string) (models.Item, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	it, ok := r.s.items[id]
	if !ok {
		return models.Item{}, fmt.Errorf("storage.memory.Items.FindByID: %w", apperr.ErrNotFound)
	}
	return r.withOwner(it), nil
}

// List возвращает товары, новые первыми.
func (r *ItemRepo) List(_ context.Context) ([]models.Item, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	items := make([]models.Item, 0, len(r.s.items))
	for _, it := range r.s.items {
		items = append(items, r.withOwner(it))
	}
	sort.Slice(items, func(i, j int) bool {
		return r.s.order[items[i].ID] > r.s.order[items[j].ID]
	})
	return items, nil
}

// Update применяет переданные поля товара.
func (r *ItemRepo) Update(_ context.Context, id string, patch models.ItemPatch) (models.Item, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	it, ok := r.s.items[id]
	if !ok {
		return models.Item{}, fmt.Errorf("storage.memory.Items.Update: %w", apperr.ErrNotFound)
	}
	it = patch.Apply(it)
	it.UpdatedAt = now()
	r.s.items[id] = it
	return r.withOwner(it), nil
}

// Delete удаляет товар.
func (r *ItemRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.items[id]; !ok {
		return fmt.Errorf("storage.memory.Items.Delete: %w", apperr.ErrNotFound)
	}
	delete(r.s.items, id)
	delete(r.s.order, id)
	return nil
}

// DeleteByOwner удаляет товары пользователя и возвращает их id.
func (r *ItemRepo) DeleteByOwner(_ context.Context, ownerID string) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var ids []string
	for id, it := range r.s.items {
		if it.Owner.ID == ownerID {
			ids = append(ids, id)
			delete(r.s.items, id)
			delete(r.s.order, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}
