package ratelimit

import (
	"context"
	"sync"
	"time"
)

type window struct {
	count   int64
	resetAt time.Time
}

// MemoryStore хранит окна в map. Истёкшие окна удаляет фоновая горутина,
// которая останавливается вызовом Close.
type MemoryStore struct {
	cfg     Config
	mu      sync.Mutex
	windows map[string]*window
	now     func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

// NewMemoryStore создаёт MemoryStore и запускает очистку.
func NewMemoryStore(cfg Config) *MemoryStore {
	return newMemoryStore(cfg, time.Now)
}

func newMemoryStore(cfg Config, now func() time.Time) *MemoryStore {
	m := &MemoryStore{
		cfg:     cfg,
		windows: make(map[string]*window),
		now:     now,
		stop:    make(chan struct{}),
	}
	go m.janitor(cfg.Window)
	return m
}

// Allow увеличивает счётчик окна клиента.
func (m *MemoryStore) Allow(_ context.Context, key string) (Result, error) {
	now := m.now()

	m.mu.Lock()
	w, ok := m.windows[key]
	if !ok || !now.Before(w.resetAt) {
		w = &window{resetAt: now.Add(m.cfg.Window)}
		m.windows[key] = w
	}
	w.count++
	count, resetAt := w.count, w.resetAt
	m.mu.Unlock()

	return Result{
		Allowed:   count <= int64(m.cfg.Max),
		Limit:     m.cfg.Max,
		Remaining: remaining(m.cfg.Max, count),
		ResetAt:   resetAt,
	}, nil
}

func (m *MemoryStore) janitor(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			m.sweep()
		}
	}
}

func (m *MemoryStore) sweep() {
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, w := range m.windows {
		if !now.Before(w.resetAt) {
			delete(m.windows, key)
		}
	}
}

// Close останавливает очистку. Повторный вызов безопасен.
func (m *MemoryStore) Close() error {
	m.stopOnce.Do(func() { close(m.stop) })
	return nil
}

func (m *MemoryStore) size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.windows)
}
