// Package ratelimit реализует хранилище счётчиков запросов с фиксированным
// окном: не более Max запросов от одного клиента за Window.
//
// MemoryStore держит счётчики в памяти процесса, RedisStore — в Redis,
// чтобы лимит был общим для нескольких экземпляров сервиса.
package ratelimit

import (
	"context"
	"time"
)

// Result описывает решение по одному запросу.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// Store считает запросы по ключу клиента.
type Store interface {
	// Allow учитывает запрос и сообщает, укладывается ли он в лимит.
	Allow(ctx context.Context, key string) (Result, error)
	Close() error
}

// Config задаёт размер окна и лимит запросов в нём.
type Config struct {
	Window time.Duration
	Max    int
}

func remaining(limit int, count int64) int {
	if r := int64(limit) - count; r > 0 {
		return int(r)
	}
	return 0
}
