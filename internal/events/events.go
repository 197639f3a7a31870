// Package events публикует доменные события каталога (создание, изменение и
// удаление товаров, регистрация и удаление пользователей) в RabbitMQ.
//
// Публикация не входит в транзакцию запроса: ошибка публикации
// логируется вызывающим и не влияет на ответ клиенту.
package events

import (
	"context"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/catalog/internal/lib/sl"
)

// Типы событий. Используются как routing key.
const (
	ItemCreated    = "item.created"
	ItemUpdated    = "item.updated"
	ItemDeleted    = "item.deleted"
	UserRegistered = "user.registered"
	UserDeleted    = "user.deleted"
)

// Event — доменное событие.
type Event struct {
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurredAt"`
	Payload    any       `json:"payload"`
}

// New создаёт событие с текущим временем.
func New(eventType string, payload any) Event {
	return Event{Type: eventType, OccurredAt: time.Now().UTC(), Payload: payload}
}

// Publisher публикует события.
type Publisher interface {
	Publish(ctx context.Context, evt Event) error
	Close() error
}

// Noop отбрасывает события.
type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }
func (Noop) Close() error                         { return nil }

// Emit публикует событие и логирует ошибку публикации, не возвращая её.
func Emit(ctx context.Context, p Publisher, log *slog.Logger, evt Event) {
	if err := p.Publish(ctx, evt); err != nil {
		log.Warn("failed to publish event", slog.String("type", evt.Type), sl.Err(err))
	}
}
