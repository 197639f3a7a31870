// Package sl содержит вспомогательные функции для работы с логгером slog.
// Пакет нужен, чтобы единообразно формировать структурированные поля лога
// для ошибок, операций и идентификаторов запросов.
package sl

import (
	"context"
	"log/slog"

	"github.com/go-chi/chi/middleware"
)

// Err возвращает slog.Attr с ключом "error" и текстом ошибки.
// Для nil-ошибки возвращается пустая строка, чтобы логирование не паниковало.
//
// Пример:
//
//	log.Error("failed to do something", sl.Err(err))
func Err(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "")
	}
	return slog.Attr{
		Key:   "error",
		Value: slog.StringValue(err.Error()),
	}
}

// With возвращает логгер, дополненный полями op и request_id текущего запроса.
func With(log *slog.Logger, ctx context.Context, op string) *slog.Logger {
	return log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(ctx)),
	)
}

// Discard возвращает логгер, который ничего не пишет. Используется в тестах.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
