// Package list реализует HTTP-обработчик получения всех товаров каталога.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/magabrotheeeer/catalog/internal/http/response"
	"github.com/magabrotheeeer/catalog/internal/lib/sl"
	"github.com/magabrotheeeer/catalog/internal/models"
)

// Service описывает бизнес-логику получения списка товаров.
type Service interface {
	List(ctx context.Context) ([]models.Item, error)
}

// Handler обрабатывает GET /api/items.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Список товаров
// @Description Возвращает все товары, новые первыми, с именем владельца.
// @Tags Items
// @Produce  json
// @Success 200 {array} models.Item
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /items [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.items.list"
	log := sl.With(h.log, r.Context(), op)

	items, err := h.service.List(r.Context())
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	if items == nil {
		items = []models.Item{}
	}

	log.Debug("items listed", slog.Int("count", len(items)))
	response.JSON(w, r, http.StatusOK, items)
}
