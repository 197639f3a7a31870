// Package remove реализует HTTP-обработчик удаления товара.
package remove

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/magabrotheeeer/catalog/internal/http/middlewarectx"
	"github.com/magabrotheeeer/catalog/internal/http/response"
	"github.com/magabrotheeeer/catalog/internal/lib/sl"
	"github.com/magabrotheeeer/catalog/internal/models"
)

// MsgRemoved возвращается после удаления.
const MsgRemoved = "Item removed"

// Service описывает бизнес-логику удаления товара.
type Service interface {
	Delete(ctx context.Context, actor models.User, id string) error
}

// Handler обрабатывает DELETE /api/items/{id}.
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
// @Summary Удалить товар
// @Tags Items
// @Produce  json
// @Security BearerAuth
// @Param id path string true "ID товара"
// @Success 200 {object} response.ErrorResponse "Товар удалён"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Товар принадлежит другому пользователю"
// @Failure 404 {object} response.ErrorResponse "Товар не найден"
// @Router /items/{id} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.items.remove"
	log := sl.With(h.log, r.Context(), op)

	actor, ok := middlewarectx.UserFrom(r.Context())
	if !ok {
		log.Error("user not found in context")
		response.JSON(w, r, http.StatusUnauthorized, response.Error(middlewarectx.MsgNoToken))
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.service.Delete(r.Context(), actor, id); err != nil {
		response.Fail(w, r, log, err)
		return
	}

	log.Info("item removed", slog.String("item_id", id))
	response.JSON(w, r, http.StatusOK, response.Message(MsgRemoved))
}
