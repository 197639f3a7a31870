// Package update реализует HTTP-обработчик частичного изменения товара.
// Изменять товар может его владелец или администратор.
package update

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/magabrotheeeer/catalog/internal/http/middlewarectx"
	"github.com/magabrotheeeer/catalog/internal/http/response"
	"github.com/magabrotheeeer/catalog/internal/lib/sl"
	"github.com/magabrotheeeer/catalog/internal/models"
)

// MsgInvalidBody возвращается на некорректный JSON.
const MsgInvalidBody = "Invalid request body"

// Service описывает бизнес-логику изменения товара.
type Service interface {
	Update(ctx context.Context, actor models.User, id string, patch models.ItemPatch) (models.Item, error)
}

// Handler обрабатывает PUT /api/items/{id}.
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
// @Summary Изменить товар
// @Description Меняет только переданные поля. Цена 0 допустима.
// @Tags Items
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param id path string true "ID товара"
// @Param request body models.ItemPatch true "Изменяемые поля"
// @Success 200 {object} models.Item
// @Failure 400 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Товар принадлежит другому пользователю"
// @Failure 404 {object} response.ErrorResponse "Товар не найден"
// @Router /items/{id} [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.items.update"
	log := sl.With(h.log, r.Context(), op)

	actor, ok := middlewarectx.UserFrom(r.Context())
	if !ok {
		log.Error("user not found in context")
		response.JSON(w, r, http.StatusUnauthorized, response.Error(middlewarectx.MsgNoToken))
		return
	}

	var patch models.ItemPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		log.Info("failed to decode request body", sl.Err(err))
		response.JSON(w, r, http.StatusBadRequest, response.Error(MsgInvalidBody))
		return
	}

	item, err := h.service.Update(r.Context(), actor, chi.URLParam(r, "id"), patch)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}

	log.Info("item updated", slog.String("item_id", item.ID))
	response.JSON(w, r, http.StatusOK, item)
}
