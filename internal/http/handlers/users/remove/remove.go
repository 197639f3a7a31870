// Package remove реализует HTTP-обработчик удаления пользователя администратором.
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

// MsgRemoved — ответ на успешное удаление.
const MsgRemoved = "User removed"

// Service описывает бизнес-логику удаления пользователя.
type Service interface {
	Delete(ctx context.Context, actor models.User, id string) error
}

// Handler обрабатывает DELETE /api/users/{id}.
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
// @Summary Удалить пользователя
// @Description Удаляет пользователя и его товары. Администратора удалить нельзя.
// @Tags Users
// @Produce  json
// @Security BearerAuth
// @Param id path string true "ID пользователя"
// @Success 200 {object} response.ErrorResponse "Пользователь удалён"
// @Failure 400 {object} response.ErrorResponse "Попытка удалить администратора"
// @Failure 403 {object} response.ErrorResponse "Только для администратора"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Router /users/{id} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.users.remove"
	log := sl.With(h.log, r.Context(), op)

	actor, _ := middlewarectx.UserFrom(r.Context())
	id := chi.URLParam(r, "id")
	if err := h.service.Delete(r.Context(), actor, id); err != nil {
		response.Fail(w, r, log, err)
		return
	}

	log.Info("user removed", slog.String("user_id", id))
	response.JSON(w, r, http.StatusOK, response.Message(MsgRemoved))
}
