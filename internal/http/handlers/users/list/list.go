// Package list реализует HTTP-обработчик списка пользователей для администратора.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/magabrotheeeer/catalog/internal/http/middlewarectx"
	"github.com/magabrotheeeer/catalog/internal/http/response"
	"github.com/magabrotheeeer/catalog/internal/lib/sl"
	"github.com/magabrotheeeer/catalog/internal/models"
)

// Service описывает бизнес-логику получения списка пользователей.
type Service interface {
	List(ctx context.Context, actor models.User) ([]models.User, error)
}

// Handler обрабатывает GET /api/users.
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
// @Summary Список пользователей
// @Tags Users
// @Produce  json
// @Security BearerAuth
// @Success 200 {array} models.User
// @Failure 403 {object} response.ErrorResponse "Только для администратора"
// @Router /users [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.users.list"
	log := sl.With(h.log, r.Context(), op)

	actor, _ := middlewarectx.UserFrom(r.Context())
	users, err := h.service.List(r.Context(), actor)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}
	if users == nil {
		users = []models.User{}
	}

	response.JSON(w, r, http.StatusOK, users)
}
