// Package create реализует HTTP-обработчик создания товара.
//
// Handler принимает JSON с полями товара, берёт владельца из контекста
// (его кладёт JWTMiddleware) и возвращает созданный товар.
package create

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/magabrotheeeer/catalog/internal/http/middlewarectx"
	"github.com/magabrotheeeer/catalog/internal/http/response"
	"github.com/magabrotheeeer/catalog/internal/lib/sl"
	"github.com/magabrotheeeer/catalog/internal/models"
)

// MsgInvalidBody — ответ на некорректный JSON.
const MsgInvalidBody = "Invalid request body"

// Service описывает бизнес-логику создания товара.
type Service interface {
	Create(ctx context.Context, actor models.User, in models.ItemInput) (models.Item, error)
}

// Handler обрабатывает POST /api/items.
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
// @Summary Создать товар
// @Description Создаёт товар от имени текущего пользователя.
// @Tags Items
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body models.ItemInput true "Данные товара"
// @Success 201 {object} models.Item
// @Failure 400 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /items [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.items.create"
	log := sl.With(h.log, r.Context(), op)

	actor, ok := middlewarectx.UserFrom(r.Context())
	if !ok {
		log.Error("user not found in context")
		response.JSON(w, r, http.StatusUnauthorized, response.Error(middlewarectx.MsgNoToken))
		return
	}

	var req models.ItemInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Info("failed to decode request body", sl.Err(err))
		response.JSON(w, r, http.StatusBadRequest, response.Error(MsgInvalidBody))
		return
	}

	item, err := h.service.Create(r.Context(), actor, req)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}

	log.Info("item created", slog.String("item_id", item.ID))
	response.JSON(w, r, http.StatusCreated, item)
}
