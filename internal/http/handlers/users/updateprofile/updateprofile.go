// Package updateprofile реализует HTTP-обработчик изменения профиля.
//
// Переданные поля проверяются валидатором, смена пароля требует
// текущего пароля. В ответ приходит обновлённый пользователь с новым токеном.
package updateprofile

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/catalog/internal/http/middlewarectx"
	"github.com/magabrotheeeer/catalog/internal/http/response"
	"github.com/magabrotheeeer/catalog/internal/lib/sl"
	"github.com/magabrotheeeer/catalog/internal/models"
)

// MsgInvalidBody возвращается на некорректный JSON.
const MsgInvalidBody = "Invalid request body"

// Service описывает бизнес-логику изменения профиля.
type Service interface {
	UpdateProfile(ctx context.Context, actor models.User, patch models.ProfilePatch) (models.AuthResult, error)
}

// Handler обрабатывает PUT /api/users/profile.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Изменить профиль
// @Tags Users
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body models.ProfilePatch true "Изменяемые поля"
// @Success 200 {object} models.AuthResult
// @Failure 400 {object} response.ErrorResponse "Ошибка валидации или занятый username/email"
// @Failure 401 {object} response.ErrorResponse "Неверный текущий пароль"
// @Router /users/profile [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.users.updateprofile"
	log := sl.With(h.log, r.Context(), op)

	actor, ok := middlewarectx.UserFrom(r.Context())
	if !ok {
		log.Error("user not found in context")
		response.JSON(w, r, http.StatusUnauthorized, response.Error(middlewarectx.MsgNoToken))
		return
	}

	var patch models.ProfilePatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		log.Info("failed to decode request body", sl.Err(err))
		response.JSON(w, r, http.StatusBadRequest, response.Error(MsgInvalidBody))
		return
	}

	if err := h.validate.Struct(patch); err != nil {
		log.Info("validation failed", sl.Err(err))
		response.JSON(w, r, http.StatusBadRequest, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	res, err := h.service.UpdateProfile(r.Context(), actor, patch)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}

	log.Info("profile updated", slog.String("user_id", res.ID))
	response.JSON(w, r, http.StatusOK, res)
}
