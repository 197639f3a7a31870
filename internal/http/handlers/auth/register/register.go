// Package register реализует HTTP-обработчик регистрации пользователя.
//
// Handler принимает username, email и пароль, создаёт учётную запись через
// сервис и возвращает данные пользователя вместе с токеном.
package register

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/catalog/internal/http/response"
	"github.com/magabrotheeeer/catalog/internal/lib/sl"
	"github.com/magabrotheeeer/catalog/internal/models"
)

// Сообщения для клиента.
const (
	MsgInvalidBody = "Invalid request body"
	MsgRequired    = "All fields are required"
)

// Request — входные данные для регистрации.
type Request struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Service описывает бизнес-логику регистрации.
type Service interface {
	Register(ctx context.Context, username, email, password string) (models.AuthResult, error)
}

// Handler обрабатывает POST /api/auth/register.
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
// @Summary Регистрация пользователя
// @Description Создаёт учётную запись и возвращает её вместе с токеном.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Данные нового пользователя"
// @Success 201 {object} models.AuthResult
// @Failure 400 {object} response.ErrorResponse "Не заполнены поля или пользователь уже существует"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /auth/register [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.register"
	log := sl.With(h.log, r.Context(), op)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Info("failed to decode request body", sl.Err(err))
		response.JSON(w, r, http.StatusBadRequest, response.Error(MsgInvalidBody))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Info("validation failed", sl.Err(err))
		response.JSON(w, r, http.StatusBadRequest, response.Error(MsgRequired))
		return
	}

	res, err := h.service.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		response.Fail(w, r, log, err)
		return
	}

	log.Info("user registered", slog.String("user_id", res.ID))
	response.JSON(w, r, http.StatusCreated, res)
}
