// Package response содержит вспомогательные типы и функции для формирования
// JSON-ответов HTTP-обработчиков. Ошибки отдаются клиенту в виде
// {"message": "..."}, внутренние подробности в ответ не попадают.
package response

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/catalog/internal/lib/apperr"
	"github.com/magabrotheeeer/catalog/internal/lib/sl"
)

// MsgServerError — сообщение для любой непредвиденной ошибки.
const MsgServerError = "Server error"

// ErrorResponse — тело ответа с сообщением.
// Используется и для ошибок, и для подтверждений вида {"message":"Item removed"}.
type ErrorResponse struct {
	Message string `json:"message" example:"Item not found"`
}

// Error возвращает ErrorResponse с переданным сообщением.
func Error(msg string) ErrorResponse {
	return ErrorResponse{Message: msg}
}

// Message используется для успешных ответов с одним сообщением.
func Message(msg string) ErrorResponse {
	return ErrorResponse{Message: msg}
}

// JSON пишет v со статусом status.
func JSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	render.Status(r, status)
	render.JSON(w, r, v)
}

// Fail отвечает статусом и сообщением, соответствующими err.
// Ошибки вне таксономии apperr логируются и отдаются как 500 без подробностей.
func Fail(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	status := apperr.HTTPStatus(err)
	msg := apperr.Message(err)
	if status == http.StatusInternalServerError || msg == "" {
		log.Error("request failed", sl.Err(err))
		if msg == "" {
			msg = MsgServerError
		}
	} else {
		log.Info("request rejected", slog.Int("status", status), slog.String("reason", msg))
	}
	JSON(w, r, status, Error(msg))
}

// ValidationError формирует ErrorResponse на основе ошибок валидации.
// Каждое нарушение превращается в человекочитаемый текст, тексты объединяются через запятую.
func ValidationError(errs validator.ValidationErrors) ErrorResponse {
	var errsMsgs []string

	for _, err := range errs {
		field := strings.ToLower(err.Field()[:1]) + err.Field()[1:]
		switch err.ActualTag() {
		case "required":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is a required field", field))
		case "email":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be a valid email", field))
		case "min":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be at least %s characters", field, err.Param()))
		case "max":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be at most %s characters", field, err.Param()))
		default:
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is not valid", field))
		}
	}
	return Error(strings.Join(errsMsgs, ", "))
}
