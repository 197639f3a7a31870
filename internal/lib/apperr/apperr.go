// Package apperr описывает таксономию ошибок приложения.
//
// Сервисы оборачивают одну из базовых ошибок (ErrValidation, ErrDuplicate и т.д.)
// вместе с сообщением для клиента, а HTTP-слой по ним выбирает статус ответа.
// Текст внутренних ошибок клиенту никогда не отдаётся.
package apperr

import (
	"errors"
	"net/http"
)

var (
	// ErrValidation — отсутствующие или некорректные поля запроса.
	ErrValidation = errors.New("validation error")
	// ErrDuplicate — нарушение уникальности username/email.
	ErrDuplicate = errors.New("duplicate")
	// ErrUnauthenticated — неверные учётные данные или токен.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrForbidden — пользователь аутентифицирован, но не имеет прав.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound — запрошенный ресурс отсутствует.
	ErrNotFound = errors.New("not found")
)

// Error связывает вид ошибки с сообщением, которое можно показать клиенту.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Kind.Error() + ": " + e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// New создаёт ошибку вида kind с сообщением для клиента.
func New(kind error, msg string) error {
	return &Error{Kind: kind, Message: msg}
}

// Message возвращает сообщение для клиента из цепочки err
// или пустую строку, если его нет.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return ""
}

// HTTPStatus сопоставляет ошибку с HTTP-статусом.
// Всё, что не относится к таксономии, считается внутренней ошибкой.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrDuplicate):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
