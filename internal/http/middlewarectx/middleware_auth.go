// Package middlewarectx содержит HTTP middleware сервиса.
//
// JWTMiddleware проверяет bearer-токен в заголовке Authorization, загружает
// пользователя и кладёт его в контекст запроса. AdminOnly пропускает дальше
// только администраторов. Остальные middleware отвечают за лимит запросов,
// CORS, заголовки безопасности и журнал запросов.
package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/magabrotheeeer/catalog/internal/http/response"
	"github.com/magabrotheeeer/catalog/internal/lib/apperr"
	"github.com/magabrotheeeer/catalog/internal/lib/sl"
	"github.com/magabrotheeeer/catalog/internal/metrics"
	"github.com/magabrotheeeer/catalog/internal/models"
	"github.com/magabrotheeeer/catalog/internal/services/auth"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

// User — ключ для аутентифицированного пользователя в контексте.
const User Key = "user"

// Сообщения для клиента.
const (
	MsgNoToken  = "Not authorized, no token"
	MsgNotAdmin = "Not authorized as an admin"
)

// Authenticator проверяет токен и возвращает пользователя.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (models.User, error)
}

// WithUser возвращает контекст с пользователем.
func WithUser(ctx context.Context, u models.User) context.Context {
	return context.WithValue(ctx, User, u)
}

// UserFrom достаёт пользователя, положенного JWTMiddleware.
func UserFrom(ctx context.Context) (models.User, bool) {
	u, ok := ctx.Value(User).(models.User)
	return u, ok && u.ID != ""
}

// JWTMiddleware возвращает middleware, который требует заголовок
// "Authorization: Bearer <token>". При успехе пользователь доступен
// обработчикам через UserFrom, иначе запрос завершается с 401.
func JWTMiddleware(authenticator Authenticator, m *metrics.Metrics, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.JWTMiddleware"
			log := sl.With(log, r.Context(), op)

			authHeader := r.Header.Get("Authorization")
			tokenStr, ok := strings.CutPrefix(authHeader, "Bearer ")
			tokenStr = strings.TrimSpace(tokenStr)
			if !ok || tokenStr == "" {
				log.Info("missing or invalid authorization header")
				m.AuthFailure("no_token")
				response.JSON(w, r, http.StatusUnauthorized, response.Error(MsgNoToken))
				return
			}

			user, err := authenticator.Authenticate(r.Context(), tokenStr)
			if err != nil {
				m.AuthFailure(failureReason(err))
				response.Fail(w, r, log, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

func failureReason(err error) string {
	switch apperr.Message(err) {
	case auth.MsgTokenExpired:
		return "expired"
	case auth.MsgUserGone:
		return "user_not_found"
	case auth.MsgTokenFailed:
		return "invalid"
	default:
		return "error"
	}
}

// AdminOnly пропускает только администраторов. Должен стоять после JWTMiddleware.
func AdminOnly(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFrom(r.Context())
			if !ok || !user.IsAdmin {
				sl.With(log, r.Context(), "middlewarectx.AdminOnly").
					Info("admin access denied", slog.String("user_id", user.ID))
				response.JSON(w, r, http.StatusForbidden, response.Error(MsgNotAdmin))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
