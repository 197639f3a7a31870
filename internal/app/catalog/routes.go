// Package catalog собирает HTTP-приложение каталога: маршруты, middleware
// и зависимости.
package catalog

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/catalog/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/catalog/internal/http/handlers/auth/register"
	"github.com/magabrotheeeer/catalog/internal/http/handlers/health"
	itemcreate "github.com/magabrotheeeer/catalog/internal/http/handlers/items/create"
	itemlist "github.com/magabrotheeeer/catalog/internal/http/handlers/items/list"
	itemread "github.com/magabrotheeeer/catalog/internal/http/handlers/items/read"
	itemremove "github.com/magabrotheeeer/catalog/internal/http/handlers/items/remove"
	itemupdate "github.com/magabrotheeeer/catalog/internal/http/handlers/items/update"
	"github.com/magabrotheeeer/catalog/internal/http/handlers/users/profile"
	"github.com/magabrotheeeer/catalog/internal/http/handlers/users/updateprofile"
	userlist "github.com/magabrotheeeer/catalog/internal/http/handlers/users/list"
	userremove "github.com/magabrotheeeer/catalog/internal/http/handlers/users/remove"
	"github.com/magabrotheeeer/catalog/internal/http/middlewarectx"
	"github.com/magabrotheeeer/catalog/internal/metrics"
	"github.com/magabrotheeeer/catalog/internal/ratelimit"
	authservice "github.com/magabrotheeeer/catalog/internal/services/auth"
	itemservice "github.com/magabrotheeeer/catalog/internal/services/items"
	userservice "github.com/magabrotheeeer/catalog/internal/services/users"

	_ "github.com/magabrotheeeer/catalog/docs"
)

// Deps содержит зависимости роутера.
type Deps struct {
	Log            *slog.Logger
	Auth           *authservice.Service
	Items          *itemservice.Service
	Users          *userservice.Service
	Limiter        ratelimit.Store
	Metrics        *metrics.Metrics
	AllowedOrigins []string
	// TrustProxy включает разбор X-Forwarded-For/X-Real-IP. Без него клиент
	// определяется по адресу TCP-соединения.
	TrustProxy bool
}

// NewRouter регистрирует все маршруты приложения.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	logger := d.Log

	// Глобальные middleware
	r.Use(middleware.RequestID)
	if d.TrustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(
		middlewarectx.RequestLogger(logger),
		middleware.Recoverer,
		middlewarectx.SecureHeaders,
		middlewarectx.CORS(d.AllowedOrigins),
		d.Metrics.Middleware,
		middlewarectx.RateLimitMiddleware(d.Limiter, d.Metrics, logger),
	)

	r.Get("/health", health.New().ServeHTTP)
	r.Handle("/metrics", d.Metrics.Handler())
	r.Get("/docs/*", httpSwagger.WrapHandler)

	jwtAuth := middlewarectx.JWTMiddleware(d.Auth, d.Metrics, logger)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", register.New(logger, d.Auth).ServeHTTP)
			r.Post("/login", login.New(logger, d.Auth).ServeHTTP)
		})

		r.Route("/items", func(r chi.Router) {
			// Открытые конечные точки
			r.Get("/", itemlist.New(logger, d.Items).ServeHTTP)
			r.Get("/{id}", itemread.New(logger, d.Items).ServeHTTP)

			// Группа с JWT аутентификацией
			r.Group(func(r chi.Router) {
				r.Use(jwtAuth)
				r.Post("/", itemcreate.New(logger, d.Items).ServeHTTP)
				r.Put("/{id}", itemupdate.New(logger, d.Items).ServeHTTP)
				r.Delete("/{id}", itemremove.New(logger, d.Items).ServeHTTP)
			})
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(jwtAuth)
			r.Get("/profile", profile.New(logger, d.Users).ServeHTTP)
			r.Put("/profile", updateprofile.New(logger, d.Users).ServeHTTP)

			// Только для администратора
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.AdminOnly(logger))
				r.Get("/", userlist.New(logger, d.Users).ServeHTTP)
				r.Delete("/{id}", userremove.New(logger, d.Users).ServeHTTP)
			})
		})
	})

	return r
}
