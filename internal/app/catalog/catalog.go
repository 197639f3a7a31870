package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/magabrotheeeer/catalog/internal/cache"
	"github.com/magabrotheeeer/catalog/internal/config"
	"github.com/magabrotheeeer/catalog/internal/events"
	"github.com/magabrotheeeer/catalog/internal/lib/jwt"
	"github.com/magabrotheeeer/catalog/internal/lib/password"
	"github.com/magabrotheeeer/catalog/internal/lib/sl"
	"github.com/magabrotheeeer/catalog/internal/metrics"
	"github.com/magabrotheeeer/catalog/internal/ratelimit"
	authservice "github.com/magabrotheeeer/catalog/internal/services/auth"
	itemservice "github.com/magabrotheeeer/catalog/internal/services/items"
	userservice "github.com/magabrotheeeer/catalog/internal/services/users"
	"github.com/magabrotheeeer/catalog/internal/storage"
)

const shutdownTimeout = 15 * time.Second

// App — HTTP-сервер каталога со всеми подключениями.
type App struct {
	server    *http.Server
	logger    *slog.Logger
	store     *storage.Store
	redis     *cache.RedisCache
	limiter   ratelimit.Store
	publisher events.Publisher
}

// New подключает хранилище, Redis и RabbitMQ (если заданы) и собирает роутер.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.catalog.New"

	store, err := storage.Open(ctx, cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	app := &App{logger: logger, store: store}

	limits := ratelimit.Config{Window: cfg.Window, Max: cfg.MaxRequests}
	var itemCache cache.Cache = cache.Noop{}
	if cfg.RedisAddress != "" {
		app.redis, err = cache.InitServer(ctx, cfg.Redis)
		if err != nil {
			app.close(ctx)
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		itemCache = app.redis
		app.limiter = ratelimit.NewRedisStore(app.redis.Db, limits)
		logger.Info("redis connected", slog.String("address", cfg.RedisAddress))
	} else {
		app.limiter = ratelimit.NewMemoryStore(limits)
		logger.Info("redis not configured, using in-memory rate limiter and no cache")
	}

	app.publisher = events.Noop{}
	if cfg.RabbitMQURL != "" {
		pub, err := events.Dial(cfg.RabbitMQURL, cfg.Exchange)
		if err != nil {
			app.close(ctx)
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		app.publisher = pub
		logger.Info("publishing events", slog.String("exchange", cfg.Exchange))
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.NewMetrics(registry)

	tokens := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	items := itemservice.New(logger, store.Items, itemCache, cfg.CacheTTL, app.publisher, m)

	router := NewRouter(Deps{
		Log:            logger,
		Auth:           authservice.New(logger, store.Users, password.Default, tokens, app.publisher),
		Items:          items,
		Users:          userservice.New(logger, store.Users, items, password.Default, tokens, app.publisher),
		Limiter:        app.limiter,
		Metrics:        m,
		AllowedOrigins: cfg.AllowedOrigins,
		TrustProxy:     cfg.TrustProxy,
	})

	app.server = &http.Server{
		Addr:         cfg.Address(),
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return app, nil
}

// Run запускает сервер и блокируется до отмены ctx или ошибки сервера.
// При отмене ctx сервер останавливается корректно, затем закрываются подключения.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		a.close(context.Background())
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.close(timeoutCtx)
		return err
	}
}

func (a *App) close(ctx context.Context) {
	if a.limiter != nil {
		if err := a.limiter.Close(); err != nil {
			a.logger.Warn("failed to stop rate limiter", sl.Err(err))
		}
	}
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.logger.Warn("failed to close event publisher", sl.Err(err))
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn("failed to close redis", sl.Err(err))
		}
	}
	if err := a.store.Close(ctx); err != nil {
		a.logger.Warn("failed to close storage", sl.Err(err))
	}
}
