package middlewarectx

import (
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/magabrotheeeer/catalog/internal/http/response"
	"github.com/magabrotheeeer/catalog/internal/lib/sl"
	"github.com/magabrotheeeer/catalog/internal/metrics"
	"github.com/magabrotheeeer/catalog/internal/ratelimit"
)

// MsgTooManyRequests — ответ на превышение лимита.
const MsgTooManyRequests = "Too many requests, please try again later."

// RateLimitMiddleware ограничивает число запросов с одного IP.
// Ответ всегда содержит заголовки RateLimit-Limit, RateLimit-Remaining
// и RateLimit-Reset. Ошибка хранилища не блокирует запрос.
func RateLimitMiddleware(store ratelimit.Store, m *metrics.Metrics, log *slog.Logger) func(http.Handler) http.Handler {
	// не больше одной записи в секунду на каждый вид событий
	rejected := &rate.Sometimes{Interval: time.Second}
	faulted := &rate.Sometimes{Interval: time.Second}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientIP(r)

			res, err := store.Allow(r.Context(), key)
			if err != nil {
				faulted.Do(func() {
					sl.With(log, r.Context(), "middlewarectx.RateLimitMiddleware").
						Warn("rate limit store failed, request allowed", sl.Err(err))
				})
			}

			h := w.Header()
			h.Set("RateLimit-Limit", strconv.Itoa(res.Limit))
			h.Set("RateLimit-Remaining", strconv.Itoa(res.Remaining))
			h.Set("RateLimit-Reset", strconv.Itoa(resetSeconds(res.ResetAt)))

			if !res.Allowed {
				m.RateLimited()
				rejected.Do(func() {
					sl.With(log, r.Context(), "middlewarectx.RateLimitMiddleware").
						Warn("too many requests", slog.String("client", key))
				})
				response.JSON(w, r, http.StatusTooManyRequests, response.Error(MsgTooManyRequests))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP берёт адрес TCP-соединения. Заголовки X-Forwarded-For и X-Real-IP
// учитываются, только если перед этим middleware подключён chi RealIP.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

func resetSeconds(at time.Time) int {
	d := time.Until(at).Seconds()
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d))
}
