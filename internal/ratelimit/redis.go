package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "ratelimit:"

// RedisStore считает запросы в Redis: INCR и PTTL в одном pipeline,
// срок жизни ключа выставляется при первом запросе окна.
type RedisStore struct {
	cfg    Config
	client redis.Cmdable
	now    func() time.Time
}

// NewRedisStore создаёт RedisStore поверх клиента.
func NewRedisStore(client redis.Cmdable, cfg Config) *RedisStore {
	return &RedisStore{cfg: cfg, client: client, now: time.Now}
}

// Allow учитывает запрос. При ошибке Redis запрос разрешается,
// а ошибка возвращается вызывающему для логирования.
func (s *RedisStore) Allow(ctx context.Context, key string) (Result, error) {
	const op = "ratelimit.RedisStore.Allow"
	redisKey := keyPrefix + key
	now := s.now()

	pipe := s.client.Pipeline()
	incr := pipe.Incr(ctx, redisKey)
	pttl := pipe.PTTL(ctx, redisKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return s.failOpen(now), fmt.Errorf("%s: %w", op, err)
	}

	ttl := pttl.Val()
	if ttl <= 0 {
		if err := s.client.PExpire(ctx, redisKey, s.cfg.Window).Err(); err != nil {
			return s.failOpen(now), fmt.Errorf("%s: %w", op, err)
		}
		ttl = s.cfg.Window
	}

	count := incr.Val()
	return Result{
		Allowed:   count <= int64(s.cfg.Max),
		Limit:     s.cfg.Max,
		Remaining: remaining(s.cfg.Max, count),
		ResetAt:   now.Add(ttl),
	}, nil
}

func (s *RedisStore) failOpen(now time.Time) Result {
	return Result{
		Allowed:   true,
		Limit:     s.cfg.Max,
		Remaining: s.cfg.Max,
		ResetAt:   now.Add(s.cfg.Window),
	}
}

// Close ничего не делает: клиентом Redis владеет вызывающий.
func (s *RedisStore) Close() error {
	return nil
}
