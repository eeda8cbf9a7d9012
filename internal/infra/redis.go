package infra

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedis creates and validates a go-redis client connection.
func NewRedis(redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	rdb := redis.NewClient(opts)

	// Validate connectivity at startup
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}

	return rdb, nil
}

// ── Saldo cache ───────────────────────────────────────────────────────────────
// The public balance-lookup terminal hits saldo:{ra}. Credits and debits
// invalidate the key; stale reads survive at most saldoCacheTTL.

const saldoCacheTTL = 60 * time.Second

func SaldoCacheKey(ra string) string { return "saldo:" + ra }

// CacheSaldo stores the serialized balance response. Failures are ignored by
// callers — the cache is an optimization, never a source of truth.
func CacheSaldo(ctx context.Context, rdb *redis.Client, ra string, payload []byte) error {
	return rdb.Set(ctx, SaldoCacheKey(ra), payload, saldoCacheTTL).Err()
}

func GetCachedSaldo(ctx context.Context, rdb *redis.Client, ra string) ([]byte, error) {
	return rdb.Get(ctx, SaldoCacheKey(ra)).Bytes()
}

func InvalidateSaldo(ctx context.Context, rdb *redis.Client, ra string) error {
	return rdb.Del(ctx, SaldoCacheKey(ra)).Err()
}
