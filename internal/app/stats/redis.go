package stats

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const DefaultVisitsKey = "rendezvous:visits"

// RedisVisits stores visitor session ids in a Redis set so the count
// survives restarts and is shared by every process pointed at the same server.
type RedisVisits struct {
	rdb *redis.Client
	key string
}

func NewRedisVisits(rdb *redis.Client, key string) *RedisVisits {
	if key == "" {
		key = DefaultVisitsKey
	}
	return &RedisVisits{rdb: rdb, key: key}
}

func (r *RedisVisits) Track(ctx context.Context, sessionID string) (int64, error) {
	if sessionID == "" {
		return 0, ErrEmptySession
	}
	pipe := r.rdb.TxPipeline()
	pipe.SAdd(ctx, r.key, sessionID)
	card := pipe.SCard(ctx, r.key)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("track visit: %w", err)
	}
	return card.Val(), nil
}

func (r *RedisVisits) Total(ctx context.Context) (int64, error) {
	n, err := r.rdb.SCard(ctx, r.key).Result()
	if err != nil {
		return 0, fmt.Errorf("count visits: %w", err)
	}
	return n, nil
}
