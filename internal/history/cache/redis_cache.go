package cache

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/radieske/parimutuel-ledger-poc/pkg/contracts/events"
)

// RedisCache guarda o estado final de rodadas liquidadas para o read-side.
type RedisCache struct {
	R   *redis.Client
	TTL time.Duration
}

func NewRedisCache(r *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{R: r, TTL: ttl}
}

func keyRound(n int64) string { return "round:" + strconv.FormatInt(n, 10) }

// SetRound grava o retrato da rodada liquidada (e aponta "round:latest").
func (c *RedisCache) SetRound(ctx context.Context, ev events.RoundSettled) error {
	b, _ := json.Marshal(ev)
	if err := c.R.Set(ctx, keyRound(ev.Round), b, c.TTL).Err(); err != nil {
		return err
	}
	return c.R.Set(ctx, "round:latest", ev.Round, c.TTL).Err()
}
