package cache

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

type Cache struct{ R *redis.Client }

func New(r *redis.Client) *Cache { return &Cache{R: r} }

func keyRound(n int64) string { return "round:" + strconv.FormatInt(n, 10) }

func (c *Cache) GetRound(ctx context.Context, n int64, dst any) (bool, error) {
	b, err := c.R.Get(ctx, keyRound(n)).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, json.Unmarshal(b, dst)
}

func (c *Cache) SetRound(ctx context.Context, n int64, v any, ttl time.Duration) error {
	b, _ := json.Marshal(v)
	return c.R.Set(ctx, keyRound(n), b, ttl).Err()
}

// LatestRound lê o ponteiro "round:latest" mantido pelo history worker.
func (c *Cache) LatestRound(ctx context.Context) (int64, bool, error) {
	v, err := c.R.Get(ctx, "round:latest").Int64()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return v, true, nil
}
