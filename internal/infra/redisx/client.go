package redisx

import (
	"context"
	"time"

	"app/internal/config"

	"github.com/redis/go-redis/v9"
)

// New はRedisクライアントを作って疎通確認する。
func New(cfg config.Config) (*redis.Client, error) {
	r := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := r.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return r, nil
}
