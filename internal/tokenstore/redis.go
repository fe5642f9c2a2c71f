package tokenstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/akshatsharma-tmc/gracemobility-frontend/internal/config"
)

const keyPrefix = "gracemobility:session:"

// Redis keeps the token in a shared Redis, so several console hosts can
// reuse one login.
type Redis struct {
	client *redis.Client
	key    string
}

func NewRedis(ctx context.Context, cfg config.RedisConfig, key string) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &Redis{client: client, key: keyPrefix + key}, nil
}

func (r *Redis) Load(ctx context.Context) (string, error) {
	token, err := r.client.Get(ctx, r.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("redis get token: %w", err)
	}
	return token, nil
}

func (r *Redis) Save(ctx context.Context, token string) error {
	if err := r.client.Set(ctx, r.key, token, 0).Err(); err != nil {
		return fmt.Errorf("redis set token: %w", err)
	}
	return nil
}

func (r *Redis) Delete(ctx context.Context) error {
	if err := r.client.Del(ctx, r.key).Err(); err != nil {
		return fmt.Errorf("redis del token: %w", err)
	}
	return nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}
