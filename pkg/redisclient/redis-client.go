package redisclient

import (
	"context"
	"fmt"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/redis/go-redis/v9"
)

type Config struct {
	Host     string
	Port     int
	Password string
	// Attempts bounds the connection check; zero means one attempt.
	Attempts uint
}

// NewRedisClient connects and pings, retrying while the server comes up.
func NewRedisClient(ctx context.Context, cfg *Config) (*redis.Client, error) {
	r := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
	})

	if err := retry.Do(
		func() error {
			return r.Ping(ctx).Err()
		},
		retry.Context(ctx),
		retry.Attempts(max(cfg.Attempts, 1)),
		retry.Delay(500*time.Millisecond),
		retry.LastErrorOnly(true),
	); err != nil {
		r.Close()
		return nil, err
	}

	return r, nil
}
