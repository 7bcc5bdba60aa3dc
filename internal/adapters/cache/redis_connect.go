package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Connect builds a Redis client from either a redis://-style URL or a
// bare host:port address. Liveness sessions are small and short-lived,
// so the client favors quick failure over long dial waits.
func Connect(_ context.Context, addr string) (*redis.Client, error) {
	if strings.Contains(addr, "://") {
		opt, err := redis.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		opt.DialTimeout = 3 * time.Second
		return redis.NewClient(opt), nil
	}
	return redis.NewClient(&redis.Options{
		Addr:        addr,
		DialTimeout: 3 * time.Second,
	}), nil
}
