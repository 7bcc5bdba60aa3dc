package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/veribank/faceauth/internal/domain"
)

// RedisLivenessSessionStore keeps active liveness sessions in Redis.
// The key TTL matches the session expiry so abandoned sessions are
// reclaimed by Redis itself.
type RedisLivenessSessionStore struct {
	client *redis.Client
}

// NewRedisLivenessSessionStore creates the liveness session cache adapter.
func NewRedisLivenessSessionStore(client *redis.Client) *RedisLivenessSessionStore {
	return &RedisLivenessSessionStore{client: client}
}

func (s *RedisLivenessSessionStore) Put(ctx context.Context, session domain.LivenessSession, ttl time.Duration) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, "face:liveness:"+session.Token, raw, ttl).Err()
}

func (s *RedisLivenessSessionStore) Get(ctx context.Context, token string) (*domain.LivenessSession, error) {
	raw, err := s.client.Get(ctx, "face:liveness:"+token).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var out domain.LivenessSession
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *RedisLivenessSessionStore) Delete(ctx context.Context, token string) error {
	return s.client.Del(ctx, "face:liveness:"+token).Err()
}
