package otp

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// KeyPrefix namespaces OTP keys: the code for an address lives at "otp:<email>"
const KeyPrefix = "otp:"

// RedisSource reads codes an application caches in Redis
type RedisSource struct {
	client redis.UniversalClient
}

// NewRedisSource creates a source over client. The caller owns the client.
func NewRedisSource(client redis.UniversalClient) *RedisSource {
	return &RedisSource{client: client}
}

// DialRedis creates a client for addr. go-redis connects on first command.
func DialRedis(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})
}

// LatestCode implements Source
func (s *RedisSource) LatestCode(ctx context.Context, email string) (string, bool, error) {
	code, err := s.client.Get(ctx, KeyPrefix+email).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, &DataSourceError{Op: "lookup", Err: err}
	}
	return code, true, nil
}

// Issue stores code as the current one for email, replacing any previous code
func (s *RedisSource) Issue(ctx context.Context, email, code string, ttl time.Duration) error {
	if err := s.client.Set(ctx, KeyPrefix+email, code, ttl).Err(); err != nil {
		return &DataSourceError{Op: "issue", Err: err}
	}
	return nil
}
