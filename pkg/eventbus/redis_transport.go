package eventbus

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisTransport publishes to subjects over Redis Pub/Sub, giving the
// "bus" and "pubsub" dispatch adapters a durable-process backend in
// place of MemoryBus when a deployment spans more than one process.
type RedisTransport struct {
	client redis.UniversalClient
}

// NewRedisTransport wraps an already-configured Redis client. The
// caller owns the client's lifecycle (including Close).
func NewRedisTransport(client redis.UniversalClient) *RedisTransport {
	return &RedisTransport{client: client}
}

// Publish sends payload on the given subject as a Redis channel message.
func (t *RedisTransport) Publish(ctx context.Context, subject string, payload []byte) error {
	if subject == "" {
		return fmt.Errorf("eventbus: subject cannot be empty")
	}
	return t.client.Publish(ctx, subject, payload).Err()
}

// Healthy reports whether the underlying Redis connection is alive.
func (t *RedisTransport) Healthy(ctx context.Context) bool {
	return t.client.Ping(ctx).Err() == nil
}

// NewRedisUniversalClient builds a redis.UniversalClient from a
// RedisConfig-shaped address/password/db triple. It accepts the plain
// values rather than the config package's type to keep this package
// free of a dependency on config.
func NewRedisUniversalClient(address, password string, db int) redis.UniversalClient {
	return redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:    []string{address},
		Password: password,
		DB:       db,
	})
}
