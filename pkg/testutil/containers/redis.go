//go:build integration

// Package containers starts throwaway backing services for integration tests.
package containers

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"

	"navshell/internal/platform/config"
	redisclient "navshell/internal/platform/redis"
)

// Redis is a disposable Redis server reached through the same client
// wrapper the server builds from REDIS_URL.
type Redis struct {
	URL    string
	Client *redisclient.Client
}

// StartRedis runs Redis for the lifetime of tb. The client and the
// container are released by tb's cleanup.
func StartRedis(tb testing.TB) *Redis {
	tb.Helper()
	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	testcontainers.CleanupContainer(tb, container)
	if err != nil {
		tb.Fatalf("start redis: %v", err)
	}

	url, err := container.ConnectionString(ctx)
	if err != nil {
		tb.Fatalf("redis connection string: %v", err)
	}
	client, err := redisclient.New(ctx, config.RedisConfig{
		URL:         url,
		PoolSize:    4,
		DialTimeout: 5 * time.Second,
	})
	if err != nil {
		tb.Fatalf("connect redis: %v", err)
	}
	tb.Cleanup(func() { _ = client.Close() })

	return &Redis{URL: url, Client: client}
}

// Namespace returns a key or channel prefix unique to tb, so tests sharing
// one server never see each other's limiter windows or role changes.
func (r *Redis) Namespace(tb testing.TB) string {
	name := strings.NewReplacer("/", ":", " ", "_").Replace(tb.Name())
	return "navshell:test:" + name + ":"
}
