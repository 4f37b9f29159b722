package jobqueue

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bewear-pt/storefront/internal/pkg/env"
)

// newTestQueue returns a queue on a reachable Redis under a per-test key
// prefix, or skips the test when no Redis answers.
func newTestQueue(t *testing.T, workers int) *Queue {
	t.Helper()

	client := redis.NewClient(&redis.Options{
		Addr:        fmt.Sprintf("%s:%s", env.GetEnv("CACHE_HOST", "localhost"), env.GetEnv("CACHE_PORT", "6379")),
		Password:    env.GetEnv("CACHE_PASSWORD", ""),
		DialTimeout: 500 * time.Millisecond,
	})
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	err := client.Ping(ctx).Err()
	cancel()
	if err != nil {
		_ = client.Close()
		t.Skipf("Skipping Redis-dependent test: %v", err)
	}

	q := NewQueueWithClient(client, workers)
	q.keys = Keys{Prefix: "storefront:test:" + t.Name()}
	t.Cleanup(func() {
		ctx := context.Background()
		var keys []string
		iter := client.Scan(ctx, 0, q.keys.Prefix+":*", 100).Iterator()
		for iter.Next(ctx) {
			keys = append(keys, iter.Val())
		}
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		_ = client.Close()
	})
	return q
}

// waitFor polls until condition holds or timeout elapses.
func waitFor(condition func() bool, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return false
}
