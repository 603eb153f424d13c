package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
)

func newTestLimiter(t *testing.T, limit int64, nowFn func() time.Time, sleepFn func(ctx context.Context, d time.Duration) error) *RedisRateLimiter {
	t.Helper()

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	limiter, err := newRedisRateLimiter(client, limit, nowFn, sleepFn)
	if err != nil {
		t.Fatalf("newRedisRateLimiter: %v", err)
	}
	return limiter
}

func TestRedisRateLimiterAllowWithinLimit(t *testing.T) {
	t.Parallel()

	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	limiter := newTestLimiter(t, 3, func() time.Time { return fixed }, nil)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		allowed, err := limiter.Allow(ctx, "hooks.example.com")
		if err != nil {
			t.Fatalf("Allow #%d: %v", i+1, err)
		}
		if !allowed {
			t.Fatalf("Allow #%d = false, want true", i+1)
		}
	}

	allowed, err := limiter.Allow(ctx, "hooks.example.com")
	if err != nil {
		t.Fatalf("Allow over limit: %v", err)
	}
	if allowed {
		t.Fatal("Allow over limit = true, want false")
	}
}

func TestRedisRateLimiterIsolatesHosts(t *testing.T) {
	t.Parallel()

	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	limiter := newTestLimiter(t, 1, func() time.Time { return fixed }, nil)

	ctx := context.Background()
	if allowed, err := limiter.Allow(ctx, "hooks.example.com"); err != nil || !allowed {
		t.Fatalf("first host: allowed=%v err=%v", allowed, err)
	}
	if allowed, err := limiter.Allow(ctx, "hooks.example.com"); err != nil || allowed {
		t.Fatalf("first host second call: allowed=%v err=%v", allowed, err)
	}
	if allowed, err := limiter.Allow(ctx, "other.example.net"); err != nil || !allowed {
		t.Fatalf("second host: allowed=%v err=%v", allowed, err)
	}
}

func TestRedisRateLimiterNewWindowResets(t *testing.T) {
	t.Parallel()

	current := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	limiter := newTestLimiter(t, 1, func() time.Time { return current }, nil)

	ctx := context.Background()
	if allowed, _ := limiter.Allow(ctx, "hooks.example.com"); !allowed {
		t.Fatal("first call should be allowed")
	}
	if allowed, _ := limiter.Allow(ctx, "hooks.example.com"); allowed {
		t.Fatal("second call in same window should be denied")
	}

	current = current.Add(time.Second)
	if allowed, _ := limiter.Allow(ctx, "hooks.example.com"); !allowed {
		t.Fatal("call in next window should be allowed")
	}
}

func TestRedisRateLimiterWaitSleepsUntilAllowed(t *testing.T) {
	t.Parallel()

	current := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	var sleeps []time.Duration
	limiter := newTestLimiter(t, 1,
		func() time.Time { return current },
		func(ctx context.Context, d time.Duration) error {
			sleeps = append(sleeps, d)
			current = current.Add(time.Second)
			return nil
		},
	)

	ctx := context.Background()
	if allowed, _ := limiter.Allow(ctx, "hooks.example.com"); !allowed {
		t.Fatal("first call should be allowed")
	}

	if err := limiter.Wait(ctx, "hooks.example.com"); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if len(sleeps) != 1 {
		t.Fatalf("expected exactly one sleep, got %d", len(sleeps))
	}
}

func TestRedisRateLimiterWaitPropagatesContextError(t *testing.T) {
	t.Parallel()

	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	limiter := newTestLimiter(t, 1,
		func() time.Time { return fixed },
		func(ctx context.Context, d time.Duration) error { return context.DeadlineExceeded },
	)

	ctx := context.Background()
	if allowed, _ := limiter.Allow(ctx, "hooks.example.com"); !allowed {
		t.Fatal("first call should be allowed")
	}

	err := limiter.Wait(ctx, "hooks.example.com")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Wait error = %v, want deadline exceeded", err)
	}
}

func TestRedisRateLimiterRejectsEmptyHost(t *testing.T) {
	t.Parallel()

	limiter := newTestLimiter(t, 1, nil, nil)
	if _, err := limiter.Allow(context.Background(), "  "); err == nil {
		t.Fatal("expected error for empty host")
	}
}
