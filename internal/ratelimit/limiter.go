package ratelimit

import "context"

// RateLimiter throttles outbound webhook redeliveries per endpoint host.
type RateLimiter interface {
	Allow(ctx context.Context, host string) (bool, error)
	Wait(ctx context.Context, host string) error
}
