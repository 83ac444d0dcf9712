// Package ratelimit throttles how fast matches are pulled from a search.
// Because the search sequence is pull-based, slowing the consumer slows the
// directory traversal itself.
package ratelimit

import (
	"context"

	"golang.org/x/time/rate"
)

type Limiter struct {
	limiter *rate.Limiter
}

// New uses 0 or a negative limit for unthrottled scanning.
func New(matchesPerSecond float64) *Limiter {
	if matchesPerSecond <= 0 {
		return &Limiter{
			limiter: rate.NewLimiter(rate.Inf, 1),
		}
	}

	// Burst of 1: the first match is immediate, every later one waits its
	// turn at the configured rate.
	return &Limiter{
		limiter: rate.NewLimiter(rate.Limit(matchesPerSecond), 1),
	}
}

// Wait blocks until the next match may be consumed or ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}

// Allow is non-blocking and reports whether a match may be consumed now.
func (l *Limiter) Allow() bool {
	return l.limiter.Allow()
}

// Limit reports the configured rate, 0 meaning unthrottled.
func (l *Limiter) Limit() float64 {
	limit := l.limiter.Limit()
	if limit == rate.Inf {
		return 0
	}
	return float64(limit)
}
