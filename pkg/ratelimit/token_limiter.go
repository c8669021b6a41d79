package ratelimit

import (
	"context"
	"sync"
	"time"
)

// TokenLimiter enforces a per-minute token budget with a sliding window.
type TokenLimiter struct {
	mu          sync.Mutex
	maxPerMin   int
	used        int
	windowStart time.Time
}

// NewTokenLimiter creates a limiter that allows maxPerMinute tokens per minute.
func NewTokenLimiter(maxPerMinute int) *TokenLimiter {
	return &TokenLimiter{
		maxPerMin:   maxPerMinute,
		windowStart: time.Now(),
	}
}

// GetRemaining returns the number of tokens left in the current window.
func (l *TokenLimiter) GetRemaining() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rotate()
	return l.maxPerMin - l.used
}

// Wait blocks until n tokens fit in the budget or the context is cancelled.
func (l *TokenLimiter) Wait(ctx context.Context, n int) error {
	for {
		l.mu.Lock()
		l.rotate()
		if l.used+n <= l.maxPerMin || n > l.maxPerMin {
			l.used += n
			l.mu.Unlock()
			return nil
		}
		sleep := time.Minute - time.Since(l.windowStart)
		l.mu.Unlock()

		if sleep <= 0 {
			sleep = 100 * time.Millisecond
		}
		timer := time.NewTimer(sleep)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

func (l *TokenLimiter) rotate() {
	if time.Since(l.windowStart) >= time.Minute {
		l.used = 0
		l.windowStart = time.Now()
	}
}
