// internal/ratelimit/ratelimit.go
package ratelimit

import (
	"fmt"
	"sync"
	"time"
)

// RateLimiter is a fixed-window counter. A single-operator tool has no
// shared state to coordinate, so windows live in process memory.
type RateLimiter struct {
	mu      sync.Mutex
	windows map[string]int
	seen    map[string]time.Time
}

func NewRateLimiter() *RateLimiter {
	return &RateLimiter{
		windows: make(map[string]int),
		seen:    make(map[string]time.Time),
	}
}

// Allow increments the counter for key in the current window and reports
// whether the count stays within limit.
func (rl *RateLimiter) Allow(key string, limit int, window time.Duration) (bool, int) {
	now := time.Now()
	windowKey := fmt.Sprintf("%s:%d", key, now.Unix()/int64(window.Seconds()))

	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.pruneLocked(now, window)

	rl.windows[windowKey]++
	rl.seen[windowKey] = now
	count := rl.windows[windowKey]
	return count <= limit, count
}

// pruneLocked drops windows that ended more than two spans ago.
func (rl *RateLimiter) pruneLocked(now time.Time, window time.Duration) {
	cutoff := now.Add(-2 * window)
	for key, last := range rl.seen {
		if last.Before(cutoff) {
			delete(rl.windows, key)
			delete(rl.seen, key)
		}
	}
}
