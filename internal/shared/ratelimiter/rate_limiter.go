// Package ratelimiter limits the frequency of operations such as external API calls.
package ratelimiter

import (
	"log"
	"time"
)

// RateLimiterInterface limits the frequency of operations such as API calls.
type RateLimiterInterface interface {
	WaitIfNeeded()
}

// RateLimiter enforces a fixed call budget per interval.
type RateLimiter struct {
	limit     int           // Maximum calls per interval
	interval  time.Duration // Window after which the count resets
	count     int
	lastReset time.Time
}

// NewRateLimiter creates a new RateLimiter instance.
func NewRateLimiter(limit int, interval time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:     limit,
		interval:  interval,
		lastReset: time.Now(),
	}
}

// WaitIfNeeded checks whether the call budget is exhausted and sleeps until
// the window resets if so.
func (rl *RateLimiter) WaitIfNeeded() {
	now := time.Now()
	if now.Sub(rl.lastReset) >= rl.interval {
		rl.count = 0
		rl.lastReset = now
	}

	rl.count++
	if rl.count > rl.limit {
		sleep := rl.interval - now.Sub(rl.lastReset)
		if sleep > 0 {
			log.Printf("[RATE LIMIT] hit %d calls, sleeping for %v...", rl.limit, sleep)
			time.Sleep(sleep)
		}
		rl.count = 1
		rl.lastReset = time.Now()
	}
}
