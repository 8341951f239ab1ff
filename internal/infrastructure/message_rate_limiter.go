package infrastructure

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// MessageRateLimiter keeps a token bucket per chat so a single user cannot
// drown the correction pipeline.
type MessageRateLimiter struct {
	mu      sync.Mutex
	buckets map[int64]*chatBucket
	rate    rate.Limit
	burst   int
}

type chatBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewMessageRateLimiter allows r messages per second with the given burst.
func NewMessageRateLimiter(r float64, burst int) *MessageRateLimiter {
	rl := &MessageRateLimiter{
		buckets: make(map[int64]*chatBucket),
		rate:    rate.Limit(r),
		burst:   burst,
	}
	go rl.cleanup()
	return rl
}

// Allow consumes one token for the chat if available.
func (rl *MessageRateLimiter) Allow(chatID int64) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.buckets[chatID]
	if !ok {
		b = &chatBucket{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.buckets[chatID] = b
	}
	b.lastSeen = time.Now()
	return b.limiter.Allow()
}

// cleanup evicts buckets idle for more than ten minutes.
func (rl *MessageRateLimiter) cleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	for range ticker.C {
		rl.mu.Lock()
		cutoff := time.Now().Add(-10 * time.Minute)
		for chatID, b := range rl.buckets {
			if b.lastSeen.Before(cutoff) {
				delete(rl.buckets, chatID)
			}
		}
		rl.mu.Unlock()
	}
}
