package infrastructure

import (
	"errors"
	"sync"
	"time"
)

// ErrKeysExhausted means every credential in the pool is cooling down.
var ErrKeysExhausted = errors.New("all API keys are cooling down")

const (
	defaultCooldown = 60 * time.Second
	minCooldown     = 30 * time.Second
)

// KeyPool rotates API credentials for a single provider. Keys reported as
// rate-limited are put on a cool-down and skipped until it elapses. One
// mutex guards the whole pool so acquisition and state transitions cannot
// interleave.
type KeyPool struct {
	mu        sync.Mutex
	keys      []string
	nextIndex int
	coolUntil map[string]time.Time
	now       func() time.Time
}

func NewKeyPool(keys []string) *KeyPool {
	return &KeyPool{
		keys:      keys,
		coolUntil: make(map[string]time.Time),
		now:       time.Now,
	}
}

// Size returns the number of configured keys.
func (p *KeyPool) Size() int {
	return len(p.keys)
}

// Acquire returns the next available key, round-robin from the slot after
// the last one handed out. Expired cool-downs are revived first.
func (p *KeyPool) Acquire() (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.keys) == 0 {
		return "", ErrKeysExhausted
	}

	now := p.now()
	for key, until := range p.coolUntil {
		if !now.Before(until) {
			delete(p.coolUntil, key)
		}
	}

	for i := 0; i < len(p.keys); i++ {
		key := p.keys[(p.nextIndex+i)%len(p.keys)]
		if _, cooling := p.coolUntil[key]; !cooling {
			p.nextIndex = (p.nextIndex + i + 1) % len(p.keys)
			return key, nil
		}
	}
	return "", ErrKeysExhausted
}

// ReportRateLimited puts a key on cool-down. retryAfter == 0 falls back to
// the default; providers occasionally suggest absurdly short delays, so a
// floor is applied.
func (p *KeyPool) ReportRateLimited(key string, retryAfter time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if retryAfter <= 0 {
		retryAfter = defaultCooldown
	} else if retryAfter < minCooldown {
		retryAfter = minCooldown
	}
	p.coolUntil[key] = p.now().Add(retryAfter)
}

// ReportFailed cools a key down briefly after a non-rate-limit failure so
// the next attempt prefers a different credential.
func (p *KeyPool) ReportFailed(key string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.coolUntil[key] = p.now().Add(minCooldown)
}
