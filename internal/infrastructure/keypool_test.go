package infrastructure

import (
	"testing"
	"time"
)

func newTestPool(keys []string) (*KeyPool, *time.Time) {
	pool := NewKeyPool(keys)
	clock := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	pool.now = func() time.Time { return clock }
	return pool, &clock
}

func TestKeyPoolRoundRobin(t *testing.T) {
	pool, _ := newTestPool([]string{"a", "b", "c"})

	want := []string{"a", "b", "c", "a", "b"}
	for i, expected := range want {
		key, err := pool.Acquire()
		if err != nil {
			t.Fatalf("acquire %d: %v", i, err)
		}
		if key != expected {
			t.Errorf("acquire %d: got %q, want %q", i, key, expected)
		}
	}
}

func TestKeyPoolSkipsCoolingKeys(t *testing.T) {
	pool, _ := newTestPool([]string{"a", "b"})

	pool.ReportRateLimited("a", time.Minute)

	for i := 0; i < 3; i++ {
		key, err := pool.Acquire()
		if err != nil {
			t.Fatalf("acquire %d: %v", i, err)
		}
		if key != "b" {
			t.Errorf("acquire %d: got %q, want b while a cools", i, key)
		}
	}
}

func TestKeyPoolExhausted(t *testing.T) {
	pool, _ := newTestPool([]string{"a", "b"})

	pool.ReportRateLimited("a", time.Minute)
	pool.ReportRateLimited("b", time.Minute)

	if _, err := pool.Acquire(); err != ErrKeysExhausted {
		t.Fatalf("expected ErrKeysExhausted, got %v", err)
	}
}

func TestKeyPoolRevivesAfterCooldown(t *testing.T) {
	pool, clock := newTestPool([]string{"a"})

	pool.ReportRateLimited("a", time.Minute)
	if _, err := pool.Acquire(); err != ErrKeysExhausted {
		t.Fatalf("expected exhausted during cooldown, got %v", err)
	}

	*clock = clock.Add(61 * time.Second)
	key, err := pool.Acquire()
	if err != nil {
		t.Fatalf("acquire after cooldown: %v", err)
	}
	if key != "a" {
		t.Errorf("got %q, want a", key)
	}
}

func TestKeyPoolCooldownFloor(t *testing.T) {
	pool, clock := newTestPool([]string{"a"})

	// An absurdly short retry hint is raised to the floor.
	pool.ReportRateLimited("a", time.Second)

	*clock = clock.Add(10 * time.Second)
	if _, err := pool.Acquire(); err != ErrKeysExhausted {
		t.Fatalf("expected key still cooling at 10s, got %v", err)
	}

	*clock = clock.Add(21 * time.Second)
	if _, err := pool.Acquire(); err != nil {
		t.Fatalf("expected key revived after floor elapsed, got %v", err)
	}
}

func TestKeyPoolZeroRetryUsesDefault(t *testing.T) {
	pool, clock := newTestPool([]string{"a"})

	pool.ReportRateLimited("a", 0)

	*clock = clock.Add(59 * time.Second)
	if _, err := pool.Acquire(); err != ErrKeysExhausted {
		t.Fatalf("expected default cooldown still active, got %v", err)
	}

	*clock = clock.Add(2 * time.Second)
	if _, err := pool.Acquire(); err != nil {
		t.Fatalf("expected key back after default cooldown, got %v", err)
	}
}

func TestKeyPoolEmpty(t *testing.T) {
	pool := NewKeyPool(nil)
	if pool.Size() != 0 {
		t.Fatalf("size = %d, want 0", pool.Size())
	}
	if _, err := pool.Acquire(); err != ErrKeysExhausted {
		t.Fatalf("expected ErrKeysExhausted, got %v", err)
	}
}
