package infrastructure

import "testing"

func TestMessageRateLimiterBurst(t *testing.T) {
	rl := NewMessageRateLimiter(1, 3)

	for i := 0; i < 3; i++ {
		if !rl.Allow(100) {
			t.Fatalf("request %d within burst was denied", i)
		}
	}
	if rl.Allow(100) {
		t.Fatal("request beyond burst was allowed")
	}
}

func TestMessageRateLimiterPerChat(t *testing.T) {
	rl := NewMessageRateLimiter(1, 1)

	if !rl.Allow(1) {
		t.Fatal("first chat denied")
	}
	if !rl.Allow(2) {
		t.Fatal("second chat must have its own bucket")
	}
	if rl.Allow(1) {
		t.Fatal("first chat exceeded burst")
	}
}
