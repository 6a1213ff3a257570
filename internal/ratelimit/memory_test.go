package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestMemory(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	limited := func(t *testing.T, m *Memory, key string, now time.Time) bool {
		t.Helper()
		got, err := m.IsLimited(ctx, key, now)
		if err != nil {
			t.Fatalf("IsLimited returned error: %v", err)
		}
		return got
	}

	t.Run("Unknown Key Is Not Limited", func(t *testing.T) {
		m := NewMemory()
		if limited(t, m, "1.2.3.4", start) {
			t.Error("fresh identity should not be limited")
		}
	})

	t.Run("Below Threshold", func(t *testing.T) {
		m := NewMemory()
		for i := 0; i < MaxAttempts-1; i++ {
			if err := m.RecordFailure(ctx, "1.2.3.4", start.Add(time.Duration(i)*time.Second)); err != nil {
				t.Fatalf("RecordFailure returned error: %v", err)
			}
		}

		if limited(t, m, "1.2.3.4", start.Add(time.Minute)) {
			t.Errorf("identity should not be limited after %d failures", MaxAttempts-1)
		}
	})

	t.Run("Threshold Starts Block", func(t *testing.T) {
		m := NewMemory()
		var last time.Time
		for i := 0; i < MaxAttempts; i++ {
			last = start.Add(time.Duration(i) * time.Second)
			m.RecordFailure(ctx, "1.2.3.4", last)
		}

		if !limited(t, m, "1.2.3.4", last) {
			t.Errorf("identity should be limited after %d failures", MaxAttempts)
		}

		if !limited(t, m, "1.2.3.4", last.Add(BlockDuration-time.Second)) {
			t.Error("identity should stay limited for the block duration")
		}

		if limited(t, m, "1.2.3.4", last.Add(BlockDuration)) {
			t.Error("block should expire once blockedUntil is reached")
		}
	})

	t.Run("Window Prunes Old Attempts", func(t *testing.T) {
		m := NewMemory()
		for i := 0; i < MaxAttempts-1; i++ {
			m.RecordFailure(ctx, "1.2.3.4", start)
		}

		// One more failure after the window has passed should not block:
		// the earlier attempts have aged out.
		later := start.Add(Window + time.Minute)
		m.RecordFailure(ctx, "1.2.3.4", later)

		if limited(t, m, "1.2.3.4", later) {
			t.Error("attempts outside the window should not count toward the limit")
		}
	})

	t.Run("Clear Resets Count", func(t *testing.T) {
		m := NewMemory()
		for i := 0; i < MaxAttempts-1; i++ {
			m.RecordFailure(ctx, "1.2.3.4", start)
		}

		if err := m.Clear(ctx, "1.2.3.4"); err != nil {
			t.Fatalf("Clear returned error: %v", err)
		}

		for i := 0; i < MaxAttempts-1; i++ {
			m.RecordFailure(ctx, "1.2.3.4", start)
		}

		if limited(t, m, "1.2.3.4", start) {
			t.Error("failures before Clear should not count toward the limit")
		}
	})

	t.Run("Keys Are Independent", func(t *testing.T) {
		m := NewMemory()
		for i := 0; i < MaxAttempts; i++ {
			m.RecordFailure(ctx, "1.2.3.4", start)
		}

		if limited(t, m, "5.6.7.8", start) {
			t.Error("blocking one identity should not affect another")
		}
	})
}

func TestClientKey(t *testing.T) {
	cases := []struct {
		name string
		addr string
		want string
	}{
		{"host and port", "203.0.113.7:52110", "203.0.113.7"},
		{"bare host", "203.0.113.7", "203.0.113.7"},
		{"ipv6 with port", "[2001:db8::1]:443", "2001:db8::1"},
		{"empty address", "", "unknown"},
		{"whitespace", "   ", "unknown"},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClientKey(tt.addr); got != tt.want {
				t.Errorf("ClientKey(%q) = %q, want %q", tt.addr, got, tt.want)
			}
		})
	}
}
