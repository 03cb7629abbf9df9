package utils

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestWaitForReturnsImmediatelyForNonPositiveDelay(t *testing.T) {
	if err := WaitFor(context.Background(), 0); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}

func TestWaitForHonorsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := WaitFor(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestBackoff(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		attempt int
		base    time.Duration
		limit   time.Duration
		expect  time.Duration
	}{
		{name: "first attempt uses base", attempt: 0, base: time.Second, limit: time.Minute, expect: time.Second},
		{name: "doubles per attempt", attempt: 3, base: time.Second, limit: time.Minute, expect: 8 * time.Second},
		{name: "capped by limit", attempt: 10, base: time.Second, limit: 5 * time.Second, expect: 5 * time.Second},
		{name: "zero base disables delay", attempt: 2, base: 0, limit: time.Second, expect: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Backoff(tt.attempt, tt.base, tt.limit); got != tt.expect {
				t.Fatalf("expected %v, got %v", tt.expect, got)
			}
		})
	}
}
