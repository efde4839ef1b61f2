package services

import (
	"testing"
	"time"
)

func TestBackoffDelayGrowsExponentially(t *testing.T) {
	policy := DefaultBackoffPolicy()

	cases := []struct {
		attempts int
		want     time.Duration
	}{
		{attempts: 0, want: time.Second},
		{attempts: 1, want: 2 * time.Second},
		{attempts: 2, want: 4 * time.Second},
		{attempts: 3, want: 8 * time.Second},
		{attempts: 6, want: 64 * time.Second},
	}
	for _, tc := range cases {
		if got := policy.Delay(tc.attempts); got != tc.want {
			t.Fatalf("Delay(%d) = %v, want %v", tc.attempts, got, tc.want)
		}
	}
}

func TestBackoffDelayCapsExponent(t *testing.T) {
	policy := DefaultBackoffPolicy()

	capped := policy.Delay(DefaultBackoffCapExponent)
	for _, attempts := range []int{7, 10, 100} {
		if got := policy.Delay(attempts); got != capped {
			t.Fatalf("Delay(%d) = %v, want capped %v", attempts, got, capped)
		}
	}
}

func TestBackoffDelayIsMonotonic(t *testing.T) {
	policy := BackoffPolicy{BaseSeconds: 3, CapExponent: 4}

	previous := policy.Delay(0)
	for attempts := 1; attempts <= 10; attempts++ {
		current := policy.Delay(attempts)
		if current < previous {
			t.Fatalf("Delay(%d) = %v shrank below Delay(%d) = %v", attempts, current, attempts-1, previous)
		}
		previous = current
	}
}

func TestBackoffDelayDefendsAgainstZeroValues(t *testing.T) {
	var policy BackoffPolicy

	if got := policy.Delay(1); got != 2*time.Second {
		t.Fatalf("zero-value policy Delay(1) = %v, want %v", got, 2*time.Second)
	}
	if got := policy.Delay(-3); got != time.Second {
		t.Fatalf("negative attempts Delay = %v, want %v", got, time.Second)
	}
}
