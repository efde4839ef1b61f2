package services

import (
	"math"
	"time"
)

const (
	DefaultBackoffBaseSeconds = 2
	DefaultBackoffCapExponent = 6
)

// BackoffPolicy computes the delay before the next delivery attempt.
// Pure and deterministic: delay = base^min(attempts, capExponent) seconds.
type BackoffPolicy struct {
	BaseSeconds int
	CapExponent int
}

func DefaultBackoffPolicy() BackoffPolicy {
	return BackoffPolicy{
		BaseSeconds: DefaultBackoffBaseSeconds,
		CapExponent: DefaultBackoffCapExponent,
	}
}

// Delay returns the wait before attempt number attempts+1. The exponent is
// capped so a long-failing record settles on a steady retry cadence instead
// of growing without bound.
func (p BackoffPolicy) Delay(attempts int) time.Duration {
	base := p.BaseSeconds
	if base <= 0 {
		base = DefaultBackoffBaseSeconds
	}
	capExponent := p.CapExponent
	if capExponent <= 0 {
		capExponent = DefaultBackoffCapExponent
	}

	exponent := attempts
	if exponent < 0 {
		exponent = 0
	}
	if exponent > capExponent {
		exponent = capExponent
	}
	seconds := math.Pow(float64(base), float64(exponent))
	return time.Duration(seconds * float64(time.Second))
}
