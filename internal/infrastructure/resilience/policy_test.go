package resilience

import (
	"testing"
	"time"
)

func TestWithDefaultsFillsZeroConfig(t *testing.T) {
	got := Config{}.withDefaults()
	def := DefaultConfig()

	if got.Retry != def.Retry {
		t.Fatalf("retry defaults not applied: %+v", got.Retry)
	}
	if got.Breaker.MinRequests != def.Breaker.MinRequests ||
		got.Breaker.FailureRatio != def.Breaker.FailureRatio ||
		got.Breaker.OpenTimeout != def.Breaker.OpenTimeout ||
		got.Breaker.HalfOpenMaxCalls != def.Breaker.HalfOpenMaxCalls {
		t.Fatalf("breaker defaults not applied: %+v", got.Breaker)
	}
}

func TestWithDefaultsClampsMaxBackoffToInitial(t *testing.T) {
	cfg := Config{
		Retry: RetryConfig{
			MaxAttempts:    2,
			InitialBackoff: 3 * time.Second,
			MaxBackoff:     1 * time.Second,
			Multiplier:     2,
		},
	}

	got := cfg.withDefaults()
	if got.Retry.MaxBackoff != 3*time.Second {
		t.Fatalf("expected max backoff raised to initial, got %v", got.Retry.MaxBackoff)
	}
}

func TestWithDefaultsRejectsOutOfRangeFailureRatio(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Breaker.FailureRatio = 1.5

	got := cfg.withDefaults()
	if got.Breaker.FailureRatio != DefaultConfig().Breaker.FailureRatio {
		t.Fatalf("expected failure ratio reset, got %v", got.Breaker.FailureRatio)
	}
}
