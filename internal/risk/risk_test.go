package risk

import (
	"errors"
	"testing"

	"ctabot-go/internal/execution"
)

func TestAllow(t *testing.T) {
	limits := Limits{MaxNotionalPerTrade: 50}
	if !limits.Allow(49.9) {
		t.Fatalf("expected notional under limit to pass")
	}
	if limits.Allow(50.1) {
		t.Fatalf("expected notional above limit to fail")
	}
	if !(Limits{}).Allow(1e9) {
		t.Fatalf("zero cap should disable the check")
	}
}

func TestCheckNotional(t *testing.T) {
	limits := NewLimits(100, 0, 0)
	if err := limits.Check(execution.Buy("X", 50, 1)); err != nil {
		t.Fatalf("unexpected rejection: %v", err)
	}
	err := limits.Check(execution.Buy("X", 150, 1))
	if !errors.Is(err, ErrRejected) {
		t.Fatalf("expected ErrRejected, got %v", err)
	}
}

func TestCheckRate(t *testing.T) {
	limits := NewLimits(0, 0.001, 2)
	for i := 0; i < 2; i++ {
		if err := limits.Check(execution.Buy("X", 1, 1)); err != nil {
			t.Fatalf("burst order %d rejected: %v", i, err)
		}
	}
	if err := limits.Check(execution.Buy("X", 1, 1)); !errors.Is(err, ErrRejected) {
		t.Fatalf("expected rate rejection, got %v", err)
	}
}
