package risk

import (
	"testing"

	"ctabot-go/internal/execution"
	"ctabot-go/internal/position"
	"ctabot-go/internal/signal"
)

func tick(last float64) signal.Tick {
	return signal.Tick{Symbol: "IF1604", LastPrice: last, BidPrice1: last - 0.2, AskPrice1: last + 0.2}
}

func TestExitLongTakeProfit(t *testing.T) {
	exit := NewExit("IF1604", 1, 2, 1)
	trade := &execution.Trade{Price: 100, Direction: execution.DirLong, Qty: 1}

	sides := position.Sides{LongOpen: true}
	if _, _, ok := exit.Evaluate(tick(101), trade, 1, &sides); ok {
		t.Fatalf("101 is within both thresholds")
	}
	intent, rule, ok := exit.Evaluate(tick(103), trade, 1, &sides)
	if !ok || rule != TakeProfit {
		t.Fatalf("expected take profit, got %v %s", ok, rule)
	}
	if intent.Label() != "Sell-Close" || intent.Price != 102.8 {
		t.Fatalf("expected Sell-Close at bid, got %+v", intent)
	}
	if sides.LongOpen {
		t.Fatalf("long flag should be cleared")
	}
	if _, _, ok := exit.Evaluate(tick(104), trade, 1, &sides); ok {
		t.Fatalf("exit fired twice")
	}
}

func TestExitLongStopLoss(t *testing.T) {
	exit := NewExit("IF1604", 1, 2, 1)
	trade := &execution.Trade{Price: 100}
	sides := position.Sides{LongOpen: true}
	if _, _, ok := exit.Evaluate(tick(99), trade, 1, &sides); ok {
		t.Fatalf("a loss of exactly the threshold must not fire")
	}
	_, rule, ok := exit.Evaluate(tick(98.5), trade, 1, &sides)
	if !ok || rule != StopLoss {
		t.Fatalf("expected stop loss, got %v %s", ok, rule)
	}
}

func TestExitShort(t *testing.T) {
	exit := NewExit("IF1604", 1, 2, 1)
	trade := &execution.Trade{Price: 100}

	sides := position.Sides{ShortOpen: true}
	intent, rule, ok := exit.Evaluate(tick(97), trade, -1, &sides)
	if !ok || rule != TakeProfit || intent.Label() != "Buy-Close" || intent.Price != 97.2 {
		t.Fatalf("expected short take profit cover at ask, got %+v %s %v", intent, rule, ok)
	}
	if sides.ShortOpen {
		t.Fatalf("short flag should be cleared")
	}

	sides = position.Sides{ShortOpen: true}
	if _, rule, ok := exit.Evaluate(tick(101.5), trade, -1, &sides); !ok || rule != StopLoss {
		t.Fatalf("expected short stop loss, got %v %s", ok, rule)
	}
}

func TestExitRequiresFlagAndPosition(t *testing.T) {
	exit := NewExit("IF1604", 1, 2, 1)
	trade := &execution.Trade{Price: 100}

	if _, _, ok := exit.Evaluate(tick(110), trade, 1, &position.Sides{}); ok {
		t.Fatalf("exit without long flag")
	}
	if _, _, ok := exit.Evaluate(tick(110), trade, 0, &position.Sides{LongOpen: true}); ok {
		t.Fatalf("exit while flat")
	}
	if _, _, ok := exit.Evaluate(tick(110), nil, 1, &position.Sides{LongOpen: true}); ok {
		t.Fatalf("exit without a trade")
	}
}
