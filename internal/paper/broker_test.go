package paper

import (
	"errors"
	"testing"
	"time"

	"ctabot-go/internal/execution"
	"ctabot-go/internal/signal"
)

func quote(bid, ask float64) signal.Tick {
	return signal.Tick{Symbol: "IF1604", Ts: time.Now(), LastPrice: (bid + ask) / 2, BidPrice1: bid, AskPrice1: ask}
}

func statuses(events []Event) []execution.Status {
	var out []execution.Status
	for _, ev := range events {
		if ev.Order != nil {
			out = append(out, ev.Order.Status)
		}
	}
	return out
}

func trades(events []Event) []execution.Trade {
	var out []execution.Trade
	for _, ev := range events {
		if ev.Trade != nil {
			out = append(out, *ev.Trade)
		}
	}
	return out
}

func TestBrokerRestsAndCancels(t *testing.T) {
	b := NewBroker()
	b.OnTick(quote(2999.8, 3000.2))

	id, err := b.Send(execution.Buy("IF1604", 2990, 1))
	if err != nil {
		t.Fatalf("Send error: %v", err)
	}
	got := statuses(b.Drain())
	if len(got) != 2 || got[0] != execution.Submitted || got[1] != execution.Unfilled {
		t.Fatalf("expected submitted then unfilled, got %v", got)
	}
	if b.Active() != 1 {
		t.Fatalf("order should rest")
	}

	if err := b.Cancel(id); err != nil {
		t.Fatalf("Cancel error: %v", err)
	}
	got = statuses(b.Drain())
	if len(got) != 1 || got[0] != execution.Cancelled {
		t.Fatalf("expected cancelled, got %v", got)
	}
	if err := b.Cancel(id); !errors.Is(err, ErrUnknownOrder) {
		t.Fatalf("expected ErrUnknownOrder on second cancel, got %v", err)
	}
}

func TestBrokerFillsMarketableOnSend(t *testing.T) {
	b := NewBroker()
	b.OnTick(quote(2999.8, 3000.2))

	if _, err := b.Send(execution.Buy("IF1604", 3000.2, 1)); err != nil {
		t.Fatalf("Send error: %v", err)
	}
	events := b.Drain()
	if got := statuses(events); len(got) != 2 || got[1] != execution.Filled {
		t.Fatalf("expected submitted then filled, got %v", got)
	}
	fills := trades(events)
	if len(fills) != 1 || fills[0].Price != 3000.2 || fills[0].Offset != execution.Open {
		t.Fatalf("unexpected fills %+v", fills)
	}
	// the trade follows its Filled update
	if events[len(events)-1].Trade == nil {
		t.Fatalf("trade should be the last event")
	}
}

func TestBrokerFillsRestingOnTick(t *testing.T) {
	b := NewBroker()
	if _, err := b.Send(execution.Short("IF1604", 3005, 1)); err != nil {
		t.Fatalf("Send error: %v", err)
	}
	b.Drain()

	b.OnTick(quote(3004, 3004.4))
	if len(b.Drain()) != 0 {
		t.Fatalf("bid below the limit must not fill a short")
	}
	b.OnTick(quote(3005, 3005.4))
	fills := trades(b.Drain())
	if len(fills) != 1 || fills[0].Direction != execution.DirShort || fills[0].Price != 3005 {
		t.Fatalf("expected short fill at 3005, got %+v", fills)
	}
	if b.Active() != 0 {
		t.Fatalf("filled order still resting")
	}
}

func TestBrokerRejectsBadIntent(t *testing.T) {
	b := NewBroker()
	if _, err := b.Send(execution.Intent{Symbol: "X", Direction: execution.DirLong, Qty: 0}); err == nil {
		t.Fatalf("expected quantity error")
	}
	if _, err := b.Send(execution.Intent{Symbol: "X", Qty: 1}); err == nil {
		t.Fatalf("expected direction error")
	}
}
