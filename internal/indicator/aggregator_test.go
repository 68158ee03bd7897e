package indicator

import (
	"testing"
	"time"

	"ctabot-go/internal/signal"
)

func tickAt(ts time.Time, last float64) signal.Tick {
	return signal.Tick{Symbol: "IF1604", Exchange: "CFFEX", Ts: ts, LastPrice: last, BidPrice1: last - 0.2, AskPrice1: last + 0.2}
}

func TestBarAggregatorFoldsSameMinute(t *testing.T) {
	agg := NewBarAggregator()
	base := time.Date(2016, 3, 22, 9, 30, 0, 0, time.UTC)
	prices := []float64{100, 102.5, 99, 101, 100.5}

	for i, px := range prices {
		if _, ok := agg.OnTick(tickAt(base.Add(time.Duration(i)*time.Second), px)); ok {
			t.Fatalf("tick %d: unexpected bar inside one minute", i)
		}
	}

	bar, ok := agg.Current()
	if !ok {
		t.Fatalf("expected bar in progress")
	}
	if bar.Open != 100 || bar.Close != 100.5 {
		t.Fatalf("unexpected open/close %.2f/%.2f", bar.Open, bar.Close)
	}
	for _, px := range prices {
		if bar.High < px || bar.Low > px {
			t.Fatalf("price %.2f outside [%.2f, %.2f]", px, bar.Low, bar.High)
		}
	}
	if bar.High != 102.5 || bar.Low != 99 {
		t.Fatalf("unexpected high/low %.2f/%.2f", bar.High, bar.Low)
	}
	if !bar.Ts.Equal(base) {
		t.Fatalf("bar should start at first tick, got %s", bar.Ts)
	}
}

func TestBarAggregatorEmitsOnMinuteChange(t *testing.T) {
	agg := NewBarAggregator()
	base := time.Date(2016, 3, 22, 9, 30, 0, 0, time.UTC)

	var bars []signal.Bar
	for minute := 0; minute < 3; minute++ {
		for sec := 0; sec < 5; sec++ {
			ts := base.Add(time.Duration(minute)*time.Minute + time.Duration(sec*10)*time.Second)
			if bar, ok := agg.OnTick(tickAt(ts, float64(100+minute*10+sec))); ok {
				bars = append(bars, bar)
			}
		}
	}

	if len(bars) != 2 {
		t.Fatalf("expected 2 finished bars, got %d", len(bars))
	}
	for i, bar := range bars {
		wantOpen := float64(100 + i*10)
		if bar.Open != wantOpen || bar.Close != wantOpen+4 {
			t.Fatalf("bar %d: unexpected open/close %.0f/%.0f", i, bar.Open, bar.Close)
		}
		if bar.Ts.Minute() != 30+i {
			t.Fatalf("bar %d: unexpected minute %d", i, bar.Ts.Minute())
		}
	}

	// the third minute is still open and is never flushed
	cur, ok := agg.Current()
	if !ok || cur.Open != 120 {
		t.Fatalf("expected third bar in progress, got %+v", cur)
	}
}

func TestBarAggregatorFirstTickEmitsNothing(t *testing.T) {
	agg := NewBarAggregator()
	if _, ok := agg.OnTick(tickAt(time.Now(), 1)); ok {
		t.Fatalf("first tick must not emit a bar")
	}
}
