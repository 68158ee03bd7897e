// Package indicator holds the incremental building blocks strategies fold market data through.
// Nothing here locks: each value is owned by a single strategy and fed sequentially.
package indicator

import "ctabot-go/internal/signal"

// BarAggregator folds a tick stream into one-minute bars keyed on the tick's minute.
type BarAggregator struct {
	bar    signal.Bar
	minute int
	open   bool
}

// NewBarAggregator returns an aggregator with no bar in progress.
func NewBarAggregator() *BarAggregator { return &BarAggregator{} }

// OnTick folds t into the open bar. When t starts a new minute the previous bar is
// returned with ok set and a fresh bar is opened from t. The bar still in progress
// when the stream ends is never returned.
func (a *BarAggregator) OnTick(t signal.Tick) (done signal.Bar, ok bool) {
	minute := t.Ts.Minute()
	if a.open && minute == a.minute {
		if t.LastPrice > a.bar.High {
			a.bar.High = t.LastPrice
		}
		if t.LastPrice < a.bar.Low {
			a.bar.Low = t.LastPrice
		}
		a.bar.Close = t.LastPrice
		return signal.Bar{}, false
	}

	done, ok = a.bar, a.open
	a.bar = signal.Bar{
		Symbol:   t.Symbol,
		Exchange: t.Exchange,
		Open:     t.LastPrice,
		High:     t.LastPrice,
		Low:      t.LastPrice,
		Close:    t.LastPrice,
		Ts:       t.Ts,
	}
	a.minute = minute
	a.open = true
	return done, ok
}

// Current returns the bar in progress, if any.
func (a *BarAggregator) Current() (signal.Bar, bool) { return a.bar, a.open }
