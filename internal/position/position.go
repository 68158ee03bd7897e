// Package position turns directional signals into order intents that respect
// the current net position: a reversal always closes before it opens.
package position

import (
	"ctabot-go/internal/execution"
	"ctabot-go/internal/signal"
)

// Sides records which side the strategy has asked to hold. Momentum trading
// uses it so a repeated signal does not resubmit while that side is open.
type Sides struct {
	LongOpen  bool
	ShortOpen bool
}

// Manager converts a signal plus net position into intents for one symbol.
type Manager struct {
	symbol string
	qty    float64
	gate   *Sides
}

// Option configures a Manager.
type Option func(*Manager)

// WithSideGate makes the manager consult and update the supplied flags.
func WithSideGate(sides *Sides) Option {
	return func(m *Manager) { m.gate = sides }
}

// NewManager builds a manager trading qty lots of symbol.
func NewManager(symbol string, qty float64, opts ...Option) *Manager {
	if qty <= 0 {
		qty = 1
	}
	m := &Manager{symbol: symbol, qty: qty}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Apply returns the intents needed to move toward the side kind asks for, in
// submission order. An empty result means the position already matches or
// the signal is None.
func (m *Manager) Apply(kind signal.Kind, net int, price float64) []execution.Intent {
	if m.gate != nil {
		return m.applyGated(kind, net, price)
	}
	switch {
	case kind.Long() && net == 0:
		return []execution.Intent{execution.Buy(m.symbol, price, m.qty)}
	case kind.Long() && net < 0:
		return []execution.Intent{execution.Cover(m.symbol, price, m.qty), execution.Buy(m.symbol, price, m.qty)}
	case kind.Short() && net == 0:
		return []execution.Intent{execution.Short(m.symbol, price, m.qty)}
	case kind.Short() && net > 0:
		return []execution.Intent{execution.Sell(m.symbol, price, m.qty), execution.Short(m.symbol, price, m.qty)}
	}
	return nil
}

func (m *Manager) applyGated(kind signal.Kind, net int, price float64) []execution.Intent {
	g := m.gate
	switch {
	case kind.Long() && net == 0 && !g.LongOpen && !g.ShortOpen:
		g.LongOpen = true
		return []execution.Intent{execution.Buy(m.symbol, price, m.qty)}
	case kind.Long() && net < 0 && !g.LongOpen:
		g.ShortOpen, g.LongOpen = false, true
		return []execution.Intent{execution.Cover(m.symbol, price, m.qty), execution.Buy(m.symbol, price, m.qty)}
	case kind.Short() && net == 0 && !g.LongOpen && !g.ShortOpen:
		g.ShortOpen = true
		return []execution.Intent{execution.Short(m.symbol, price, m.qty)}
	case kind.Short() && net > 0 && !g.ShortOpen:
		g.LongOpen, g.ShortOpen = false, true
		return []execution.Intent{execution.Sell(m.symbol, price, m.qty), execution.Short(m.symbol, price, m.qty)}
	}
	return nil
}
