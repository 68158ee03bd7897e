package indicator

import "ctabot-go/internal/signal"

// MomentumWindow is the number of ticks a momentum run spans.
const MomentumWindow = 4

// TickMomentum keeps the most recent ticks and detects strictly monotonic
// runs of the best bid (rising) or best ask (falling).
type TickMomentum struct {
	ticks [MomentumWindow]signal.Tick
	n     int
}

// NewTickMomentum returns an empty detector.
func NewTickMomentum() *TickMomentum { return &TickMomentum{} }

// OnTick appends t, evicting the oldest tick once the window is full, and
// returns BuyMomentum, ShortMomentum or None. BuyMomentum wins when both hold.
func (m *TickMomentum) OnTick(t signal.Tick) signal.Kind {
	if m.n == MomentumWindow {
		copy(m.ticks[:], m.ticks[1:])
		m.ticks[MomentumWindow-1] = t
	} else {
		m.ticks[m.n] = t
		m.n++
	}
	if m.n < MomentumWindow {
		return signal.None
	}

	rising, falling := true, true
	for i := 1; i < MomentumWindow; i++ {
		if !(m.ticks[i].BidPrice1 > m.ticks[i-1].BidPrice1) {
			rising = false
		}
		if !(m.ticks[i].AskPrice1 < m.ticks[i-1].AskPrice1) {
			falling = false
		}
	}
	switch {
	case rising:
		return signal.BuyMomentum
	case falling:
		return signal.ShortMomentum
	default:
		return signal.None
	}
}

// Len returns how many ticks are buffered.
func (m *TickMomentum) Len() int { return m.n }

// Full reports whether the window holds MomentumWindow ticks.
func (m *TickMomentum) Full() bool { return m.n == MomentumWindow }

// Latest returns the newest buffered tick.
func (m *TickMomentum) Latest() (signal.Tick, bool) {
	if m.n == 0 {
		return signal.Tick{}, false
	}
	return m.ticks[m.n-1], true
}
