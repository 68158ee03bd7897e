package paper

import (
	"sync"

	"ctabot-go/internal/execution"
)

// FillRecorder captures paper fills for later inspection.
type FillRecorder interface {
	Record(execution.Trade)
}

// Ledger keeps the most recent fills in memory. A non-positive limit keeps everything.
type Ledger struct {
	mu    sync.Mutex
	limit int
	fills []execution.Trade
}

// NewLedger creates a ledger retaining at most limit fills.
func NewLedger(limit int) *Ledger {
	if limit < 0 {
		limit = 0
	}
	return &Ledger{limit: limit, fills: make([]execution.Trade, 0, limit)}
}

// Record appends a fill, evicting the oldest once the limit is reached.
func (l *Ledger) Record(fill execution.Trade) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.limit > 0 && len(l.fills) == l.limit {
		copy(l.fills, l.fills[1:])
		l.fills = l.fills[:len(l.fills)-1]
	}
	l.fills = append(l.fills, fill)
}

// Snapshot returns a copy of the retained fills, oldest first.
func (l *Ledger) Snapshot() []execution.Trade {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]execution.Trade, len(l.fills))
	copy(out, l.fills)
	return out
}

// Symbol returns the retained fills for one symbol.
func (l *Ledger) Symbol(symbol string) []execution.Trade {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []execution.Trade
	for _, f := range l.fills {
		if f.Symbol == symbol {
			out = append(out, f)
		}
	}
	return out
}

// Reset clears all stored fills.
func (l *Ledger) Reset() {
	l.mu.Lock()
	l.fills = l.fills[:0]
	l.mu.Unlock()
}
