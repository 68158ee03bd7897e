package indicator

import "ctabot-go/internal/signal"

const defaultHistoryLen = 500

// EmaPair is the current (0) and previous (1) value of both averages.
type EmaPair struct {
	Fast0, Fast1 float64
	Slow0, Slow1 float64
	Seeded       bool
}

// DualEMA tracks a fast and a slow exponential moving average over bar closes
// and reports when they cross.
type DualEMA struct {
	fastK, slowK float64
	pair         EmaPair

	historyLen int
	fastHist   []float64
	slowHist   []float64
}

// NewDualEMA builds the detector with smoothing constants fastK and slowK, both in (0,1).
// historyLen bounds the retained series; non-positive values use the default.
func NewDualEMA(fastK, slowK float64, historyLen int) *DualEMA {
	if historyLen <= 0 {
		historyLen = defaultHistoryLen
	}
	return &DualEMA{fastK: fastK, slowK: slowK, historyLen: historyLen}
}

// OnBar folds the bar close into both averages and returns CrossOver, CrossBelow or None.
// The first bar only seeds the averages.
func (e *DualEMA) OnBar(b signal.Bar) signal.Kind {
	p := &e.pair
	if !p.Seeded {
		p.Fast0, p.Slow0 = b.Close, b.Close
		p.Seeded = true
		e.record()
		return signal.None
	}

	p.Fast1, p.Slow1 = p.Fast0, p.Slow0
	p.Fast0 = b.Close*e.fastK + p.Fast0*(1-e.fastK)
	p.Slow0 = b.Close*e.slowK + p.Slow0*(1-e.slowK)
	e.record()

	switch {
	case p.Fast0 > p.Slow0 && p.Fast1 < p.Slow1:
		return signal.CrossOver
	case p.Fast0 < p.Slow0 && p.Fast1 > p.Slow1:
		return signal.CrossBelow
	default:
		return signal.None
	}
}

// Pair returns a copy of the current averages.
func (e *DualEMA) Pair() EmaPair { return e.pair }

// History returns copies of the retained fast and slow series, oldest first.
func (e *DualEMA) History() (fast, slow []float64) {
	fast = append([]float64(nil), e.fastHist...)
	slow = append([]float64(nil), e.slowHist...)
	return fast, slow
}

func (e *DualEMA) record() {
	e.fastHist = append(e.fastHist, e.pair.Fast0)
	e.slowHist = append(e.slowHist, e.pair.Slow0)
	if over := len(e.fastHist) - e.historyLen; over > 0 {
		e.fastHist = e.fastHist[over:]
		e.slowHist = e.slowHist[over:]
	}
}
