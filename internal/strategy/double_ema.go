package strategy

import (
	"fmt"

	"ctabot-go/internal/indicator"
	"ctabot-go/internal/metrics"
	"ctabot-go/internal/position"
	"ctabot-go/internal/signal"
)

// DoubleEma trades the crossover of a fast and a slow EMA over one-minute bars,
// reversing through a close when already positioned the other way. Orders go
// in at the bar close.
type DoubleEma struct {
	template

	fastK    float64
	slowK    float64
	initDays int

	bars *indicator.BarAggregator
	ema  *indicator.DualEMA
	pm   *position.Manager
}

// NewDoubleEma builds the strategy for symbol.
func NewDoubleEma(name, symbol string, host Host, p Params) *DoubleEma {
	p = p.withDefaults()
	return &DoubleEma{
		template: newTemplate("DoubleEmaDemo", "ctabot", name, symbol, host),
		fastK:    p.FastK,
		slowK:    p.SlowK,
		initDays: p.InitDays,
		bars:     indicator.NewBarAggregator(),
		ema:      indicator.NewDualEMA(p.FastK, p.SlowK, p.HistoryLen),
		pm:       position.NewManager(symbol, p.Volume),
	}
}

func (s *DoubleEma) OnInit() error {
	s.log.Info().Msg("double EMA demo initialising")
	if err := s.warmUp(s.initDays, s.OnBar); err != nil {
		return fmt.Errorf("load bars: %w", err)
	}
	return nil
}

func (s *DoubleEma) OnTick(t signal.Tick) {
	if bar, ok := s.bars.OnTick(t); ok {
		s.OnBar(bar)
	}
}

func (s *DoubleEma) OnBar(b signal.Bar) {
	kind := s.ema.OnBar(b)
	if kind != signal.None {
		metrics.SignalsTotal.WithLabelValues(s.name, kind.String()).Inc()
		s.log.Info().Str("signal", kind.String()).Float64("close", b.Close).Int("pos", s.pos).Msg("ema cross")
		s.send(s.pm.Apply(kind, s.pos, b.Close)...)
	}
	s.host.PutEvent(s.name)
}

// EMA exposes the current averages.
func (s *DoubleEma) EMA() indicator.EmaPair { return s.ema.Pair() }

func (s *DoubleEma) Params() map[string]any {
	p := s.params()
	p["fastK"] = s.fastK
	p["slowK"] = s.slowK
	p["initDays"] = s.initDays
	return p
}

func (s *DoubleEma) Vars() map[string]any {
	v := s.vars()
	pair := s.ema.Pair()
	v["fastMa0"] = pair.Fast0
	v["fastMa1"] = pair.Fast1
	v["slowMa0"] = pair.Slow0
	v["slowMa1"] = pair.Slow1
	return v
}
