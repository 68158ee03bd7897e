package strategy

import (
	"ctabot-go/internal/indicator"
	"ctabot-go/internal/metrics"
	"ctabot-go/internal/position"
	"ctabot-go/internal/risk"
	"ctabot-go/internal/signal"
)

// ChasingTick buys after three consecutive higher best bids and shorts after
// three consecutive lower best asks, crossing the spread, then exits on fixed
// take-profit and stop-loss distances from the last fill.
type ChasingTick struct {
	template

	takeProfitPoint float64
	stopLossPoint   float64

	momentum *indicator.TickMomentum
	sides    position.Sides
	pm       *position.Manager
	exit     *risk.Exit
}

// NewChasingTick builds the tick momentum demo for symbol.
func NewChasingTick(name, symbol string, host Host, p Params) *ChasingTick {
	p = p.withDefaults()
	s := &ChasingTick{
		template:        newTemplate("ChasingTickDemo", "ctabot", name, symbol, host),
		takeProfitPoint: p.TakeProfitPoint,
		stopLossPoint:   p.StopLossPoint,
		momentum:        indicator.NewTickMomentum(),
		exit:            risk.NewExit(symbol, p.Volume, p.TakeProfitPoint, p.StopLossPoint),
	}
	s.pm = position.NewManager(symbol, p.Volume, position.WithSideGate(&s.sides))
	return s
}

func (s *ChasingTick) OnInit() error {
	s.log.Info().Msg("chasing tick demo initialising")
	s.inited = true
	return nil
}

func (s *ChasingTick) OnTick(t signal.Tick) {
	kind := s.momentum.OnTick(t)
	price := t.AskPrice1
	if kind.Short() {
		price = t.BidPrice1
	}
	if kind != signal.None {
		if intents := s.pm.Apply(kind, s.pos, price); len(intents) > 0 {
			metrics.SignalsTotal.WithLabelValues(s.name, kind.String()).Inc()
			s.log.Info().Str("signal", kind.String()).Int("pos", s.pos).Int("orders", len(intents)).Float64("px", price).Msg("momentum entry")
			s.send(intents...)
		}
	}

	latest, ok := s.momentum.Latest()
	if !ok || !s.momentum.Full() {
		return
	}
	intent, rule, fired := s.exit.Evaluate(latest, s.lastTrade, s.pos, &s.sides)
	if !fired {
		return
	}
	s.log.Info().Str("rule", string(rule)).Str("type", intent.Label()).Float64("px", intent.Price).Float64("entry", s.lastTrade.Price).Msg("fixed exit")
	s.send(intent)
	s.host.PutEvent(s.name)
}

// Sides exposes the side-open flags.
func (s *ChasingTick) Sides() position.Sides { return s.sides }

func (s *ChasingTick) Params() map[string]any {
	p := s.params()
	p["takeProfitPoint"] = s.takeProfitPoint
	p["stopLossPoint"] = s.stopLossPoint
	return p
}

func (s *ChasingTick) Vars() map[string]any {
	v := s.vars()
	v["bOpen"] = s.sides.LongOpen
	v["sOpen"] = s.sides.ShortOpen
	if s.lastTrade != nil {
		v["lastTradePrice"] = s.lastTrade.Price
	}
	return v
}
