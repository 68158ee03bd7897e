package strategy

import (
	"fmt"

	"ctabot-go/internal/execution"
	"ctabot-go/internal/signal"
)

// OrderChase keeps an off-market test order cycling through submit, cancel and
// resubmit on every tick. It exists to exercise the venue's cancel path.
type OrderChase struct {
	template

	initDays int
	chaser   *execution.Chaser
}

// NewOrderChase builds the chase demo for symbol.
func NewOrderChase(name, symbol string, host Host, p Params) *OrderChase {
	p = p.withDefaults()
	s := &OrderChase{
		template: newTemplate("OrderManagementDemo", "ctabot", name, symbol, host),
		initDays: p.InitDays,
	}
	s.chaser = execution.NewChaser(&s.template, s.log, symbol, p.ChaseOffset, p.Volume)
	return s
}

func (s *OrderChase) OnInit() error {
	s.log.Info().Msg("order chase demo initialising")
	if err := s.warmUp(s.initDays, s.OnBar); err != nil {
		return fmt.Errorf("load bars: %w", err)
	}
	return nil
}

func (s *OrderChase) OnTick(t signal.Tick) {
	s.chaser.OnTick(t)
}

func (s *OrderChase) OnOrder(o execution.Order) {
	s.chaser.OnOrder(o)
	s.host.PutEvent(s.name)
}

// Chaser exposes the underlying state machine.
func (s *OrderChase) Chaser() *execution.Chaser { return s.chaser }

func (s *OrderChase) Params() map[string]any { return s.params() }

func (s *OrderChase) Vars() map[string]any {
	v := s.vars()
	v["orderType"] = s.chaser.OrderType()
	v["chaseState"] = s.chaser.State().String()
	v["submits"] = s.chaser.Submits()
	v["cancels"] = s.chaser.Cancels()
	return v
}
