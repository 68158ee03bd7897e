// Package strategy contains the demo strategies the host runs. Each strategy
// receives its host at construction and is driven through the Strategy hooks.
package strategy

import (
	"errors"
	"math"

	"github.com/rs/zerolog"

	"ctabot-go/internal/execution"
	"ctabot-go/internal/signal"
)

// ErrNotTrading is returned for orders attempted before OnStart or after OnStop.
var ErrNotTrading = errors.New("strategy is not trading")

// Host is everything a strategy may ask of the engine running it.
type Host interface {
	// LoadBar returns up to days of history for symbol, oldest first.
	LoadBar(symbol string, days int) ([]signal.Bar, error)
	SendOrder(strategy string, intent execution.Intent) (string, error)
	CancelOrder(orderID string) error
	// PutEvent tells observers the strategy's exposed variables changed.
	PutEvent(strategy string)
	Logger() zerolog.Logger
}

// Strategy is the capability the host holds and drives. The host calls
// OnInit, OnStart and OnStop once each in that order, and dispatches events
// one at a time.
type Strategy interface {
	Name() string
	Symbol() string
	Params() map[string]any
	Vars() map[string]any

	OnInit() error
	OnStart()
	OnStop()

	OnTick(t signal.Tick)
	OnBar(b signal.Bar)
	OnOrder(o execution.Order)
	OnTrade(t execution.Trade)
}

// template carries the bookkeeping every strategy shares: host access,
// lifecycle flags, net position and the last fill.
type template struct {
	name      string
	class     string
	author    string
	symbol    string
	host      Host
	log       zerolog.Logger
	inited    bool
	trading   bool
	pos       int
	lastTrade *execution.Trade
}

func newTemplate(class, author, name, symbol string, host Host) template {
	return template{
		name:   name,
		class:  class,
		author: author,
		symbol: symbol,
		host:   host,
		log:    host.Logger().With().Str("strategy", name).Logger(),
	}
}

func (t *template) Name() string   { return t.name }
func (t *template) Symbol() string { return t.symbol }

// Pos returns the net position built from the strategy's own fills.
func (t *template) Pos() int { return t.pos }

func (t *template) OnStart() {
	t.trading = true
	t.log.Info().Str("class", t.class).Msg("strategy started")
	t.host.PutEvent(t.name)
}

func (t *template) OnStop() {
	t.trading = false
	t.log.Info().Str("class", t.class).Msg("strategy stopped")
	t.host.PutEvent(t.name)
}

func (t *template) OnBar(signal.Bar) {}

func (t *template) OnOrder(execution.Order) {}

func (t *template) OnTrade(tr execution.Trade) {
	t.pos += int(math.Round(tr.Signed()))
	t.lastTrade = &tr
}

// warmUp replays history through onBar and marks the strategy initialised.
func (t *template) warmUp(days int, onBar func(signal.Bar)) error {
	bars, err := t.host.LoadBar(t.symbol, days)
	if err != nil {
		return err
	}
	for _, b := range bars {
		onBar(b)
	}
	t.inited = true
	t.log.Info().Int("bars", len(bars)).Msg("warm-up replayed")
	t.host.PutEvent(t.name)
	return nil
}

// SendOrder routes an intent through the host while trading.
func (t *template) SendOrder(intent execution.Intent) (string, error) {
	if !t.trading {
		return "", ErrNotTrading
	}
	return t.host.SendOrder(t.name, intent)
}

// CancelOrder asks the host to cancel one of the strategy's orders.
func (t *template) CancelOrder(orderID string) error {
	return t.host.CancelOrder(orderID)
}

// send submits each intent in order, logging failures. Warm-up replay is
// silently ignored.
func (t *template) send(intents ...execution.Intent) {
	for _, in := range intents {
		if _, err := t.SendOrder(in); err != nil && !errors.Is(err, ErrNotTrading) {
			t.log.Warn().Err(err).Str("type", in.Label()).Float64("px", in.Price).Msg("send order failed")
		}
	}
}

func (t *template) params() map[string]any {
	return map[string]any{
		"name":      t.name,
		"className": t.class,
		"author":    t.author,
		"vtSymbol":  t.symbol,
	}
}

func (t *template) vars() map[string]any {
	return map[string]any{
		"inited":  t.inited,
		"trading": t.trading,
		"pos":     t.pos,
	}
}
