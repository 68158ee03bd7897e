// Package engine hosts strategies against a paper venue. It owns the dispatch
// loop: every tick, order update and fill reaches strategies one at a time on
// the goroutine that called Run.
package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"ctabot-go/internal/execution"
	"ctabot-go/internal/indicator"
	"ctabot-go/internal/metrics"
	"ctabot-go/internal/paper"
	"ctabot-go/internal/risk"
	"ctabot-go/internal/signal"
	"ctabot-go/internal/strategy"
)

var (
	// ErrUnknownStrategy is returned for requests naming a strategy the engine does not host.
	ErrUnknownStrategy = errors.New("unknown strategy")
	// ErrLifecycle is returned when Init, Start, Run or Stop are called out of order.
	ErrLifecycle = errors.New("engine lifecycle violation")
)

// BarStore is the history the engine warms strategies from and archives bars into.
type BarStore interface {
	Save(ctx context.Context, b signal.Bar) error
	LoadDays(ctx context.Context, symbol string, days int) ([]signal.Bar, error)
}

// Observer is told whenever a strategy publishes a change to its variables.
type Observer func(strategy string, vars map[string]any)

type phase int

const (
	phaseNew phase = iota
	phaseInited
	phaseStarted
	phaseStopped
)

// Engine implements strategy.Host on top of a paper broker. It is not safe
// for concurrent use.
type Engine struct {
	ctx       context.Context
	log       zerolog.Logger
	broker    *paper.Broker
	exec      *execution.Executor
	limits    *risk.Limits
	accounts  map[string]*paper.Account
	store     BarStore
	recorders []paper.FillRecorder
	observers []Observer

	names      []string
	strategies map[string]strategy.Strategy
	owners     map[string]string
	bars       map[string]*indicator.BarAggregator
	marks      map[string]float64
	phase      phase
}

// Option configures Engine construction parameters.
type Option func(*Engine)

// WithStore archives completed bars and serves LoadBar from store.
func WithStore(store BarStore) Option {
	return func(e *Engine) { e.store = store }
}

// WithLimits gates every order through limits.
func WithLimits(limits *risk.Limits) Option {
	return func(e *Engine) { e.limits = limits }
}

// WithRecorder adds a sink for fills.
func WithRecorder(r paper.FillRecorder) Option {
	return func(e *Engine) { e.recorders = append(e.recorders, r) }
}

// WithObserver subscribes to PutEvent notifications.
func WithObserver(o Observer) Option {
	return func(e *Engine) { e.observers = append(e.observers, o) }
}

// New builds an engine routing orders to broker.
func New(log zerolog.Logger, broker *paper.Broker, opts ...Option) *Engine {
	e := &Engine{
		ctx:        context.Background(),
		log:        log.With().Str("component", "engine").Logger(),
		broker:     broker,
		accounts:   make(map[string]*paper.Account),
		strategies: make(map[string]strategy.Strategy),
		owners:     make(map[string]string),
		bars:       make(map[string]*indicator.BarAggregator),
		marks:      make(map[string]float64),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.limits == nil {
		e.limits = risk.NewLimits(0, 0, 0)
	}
	e.exec = execution.NewExecutor(log.With().Str("component", "executor").Logger(), broker)
	return e
}

// Add registers a strategy. Names must be unique.
func (e *Engine) Add(s strategy.Strategy) error {
	if e.phase != phaseNew {
		return fmt.Errorf("%w: add after init", ErrLifecycle)
	}
	if _, dup := e.strategies[s.Name()]; dup {
		return fmt.Errorf("duplicate strategy name %q", s.Name())
	}
	e.strategies[s.Name()] = s
	e.accounts[s.Name()] = paper.NewAccount()
	e.names = append(e.names, s.Name())
	return nil
}

// Account returns the paper account a strategy's fills are booked into, or
// nil for an unknown strategy. Each strategy has its own so opposing
// positions on a shared symbol do not net against each other.
func (e *Engine) Account(name string) *paper.Account { return e.accounts[name] }

// Init calls OnInit on every strategy in registration order.
func (e *Engine) Init(ctx context.Context) error {
	if e.phase != phaseNew {
		return fmt.Errorf("%w: init twice", ErrLifecycle)
	}
	e.ctx = ctx
	for _, name := range e.names {
		if err := e.strategies[name].OnInit(); err != nil {
			return fmt.Errorf("init %s: %w", name, err)
		}
	}
	e.phase = phaseInited
	return nil
}

// Start calls OnStart on every strategy.
func (e *Engine) Start() error {
	if e.phase != phaseInited {
		return fmt.Errorf("%w: start before init", ErrLifecycle)
	}
	for _, name := range e.names {
		e.strategies[name].OnStart()
		e.dispatch()
	}
	e.phase = phaseStarted
	return nil
}

// Stop calls OnStop on every strategy and logs the account.
func (e *Engine) Stop() error {
	if e.phase != phaseStarted {
		return fmt.Errorf("%w: stop before start", ErrLifecycle)
	}
	var realized, unrealized float64
	for _, name := range e.names {
		e.strategies[name].OnStop()
		snap := e.accounts[name].Snapshot(e.marks)
		realized += snap.RealizedPnL
		unrealized += snap.UnrealizedPnL
		e.log.Info().Str("strategy", name).Float64("realized", snap.RealizedPnL).Float64("unrealized", snap.UnrealizedPnL).Int("positions", len(snap.Positions)).Msg("strategy account")
	}
	e.phase = phaseStopped
	e.log.Info().Float64("realized", realized).Float64("unrealized", unrealized).Msg("engine stopped")
	return nil
}

// Run dispatches ticks until ctx is done or the channel closes.
func (e *Engine) Run(ctx context.Context, ticks <-chan signal.Tick) error {
	if e.phase != phaseStarted {
		return fmt.Errorf("%w: run before start", ErrLifecycle)
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case tk, ok := <-ticks:
			if !ok {
				return nil
			}
			e.OnTick(tk)
		}
	}
}

// OnTick feeds one tick through the venue, the bar archive and every
// strategy trading its symbol.
func (e *Engine) OnTick(t signal.Tick) {
	e.marks[t.Symbol] = t.LastPrice
	e.archive(t)

	e.broker.OnTick(t)
	e.dispatch()

	for _, name := range e.names {
		s := e.strategies[name]
		if s.Symbol() != t.Symbol {
			continue
		}
		s.OnTick(t)
		e.dispatch()
	}
}

func (e *Engine) archive(t signal.Tick) {
	agg := e.bars[t.Symbol]
	if agg == nil {
		agg = indicator.NewBarAggregator()
		e.bars[t.Symbol] = agg
	}
	bar, ok := agg.OnTick(t)
	if !ok {
		return
	}
	metrics.BarsTotal.WithLabelValues(bar.Symbol).Inc()
	if e.store == nil {
		return
	}
	if err := e.store.Save(e.ctx, bar); err != nil {
		e.log.Warn().Err(err).Str("sym", bar.Symbol).Msg("archive bar failed")
	}
}

// dispatch delivers queued venue events until none remain. Handlers may send
// or cancel orders; the resulting events join the queue instead of re-entering.
func (e *Engine) dispatch() {
	for {
		events := e.broker.Drain()
		if len(events) == 0 {
			return
		}
		for _, ev := range events {
			switch {
			case ev.Order != nil:
				e.deliverOrder(*ev.Order)
			case ev.Trade != nil:
				e.deliverTrade(*ev.Trade)
			}
		}
	}
}

func (e *Engine) deliverOrder(o execution.Order) {
	name, ok := e.owners[o.ID]
	if !ok {
		return
	}
	if o.Status == execution.Cancelled {
		delete(e.owners, o.ID)
	}
	e.strategies[name].OnOrder(o)
}

func (e *Engine) deliverTrade(tr execution.Trade) {
	metrics.TradesTotal.WithLabelValues(tr.Symbol).Inc()
	for _, r := range e.recorders {
		r.Record(tr)
	}
	name, ok := e.owners[tr.OrderID]
	if !ok {
		return
	}
	delete(e.owners, tr.OrderID)
	if err := e.accounts[name].Apply(tr); err != nil {
		e.log.Warn().Err(err).Str("strategy", name).Str("id", tr.OrderID).Msg("account rejected fill")
	}
	e.log.Info().Str("strategy", name).Str("id", tr.OrderID).Str("type", execution.Label(tr.Direction, tr.Offset)).Float64("px", tr.Price).Float64("qty", tr.Qty).Msg("fill")
	e.strategies[name].OnTrade(tr)
}

// LoadBar serves warm-up history; without a store there is none.
func (e *Engine) LoadBar(symbol string, days int) ([]signal.Bar, error) {
	if e.store == nil {
		return nil, nil
	}
	return e.store.LoadDays(e.ctx, symbol, days)
}

// SendOrder validates the intent and forwards it to the venue on behalf of a strategy.
func (e *Engine) SendOrder(name string, intent execution.Intent) (string, error) {
	if _, ok := e.strategies[name]; !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownStrategy, name)
	}
	if err := e.limits.Check(intent); err != nil {
		e.log.Warn().Err(err).Str("strategy", name).Str("type", intent.Label()).Msg("order refused")
		return "", err
	}
	id, err := e.exec.Submit(intent)
	if err != nil {
		return "", fmt.Errorf("submit %s: %w", intent.Label(), err)
	}
	e.owners[id] = name
	return id, nil
}

// CancelOrder withdraws a working order.
func (e *Engine) CancelOrder(orderID string) error {
	name, ok := e.owners[orderID]
	if !ok {
		return fmt.Errorf("%w: %s", paper.ErrUnknownOrder, orderID)
	}
	return e.exec.Cancel(e.strategies[name].Symbol(), orderID)
}

// PutEvent publishes the strategy's variables to observers and the position gauge.
func (e *Engine) PutEvent(name string) {
	s, ok := e.strategies[name]
	if !ok {
		return
	}
	vars := s.Vars()
	if pos, ok := vars["pos"].(int); ok {
		metrics.Position.WithLabelValues(name).Set(float64(pos))
	}
	e.log.Debug().Str("strategy", name).Fields(vars).Msg("strategy state")
	for _, o := range e.observers {
		o(name, vars)
	}
}

// Logger is the sink strategies log through.
func (e *Engine) Logger() zerolog.Logger { return e.log }
