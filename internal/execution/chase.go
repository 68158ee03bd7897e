package execution

import (
	"github.com/rs/zerolog"

	"ctabot-go/internal/signal"
)

// Gateway is the part of the host the chaser submits and cancels through.
type Gateway interface {
	SendOrder(intent Intent) (string, error)
	CancelOrder(orderID string) error
}

// ChaseState is the chaser's position in its submit/cancel cycle.
type ChaseState int

const (
	NoOrder ChaseState = iota
	Pending
	Dead // the tracked order filled; nothing more is submitted
)

func (s ChaseState) String() string {
	switch s {
	case Pending:
		return "pending"
	case Dead:
		return "dead"
	default:
		return "no_order"
	}
}

// Chaser keeps one deliberately unfillable order working: it submits a buy
// below the market, cancels it once the venue reports it unfilled and places
// a fresh one at the then-current price. An order cancelled by the venue is
// replaced immediately with one of the same type. The loop never converges.
type Chaser struct {
	gw     Gateway
	log    zerolog.Logger
	symbol string
	offset float64
	qty    float64

	last      *Order
	orderType Intent
	lastPrice float64

	submits int
	cancels int
}

// NewChaser builds a chaser that prices orders offset below the last price.
func NewChaser(gw Gateway, log zerolog.Logger, symbol string, offset, qty float64) *Chaser {
	if qty <= 0 {
		qty = 1
	}
	return &Chaser{
		gw:        gw,
		log:       log,
		symbol:    symbol,
		offset:    offset,
		qty:       qty,
		orderType: Buy(symbol, 0, qty),
	}
}

// State reports where the chaser is in its cycle.
func (c *Chaser) State() ChaseState {
	switch {
	case c.last == nil:
		return NoOrder
	case c.last.Status == Filled:
		return Dead
	default:
		return Pending
	}
}

// LastOrder returns the referenced order, if any.
func (c *Chaser) LastOrder() (Order, bool) {
	if c.last == nil {
		return Order{}, false
	}
	return *c.last, true
}

// OrderType returns the ticket label of the order being chased.
func (c *Chaser) OrderType() string { return c.orderType.Label() }

// Submits returns how many orders the chaser has placed.
func (c *Chaser) Submits() int { return c.submits }

// Cancels returns how many cancels the chaser has issued.
func (c *Chaser) Cancels() int { return c.cancels }

// OnTick places a new test order when none is referenced.
func (c *Chaser) OnTick(t signal.Tick) {
	c.lastPrice = t.LastPrice
	if c.last != nil {
		return
	}
	c.submit(Buy(c.symbol, t.LastPrice-c.offset, c.qty))
}

// OnOrder advances the cycle for updates on the referenced order.
func (c *Chaser) OnOrder(o Order) {
	if c.last == nil || o.ID != c.last.ID {
		return
	}
	c.last.Status = o.Status

	switch o.Status {
	case Unfilled:
		c.cancels++
		if err := c.gw.CancelOrder(o.ID); err != nil {
			c.log.Warn().Err(err).Str("id", o.ID).Msg("chase cancel failed")
		}
		c.last = nil
	case Cancelled:
		// re-acquire the replacement as the referenced order, as if every
		// order update were stored; its own updates drive the next cycle
		c.last = nil
		next := c.orderType
		next.Price = c.lastPrice - c.offset
		c.submit(next)
	case Filled:
		c.log.Warn().Str("id", o.ID).Msg("chase order filled; chasing stops")
	}
}

func (c *Chaser) submit(intent Intent) {
	id, err := c.gw.SendOrder(intent)
	if err != nil {
		c.log.Warn().Err(err).Str("type", intent.Label()).Msg("chase submit failed")
		return
	}
	c.submits++
	c.orderType = intent
	c.last = &Order{
		ID:        id,
		Symbol:    intent.Symbol,
		Direction: intent.Direction,
		Offset:    intent.Offset,
		Price:     intent.Price,
		Qty:       intent.Qty,
		Status:    Submitted,
	}
}
