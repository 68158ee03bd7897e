// Package execution handles order lifecycle and interaction with venues.
package execution

import (
	"errors"
	"time"

	"github.com/rs/zerolog"

	"ctabot-go/internal/metrics"
)

// Direction is the side of the book an order trades against.
type Direction string

const (
	// DirLong buys.
	DirLong Direction = "LONG"
	// DirShort sells.
	DirShort Direction = "SHORT"
)

// Offset tells whether an order opens a new position or closes an existing one.
type Offset string

const (
	// Open adds to the position.
	Open Offset = "OPEN"
	// Close reduces the position.
	Close Offset = "CLOSE"
)

// Label classifies a (direction, offset) pair the way order tickets display it.
func Label(d Direction, o Offset) string {
	switch {
	case d == DirLong && o == Open:
		return "Buy-Open"
	case d == DirLong && o == Close:
		return "Buy-Close"
	case d == DirShort && o == Open:
		return "Sell-Open"
	case d == DirShort && o == Close:
		return "Sell-Close"
	default:
		return "Unknown"
	}
}

// Intent is an order a strategy wants placed. It is handed to the venue and not retained.
type Intent struct {
	Symbol    string
	Direction Direction
	Offset    Offset
	Price     float64
	Qty       float64
}

// Label returns the ticket label for the intent.
func (i Intent) Label() string { return Label(i.Direction, i.Offset) }

// Buy opens a long position.
func Buy(symbol string, price, qty float64) Intent {
	return Intent{Symbol: symbol, Direction: DirLong, Offset: Open, Price: price, Qty: qty}
}

// Sell closes a long position.
func Sell(symbol string, price, qty float64) Intent {
	return Intent{Symbol: symbol, Direction: DirShort, Offset: Close, Price: price, Qty: qty}
}

// Short opens a short position.
func Short(symbol string, price, qty float64) Intent {
	return Intent{Symbol: symbol, Direction: DirShort, Offset: Open, Price: price, Qty: qty}
}

// Cover closes a short position.
func Cover(symbol string, price, qty float64) Intent {
	return Intent{Symbol: symbol, Direction: DirLong, Offset: Close, Price: price, Qty: qty}
}

// Status is the venue-reported state of an order.
type Status string

const (
	Submitted Status = "SUBMITTED"
	Unfilled  Status = "UNFILLED"
	Filled    Status = "FILLED"
	Cancelled Status = "CANCELLED"
)

// Order is a venue-owned order as reported back to strategies.
type Order struct {
	ID        string    `json:"id"`
	Symbol    string    `json:"symbol"`
	Direction Direction `json:"direction"`
	Offset    Offset    `json:"offset"`
	Price     float64   `json:"price"`
	Qty       float64   `json:"qty"`
	Status    Status    `json:"status"`
	Ts        time.Time `json:"ts"`
}

// Label returns the ticket label for the order.
func (o Order) Label() string { return Label(o.Direction, o.Offset) }

// Trade is a fill reported by the venue.
type Trade struct {
	OrderID   string    `json:"order_id"`
	Symbol    string    `json:"symbol"`
	Direction Direction `json:"direction"`
	Offset    Offset    `json:"offset"`
	Price     float64   `json:"price"`
	Qty       float64   `json:"qty"`
	Ts        time.Time `json:"ts"`
}

// Signed returns the trade quantity with the sign of its effect on net position.
func (t Trade) Signed() float64 {
	if t.Direction == DirShort {
		return -t.Qty
	}
	return t.Qty
}

// Venue accepts and cancels orders.
type Venue interface {
	Send(intent Intent) (string, error)
	Cancel(orderID string) error
}

// ErrNoVenue is returned when the executor has nowhere to route orders.
var ErrNoVenue = errors.New("no venue configured")

// Executor routes intents to a venue, logging and counting each request.
type Executor struct {
	log   zerolog.Logger
	venue Venue
}

// NewExecutor wraps a venue with a zerolog logger.
func NewExecutor(log zerolog.Logger, venue Venue) *Executor {
	return &Executor{log: log, venue: venue}
}

// Submit forwards the intent to the venue and returns the venue order id.
func (executor *Executor) Submit(intent Intent) (string, error) {
	if executor.venue == nil {
		return "", ErrNoVenue
	}
	id, err := executor.venue.Send(intent)
	if err != nil {
		executor.log.Warn().Err(err).Str("sym", intent.Symbol).Str("type", intent.Label()).Msg("submit order failed")
		return "", err
	}
	metrics.OrdersTotal.WithLabelValues(intent.Symbol, intent.Label()).Inc()
	executor.log.Info().Str("id", id).Str("sym", intent.Symbol).Str("type", intent.Label()).Float64("qty", intent.Qty).Float64("px", intent.Price).Msg("submit order")
	return id, nil
}

// Cancel asks the venue to cancel an order.
func (executor *Executor) Cancel(symbol, orderID string) error {
	if executor.venue == nil {
		return ErrNoVenue
	}
	if err := executor.venue.Cancel(orderID); err != nil {
		executor.log.Warn().Err(err).Str("id", orderID).Msg("cancel order failed")
		return err
	}
	metrics.CancelsTotal.WithLabelValues(symbol).Inc()
	executor.log.Info().Str("id", orderID).Str("sym", symbol).Msg("cancel order")
	return nil
}
