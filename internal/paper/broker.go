package paper

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"ctabot-go/internal/execution"
	"ctabot-go/internal/signal"
)

// ErrUnknownOrder is returned when cancelling an order the broker is not working.
var ErrUnknownOrder = errors.New("unknown or inactive order")

// Event is an order update or a fill, in the order the broker produced it.
type Event struct {
	Order *execution.Order
	Trade *execution.Trade
}

// Broker is a paper venue. Limit orders rest until the quote crosses them:
// longs fill once the ask is at or below the limit, shorts once the bid is at
// or above it. Fills happen at the limit price. Updates are queued and handed
// out by Drain so the caller controls when they are dispatched.
type Broker struct {
	mu     sync.Mutex
	quotes map[string]signal.Tick
	active map[string]*execution.Order
	order  []string
	events []Event
	now    func() time.Time
}

// NewBroker builds an empty paper venue.
func NewBroker() *Broker {
	return &Broker{
		quotes: make(map[string]signal.Tick),
		active: make(map[string]*execution.Order),
		now:    time.Now,
	}
}

// Send accepts an intent, reports it Submitted, then either fills it against
// the latest quote or reports it Unfilled.
func (b *Broker) Send(intent execution.Intent) (string, error) {
	if intent.Qty <= 0 {
		return "", errors.New("quantity must be positive")
	}
	if intent.Direction != execution.DirLong && intent.Direction != execution.DirShort {
		return "", errors.New("unknown direction")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	ord := &execution.Order{
		ID:        uuid.NewString(),
		Symbol:    intent.Symbol,
		Direction: intent.Direction,
		Offset:    intent.Offset,
		Price:     intent.Price,
		Qty:       intent.Qty,
		Status:    execution.Submitted,
		Ts:        b.now(),
	}
	b.emitOrder(ord)

	if q, ok := b.quotes[ord.Symbol]; ok && crosses(ord, q) {
		b.fill(ord, q.Ts)
		return ord.ID, nil
	}
	ord.Status = execution.Unfilled
	b.active[ord.ID] = ord
	b.order = append(b.order, ord.ID)
	b.emitOrder(ord)
	return ord.ID, nil
}

// Cancel withdraws a resting order and reports it Cancelled.
func (b *Broker) Cancel(orderID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	ord, ok := b.active[orderID]
	if !ok {
		return ErrUnknownOrder
	}
	b.remove(orderID)
	ord.Status = execution.Cancelled
	ord.Ts = b.now()
	b.emitOrder(ord)
	return nil
}

// OnTick records the quote and fills every resting order it crosses, oldest first.
func (b *Broker) OnTick(t signal.Tick) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.quotes[t.Symbol] = t
	for _, id := range append([]string(nil), b.order...) {
		ord := b.active[id]
		if ord.Symbol == t.Symbol && crosses(ord, t) {
			b.remove(id)
			b.fill(ord, t.Ts)
		}
	}
}

// Active returns the number of resting orders.
func (b *Broker) Active() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.active)
}

// Drain hands out queued events and clears the queue.
func (b *Broker) Drain() []Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.events
	b.events = nil
	return out
}

func crosses(ord *execution.Order, q signal.Tick) bool {
	if ord.Direction == execution.DirLong {
		return q.AskPrice1 > 0 && q.AskPrice1 <= ord.Price
	}
	return q.BidPrice1 > 0 && q.BidPrice1 >= ord.Price
}

func (b *Broker) fill(ord *execution.Order, ts time.Time) {
	if ts.IsZero() {
		ts = b.now()
	}
	ord.Status = execution.Filled
	ord.Ts = ts
	b.emitOrder(ord)
	b.events = append(b.events, Event{Trade: &execution.Trade{
		OrderID:   ord.ID,
		Symbol:    ord.Symbol,
		Direction: ord.Direction,
		Offset:    ord.Offset,
		Price:     ord.Price,
		Qty:       ord.Qty,
		Ts:        ts,
	}})
}

func (b *Broker) emitOrder(ord *execution.Order) {
	snapshot := *ord
	b.events = append(b.events, Event{Order: &snapshot})
}

func (b *Broker) remove(id string) {
	delete(b.active, id)
	for i, other := range b.order {
		if other == id {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
}
