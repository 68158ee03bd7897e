package risk

import (
	"errors"
	"fmt"

	"golang.org/x/time/rate"

	"ctabot-go/internal/execution"
)

// ErrRejected wraps every reason the host refuses an order.
var ErrRejected = errors.New("order rejected by risk limits")

// Limits caps the size and pace of orders the host forwards to the venue.
type Limits struct {
	MaxNotionalPerTrade float64
	limiter             *rate.Limiter
}

// NewLimits builds limits. A non-positive maxNotional disables the size check
// and a non-positive ordersPerSec disables throttling.
func NewLimits(maxNotional, ordersPerSec float64, burst int) *Limits {
	l := &Limits{MaxNotionalPerTrade: maxNotional}
	if ordersPerSec > 0 {
		if burst <= 0 {
			burst = 1
		}
		l.limiter = rate.NewLimiter(rate.Limit(ordersPerSec), burst)
	}
	return l
}

func (l Limits) Allow(notional float64) bool {
	return l.MaxNotionalPerTrade <= 0 || notional <= l.MaxNotionalPerTrade
}

// Check validates an intent against the size cap and consumes a rate token.
func (l *Limits) Check(intent execution.Intent) error {
	if notional := intent.Price * intent.Qty; !l.Allow(notional) {
		return fmt.Errorf("%w: notional %.2f above %.2f", ErrRejected, notional, l.MaxNotionalPerTrade)
	}
	if l.limiter != nil && !l.limiter.Allow() {
		return fmt.Errorf("%w: order rate exceeded", ErrRejected)
	}
	return nil
}
