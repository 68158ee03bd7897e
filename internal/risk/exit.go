package risk

import (
	"ctabot-go/internal/execution"
	"ctabot-go/internal/position"
	"ctabot-go/internal/signal"
)

// Rule names which exit fired.
type Rule string

const (
	TakeProfit Rule = "take_profit"
	StopLoss   Rule = "stop_loss"
)

// Exit closes an open position once price has moved a fixed number of points
// from the last fill, in either direction.
type Exit struct {
	symbol          string
	qty             float64
	takeProfitPoint float64
	stopLossPoint   float64
}

// NewExit builds fixed-point take-profit and stop-loss thresholds.
func NewExit(symbol string, qty, takeProfitPoint, stopLossPoint float64) *Exit {
	if qty <= 0 {
		qty = 1
	}
	return &Exit{symbol: symbol, qty: qty, takeProfitPoint: takeProfitPoint, stopLossPoint: stopLossPoint}
}

// Evaluate returns the closing intent when a threshold is crossed. Longs close
// at the best bid, shorts at the best ask; the matching side flag is cleared.
func (e *Exit) Evaluate(t signal.Tick, lastTrade *execution.Trade, net int, sides *position.Sides) (execution.Intent, Rule, bool) {
	if lastTrade == nil || sides == nil {
		return execution.Intent{}, "", false
	}
	switch {
	case sides.LongOpen && net > 0:
		rule := e.classify(t.LastPrice - lastTrade.Price)
		if rule == "" {
			return execution.Intent{}, "", false
		}
		sides.LongOpen = false
		return execution.Sell(e.symbol, t.BidPrice1, e.qty), rule, true
	case sides.ShortOpen && net < 0:
		rule := e.classify(lastTrade.Price - t.LastPrice)
		if rule == "" {
			return execution.Intent{}, "", false
		}
		sides.ShortOpen = false
		return execution.Cover(e.symbol, t.AskPrice1, e.qty), rule, true
	}
	return execution.Intent{}, "", false
}

// classify maps a signed gain in points to the rule it breaches, if any.
func (e *Exit) classify(gain float64) Rule {
	switch {
	case gain > e.takeProfitPoint:
		return TakeProfit
	case -gain > e.stopLossPoint:
		return StopLoss
	default:
		return ""
	}
}
