// Package paper simulates a venue: order matching against live quotes, a
// signed-position account, and fill recording.
package paper

import (
	"errors"
	"sync"

	"github.com/shopspring/decimal"

	"ctabot-go/internal/execution"
)

type positionState struct {
	Net     decimal.Decimal
	AvgCost decimal.Decimal
}

// Account tracks signed net positions and realized PnL per symbol.
type Account struct {
	mu          sync.Mutex
	realizedPnL decimal.Decimal
	positions   map[string]positionState
}

// PositionSnapshot exposes a read-only view of a single symbol position.
type PositionSnapshot struct {
	Net        float64
	AvgCost    float64
	Unrealized float64
}

// Snapshot represents a view of the account, optionally marked to market.
type Snapshot struct {
	RealizedPnL   float64
	UnrealizedPnL float64
	Positions     map[string]PositionSnapshot
}

// NewAccount constructs an empty account.
func NewAccount() *Account {
	return &Account{positions: make(map[string]positionState)}
}

// Apply books a fill. Opening fills extend the position at a blended cost;
// closing fills realize PnL against the average cost.
func (a *Account) Apply(tr execution.Trade) error {
	if tr.Qty <= 0 {
		return errors.New("quantity must be positive")
	}
	if tr.Price <= 0 {
		return errors.New("price must be positive")
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	state := a.positions[tr.Symbol]
	qty := decimal.NewFromFloat(tr.Qty)
	price := decimal.NewFromFloat(tr.Price)
	signed := qty
	if tr.Direction == execution.DirShort {
		signed = qty.Neg()
	}

	switch tr.Offset {
	case execution.Open:
		if !state.Net.IsZero() && state.Net.Sign() != signed.Sign() {
			return errors.New("open against an existing position")
		}
		newNet := state.Net.Add(signed)
		state.AvgCost = state.AvgCost.Mul(state.Net.Abs()).Add(price.Mul(qty)).Div(newNet.Abs())
		state.Net = newNet

	case execution.Close:
		if state.Net.IsZero() || state.Net.Sign() == signed.Sign() || state.Net.Abs().LessThan(qty) {
			return errors.New("insufficient position to close")
		}
		// a long closes by selling: gain is price-cost; a short closes by buying: cost-price
		gain := price.Sub(state.AvgCost).Mul(qty)
		if state.Net.Sign() < 0 {
			gain = gain.Neg()
		}
		a.realizedPnL = a.realizedPnL.Add(gain)
		state.Net = state.Net.Add(signed)

	default:
		return errors.New("unknown offset")
	}

	if state.Net.IsZero() {
		delete(a.positions, tr.Symbol)
	} else {
		a.positions[tr.Symbol] = state
	}
	return nil
}

// Snapshot returns a copy of positions, marked using the supplied prices when present.
func (a *Account) Snapshot(prices map[string]float64) Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := Snapshot{
		RealizedPnL: a.realizedPnL.InexactFloat64(),
		Positions:   make(map[string]PositionSnapshot, len(a.positions)),
	}
	for sym, pos := range a.positions {
		snap := PositionSnapshot{Net: pos.Net.InexactFloat64(), AvgCost: pos.AvgCost.InexactFloat64()}
		if mark, ok := prices[sym]; ok && mark > 0 {
			snap.Unrealized = decimal.NewFromFloat(mark).Sub(pos.AvgCost).Mul(pos.Net).InexactFloat64()
		}
		out.UnrealizedPnL += snap.Unrealized
		out.Positions[sym] = snap
	}
	return out
}

// Position returns the signed net position for symbol.
func (a *Account) Position(symbol string) float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.positions[symbol].Net.InexactFloat64()
}

// RealizedPnL returns total closed-trade profit and loss.
func (a *Account) RealizedPnL() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.realizedPnL.InexactFloat64()
}
