// Package signal standardizes payloads shared between data ingestion and strategy layers.
package signal

import "time"

// Tick models the level-1 market data snapshot consumed by strategies.
type Tick struct {
	Symbol    string    `json:"symbol"`
	Exchange  string    `json:"exchange"`
	Ts        time.Time `json:"ts"`
	LastPrice float64   `json:"last_price"`
	BidPrice1 float64   `json:"bid_price_1"`
	AskPrice1 float64   `json:"ask_price_1"`
}

// Bar is a fixed-interval OHLC candle. Ts is the time of the first tick folded into it.
type Bar struct {
	Symbol   string    `json:"symbol"`
	Exchange string    `json:"exchange"`
	Open     float64   `json:"open"`
	High     float64   `json:"high"`
	Low      float64   `json:"low"`
	Close    float64   `json:"close"`
	Ts       time.Time `json:"ts"`
}

// Kind enumerates the directional conditions detected by indicators.
type Kind int

const (
	// None means no actionable condition.
	None Kind = iota
	// CrossOver is the fast EMA crossing above the slow EMA.
	CrossOver
	// CrossBelow is the fast EMA crossing below the slow EMA.
	CrossBelow
	// BuyMomentum is a strictly rising best bid over the tick window.
	BuyMomentum
	// ShortMomentum is a strictly falling best ask over the tick window.
	ShortMomentum
)

// Long reports whether the kind asks for a long position.
func (k Kind) Long() bool { return k == CrossOver || k == BuyMomentum }

// Short reports whether the kind asks for a short position.
func (k Kind) Short() bool { return k == CrossBelow || k == ShortMomentum }

func (k Kind) String() string {
	switch k {
	case CrossOver:
		return "cross_over"
	case CrossBelow:
		return "cross_below"
	case BuyMomentum:
		return "buy_momentum"
	case ShortMomentum:
		return "short_momentum"
	default:
		return "none"
	}
}
