package strategy

import (
	"math"
	"strings"
)

// Params expresses tunable knobs required by strategy constructors.
type Params struct {
	FastK           float64
	SlowK           float64
	InitDays        int
	HistoryLen      int
	Volume          float64
	ChaseOffset     float64
	TakeProfitPoint float64
	StopLossPoint   float64
}

func (p Params) withDefaults() Params {
	if p.FastK <= 0 || p.FastK >= 1 {
		p.FastK = 0.9
	}
	if p.SlowK <= 0 || p.SlowK >= 1 {
		p.SlowK = 0.1
	}
	if p.InitDays <= 0 {
		p.InitDays = 10
	}
	// positions are whole lots
	if !ValidVolume(p.Volume) {
		p.Volume = 1
	}
	if p.ChaseOffset <= 0 {
		p.ChaseOffset = 10
	}
	if p.TakeProfitPoint <= 0 {
		p.TakeProfitPoint = 2
	}
	if p.StopLossPoint <= 0 {
		p.StopLossPoint = 1
	}
	return p
}

// ValidVolume reports whether v is a positive whole number of lots.
func ValidVolume(v float64) bool {
	return v >= 1 && v == math.Trunc(v)
}

// Build returns a strategy implementation matching the configured mode.
func Build(mode, name, symbol string, host Host, params Params) Strategy {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", "double_ema", "ema":
		return NewDoubleEma(name, symbol, host, params)
	case "order_chase", "chase", "order_management":
		return NewOrderChase(name, symbol, host, params)
	case "chasing_tick", "tick", "momentum":
		return NewChasingTick(name, symbol, host, params)
	default:
		return NewDoubleEma(name, symbol, host, params)
	}
}
