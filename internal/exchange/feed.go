// Package exchange hosts connectors for venues and tick sources.
package exchange

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"ctabot-go/internal/metrics"
	"ctabot-go/internal/signal"
)

const (
	// ProviderStub emits deterministic synthetic ticks (useful for tests/offline work).
	ProviderStub = "stub"
	// ProviderBinance streams level-1 tickers from Binance public websockets.
	ProviderBinance = "binance"
	// ProviderFile replays ticks recorded as JSON lines.
	ProviderFile = "file"
)

// Feed represents a pluggable market data stream implementation.
type Feed struct {
	provider   string
	symbols    []string
	log        zerolog.Logger
	interval   time.Duration
	binanceURL string
	ticksFile  string
	mu         sync.RWMutex
}

// Option configures Feed construction parameters.
type Option func(*Feed)

const (
	defaultInterval   = 500 * time.Millisecond
	defaultBinanceURL = "wss://stream.binance.com:9443/stream"
	stubSpread        = 0.2
)

// WithInterval overrides the stub tick cadence.
func WithInterval(d time.Duration) Option {
	return func(f *Feed) {
		if d > 0 {
			f.interval = d
		}
	}
}

// WithBinanceURL points the websocket feed at another combined-stream endpoint.
func WithBinanceURL(url string) Option {
	return func(f *Feed) {
		if url != "" {
			f.binanceURL = strings.TrimSuffix(url, "/")
		}
	}
}

// WithTicksFile names the JSONL file the file provider replays.
func WithTicksFile(path string) Option {
	return func(f *Feed) { f.ticksFile = path }
}

// NewFeed constructs a feed backed by the requested provider.
func NewFeed(provider string, symbols []string, log zerolog.Logger, opts ...Option) *Feed {
	if provider == "" {
		provider = ProviderStub
	}
	f := &Feed{
		provider:   strings.ToLower(provider),
		log:        log.With().Str("component", "feed").Str("provider", strings.ToLower(provider)).Logger(),
		interval:   defaultInterval,
		binanceURL: defaultBinanceURL,
	}
	f.SetSymbols(symbols)
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// SetSymbols replaces the tracked symbol list (deduplicated, sorted for determinism).
func (f *Feed) SetSymbols(symbols []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	unique := make(map[string]struct{}, len(symbols))
	for _, sym := range symbols {
		sym = strings.TrimSpace(sym)
		if sym == "" {
			continue
		}
		unique[sym] = struct{}{}
	}
	f.symbols = f.symbols[:0]
	for sym := range unique {
		f.symbols = append(f.symbols, sym)
	}
	sort.Strings(f.symbols)
}

// Symbols returns a copy of the tracked symbols.
func (f *Feed) Symbols() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]string, len(f.symbols))
	copy(out, f.symbols)
	return out
}

// Run pushes ticks onto the provided channel until the context is canceled.
// The file provider returns nil once the recording is exhausted.
func (f *Feed) Run(ctx context.Context, out chan<- signal.Tick) error {
	switch f.provider {
	case ProviderBinance:
		return f.runBinance(ctx, out)
	case ProviderFile:
		return f.runFile(ctx, out)
	default:
		return f.runStub(ctx, out)
	}
}

// emit delivers one tick, counting it.
func (f *Feed) emit(ctx context.Context, out chan<- signal.Tick, tick signal.Tick) error {
	select {
	case out <- tick:
		metrics.TicksTotal.WithLabelValues(tick.Symbol).Inc()
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// stubPrice is a slow sine around 100 so EMA crosses and momentum runs both occur.
func stubPrice(step int) float64 {
	return math.Round((100+5*math.Sin(float64(step)/20))*10) / 10
}

func (f *Feed) runStub(ctx context.Context, out chan<- signal.Tick) error {
	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	step := 0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ts := <-ticker.C:
			px := stubPrice(step)
			step++
			for _, s := range f.Symbols() {
				tick := signal.Tick{
					Symbol:    s,
					Exchange:  "STUB",
					Ts:        ts,
					LastPrice: px,
					BidPrice1: px - stubSpread/2,
					AskPrice1: px + stubSpread/2,
				}
				if err := f.emit(ctx, out, tick); err != nil {
					return err
				}
			}
		}
	}
}
