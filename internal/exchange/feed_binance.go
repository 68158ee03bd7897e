package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"ctabot-go/internal/signal"
)

type binanceEnvelope struct {
	Stream string        `json:"stream"`
	Data   binanceTicker `json:"data"`
}

// binanceTicker is the subset of the 24hr ticker payload a level-1 tick needs.
// encoding/json matches keys case-insensitively, so every key that differs
// from a used one only by case is declared to keep exact matches winning.
type binanceTicker struct {
	EventType string `json:"e"`
	EventTime int64  `json:"E"`
	Symbol    string `json:"s"`
	Last      string `json:"c"`
	CloseTime int64  `json:"C"`
	Bid       string `json:"b"`
	BidQty    string `json:"B"`
	Ask       string `json:"a"`
	AskQty    string `json:"A"`
}

func (f *Feed) binanceStreamURL() (string, error) {
	symbols := f.Symbols()
	if len(symbols) == 0 {
		return "", fmt.Errorf("binance feed requires at least one symbol")
	}
	streams := make([]string, len(symbols))
	for i, sym := range symbols {
		streams[i] = strings.ToLower(sym) + "@ticker"
	}
	return fmt.Sprintf("%s?streams=%s", f.binanceURL, strings.Join(streams, "/")), nil
}

func (f *Feed) runBinance(ctx context.Context, out chan<- signal.Tick) error {
	url, err := f.binanceStreamURL()
	if err != nil {
		return err
	}
	backoff := time.Second
	const maxBackoff = 30 * time.Second

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := f.consumeBinanceStream(ctx, url, out); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			f.log.Warn().Err(err).Dur("backoff", backoff).Msg("binance feed disconnected, retrying")
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
			backoff = time.Duration(math.Min(float64(maxBackoff), float64(backoff)*1.8))
			continue
		}
		return nil
	}
}

func (f *Feed) consumeBinanceStream(ctx context.Context, url string, out chan<- signal.Tick) error {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	f.log.Info().Strs("symbols", f.Symbols()).Msg("connected market data feed")

	conn.SetReadLimit(1 << 20)
	conn.SetReadDeadline(time.Now().Add(30 * time.Second))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(30 * time.Second))
		return nil
	})

	pingCtx, pingCancel := context.WithCancel(ctx)
	defer pingCancel()
	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					f.log.Warn().Err(err).Msg("binance ping failed")
					return
				}
			case <-pingCtx.Done():
				return
			}
		}
	}()
	// unblock ReadMessage on shutdown
	go func() {
		<-pingCtx.Done()
		conn.Close()
	}()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		conn.SetReadDeadline(time.Now().Add(30 * time.Second))

		tick, err := decodeBinanceTicker(message)
		if err != nil {
			f.log.Warn().Err(err).Msg("failed to decode binance message")
			continue
		}
		if err := f.emit(ctx, out, tick); err != nil {
			return err
		}
	}
}

func decodeBinanceTicker(message []byte) (signal.Tick, error) {
	var env binanceEnvelope
	if err := json.Unmarshal(message, &env); err != nil {
		return signal.Tick{}, err
	}
	symbol := env.Data.Symbol
	if symbol == "" {
		symbol = parseBinanceSymbol(env.Stream)
	}
	prices := make([]float64, 3)
	for i, raw := range []string{env.Data.Last, env.Data.Bid, env.Data.Ask} {
		px, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return signal.Tick{}, fmt.Errorf("invalid price %q: %w", raw, err)
		}
		prices[i] = px
	}
	return signal.Tick{
		Symbol:    strings.ToUpper(symbol),
		Exchange:  "BINANCE",
		Ts:        time.UnixMilli(env.Data.EventTime),
		LastPrice: prices[0],
		BidPrice1: prices[1],
		AskPrice1: prices[2],
	}, nil
}

func parseBinanceSymbol(stream string) string {
	parts := strings.Split(stream, "@")
	if len(parts) == 0 || parts[0] == "" {
		return strings.ToUpper(stream)
	}
	return strings.ToUpper(parts[0])
}
