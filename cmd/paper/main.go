package main

import (
	"context"
	"errors"
	"os"
	ossignal "os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"ctabot-go/internal/config"
	"ctabot-go/internal/engine"
	"ctabot-go/internal/exchange"
	"ctabot-go/internal/history"
	"ctabot-go/internal/metrics"
	"ctabot-go/internal/paper"
	"ctabot-go/internal/risk"
	sig "ctabot-go/internal/signal"
	"ctabot-go/internal/strategy"
	"ctabot-go/internal/util"
)

func main() {
	var explicit string
	if len(os.Args) > 1 {
		explicit = os.Args[1]
	}
	cfg, err := config.Load(config.Path(explicit))
	if err != nil {
		boot := util.NewLogger("info")
		boot.Fatal().Err(err).Msg("load config")
	}
	log := util.NewLogger(cfg.App.LogLevel)

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("paper bot failed")
	}
}

func run(cfg *config.Config, log zerolog.Logger) error {
	if cfg.App.MetricsAddr != "" {
		srv := metrics.Serve(cfg.App.MetricsAddr)
		defer srv.Close()
		log.Info().Str("addr", cfg.App.MetricsAddr).Msg("metrics up")
	}

	ctx, cancel := ossignal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	ledger := paper.NewLedger(cfg.Paper.LedgerSize)
	opts := []engine.Option{
		engine.WithLimits(risk.NewLimits(cfg.Risk.MaxNotionalPerTrade, cfg.Risk.MaxOrdersPerSec, cfg.Risk.OrderBurst)),
		engine.WithRecorder(ledger),
	}
	if cfg.History.Path != "" {
		store, err := history.Open(cfg.History.Path)
		if err != nil {
			return err
		}
		defer store.Close()
		opts = append(opts, engine.WithStore(store))
	}
	if cfg.Paper.FillsPath != "" {
		rec, err := paper.NewJSONLRecorder(cfg.Paper.FillsPath)
		if err != nil {
			return err
		}
		defer rec.Close()
		opts = append(opts, engine.WithRecorder(rec))
	}

	eng := engine.New(log, paper.NewBroker(), opts...)
	for _, sc := range cfg.Strategies {
		s := strategy.Build(sc.Mode, sc.Name, sc.Symbol, eng, params(sc.Params))
		if err := eng.Add(s); err != nil {
			return err
		}
		log.Info().Str("strategy", sc.Name).Str("mode", sc.Mode).Str("sym", sc.Symbol).Msg("strategy registered")
	}
	if err := eng.Init(ctx); err != nil {
		return err
	}
	if err := eng.Start(); err != nil {
		return err
	}

	feed := exchange.NewFeed(cfg.Exchange.Provider, cfg.Symbols(), log, exchange.WithTicksFile(cfg.Exchange.TicksFile))
	ticks := make(chan sig.Tick, 1024)
	go func() {
		defer close(ticks)
		if err := feed.Run(ctx, ticks); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("feed stopped")
		}
	}()

	log.Info().Int("strategies", len(cfg.Strategies)).Msg("paper engine started")
	err := eng.Run(ctx, ticks)
	if stopErr := eng.Stop(); stopErr != nil {
		return stopErr
	}
	logFills(log, ledger, cfg.Symbols())
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Info().Msg("shutting down")
	return nil
}

func params(p config.StrategyParams) strategy.Params {
	return strategy.Params{
		FastK:           p.FastK,
		SlowK:           p.SlowK,
		InitDays:        p.InitDays,
		HistoryLen:      p.HistoryLen,
		Volume:          p.Volume,
		ChaseOffset:     p.ChaseOffset,
		TakeProfitPoint: p.TakeProfitPoint,
		StopLossPoint:   p.StopLossPoint,
	}
}

func logFills(log zerolog.Logger, ledger *paper.Ledger, symbols []string) {
	for _, sym := range symbols {
		fills := ledger.Symbol(sym)
		if len(fills) == 0 {
			continue
		}
		last := fills[len(fills)-1]
		log.Info().Str("sym", sym).Int("fills", len(fills)).Float64("last_px", last.Price).Time("last_ts", last.Ts).Msg("session fills")
	}
	log.Info().Int("fills", len(ledger.Snapshot())).Msg("session fills total")
}
