package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	path := filepath.Join("testdata", "config.yaml")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.App.Name != "ctabot-test" {
		t.Fatalf("unexpected App.Name: %s", cfg.App.Name)
	}
	if cfg.Exchange.Provider != "stub" {
		t.Fatalf("unexpected provider: %s", cfg.Exchange.Provider)
	}
	if cfg.Risk.MaxOrdersPerSec != 5 || cfg.Risk.OrderBurst != 10 {
		t.Fatalf("unexpected rate limits: %+v", cfg.Risk)
	}
	if len(cfg.Strategies) != 3 {
		t.Fatalf("expected 3 strategies, got %d", len(cfg.Strategies))
	}
	ema := cfg.Strategies[0]
	if ema.Mode != "double_ema" || ema.Params.FastK != 0.9 || ema.Params.SlowK != 0.1 || ema.Params.InitDays != 10 {
		t.Fatalf("unexpected ema strategy: %+v", ema)
	}
	if cfg.Strategies[1].Params.ChaseOffset != 10 {
		t.Fatalf("unexpected chase offset: %v", cfg.Strategies[1].Params.ChaseOffset)
	}
	if tick := cfg.Strategies[2].Params; tick.TakeProfitPoint != 2 || tick.StopLossPoint != 1 {
		t.Fatalf("unexpected tick exits: %+v", tick)
	}
	if cfg.Paper.LedgerSize != 1000 {
		t.Fatalf("unexpected ledger size: %d", cfg.Paper.LedgerSize)
	}
	if cfg.History.Path != "bars.db" || cfg.Paper.FillsPath != "fills.jsonl" {
		t.Fatalf("unexpected paths: %+v %+v", cfg.History, cfg.Paper)
	}
	if got := cfg.Symbols(); len(got) != 2 || got[0] != "IF1604" || got[1] != "rb1610" {
		t.Fatalf("unexpected symbols: %v", got)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("CTABOT_LOG_LEVEL", "warn")
	t.Setenv("CTABOT_HISTORY_PATH", ":memory:")
	cfg, err := Load(filepath.Join("testdata", "config.yaml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.App.LogLevel != "warn" {
		t.Fatalf("expected env log level, got %s", cfg.App.LogLevel)
	}
	if cfg.History.Path != ":memory:" {
		t.Fatalf("expected env history path, got %s", cfg.History.Path)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestValidateRejectsDuplicates(t *testing.T) {
	cfg := &Config{Strategies: []Strategy{
		{Name: "a", Symbol: "IF1604"},
		{Name: "a", Symbol: "IF1604"},
	}}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected duplicate name error")
	}
	cfg = &Config{Strategies: []Strategy{{Name: "a", Symbol: "IF1604", Params: StrategyParams{Volume: 0.5}}}}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected fractional volume error")
	}
	cfg = &Config{Exchange: Exchange{Provider: "file"}}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected missing ticks_file error")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	cfg, err := Load(filepath.Join("testdata", "config.yaml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	cfg.Strategies[0].Params.FastK = 0.8
	out := filepath.Join(t.TempDir(), "out.yaml")
	if err := Save(out, cfg); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	again, err := Load(out)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if again.Strategies[0].Params.FastK != 0.8 {
		t.Fatalf("expected saved fast_k, got %v", again.Strategies[0].Params.FastK)
	}
}

func TestPathPrecedence(t *testing.T) {
	if got := Path("explicit.yaml"); got != "explicit.yaml" {
		t.Fatalf("explicit path ignored: %s", got)
	}
	t.Setenv("CTABOT_CONFIG", "env.yaml")
	if got := Path(""); got != "env.yaml" {
		t.Fatalf("env path ignored: %s", got)
	}
	os.Unsetenv("CTABOT_CONFIG")
	if got := Path(""); got != DefaultPath {
		t.Fatalf("expected default path, got %s", got)
	}
}
