// Package config exposes strongly typed application configuration structs loaded from YAML.
package config

import (
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is used when neither a flag nor CTABOT_CONFIG names a file.
const DefaultPath = "configs/config.yaml"

// App captures process-wide runtime settings such as name, environment, metrics, and logging levels.
type App struct {
	Name        string `yaml:"name"`
	Env         string `yaml:"env"`
	MetricsAddr string `yaml:"metrics_addr"`
	LogLevel    string `yaml:"log_level"`
}

// Exchange selects the tick source and the symbols it streams.
type Exchange struct {
	Provider  string   `yaml:"provider"` // stub|binance|file
	Symbols   []string `yaml:"symbols"`
	TicksFile string   `yaml:"ticks_file"`
}

// Risk encodes guard-rails applied to every order before it reaches the venue.
type Risk struct {
	MaxNotionalPerTrade float64 `yaml:"max_notional_per_trade"`
	MaxOrdersPerSec     float64 `yaml:"max_orders_per_sec"`
	OrderBurst          int     `yaml:"order_burst"`
}

// StrategyParams groups tunable knobs for a strategy implementation.
type StrategyParams struct {
	FastK           float64 `yaml:"fast_k"`
	SlowK           float64 `yaml:"slow_k"`
	InitDays        int     `yaml:"init_days"`
	HistoryLen      int     `yaml:"history_len"`
	Volume          float64 `yaml:"volume"`
	ChaseOffset     float64 `yaml:"chase_offset"`
	TakeProfitPoint float64 `yaml:"take_profit_point"`
	StopLossPoint   float64 `yaml:"stop_loss_point"`
}

// Strategy declares one hosted strategy instance.
type Strategy struct {
	Name   string         `yaml:"name"`
	Mode   string         `yaml:"mode"`
	Symbol string         `yaml:"symbol"`
	Params StrategyParams `yaml:"params"`
}

// Paper captures paper-venue settings.
type Paper struct {
	FillsPath string `yaml:"fills_path"`
	// LedgerSize bounds the in-memory fill journal; 0 keeps every fill.
	LedgerSize int `yaml:"ledger_size"`
}

// History locates the bar store strategies warm up from.
type History struct {
	Path string `yaml:"path"`
}

// Config collects every configuration leaf for easy marshaling from YAML.
type Config struct {
	App        App        `yaml:"app"`
	Exchange   Exchange   `yaml:"exchange"`
	Risk       Risk       `yaml:"risk"`
	Strategies []Strategy `yaml:"strategies"`
	Paper      Paper      `yaml:"paper"`
	History    History    `yaml:"history"`
}

// Path returns the config file to load: explicit beats CTABOT_CONFIG beats DefaultPath.
func Path(explicit string) string {
	if explicit != "" {
		return explicit
	}
	_ = godotenv.Load() // best-effort
	if v := os.Getenv("CTABOT_CONFIG"); v != "" {
		return v
	}
	return DefaultPath
}

// Load reads a YAML file from disk, hydrates a Config struct and applies
// CTABOT_* environment overrides.
func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var config Config
	if err := yaml.NewDecoder(file).Decode(&config); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	_ = godotenv.Load() // best-effort
	config.applyEnv()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *Config) applyEnv() {
	overrides := map[string]*string{
		"CTABOT_LOG_LEVEL":    &c.App.LogLevel,
		"CTABOT_METRICS_ADDR": &c.App.MetricsAddr,
		"CTABOT_PROVIDER":     &c.Exchange.Provider,
		"CTABOT_TICKS_FILE":   &c.Exchange.TicksFile,
		"CTABOT_HISTORY_PATH": &c.History.Path,
		"CTABOT_FILLS_PATH":   &c.Paper.FillsPath,
	}
	for key, field := range overrides {
		if v, ok := os.LookupEnv(key); ok {
			*field = v
		}
	}
}

// Validate checks the fields the paper bot cannot start without.
func (c *Config) Validate() error {
	seen := make(map[string]bool, len(c.Strategies))
	for i, s := range c.Strategies {
		if strings.TrimSpace(s.Name) == "" {
			return fmt.Errorf("strategies[%d]: name is required", i)
		}
		if seen[s.Name] {
			return fmt.Errorf("strategies[%d]: duplicate name %q", i, s.Name)
		}
		seen[s.Name] = true
		if s.Symbol == "" {
			return fmt.Errorf("strategy %s: symbol is required", s.Name)
		}
		if v := s.Params.Volume; v != 0 && (v < 1 || v != math.Trunc(v)) {
			return fmt.Errorf("strategy %s: volume %v is not a whole number of lots", s.Name, v)
		}
	}
	if strings.EqualFold(c.Exchange.Provider, "file") && c.Exchange.TicksFile == "" {
		return fmt.Errorf("exchange: file provider needs ticks_file")
	}
	return nil
}

// Symbols returns the configured feed symbols plus any a strategy trades, deduplicated.
func (c *Config) Symbols() []string {
	var out []string
	seen := make(map[string]bool)
	add := func(sym string) {
		if sym != "" && !seen[sym] {
			seen[sym] = true
			out = append(out, sym)
		}
	}
	for _, sym := range c.Exchange.Symbols {
		add(sym)
	}
	for _, s := range c.Strategies {
		add(s.Symbol)
	}
	return out
}

// Save persists a Config struct to disk as YAML.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
