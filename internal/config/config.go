// Package config defines the simulator's configuration structs and
// their YAML serialization.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"mmsim/internal/generator"
	"mmsim/internal/risk"
)

// SimulationConfig mirrors generator.Config plus the run-level fields
// spec §6 lists that the generator itself doesn't own (iterations,
// event log path, quiet flag).
type SimulationConfig struct {
	Instrument   string  `yaml:"instrument"`
	InitialPrice float64 `yaml:"initial_price"`
	Spread       float64 `yaml:"spread"`
	Volatility   float64 `yaml:"volatility"`
	LatencyMs    int64   `yaml:"latency_ms"`
	Iterations   int     `yaml:"iterations"`
	Seed         uint32  `yaml:"seed"`
	Levels       int     `yaml:"levels"`
	EventLogPath string  `yaml:"event_log_path"`
	ReplayPath   string  `yaml:"replay_path"`
	Mode         string  `yaml:"mode"` // "simulate" or "replay"
	Quiet        bool    `yaml:"quiet"`
}

// RiskConfig mirrors risk.Config with YAML tags and plain numeric
// seconds fields (risk.Config uses time.Duration, which this layer
// converts).
type RiskConfig struct {
	MaxNetPosition      int64   `yaml:"max_net_position"`
	MaxNotionalExposure float64 `yaml:"max_notional_exposure"`
	MaxDrawdown         float64 `yaml:"max_drawdown"`
	MaxQuotesPerSecond  float64 `yaml:"max_quotes_per_second"`
	MaxCancelsPerSecond float64 `yaml:"max_cancels_per_second"`
	RateWindowSeconds   float64 `yaml:"rate_window_seconds"`
	MaxStaleDataMs      int64   `yaml:"max_stale_data_ms"`
	WarningThresholdPct float64 `yaml:"warning_threshold_pct"`
	CooldownSeconds     float64 `yaml:"cooldown_seconds"`
	MaxQuoteSpread      float64 `yaml:"max_quote_spread"`
	MinQuoteSize        int64   `yaml:"min_quote_size"`
	MaxQuoteSize        int64   `yaml:"max_quote_size"`
}

// Config is the top-level file format: one simulation section and one
// risk section.
type Config struct {
	Simulation SimulationConfig `yaml:"simulation"`
	Risk       RiskConfig       `yaml:"risk"`
}

// DefaultSimulationConfig returns defaults matching
// generator.DefaultConfig.
func DefaultSimulationConfig() SimulationConfig {
	gc := generator.DefaultConfig()
	return SimulationConfig{
		Instrument:   gc.Instrument,
		InitialPrice: gc.InitialMid,
		Spread:       gc.BaseSpread,
		Volatility:   gc.Volatility,
		LatencyMs:    gc.LatencyMs,
		Iterations:   1000,
		Seed:         gc.Seed,
		Levels:       gc.Levels,
		Mode:         "simulate",
	}
}

// DefaultRiskConfig returns defaults matching risk.DefaultConfig.
func DefaultRiskConfig() RiskConfig {
	rc := risk.DefaultConfig()
	return RiskConfig{
		MaxNetPosition:      rc.MaxNetPosition,
		MaxNotionalExposure: rc.MaxNotionalExposure,
		MaxDrawdown:         rc.MaxDrawdown,
		MaxQuotesPerSecond:  rc.MaxQuotesPerSecond,
		MaxCancelsPerSecond: rc.MaxCancelsPerSecond,
		RateWindowSeconds:   rc.RateWindow.Seconds(),
		MaxStaleDataMs:      rc.MaxStaleDataMs,
		WarningThresholdPct: rc.WarningThresholdPct,
		CooldownSeconds:     rc.CooldownSeconds,
		MaxQuoteSpread:      rc.MaxQuoteSpread,
		MinQuoteSize:        rc.MinQuoteSize,
		MaxQuoteSize:        rc.MaxQuoteSize,
	}
}

// DefaultConfig returns a complete, immediately runnable default
// configuration.
func DefaultConfig() Config {
	return Config{
		Simulation: DefaultSimulationConfig(),
		Risk:       DefaultRiskConfig(),
	}
}

// Load reads and parses a YAML config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return &cfg, nil
}

// Save serializes cfg as YAML and writes it to path.
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

// GeneratorConfig converts SimulationConfig into generator.Config.
func (c SimulationConfig) GeneratorConfig() generator.Config {
	mode := generator.Simulate
	if c.Mode == "replay" {
		mode = generator.Replay
	}
	return generator.Config{
		Seed:       c.Seed,
		Instrument: c.Instrument,
		InitialMid: c.InitialPrice,
		BaseSpread: c.Spread,
		Volatility: c.Volatility,
		Levels:     c.Levels,
		LatencyMs:  c.LatencyMs,
		Mode:       mode,
		ReplayPath: c.ReplayPath,
	}
}

// RiskManagerConfig converts RiskConfig into risk.Config.
func (c RiskConfig) RiskManagerConfig() risk.Config {
	return risk.Config{
		MaxNetPosition:      c.MaxNetPosition,
		MaxNotionalExposure: c.MaxNotionalExposure,
		MaxDrawdown:         c.MaxDrawdown,
		MaxQuotesPerSecond:  c.MaxQuotesPerSecond,
		MaxCancelsPerSecond: c.MaxCancelsPerSecond,
		RateWindow:          secondsToDuration(c.RateWindowSeconds),
		MaxStaleDataMs:      c.MaxStaleDataMs,
		WarningThresholdPct: c.WarningThresholdPct,
		CooldownSeconds:     c.CooldownSeconds,
		MaxQuoteSpread:      c.MaxQuoteSpread,
		MinQuoteSize:        c.MinQuoteSize,
		MaxQuoteSize:        c.MaxQuoteSize,
	}
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
