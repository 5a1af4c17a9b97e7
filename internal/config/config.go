// Package config exposes strongly typed application configuration structs loaded from YAML.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// App captures process-wide runtime settings such as name, environment, metrics, and logging levels.
type App struct {
	Name        string `yaml:"name"`
	Env         string `yaml:"env"`
	MetricsAddr string `yaml:"metrics_addr"`
	LogLevel    string `yaml:"log_level"`
}

// Chain points a registry chain id at an RPC endpoint the scanner may use.
type Chain struct {
	ID     int64  `yaml:"id"`
	RPCURL string `yaml:"rpc_url"`
}

// Destination fixes the settlement chain, the canonical deposit asset, and the
// Hyperliquid bridge contract everything ultimately flows into.
type Destination struct {
	ChainID       int64  `yaml:"chain_id"`
	USDCAddress   string `yaml:"usdc_address"`
	USDCDecimals  int    `yaml:"usdc_decimals"`
	BridgeAddress string `yaml:"bridge_address"`
}

// Optimizer groups the empirically chosen planning constants. They are
// configuration rather than code so they can be recalibrated without a rebuild.
type Optimizer struct {
	MinBalanceUSD       float64 `yaml:"min_balance_usd"`
	MaxQuotedOptions    int     `yaml:"max_quoted_options"`
	CompletionTolerance float64 `yaml:"completion_tolerance"`
	DustFloorUSD        float64 `yaml:"dust_floor_usd"`
	OutputBand          float64 `yaml:"output_band"`
	TimeToleranceSecs   float64 `yaml:"time_tolerance_secs"`
	FeesToleranceUSD    float64 `yaml:"fees_tolerance_usd"`
	OutputToleranceUSD  float64 `yaml:"output_tolerance_usd"`
	MinSettlementUSD    float64 `yaml:"min_settlement_usd"`
}

// LiFi configures the quoting/execution aggregator client.
type LiFi struct {
	BaseURL        string  `yaml:"base_url"`
	Integrator     string  `yaml:"integrator"`
	Slippage       float64 `yaml:"slippage"`
	PollIntervalMs int     `yaml:"poll_interval_ms"`
}

// Pricing configures the USD price source and its short-lived cache.
type Pricing struct {
	BaseURL      string `yaml:"base_url"`
	CacheTTLSecs int    `yaml:"cache_ttl_secs"`
}

// Hyperliquid configures the post-settlement credit watcher.
type Hyperliquid struct {
	WSURL             string `yaml:"ws_url"`
	CreditTimeoutSecs int    `yaml:"credit_timeout_secs"`
}

// Wallet stores public addresses; signing keys come only from the environment.
type Wallet struct {
	Address       string `yaml:"address"`
	SolanaAddress string `yaml:"solana_address"`
}

// Config collects every configuration leaf for easy marshaling from YAML.
type Config struct {
	App         App         `yaml:"app"`
	Chains      []Chain     `yaml:"chains"`
	Destination Destination `yaml:"destination"`
	Optimizer   Optimizer   `yaml:"optimizer"`
	LiFi        LiFi        `yaml:"lifi"`
	Pricing     Pricing     `yaml:"pricing"`
	Hyperliquid Hyperliquid `yaml:"hyperliquid"`
	Wallet      Wallet      `yaml:"wallet"`
}

// Load reads a YAML file from disk and hydrates a Config struct with defaults applied.
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
	config.applyDefaults()
	return &config, nil
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

func (c *Config) applyDefaults() {
	if c.Optimizer.MinBalanceUSD <= 0 {
		c.Optimizer.MinBalanceUSD = 0.10
	}
	if c.Optimizer.MaxQuotedOptions <= 0 {
		c.Optimizer.MaxQuotedOptions = 8
	}
	if c.Optimizer.CompletionTolerance <= 0 || c.Optimizer.CompletionTolerance > 1 {
		c.Optimizer.CompletionTolerance = 0.95
	}
	if c.Optimizer.DustFloorUSD <= 0 {
		c.Optimizer.DustFloorUSD = 1.0
	}
	if c.Optimizer.OutputBand <= 0 {
		c.Optimizer.OutputBand = 0.05
	}
	if c.Optimizer.TimeToleranceSecs <= 0 {
		c.Optimizer.TimeToleranceSecs = 1.0
	}
	if c.Optimizer.FeesToleranceUSD <= 0 {
		c.Optimizer.FeesToleranceUSD = 0.01
	}
	if c.Optimizer.OutputToleranceUSD <= 0 {
		c.Optimizer.OutputToleranceUSD = 0.01
	}
	if c.Optimizer.MinSettlementUSD <= 0 {
		// The Hyperliquid bridge silently swallows deposits under 5 USDC.
		c.Optimizer.MinSettlementUSD = 5.0
	}
	if c.LiFi.BaseURL == "" {
		c.LiFi.BaseURL = "https://li.quest/v1"
	}
	if c.LiFi.Slippage <= 0 {
		c.LiFi.Slippage = 0.005
	}
	if c.LiFi.PollIntervalMs <= 0 {
		c.LiFi.PollIntervalMs = 3000
	}
	if c.Pricing.BaseURL == "" {
		c.Pricing.BaseURL = "https://api.dexscreener.com"
	}
	if c.Pricing.CacheTTLSecs <= 0 {
		c.Pricing.CacheTTLSecs = 30
	}
	if c.Hyperliquid.WSURL == "" {
		c.Hyperliquid.WSURL = "wss://api.hyperliquid.xyz/ws"
	}
	if c.Hyperliquid.CreditTimeoutSecs <= 0 {
		c.Hyperliquid.CreditTimeoutSecs = 300
	}
}
