package infra

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application settings. Loaded from YAML, then sensitive
// or deployment-specific values are overridden from environment variables.
type Config struct {
	App struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	Gateway struct {
		BaseURL        string  `yaml:"base_url"`
		ContentHost    string  `yaml:"content_host"`
		TimeoutSec     int     `yaml:"timeout_sec"`
		RateLimitBurst int     `yaml:"rate_limit_burst"`
		RateLimitPerS  float64 `yaml:"rate_limit_per_sec"`
	} `yaml:"gateway"`

	Market struct {
		FeeAddress  string    `yaml:"fee_address"`
		TipPercents []float64 `yaml:"tip_percents"`
	} `yaml:"market"`

	Wallet struct {
		BridgeURL           string `yaml:"bridge_url"`
		DetectIntervalMS    int    `yaml:"detect_interval_ms"`
		PassiveDetectSec    int    `yaml:"passive_detect_sec"`
		InteractiveDetectMS int    `yaml:"interactive_detect_ms"`
	} `yaml:"wallet"`

	API struct {
		ListenAddr string `yaml:"listen_addr"`
	} `yaml:"api"`

	Journal struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"journal"`

	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

// LoadConfig reads and parses the config file, applies env overrides and
// validates the result.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	overrideWithEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// DefaultConfig returns a Config usable without a config file.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	overrideWithEnv(cfg)
	return cfg
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "ordmarket"
	}
	if c.Gateway.BaseURL == "" {
		c.Gateway.BaseURL = "http://localhost:3000"
	}
	if c.Gateway.ContentHost == "" {
		c.Gateway.ContentHost = c.Gateway.BaseURL
	}
	if c.Gateway.TimeoutSec <= 0 {
		c.Gateway.TimeoutSec = 30
	}
	if c.Gateway.RateLimitBurst <= 0 {
		c.Gateway.RateLimitBurst = 20
	}
	if c.Gateway.RateLimitPerS <= 0 {
		c.Gateway.RateLimitPerS = 10
	}
	if len(c.Market.TipPercents) == 0 {
		c.Market.TipPercents = []float64{0, 2.5, 5}
	}
	if c.Wallet.DetectIntervalMS <= 0 {
		c.Wallet.DetectIntervalMS = 100
	}
	if c.Wallet.PassiveDetectSec <= 0 {
		c.Wallet.PassiveDetectSec = 3
	}
	if c.Wallet.InteractiveDetectMS <= 0 {
		c.Wallet.InteractiveDetectMS = 8000
	}
	if c.API.ListenAddr == "" {
		c.API.ListenAddr = "localhost:8700"
	}
	if c.Journal.Path == "" {
		c.Journal.Path = "outcomes.db"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

// Validate checks configuration validity.
func (c *Config) Validate() error {
	if !strings.HasPrefix(c.Gateway.BaseURL, "http://") && !strings.HasPrefix(c.Gateway.BaseURL, "https://") {
		return fmt.Errorf("invalid gateway base URL: %s", c.Gateway.BaseURL)
	}
	if c.Market.FeeAddress == "" {
		return fmt.Errorf("marketplace fee address is required")
	}
	if c.Wallet.BridgeURL != "" &&
		!strings.HasPrefix(c.Wallet.BridgeURL, "ws://") && !strings.HasPrefix(c.Wallet.BridgeURL, "wss://") {
		return fmt.Errorf("invalid wallet bridge URL: %s", c.Wallet.BridgeURL)
	}
	for _, t := range c.Market.TipPercents {
		if t < 0 || t > 100 {
			return fmt.Errorf("tip percent out of range: %v", t)
		}
	}
	return nil
}

// DetectInterval returns the wallet detection poll interval.
func (c *Config) DetectInterval() time.Duration {
	return time.Duration(c.Wallet.DetectIntervalMS) * time.Millisecond
}

// PassiveDetectTimeout is the deadline for the silent startup probe.
func (c *Config) PassiveDetectTimeout() time.Duration {
	return time.Duration(c.Wallet.PassiveDetectSec) * time.Second
}

// InteractiveDetectTimeout is the deadline for a user-triggered connect.
func (c *Config) InteractiveDetectTimeout() time.Duration {
	return time.Duration(c.Wallet.InteractiveDetectMS) * time.Millisecond
}

// overrideWithEnv applies environment variables over file values.
// Env always wins so secrets never need to live in the config file.
func overrideWithEnv(cfg *Config) {
	if v := os.Getenv("MARKET_GATEWAY_URL"); v != "" {
		cfg.Gateway.BaseURL = v
	}
	if v := os.Getenv("MARKET_CONTENT_HOST"); v != "" {
		cfg.Gateway.ContentHost = v
	}
	if v := os.Getenv("MARKET_FEE_ADDRESS"); v != "" {
		cfg.Market.FeeAddress = v
	}
	if v := os.Getenv("MARKET_WALLET_BRIDGE_URL"); v != "" {
		cfg.Wallet.BridgeURL = v
	}
	if v := os.Getenv("MARKET_LISTEN_ADDR"); v != "" {
		cfg.API.ListenAddr = v
	}
	if v := os.Getenv("MARKET_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}
