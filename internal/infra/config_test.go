package infra

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Gateway.BaseURL == "" {
		t.Error("default gateway base URL missing")
	}
	if cfg.Gateway.ContentHost != cfg.Gateway.BaseURL {
		t.Error("content host should default to the gateway base URL")
	}
	if len(cfg.Market.TipPercents) != 3 {
		t.Errorf("tip percents = %v", cfg.Market.TipPercents)
	}
	if cfg.DetectInterval() != 100*time.Millisecond {
		t.Errorf("detect interval = %s", cfg.DetectInterval())
	}
	if cfg.PassiveDetectTimeout() != 3*time.Second {
		t.Errorf("passive timeout = %s", cfg.PassiveDetectTimeout())
	}
	if cfg.InteractiveDetectTimeout() != 8*time.Second {
		t.Errorf("interactive timeout = %s", cfg.InteractiveDetectTimeout())
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
gateway:
  base_url: "https://market.example"
market:
  fee_address: "fee-address-000"
wallet:
  bridge_url: "ws://localhost:8333"
  passive_detect_sec: 5
logging:
  level: debug
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Gateway.BaseURL != "https://market.example" {
		t.Errorf("base URL = %q", cfg.Gateway.BaseURL)
	}
	if cfg.PassiveDetectTimeout() != 5*time.Second {
		t.Errorf("passive timeout = %s", cfg.PassiveDetectTimeout())
	}
	// Unset fields still get defaults.
	if cfg.Gateway.RateLimitBurst != 20 {
		t.Errorf("rate limit burst = %d", cfg.Gateway.RateLimitBurst)
	}
}

func TestConfigValidate(t *testing.T) {
	base := func() *Config {
		cfg := &Config{}
		cfg.applyDefaults()
		cfg.Market.FeeAddress = "fee-address-000"
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"bad gateway url", func(c *Config) { c.Gateway.BaseURL = "market.example" }, true},
		{"missing fee address", func(c *Config) { c.Market.FeeAddress = "" }, true},
		{"bad bridge url", func(c *Config) { c.Wallet.BridgeURL = "http://localhost:1" }, true},
		{"tip out of range", func(c *Config) { c.Market.TipPercents = []float64{0, 150} }, true},
		{"no bridge is valid", func(c *Config) { c.Wallet.BridgeURL = "" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("MARKET_GATEWAY_URL", "https://override.example")
	t.Setenv("MARKET_FEE_ADDRESS", "env-fee-address")

	cfg := DefaultConfig()
	if cfg.Gateway.BaseURL != "https://override.example" {
		t.Errorf("base URL = %q, env must win", cfg.Gateway.BaseURL)
	}
	if cfg.Market.FeeAddress != "env-fee-address" {
		t.Errorf("fee address = %q, env must win", cfg.Market.FeeAddress)
	}
}
