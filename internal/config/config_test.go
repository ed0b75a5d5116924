package config

import (
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		DatabaseURL:              "postgres://localhost:5432/tokengate",
		CustodyAPIURL:            "https://custody.example.com",
		CustodyAPIKey:            "key",
		CustodyTimeout:           15 * time.Second,
		SettleTimeout:            30 * time.Second,
		TokenContractAddress:     "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
		DirectoryContractAddress: "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb",
		TokenAssetID:             "asset-token",
		UnderlyingAssetID:        "asset-underlying",
		Port:                     8080,
		LogLevel:                 "info",
	}
}

func TestValidateAcceptsCompleteConfig(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Errorf("Expected valid config, got: %v", err)
	}
}

func TestValidateRejectsMissingFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing database url", func(c *Config) { c.DatabaseURL = "" }},
		{"missing custody url", func(c *Config) { c.CustodyAPIURL = "" }},
		{"missing custody key", func(c *Config) { c.CustodyAPIKey = "" }},
		{"missing token contract", func(c *Config) { c.TokenContractAddress = "" }},
		{"short token contract", func(c *Config) { c.TokenContractAddress = "0x1234" }},
		{"non-hex directory contract", func(c *Config) {
			c.DirectoryContractAddress = "0xzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzz"
		}},
		{"missing token asset", func(c *Config) { c.TokenAssetID = "" }},
		{"missing underlying asset", func(c *Config) { c.UnderlyingAssetID = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Expected validation error, got nil")
			}
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	if cfg.Port != 8080 {
		t.Errorf("Expected default port 8080, got: %d", cfg.Port)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("Expected default log level info, got: %s", cfg.LogLevel)
	}
	if cfg.CustodyTimeout != 15*time.Second {
		t.Errorf("Expected default custody timeout, got: %v", cfg.CustodyTimeout)
	}
}
