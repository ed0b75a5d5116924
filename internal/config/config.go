package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Postgres connection string for the ledger store
	DatabaseURL string

	// Custody service API
	CustodyAPIURL  string
	CustodyAPIKey  string
	CustodyTimeout time.Duration
	SettleTimeout  time.Duration

	// Contract addresses, supplied by deployment
	TokenContractAddress     string
	DirectoryContractAddress string

	// Custody asset identifiers used to tag transaction records
	TokenAssetID      string
	UnderlyingAssetID string

	// HTTP API
	Port int

	// Logging
	LogLevel string
}

// Load reads the configuration from environment variables
func Load() *Config {
	return &Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),

		CustodyAPIURL:  os.Getenv("CUSTODY_API_URL"),
		CustodyAPIKey:  os.Getenv("CUSTODY_API_KEY"),
		CustodyTimeout: time.Duration(getEnvAsInt("CUSTODY_TIMEOUT_SEC", 15)) * time.Second,
		SettleTimeout:  time.Duration(getEnvAsInt("SETTLE_TIMEOUT_SEC", 30)) * time.Second,

		TokenContractAddress:     os.Getenv("TOKEN_CONTRACT_ADDRESS"),
		DirectoryContractAddress: os.Getenv("DIRECTORY_CONTRACT_ADDRESS"),

		TokenAssetID:      os.Getenv("TOKEN_ASSET_ID"),
		UnderlyingAssetID: os.Getenv("UNDERLYING_ASSET_ID"),

		Port:     getEnvAsInt("PORT", 8080),
		LogLevel: getEnvOr("LOG_LEVEL", "info"),
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.CustodyAPIURL == "" {
		return fmt.Errorf("CUSTODY_API_URL is required")
	}
	if c.CustodyAPIKey == "" {
		return fmt.Errorf("CUSTODY_API_KEY is required")
	}
	if err := validAddress("TOKEN_CONTRACT_ADDRESS", c.TokenContractAddress); err != nil {
		return err
	}
	if err := validAddress("DIRECTORY_CONTRACT_ADDRESS", c.DirectoryContractAddress); err != nil {
		return err
	}
	if c.TokenAssetID == "" {
		return fmt.Errorf("TOKEN_ASSET_ID is required")
	}
	if c.UnderlyingAssetID == "" {
		return fmt.Errorf("UNDERLYING_ASSET_ID is required")
	}
	return nil
}

func validAddress(name, value string) error {
	s := strings.TrimPrefix(strings.ToLower(value), "0x")
	if len(s) != 40 {
		return fmt.Errorf("%s must be a 20-byte hex address", name)
	}
	if _, err := hex.DecodeString(s); err != nil {
		return fmt.Errorf("%s must be a valid hex address", name)
	}
	return nil
}

// Helper: get string from env with default
func getEnvOr(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// Helper: get int from env
func getEnvAsInt(key string, defaultVal int) int {
	valStr := os.Getenv(key)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(valStr)
	if err != nil {
		return defaultVal
	}
	return val
}
