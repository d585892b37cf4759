package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	Logging LoggingConfig
	Feed    FeedConfig
	Display DisplayConfig
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string
	Format string
	File   string // empty = stdout only
}

// FeedConfig holds submission/trade channel configuration.
type FeedConfig struct {
	SubmissionBuffer int
	TradeBuffer      int
}

// DisplayConfig holds book rendering configuration.
type DisplayConfig struct {
	Depth int // levels per side shown by the demo driver, <= 0 means all
}

// Load reads configuration from environment variables, with an optional
// .env file as a source.
func Load() (*Config, error) {
	_ = godotenv.Load() // ignore error if .env doesn't exist

	cfg := &Config{
		Logging: LoggingConfig{
			Level:  getEnvString("LOG_LEVEL", "info"),
			Format: getEnvString("LOG_FORMAT", "json"),
			File:   getEnvString("LOG_FILE", ""),
		},
		Feed: FeedConfig{
			SubmissionBuffer: getEnvInt("ORDERBOOK_SUBMISSION_BUFFER", 256),
			TradeBuffer:      getEnvInt("ORDERBOOK_TRADE_BUFFER", 256),
		},
		Display: DisplayConfig{
			Depth: getEnvInt("ORDERBOOK_DISPLAY_DEPTH", 0),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for values the feed cannot run with.
func (c *Config) Validate() error {
	if c.Feed.SubmissionBuffer <= 0 {
		return fmt.Errorf("invalid submission buffer size: %d", c.Feed.SubmissionBuffer)
	}
	if c.Feed.TradeBuffer <= 0 {
		return fmt.Errorf("invalid trade buffer size: %d", c.Feed.TradeBuffer)
	}
	return nil
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
