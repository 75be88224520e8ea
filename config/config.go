// Package config loads application configuration from the environment,
// optionally seeded from a .env file.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/baleen37/tv-strategy/internal/adapters/logger"
)

// Config holds all application configuration.
type Config struct {
	// Binance API (public kline endpoints work without keys)
	APIKey    string
	SecretKey string
	IsTestnet bool

	// Backtest Parameters
	Symbol         string
	Interval       string
	InitialCapital decimal.Decimal
	CommissionRate decimal.Decimal
	RiskFreeRate   float64 // annual, e.g. 0.02
	PeriodsPerYear int     // e.g. 252 for daily bars

	// RSI Strategy Parameters
	RSIPeriod     int
	RSIOversold   float64
	RSIOverbought float64
	StopLossPct   float64
	TakeProfitPct float64

	// Storage
	DBPath  string
	DataDir string
	BarsCSV string // path of the bar file the runner replays

	// Logging
	LogLevel logger.LogLevel
}

// LoadConfig reads configuration from the environment. A .env file in the
// working directory is loaded first when present.
func LoadConfig() (*Config, error) {
	// Missing .env is fine; the environment may be set directly.
	_ = godotenv.Load()

	cfg := &Config{
		APIKey:    os.Getenv("BINANCE_API_KEY"),
		SecretKey: os.Getenv("BINANCE_SECRET_KEY"),
		IsTestnet: getEnvAsBool("BINANCE_TESTNET", false),

		Symbol:         getEnv("SYMBOL", "BTCUSDT"),
		Interval:       getEnv("INTERVAL", "1h"),
		RiskFreeRate:   getEnvAsFloat("RISK_FREE_RATE", 0.02),
		PeriodsPerYear: getEnvAsInt("PERIODS_PER_YEAR", 252),

		RSIPeriod:     getEnvAsInt("RSI_PERIOD", 14),
		RSIOversold:   getEnvAsFloat("RSI_OVERSOLD", 30),
		RSIOverbought: getEnvAsFloat("RSI_OVERBOUGHT", 70),
		StopLossPct:   getEnvAsFloat("STOP_LOSS_PCT", 0.02),
		TakeProfitPct: getEnvAsFloat("TAKE_PROFIT_PCT", 0.04),

		DBPath:  getEnv("DB_PATH", "./data/backtests.db"),
		DataDir: getEnv("DATA_DIR", "./data"),
		BarsCSV: os.Getenv("BARS_CSV"),

		LogLevel: logger.ParseLevel(getEnv("LOG_LEVEL", "INFO")),
	}

	var err error
	if cfg.InitialCapital, err = getEnvAsDecimal("INITIAL_CAPITAL", "10000"); err != nil {
		return nil, err
	}
	if cfg.CommissionRate, err = getEnvAsDecimal("COMMISSION_RATE", "0.001"); err != nil {
		return nil, err
	}

	if !cfg.InitialCapital.IsPositive() {
		return nil, fmt.Errorf("INITIAL_CAPITAL must be positive, got %s", cfg.InitialCapital)
	}
	if cfg.CommissionRate.IsNegative() {
		return nil, fmt.Errorf("COMMISSION_RATE must not be negative, got %s", cfg.CommissionRate)
	}
	if cfg.RSIPeriod < 1 {
		return nil, fmt.Errorf("RSI_PERIOD must be at least 1, got %d", cfg.RSIPeriod)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDecimal(key, defaultValue string) (decimal.Decimal, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}
	value, err := decimal.NewFromString(valueStr)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid decimal value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
}
