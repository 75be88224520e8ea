package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/baleen37/tv-strategy/config"
	"github.com/baleen37/tv-strategy/internal/adapters/binanceclient"
	"github.com/baleen37/tv-strategy/internal/adapters/logger"
	"github.com/baleen37/tv-strategy/internal/utils"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	appLogger, err := logger.NewZapLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize logger: %v", err)
	}
	defer appLogger.Sync()

	client, err := binanceclient.New(binanceclient.Config{
		APIKey:     cfg.APIKey,
		SecretKey:  cfg.SecretKey,
		UseTestnet: cfg.IsTestnet,
		Logger:     appLogger,
	})
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize Binance client: %v", err)
	}

	ctx := context.Background()
	end := time.Now()
	start := end.AddDate(0, -3, 0) // 3 months of history

	appLogger.Info(ctx, "Fetching klines", map[string]interface{}{
		"symbol":   cfg.Symbol,
		"interval": cfg.Interval,
		"start":    start.Format(time.RFC3339),
		"end":      end.Format(time.RFC3339),
	})

	bars, err := client.GetKlinesRange(ctx, cfg.Symbol, cfg.Interval, start, end)
	if err != nil {
		appLogger.Error(ctx, err, "Error fetching klines")
		log.Fatalf("Error fetching klines: %v", err)
	}
	appLogger.Info(ctx, "Fetched klines", map[string]interface{}{"count": len(bars)})

	filename := fmt.Sprintf("%s/%s_%s_%s_to_%s.csv",
		cfg.DataDir, cfg.Symbol, cfg.Interval, start.Format("20060102"), end.Format("20060102"))
	if err := utils.WriteBarsToCSV(bars, filename); err != nil {
		appLogger.Error(ctx, err, "Error writing CSV")
		log.Fatalf("Error writing CSV: %v", err)
	}
	appLogger.Info(ctx, "Saved bars", map[string]interface{}{"filename": filename})
}
