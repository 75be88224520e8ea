package main

import (
	"context"
	"log"

	"github.com/baleen37/tv-strategy/config"
	"github.com/baleen37/tv-strategy/internal/adapters/logger"
	"github.com/baleen37/tv-strategy/internal/adapters/sqlite"
	"github.com/baleen37/tv-strategy/internal/analytics"
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

	ctx := context.Background()

	repo, err := sqlite.NewRepository(sqlite.Config{DBPath: cfg.DBPath, Logger: appLogger})
	if err != nil {
		log.Fatalf("FATAL: Failed to open results database: %v", err)
	}
	defer repo.Close()

	results, err := repo.FindAllResults(ctx)
	if err != nil {
		appLogger.Error(ctx, err, "Failed to load results")
		log.Fatalf("FATAL: Failed to load results: %v", err)
	}
	if len(results) == 0 {
		appLogger.Info(ctx, "No stored backtest runs to analyze")
		return
	}

	analyzer := analytics.NewTradeAnalyzer()
	best := results[0]

	for _, res := range results {
		trades, err := repo.FindTradesByResult(ctx, res.ID)
		if err != nil {
			appLogger.Error(ctx, err, "Failed to load trades", map[string]interface{}{"run": res.ID})
			continue
		}

		stats := analyzer.AnalyzeTrades(trades)
		fields := map[string]interface{}{
			"run":         res.ID,
			"strategy":    res.StrategyID,
			"symbol":      res.Symbol,
			"totalReturn": res.TotalReturn,
			"winRate":     stats.WinRate,
			"trades":      stats.TotalTrades,
			"avgWin":      stats.AvgWin,
			"avgLoss":     stats.AvgLoss,
			"avgDuration": stats.AvgDuration.String(),
		}
		if stats.BestTrade != nil {
			fields["bestTradePNL"] = stats.BestTrade.PNL.String()
		}
		if stats.WorstTrade != nil {
			fields["worstTradePNL"] = stats.WorstTrade.PNL.String()
		}
		appLogger.Info(ctx, "Run analysis", fields)

		if res.TotalReturn > best.TotalReturn {
			best = res
		}
	}

	appLogger.Info(ctx, "Best run", map[string]interface{}{
		"run":         best.ID,
		"strategy":    best.StrategyID,
		"symbol":      best.Symbol,
		"totalReturn": best.TotalReturn,
		"maxDrawdown": best.MaxDrawdown,
	})
}
