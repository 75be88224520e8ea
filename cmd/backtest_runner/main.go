package main

import (
	"context"
	"log"

	"github.com/baleen37/tv-strategy/config"
	"github.com/baleen37/tv-strategy/internal/adapters/logger"
	"github.com/baleen37/tv-strategy/internal/adapters/sqlite"
	"github.com/baleen37/tv-strategy/internal/analytics"
	"github.com/baleen37/tv-strategy/internal/backtest"
	"github.com/baleen37/tv-strategy/internal/domain"
	"github.com/baleen37/tv-strategy/internal/strategy"
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

	ctx := context.Background()

	barsFile := cfg.BarsCSV
	if barsFile == "" {
		log.Fatal("FATAL: BARS_CSV must point to a bar file (see cmd/fetch_klines)")
	}
	bars, err := loadBars(ctx, appLogger, barsFile)
	if err != nil {
		log.Fatalf("FATAL: %v", err)
	}

	rsi, err := strategy.NewRSIStrategy(strategy.RSIStrategyConfig{
		Period:        cfg.RSIPeriod,
		Oversold:      cfg.RSIOversold,
		Overbought:    cfg.RSIOverbought,
		StopLossPct:   cfg.StopLossPct,
		TakeProfitPct: cfg.TakeProfitPct,
	}, appLogger)
	if err != nil {
		appLogger.Error(ctx, err, "Failed to create strategy")
		log.Fatalf("FATAL: Failed to create strategy: %v", err)
	}

	if len(bars) < rsi.RequiredDataPoints() {
		log.Fatalf("FATAL: %d bars loaded but strategy needs at least %d", len(bars), rsi.RequiredDataPoints())
	}

	engine, err := backtest.New(rsi, backtest.Config{
		InitialCapital: cfg.InitialCapital,
		CommissionRate: cfg.CommissionRate,
		Logger:         appLogger,
	})
	if err != nil {
		appLogger.Error(ctx, err, "Failed to create engine")
		log.Fatalf("FATAL: Failed to create engine: %v", err)
	}

	result, err := engine.Run(ctx, bars, cfg.Symbol)
	if err != nil {
		appLogger.Error(ctx, err, "Backtest failed")
		log.Fatalf("FATAL: Backtest failed: %v", err)
	}

	closedTrades := engine.Portfolio().ClosedTrades()
	equityCurve := engine.EquityCurve()

	// Metric layer works on the per-bar equity returns, not realized PnL.
	returns := equityReturns(equityCurve)
	perf := analytics.NewPerformanceMetrics(cfg.InitialCapital)
	risk := analytics.NewRiskMetrics()
	result.SharpeRatio = perf.SharpeRatio(returns, cfg.RiskFreeRate, cfg.PeriodsPerYear)
	result.ProfitFactor = perf.ProfitFactor(closedTrades)

	values := make([]float64, len(equityCurve))
	for i, pt := range equityCurve {
		values[i] = pt.Value.InexactFloat64()
	}

	tradeStats := analytics.NewTradeAnalyzer().AnalyzeTrades(closedTrades)
	appLogger.Info(ctx, "Backtest report", map[string]interface{}{
		"run":            result.ID,
		"strategy":       result.StrategyID,
		"symbol":         result.Symbol,
		"initialCapital": result.InitialCapital.String(),
		"finalCapital":   result.FinalCapital.String(),
		"totalReturn":    result.TotalReturn,
		"totalTrades":    result.TotalTrades,
		"winRate":        result.WinRate,
		"realizedMaxDD":  result.MaxDrawdown,
		"markToMarketDD": perf.MaxDrawdown(values),
		"sharpe":         result.SharpeRatio,
		"sortino":        perf.SortinoRatio(returns, cfg.RiskFreeRate, cfg.PeriodsPerYear),
		"profitFactor":   result.ProfitFactor,
		"volatility":     risk.Volatility(returns, cfg.PeriodsPerYear),
		"var95":          risk.VaR(returns, 0.05),
		"cvar95":         risk.CVaR(returns, 0.05),
		"avgWin":         tradeStats.AvgWin,
		"avgLoss":        tradeStats.AvgLoss,
		"avgTradeLength": tradeStats.AvgDuration.String(),
	})

	repo, err := sqlite.NewRepository(sqlite.Config{DBPath: cfg.DBPath, Logger: appLogger})
	if err != nil {
		appLogger.Error(ctx, err, "Failed to open results database")
		log.Fatalf("FATAL: Failed to open results database: %v", err)
	}
	defer repo.Close()

	allTrades := append(engine.Portfolio().OpenPositions(), closedTrades...)
	if err := repo.SaveResult(ctx, result, allTrades); err != nil {
		appLogger.Error(ctx, err, "Failed to persist result")
		log.Fatalf("FATAL: Failed to persist result: %v", err)
	}
	appLogger.Info(ctx, "Result persisted", map[string]interface{}{"run": result.ID, "db": cfg.DBPath})
}

func loadBars(ctx context.Context, appLogger *logger.ZapLogger, filename string) ([]*domain.Bar, error) {
	bars, err := utils.ReadBarsFromCSV(filename)
	if err != nil {
		return nil, err
	}
	appLogger.Info(ctx, "Loaded bars", map[string]interface{}{"filename": filename, "count": len(bars)})
	return bars, nil
}

func equityReturns(curve []domain.EquityPoint) []float64 {
	if len(curve) < 2 {
		return nil
	}
	returns := make([]float64, 0, len(curve)-1)
	for i := 1; i < len(curve); i++ {
		r, _ := curve[i].Value.Sub(curve[i-1].Value).Div(curve[i-1].Value).Float64()
		returns = append(returns, r)
	}
	return returns
}
