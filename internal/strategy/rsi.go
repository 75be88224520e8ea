// Package strategy contains signal-generating trading strategies.
package strategy

import (
	"context"
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/baleen37/tv-strategy/internal/domain"
	"github.com/baleen37/tv-strategy/internal/ports"
	"github.com/baleen37/tv-strategy/internal/strategy/indicators"
)

// RSIStrategyConfig holds the RSI strategy parameters.
type RSIStrategyConfig struct {
	Period        int     // RSI calculation period (default 14)
	Oversold      float64 // Buy when RSI is at or below this level (default 30)
	Overbought    float64 // Sell when RSI is at or above this level (default 70)
	StopLossPct   float64 // Stop-loss distance from entry (default 0.02)
	TakeProfitPct float64 // Take-profit distance from entry (default 0.04)
}

// RSIStrategy buys oversold bars and sells overbought bars. It also
// implements ports.RiskLeveler so the engine can attach stop-loss and
// take-profit levels to positions it opens.
type RSIStrategy struct {
	cfg    RSIStrategyConfig
	rsi    *indicators.RSI
	logger ports.Logger
}

var _ ports.Strategy = (*RSIStrategy)(nil)
var _ ports.RiskLeveler = (*RSIStrategy)(nil)

// NewRSIStrategy validates the configuration, applies defaults for zero
// fields, and creates the strategy.
func NewRSIStrategy(cfg RSIStrategyConfig, logger ports.Logger) (*RSIStrategy, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is required: %w", ports.ErrConfigurationError)
	}
	if cfg.Period == 0 {
		cfg.Period = 14
	}
	if cfg.Oversold == 0 {
		cfg.Oversold = 30
	}
	if cfg.Overbought == 0 {
		cfg.Overbought = 70
	}
	if cfg.StopLossPct == 0 {
		cfg.StopLossPct = 0.02
	}
	if cfg.TakeProfitPct == 0 {
		cfg.TakeProfitPct = 0.04
	}

	if cfg.Period < 1 {
		return nil, fmt.Errorf("RSI period must be positive, got %d: %w", cfg.Period, ports.ErrConfigurationError)
	}
	if cfg.Oversold <= 0 || cfg.Overbought >= 100 || cfg.Oversold >= cfg.Overbought {
		return nil, fmt.Errorf("thresholds must satisfy 0 < oversold < overbought < 100, got %.1f/%.1f: %w",
			cfg.Oversold, cfg.Overbought, ports.ErrConfigurationError)
	}
	if cfg.StopLossPct < 0 || cfg.StopLossPct >= 1 || cfg.TakeProfitPct < 0 {
		return nil, fmt.Errorf("invalid stop-loss/take-profit percentages %.4f/%.4f: %w",
			cfg.StopLossPct, cfg.TakeProfitPct, ports.ErrConfigurationError)
	}

	rsi, err := indicators.NewRSI(indicators.RSIConfig{
		IndicatorConfig: indicators.IndicatorConfig{Period: cfg.Period},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create RSI indicator: %w", err)
	}

	return &RSIStrategy{cfg: cfg, rsi: rsi, logger: logger}, nil
}

// Name identifies the strategy in results and reports.
func (s *RSIStrategy) Name() string {
	return "RSIStrategy"
}

// RequiredDataPoints returns the minimum number of bars needed before the
// strategy produces a non-hold signal.
func (s *RSIStrategy) RequiredDataPoints() int {
	return s.rsi.RequiredDataPoints()
}

// GenerateSignals classifies every bar by its RSI value. Bars where the
// RSI is undefined produce a hold with confidence 0.5.
func (s *RSIStrategy) GenerateSignals(ctx context.Context, bars []*domain.Bar) ([]domain.Signal, error) {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close.InexactFloat64()
	}
	rsiValues := s.rsi.Series(closes)

	signals := make([]domain.Signal, len(bars))
	for i, bar := range bars {
		signals[i] = s.classify(bar, rsiValues[i])
	}

	s.logger.Debug(ctx, "signals generated", map[string]interface{}{
		"strategy": s.Name(),
		"bars":     len(bars),
	})
	return signals, nil
}

func (s *RSIStrategy) classify(bar *domain.Bar, rsi float64) domain.Signal {
	sig := domain.Signal{
		Timestamp:  bar.Timestamp,
		Type:       domain.SignalHold,
		Strength:   0,
		Confidence: 0.5,
	}

	switch {
	case math.IsNaN(rsi):
		// rolling window not filled yet
	case rsi <= s.cfg.Oversold:
		sig.Type = domain.SignalBuy
		sig.Strength = (s.cfg.Oversold - rsi) / s.cfg.Oversold
		sig.Confidence = math.Min(0.9, 0.5+sig.Strength)
	case rsi >= s.cfg.Overbought:
		sig.Type = domain.SignalSell
		sig.Strength = -(rsi - s.cfg.Overbought) / (100 - s.cfg.Overbought)
		sig.Confidence = math.Min(0.9, 0.5+math.Abs(sig.Strength))
	}

	return sig
}

// StopLoss returns entry*(1-pct) for longs and entry*(1+pct) for shorts.
func (s *RSIStrategy) StopLoss(entryPrice decimal.Decimal, side domain.Side) decimal.Decimal {
	if side == domain.SideLong {
		return entryPrice.Mul(decimal.NewFromFloat(1 - s.cfg.StopLossPct))
	}
	return entryPrice.Mul(decimal.NewFromFloat(1 + s.cfg.StopLossPct))
}

// TakeProfit returns entry*(1+pct) for longs and entry*(1-pct) for shorts.
func (s *RSIStrategy) TakeProfit(entryPrice decimal.Decimal, side domain.Side) decimal.Decimal {
	if side == domain.SideLong {
		return entryPrice.Mul(decimal.NewFromFloat(1 + s.cfg.TakeProfitPct))
	}
	return entryPrice.Mul(decimal.NewFromFloat(1 - s.cfg.TakeProfitPct))
}
