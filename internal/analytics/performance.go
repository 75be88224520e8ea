// Package analytics provides pure statistical functions over return series
// and trade collections. Nothing here mutates its input; degenerate input
// (empty or zero-variance series) yields a documented sentinel instead of
// an error: 0.0, or +Inf where mathematically implied.
package analytics

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/baleen37/tv-strategy/internal/domain"
)

// PerformanceMetrics calculates trading performance metrics relative to a
// fixed initial capital.
type PerformanceMetrics struct {
	initialCapital decimal.Decimal
}

// NewPerformanceMetrics creates a metrics calculator.
func NewPerformanceMetrics(initialCapital decimal.Decimal) *PerformanceMetrics {
	return &PerformanceMetrics{initialCapital: initialCapital}
}

// TotalReturn is (final - initial) / initial.
func (m *PerformanceMetrics) TotalReturn(finalValue decimal.Decimal) decimal.Decimal {
	return finalValue.Sub(m.initialCapital).Div(m.initialCapital)
}

// WinRate is the fraction of trades with positive pnl; 0 when no trades.
// Trades that never closed carry zero pnl and count against the rate.
func (m *PerformanceMetrics) WinRate(trades []*domain.Trade) float64 {
	if len(trades) == 0 {
		return 0
	}
	winning := 0
	for _, t := range trades {
		if t.PNL.IsPositive() {
			winning++
		}
	}
	return float64(winning) / float64(len(trades))
}

// SharpeRatio is mean(excess returns) / stdev(returns) * sqrt(periods per
// year), with the annual risk-free rate converted to a period rate.
// Returns 0 when the series is empty or has zero variance.
func (m *PerformanceMetrics) SharpeRatio(returns []float64, riskFreeRate float64, periodsPerYear int) float64 {
	sd := stdDev(returns)
	if len(returns) == 0 || sd == 0 {
		return 0
	}
	periodRiskFree := riskFreeRate / float64(periodsPerYear)
	excessMean := mean(returns) - periodRiskFree
	return excessMean / sd * math.Sqrt(float64(periodsPerYear))
}

// MaxDrawdown is the minimum of the drawdown series (v_t - M_t) / M_t where
// M_t is the running maximum of the value series. Always <= 0; 0 when the
// series is empty or never declines.
func (m *PerformanceMetrics) MaxDrawdown(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	peak := values[0]
	maxDD := 0.0
	for _, v := range values {
		if v > peak {
			peak = v
		}
		if dd := (v - peak) / peak; dd < maxDD {
			maxDD = dd
		}
	}
	return maxDD
}

// ProfitFactor is gross profit divided by gross loss. When there is no
// gross loss the result is +Inf if there is any profit, else 0. Empty
// trades yield 0.
func (m *PerformanceMetrics) ProfitFactor(trades []*domain.Trade) float64 {
	if len(trades) == 0 {
		return 0
	}
	var grossProfit, grossLoss float64
	for _, t := range trades {
		pnl, _ := t.PNL.Float64()
		if pnl > 0 {
			grossProfit += pnl
		} else if pnl < 0 {
			grossLoss -= pnl
		}
	}
	if grossLoss == 0 {
		if grossProfit > 0 {
			return math.Inf(1)
		}
		return 0
	}
	return grossProfit / grossLoss
}

// SortinoRatio is like Sharpe but its denominator is the standard deviation
// of returns below the period risk-free rate. When there are no such
// returns, or their deviation is zero, the result is +Inf if the mean
// excess return is positive, else 0. Empty returns yield 0.
func (m *PerformanceMetrics) SortinoRatio(returns []float64, riskFreeRate float64, periodsPerYear int) float64 {
	if len(returns) == 0 {
		return 0
	}
	periodRiskFree := riskFreeRate / float64(periodsPerYear)
	excessMean := mean(returns) - periodRiskFree

	var downside []float64
	for _, r := range returns {
		if r < periodRiskFree {
			downside = append(downside, r)
		}
	}
	downsideDev := stdDev(downside)
	if len(downside) == 0 || downsideDev == 0 {
		if excessMean > 0 {
			return math.Inf(1)
		}
		return 0
	}
	return excessMean / downsideDev * math.Sqrt(float64(periodsPerYear))
}
