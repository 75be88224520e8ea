package indicators

import (
	"fmt"
	"math"
)

// RSIConfig holds configuration for the RSI indicator.
type RSIConfig struct {
	IndicatorConfig
}

// RSI implements the Relative Strength Index over a rolling mean of gains
// and losses: rsi = 100 - 100/(1 + avg_gain/avg_loss).
type RSI struct {
	config RSIConfig
}

// NewRSI creates a new RSI indicator instance.
func NewRSI(config RSIConfig) (*RSI, error) {
	if config.Period < 1 {
		return nil, fmt.Errorf("RSI period must be at least 1, got %d", config.Period)
	}
	return &RSI{config: config}, nil
}

// Name returns the name of the indicator.
func (r *RSI) Name() string {
	return "RSI"
}

// RequiredDataPoints returns the minimum number of close prices needed
// before the series produces a defined value.
func (r *RSI) RequiredDataPoints() int {
	return r.config.Period + 1
}

// Series computes the RSI for each close price. The first period-1 values
// are NaN while the rolling window fills. The leading window entry is the
// zero change at index 0, so the first defined value uses period-1 real
// price changes.
//
// Division follows IEEE float semantics: an all-gain window yields
// avg_loss=0 and rsi=100, a flat window yields 0/0 and a NaN rsi.
func (r *RSI) Series(closes []float64) []float64 {
	n := len(closes)
	out := make([]float64, n)
	period := r.config.Period

	gains := make([]float64, n)
	losses := make([]float64, n)
	for i := 1; i < n; i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			gains[i] = change
		} else {
			losses[i] = -change
		}
	}

	for i := 0; i < n && i < period-1; i++ {
		out[i] = math.NaN()
	}

	for i := period - 1; i < n; i++ {
		var gainSum, lossSum float64
		for j := i - period + 1; j <= i; j++ {
			gainSum += gains[j]
			lossSum += losses[j]
		}
		avgGain := gainSum / float64(period)
		avgLoss := lossSum / float64(period)

		rs := avgGain / avgLoss
		out[i] = 100 - 100/(1+rs)
	}

	return out
}
