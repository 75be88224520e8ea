package analytics

import "math"

// RiskMetrics calculates quantile-based risk measures over return series.
type RiskMetrics struct{}

// NewRiskMetrics creates a risk metrics calculator.
func NewRiskMetrics() *RiskMetrics {
	return &RiskMetrics{}
}

// VaR is the empirical quantile of the return distribution at the given
// confidence level (e.g., 0.05 for 95% VaR); 0 when the series is empty.
func (r *RiskMetrics) VaR(returns []float64, confidenceLevel float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	return quantile(returns, confidenceLevel)
}

// CVaR is the mean of the returns at or below the VaR threshold; 0 when
// the series is empty.
func (r *RiskMetrics) CVaR(returns []float64, confidenceLevel float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	threshold := r.VaR(returns, confidenceLevel)
	var tail []float64
	for _, v := range returns {
		if v <= threshold {
			tail = append(tail, v)
		}
	}
	return mean(tail)
}

// Volatility is the annualized sample standard deviation of the returns;
// 0 when the series is empty.
func (r *RiskMetrics) Volatility(returns []float64, periodsPerYear int) float64 {
	if len(returns) == 0 {
		return 0
	}
	return stdDev(returns) * math.Sqrt(float64(periodsPerYear))
}
