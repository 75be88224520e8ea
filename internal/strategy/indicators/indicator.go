package indicators

// SeriesIndicator computes one indicator value per input sample. Positions
// where the indicator is not yet defined hold NaN.
type SeriesIndicator interface {
	// Series computes the indicator over the given close prices.
	Series(closes []float64) []float64

	// RequiredDataPoints returns the minimum number of samples needed
	// before the indicator produces a defined value.
	RequiredDataPoints() int

	// Name returns the name of the indicator.
	Name() string
}

// IndicatorConfig holds common configuration for indicators.
type IndicatorConfig struct {
	Period int
}
