package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Bar represents a single OHLCV sample for a fixed time interval.
type Bar struct {
	Timestamp time.Time       // Start time of the interval
	Symbol    string          // Trading symbol (e.g., "BTC/USDT")
	Interval  string          // Bar interval (e.g., "1m", "1h")
	Open      decimal.Decimal // Opening price
	High      decimal.Decimal // Highest price
	Low       decimal.Decimal // Lowest price
	Close     decimal.Decimal // Closing price
	Volume    decimal.Decimal // Traded volume
}

// Validate checks OHLC consistency (low <= open,close <= high).
// Data suppliers call this before handing bars to the engine; the engine
// itself assumes validated input.
func (b *Bar) Validate() error {
	if b.Low.GreaterThan(b.Open) || b.Open.GreaterThan(b.High) ||
		b.Low.GreaterThan(b.Close) || b.Close.GreaterThan(b.High) {
		return fmt.Errorf("bar at %s: invalid OHLC relationships (O=%s H=%s L=%s C=%s)",
			b.Timestamp.Format(time.RFC3339), b.Open, b.High, b.Low, b.Close)
	}
	return nil
}
