package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EquityPoint is one sample of the mark-to-market equity curve.
type EquityPoint struct {
	Time     time.Time
	Value    decimal.Decimal // Portfolio value at the bar close
	Drawdown float64         // Decline from the running peak, always <= 0
}
