package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BacktestResult summarizes one backtest run. It is built once by
// NewBacktestResult and treated as immutable afterwards.
type BacktestResult struct {
	ID             string          // Run identity
	StrategyID     string          // Name of the strategy that produced the run
	Symbol         string          // Symbol the run was executed against
	InitialCapital decimal.Decimal // Capital at run start
	FinalCapital   decimal.Decimal // Portfolio value at run end
	TotalReturn    float64         // (final - initial) / initial, derived at construction
	StartDate      time.Time       // Timestamp of the first bar
	EndDate        time.Time       // Timestamp of the last bar
	TotalTrades    int             // Number of executed trade events (opens and closes)
	WinRate        float64         // winning closed trades / total closed trades
	MaxDrawdown    float64         // Realized-PnL drawdown, always <= 0
	SharpeRatio    float64
	ProfitFactor   float64
}

// NewBacktestResult finalizes a result. A fresh run ID is assigned when none
// is given, and TotalReturn is derived once both capital figures are known.
func NewBacktestResult(r BacktestResult) *BacktestResult {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if !r.InitialCapital.IsZero() {
		r.TotalReturn, _ = r.FinalCapital.Sub(r.InitialCapital).Div(r.InitialCapital).Float64()
	}
	return &r
}
