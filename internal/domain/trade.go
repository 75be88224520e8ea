package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Trade records the lifecycle of one position. It is created open by the
// portfolio's buy, mutated exactly once by the portfolio's sell, and never
// touched again after it is closed.
//
// Money fields (prices, quantity, commissions, pnl) use decimal arithmetic
// so the ledger stays exact across many trades; PNLPercent is a derived
// read-only ratio and stays a float.
type Trade struct {
	ID              string          // Unique identifier, assigned by the portfolio
	Symbol          string          // Trading symbol (e.g., "BTC/USDT")
	Side            Side            // long or short
	EntryPrice      decimal.Decimal // Price at which the position was entered
	ExitPrice       decimal.Decimal // Price at which the position was exited (zero while open)
	Quantity        decimal.Decimal // Position size, always > 0
	EntryTime       time.Time       // Timestamp of entry
	ExitTime        time.Time       // Timestamp of exit (zero value while open)
	StopLoss        decimal.Decimal // Stop-loss price (zero when not set)
	TakeProfit      decimal.Decimal // Take-profit price (zero when not set)
	Status          TradeStatus     // open or closed
	EntryCommission decimal.Decimal // Commission paid on entry
	ExitCommission  decimal.Decimal // Commission paid on exit (zero until closed)
	PNL             decimal.Decimal // Realized profit/loss (set on close)
	PNLPercent      float64         // PNL relative to entry value, in percent
	ExitReason      ExitReason      // signal, stop_loss or take_profit once closed
	Duration        time.Duration   // ExitTime - EntryTime once closed
}

// IsOpen reports whether the trade is still open.
func (t *Trade) IsOpen() bool {
	return t.Status == StatusOpen
}

// IsClosed reports whether the trade has been closed. A closed trade has
// exit price, exit time and pnl set and must not be mutated again.
func (t *Trade) IsClosed() bool {
	return t.Status == StatusClosed
}
