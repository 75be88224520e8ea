package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/baleen37/tv-strategy/internal/domain"
)

// Strategy turns a bar sequence into an index-aligned sequence of signals:
// one signal per bar, in bar order.
type Strategy interface {
	// Name identifies the strategy in results and reports.
	Name() string

	// RequiredDataPoints returns the minimum number of bars the strategy
	// needs before it can produce a non-hold signal.
	RequiredDataPoints() int

	// GenerateSignals produces exactly len(bars) signals.
	GenerateSignals(ctx context.Context, bars []*domain.Bar) ([]domain.Signal, error)
}

// RiskLeveler is an optional capability a strategy may expose to supply
// stop-loss and take-profit prices for new positions. The engine discovers
// it with a type assertion; strategies without it simply open positions
// with no protective levels.
type RiskLeveler interface {
	// StopLoss returns the protective stop price for a position entered at
	// entryPrice on the given side.
	StopLoss(entryPrice decimal.Decimal, side domain.Side) decimal.Decimal

	// TakeProfit returns the profit target price for a position entered at
	// entryPrice on the given side.
	TakeProfit(entryPrice decimal.Decimal, side domain.Side) decimal.Decimal
}
