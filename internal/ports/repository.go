package ports

import (
	"context"

	"github.com/baleen37/tv-strategy/internal/domain"
)

// ResultRepository stores finished backtest runs together with their trades.
type ResultRepository interface {
	// SaveResult persists a result and its trade list atomically.
	SaveResult(ctx context.Context, result *domain.BacktestResult, trades []*domain.Trade) error
	// FindResultByID retrieves a result by its run ID.
	// Returns nil, nil if not found.
	FindResultByID(ctx context.Context, id string) (*domain.BacktestResult, error)
	// FindAllResults retrieves all stored results, ordered by start date descending.
	FindAllResults(ctx context.Context) ([]*domain.BacktestResult, error)
	// FindTradesByResult retrieves the trades of a run, ordered by entry time.
	FindTradesByResult(ctx context.Context, resultID string) ([]*domain.Trade, error)
}
