package ports

import (
	"context"
	"time"

	"github.com/baleen37/tv-strategy/internal/domain"
)

// MarketDataProvider supplies validated OHLCV bar sequences with
// monotonically increasing timestamps. The backtest engine consumes its
// output without re-validating.
type MarketDataProvider interface {
	// GetKlines fetches the most recent bars for a symbol, up to limit.
	GetKlines(ctx context.Context, symbol, interval string, limit int) ([]*domain.Bar, error)
	// GetKlinesRange fetches all bars between start and end, paging as needed.
	GetKlinesRange(ctx context.Context, symbol, interval string, start, end time.Time) ([]*domain.Bar, error)
}
