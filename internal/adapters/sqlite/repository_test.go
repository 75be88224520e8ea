package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baleen37/tv-strategy/internal/adapters/logger"
	"github.com/baleen37/tv-strategy/internal/domain"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	repo, err := NewRepository(Config{
		DBPath: filepath.Join(t.TempDir(), "backtests.db"),
		Logger: logger.NewStdLogger(logger.LevelError),
	})
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func testResult(id string, start time.Time) *domain.BacktestResult {
	return domain.NewBacktestResult(domain.BacktestResult{
		ID:             id,
		StrategyID:     "RSIStrategy",
		Symbol:         "BTC/USDT",
		InitialCapital: decimal.NewFromInt(10000),
		FinalCapital:   decimal.NewFromFloat(10890.5),
		StartDate:      start,
		EndDate:        start.Add(30 * 24 * time.Hour),
		TotalTrades:    2,
		WinRate:        1.0,
		MaxDrawdown:    -0.043,
		SharpeRatio:    1.21,
		ProfitFactor:   5.0,
	})
}

func TestNewRepositoryRequiresLogger(t *testing.T) {
	_, err := NewRepository(Config{DBPath: filepath.Join(t.TempDir(), "x.db")})
	assert.Error(t, err)
}

func TestSaveAndFindResult(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	saved := testResult("run-1", start)
	require.NoError(t, repo.SaveResult(ctx, saved, nil))

	found, err := repo.FindResultByID(ctx, "run-1")
	require.NoError(t, err)
	require.NotNil(t, found)

	assert.Equal(t, saved.ID, found.ID)
	assert.Equal(t, saved.StrategyID, found.StrategyID)
	assert.Equal(t, saved.Symbol, found.Symbol)
	assert.True(t, found.InitialCapital.Equal(saved.InitialCapital))
	assert.True(t, found.FinalCapital.Equal(saved.FinalCapital))
	assert.InDelta(t, saved.TotalReturn, found.TotalReturn, 1e-12)
	assert.Equal(t, saved.TotalTrades, found.TotalTrades)
	assert.Equal(t, saved.WinRate, found.WinRate)
	assert.Equal(t, saved.MaxDrawdown, found.MaxDrawdown)
	assert.Equal(t, saved.SharpeRatio, found.SharpeRatio)
	assert.Equal(t, saved.ProfitFactor, found.ProfitFactor)
}

func TestFindResultByIDMissing(t *testing.T) {
	repo := newTestRepository(t)

	found, err := repo.FindResultByID(context.Background(), "no-such-run")
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestFindAllResultsNewestFirst(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	older := testResult("run-old", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	newer := testResult("run-new", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, repo.SaveResult(ctx, older, nil))
	require.NoError(t, repo.SaveResult(ctx, newer, nil))

	results, err := repo.FindAllResults(ctx)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "run-new", results[0].ID)
	assert.Equal(t, "run-old", results[1].ID)
}

func TestSaveAndFindTrades(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	entry := time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC)

	closed := &domain.Trade{
		ID:              "trade_1",
		Symbol:          "BTC/USDT",
		Side:            domain.SideLong,
		EntryPrice:      decimal.NewFromInt(47000),
		ExitPrice:       decimal.NewFromInt(48000),
		Quantity:        decimal.NewFromFloat(0.1),
		EntryTime:       entry,
		ExitTime:        entry.Add(6 * time.Hour),
		StopLoss:        decimal.NewFromInt(46060),
		TakeProfit:      decimal.NewFromInt(48880),
		Status:          domain.StatusClosed,
		EntryCommission: decimal.NewFromFloat(4.7),
		ExitCommission:  decimal.NewFromFloat(4.8),
		PNL:             decimal.NewFromFloat(90.5),
		PNLPercent:      1.926,
		ExitReason:      domain.ExitReasonSignal,
	}
	open := &domain.Trade{
		ID:              "trade_2",
		Symbol:          "BTC/USDT",
		Side:            domain.SideLong,
		EntryPrice:      decimal.NewFromInt(45000),
		Quantity:        decimal.NewFromFloat(0.2),
		EntryTime:       entry.Add(12 * time.Hour),
		Status:          domain.StatusOpen,
		EntryCommission: decimal.NewFromInt(9),
	}

	result := testResult("run-trades", entry)
	require.NoError(t, repo.SaveResult(ctx, result, []*domain.Trade{closed, open}))

	trades, err := repo.FindTradesByResult(ctx, "run-trades")
	require.NoError(t, err)
	require.Len(t, trades, 2)

	// Entry order.
	got := trades[0]
	assert.Equal(t, "trade_1", got.ID)
	assert.Equal(t, domain.SideLong, got.Side)
	assert.Equal(t, domain.StatusClosed, got.Status)
	assert.Equal(t, domain.ExitReasonSignal, got.ExitReason)
	assert.True(t, got.EntryPrice.Equal(closed.EntryPrice))
	assert.True(t, got.ExitPrice.Equal(closed.ExitPrice))
	assert.True(t, got.Quantity.Equal(closed.Quantity))
	assert.True(t, got.StopLoss.Equal(closed.StopLoss))
	assert.True(t, got.TakeProfit.Equal(closed.TakeProfit))
	assert.True(t, got.PNL.Equal(closed.PNL))
	assert.InDelta(t, closed.PNLPercent, got.PNLPercent, 1e-12)
	assert.True(t, got.EntryTime.Equal(closed.EntryTime))
	assert.True(t, got.ExitTime.Equal(closed.ExitTime))
	assert.Equal(t, 6*time.Hour, got.Duration)

	// Open trades keep their exit fields unset.
	got = trades[1]
	assert.Equal(t, "trade_2", got.ID)
	assert.Equal(t, domain.StatusOpen, got.Status)
	assert.True(t, got.ExitPrice.IsZero())
	assert.True(t, got.PNL.IsZero())
	assert.True(t, got.ExitTime.IsZero())
	assert.Equal(t, domain.ExitReason(""), got.ExitReason)
}

func TestFindTradesByResultEmpty(t *testing.T) {
	repo := newTestRepository(t)

	trades, err := repo.FindTradesByResult(context.Background(), "run-without-trades")
	require.NoError(t, err)
	assert.Empty(t, trades)
}

func TestSaveResultDuplicateIDFails(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, repo.SaveResult(ctx, testResult("dup", start), nil))
	assert.Error(t, repo.SaveResult(ctx, testResult("dup", start), nil))
}
