package strategy

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baleen37/tv-strategy/internal/adapters/logger"
	"github.com/baleen37/tv-strategy/internal/domain"
	"github.com/baleen37/tv-strategy/internal/ports"
)

func testLogger() ports.Logger {
	return logger.NewStdLogger(logger.LevelError)
}

func barsFromCloses(closes []float64) []*domain.Bar {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]*domain.Bar, len(closes))
	for i, c := range closes {
		price := decimal.NewFromFloat(c)
		bars[i] = &domain.Bar{
			Timestamp: start.Add(time.Duration(i) * time.Hour),
			Symbol:    "BTC/USDT",
			Interval:  "1h",
			Open:      price,
			High:      price,
			Low:       price,
			Close:     price,
			Volume:    decimal.NewFromInt(100),
		}
	}
	return bars
}

func TestNewRSIStrategy(t *testing.T) {
	tests := []struct {
		name    string
		cfg     RSIStrategyConfig
		wantErr bool
	}{
		{name: "defaults", cfg: RSIStrategyConfig{}},
		{name: "explicit config", cfg: RSIStrategyConfig{Period: 7, Oversold: 25, Overbought: 75, StopLossPct: 0.01, TakeProfitPct: 0.05}},
		{name: "negative period", cfg: RSIStrategyConfig{Period: -1}, wantErr: true},
		{name: "inverted thresholds", cfg: RSIStrategyConfig{Oversold: 70, Overbought: 30}, wantErr: true},
		{name: "overbought above 100", cfg: RSIStrategyConfig{Overbought: 101}, wantErr: true},
		{name: "stop loss above one", cfg: RSIStrategyConfig{StopLossPct: 1.5}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewRSIStrategy(tt.cfg, testLogger())
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ports.ErrConfigurationError))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "RSIStrategy", s.Name())
		})
	}
}

func TestNewRSIStrategyRequiresLogger(t *testing.T) {
	_, err := NewRSIStrategy(RSIStrategyConfig{}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ports.ErrConfigurationError))
}

func TestRequiredDataPoints(t *testing.T) {
	s, err := NewRSIStrategy(RSIStrategyConfig{Period: 14}, testLogger())
	require.NoError(t, err)
	assert.Equal(t, 15, s.RequiredDataPoints())
}

func TestGenerateSignalsWarmup(t *testing.T) {
	s, err := NewRSIStrategy(RSIStrategyConfig{Period: 5}, testLogger())
	require.NoError(t, err)

	bars := barsFromCloses([]float64{100, 101, 102, 101, 100, 99, 98})
	signals, err := s.GenerateSignals(context.Background(), bars)
	require.NoError(t, err)
	require.Len(t, signals, len(bars))

	// Undefined RSI classifies as hold with neutral confidence.
	for i := 0; i < 4; i++ {
		assert.Equal(t, domain.SignalHold, signals[i].Type, "index %d", i)
		assert.Equal(t, 0.0, signals[i].Strength, "index %d", i)
		assert.Equal(t, 0.5, signals[i].Confidence, "index %d", i)
	}
	assert.Equal(t, bars[0].Timestamp, signals[0].Timestamp)
}

func TestGenerateSignalsOversold(t *testing.T) {
	s, err := NewRSIStrategy(RSIStrategyConfig{Period: 5}, testLogger())
	require.NoError(t, err)

	// Strictly falling closes drive the RSI to 0, saturating the buy.
	bars := barsFromCloses([]float64{110, 109, 108, 107, 106, 105, 104})
	signals, err := s.GenerateSignals(context.Background(), bars)
	require.NoError(t, err)

	last := signals[len(signals)-1]
	assert.Equal(t, domain.SignalBuy, last.Type)
	assert.InDelta(t, 1.0, last.Strength, 1e-9)
	assert.InDelta(t, 0.9, last.Confidence, 1e-9)
}

func TestGenerateSignalsOverbought(t *testing.T) {
	s, err := NewRSIStrategy(RSIStrategyConfig{Period: 5}, testLogger())
	require.NoError(t, err)

	// Strictly rising closes drive the RSI to 100, saturating the sell.
	bars := barsFromCloses([]float64{100, 101, 102, 103, 104, 105, 106})
	signals, err := s.GenerateSignals(context.Background(), bars)
	require.NoError(t, err)

	last := signals[len(signals)-1]
	assert.Equal(t, domain.SignalSell, last.Type)
	assert.InDelta(t, -1.0, last.Strength, 1e-9)
	assert.InDelta(t, 0.9, last.Confidence, 1e-9)
}

func TestRiskLevels(t *testing.T) {
	s, err := NewRSIStrategy(RSIStrategyConfig{StopLossPct: 0.02, TakeProfitPct: 0.04}, testLogger())
	require.NoError(t, err)

	entry := decimal.NewFromInt(47000)

	sl := s.StopLoss(entry, domain.SideLong)
	tp := s.TakeProfit(entry, domain.SideLong)
	assert.True(t, sl.Equal(decimal.NewFromInt(46060)), "stop loss %s", sl)
	assert.True(t, tp.Equal(decimal.NewFromInt(48880)), "take profit %s", tp)

	sl = s.StopLoss(entry, domain.SideShort)
	tp = s.TakeProfit(entry, domain.SideShort)
	assert.True(t, sl.Equal(decimal.NewFromInt(47940)), "stop loss %s", sl)
	assert.True(t, tp.Equal(decimal.NewFromInt(45120)), "take profit %s", tp)
}
