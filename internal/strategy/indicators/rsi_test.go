package indicators

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRSI(t *testing.T, period int) *RSI {
	t.Helper()
	rsi, err := NewRSI(RSIConfig{IndicatorConfig{Period: period}})
	require.NoError(t, err)
	return rsi
}

func TestNewRSI(t *testing.T) {
	tests := []struct {
		name    string
		period  int
		wantErr bool
	}{
		{name: "valid period", period: 14},
		{name: "minimum period", period: 1},
		{name: "zero period", period: 0, wantErr: true},
		{name: "negative period", period: -5, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rsi, err := NewRSI(RSIConfig{IndicatorConfig{Period: tt.period}})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "RSI", rsi.Name())
			assert.Equal(t, tt.period+1, rsi.RequiredDataPoints())
		})
	}
}

func TestRSISeriesWarmup(t *testing.T) {
	rsi := newTestRSI(t, 5)
	closes := []float64{100, 101, 102, 103, 104, 105, 106}

	out := rsi.Series(closes)
	require.Len(t, out, len(closes))

	// The first period-1 values are NaN while the window fills.
	for i := 0; i < 4; i++ {
		assert.True(t, math.IsNaN(out[i]), "index %d = %f", i, out[i])
	}
	for i := 4; i < len(out); i++ {
		assert.False(t, math.IsNaN(out[i]), "index %d", i)
	}
}

func TestRSISeriesMonotonic(t *testing.T) {
	rsi := newTestRSI(t, 5)

	up := rsi.Series([]float64{100, 101, 102, 103, 104, 105, 106, 107})
	down := rsi.Series([]float64{107, 106, 105, 104, 103, 102, 101, 100})

	// All gains: avg_loss is 0 and the rsi saturates at 100.
	assert.Equal(t, 100.0, up[len(up)-1])
	// All losses: avg_gain is 0 and the rsi is pinned at 0.
	assert.Equal(t, 0.0, down[len(down)-1])
}

func TestRSISeriesFlatWindow(t *testing.T) {
	rsi := newTestRSI(t, 3)
	out := rsi.Series([]float64{50, 50, 50, 50, 50})

	// 0/0 under IEEE rules, so a flat window has no defined rsi.
	for i := 2; i < len(out); i++ {
		assert.True(t, math.IsNaN(out[i]), "index %d = %f", i, out[i])
	}
}

func TestRSISeriesBounds(t *testing.T) {
	rsi := newTestRSI(t, 4)
	closes := []float64{44, 47, 45, 50, 46, 52, 48, 55, 51, 49}

	out := rsi.Series(closes)
	for i, v := range out {
		if math.IsNaN(v) {
			continue
		}
		assert.GreaterOrEqual(t, v, 0.0, "index %d", i)
		assert.LessOrEqual(t, v, 100.0, "index %d", i)
	}
}

func TestRSISeriesKnownValue(t *testing.T) {
	rsi := newTestRSI(t, 2)

	// changes: [0, +2, -1]; window at index 2 holds [+2, -1]:
	// avg_gain=1, avg_loss=0.5, rs=2, rsi = 100 - 100/3
	out := rsi.Series([]float64{10, 12, 11})
	assert.InDelta(t, 100-100.0/3, out[2], 1e-9)
}
