package analytics

import (
	"time"

	"github.com/baleen37/tv-strategy/internal/domain"
)

// TradeStats aggregates a trade collection.
type TradeStats struct {
	TotalTrades   int
	WinningTrades int
	LosingTrades  int
	WinRate       float64
	AvgWin        float64
	AvgLoss       float64
	BestTrade     *domain.Trade // highest positive pnl, nil when none
	WorstTrade    *domain.Trade // lowest pnl overall, nil when no trades
	AvgDuration   time.Duration
}

// DrawdownStats describes the drawdown segments of an equity curve.
type DrawdownStats struct {
	MaxDrawdown         float64 // deepest decline, always <= 0
	AvgDrawdown         float64 // mean over all negative drawdown points
	DrawdownPeriods     int     // number of maximal contiguous runs below the peak
	MaxDrawdownDuration time.Duration
}

// TradeAnalyzer performs post-hoc aggregate analysis of closed trades and
// equity curves.
type TradeAnalyzer struct{}

// NewTradeAnalyzer creates a trade analyzer.
func NewTradeAnalyzer() *TradeAnalyzer {
	return &TradeAnalyzer{}
}

// AnalyzeTrades summarizes the collection. An empty input yields all-zero
// counts, nil best/worst trades and a zero average duration.
func (a *TradeAnalyzer) AnalyzeTrades(trades []*domain.Trade) TradeStats {
	if len(trades) == 0 {
		return TradeStats{}
	}

	var winning, losing []*domain.Trade
	for _, t := range trades {
		switch {
		case t.PNL.IsPositive():
			winning = append(winning, t)
		case t.PNL.IsNegative():
			losing = append(losing, t)
		}
	}

	stats := TradeStats{
		TotalTrades:   len(trades),
		WinningTrades: len(winning),
		LosingTrades:  len(losing),
		WinRate:       float64(len(winning)) / float64(len(trades)),
		BestTrade:     a.FindBestTrade(trades),
		WorstTrade:    a.FindWorstTrade(trades),
		AvgDuration:   a.CalculateAverageDuration(trades),
	}

	if len(winning) > 0 {
		var sum float64
		for _, t := range winning {
			pnl, _ := t.PNL.Float64()
			sum += pnl
		}
		stats.AvgWin = sum / float64(len(winning))
	}
	if len(losing) > 0 {
		var sum float64
		for _, t := range losing {
			pnl, _ := t.PNL.Float64()
			sum += pnl
		}
		stats.AvgLoss = sum / float64(len(losing))
	}

	return stats
}

// FindBestTrade returns the trade with the highest positive pnl, or nil
// when no trade made money.
func (a *TradeAnalyzer) FindBestTrade(trades []*domain.Trade) *domain.Trade {
	var best *domain.Trade
	for _, t := range trades {
		if !t.PNL.IsPositive() {
			continue
		}
		if best == nil || t.PNL.GreaterThan(best.PNL) {
			best = t
		}
	}
	return best
}

// FindWorstTrade returns the trade with the lowest pnl. Open trades carry
// zero pnl and compare as such. Nil when the collection is empty.
func (a *TradeAnalyzer) FindWorstTrade(trades []*domain.Trade) *domain.Trade {
	var worst *domain.Trade
	for _, t := range trades {
		if worst == nil || t.PNL.LessThan(worst.PNL) {
			worst = t
		}
	}
	return worst
}

// CalculateAverageDuration averages trade durations, preferring the stored
// duration and falling back to exit minus entry time. Trades with neither
// are skipped; zero when none have a duration.
func (a *TradeAnalyzer) CalculateAverageDuration(trades []*domain.Trade) time.Duration {
	var total time.Duration
	count := 0
	for _, t := range trades {
		switch {
		case t.Duration != 0:
			total += t.Duration
			count++
		case !t.EntryTime.IsZero() && !t.ExitTime.IsZero():
			total += t.ExitTime.Sub(t.EntryTime)
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return total / time.Duration(count)
}

// AnalyzeDrawdownPeriods segments the equity curve into maximal contiguous
// runs below the running peak. Duration of the longest run comes from the
// point timestamps; with an untimed series it stays zero.
func (a *TradeAnalyzer) AnalyzeDrawdownPeriods(equityCurve []domain.EquityPoint) DrawdownStats {
	if len(equityCurve) == 0 {
		return DrawdownStats{}
	}

	drawdowns := make([]float64, len(equityCurve))
	peak := equityCurve[0].Value
	for i, pt := range equityCurve {
		if pt.Value.GreaterThan(peak) {
			peak = pt.Value
		}
		dd, _ := pt.Value.Sub(peak).Div(peak).Float64()
		drawdowns[i] = dd
	}

	stats := DrawdownStats{}
	var negative []float64
	start := -1
	closeRun := func(end int) {
		stats.DrawdownPeriods++
		duration := equityCurve[end].Time.Sub(equityCurve[start].Time)
		if duration > stats.MaxDrawdownDuration {
			stats.MaxDrawdownDuration = duration
		}
		start = -1
	}

	for i, dd := range drawdowns {
		if dd < stats.MaxDrawdown {
			stats.MaxDrawdown = dd
		}
		if dd < 0 {
			negative = append(negative, dd)
			if start < 0 {
				start = i
			}
		} else if start >= 0 {
			closeRun(i - 1)
		}
	}
	if start >= 0 {
		closeRun(len(drawdowns) - 1)
	}

	if len(negative) > 0 {
		stats.AvgDrawdown = mean(negative)
	}
	return stats
}
