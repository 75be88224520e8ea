// Package backtest drives a portfolio through a historical bar sequence
// using strategy signals and a stop-loss/take-profit state machine.
package backtest

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/baleen37/tv-strategy/internal/domain"
	"github.com/baleen37/tv-strategy/internal/portfolio"
	"github.com/baleen37/tv-strategy/internal/ports"
)

// positionSizeFraction of available cash is committed when a buy signal
// fires; the quantity is rounded half-up to three decimal places.
var positionSizeFraction = decimal.NewFromFloat(0.9)

// Config holds configuration for a backtest run.
type Config struct {
	InitialCapital decimal.Decimal
	CommissionRate decimal.Decimal // defaults to portfolio.DefaultCommissionRate when zero
	Logger         ports.Logger
}

// Engine processes bars strictly sequentially against a single portfolio.
// One engine serves one run; concurrent runs must each create their own.
// Given identical bars, strategy and parameters the engine produces an
// identical trade sequence and metrics: nothing here reads the clock or
// any external state.
type Engine struct {
	strategy    ports.Strategy
	portfolio   *portfolio.Portfolio
	logger      ports.Logger
	equityCurve []domain.EquityPoint
	equityPeak  decimal.Decimal
}

// New creates an engine for one backtest run.
func New(strategy ports.Strategy, cfg Config) (*Engine, error) {
	if strategy == nil {
		return nil, fmt.Errorf("strategy is required: %w", ports.ErrConfigurationError)
	}
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required: %w", ports.ErrConfigurationError)
	}
	if !cfg.InitialCapital.IsPositive() {
		return nil, fmt.Errorf("initial capital must be positive, got %s: %w",
			cfg.InitialCapital, ports.ErrConfigurationError)
	}
	rate := cfg.CommissionRate
	if rate.IsZero() {
		rate = portfolio.DefaultCommissionRate
	}

	return &Engine{
		strategy:  strategy,
		portfolio: portfolio.New(cfg.InitialCapital, rate),
		logger:    cfg.Logger,
	}, nil
}

// Portfolio exposes the ledger driven by this engine.
func (e *Engine) Portfolio() *portfolio.Portfolio {
	return e.portfolio
}

// EquityCurve returns the mark-to-market equity samples recorded during the
// run, one per bar.
func (e *Engine) EquityCurve() []domain.EquityPoint {
	return e.equityCurve
}

// Run executes a full backtest over the bar sequence and returns the run
// summary. Bars must be ordered by strictly increasing timestamp; the
// engine does not re-validate them.
func (e *Engine) Run(ctx context.Context, bars []*domain.Bar, symbol string) (*domain.BacktestResult, error) {
	if len(bars) == 0 {
		return nil, fmt.Errorf("no bars to backtest: %w", ports.ErrInvalidRequest)
	}

	signals, err := e.strategy.GenerateSignals(ctx, bars)
	if err != nil {
		return nil, fmt.Errorf("strategy %s failed to generate signals: %w", e.strategy.Name(), err)
	}
	if len(signals) != len(bars) {
		return nil, fmt.Errorf("strategy %s produced %d signals for %d bars: %w",
			e.strategy.Name(), len(signals), len(bars), ports.ErrInvalidRequest)
	}

	trades, err := e.ProcessSignals(ctx, signals, bars, symbol)
	if err != nil {
		return nil, err
	}

	result := domain.NewBacktestResult(domain.BacktestResult{
		StrategyID:     e.strategy.Name(),
		Symbol:         symbol,
		InitialCapital: e.portfolio.InitialCapital(),
		FinalCapital:   e.portfolio.TotalValue(),
		StartDate:      bars[0].Timestamp,
		EndDate:        bars[len(bars)-1].Timestamp,
		TotalTrades:    len(trades),
		WinRate:        e.winRate(),
		MaxDrawdown:    e.RealizedMaxDrawdown(),
	})

	e.logger.Info(ctx, "backtest finished", map[string]interface{}{
		"run":         result.ID,
		"strategy":    result.StrategyID,
		"symbol":      symbol,
		"trades":      result.TotalTrades,
		"winRate":     result.WinRate,
		"totalReturn": result.TotalReturn,
	})
	return result, nil
}

// ProcessSignals applies the signal sequence bar by bar and returns the
// ordered trade-event list (every executed open and close, in execution
// order). Per bar:
//
//  1. A buy signal opens a position only when none is open.
//  2. A sell signal closes every open position at the bar close.
//  3. Positions still open are then checked against their protective
//     levels, stop-loss before take-profit; a position closes at most
//     once per bar.
func (e *Engine) ProcessSignals(ctx context.Context, signals []domain.Signal, bars []*domain.Bar, symbol string) ([]*domain.Trade, error) {
	riskLeveler, hasRiskLevels := e.strategy.(ports.RiskLeveler)

	var executed []*domain.Trade
	for i, sig := range signals {
		price := bars[i].Close

		switch {
		case sig.Type == domain.SignalBuy && len(e.portfolio.OpenPositions()) == 0:
			quantity := e.portfolio.Cash().Mul(positionSizeFraction).Div(price).Round(3)
			if !quantity.IsPositive() {
				break
			}

			var stopLoss, takeProfit decimal.Decimal
			if hasRiskLevels {
				stopLoss = riskLeveler.StopLoss(price, domain.SideLong)
				takeProfit = riskLeveler.TakeProfit(price, domain.SideLong)
			}

			trade, err := e.portfolio.Buy(symbol, price, quantity, sig.Timestamp, stopLoss, takeProfit)
			if err != nil {
				if errors.Is(err, ports.ErrInsufficientFunds) {
					e.logger.Debug(ctx, "buy signal skipped, insufficient funds", map[string]interface{}{
						"bar":   i,
						"price": price.String(),
					})
					break
				}
				return nil, fmt.Errorf("buy at bar %d: %w", i, err)
			}
			executed = append(executed, trade)

		case sig.Type == domain.SignalSell && len(e.portfolio.OpenPositions()) > 0:
			for _, open := range e.portfolio.OpenPositions() {
				closed, err := e.portfolio.Sell(open.ID, price, sig.Timestamp, domain.ExitReasonSignal)
				if err != nil {
					return nil, fmt.Errorf("sell at bar %d: %w", i, err)
				}
				executed = append(executed, closed)
			}
		}

		closed, err := e.applyRiskLevels(ctx, price, sig, i)
		if err != nil {
			return nil, err
		}
		executed = append(executed, closed...)

		e.recordEquity(bars[i], symbol, price)
	}

	return executed, nil
}

// applyRiskLevels sweeps positions still open after the signal was handled.
// Stop-loss is evaluated before take-profit; when both bounds are crossed
// on the same bar the stop-loss wins.
func (e *Engine) applyRiskLevels(ctx context.Context, price decimal.Decimal, sig domain.Signal, bar int) ([]*domain.Trade, error) {
	var executed []*domain.Trade
	for _, open := range e.portfolio.OpenPositions() {
		switch {
		case !open.StopLoss.IsZero() && price.LessThanOrEqual(open.StopLoss):
			exitPrice := decimal.Min(price, open.StopLoss)
			closed, err := e.portfolio.Sell(open.ID, exitPrice, sig.Timestamp, domain.ExitReasonStopLoss)
			if err != nil {
				return nil, fmt.Errorf("stop-loss at bar %d: %w", bar, err)
			}
			executed = append(executed, closed)

		case !open.TakeProfit.IsZero() && price.GreaterThanOrEqual(open.TakeProfit):
			exitPrice := decimal.Max(price, open.TakeProfit)
			closed, err := e.portfolio.Sell(open.ID, exitPrice, sig.Timestamp, domain.ExitReasonTakeProfit)
			if err != nil {
				return nil, fmt.Errorf("take-profit at bar %d: %w", bar, err)
			}
			executed = append(executed, closed)
		}
	}
	return executed, nil
}

func (e *Engine) recordEquity(bar *domain.Bar, symbol string, price decimal.Decimal) {
	value := e.portfolio.CalculateTotalValue(map[string]decimal.Decimal{symbol: price})

	if e.equityPeak.LessThan(value) {
		e.equityPeak = value
	}
	dd, _ := value.Sub(e.equityPeak).Div(e.equityPeak).Float64()

	e.equityCurve = append(e.equityCurve, domain.EquityPoint{
		Time:     bar.Timestamp,
		Value:    value,
		Drawdown: dd,
	})
}

// winRate is the fraction of closed trades with positive pnl, 0 when no
// trade has closed.
func (e *Engine) winRate() float64 {
	closed := e.portfolio.ClosedTrades()
	if len(closed) == 0 {
		return 0
	}
	winning := 0
	for _, t := range closed {
		if t.PNL.IsPositive() {
			winning++
		}
	}
	return float64(winning) / float64(len(closed))
}

// RealizedMaxDrawdown computes the run's drawdown from the cumulative
// sequence of realized trade PnL only, not the full mark-to-market equity.
// PerformanceMetrics.MaxDrawdown answers the mark-to-market question; the
// two are deliberately distinct.
func (e *Engine) RealizedMaxDrawdown() float64 {
	initial, _ := e.portfolio.InitialCapital().Float64()

	var values []float64
	running := initial
	for _, t := range e.portfolio.ClosedTrades() {
		pnl, _ := t.PNL.Float64()
		running += pnl
		values = append(values, running)
	}
	if len(values) == 0 {
		return 0
	}

	peak := values[0]
	maxDD := 0.0
	for _, v := range values {
		if v > peak {
			peak = v
		}
		if dd := (v - peak) / peak; dd < maxDD {
			maxDD = dd
		}
	}
	return maxDD
}
