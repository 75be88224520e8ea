// Package portfolio implements the cash and position ledger driven by the
// backtest engine. All money amounts are decimal so the ledger stays exact
// across arbitrarily many trades; derived ratios are floats.
package portfolio

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/baleen37/tv-strategy/internal/domain"
	"github.com/baleen37/tv-strategy/internal/ports"
)

// Portfolio owns every Trade it creates. A trade id is in exactly one of
// the open or closed collections, never both. Cash is mutated only by Buy
// and Sell. A Portfolio must not be shared across concurrent backtests;
// each run owns its own instance.
type Portfolio struct {
	initialCapital decimal.Decimal
	cash           decimal.Decimal
	commissionRate decimal.Decimal
	openPositions  []*domain.Trade // insertion order = entry order
	closedTrades   []*domain.Trade // append-only, ordered by exit time
	tradeCounter   int
}

// DefaultCommissionRate is applied when no rate is configured (0.1%).
var DefaultCommissionRate = decimal.NewFromFloat(0.001)

// New creates a portfolio with the given starting capital and commission
// rate. The initial capital is fixed for the portfolio's lifetime.
func New(initialCapital, commissionRate decimal.Decimal) *Portfolio {
	return &Portfolio{
		initialCapital: initialCapital,
		cash:           initialCapital,
		commissionRate: commissionRate,
	}
}

// InitialCapital returns the capital the portfolio started with.
func (p *Portfolio) InitialCapital() decimal.Decimal { return p.initialCapital }

// Cash returns the currently available cash.
func (p *Portfolio) Cash() decimal.Decimal { return p.cash }

// CommissionRate returns the per-trade commission rate.
func (p *Portfolio) CommissionRate() decimal.Decimal { return p.commissionRate }

// OpenPositions returns the open trades in entry order. The slice is a
// copy, so callers may close positions while iterating it.
func (p *Portfolio) OpenPositions() []*domain.Trade {
	out := make([]*domain.Trade, len(p.openPositions))
	copy(out, p.openPositions)
	return out
}

// ClosedTrades returns the closed trades in exit order.
func (p *Portfolio) ClosedTrades() []*domain.Trade {
	out := make([]*domain.Trade, len(p.closedTrades))
	copy(out, p.closedTrades)
	return out
}

// PositionsValue is the value of all open positions marked at entry price.
func (p *Portfolio) PositionsValue() decimal.Decimal {
	value := decimal.Zero
	for _, t := range p.openPositions {
		value = value.Add(t.EntryPrice.Mul(t.Quantity))
	}
	return value
}

// TotalValue is cash plus open positions marked at entry price. Use
// CalculateTotalValue for a mark against current market prices.
func (p *Portfolio) TotalValue() decimal.Decimal {
	return p.cash.Add(p.PositionsValue())
}

// Returns is the portfolio return relative to initial capital.
func (p *Portfolio) Returns() float64 {
	r, _ := p.TotalValue().Sub(p.initialCapital).Div(p.initialCapital).Float64()
	return r
}

// Drawdown is the decline from the peak of initial capital and current
// total value, always <= 0.
func (p *Portfolio) Drawdown() float64 {
	total := p.TotalValue()
	peak := decimal.Max(p.initialCapital, total)
	dd, _ := total.Sub(peak).Div(peak).Float64()
	return dd
}

// Buy opens a long position. The total cost is price*quantity plus
// commission; when it exceeds available cash the buy fails with
// ports.ErrInsufficientFunds and the portfolio is left untouched (no
// partial fills). Multiple simultaneous positions on the same symbol are
// permitted. Pass a zero stopLoss or takeProfit to leave the level unset.
func (p *Portfolio) Buy(symbol string, price, quantity decimal.Decimal, timestamp time.Time, stopLoss, takeProfit decimal.Decimal) (*domain.Trade, error) {
	tradeValue := price.Mul(quantity)
	commission := tradeValue.Mul(p.commissionRate)
	totalCost := tradeValue.Add(commission)

	if totalCost.GreaterThan(p.cash) {
		return nil, fmt.Errorf("buy %s %s @ %s costs %s with %s available: %w",
			symbol, quantity, price, totalCost, p.cash, ports.ErrInsufficientFunds)
	}

	p.tradeCounter++
	trade := &domain.Trade{
		ID:              fmt.Sprintf("trade_%d", p.tradeCounter),
		Symbol:          symbol,
		Side:            domain.SideLong,
		EntryPrice:      price,
		Quantity:        quantity,
		EntryTime:       timestamp,
		StopLoss:        stopLoss,
		TakeProfit:      takeProfit,
		Status:          domain.StatusOpen,
		EntryCommission: commission,
	}

	p.cash = p.cash.Sub(totalCost)
	p.openPositions = append(p.openPositions, trade)

	return trade, nil
}

// Sell closes the open position identified by tradeID at the given price.
// An unknown id fails with ports.ErrTradeNotFound and mutates nothing.
//
// Commission is deducted exactly once per leg: the entry commission was
// taken from cash at buy time and both commissions are embedded in pnl, so
// the round-trip cash delta always equals the trade's pnl.
func (p *Portfolio) Sell(tradeID string, price decimal.Decimal, timestamp time.Time, reason domain.ExitReason) (*domain.Trade, error) {
	idx := -1
	for i, t := range p.openPositions {
		if t.ID == tradeID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("sell %s: %w", tradeID, ports.ErrTradeNotFound)
	}

	trade := p.openPositions[idx]
	p.openPositions = append(p.openPositions[:idx], p.openPositions[idx+1:]...)

	exitValue := price.Mul(trade.Quantity)
	exitCommission := exitValue.Mul(p.commissionRate)
	netProceeds := exitValue.Sub(exitCommission)

	entryValue := trade.EntryPrice.Mul(trade.Quantity)
	pnl := netProceeds.Sub(entryValue).Sub(trade.EntryCommission)
	pnlPercent, _ := pnl.Div(entryValue).Float64()

	trade.ExitPrice = price
	trade.ExitTime = timestamp
	trade.ExitCommission = exitCommission
	trade.PNL = pnl
	trade.PNLPercent = pnlPercent * 100
	trade.Status = domain.StatusClosed
	trade.ExitReason = reason
	trade.Duration = timestamp.Sub(trade.EntryTime)

	p.cash = p.cash.Add(netProceeds)
	p.closedTrades = append(p.closedTrades, trade)

	return trade, nil
}

// CalculateTotalValue marks the portfolio against the given market prices.
// Open positions without a quoted price fall back to their entry price.
// Read-only.
func (p *Portfolio) CalculateTotalValue(currentPrices map[string]decimal.Decimal) decimal.Decimal {
	positionsValue := decimal.Zero
	for _, t := range p.openPositions {
		price, ok := currentPrices[t.Symbol]
		if !ok {
			price = t.EntryPrice
		}
		positionsValue = positionsValue.Add(price.Mul(t.Quantity))
	}
	return p.cash.Add(positionsValue)
}
