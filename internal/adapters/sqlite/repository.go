// Package sqlite persists backtest runs and their trades.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"

	"github.com/baleen37/tv-strategy/internal/domain"
	"github.com/baleen37/tv-strategy/internal/ports"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Repository implements the ports.ResultRepository interface using SQLite.
// Money columns are stored as text so decimal values round-trip exactly.
type Repository struct {
	db     *sql.DB
	logger ports.Logger
}

// Config holds configuration for the SQLite repository.
type Config struct {
	DBPath string
	Logger ports.Logger
}

// NewRepository creates a new SQLite repository instance.
func NewRepository(cfg Config) (*Repository, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for SQLite repository")
	}
	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = "./data/backtests.db"
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		err = fmt.Errorf("failed to create data directory '%s': %w", filepath.Dir(dbPath), err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		err = fmt.Errorf("failed to open database at '%s': %w", dbPath, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		err = fmt.Errorf("failed to ping database at '%s': %w", dbPath, ports.ErrDBConnection)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	repo := &Repository{db: db, logger: cfg.Logger}

	if err := repo.initializeSchema(context.Background()); err != nil {
		db.Close()
		err = fmt.Errorf("failed to initialize database schema: %w", err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}
	cfg.Logger.Info(context.Background(), "SQLite repository ready", map[string]interface{}{"path": dbPath})

	return repo, nil
}

func (r *Repository) initializeSchema(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS backtest_results (
		id TEXT PRIMARY KEY,
		strategy_id TEXT NOT NULL,
		symbol TEXT NOT NULL,
		initial_capital TEXT NOT NULL,
		final_capital TEXT NOT NULL,
		total_return REAL NOT NULL,
		start_date TIMESTAMP NOT NULL,
		end_date TIMESTAMP NOT NULL,
		total_trades INTEGER NOT NULL,
		win_rate REAL NOT NULL,
		max_drawdown REAL NOT NULL,
		sharpe_ratio REAL NOT NULL DEFAULT 0,
		profit_factor REAL NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS trades (
		result_id TEXT NOT NULL,
		id TEXT NOT NULL,
		symbol TEXT NOT NULL,
		side TEXT NOT NULL,
		entry_price TEXT NOT NULL,
		exit_price TEXT DEFAULT NULL,
		quantity TEXT NOT NULL,
		entry_time TIMESTAMP NOT NULL,
		exit_time TIMESTAMP DEFAULT NULL,
		stop_loss TEXT DEFAULT NULL,
		take_profit TEXT DEFAULT NULL,
		status TEXT NOT NULL,
		entry_commission TEXT NOT NULL,
		exit_commission TEXT NOT NULL,
		pnl TEXT DEFAULT NULL,
		pnl_percent REAL NOT NULL DEFAULT 0,
		exit_reason TEXT DEFAULT NULL,
		PRIMARY KEY (result_id, id)
	);
	CREATE INDEX IF NOT EXISTS idx_results_strategy ON backtest_results (strategy_id, start_date);
	CREATE INDEX IF NOT EXISTS idx_trades_result_entry ON trades (result_id, entry_time);
	`
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to execute schema initialization: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// SaveResult persists a result together with its trade list in one transaction.
func (r *Repository) SaveResult(ctx context.Context, result *domain.BacktestResult, trades []*domain.Trade) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	const resultQuery = `
	INSERT INTO backtest_results (id, strategy_id, symbol, initial_capital, final_capital,
	                              total_return, start_date, end_date, total_trades,
	                              win_rate, max_drawdown, sharpe_ratio, profit_factor)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = tx.ExecContext(ctx, resultQuery,
		result.ID, result.StrategyID, result.Symbol,
		result.InitialCapital.String(), result.FinalCapital.String(),
		result.TotalReturn, result.StartDate, result.EndDate, result.TotalTrades,
		result.WinRate, result.MaxDrawdown, result.SharpeRatio, result.ProfitFactor)
	if err != nil {
		return fmt.Errorf("failed to insert result %s: %w", result.ID, err)
	}

	const tradeQuery = `
	INSERT INTO trades (result_id, id, symbol, side, entry_price, exit_price, quantity,
	                    entry_time, exit_time, stop_loss, take_profit, status,
	                    entry_commission, exit_commission, pnl, pnl_percent, exit_reason)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	for _, t := range trades {
		var exitPrice, pnl, exitReason sql.NullString
		var exitTime sql.NullTime
		if t.IsClosed() {
			exitPrice = sql.NullString{String: t.ExitPrice.String(), Valid: true}
			pnl = sql.NullString{String: t.PNL.String(), Valid: true}
			exitReason = sql.NullString{String: string(t.ExitReason), Valid: true}
			exitTime = sql.NullTime{Time: t.ExitTime, Valid: true}
		}
		_, err = tx.ExecContext(ctx, tradeQuery,
			result.ID, t.ID, t.Symbol, string(t.Side),
			t.EntryPrice.String(), exitPrice, t.Quantity.String(),
			t.EntryTime, exitTime, nullDecimal(t.StopLoss), nullDecimal(t.TakeProfit),
			string(t.Status), t.EntryCommission.String(), t.ExitCommission.String(),
			pnl, t.PNLPercent, exitReason)
		if err != nil {
			return fmt.Errorf("failed to insert trade %s for result %s: %w", t.ID, result.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit result %s: %w", result.ID, err)
	}
	r.logger.Debug(ctx, "backtest result saved", map[string]interface{}{
		"resultID": result.ID,
		"trades":   len(trades),
	})
	return nil
}

// FindResultByID retrieves a result by its run ID. Returns nil, nil when absent.
func (r *Repository) FindResultByID(ctx context.Context, id string) (*domain.BacktestResult, error) {
	const query = `
	SELECT id, strategy_id, symbol, initial_capital, final_capital, total_return,
	       start_date, end_date, total_trades, win_rate, max_drawdown, sharpe_ratio, profit_factor
	FROM backtest_results
	WHERE id = ?`

	result, err := scanResult(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query result %s: %w", id, err)
	}
	return result, nil
}

// FindAllResults retrieves every stored result, newest first.
func (r *Repository) FindAllResults(ctx context.Context) ([]*domain.BacktestResult, error) {
	const query = `
	SELECT id, strategy_id, symbol, initial_capital, final_capital, total_return,
	       start_date, end_date, total_trades, win_rate, max_drawdown, sharpe_ratio, profit_factor
	FROM backtest_results
	ORDER BY start_date DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query all results: %w", err)
	}
	defer rows.Close()

	results := make([]*domain.BacktestResult, 0)
	for rows.Next() {
		result, err := scanResult(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan result during FindAllResults: %w", err)
		}
		results = append(results, result)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating result rows: %w", err)
	}
	return results, nil
}

// FindTradesByResult retrieves the trades of a run in entry order.
func (r *Repository) FindTradesByResult(ctx context.Context, resultID string) ([]*domain.Trade, error) {
	const query = `
	SELECT id, symbol, side, entry_price, exit_price, quantity, entry_time, exit_time,
	       stop_loss, take_profit, status, entry_commission, exit_commission,
	       pnl, pnl_percent, exit_reason
	FROM trades
	WHERE result_id = ? ORDER BY entry_time ASC`

	rows, err := r.db.QueryContext(ctx, query, resultID)
	if err != nil {
		return nil, fmt.Errorf("failed to query trades for result %s: %w", resultID, err)
	}
	defer rows.Close()

	trades := make([]*domain.Trade, 0)
	for rows.Next() {
		trade, err := scanTrade(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trade during FindTradesByResult: %w", err)
		}
		trades = append(trades, trade)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trade rows: %w", err)
	}
	return trades, nil
}

// --- Helpers ---

// scanner is compatible with *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func nullDecimal(d decimal.Decimal) sql.NullString {
	if d.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}

func parseDecimal(s sql.NullString) (decimal.Decimal, error) {
	if !s.Valid {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s.String)
}

func scanResult(s scanner) (*domain.BacktestResult, error) {
	res := &domain.BacktestResult{}
	var initial, final string
	err := s.Scan(
		&res.ID, &res.StrategyID, &res.Symbol, &initial, &final, &res.TotalReturn,
		&res.StartDate, &res.EndDate, &res.TotalTrades, &res.WinRate,
		&res.MaxDrawdown, &res.SharpeRatio, &res.ProfitFactor)
	if err != nil {
		return nil, err
	}
	if res.InitialCapital, err = decimal.NewFromString(initial); err != nil {
		return nil, fmt.Errorf("invalid initial_capital %q: %w", initial, err)
	}
	if res.FinalCapital, err = decimal.NewFromString(final); err != nil {
		return nil, fmt.Errorf("invalid final_capital %q: %w", final, err)
	}
	return res, nil
}

func scanTrade(s scanner) (*domain.Trade, error) {
	t := &domain.Trade{}
	var side, status string
	var entryPrice, entryCommission, exitCommission, quantity string
	var exitPrice, stopLoss, takeProfit, pnl, exitReason sql.NullString
	var exitTime sql.NullTime

	err := s.Scan(
		&t.ID, &t.Symbol, &side, &entryPrice, &exitPrice, &quantity,
		&t.EntryTime, &exitTime, &stopLoss, &takeProfit, &status,
		&entryCommission, &exitCommission, &pnl, &t.PNLPercent, &exitReason)
	if err != nil {
		return nil, err
	}

	t.Side = domain.Side(side)
	t.Status = domain.TradeStatus(status)
	if exitReason.Valid {
		t.ExitReason = domain.ExitReason(exitReason.String)
	}
	if exitTime.Valid {
		t.ExitTime = exitTime.Time
	}

	if t.EntryPrice, err = decimal.NewFromString(entryPrice); err != nil {
		return nil, fmt.Errorf("invalid entry_price %q: %w", entryPrice, err)
	}
	if t.Quantity, err = decimal.NewFromString(quantity); err != nil {
		return nil, fmt.Errorf("invalid quantity %q: %w", quantity, err)
	}
	if t.EntryCommission, err = decimal.NewFromString(entryCommission); err != nil {
		return nil, fmt.Errorf("invalid entry_commission %q: %w", entryCommission, err)
	}
	if t.ExitCommission, err = decimal.NewFromString(exitCommission); err != nil {
		return nil, fmt.Errorf("invalid exit_commission %q: %w", exitCommission, err)
	}
	if t.ExitPrice, err = parseDecimal(exitPrice); err != nil {
		return nil, fmt.Errorf("invalid exit_price: %w", err)
	}
	if t.StopLoss, err = parseDecimal(stopLoss); err != nil {
		return nil, fmt.Errorf("invalid stop_loss: %w", err)
	}
	if t.TakeProfit, err = parseDecimal(takeProfit); err != nil {
		return nil, fmt.Errorf("invalid take_profit: %w", err)
	}
	if t.PNL, err = parseDecimal(pnl); err != nil {
		return nil, fmt.Errorf("invalid pnl: %w", err)
	}
	if !t.EntryTime.IsZero() && !t.ExitTime.IsZero() {
		t.Duration = t.ExitTime.Sub(t.EntryTime)
	}
	return t, nil
}
