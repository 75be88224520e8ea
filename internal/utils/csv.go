package utils

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/baleen37/tv-strategy/internal/domain"
)

// WriteBarsToCSV saves a bar sequence so runs can be replayed offline.
func WriteBarsToCSV(bars []*domain.Bar, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	writer.Write([]string{"timestamp", "symbol", "interval", "open", "high", "low", "close", "volume"})

	for _, b := range bars {
		writer.Write([]string{
			b.Timestamp.Format(time.RFC3339),
			b.Symbol,
			b.Interval,
			b.Open.String(),
			b.High.String(),
			b.Low.String(),
			b.Close.String(),
			b.Volume.String(),
		})
	}
	return writer.Error()
}

// ReadBarsFromCSV loads and validates a bar sequence written by
// WriteBarsToCSV.
func ReadBarsFromCSV(filename string) ([]*domain.Bar, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", filename, err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("%s contains no bar rows", filename)
	}

	bars := make([]*domain.Bar, 0, len(records)-1)
	for i, rec := range records[1:] { // skip header
		if len(rec) != 8 {
			return nil, fmt.Errorf("%s row %d: expected 8 columns, got %d", filename, i+2, len(rec))
		}
		ts, err := time.Parse(time.RFC3339, rec[0])
		if err != nil {
			return nil, fmt.Errorf("%s row %d: invalid timestamp %q: %w", filename, i+2, rec[0], err)
		}
		bar := &domain.Bar{Timestamp: ts, Symbol: rec[1], Interval: rec[2]}
		fields := []struct {
			dst *decimal.Decimal
			val string
		}{
			{&bar.Open, rec[3]}, {&bar.High, rec[4]},
			{&bar.Low, rec[5]}, {&bar.Close, rec[6]}, {&bar.Volume, rec[7]},
		}
		for _, f := range fields {
			if *f.dst, err = decimal.NewFromString(f.val); err != nil {
				return nil, fmt.Errorf("%s row %d: invalid value %q: %w", filename, i+2, f.val, err)
			}
		}
		if err := bar.Validate(); err != nil {
			return nil, fmt.Errorf("%s row %d: %w", filename, i+2, err)
		}
		bars = append(bars, bar)
	}
	return bars, nil
}

// WriteTradesToCSV saves executed trades for external inspection.
func WriteTradesToCSV(trades []*domain.Trade, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	writer.Write([]string{
		"id", "symbol", "side", "status", "entry_price", "exit_price", "quantity",
		"entry_time", "exit_time", "pnl", "pnl_percent", "exit_reason",
	})

	for _, t := range trades {
		exitTime := ""
		if !t.ExitTime.IsZero() {
			exitTime = t.ExitTime.Format(time.RFC3339)
		}
		writer.Write([]string{
			t.ID,
			t.Symbol,
			string(t.Side),
			string(t.Status),
			t.EntryPrice.String(),
			t.ExitPrice.String(),
			t.Quantity.String(),
			t.EntryTime.Format(time.RFC3339),
			exitTime,
			t.PNL.String(),
			strconv.FormatFloat(t.PNLPercent, 'f', -1, 64),
			string(t.ExitReason),
		})
	}
	return writer.Error()
}
