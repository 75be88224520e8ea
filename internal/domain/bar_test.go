package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestBarValidate(t *testing.T) {
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		o, h, l, c int64
		wantErr    bool
	}{
		{name: "valid bar", o: 100, h: 110, l: 95, c: 105},
		{name: "flat bar", o: 100, h: 100, l: 100, c: 100},
		{name: "open above high", o: 115, h: 110, l: 95, c: 105, wantErr: true},
		{name: "close below low", o: 100, h: 110, l: 95, c: 90, wantErr: true},
		{name: "low above open", o: 100, h: 110, l: 102, c: 105, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bar := &Bar{
				Timestamp: ts,
				Symbol:    "BTC/USDT",
				Interval:  "1h",
				Open:      decimal.NewFromInt(tt.o),
				High:      decimal.NewFromInt(tt.h),
				Low:       decimal.NewFromInt(tt.l),
				Close:     decimal.NewFromInt(tt.c),
				Volume:    decimal.NewFromInt(10),
			}
			err := bar.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
