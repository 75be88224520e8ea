package domain

import "time"

// Signal is a per-bar trading directive produced by a strategy.
// Strategies emit exactly one Signal per bar, index-aligned with the
// bar sequence they were generated from.
type Signal struct {
	Timestamp  time.Time  // Timestamp of the bar this signal belongs to
	Type       SignalType // buy, sell or hold
	Strength   float64    // Signal strength in [-1, 1]
	Confidence float64    // Signal confidence in [0, 1]
}
