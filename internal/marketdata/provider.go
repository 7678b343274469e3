// Package marketdata defines the §6 vendor contract the candle cache
// depends on, plus adapters implementing it.
package marketdata

import (
	"context"
	"time"

	"mtfscanner/internal/model"
)

// Provider fetches normalised OHLCV candles for one vendor symbol and
// interval code ("1m", "5m", "15m", "30m", "60m", "240m") over [start, end].
// Implementations return candles sorted ascending by timestamp, tagged UTC.
type Provider interface {
	Fetch(ctx context.Context, vendorSymbol, intervalCode string, start, end time.Time) ([]model.Candle, error)
}

// IntervalDuration maps a timeframe code to its wall-clock duration.
func IntervalDuration(intervalCode string) (time.Duration, bool) {
	d, ok := intervalDurations[intervalCode]
	return d, ok
}

var intervalDurations = map[string]time.Duration{
	"1m":   time.Minute,
	"5m":   5 * time.Minute,
	"15m":  15 * time.Minute,
	"30m":  30 * time.Minute,
	"60m":  time.Hour,
	"240m": 4 * time.Hour,
}
