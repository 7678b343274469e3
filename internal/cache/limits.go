package cache

import "time"

// maxLookback is the vendor's maximum supported lookback window per
// timeframe code (spec §4.A). Exceeding it clamps to the maximum and emits
// a warning rather than failing the call.
var maxLookback = map[string]time.Duration{
	"1m":   7 * 24 * time.Hour,
	"5m":   60 * 24 * time.Hour,
	"15m":  60 * 24 * time.Hour,
	"30m":  60 * 24 * time.Hour,
	"60m":  730 * 24 * time.Hour,
	"240m": 730 * 24 * time.Hour,
}

func clampLookback(interval string, lookback time.Duration) (time.Duration, bool) {
	max, ok := maxLookback[interval]
	if !ok {
		return lookback, false
	}
	if lookback > max {
		return max, true
	}
	return lookback, false
}
