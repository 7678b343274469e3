package indicators

import "mtfscanner/internal/model"

// SwingPoints returns swing highs and lows using a symmetric window: index i
// is a swing high iff high[i] is the max over [i-window, i+window], and
// likewise for lows. Requires at least 2*window+1 candles.
func SwingPoints(candles []model.Candle, window int) (highs, lows []float64) {
	n := len(candles)
	if window <= 0 || n < 2*window+1 {
		return nil, nil
	}
	for i := window; i < n-window; i++ {
		if isMaxHigh(candles, i, window) {
			highs = append(highs, candles[i].High.InexactFloat64())
		}
		if isMinLow(candles, i, window) {
			lows = append(lows, candles[i].Low.InexactFloat64())
		}
	}
	return highs, lows
}

func isMaxHigh(candles []model.Candle, i, window int) bool {
	v := candles[i].High
	for j := i - window; j <= i+window; j++ {
		if candles[j].High.GreaterThan(v) {
			return false
		}
	}
	return true
}

func isMinLow(candles []model.Candle, i, window int) bool {
	v := candles[i].Low
	for j := i - window; j <= i+window; j++ {
		if candles[j].Low.LessThan(v) {
			return false
		}
	}
	return true
}
