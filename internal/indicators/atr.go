// Package indicators implements §4.B: pure functions over a candle series.
// None of them raise on empty or short input — they return zero values or
// empty slices, and callers (the strategy engine) treat that as "no signal".
package indicators

import (
	"github.com/shopspring/decimal"
	"mtfscanner/internal/model"
)

// ATR computes the exponential-moving-average True Range with smoothing
// span equal to period. The first true range uses only high-low since
// there is no prior close.
func ATR(candles []model.Candle, period int) []decimal.Decimal {
	if len(candles) == 0 || period <= 0 {
		return nil
	}
	out := make([]decimal.Decimal, len(candles))
	alpha := decimal.NewFromInt(2).Div(decimal.NewFromInt(int64(period) + 1))

	var prevATR decimal.Decimal
	for i, c := range candles {
		var tr decimal.Decimal
		if i == 0 {
			tr = c.High.Sub(c.Low)
		} else {
			prevClose := candles[i-1].Close
			tr = maxDecimal(
				c.High.Sub(c.Low),
				c.High.Sub(prevClose).Abs(),
				c.Low.Sub(prevClose).Abs(),
			)
		}
		if i == 0 {
			prevATR = tr
		} else {
			prevATR = tr.Mul(alpha).Add(prevATR.Mul(decimal.NewFromInt(1).Sub(alpha)))
		}
		out[i] = prevATR
	}
	return out
}

// LastATR returns the final ATR value, or zero if there isn't enough data.
func LastATR(candles []model.Candle, period int) decimal.Decimal {
	values := ATR(candles, period)
	if len(values) == 0 {
		return decimal.Zero
	}
	return values[len(values)-1]
}

func maxDecimal(values ...decimal.Decimal) decimal.Decimal {
	max := values[0]
	for _, v := range values[1:] {
		if v.GreaterThan(max) {
			max = v
		}
	}
	return max
}
