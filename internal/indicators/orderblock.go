package indicators

import (
	"time"

	"github.com/shopspring/decimal"
	"mtfscanner/internal/model"
	"mtfscanner/internal/types"
)

// OrderBlock marks the last opposite-direction candle before a strong move,
// taken as a proxy for institutional accumulation/distribution.
type OrderBlock struct {
	Index     int
	High      decimal.Decimal
	Low       decimal.Decimal
	Direction types.Direction
	Timestamp time.Time
}

// DetectOrderBlocks scans the last lookback candles (or all of them, if
// fewer) for order blocks: a down candle followed two bars later by a close
// that has rallied more than threshold (a fraction, e.g. 0.02 for 2%) is a
// bullish OB; the symmetric up-candle/decline case is bearish. Needs at
// least 5 candles.
func DetectOrderBlocks(candles []model.Candle, lookback int, threshold decimal.Decimal) []OrderBlock {
	if len(candles) < 5 {
		return nil
	}
	recent := tail(candles, lookback)

	var obs []OrderBlock
	for i := 2; i < len(recent)-2; i++ {
		curr := recent[i]
		next2 := recent[i+2]

		if curr.Close.IsZero() {
			continue
		}
		moveSize := next2.Close.Sub(curr.Close).Abs().Div(curr.Close)

		switch {
		case curr.Close.LessThan(curr.Open) && next2.Close.GreaterThan(curr.Close) && moveSize.GreaterThan(threshold):
			obs = append(obs, OrderBlock{
				Index:     i,
				High:      curr.High,
				Low:       curr.Low,
				Direction: types.DirectionBuy,
				Timestamp: curr.Timestamp,
			})
		case curr.Close.GreaterThan(curr.Open) && next2.Close.LessThan(curr.Close) && moveSize.GreaterThan(threshold):
			obs = append(obs, OrderBlock{
				Index:     i,
				High:      curr.High,
				Low:       curr.Low,
				Direction: types.DirectionSell,
				Timestamp: curr.Timestamp,
			})
		}
	}
	return obs
}
