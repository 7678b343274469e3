package indicators

import (
	"time"

	"github.com/shopspring/decimal"
	"mtfscanner/internal/model"
	"mtfscanner/internal/types"
)

// FVG is a three-candle price imbalance: a bullish gap leaves candle i-1's
// high below candle i+1's low, a bearish gap leaves candle i-1's low above
// candle i+1's high.
type FVG struct {
	StartIndex int
	EndIndex   int
	GapHigh    decimal.Decimal
	GapLow     decimal.Decimal
	Direction  types.Direction
	Timestamp  time.Time
}

// DetectFVGs scans the last lookback candles (or all of them, if fewer) for
// fair value gaps. Needs at least 3 candles.
func DetectFVGs(candles []model.Candle, lookback int) []FVG {
	if len(candles) < 3 {
		return nil
	}
	recent := tail(candles, lookback)

	var gaps []FVG
	for i := 1; i < len(recent)-1; i++ {
		prev, next := recent[i-1], recent[i+1]

		switch {
		case prev.High.LessThan(next.Low):
			gaps = append(gaps, FVG{
				StartIndex: i - 1,
				EndIndex:   i + 1,
				GapHigh:    next.Low,
				GapLow:     prev.High,
				Direction:  types.DirectionBuy,
				Timestamp:  recent[i].Timestamp,
			})
		case prev.Low.GreaterThan(next.High):
			gaps = append(gaps, FVG{
				StartIndex: i - 1,
				EndIndex:   i + 1,
				GapHigh:    prev.Low,
				GapLow:     next.High,
				Direction:  types.DirectionSell,
				Timestamp:  recent[i].Timestamp,
			})
		}
	}
	return gaps
}

func tail(candles []model.Candle, lookback int) []model.Candle {
	if lookback <= 0 || len(candles) <= lookback {
		return candles
	}
	return candles[len(candles)-lookback:]
}
