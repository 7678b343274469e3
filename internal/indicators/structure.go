package indicators

import (
	"time"

	"github.com/shopspring/decimal"
	"mtfscanner/internal/model"
	"mtfscanner/internal/types"
)

// BOSEvent reports a new extreme beyond the recent trading range.
type BOSEvent struct {
	Direction types.Direction
	Price     decimal.Decimal
	Timestamp time.Time
}

// DetectBOS compares the latest candle against the high/low range of the
// last lookback candles. Needs at least lookback+5 candles.
func DetectBOS(candles []model.Candle, lookback int) []BOSEvent {
	if len(candles) < lookback+5 {
		return nil
	}
	recent := candles[len(candles)-lookback:]
	recentHigh, recentLow := extremes(recent)
	latest := candles[len(candles)-1]

	var events []BOSEvent
	if latest.High.GreaterThan(recentHigh) {
		events = append(events, BOSEvent{Direction: types.DirectionBuy, Price: latest.High, Timestamp: latest.Timestamp})
	}
	if latest.Low.LessThan(recentLow) {
		events = append(events, BOSEvent{Direction: types.DirectionSell, Price: latest.Low, Timestamp: latest.Timestamp})
	}
	return events
}

// CHOCHEvent reports a momentum flip over the recent candles.
type CHOCHEvent struct {
	Direction types.Direction
	Timestamp time.Time
}

// DetectCHOCH compares up/down body counts over the last lookback candles
// against the last 5. Needs at least lookback+10 candles.
func DetectCHOCH(candles []model.Candle, lookback int) []CHOCHEvent {
	if len(candles) < lookback+10 {
		return nil
	}
	recent := candles[len(candles)-lookback:]
	ups, downs := bodyCounts(recent)

	last5 := candles[len(candles)-5:]
	recentUps, recentDowns := bodyCounts(last5)

	latest := candles[len(candles)-1]
	threshold := decimal.NewFromFloat(1.5)

	var events []CHOCHEvent
	if decimal.NewFromInt(int64(ups)).GreaterThan(decimal.NewFromInt(int64(downs)).Mul(threshold)) && recentDowns > recentUps {
		events = append(events, CHOCHEvent{Direction: types.DirectionSell, Timestamp: latest.Timestamp})
	}
	if decimal.NewFromInt(int64(downs)).GreaterThan(decimal.NewFromInt(int64(ups)).Mul(threshold)) && recentUps > recentDowns {
		events = append(events, CHOCHEvent{Direction: types.DirectionBuy, Timestamp: latest.Timestamp})
	}
	return events
}

// SweepEvent reports a wick that pierced a prior extreme and reversed.
type SweepEvent struct {
	Direction types.Direction
	Price     decimal.Decimal
	Timestamp time.Time
}

// DetectLiquiditySweep inspects the last 3 candles against the high/low
// range of the last lookback candles. Needs at least lookback+3 candles.
func DetectLiquiditySweep(candles []model.Candle, lookback int) []SweepEvent {
	if len(candles) < lookback+3 {
		return nil
	}
	recent := candles[len(candles)-lookback:]
	recentHigh, recentLow := extremes(recent)

	last3 := candles[len(candles)-3:]
	first, last := last3[0], last3[2]
	latest := candles[len(candles)-1]

	var events []SweepEvent
	if first.Low.LessThan(recentLow) && last.Close.GreaterThan(first.Open) {
		events = append(events, SweepEvent{Direction: types.DirectionBuy, Price: first.Low, Timestamp: latest.Timestamp})
	}
	if first.High.GreaterThan(recentHigh) && last.Close.LessThan(first.Open) {
		events = append(events, SweepEvent{Direction: types.DirectionSell, Price: first.High, Timestamp: latest.Timestamp})
	}
	return events
}

func extremes(candles []model.Candle) (high, low decimal.Decimal) {
	high, low = candles[0].High, candles[0].Low
	for _, c := range candles[1:] {
		if c.High.GreaterThan(high) {
			high = c.High
		}
		if c.Low.LessThan(low) {
			low = c.Low
		}
	}
	return high, low
}

func bodyCounts(candles []model.Candle) (ups, downs int) {
	for _, c := range candles {
		switch {
		case c.Close.GreaterThan(c.Open):
			ups++
		case c.Close.LessThan(c.Open):
			downs++
		}
	}
	return ups, downs
}
