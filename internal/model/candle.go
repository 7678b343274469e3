package model

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Candle is a single OHLCV bar. The last candle of a series may still be
// open (the interval has not elapsed yet) until a later refresh replaces it.
type Candle struct {
	Timestamp time.Time
	Open      decimal.Decimal
	High      decimal.Decimal
	Low       decimal.Decimal
	Close     decimal.Decimal
	Volume    decimal.Decimal
}

// CandleSeries is an ordered, de-duplicated-by-timestamp run of candles for
// one (symbol, interval) pair. Zero value is a usable empty series.
type CandleSeries struct {
	Symbol   string
	Interval string
	Candles  []Candle
}

func (s CandleSeries) Len() int {
	return len(s.Candles)
}

func (s CandleSeries) Empty() bool {
	return len(s.Candles) == 0
}

func (s CandleSeries) Last() (Candle, bool) {
	if len(s.Candles) == 0 {
		return Candle{}, false
	}
	return s.Candles[len(s.Candles)-1], true
}

// Merge combines the receiver with incoming candles, keyed by timestamp,
// newest arrival wins on a duplicate key, and returns an ascending-sorted
// series. It never mutates the receiver's backing slice.
func (s CandleSeries) Merge(incoming []Candle) CandleSeries {
	byTime := make(map[int64]Candle, len(s.Candles)+len(incoming))
	order := make([]int64, 0, len(s.Candles)+len(incoming))
	for _, c := range s.Candles {
		ts := c.Timestamp.UTC().Unix()
		if _, ok := byTime[ts]; !ok {
			order = append(order, ts)
		}
		byTime[ts] = c
	}
	for _, c := range incoming {
		ts := c.Timestamp.UTC().Unix()
		if _, ok := byTime[ts]; !ok {
			order = append(order, ts)
		}
		byTime[ts] = c
	}
	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })
	merged := make([]Candle, 0, len(order))
	for _, ts := range order {
		merged = append(merged, byTime[ts])
	}
	return CandleSeries{Symbol: s.Symbol, Interval: s.Interval, Candles: merged}
}
