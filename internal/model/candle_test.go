package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mkCandle(sec int64) Candle {
	return Candle{Timestamp: time.Unix(sec, 0).UTC(), Close: decimal.NewFromInt(sec)}
}

func TestCandleSeries_LastEmpty(t *testing.T) {
	var s CandleSeries
	_, ok := s.Last()
	assert.False(t, ok)
}

func TestCandleSeries_Merge_SortsAscendingAndDedupes(t *testing.T) {
	s := CandleSeries{Candles: []Candle{mkCandle(60), mkCandle(0)}}
	merged := s.Merge([]Candle{mkCandle(120), mkCandle(60)}) // 60 is a duplicate, newer value wins

	require.Len(t, merged.Candles, 3)
	assert.Equal(t, int64(0), merged.Candles[0].Timestamp.Unix())
	assert.Equal(t, int64(60), merged.Candles[1].Timestamp.Unix())
	assert.Equal(t, int64(120), merged.Candles[2].Timestamp.Unix())
}

func TestCandleSeries_Merge_DoesNotMutateReceiver(t *testing.T) {
	s := CandleSeries{Candles: []Candle{mkCandle(0)}}
	_ = s.Merge([]Candle{mkCandle(60)})
	assert.Len(t, s.Candles, 1, "Merge must not mutate the receiver's backing slice")
}
