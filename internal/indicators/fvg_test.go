package indicators

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mtfscanner/internal/model"
	"mtfscanner/internal/types"
)

func TestDetectFVGs_TooFewCandles(t *testing.T) {
	assert.Nil(t, DetectFVGs([]model.Candle{candle(0, 1, 1, 1, 1)}, 20))
}

func TestDetectFVGs_BullishGap(t *testing.T) {
	candles := []model.Candle{
		candle(0, 10, 10, 9, 10),
		candle(60, 11, 12, 10.5, 11.5),
		candle(120, 13, 14, 12.5, 13.5),
	}
	gaps := DetectFVGs(candles, 20)
	require.Len(t, gaps, 1)
	assert.Equal(t, types.DirectionBuy, gaps[0].Direction)
	assert.True(t, gaps[0].GapHigh.GreaterThan(gaps[0].GapLow), "gap_high must exceed gap_low")
}

func TestDetectFVGs_BearishGap(t *testing.T) {
	candles := []model.Candle{
		candle(0, 13, 14, 12.5, 13.5),
		candle(60, 11, 11.5, 10.5, 11),
		candle(120, 9, 9.5, 8.5, 9),
	}
	gaps := DetectFVGs(candles, 20)
	require.Len(t, gaps, 1)
	assert.Equal(t, types.DirectionSell, gaps[0].Direction)
	assert.True(t, gaps[0].GapHigh.GreaterThan(gaps[0].GapLow))
}

func TestDetectFVGs_NoGap(t *testing.T) {
	candles := []model.Candle{
		candle(0, 10, 10.5, 9.5, 10),
		candle(60, 10, 10.6, 9.6, 10.1),
		candle(120, 10.1, 10.7, 9.7, 10.2),
	}
	assert.Empty(t, DetectFVGs(candles, 20))
}

func TestDetectFVGs_LookbackSlicesTail(t *testing.T) {
	candles := make([]model.Candle, 0, 10)
	for i := 0; i < 7; i++ {
		candles = append(candles, candle(int64(i*60), 10, 10.1, 9.9, 10))
	}
	// bullish gap only present in the most recent 3 candles
	candles = append(candles,
		candle(420, 20, 20, 19, 20),
		candle(480, 21, 22, 20.5, 21.5),
		candle(540, 23, 24, 22.5, 23.5),
	)
	gaps := DetectFVGs(candles, 3)
	require.Len(t, gaps, 1)
}
