package indicators

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mtfscanner/internal/model"
)

func candle(ts int64, o, h, l, c float64) model.Candle {
	return model.Candle{
		Timestamp: time.Unix(ts, 0).UTC(),
		Open:      decimal.NewFromFloat(o),
		High:      decimal.NewFromFloat(h),
		Low:       decimal.NewFromFloat(l),
		Close:     decimal.NewFromFloat(c),
	}
}

func TestATR_EmptyInput(t *testing.T) {
	assert.Nil(t, ATR(nil, 14))
	assert.Nil(t, ATR([]model.Candle{}, 14))
	assert.True(t, LastATR(nil, 14).IsZero())
}

func TestATR_NonNegative(t *testing.T) {
	candles := []model.Candle{
		candle(0, 10, 12, 9, 11),
		candle(60, 11, 13, 10, 12),
		candle(120, 12, 12.5, 11, 11.5),
	}
	values := ATR(candles, 14)
	require.Len(t, values, 3)
	for _, v := range values {
		assert.True(t, v.GreaterThanOrEqual(decimal.Zero), "ATR must never be negative")
	}
}

func TestATR_FirstValueIsHighLow(t *testing.T) {
	candles := []model.Candle{candle(0, 10, 12, 9, 11)}
	values := ATR(candles, 14)
	require.Len(t, values, 1)
	assert.True(t, values[0].Equal(decimal.NewFromFloat(3)))
}
