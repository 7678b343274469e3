package indicators

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSwingPoints_TooFewCandles(t *testing.T) {
	highs, lows := SwingPoints(flatCandles(5, 10), 5)
	assert.Nil(t, highs)
	assert.Nil(t, lows)
}

func TestSwingPoints_FindsCenteredExtreme(t *testing.T) {
	candles := flatCandles(11, 10)
	candles[5].High = candles[5].High.Add(candles[5].High) // spike above neighbors
	candles[5].Low = candles[5].Low.Sub(candles[5].Low)     // dip below neighbors

	highs, lows := SwingPoints(candles, 5)
	require.Len(t, highs, 1)
	require.Len(t, lows, 1)
}
