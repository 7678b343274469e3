package cache

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mtfscanner/internal/errs"
	"mtfscanner/internal/marketdata"
	"mtfscanner/internal/model"
)

func seedCandles(n int, start time.Time, step time.Duration) []model.Candle {
	out := make([]model.Candle, n)
	for i := range out {
		out[i] = model.Candle{
			Timestamp: start.Add(time.Duration(i) * step),
			Open:      decimal.NewFromFloat(100),
			High:      decimal.NewFromFloat(101),
			Low:       decimal.NewFromFloat(99),
			Close:     decimal.NewFromFloat(100.5),
		}
	}
	return out
}

func TestGetCandles_FetchesAndCaches(t *testing.T) {
	provider := marketdata.NewMemoryProvider()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	provider.Seed("EURUSD", "60m", seedCandles(5, now.Add(-5*time.Hour), time.Hour))

	c := New(provider)
	c.now = func() time.Time { return now }

	series, err := c.GetCandles(context.Background(), "EURUSD", "60m", 6*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 5, series.Len())
	assert.Equal(t, 1, provider.FetchCount())
}

func TestGetCandles_TimestampsStrictlyIncreasing(t *testing.T) {
	provider := marketdata.NewMemoryProvider()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	provider.Seed("EURUSD", "60m", seedCandles(10, now.Add(-10*time.Hour), time.Hour))

	c := New(provider)
	c.now = func() time.Time { return now }

	series, err := c.GetCandles(context.Background(), "EURUSD", "60m", 10*time.Hour)
	require.NoError(t, err)
	for i := 1; i < len(series.Candles); i++ {
		assert.True(t, series.Candles[i].Timestamp.After(series.Candles[i-1].Timestamp))
	}
}

func TestGetCandles_SecondCallFetchesIncrementally(t *testing.T) {
	provider := marketdata.NewMemoryProvider()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	provider.Seed("EURUSD", "60m", seedCandles(3, now.Add(-3*time.Hour), time.Hour))

	c := New(provider)
	c.now = func() time.Time { return now }

	_, err := c.GetCandles(context.Background(), "EURUSD", "60m", 3*time.Hour)
	require.NoError(t, err)
	_, err = c.GetCandles(context.Background(), "EURUSD", "60m", 3*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 2, provider.FetchCount(), "idempotent re-fetch still calls the provider once per call, incrementally")
}

func TestGetCandles_FetchErrorIsDataError(t *testing.T) {
	provider := marketdata.NewMemoryProvider()
	provider.SetFailing(true)
	c := New(provider)

	_, err := c.GetCandles(context.Background(), "EURUSD", "60m", time.Hour)
	require.Error(t, err)
	var dataErr *errs.DataError
	assert.ErrorAs(t, err, &dataErr)
}

func TestClear_Wildcard(t *testing.T) {
	provider := marketdata.NewMemoryProvider()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	provider.Seed("EURUSD", "60m", seedCandles(2, now.Add(-2*time.Hour), time.Hour))

	c := New(provider)
	c.now = func() time.Time { return now }
	_, err := c.GetCandles(context.Background(), "EURUSD", "60m", 2*time.Hour)
	require.NoError(t, err)

	c.Clear("", "")
	c.mu.Lock()
	n := len(c.entries)
	c.mu.Unlock()
	assert.Zero(t, n)
}
