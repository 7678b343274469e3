// Package cache implements the §4.A candle cache: one incremental,
// de-duplicated OHLC series per (symbol, interval) key, backed by a
// marketdata.Provider and refreshed on demand.
package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"mtfscanner/internal/applog"
	"mtfscanner/internal/errs"
	"mtfscanner/internal/marketdata"
	"mtfscanner/internal/model"
)

type key struct {
	symbol   string
	interval string
}

type entry struct {
	series     model.CandleSeries
	firstStart time.Time
}

type Cache struct {
	mu       sync.Mutex
	entries  map[key]*entry
	provider marketdata.Provider
	now      func() time.Time
}

func New(provider marketdata.Provider) *Cache {
	return &Cache{
		entries:  make(map[key]*entry),
		provider: provider,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// GetCandles returns a series covering at least the requested lookback,
// fetching only what is missing since the last cached timestamp.
func (c *Cache) GetCandles(ctx context.Context, symbol, interval string, lookback time.Duration) (model.CandleSeries, error) {
	clamped, exceeded := clampLookback(interval, lookback)
	if exceeded {
		applog.Warn("cache: lookback %s exceeds vendor maximum for %s %s, clamping to %s", lookback, symbol, interval, clamped)
	}
	lookback = clamped

	k := key{symbol: symbol, interval: interval}
	now := c.now()

	c.mu.Lock()
	e, exists := c.entries[k]
	c.mu.Unlock()

	var start time.Time
	if !exists {
		start = now.Add(-lookback)
	} else {
		start = lastTimestamp(e.series)
	}

	fetched, err := c.fetchWithBackoff(ctx, symbol, interval, start, now)
	if err != nil {
		return model.CandleSeries{}, errs.Data("cache", fmt.Errorf("fetch %s %s: %w", symbol, interval, err))
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	e, exists = c.entries[k]
	if !exists {
		e = &entry{firstStart: start}
		c.entries[k] = e
	}
	e.series = model.CandleSeries{Symbol: symbol, Interval: interval, Candles: e.series.Candles}
	e.series = e.series.Merge(fetched)

	if e.series.Empty() {
		return model.CandleSeries{}, errs.Data("cache", fmt.Errorf("no candles available for %s %s", symbol, interval))
	}
	return e.series, nil
}

// ValidateSymbol attempts a minimal fetch, the last 24 hours of 240m
// candles rather than a single daily candle, to confirm the vendor
// recognises the symbol.
func (c *Cache) ValidateSymbol(ctx context.Context, symbol string) bool {
	now := c.now()
	const attempts = 2
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		candles, err := c.provider.Fetch(ctx, symbol, "240m", now.Add(-24*time.Hour), now)
		if err == nil {
			return len(candles) > 0
		}
		lastErr = err
		if attempt < attempts-1 {
			sleep(ctx, backoffDelay(attempt))
		}
	}
	applog.Warn("cache: symbol validation failed for %s: %v", symbol, lastErr)
	return false
}

// Clear purges entries. An empty symbol or interval acts as a wildcard.
func (c *Cache) Clear(symbol, interval string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.entries {
		if symbol != "" && k.symbol != symbol {
			continue
		}
		if interval != "" && k.interval != interval {
			continue
		}
		delete(c.entries, k)
	}
}

func (c *Cache) fetchWithBackoff(ctx context.Context, symbol, interval string, start, end time.Time) ([]model.Candle, error) {
	const attempts = 3
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		candles, err := c.provider.Fetch(ctx, symbol, interval, start, end)
		if err == nil {
			return candles, nil
		}
		lastErr = err
		if attempt < attempts-1 {
			sleep(ctx, backoffDelay(attempt))
		}
	}
	return nil, lastErr
}

// backoffDelay implements min(10, 2*2^n) seconds per §5 Timeouts.
func backoffDelay(attempt int) time.Duration {
	seconds := 2 * (1 << uint(attempt))
	if seconds > 10 {
		seconds = 10
	}
	return time.Duration(seconds) * time.Second
}

func sleep(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}

func lastTimestamp(s model.CandleSeries) time.Time {
	last, ok := s.Last()
	if !ok {
		return time.Time{}
	}
	return last.Timestamp
}
