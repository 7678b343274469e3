package marketdata

import (
	"context"
	"sync"
	"time"

	"mtfscanner/internal/model"
)

// MemoryProvider is a test double implementing Provider over fixed,
// in-memory candle series.
type MemoryProvider struct {
	mu      sync.Mutex
	series  map[string][]model.Candle
	fetches int
	failing bool
}

func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{series: make(map[string][]model.Candle)}
}

func seriesKey(vendorSymbol, intervalCode string) string {
	return vendorSymbol + "|" + intervalCode
}

func (p *MemoryProvider) Seed(vendorSymbol, intervalCode string, candles []model.Candle) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.series[seriesKey(vendorSymbol, intervalCode)] = candles
}

func (p *MemoryProvider) SetFailing(failing bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failing = failing
}

func (p *MemoryProvider) FetchCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.fetches
}

func (p *MemoryProvider) Fetch(_ context.Context, vendorSymbol, intervalCode string, start, end time.Time) ([]model.Candle, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fetches++
	if p.failing {
		return nil, errFetchFailed
	}
	all := p.series[seriesKey(vendorSymbol, intervalCode)]
	out := make([]model.Candle, 0, len(all))
	for _, c := range all {
		if !c.Timestamp.Before(start) && !c.Timestamp.After(end) {
			out = append(out, c)
		}
	}
	return out, nil
}

type fetchFailedErr struct{}

func (fetchFailedErr) Error() string { return "memory provider: simulated fetch failure" }

var errFetchFailed = fetchFailedErr{}
