package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"mtfscanner/internal/model"
)

// HTTPProvider polls a vendor HTTP API for OHLCV candles using plain
// net/http, the way the teacher talks to the Telegram Bot API in
// internal/ledger/telegram_bot_profile.go — no vendor SDK.
type HTTPProvider struct {
	baseURL string
	client  *http.Client
}

func NewHTTPProvider(baseURL string) *HTTPProvider {
	return &HTTPProvider{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

type vendorCandle struct {
	Time   int64   `json:"time"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume"`
}

func (p *HTTPProvider) Fetch(ctx context.Context, vendorSymbol, intervalCode string, start, end time.Time) ([]model.Candle, error) {
	q := url.Values{}
	q.Set("symbol", vendorSymbol)
	q.Set("interval", intervalCode)
	q.Set("start", strconv.FormatInt(start.UTC().Unix(), 10))
	q.Set("end", strconv.FormatInt(end.UTC().Unix(), 10))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/candles?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("vendor fetch failed: status %d", resp.StatusCode)
	}

	var raw []vendorCandle
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, err
	}

	candles := make([]model.Candle, 0, len(raw))
	for _, c := range raw {
		candles = append(candles, model.Candle{
			Timestamp: time.Unix(c.Time, 0).UTC(),
			Open:      decimal.NewFromFloat(c.Open),
			High:      decimal.NewFromFloat(c.High),
			Low:       decimal.NewFromFloat(c.Low),
			Close:     decimal.NewFromFloat(c.Close),
			Volume:    decimal.NewFromFloat(c.Volume),
		})
	}
	return candles, nil
}
