package marketdata

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mtfscanner/internal/model"
)

func TestHTTPProvider_Fetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "EURUSD", r.URL.Query().Get("symbol"))
		assert.Equal(t, "60m", r.URL.Query().Get("interval"))
		json.NewEncoder(w).Encode([]vendorCandle{
			{Time: 0, Open: 1, High: 1.1, Low: 0.9, Close: 1.05, Volume: 100},
		})
	}))
	defer server.Close()

	p := NewHTTPProvider(server.URL)
	candles, err := p.Fetch(context.Background(), "EURUSD", "60m", time.Unix(0, 0), time.Unix(3600, 0))
	require.NoError(t, err)
	require.Len(t, candles, 1)
	assert.True(t, candles[0].Close.Equal(decimal.NewFromFloat(1.05)))
}

func TestHTTPProvider_NonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	p := NewHTTPProvider(server.URL)
	_, err := p.Fetch(context.Background(), "EURUSD", "60m", time.Unix(0, 0), time.Unix(3600, 0))
	assert.Error(t, err)
}

func TestMemoryProvider_SeedDoesNotCountAsFetch(t *testing.T) {
	p := NewMemoryProvider()
	p.Seed("EURUSD", "60m", []model.Candle{})
	assert.Equal(t, 0, p.FetchCount())
}
