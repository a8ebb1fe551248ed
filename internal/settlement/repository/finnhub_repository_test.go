package repository

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang-signal-settler/internal/settlement/config"
	"golang-signal-settler/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFinnhubTestRepo(baseURL string) QuoteRepository {
	cfg := &config.Config{
		Worker: config.Worker{QuoteTimeout: 5 * time.Second},
		Finnhub: config.Finnhub{
			BaseURL:             baseURL,
			APIKey:              "test-key",
			MaxRequestPerMinute: 600,
		},
	}
	return NewFinnhubRepository(cfg, logger.NewNop())
}

func TestGetQuoteReturnsCurrentPrice(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "XAUUSD", r.URL.Query().Get("symbol"))
		assert.Equal(t, "test-key", r.URL.Query().Get("token"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"c":2055.5,"h":2060,"l":2040,"o":2045,"pc":2044,"t":1700000000}`))
	}))
	defer server.Close()

	price, err := newFinnhubTestRepo(server.URL).GetQuote(context.Background(), "XAUUSD")
	require.NoError(t, err)
	assert.Equal(t, 2055.5, price)
}

func TestGetQuoteRejectsEmptySymbol(t *testing.T) {
	_, err := newFinnhubTestRepo("http://unused").GetQuote(context.Background(), "")
	require.Error(t, err)
}

func TestGetQuoteMalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer server.Close()

	_, err := newFinnhubTestRepo(server.URL).GetQuote(context.Background(), "XAUUSD")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed quote response")
}

func TestGetQuoteMissingPrice(t *testing.T) {
	// Finnhub answers unknown symbols with zeroes rather than an error.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"c":0,"h":0,"l":0,"o":0,"pc":0,"t":0}`))
	}))
	defer server.Close()

	_, err := newFinnhubTestRepo(server.URL).GetQuote(context.Background(), "BOGUS")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no price available")
}

func TestGetQuoteHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := newFinnhubTestRepo(server.URL).GetQuote(context.Background(), "XAUUSD")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 429")
}
