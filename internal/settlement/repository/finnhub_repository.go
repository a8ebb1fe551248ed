package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang-signal-settler/internal/settlement/config"
	"golang-signal-settler/pkg/logger"

	"golang.org/x/time/rate"
)

// QuoteRepository fetches the current market price for an instrument
// symbol. Each call is one outbound request; results are never cached
// across signals within a cycle.
type QuoteRepository interface {
	GetQuote(ctx context.Context, symbol string) (float64, error)
}

// finnhubQuote mirrors the relevant part of the Finnhub /quote response.
type finnhubQuote struct {
	Current       float64 `json:"c"`
	High          float64 `json:"h"`
	Low           float64 `json:"l"`
	Open          float64 `json:"o"`
	PreviousClose float64 `json:"pc"`
	Timestamp     int64   `json:"t"`
}

type finnhubRepository struct {
	cfg            *config.Config
	log            *logger.Logger
	httpClient     *http.Client
	requestLimiter *rate.Limiter
}

// NewFinnhubRepository creates a Finnhub-backed quote repository.
func NewFinnhubRepository(cfg *config.Config, log *logger.Logger) QuoteRepository {
	secondsPerRequest := time.Minute / time.Duration(cfg.Finnhub.MaxRequestPerMinute)
	return &finnhubRepository{
		cfg: cfg,
		log: log,
		httpClient: &http.Client{
			Timeout: cfg.Worker.QuoteTimeout,
		},
		requestLimiter: rate.NewLimiter(rate.Every(secondsPerRequest), 1),
	}
}

func (r *finnhubRepository) GetQuote(ctx context.Context, symbol string) (float64, error) {
	if symbol == "" {
		return 0, fmt.Errorf("symbol is empty")
	}

	if err := r.requestLimiter.Wait(ctx); err != nil {
		return 0, fmt.Errorf("failed to wait for request limit: %w", err)
	}

	reqURL := fmt.Sprintf("%s/quote?symbol=%s&token=%s",
		r.cfg.Finnhub.BaseURL, url.QueryEscape(symbol), url.QueryEscape(r.cfg.Finnhub.APIKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch quote for %s: %w", symbol, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("failed to read quote response for %s: %w", symbol, err)
	}

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("quote request for %s returned status %d", symbol, resp.StatusCode)
	}

	var quote finnhubQuote
	if err := json.Unmarshal(body, &quote); err != nil {
		return 0, fmt.Errorf("malformed quote response for %s: %w", symbol, err)
	}

	// Finnhub reports c=0 for unknown symbols.
	if quote.Current <= 0 {
		return 0, fmt.Errorf("no price available for %s", symbol)
	}

	r.log.DebugContext(ctx, "Fetched quote",
		logger.StringField("symbol", symbol),
		logger.Float64Field("price", quote.Current))

	return quote.Current, nil
}
