package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang-signal-settler/internal/settlement/dto"
	"golang-signal-settler/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSettlementService struct {
	result *dto.CycleResult
	err    error
}

func (f *fakeSettlementService) RunCycle(_ context.Context) (*dto.CycleResult, error) {
	return f.result, f.err
}

func TestHealth(t *testing.T) {
	e := echo.New()
	handler := NewSettlementHandler(&fakeSettlementService{}, logger.NewNop())
	handler.RegisterRoutes(e)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok"`)
}

func TestRunCycleReturnsSummary(t *testing.T) {
	result := &dto.CycleResult{
		StartedAt: time.Now(),
		Elapsed:   120 * time.Millisecond,
		Signals: []dto.SignalResult{
			{SignalID: "sig1", Pair: "XAUUSD", Status: dto.ResultSettled, Outcome: "WON", Notified: true},
			{SignalID: "sig2", Pair: "EURUSD", Status: dto.ResultPending},
		},
	}
	e := echo.New()
	handler := NewSettlementHandler(&fakeSettlementService{result: result}, logger.NewNop())
	handler.RegisterRoutes(e)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/settlement/run", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"settled":1`)
	assert.Contains(t, rec.Body.String(), `"still_pending":1`)
}

func TestRunCycleReportsFailure(t *testing.T) {
	e := echo.New()
	handler := NewSettlementHandler(&fakeSettlementService{err: errors.New("store authentication failed")}, logger.NewNop())
	handler.RegisterRoutes(e)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/settlement/run", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
