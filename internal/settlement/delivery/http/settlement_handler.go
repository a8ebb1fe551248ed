package http

import (
	"net/http"

	"golang-signal-settler/internal/settlement/service"
	"golang-signal-settler/pkg/logger"

	"github.com/labstack/echo/v4"
)

// SettlementHandler exposes the operational HTTP surface: a health check
// and a manual cycle trigger. The trigger may race the scheduled cycle;
// the conditional settle keeps that safe.
type SettlementHandler struct {
	settlementService service.SettlementService
	logger            *logger.Logger
}

// NewSettlementHandler creates a new SettlementHandler.
func NewSettlementHandler(settlementService service.SettlementService, logger *logger.Logger) *SettlementHandler {
	return &SettlementHandler{settlementService: settlementService, logger: logger}
}

// RegisterRoutes registers the settlement routes to the Echo instance.
func (h *SettlementHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)
	e.POST("/api/v1/settlement/run", h.RunCycle)
}

// Health reports process liveness.
func (h *SettlementHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}

// RunCycle triggers one settlement cycle immediately and returns its
// summary.
func (h *SettlementHandler) RunCycle(c echo.Context) error {
	result, err := h.settlementService.RunCycle(c.Request().Context())
	if err != nil {
		h.logger.Error("Manual settlement cycle failed", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"settled":       result.Settled(),
		"still_pending": result.StillPending(),
		"skipped":       result.Skipped(),
		"failed":        result.Failed(),
		"elapsed":       result.Elapsed.String(),
		"signals":       result.Signals,
	})
}
