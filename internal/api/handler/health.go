package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

const readinessTimeout = 3 * time.Second

// ReadinessCheck pings one dependency. The name keys the check in the
// readiness response.
type ReadinessCheck struct {
	Name string
	Ping func(ctx context.Context) error
}

// HealthHandler answers the liveness and readiness probes. Liveness only
// says the process is up; readiness runs every registered check.
type HealthHandler struct {
	checks []ReadinessCheck
}

func NewHealthHandler(checks ...ReadinessCheck) *HealthHandler {
	return &HealthHandler{checks: checks}
}

func (h *HealthHandler) Liveness(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

type checkResult struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Readiness returns 200 when every dependency answers, 503 otherwise, with
// a per-dependency breakdown either way.
func (h *HealthHandler) Readiness(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), readinessTimeout)
	defer cancel()

	results := make(map[string]checkResult, len(h.checks))
	ready := true
	for _, check := range h.checks {
		if err := check.Ping(ctx); err != nil {
			results[check.Name] = checkResult{Status: "unhealthy", Error: err.Error()}
			ready = false
			continue
		}
		results[check.Name] = checkResult{Status: "ok"}
	}

	status, code := "ok", http.StatusOK
	if !ready {
		status, code = "degraded", http.StatusServiceUnavailable
	}
	return c.JSON(code, map[string]any{
		"status":       status,
		"dependencies": results,
	})
}
