package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

// HealthHandler handles GET /health — liveness probe.
// Returns 200 immediately; confirms the process is alive.
type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

func (h *HealthHandler) Liveness(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// ReadinessHandler handles GET /health/ready — readiness probe.
// Checks that the Backend answers HTTP at its base URL and, when the Redis
// session store is configured, that Redis responds to a ping.
type ReadinessHandler struct {
	backendURL string
	probe      *http.Client
	redis      *redis.Client // nil when sessions live in the cookie
}

func NewReadinessHandler(backendURL string, rdb *redis.Client) *ReadinessHandler {
	return &ReadinessHandler{
		backendURL: backendURL,
		probe:      &http.Client{Timeout: 3 * time.Second},
		redis:      rdb,
	}
}

type dependencyStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type readinessResponse struct {
	Status       string                      `json:"status"`
	Dependencies map[string]dependencyStatus `json:"dependencies"`
}

func (h *ReadinessHandler) Readiness(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	deps := make(map[string]dependencyStatus)
	healthy := true

	// --- Backend reachability ---
	// Any HTTP answer counts, including 404: the probe asserts the service
	// is up, not that the base path is routable.
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.backendURL+"/", nil)
	if err == nil {
		var resp *http.Response
		resp, err = h.probe.Do(req)
		if err == nil {
			resp.Body.Close()
		}
	}
	if err != nil {
		deps["backend"] = dependencyStatus{Status: "unhealthy", Error: err.Error()}
		healthy = false
	} else {
		deps["backend"] = dependencyStatus{Status: "ok"}
	}

	// --- Redis ping (only when session values live server-side) ---
	if h.redis != nil {
		if _, err := h.redis.Ping(ctx).Result(); err != nil {
			deps["redis"] = dependencyStatus{Status: "unhealthy", Error: err.Error()}
			healthy = false
		} else {
			deps["redis"] = dependencyStatus{Status: "ok"}
		}
	}

	status := "ok"
	httpStatus := http.StatusOK
	if !healthy {
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable
	}

	return c.JSON(httpStatus, readinessResponse{
		Status:       status,
		Dependencies: deps,
	})
}
