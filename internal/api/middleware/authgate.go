package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/arnauze/Noosify/internal/api/metrics"
	"github.com/arnauze/Noosify/internal/core/domain"
	"github.com/arnauze/Noosify/internal/session"
)

// AuthGate decides, per request, whether a protected view may proceed. It is
// the only authorization check in the system and re-runs on every request:
// no caching, no long-lived protected-state assumption.
//
// A request without an authenticated session is redirected to the anonymous
// entry point before any Backend call can happen. A tampered or expired
// cookie decodes to an empty session and takes the same redirect, never an
// error.
func AuthGate(store session.Store) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := store.Decode(c.Request().Context(), c.Request().Header.Get("Cookie"))
			if !h.Has(domain.SessionKeyUserID) {
				metrics.AuthGateRedirectsTotal.Inc()
				return c.Redirect(http.StatusFound, "/")
			}

			c.Set("session", h)
			return next(c)
		}
	}
}
