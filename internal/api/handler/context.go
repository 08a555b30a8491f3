package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/arnauze/Noosify/internal/core/domain"
	"github.com/arnauze/Noosify/internal/session"
)

// ctxSession extracts the session handle injected by the AuthGate middleware
// and fast-fails before any Backend call:
//   - the handle must be present (presence proves the gate ran).
//   - userId must be non-empty; a gated request without one means the route
//     was wired without the gate, which is a server bug, not a client error.
func ctxSession(c echo.Context) (*session.Handle, string, error) {
	h, _ := c.Get("session").(*session.Handle)
	if h == nil {
		return nil, "", echo.NewHTTPError(http.StatusInternalServerError, "protected route served without auth gate")
	}

	userID := h.Get(domain.SessionKeyUserID)
	if userID == "" {
		return nil, "", echo.NewHTTPError(http.StatusInternalServerError, "session missing user identity")
	}

	return h, userID, nil
}
