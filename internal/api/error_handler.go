package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/arnauze/Noosify/internal/core/domain"
)

// errorPage is the render data for the error template.
type errorPage struct {
	Status  int
	Message string
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes; a
//     consistency failure (valid session, unresolvable user) surfaces as a
//     5xx-class response rather than a silently empty page.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders the error page, falling back to plain text if templates fail.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		if renderErr := c.Render(code, "error.html", errorPage{Status: code, Message: msg}); renderErr != nil {
			_ = c.String(code, msg)
		}
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from the router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	// Known domain errors → deterministic HTTP codes.
	switch {
	case errors.Is(err, domain.ErrUserNotResolvable):
		log.Error().Err(err).Msg("session references a user the backend cannot resolve")
		return http.StatusBadGateway, "your account could not be loaded, sign in again"
	case errors.Is(err, domain.ErrBackendUnavailable):
		log.Error().Err(err).Msg("backend unavailable")
		return http.StatusBadGateway, "the document service is unreachable, try again shortly"
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}
