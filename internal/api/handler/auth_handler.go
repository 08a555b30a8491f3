package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/arnauze/Noosify/internal/api/metrics"
	"github.com/arnauze/Noosify/internal/core/domain"
	"github.com/arnauze/Noosify/internal/core/ports"
	"github.com/arnauze/Noosify/internal/session"
)

// AuthHandler serves the anonymous entry points (login, register) and the
// logout route. Credential verification belongs to the Backend; this handler
// only forwards, commits the session on success, and renders the Backend's
// error verbatim on failure.
type AuthHandler struct {
	backend  ports.BackendClient
	sessions session.Store
}

func NewAuthHandler(backend ports.BackendClient, sessions session.Store) *AuthHandler {
	return &AuthHandler{backend: backend, sessions: sessions}
}

type loginForm struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
}

type registerForm struct {
	Username        string `form:"username"         validate:"required"`
	Password        string `form:"password"         validate:"required"`
	ConfirmPassword string `form:"confirm_password" validate:"required"`
}

// formPage is the render data for the login and register templates.
type formPage struct {
	Detail string
}

// LoginPage handles GET /.
func (h *AuthHandler) LoginPage(c echo.Context) error {
	return c.Render(http.StatusOK, "login.html", formPage{})
}

// Login handles POST /. On success the session gains userId and the browser
// is redirected to the dashboard; on failure the form re-renders with the
// Backend's detail and the session is left untouched.
func (h *AuthHandler) Login(c echo.Context) error {
	var form loginForm
	if err := c.Bind(&form); err != nil {
		return c.Render(http.StatusBadRequest, "login.html", formPage{Detail: "invalid form submission"})
	}
	if err := c.Validate(&form); err != nil {
		return c.Render(http.StatusBadRequest, "login.html", formPage{Detail: err.Error()})
	}

	user, err := h.backend.Login(c.Request().Context(), form.Username, form.Password)
	if err != nil {
		var be *domain.BackendError
		if errors.As(err, &be) {
			metrics.LoginsTotal.WithLabelValues(resultLabel(be)).Inc()
			return c.Render(formStatus(be), "login.html", formPage{Detail: be.Detail()})
		}
		return err
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	return h.establishSession(c, user.Username)
}

// RegisterPage handles GET /register.
func (h *AuthHandler) RegisterPage(c echo.Context) error {
	return c.Render(http.StatusOK, "register.html", formPage{})
}

// Register handles POST /register. Identical shape to Login; the password
// confirmation travels to the Backend verbatim, which re-validates it no
// matter what the browser checked.
func (h *AuthHandler) Register(c echo.Context) error {
	var form registerForm
	if err := c.Bind(&form); err != nil {
		return c.Render(http.StatusBadRequest, "register.html", formPage{Detail: "invalid form submission"})
	}
	if err := c.Validate(&form); err != nil {
		return c.Render(http.StatusBadRequest, "register.html", formPage{Detail: err.Error()})
	}

	user, err := h.backend.Register(c.Request().Context(), form.Username, form.Password, form.ConfirmPassword)
	if err != nil {
		var be *domain.BackendError
		if errors.As(err, &be) {
			metrics.RegistrationsTotal.WithLabelValues(resultLabel(be)).Inc()
			return c.Render(formStatus(be), "register.html", formPage{Detail: be.Detail()})
		}
		return err
	}

	metrics.RegistrationsTotal.WithLabelValues("success").Inc()
	return h.establishSession(c, user.Username)
}

// Logout handles GET /logout. Clearing is unconditional and cannot fail:
// even a request with no session at all gets the expiring cookie and the
// redirect home.
func (h *AuthHandler) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	sess := h.sessions.Decode(ctx, c.Request().Header.Get("Cookie"))
	c.SetCookie(h.sessions.Clear(ctx, sess))
	return c.Redirect(http.StatusFound, "/")
}

func (h *AuthHandler) establishSession(c echo.Context, username string) error {
	ctx := c.Request().Context()
	sess := h.sessions.Decode(ctx, c.Request().Header.Get("Cookie"))
	sess.Set(domain.SessionKeyUserID, username)

	cookie, err := h.sessions.Encode(ctx, sess)
	if err != nil {
		return fmt.Errorf("commit session: %w", err)
	}
	c.SetCookie(cookie)
	return c.Redirect(http.StatusFound, "/dashboard")
}

// resultLabel classifies a Backend failure for metrics: a transport failure
// (no status) is an error on our side of the contract, anything else is the
// Backend rejecting the submission.
func resultLabel(be *domain.BackendError) string {
	if be.Status == 0 {
		return "error"
	}
	return "rejected"
}

// formStatus picks the response status for a re-rendered form: the Backend's
// own 4xx where it gave one, 502 for transport failures and Backend 5xx.
func formStatus(be *domain.BackendError) int {
	if be.Status >= 400 && be.Status < 500 {
		return be.Status
	}
	return http.StatusBadGateway
}
