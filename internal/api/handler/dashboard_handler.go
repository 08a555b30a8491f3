package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/arnauze/Noosify/internal/api/metrics"
	"github.com/arnauze/Noosify/internal/core/domain"
	"github.com/arnauze/Noosify/internal/core/ports"
)

// DashboardHandler serves the protected document view and its upload action.
// Both routes sit behind the AuthGate middleware.
type DashboardHandler struct {
	backend ports.BackendClient
	uploads ports.UploadService
}

func NewDashboardHandler(backend ports.BackendClient, uploads ports.UploadService) *DashboardHandler {
	return &DashboardHandler{backend: backend, uploads: uploads}
}

// dashboardPage is the render data for the dashboard template.
type dashboardPage struct {
	Username      string
	Documents     []domain.Document
	UploadError   string
	UploadSuccess bool
}

// View handles GET /dashboard: one Backend fetch per entry, no session-side
// caching of the user record. A fetch failure aborts the render; an empty
// dashboard must never stand in for an unresolved account.
func (h *DashboardHandler) View(c echo.Context) error {
	_, userID, err := ctxSession(c)
	if err != nil {
		return err
	}

	page, err := h.loadPage(c, userID)
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "dashboard.html", page)
}

// Upload handles POST /dashboard. The transaction forwards the file parts
// with the session identity attached; either outcome re-renders the view
// with a freshly fetched document list. The session itself is never touched.
func (h *DashboardHandler) Upload(c echo.Context) error {
	_, userID, err := ctxSession(c)
	if err != nil {
		return err
	}

	form, err := c.Request().MultipartReader()
	if err != nil {
		// Not a multipart submission at all. Same outcome as an empty one.
		return h.renderUploadError(c, userID, http.StatusBadRequest, "select at least one file to upload")
	}

	switch err := h.uploads.Forward(c.Request().Context(), userID, form); {
	case err == nil:
		metrics.UploadsTotal.WithLabelValues("success").Inc()

	case errors.Is(err, domain.ErrNoFilesSelected):
		metrics.UploadsTotal.WithLabelValues("rejected").Inc()
		return h.renderUploadError(c, userID, http.StatusBadRequest, "select at least one file to upload")

	default:
		var be *domain.BackendError
		if !errors.As(err, &be) {
			return err
		}
		metrics.UploadsTotal.WithLabelValues(resultLabel(be)).Inc()
		return h.renderUploadError(c, userID, formStatus(be), be.Detail())
	}

	page, err := h.loadPage(c, userID)
	if err != nil {
		return err
	}
	page.UploadSuccess = true
	return c.Render(http.StatusOK, "dashboard.html", page)
}

// loadPage fetches the user and re-sorts the document list defensively: the
// Backend guarantees no ordering.
func (h *DashboardHandler) loadPage(c echo.Context, userID string) (dashboardPage, error) {
	user, err := h.backend.FetchUser(c.Request().Context(), userID)
	if err != nil {
		return dashboardPage{}, err
	}

	domain.SortDocuments(user.Documents)
	return dashboardPage{
		Username:  user.Username,
		Documents: user.Documents,
	}, nil
}

func (h *DashboardHandler) renderUploadError(c echo.Context, userID string, status int, detail string) error {
	page, err := h.loadPage(c, userID)
	if err != nil {
		return err
	}
	page.UploadError = detail
	return c.Render(status, "dashboard.html", page)
}
