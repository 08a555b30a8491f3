// Package backend implements the HTTP client for the document service: the
// external system of record for users, documents and summaries.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/arnauze/Noosify/internal/api/metrics"
	"github.com/arnauze/Noosify/internal/core/domain"
	"github.com/arnauze/Noosify/internal/core/ports"
)

const defaultTimeout = 15 * time.Second

// userEnvelope is the 2xx body shape shared by login, create and fetch.
type userEnvelope struct {
	User *domain.User `json:"user"`
}

// Client talks to the document service. It satisfies ports.BackendClient.
type Client struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger
}

// NewClient builds a Client for the given base URL. Every call is bounded by
// timeout; a Backend that never answers surfaces as a failure, never a hang.
func NewClient(baseURL string, timeout time.Duration, log zerolog.Logger) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}
}

// Login verifies credentials. Any failure, including transport, comes back
// as a *domain.BackendError for the form to render.
func (c *Client) Login(ctx context.Context, username, password string) (*domain.User, error) {
	return c.credentialCall(ctx, "login", "/users/login", map[string]string{
		"username": username,
		"password": password,
	})
}

// Register creates an account. confirmPassword is forwarded verbatim: the
// Backend re-validates equality regardless of what the browser checked.
func (c *Client) Register(ctx context.Context, username, password, confirmPassword string) (*domain.User, error) {
	return c.credentialCall(ctx, "register", "/users/create", map[string]string{
		"username":         username,
		"password":         password,
		"confirm_password": confirmPassword,
	})
}

func (c *Client) credentialCall(ctx context.Context, op, path string, body map[string]string) (*domain.User, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.BackendRequestDuration.WithLabelValues(op, "unreachable").Observe(time.Since(start).Seconds())
		return nil, c.transportError(op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.BackendRequestDuration.WithLabelValues(op, "rejected").Observe(time.Since(start).Seconds())
		return nil, c.structuredError(resp)
	}
	metrics.BackendRequestDuration.WithLabelValues(op, "ok").Observe(time.Since(start).Seconds())

	var env userEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil || env.User == nil {
		return nil, c.transportError(op, fmt.Errorf("malformed user envelope (decode error: %v)", err))
	}
	return env.User, nil
}

// FetchUser resolves the session identity to a full user record, documents
// included. Failure here is a consistency failure, not a form error: the
// caller must abort the protected render.
func (c *Client) FetchUser(ctx context.Context, userID string) (*domain.User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/users/"+url.PathEscape(userID), nil)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.BackendRequestDuration.WithLabelValues("fetch_user", "unreachable").Observe(time.Since(start).Seconds())
		return nil, fmt.Errorf("fetch user %q: %v: %w", userID, err, domain.ErrBackendUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.BackendRequestDuration.WithLabelValues("fetch_user", "rejected").Observe(time.Since(start).Seconds())
		return nil, fmt.Errorf("fetch user %q: backend returned %d: %w", userID, resp.StatusCode, domain.ErrUserNotResolvable)
	}
	metrics.BackendRequestDuration.WithLabelValues("fetch_user", "ok").Observe(time.Since(start).Seconds())

	var env userEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil || env.User == nil {
		return nil, fmt.Errorf("fetch user %q: malformed user envelope (decode error: %v): %w", userID, err, domain.ErrBackendUnavailable)
	}
	return env.User, nil
}

// Upload forwards file parts to the Backend in a single multipart request,
// streamed through a pipe so file contents are never buffered whole. One
// scalar "username" field carries the upload's identity.
func (c *Client) Upload(ctx context.Context, userID string, parts ports.PartSource) error {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		err := writeUploadBody(mw, userID, parts)
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.Close()
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload", pr)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.BackendRequestDuration.WithLabelValues("upload", "unreachable").Observe(time.Since(start).Seconds())
		return c.transportError("upload", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.BackendRequestDuration.WithLabelValues("upload", "rejected").Observe(time.Since(start).Seconds())
		return c.structuredError(resp)
	}
	metrics.BackendRequestDuration.WithLabelValues("upload", "ok").Observe(time.Since(start).Seconds())

	// 2xx needs no body.
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func writeUploadBody(mw *multipart.Writer, userID string, parts ports.PartSource) error {
	if err := mw.WriteField("username", userID); err != nil {
		return err
	}
	for {
		part, err := parts.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		fw, err := mw.CreateFormFile("files", part.Filename)
		if err != nil {
			return err
		}
		if _, err := io.Copy(fw, part.Body); err != nil {
			return err
		}
	}
	return mw.Close()
}

// structuredError converts a non-2xx response into the Backend's opaque
// error payload, preserved verbatim for the form. An unparsable body still
// yields a renderable error.
func (c *Client) structuredError(resp *http.Response) *domain.BackendError {
	fields := map[string]any{}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&fields); err != nil {
		fields = map[string]any{"detail": http.StatusText(resp.StatusCode)}
	}
	return &domain.BackendError{Status: resp.StatusCode, Fields: fields}
}

// transportError folds an unreachable or misbehaving Backend into the same
// shape as a rejection, so form flows need a single failure path.
func (c *Client) transportError(op string, err error) *domain.BackendError {
	c.log.Error().Err(err).Str("operation", op).Msg("backend call failed")
	return &domain.BackendError{
		Status: 0,
		Fields: map[string]any{"detail": "the document service is unreachable, try again shortly"},
	}
}
