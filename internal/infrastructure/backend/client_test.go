package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/arnauze/Noosify/internal/core/domain"
	"github.com/arnauze/Noosify/internal/core/ports"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 2*time.Second, zerolog.Nop()), srv
}

func TestClient_Login_Success(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/users/login" {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("bad body: %v", err)
		}
		if body["username"] != "alice" || body["password"] != "secret" {
			t.Fatalf("unexpected credentials: %v", body)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"user": map[string]any{"username": "alice", "documents": []any{}},
		})
	})

	user, err := client.Login(context.Background(), "alice", "secret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if user.Username != "alice" {
		t.Fatalf("username = %q", user.Username)
	}
}

func TestClient_Login_RejectionPassedThroughVerbatim(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":"invalid credentials","hint":"caps lock?"}`))
	})

	_, err := client.Login(context.Background(), "alice", "wrong")
	var be *domain.BackendError
	if !errors.As(err, &be) {
		t.Fatalf("expected BackendError, got %v", err)
	}
	if be.Status != http.StatusUnauthorized {
		t.Fatalf("status = %d", be.Status)
	}
	if be.Detail() != "invalid credentials" {
		t.Fatalf("detail = %q", be.Detail())
	}
	// Backend-defined extra fields survive untouched.
	if be.Fields["hint"] != "caps lock?" {
		t.Fatalf("extra field lost: %v", be.Fields)
	}
}

func TestClient_Login_UnparsableErrorBodyStillRenders(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>nginx had a bad day</html>"))
	})

	_, err := client.Login(context.Background(), "alice", "secret")
	var be *domain.BackendError
	if !errors.As(err, &be) {
		t.Fatalf("expected BackendError, got %v", err)
	}
	if be.Detail() == "" {
		t.Fatal("detail must never be empty")
	}
}

func TestClient_Register_ForwardsConfirmPassword(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users/create" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["confirm_password"] != "secret2" {
			t.Fatalf("confirm_password = %q, want verbatim forwarding", body["confirm_password"])
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"user": map[string]any{"username": "bob"}})
	})

	user, err := client.Register(context.Background(), "bob", "secret", "secret2")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Username != "bob" {
		t.Fatalf("username = %q", user.Username)
	}
}

func TestClient_FetchUser_ParsesDocuments(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/users/alice" {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"user": map[string]any{
				"username": "alice",
				"documents": []map[string]any{
					{"id": 7, "filename": "q3.pdf", "summary": "quarterly numbers", "updated_at": "2026-03-01T10:00:00Z"},
				},
			},
		})
	})

	user, err := client.FetchUser(context.Background(), "alice")
	if err != nil {
		t.Fatalf("fetch user: %v", err)
	}
	if len(user.Documents) != 1 || user.Documents[0].Filename != "q3.pdf" {
		t.Fatalf("documents = %+v", user.Documents)
	}
}

func TestClient_FetchUser_NotFoundIsFatal(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"no such user"}`, http.StatusNotFound)
	})

	_, err := client.FetchUser(context.Background(), "ghost")
	if !errors.Is(err, domain.ErrUserNotResolvable) {
		t.Fatalf("expected ErrUserNotResolvable, got %v", err)
	}
}

func TestClient_FetchUser_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	client := NewClient(srv.URL, time.Second, zerolog.Nop())
	srv.Close() // nothing listening anymore

	_, err := client.FetchUser(context.Background(), "alice")
	if !errors.Is(err, domain.ErrBackendUnavailable) {
		t.Fatalf("expected ErrBackendUnavailable, got %v", err)
	}
}

func TestClient_Login_TimeoutBecomesFormError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	})
	client.http.Timeout = 50 * time.Millisecond

	_, err := client.Login(context.Background(), "alice", "secret")
	var be *domain.BackendError
	if !errors.As(err, &be) {
		t.Fatalf("timeout should fold into BackendError, got %v", err)
	}
	if be.Status != 0 {
		t.Fatalf("transport failures carry no backend status, got %d", be.Status)
	}
	if be.Detail() == "" {
		t.Fatal("detail must be renderable")
	}
}

// sliceSource yields in-memory parts, matching what the upload service
// produces from a browser form.
type sliceSource struct {
	parts []*ports.UploadPart
}

func (s *sliceSource) Next() (*ports.UploadPart, error) {
	if len(s.parts) == 0 {
		return nil, io.EOF
	}
	p := s.parts[0]
	s.parts = s.parts[1:]
	return p, nil
}

func TestClient_Upload_StreamsPartsAndIdentity(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/upload" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		if got := r.FormValue("username"); got != "alice" {
			t.Fatalf("username field = %q", got)
		}
		files := r.MultipartForm.File["files"]
		if len(files) != 2 {
			t.Fatalf("received %d files, want 2", len(files))
		}
		f, err := files[0].Open()
		if err != nil {
			t.Fatalf("open part: %v", err)
		}
		defer f.Close()
		body, _ := io.ReadAll(f)
		if string(body) != "first file" {
			t.Fatalf("first file content = %q", body)
		}
		w.WriteHeader(http.StatusOK)
	})

	src := &sliceSource{parts: []*ports.UploadPart{
		{Filename: "a.txt", ContentType: "text/plain", Body: strings.NewReader("first file")},
		{Filename: "b.pdf", ContentType: "application/pdf", Body: strings.NewReader("second file")},
	}}

	if err := client.Upload(context.Background(), "alice", src); err != nil {
		t.Fatalf("upload: %v", err)
	}
}

func TestClient_Upload_RejectionPassedThrough(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"detail":"File type is not allowed"}`))
	})

	src := &sliceSource{parts: []*ports.UploadPart{
		{Filename: "tool.exe", Body: strings.NewReader("binary")},
	}}

	err := client.Upload(context.Background(), "alice", src)
	var be *domain.BackendError
	if !errors.As(err, &be) {
		t.Fatalf("expected BackendError, got %v", err)
	}
	if be.Status != http.StatusUnprocessableEntity || be.Detail() != "File type is not allowed" {
		t.Fatalf("unexpected error: %d %q", be.Status, be.Detail())
	}
}
