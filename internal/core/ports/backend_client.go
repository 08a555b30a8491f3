package ports

import (
	"context"
	"io"

	"github.com/arnauze/Noosify/internal/core/domain"
)

// UploadPart is a single file part being forwarded to the Backend. Body is
// consumed exactly once, in order, so arbitrarily large files never have to
// be buffered in memory.
type UploadPart struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

// PartSource yields upload parts one at a time. Next returns io.EOF when the
// source is exhausted.
type PartSource interface {
	Next() (*UploadPart, error)
}

// BackendClient is the typed wrapper around the document service.
//
// Failure contracts differ per operation and callers must respect them:
//
//   - Login, Register and Upload fail with *domain.BackendError: the
//     Backend's structured error body passed through verbatim (transport
//     failures and timeouts are folded into the same shape). These are
//     user-correctable and belong on the form, never in the session.
//   - FetchUser fails with an error wrapping domain.ErrUserNotResolvable or
//     domain.ErrBackendUnavailable. Both are fatal for the request: there is
//     no safe partial view of a dashboard without its owner.
type BackendClient interface {
	Login(ctx context.Context, username, password string) (*domain.User, error)
	Register(ctx context.Context, username, password, confirmPassword string) (*domain.User, error)
	FetchUser(ctx context.Context, userID string) (*domain.User, error)
	Upload(ctx context.Context, userID string, parts PartSource) error
}
