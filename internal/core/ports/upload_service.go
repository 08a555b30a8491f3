package ports

import (
	"context"
	"mime/multipart"
)

// UploadService turns an incoming multipart form into one forwarded Backend
// upload carrying the session identity. A submission with zero file parts is
// rejected with domain.ErrNoFilesSelected before any network call.
type UploadService interface {
	Forward(ctx context.Context, userID string, form *multipart.Reader) error
}
