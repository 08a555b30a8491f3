package service

import (
	"context"
	"errors"
	"io"
	"mime/multipart"

	"github.com/arnauze/Noosify/internal/core/domain"
	"github.com/arnauze/Noosify/internal/core/ports"
)

// fileFieldName is the form field the browser submits file parts under.
const fileFieldName = "files"

// UploadService forwards an incoming multipart upload to the Backend as a
// single outgoing multipart request with the session identity attached.
// Identity is a read-only input here: the transaction never touches the
// session.
type UploadService struct {
	backend ports.BackendClient
}

func NewUploadService(backend ports.BackendClient) *UploadService {
	return &UploadService{backend: backend}
}

// Forward streams the form's file parts to the Backend. The incoming reader
// is consumed lazily, part by part, so files are never buffered whole.
func (s *UploadService) Forward(ctx context.Context, userID string, form *multipart.Reader) error {
	if form == nil {
		return domain.ErrNoFilesSelected
	}

	src := &filePartSource{form: form}

	// Locate the first file part before opening a connection: an empty
	// selection must be rejected without a Backend call.
	first, err := src.Next()
	if errors.Is(err, io.EOF) {
		return domain.ErrNoFilesSelected
	}
	if err != nil {
		return err
	}

	return s.backend.Upload(ctx, userID, &replaySource{head: first, tail: src})
}

// filePartSource yields only file parts submitted under fileFieldName,
// skipping scalar fields and nameless parts.
type filePartSource struct {
	form *multipart.Reader
}

func (s *filePartSource) Next() (*ports.UploadPart, error) {
	for {
		part, err := s.form.NextPart()
		if err != nil {
			return nil, err
		}
		if part.FormName() != fileFieldName || part.FileName() == "" {
			continue
		}
		return &ports.UploadPart{
			Filename:    part.FileName(),
			ContentType: part.Header.Get("Content-Type"),
			Body:        part,
		}, nil
	}
}

// replaySource re-emits an already-read head part before draining the rest.
type replaySource struct {
	head *ports.UploadPart
	tail ports.PartSource
}

func (s *replaySource) Next() (*ports.UploadPart, error) {
	if s.head != nil {
		head := s.head
		s.head = nil
		return head, nil
	}
	return s.tail.Next()
}
