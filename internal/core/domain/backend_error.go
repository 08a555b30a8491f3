package domain

// BackendError is the structured error body the Backend returns on a non-2xx
// response to login, register or upload. Its shape is Backend-defined beyond
// the "detail" string, so the whole payload is kept opaque and passed through
// to the form verbatim.
type BackendError struct {
	Status int
	Fields map[string]any
}

// Detail returns the Backend's human-readable message, or a generic one when
// the body carried none (e.g. an unparsable or empty error response).
func (e *BackendError) Detail() string {
	if e == nil {
		return ""
	}
	if d, ok := e.Fields["detail"].(string); ok && d != "" {
		return d
	}
	return "the document service rejected the request"
}

func (e *BackendError) Error() string {
	return e.Detail()
}
