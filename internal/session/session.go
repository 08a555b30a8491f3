// Package session implements the client-held session record: an opaque
// key/value map bound to a cookie, integrity-protected so the browser cannot
// forge its contents.
package session

import (
	"context"
	"net/http"
)

// Handle is a decoded session. Callers may use it unconditionally: decoding
// an absent, malformed or tampered cookie yields a valid empty handle.
type Handle struct {
	// ID binds the handle to a server-side record for stores that keep
	// values out of the cookie. The self-contained cookie codec ignores it.
	ID string

	values map[string]string
}

// NewHandle returns an empty session handle.
func NewHandle() *Handle {
	return &Handle{values: make(map[string]string)}
}

func (h *Handle) Has(key string) bool {
	_, ok := h.values[key]
	return ok
}

func (h *Handle) Get(key string) string {
	return h.values[key]
}

func (h *Handle) Set(key, value string) {
	h.values[key] = value
}

func (h *Handle) Delete(key string) {
	delete(h.values, key)
}

// Len reports the number of keys currently set.
func (h *Handle) Len() int {
	return len(h.values)
}

// Values returns a copy of the handle's key/value pairs.
func (h *Handle) Values() map[string]string {
	out := make(map[string]string, len(h.values))
	for k, v := range h.values {
		out[k] = v
	}
	return out
}

// Store encodes sessions to Set-Cookie values and back.
type Store interface {
	// Decode reads the session out of a raw Cookie header. It never fails:
	// anything unreadable comes back as an empty handle.
	Decode(ctx context.Context, cookieHeader string) *Handle

	// Encode persists the handle and returns the cookie to set on the
	// response.
	Encode(ctx context.Context, h *Handle) (*http.Cookie, error)

	// Clear discards the session and returns a cookie that expires it
	// immediately. Clearing cannot fail from the caller's perspective.
	Clear(ctx context.Context, h *Handle) *http.Cookie
}

// CookieValue extracts the named cookie from a raw Cookie header line.
func CookieValue(header, name string) string {
	cookies, err := http.ParseCookie(header)
	if err != nil {
		return ""
	}
	for _, c := range cookies {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}
