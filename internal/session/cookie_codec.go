package session

import (
	"context"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// valuesClaim is the JWT claim holding the session's key/value map.
const valuesClaim = "data"

// CookieCodec is the default Store: a self-contained HS256-signed cookie.
// No server-side state is kept, so concurrent requests need no coordination.
//
// Encoding is deterministic for fixed handle contents and a fixed clock:
// claims serialise with sorted keys, so equal handles produce equal cookies.
type CookieCodec struct {
	name   string
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewCookieCodec(name, secret string, ttl time.Duration) *CookieCodec {
	return &CookieCodec{
		name:   name,
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// WithClock replaces the codec's clock. Intended for tests.
func (c *CookieCodec) WithClock(now func() time.Time) *CookieCodec {
	c.now = now
	return c
}

func (c *CookieCodec) Decode(_ context.Context, cookieHeader string) *Handle {
	raw := CookieValue(cookieHeader, c.name)
	if raw == "" {
		return NewHandle()
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.now),
		jwt.WithExpirationRequired(),
	)

	claims := jwt.MapClaims{}
	token, err := parser.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return c.secret, nil
	})
	if err != nil || !token.Valid {
		// Tampered, expired or garbage. Same as absent.
		return NewHandle()
	}

	h := NewHandle()
	data, _ := claims[valuesClaim].(map[string]any)
	for k, v := range data {
		if s, ok := v.(string); ok {
			h.Set(k, s)
		}
	}
	return h
}

func (c *CookieCodec) Encode(_ context.Context, h *Handle) (*http.Cookie, error) {
	now := c.now()
	claims := jwt.MapClaims{
		valuesClaim: h.values,
		"iat":       now.Unix(),
		"exp":       now.Add(c.ttl).Unix(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return nil, err
	}

	return &http.Cookie{
		Name:     c.name,
		Value:    signed,
		Path:     "/",
		MaxAge:   int(c.ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}, nil
}

func (c *CookieCodec) Clear(_ context.Context, _ *Handle) *http.Cookie {
	return &http.Cookie{
		Name:     c.name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}
