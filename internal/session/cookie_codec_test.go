package session

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"
)

const testSecret = "test-secret-please-rotate"

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func header(c *http.Cookie) string {
	return c.Name + "=" + c.Value
}

func TestCookieCodec_RoundTrip(t *testing.T) {
	codec := NewCookieCodec("noosify_session", testSecret, time.Hour)

	h := NewHandle()
	h.Set("userId", "alice")

	cookie, err := codec.Encode(context.Background(), h)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if cookie.Name != "noosify_session" || cookie.Value == "" {
		t.Fatalf("unexpected cookie: %+v", cookie)
	}
	if !cookie.HttpOnly {
		t.Fatal("session cookie must be HttpOnly")
	}

	decoded := codec.Decode(context.Background(), header(cookie))
	if !decoded.Has("userId") || decoded.Get("userId") != "alice" {
		t.Fatalf("round trip lost userId: %+v", decoded.Values())
	}
}

func TestCookieCodec_AbsentOrMalformed(t *testing.T) {
	codec := NewCookieCodec("noosify_session", testSecret, time.Hour)

	for name, cookieHeader := range map[string]string{
		"no header":       "",
		"other cookie":    "theme=dark",
		"not a jwt":       "noosify_session=garbage",
		"empty value":     "noosify_session=",
		"unparsable line": ";;;",
	} {
		h := codec.Decode(context.Background(), cookieHeader)
		if h == nil {
			t.Fatalf("%s: decode returned nil, want empty handle", name)
		}
		if h.Has("userId") || h.Len() != 0 {
			t.Fatalf("%s: expected empty handle, got %+v", name, h.Values())
		}
	}
}

func TestCookieCodec_TamperedSignature(t *testing.T) {
	codec := NewCookieCodec("noosify_session", testSecret, time.Hour)

	h := NewHandle()
	h.Set("userId", "alice")
	cookie, err := codec.Encode(context.Background(), h)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	// Flip the signature segment. A forged userId must decode to nothing.
	parts := strings.Split(cookie.Value, ".")
	if len(parts) != 3 {
		t.Fatalf("expected a three-segment token, got %d", len(parts))
	}
	parts[2] = strings.Repeat("A", len(parts[2]))
	forged := codec.Decode(context.Background(), "noosify_session="+strings.Join(parts, "."))
	if forged.Has("userId") {
		t.Fatal("tampered cookie decoded as authenticated")
	}
}

func TestCookieCodec_WrongSecret(t *testing.T) {
	signer := NewCookieCodec("noosify_session", "attacker-secret", time.Hour)
	codec := NewCookieCodec("noosify_session", testSecret, time.Hour)

	h := NewHandle()
	h.Set("userId", "mallory")
	cookie, err := signer.Encode(context.Background(), h)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	decoded := codec.Decode(context.Background(), header(cookie))
	if decoded.Has("userId") {
		t.Fatal("cookie signed with the wrong secret decoded as authenticated")
	}
}

func TestCookieCodec_Expired(t *testing.T) {
	issued := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	codec := NewCookieCodec("noosify_session", testSecret, time.Hour).WithClock(fixedClock(issued))

	h := NewHandle()
	h.Set("userId", "alice")
	cookie, err := codec.Encode(context.Background(), h)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	// Still valid just before expiry.
	codec.WithClock(fixedClock(issued.Add(59 * time.Minute)))
	if !codec.Decode(context.Background(), header(cookie)).Has("userId") {
		t.Fatal("session expired early")
	}

	// Empty after expiry, same as absent.
	codec.WithClock(fixedClock(issued.Add(2 * time.Hour)))
	if codec.Decode(context.Background(), header(cookie)).Has("userId") {
		t.Fatal("expired session still decoded as authenticated")
	}
}

func TestCookieCodec_DeterministicEncoding(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	codec := NewCookieCodec("noosify_session", testSecret, time.Hour).WithClock(fixedClock(now))

	h := NewHandle()
	h.Set("userId", "alice")

	first, err := codec.Encode(context.Background(), h)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	second, err := codec.Encode(context.Background(), h)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if first.Value != second.Value {
		t.Fatal("same handle contents and clock produced different cookies")
	}
}

func TestCookieCodec_ClearExpiresImmediately(t *testing.T) {
	codec := NewCookieCodec("noosify_session", testSecret, time.Hour)

	cleared := codec.Clear(context.Background(), NewHandle())
	if cleared.MaxAge >= 0 {
		t.Fatalf("clear cookie MaxAge = %d, want negative", cleared.MaxAge)
	}
	if cleared.Value != "" {
		t.Fatalf("clear cookie still carries a value: %q", cleared.Value)
	}

	// A cleared cookie decodes to an anonymous session.
	if codec.Decode(context.Background(), header(cleared)).Len() != 0 {
		t.Fatal("cleared cookie decoded to a non-empty handle")
	}
}

func TestHandle_Operations(t *testing.T) {
	h := NewHandle()
	if h.Has("userId") {
		t.Fatal("fresh handle should be empty")
	}
	h.Set("userId", "alice")
	if got := h.Get("userId"); got != "alice" {
		t.Fatalf("Get = %q, want alice", got)
	}
	h.Delete("userId")
	if h.Has("userId") || h.Len() != 0 {
		t.Fatal("delete did not remove the key")
	}
}
