package redis

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/arnauze/Noosify/internal/session"
)

const keyPrefix = "session:"

// SessionStore keeps session values server-side in a Redis hash. The cookie
// carries only an unguessable random id, so tampering reduces to presenting
// an id Redis has never seen, which decodes to an empty handle.
type SessionStore struct {
	client *redis.Client
	name   string
	ttl    time.Duration
	log    zerolog.Logger
}

func NewSessionStore(client *redis.Client, cookieName string, ttl time.Duration, log zerolog.Logger) *SessionStore {
	return &SessionStore{client: client, name: cookieName, ttl: ttl, log: log}
}

func (s *SessionStore) Decode(ctx context.Context, cookieHeader string) *session.Handle {
	sid := session.CookieValue(cookieHeader, s.name)
	if sid == "" {
		return session.NewHandle()
	}
	if _, err := uuid.Parse(sid); err != nil {
		return session.NewHandle()
	}

	values, err := s.client.HGetAll(ctx, keyPrefix+sid).Result()
	if err != nil || len(values) == 0 {
		if err != nil {
			s.log.Warn().Err(err).Msg("session lookup failed, treating as anonymous")
		}
		return session.NewHandle()
	}

	h := session.NewHandle()
	h.ID = sid
	for k, v := range values {
		h.Set(k, v)
	}
	return h
}

func (s *SessionStore) Encode(ctx context.Context, h *session.Handle) (*http.Cookie, error) {
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	key := keyPrefix + h.ID

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, key)
	if h.Len() > 0 {
		pipe.HSet(ctx, key, h.Values())
		pipe.Expire(ctx, key, s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}

	return &http.Cookie{
		Name:     s.name,
		Value:    h.ID,
		Path:     "/",
		MaxAge:   int(s.ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}, nil
}

// Clear deletes the server-side record and expires the cookie. A Redis error
// here is logged and ignored: the record times out on its own and the cookie
// can always be expired.
func (s *SessionStore) Clear(ctx context.Context, h *session.Handle) *http.Cookie {
	if h.ID != "" {
		if err := s.client.Del(ctx, keyPrefix+h.ID).Err(); err != nil {
			s.log.Warn().Err(err).Msg("failed to delete server-side session")
		}
	}
	return &http.Cookie{
		Name:     s.name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}
