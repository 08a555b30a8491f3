package domain

import (
	"sort"
	"time"
)

// SessionKeyUserID is the only key the gateway stores in a session. Its value
// is the username returned by the Backend on login/register.
//
// The Backend addresses users by username (GET /users/{username}); there is
// no surrogate id to store, so renaming a user would orphan the session.
const SessionKeyUserID = "userId"

// User models the Backend's record of an account, held transiently for the
// duration of a single request. The gateway never persists it.
type User struct {
	Username  string     `json:"username"`
	Documents []Document `json:"documents"`
}

// Document is a single uploaded file as the Backend reports it.
type Document struct {
	ID        int       `json:"id"`
	Filename  string    `json:"filename"`
	Summary   string    `json:"summary"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SortDocuments orders documents by updated_at descending, newest first.
// The Backend does not guarantee any ordering, so every read path must sort
// before rendering.
func SortDocuments(docs []Document) {
	sort.SliceStable(docs, func(i, j int) bool {
		return docs[i].UpdatedAt.After(docs[j].UpdatedAt)
	})
}
