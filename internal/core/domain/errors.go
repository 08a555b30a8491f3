package domain

import "errors"

// ErrUserNotResolvable means a session referenced a user the Backend could
// not resolve (deleted account, dangling cookie). Fatal for the request:
// a dashboard must never render without its owner's identity.
var ErrUserNotResolvable = errors.New("user not resolvable")

// ErrNoFilesSelected is returned when an upload submission contains no file
// parts. Rejected before any Backend call.
var ErrNoFilesSelected = errors.New("no files selected")

// ErrBackendUnavailable covers transport-level failures (connection refused,
// timeout) on paths where the Backend's answer is mandatory.
var ErrBackendUnavailable = errors.New("backend unavailable")
