// Package common defines shared constants and sentinel errors used across
// the engine, the stores and the transport. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Swap engine taxonomy. Every rejected operation returns exactly one of
	// these (possibly wrapped with context).
	ErrorNotFound       = errors.New("not found")
	ErrorForbidden      = errors.New("forbidden")
	ErrorInvalidRequest = errors.New("invalid request")
	ErrorInvalidState   = errors.New("invalid state")
	ErrorConflict       = errors.New("conflict")
	ErrorInconsistent   = errors.New("inconsistent")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Store-level optimistic concurrency failure; the engine reports it as
	// ErrorConflict.
	ErrVersionConflict = errors.New("version conflict")

	// Auth errors (invalid, malformed or expired token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// Kind names used on the wire.
const (
	KindNotFound       = "NOT_FOUND"
	KindForbidden      = "FORBIDDEN"
	KindInvalidRequest = "INVALID_REQUEST"
	KindInvalidState   = "INVALID_STATE"
	KindConflict       = "CONFLICT"
	KindInconsistent   = "INCONSISTENT"
	KindUnauthorized   = "UNAUTHORIZED"
	KindInternal       = "INTERNAL"
)

var kinds = []struct {
	err  error
	kind string
}{
	{ErrorNotFound, KindNotFound},
	{ErrorForbidden, KindForbidden},
	{ErrorInvalidRequest, KindInvalidRequest},
	{ErrorInvalidState, KindInvalidState},
	{ErrorConflict, KindConflict},
	{ErrVersionConflict, KindConflict},
	{ErrorInconsistent, KindInconsistent},
	{ErrorUnauthorized, KindUnauthorized},
	{ErrInvalidToken, KindUnauthorized},
	{ErrTokenExpired, KindUnauthorized},
}

// KindOf returns the machine-readable kind of err. Errors outside the
// taxonomy are reported as KindInternal; nil yields "".
func KindOf(err error) string {
	if err == nil {
		return ""
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return KindInternal
}

// IsDomain reports whether err already belongs to the engine taxonomy, i.e.
// it was produced by a precondition check rather than by the storage layer.
func IsDomain(err error) bool {
	switch KindOf(err) {
	case "", KindInternal:
		return false
	}
	return true
}
