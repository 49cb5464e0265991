// Package repository holds the in-memory collections, their flat-file
// persistence and the cross-collection reference resolution. Sentinel
// errors defined here let handlers map failure scenarios onto HTTP
// responses: ErrNotFound becomes 404, ErrUsernameExists and
// model.ErrSeatReserved become 409, ErrInvalidCredentials becomes 401.
package repository

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a lookup by ID yields nothing.
var ErrNotFound = errors.New("not found")

// ErrUsernameExists is returned when registering a client whose
// username is already taken.
var ErrUsernameExists = errors.New("username already exists")

// ErrInvalidCredentials is returned when authentication fails, without
// distinguishing an unknown username from a wrong password.
var ErrInvalidCredentials = errors.New("invalid credentials")

// UnresolvedReferenceError reports a stored row whose foreign-key ID
// has no match in the target collection. The load skips the affected
// row and surfaces one of these instead of silently storing a nil link.
type UnresolvedReferenceError struct {
	Path string // data file containing the dangling reference
	Line int    // 1-based line number
	Kind string // referenced entity kind, e.g. "airplane"
	ID   string // the unmatched ID
}

func (e *UnresolvedReferenceError) Error() string {
	return fmt.Sprintf("%s:%d: unresolved %s reference %q", e.Path, e.Line, e.Kind, e.ID)
}
