// Package storage implements the delimited flat-file persistence layer.
// Each entity type owns one file; rows are comma-delimited with a
// trailing delimiter and every field is independently obfuscated.
package storage

import (
	"errors"
	"fmt"
)

// ErrRowNotFound is returned by OverwriteOne when no stored row carries
// the requested ID.
var ErrRowNotFound = errors.New("row not found")

// CorruptRecordError reports a single stored line that could not be
// decoded. Loads surface one per affected line and skip it instead of
// failing the whole collection.
type CorruptRecordError struct {
	Path string
	Line int
	Err  error
}

func (e *CorruptRecordError) Error() string {
	return fmt.Sprintf("%s:%d: corrupt record: %v", e.Path, e.Line, e.Err)
}

func (e *CorruptRecordError) Unwrap() error { return e.Err }
