// Package snapshot provides the time-bucketed snapshot store for tracklog.
package snapshot

import (
	"errors"
	"fmt"
)

// Kind classifies a storage failure.
type Kind int

const (
	// KindIO covers open, read, write and directory listing failures.
	KindIO Kind = iota + 1
	// KindDecode covers malformed snapshot file content.
	KindDecode
	// KindFilenameDecode covers directory entries whose name is not valid text.
	// It aborts the whole scan instead of skipping the entry.
	KindFilenameDecode
	// KindNumericKey covers batch keys (or timestamps) that must be unsigned
	// integers but are not.
	KindNumericKey
)

func (k Kind) String() string {
	switch k {
	case KindIO:
		return "io"
	case KindDecode:
		return "decode"
	case KindFilenameDecode:
		return "filename decode"
	case KindNumericKey:
		return "numeric key"
	default:
		return "unknown"
	}
}

// Error is the single failure type returned by the store.
type Error struct {
	Kind Kind
	Op   string // operation that failed, e.g. "scan", "read", "write"
	Path string // file or directory involved, if any
	Err  error  // underlying error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := "snapshot: " + e.Op
	if e.Path != "" {
		msg += " " + e.Path
	}
	msg += ": " + e.Kind.String()
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// Sentinels for errors.Is matching.
var (
	ErrIO             = &Error{Kind: KindIO, Op: "any"}
	ErrDecode         = &Error{Kind: KindDecode, Op: "any"}
	ErrFilenameDecode = &Error{Kind: KindFilenameDecode, Op: "any"}
	ErrNumericKey     = &Error{Kind: KindNumericKey, Op: "any"}
)

func newError(kind Kind, op, path string, err error) *Error {
	return &Error{Kind: kind, Op: op, Path: path, Err: err}
}

// KindOf returns the Kind of err, or 0 if err is not a storage error.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return 0
}

// errInvalidConfig is returned by New for unusable configurations.
func errInvalidConfig(format string, args ...any) error {
	return fmt.Errorf("snapshot: "+format, args...)
}
