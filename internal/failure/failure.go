// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package failure defines the closed set of failure kinds surfaced by the
// flash procedures, so callers can tell retryable conditions from fatal ones.
package failure

import (
	"errors"
	"fmt"
)

// Kind classifies a failure.
type Kind int

const (
	// ConversionFailed means the external converter did not produce its output.
	ConversionFailed Kind = iota + 1
	// MoveFailed means a filesystem relocation failed.
	MoveFailed
	// NetworkError covers transport errors and unexpected HTTP or SMTP replies.
	NetworkError
	// ConfigInvalid means a required setting, credential or directory is missing.
	ConfigInvalid
	// LedgerFailed means the run ledger could not be read or written.
	LedgerFailed
)

func (k Kind) String() string {
	switch k {
	case ConversionFailed:
		return "conversion failed"
	case MoveFailed:
		return "move failed"
	case NetworkError:
		return "network error"
	case ConfigInvalid:
		return "invalid configuration"
	case LedgerFailed:
		return "ledger failed"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Error is a failure of a known kind. Op names the operation and Path the
// file or URL it concerned; either may be empty.
type Error struct {
	Kind Kind
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Path != "" {
		msg += fmt.Sprintf(" (%s)", e.Path)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// New returns an *Error of the given kind.
func New(kind Kind, op, path string, err error) *Error {
	return &Error{Kind: kind, Op: op, Path: path, Err: err}
}

// Is reports whether err, or anything it wraps, is a failure of kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}

// KindOf returns the kind of the outermost *Error in err's chain, or 0.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// Retryable reports whether the failure may succeed if attempted again.
// Only network errors qualify; filesystem and conversion failures are final.
func Retryable(err error) bool {
	return Is(err, NetworkError)
}
