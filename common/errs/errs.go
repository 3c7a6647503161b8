// Package errs defines the error kinds raised by the codec packages.
//
// Every parsing routine in this module reports failures as one of a small,
// closed set of kinds, matching at the record boundary where the problem was
// detected rather than deep inside a bit-reading loop.
package errs

import (
	"github.com/pkg/errors"
)

// Kind identifies which of the closed set of error categories a Error belongs
// to. Callers that need to branch on failure type should compare against
// these constants via Is, not by inspecting the error string.
type Kind int32

const (
	// KindUnexpectedEof means a read ran past the end of the available bytes.
	KindUnexpectedEof Kind = iota + 1
	// KindInvalidStartCode means a record did not begin with 00 00 01 XX.
	KindInvalidStartCode
	// KindInvalidField means a marker bit, reserved bit, or forbidden-zero
	// bit had the wrong value, or a descriptor tag/length mismatched.
	KindInvalidField
	// KindMalformedNalUnit means a NAL unit's forbidden_zero_bit was set, or
	// its header was shorter than required.
	KindMalformedNalUnit
	// KindNotFound means a searched-for packet was not present in the
	// stream (e.g. no GOP-index PES).
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindUnexpectedEof:
		return "unexpected_eof"
	case KindInvalidStartCode:
		return "invalid_start_code"
	case KindInvalidField:
		return "invalid_field"
	case KindMalformedNalUnit:
		return "malformed_nal_unit"
	case KindNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// Error is a typed error carrying one of the Kind values above plus a
// human-readable message.
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string {
	return e.Kind.String() + ": " + e.Msg
}

// New builds a typed Error of the given kind.
func New(kind Kind, msg string) error {
	return &Error{Kind: kind, Msg: msg}
}

// Newf builds a typed Error of the given kind with a formatted message.
func Newf(kind Kind, format string, args ...interface{}) error {
	return &Error{Kind: kind, Msg: errors.Errorf(format, args...).Error()}
}

// Is reports whether err is a *Error of the given kind.
func Is(err error, kind Kind) bool {
	e, ok := err.(*Error)
	if !ok {
		return false
	}
	return e.Kind == kind
}

// KindOf extracts the Kind carried by err, or 0 if err is not a *Error.
func KindOf(err error) Kind {
	e, ok := err.(*Error)
	if !ok {
		return 0
	}
	return e.Kind
}

// Wrapf wraps err with a formatted message, preserving a stack trace via
// pkg/errors for logging at the CLI boundary.
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}
