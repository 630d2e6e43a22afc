package common

import (
	"fmt"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
)

// --------------------------------------------------------------------------
// Error Kinds
// --------------------------------------------------------------------------

// ErrorKind classifies a codec failure
type ErrorKind int

const (
	// ErrKindEncoding means the value could not be written (I/O failure or no resolvable type)
	ErrKindEncoding ErrorKind = iota + 1
	// ErrKindDecoding means the stream is malformed, truncated or does not match the expected type
	ErrKindDecoding
	// ErrKindRelease means closing a stream wrapper failed after an otherwise successful operation
	ErrKindRelease
)

// String returns the name of the error kind
func (k ErrorKind) String() string {
	switch k {
	case ErrKindEncoding:
		return "encoding"
	case ErrKindDecoding:
		return "decoding"
	case ErrKindRelease:
		return "release"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// --------------------------------------------------------------------------
// Codec Error
// --------------------------------------------------------------------------

// Error is the single failure condition of the codec layer. It carries the
// original cause and, separately, any failure that occurred while releasing
// the streams opened for the call. A release failure never replaces Cause.
type Error struct {
	Kind     ErrorKind // The kind of failure
	Op       string    // The operation that failed, e.g. "serialize" or "unpack key"
	Cause    error     // The original cause
	CloseErr error     // Failure(s) while closing opened streams, nil if none
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s failure in %s", e.Kind, e.Op)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	if e.CloseErr != nil && e.Kind != ErrKindRelease {
		msg += " (additionally failed to release stream: " + e.CloseErr.Error() + ")"
	}
	return msg
}

// Unwrap returns the original cause
func (e *Error) Unwrap() error {
	return e.Cause
}

// EncodingError wraps err as an encoding failure of op. If err already is a
// codec failure it is returned unchanged so the innermost context is kept.
func EncodingError(op string, err error) error {
	return newError(ErrKindEncoding, op, err)
}

// DecodingError wraps err as a decoding failure of op
func DecodingError(op string, err error) error {
	return newError(ErrKindDecoding, op, err)
}

// Encodingf creates an encoding failure with a formatted cause
func Encodingf(op string, format string, args ...interface{}) error {
	return &Error{Kind: ErrKindEncoding, Op: op, Cause: errors.Errorf(format, args...)}
}

// Decodingf creates a decoding failure with a formatted cause
func Decodingf(op string, format string, args ...interface{}) error {
	return &Error{Kind: ErrKindDecoding, Op: op, Cause: errors.Errorf(format, args...)}
}

// WithRelease attaches the release failure closeErr to err. When err is nil
// the result is a release failure of op; otherwise closeErr is recorded next
// to the existing cause without replacing it.
func WithRelease(op string, err error, closeErr error) error {
	if closeErr == nil {
		return err
	}
	if err == nil {
		return &Error{Kind: ErrKindRelease, Op: op, Cause: closeErr, CloseErr: closeErr}
	}
	var ce *Error
	if errors.As(err, &ce) {
		ce.CloseErr = multierror.Append(ce.CloseErr, closeErr).ErrorOrNil()
		return ce
	}
	return &Error{Kind: ErrKindEncoding, Op: op, Cause: err, CloseErr: closeErr}
}

// newError creates a codec failure unless err already is one
func newError(kind ErrorKind, op string, err error) error {
	if err == nil {
		return nil
	}
	var ce *Error
	if errors.As(err, &ce) {
		return err
	}
	return &Error{Kind: kind, Op: op, Cause: errors.WithStack(err)}
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// IsEncodingError reports whether err is an encoding failure
func IsEncodingError(err error) bool {
	return kindOf(err) == ErrKindEncoding
}

// IsDecodingError reports whether err is a decoding failure
func IsDecodingError(err error) bool {
	return kindOf(err) == ErrKindDecoding
}

// IsReleaseError reports whether err is a pure release failure
func IsReleaseError(err error) bool {
	return kindOf(err) == ErrKindRelease
}

// RootCause returns the innermost cause of err
func RootCause(err error) error {
	var ce *Error
	if errors.As(err, &ce) && ce.Cause != nil {
		return errors.Cause(ce.Cause)
	}
	return errors.Cause(err)
}

func kindOf(err error) ErrorKind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return 0
}
