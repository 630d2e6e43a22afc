package types

import (
	"fmt"
	"github.com/vmihailenco/msgpack/v5"
)

// --------------------------------------------------------------------------
// Error Message
// --------------------------------------------------------------------------

// Well known error codes carried by ErrorMessage
const (
	ErrCodeBadRequest  = 400
	ErrCodeNotFound    = 404
	ErrCodeConflict    = 409
	ErrCodeInternal    = 500
	ErrCodeUnavailable = 503
)

// ErrorMessage describes a failure reported by a remote node.
// Wire layout: [code, message]
type ErrorMessage struct {
	Code    int
	Message string
}

var (
	_ msgpack.CustomEncoder = ErrorMessage{}
	_ msgpack.CustomDecoder = (*ErrorMessage)(nil)
)

// NewErrorMessage creates an error message with the given code
func NewErrorMessage(code int, format string, args ...interface{}) *ErrorMessage {
	return &ErrorMessage{Code: code, Message: fmt.Sprintf(format, args...)}
}

// String returns a human readable form of the error message
func (e ErrorMessage) String() string {
	return fmt.Sprintf("%d: %s", e.Code, e.Message)
}

func (e ErrorMessage) EncodeMsgpack(enc *msgpack.Encoder) error {
	if err := enc.EncodeArrayLen(2); err != nil {
		return err
	}
	if err := enc.EncodeInt(int64(e.Code)); err != nil {
		return err
	}
	return enc.EncodeString(e.Message)
}

func (e *ErrorMessage) DecodeMsgpack(dec *msgpack.Decoder) (err error) {
	if err = decodeHeader(dec, "ErrorMessage", 2); err != nil {
		return err
	}
	if e.Code, err = dec.DecodeInt(); err != nil {
		return err
	}
	e.Message, err = dec.DecodeString()
	return err
}
