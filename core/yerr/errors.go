// Package yerr describes saslframe errors
package yerr

import (
	"fmt"

	"github.com/quic-go/quic-go"
)

// YError is the error returned by the framing layer.
type YError interface {
	error
	// ErrorCode getter method
	ErrorCode() ErrorCode
}

// ErrorCode error code
type ErrorCode uint64

const (
	// ErrorCodeInternal internal error during negotiation
	ErrorCodeInternal ErrorCode = 0xA0
	// ErrorCodeProtocol malformed negotiation message
	ErrorCodeProtocol ErrorCode = 0xA1
	// ErrorCodeMechanismMismatch peers share no mechanism
	ErrorCodeMechanismMismatch ErrorCode = 0xA2
	// ErrorCodeAuthenticationFailure peer rejected the credentials
	ErrorCodeAuthenticationFailure ErrorCode = 0xA3
	// ErrorCodeTransport underlying transport failed
	ErrorCodeTransport ErrorCode = 0xB0
	// ErrorCodeIllegalState api misuse
	ErrorCodeIllegalState ErrorCode = 0xC0
	// ErrorCodeIllegalArgument bad argument
	ErrorCodeIllegalArgument ErrorCode = 0xC1
)

var errCodeStringMap = map[ErrorCode]string{
	ErrorCodeInternal:              "InternalError",
	ErrorCodeProtocol:              "ProtocolError",
	ErrorCodeMechanismMismatch:     "MechanismMismatch",
	ErrorCodeAuthenticationFailure: "AuthenticationFailure",
	ErrorCodeTransport:             "Transport",
	ErrorCodeIllegalState:          "IllegalState",
	ErrorCodeIllegalArgument:       "IllegalArgument",
}

func (e ErrorCode) String() string {
	msg, ok := errCodeStringMap[e]
	if !ok {
		return "XXX"
	}
	return msg
}

// Is reports whether qerr carries the given ErrorCode.
func Is(qerr quic.ApplicationErrorCode, code ErrorCode) bool {
	return uint64(qerr) == uint64(code)
}

// Parse parse quic ApplicationErrorCode
func Parse(qerr quic.ApplicationErrorCode) ErrorCode {
	return ErrorCode(qerr)
}

// To convert ErrorCode to quic ApplicationErrorCode
func (e ErrorCode) To() quic.ApplicationErrorCode {
	return quic.ApplicationErrorCode(e)
}

// NegotiationError is returned when the bytes received during sasl negotiation
// do not form a valid message.
type NegotiationError struct {
	code    ErrorCode
	message string
}

// NewNegotiationError creates a NegotiationError.
func NewNegotiationError(code ErrorCode, format string, a ...any) *NegotiationError {
	return &NegotiationError{
		code:    code,
		message: fmt.Sprintf(format, a...),
	}
}

// Error is the built-in error interface
func (e *NegotiationError) Error() string {
	return fmt.Sprintf("%s error: message=%s", e.code, e.message)
}

// ErrorCode getter method
func (e *NegotiationError) ErrorCode() ErrorCode {
	return e.code
}

// Message returns the message without the code prefix, it is what a peer
// sends back in a BAD or ERROR negotiation frame.
func (e *NegotiationError) Message() string {
	return e.message
}

// TransportError wraps an I/O failure of the underlying transport.
type TransportError struct {
	err error
}

// NewTransportError wraps err as a *TransportError. A nil err returns a nil error
// interface, not a typed nil, so the result can be returned as is.
func NewTransportError(err error) error {
	if err == nil {
		return nil
	}
	return &TransportError{err: err}
}

// Error is the built-in error interface
func (e *TransportError) Error() string {
	return fmt.Sprintf("%s error: message=%s", ErrorCodeTransport, e.err.Error())
}

// ErrorCode getter method
func (e *TransportError) ErrorCode() ErrorCode {
	return ErrorCodeTransport
}

// Unwrap returns the transport error.
func (e *TransportError) Unwrap() error {
	return e.err
}

// IllegalStateError means the caller used an api in a state it does not allow.
type IllegalStateError struct {
	message string
}

// NewIllegalStateError creates an IllegalStateError.
func NewIllegalStateError(format string, a ...any) *IllegalStateError {
	return &IllegalStateError{message: fmt.Sprintf(format, a...)}
}

// Error is the built-in error interface
func (e *IllegalStateError) Error() string {
	return fmt.Sprintf("%s error: message=%s", ErrorCodeIllegalState, e.message)
}

// ErrorCode getter method
func (e *IllegalStateError) ErrorCode() ErrorCode {
	return ErrorCodeIllegalState
}

// IllegalArgumentError means the caller passed a value the api cannot use.
type IllegalArgumentError struct {
	message string
}

// NewIllegalArgumentError creates an IllegalArgumentError.
func NewIllegalArgumentError(format string, a ...any) *IllegalArgumentError {
	return &IllegalArgumentError{message: fmt.Sprintf(format, a...)}
}

// Error is the built-in error interface
func (e *IllegalArgumentError) Error() string {
	return fmt.Sprintf("%s error: message=%s", ErrorCodeIllegalArgument, e.message)
}

// ErrorCode getter method
func (e *IllegalArgumentError) ErrorCode() ErrorCode {
	return ErrorCodeIllegalArgument
}

var (
	_ YError = (*NegotiationError)(nil)
	_ YError = (*TransportError)(nil)
	_ YError = (*IllegalStateError)(nil)
	_ YError = (*IllegalArgumentError)(nil)
)
