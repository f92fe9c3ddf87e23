// Copyright (c) 2024 The walletcore developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package coreerr

import (
	"errors"
	"fmt"
)

// ErrorCode identifies a kind of error.
type ErrorCode int

// These constants are used to identify a specific Error.
const (
	// ErrTransport indicates the ledger node or faucet could not be
	// reached, or the connection failed before a response was read.
	ErrTransport ErrorCode = iota

	// ErrInvalidResponse indicates the remote service answered with a body
	// that could not be parsed into the expected shape.
	ErrInvalidResponse

	// ErrRemoteRejected indicates the remote service answered with a
	// structured error, for example a rejected submission.
	ErrRemoteRejected

	// ErrSequenceNumberUnavailable indicates the sender's sequence number
	// could not be read from the account record.
	ErrSequenceNumberUnavailable

	// ErrClock indicates the local wall clock reads earlier than the Unix
	// epoch, so no expiration time can be computed.
	ErrClock

	// ErrInvalidKeyEncoding indicates imported key bytes have the wrong
	// length or structure.
	ErrInvalidKeyEncoding

	// ErrMalformedRequest indicates the request envelope could not be
	// decoded or carried no usable arm.  This is fatal at the foreign call
	// boundary.
	ErrMalformedRequest

	// ErrInvalidRequest indicates a well-formed request carried arguments
	// that cannot be acted upon.
	ErrInvalidRequest

	// ErrInvalidBuffer indicates a buffer descriptor handed back for
	// release does not describe a live allocation.
	ErrInvalidBuffer
)

// Map of ErrorCode values back to their constant names for pretty printing.
var errorCodeStrings = map[ErrorCode]string{
	ErrTransport:                 "ErrTransport",
	ErrInvalidResponse:           "ErrInvalidResponse",
	ErrRemoteRejected:            "ErrRemoteRejected",
	ErrSequenceNumberUnavailable: "ErrSequenceNumberUnavailable",
	ErrClock:                     "ErrClock",
	ErrInvalidKeyEncoding:        "ErrInvalidKeyEncoding",
	ErrMalformedRequest:          "ErrMalformedRequest",
	ErrInvalidRequest:            "ErrInvalidRequest",
	ErrInvalidBuffer:             "ErrInvalidBuffer",
}

// String returns the ErrorCode as a human-readable name.
func (e ErrorCode) String() string {
	if s := errorCodeStrings[e]; s != "" {
		return s
	}
	return fmt.Sprintf("Unknown ErrorCode (%d)", int(e))
}

// Error provides a single type for errors that can happen while serving a
// request.  Op names the stage or remote operation that failed, such as
// "get_account" or "submit_transaction".  Err, when set, is the underlying
// cause.
type Error struct {
	Code        ErrorCode
	Op          string
	Description string
	Err         error
}

// Error satisfies the error interface and prints human-readable errors.
func (e *Error) Error() string {
	msg := e.Description
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// E creates an Error given a set of arguments.
func E(code ErrorCode, op, desc string, err error) *Error {
	return &Error{Code: code, Op: op, Description: desc, Err: err}
}

// Errorf creates an Error with a formatted description and no cause.
func Errorf(code ErrorCode, op, format string, args ...interface{}) *Error {
	return &Error{Code: code, Op: op, Description: fmt.Sprintf(format, args...)}
}

// Is reports whether any error in err's chain is an *Error carrying code.
func Is(err error, code ErrorCode) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	if e.Code == code {
		return true
	}
	return Is(e.Err, code)
}

// Code returns the code of the first *Error in err's chain.
func Code(err error) (ErrorCode, bool) {
	var e *Error
	if !errors.As(err, &e) {
		return 0, false
	}
	return e.Code, true
}
