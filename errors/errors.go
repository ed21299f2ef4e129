// Package errors defines the error taxonomy for the Stellar Pay SDK.
//
// All SDK errors are represented as PayError, which provides:
//   - Code: Machine-readable error identifier
//   - Message: Human-readable, end-user-presentable description
//   - Layer: Which component layer produced the error (core, ledger, intent, signing, transfer, observer)
//   - Cause: Underlying error, if any
//   - Context: Additional error details (result codes, balances, addresses)
//
// Use the provided constructor functions (NewCoreError, NewLedgerError, etc.)
// to create properly typed errors with automatic layer assignment.
package errors

import "fmt"

// Code is a machine-readable error identifier.
type Code string

// Error codes - Core Layer
const (
	ASSET_NOT_FOUND        Code = "ASSET_NOT_FOUND"
	NETWORK_ERROR          Code = "NETWORK_ERROR"
	ENVELOPE_ENCODE_FAILED Code = "ENVELOPE_ENCODE_FAILED"
	MEMO_TOO_LONG          Code = "MEMO_TOO_LONG"
	INVALID_AMOUNT         Code = "INVALID_AMOUNT"
	INVALID_DESTINATION    Code = "INVALID_DESTINATION"
)

// Error codes - Ledger Layer
const (
	ACCOUNT_NOT_FOUND     Code = "ACCOUNT_NOT_FOUND"
	ACCOUNT_NOT_ACTIVATED Code = "ACCOUNT_NOT_ACTIVATED"
	INSUFFICIENT_RESERVE  Code = "INSUFFICIENT_RESERVE"
	TRANSACTION_REJECTED  Code = "TRANSACTION_REJECTED"
	ROUTE_UNAVAILABLE     Code = "ROUTE_UNAVAILABLE"
	TRUSTLINE_NOT_NEEDED  Code = "TRUSTLINE_NOT_NEEDED"
)

// Error codes - Intent Layer
const (
	PAYMENT_INTENT_FAILED Code = "PAYMENT_INTENT_FAILED"
	PAYMENT_NOT_FOUND     Code = "PAYMENT_NOT_FOUND"
)

// Error codes - Signing Layer
const (
	AUTHENTICATION_EXPIRED Code = "AUTHENTICATION_EXPIRED"
	SIGNING_FAILED         Code = "SIGNING_FAILED"
)

// Error codes - Transfer Layer
const (
	NOT_READY          Code = "NOT_READY"
	TRANSITION_INVALID Code = "TRANSITION_INVALID"
	STORE_ERROR        Code = "STORE_ERROR"
)

// Error codes - Observer Layer
const (
	STREAM_ERROR       Code = "STREAM_ERROR"
	CURSOR_SAVE_FAILED Code = "CURSOR_SAVE_FAILED"
)

// PayError is the base error type for all SDK errors.
type PayError struct {
	Code    Code
	Message string
	Layer   string // "core", "ledger", "intent", "signing", "transfer", "observer"
	Cause   error
	Context map[string]any
}

// Error returns a formatted error string.
func (e *PayError) Error() string {
	msg := fmt.Sprintf("[%s] %s: %s", e.Layer, e.Code, e.Message)
	if e.Cause != nil {
		msg += fmt.Sprintf(" (caused by: %v)", e.Cause)
	}
	return msg
}

// Unwrap returns the underlying cause error, enabling error chain inspection.
func (e *PayError) Unwrap() error {
	return e.Cause
}

// Is checks if the target error is a PayError with the same code.
func (e *PayError) Is(target error) bool {
	if target == nil {
		return false
	}
	other, ok := target.(*PayError)
	if !ok {
		return false
	}
	return e.Code == other.Code
}

// With attaches a context value and returns the error for chaining.
func (e *PayError) With(key string, value any) *PayError {
	e.Context[key] = value
	return e
}

func newError(layer string, code Code, message string, cause error) *PayError {
	return &PayError{
		Code:    code,
		Message: message,
		Layer:   layer,
		Cause:   cause,
		Context: make(map[string]any),
	}
}

// NewCoreError creates a core layer error.
func NewCoreError(code Code, message string, cause error) *PayError {
	return newError("core", code, message, cause)
}

// NewLedgerError creates a ledger layer error.
func NewLedgerError(code Code, message string, cause error) *PayError {
	return newError("ledger", code, message, cause)
}

// NewIntentError creates an intent layer error.
func NewIntentError(code Code, message string, cause error) *PayError {
	return newError("intent", code, message, cause)
}

// NewSigningError creates a signing layer error.
func NewSigningError(code Code, message string, cause error) *PayError {
	return newError("signing", code, message, cause)
}

// NewTransferError creates a transfer layer error.
func NewTransferError(code Code, message string, cause error) *PayError {
	return newError("transfer", code, message, cause)
}

// NewObserverError creates an observer layer error.
func NewObserverError(code Code, message string, cause error) *PayError {
	return newError("observer", code, message, cause)
}

// As checks if err is a PayError and assigns it.
func As(err error, target **PayError) bool {
	if err == nil {
		return false
	}
	if v, ok := err.(*PayError); ok {
		*target = v
		return true
	}
	return false
}

// HasCode reports whether err is a PayError carrying the given code,
// unwrapping the cause chain as needed.
func HasCode(err error, code Code) bool {
	for err != nil {
		if pe, ok := err.(*PayError); ok && pe.Code == code {
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
