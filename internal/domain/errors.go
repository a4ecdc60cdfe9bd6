package domain

import (
	"errors"
	"fmt"
)

// Code is a stable machine-readable error class.
type Code string

const (
	CodeAuth          Code = "auth"
	CodePermission    Code = "permission"
	CodeNotFound      Code = "not_found"
	CodeAlreadyExists Code = "already_exists"
	CodeValidation    Code = "validation"
	CodeDecryption    Code = "decryption_failed"
)

// Error is the structured error every service returns. Callers branch on
// Code via CodeOf; Msg is the human hint.
type Error struct {
	Code Code
	Op   string // originating operation, e.g. "challenge.verify"
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Op != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Msg, e.Err)
	case e.Op != "":
		return fmt.Sprintf("%s: %s", e.Op, e.Msg)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// E builds a new coded error.
func E(code Code, op, msg string) *Error {
	return &Error{Code: code, Op: op, Msg: msg}
}

// Ef builds a new coded error with a formatted message.
func Ef(code Code, op, format string, args ...any) *Error {
	return &Error{Code: code, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and operation to an underlying error.
func Wrap(code Code, op string, err error) *Error {
	return &Error{Code: code, Op: op, Msg: "operation failed", Err: err}
}

// CodeOf extracts the Code from err, or "" if err carries none.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// Sentinel conditions. These are *Error values so both errors.Is and CodeOf
// work on anything that wraps them.
var (
	ErrChallengeUsed    = &Error{Code: CodeAuth, Msg: "challenge already used"}
	ErrChallengeExpired = &Error{Code: CodeAuth, Msg: "challenge expired"}
	ErrKSNMismatch      = &Error{Code: CodeAuth, Msg: "key sequence number mismatch"}
	ErrThresholdNotMet  = &Error{Code: CodeAuth, Msg: "not enough valid signatures"}
	ErrTokenExpired     = &Error{Code: CodeAuth, Msg: "session token expired"}
	ErrScopeNotGranted  = &Error{Code: CodePermission, Msg: "scope not granted to token"}
	ErrNoKeyForRecipient = &Error{Code: CodeNotFound, Msg: "no key for recipient"}
	ErrDecryptionFailed  = &Error{Code: CodeDecryption, Msg: "decryption failed"}
)
