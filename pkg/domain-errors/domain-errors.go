package domainerrors

import "errors"

// Code represents a domain error category independent of transport layer.
// Codes describe what went wrong in election terms, not HTTP terms.
type Code string

const (
	CodeNotFound     Code = "not_found"
	CodeInvalidInput Code = "invalid_input"
	CodeInternal     Code = "internal_error"
	CodeConflict     Code = "conflict"
	CodeUnauthorized Code = "unauthorized"
	CodeRateLimited  Code = "rate_limited"

	// Voting session codes. Each one is a distinct outcome a kiosk can react to.
	CodeAlreadyVoted            Code = "already_voted"
	CodeVerificationFailed      Code = "verification_failed"
	CodeScannerUnavailable      Code = "scanner_unavailable"
	CodeNoMatch                 Code = "no_match"
	CodeVerificationIncomplete  Code = "verification_incomplete"
	CodeSubmissionFailed        Code = "submission_failed"
	CodeCollaboratorUnreachable Code = "collaborator_unreachable"
	CodeInvalidPhase            Code = "invalid_phase"
	CodeAlreadyVerified         Code = "already_verified"
	CodeNoSelection             Code = "no_selection"
	CodeBusy                    Code = "busy"
)

// Error wraps domain or infrastructure failures with a stable code.
// It is transport-agnostic and can be used across session, service, and ledger layers.
type Error struct {
	Code    Code
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return string(e.Code)
}

// Unwrap implements error unwrapping for error chains.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is enables errors.Is() to match errors by code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New creates a new domain error with the given code and message.
func New(code Code, msg string) error {
	return &Error{Code: code, Message: msg}
}

// Wrap creates a new domain error wrapping an existing error.
// If the wrapped error is already a domain error, the original code is preserved.
func Wrap(err error, code Code, msg string) error {
	var existing *Error
	if errors.As(err, &existing) {
		return &Error{Code: existing.Code, Message: msg, Err: err}
	}
	return &Error{Code: code, Message: msg, Err: err}
}

// Classify creates a domain error with the given code even when err already
// carries a different one. Used at collaborator boundaries where the caller
// decides the business meaning of a failure.
func Classify(err error, code Code, msg string) error {
	return &Error{Code: code, Message: msg, Err: err}
}

// HasCode checks if an error is a domain error with the given code.
func HasCode(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// CodeOf returns the outermost domain code in err, or CodeInternal.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}
