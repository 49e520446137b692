package biometric

import (
	"errors"
	"fmt"
)

// Category is the normalized failure taxonomy for biometric service calls.
type Category string

const (
	// CategoryTimeout means the service did not answer in time.
	CategoryTimeout Category = "timeout"
	// CategoryOutage means the service could not be reached or reported itself unavailable.
	CategoryOutage Category = "outage"
	// CategoryBadData means the request could not be built from the given input.
	CategoryBadData Category = "bad_data"
	// CategoryContractMismatch means the response did not have the expected shape.
	CategoryContractMismatch Category = "contract_mismatch"
	// CategoryRejected is a well-formed negative answer, e.g. no face detected.
	CategoryRejected Category = "rejected"
	// CategoryInternal is anything else.
	CategoryInternal Category = "internal"
)

// Error wraps a biometric service failure with its category and the
// service's own message when it sent one.
type Error struct {
	Category   Category
	Endpoint   string
	Message    string
	Underlying error
}

func (e *Error) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("biometric %s [%s]: %s: %v", e.Endpoint, e.Category, e.Message, e.Underlying)
	}
	return fmt.Sprintf("biometric %s [%s]: %s", e.Endpoint, e.Category, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Underlying
}

// Unreachable reports a transport failure, as opposed to an answer.
func (e *Error) Unreachable() bool {
	return e.Category == CategoryTimeout || e.Category == CategoryOutage
}

// Reason is the text worth showing to a voter: the service's message for a
// rejection, empty otherwise.
func (e *Error) Reason() string {
	if e.Category == CategoryRejected {
		return e.Message
	}
	return ""
}

func newError(category Category, endpoint, message string, underlying error) *Error {
	return &Error{Category: category, Endpoint: endpoint, Message: message, Underlying: underlying}
}

// CategoryOf extracts the category from err, or CategoryInternal.
func CategoryOf(err error) Category {
	var be *Error
	if errors.As(err, &be) {
		return be.Category
	}
	return CategoryInternal
}

// IsUnreachable reports whether err is a biometric transport failure.
func IsUnreachable(err error) bool {
	var be *Error
	return errors.As(err, &be) && be.Unreachable()
}
