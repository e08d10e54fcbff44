package domain

import (
	"errors"
	"fmt"
)

// Rejection codes carried by ValidationError so callers can distinguish
// policy violations without parsing messages.
const (
	CodeInvalidCustomer   = "InvalidCustomer"
	CodeMissingFields     = "MissingFields"
	CodeHourlyCrossDay    = "HourlyCrossDay"
	CodePastStart         = "PastStart"
	CodeOrderViolation    = "OrderViolation"
	CodeInvalidHour       = "InvalidHour"
	CodePastHour          = "PastHour"
	CodeNoFieldsProvided  = "NoFieldsProvided"
	CodeInvalidDateFormat = "InvalidDateFormat"
	CodeStartAfterEnd     = "StartAfterEnd"
	CodeNoBookingHistory  = "NoBookingHistory"
	CodeInvalidStatus     = "InvalidStatus"
)

// ValidationError is a malformed or policy-violating input. It is returned
// verbatim to the caller and never retried.
type ValidationError struct {
	Code string
	Msg  string
	Err  error
}

func (e ValidationError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Code != "" {
		return e.Code
	}
	return "validation error"
}

func (e ValidationError) Unwrap() error { return e.Err }

// NotFoundError is a referenced entity that does not exist.
type NotFoundError struct {
	Resource string
	Err      error
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e NotFoundError) Unwrap() error { return e.Err }

// ConflictError is a duplicate record or an overlapping booking window.
type ConflictError struct {
	Resource string
	Msg      string
	Err      error
}

func (e ConflictError) Error() string {
	switch {
	case e.Msg != "" && e.Resource != "":
		return fmt.Sprintf("%s conflict: %s", e.Resource, e.Msg)
	case e.Msg != "":
		return e.Msg
	case e.Resource != "":
		return fmt.Sprintf("%s conflict", e.Resource)
	default:
		return "conflict"
	}
}

func (e ConflictError) Unwrap() error { return e.Err }

// InternalError wraps store and connectivity failures. No partial state is
// committed when one is returned, so the whole operation is safe to retry.
type InternalError struct {
	Msg string
	Err error
}

func (e InternalError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "internal error"
}

func (e InternalError) Unwrap() error { return e.Err }

func IsValidation(err error) bool {
	var target ValidationError
	return errors.As(err, &target)
}

// ValidationCode extracts the rejection code from a validation error, or ""
// when err is not one.
func ValidationCode(err error) string {
	var target ValidationError
	if errors.As(err, &target) {
		return target.Code
	}
	return ""
}

func IsNotFound(err error) bool {
	var target NotFoundError
	return errors.As(err, &target)
}

func IsConflict(err error) bool {
	var target ConflictError
	return errors.As(err, &target)
}

func IsInternal(err error) bool {
	var target InternalError
	return errors.As(err, &target)
}
