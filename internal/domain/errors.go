package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode classifies aggregate failures so callers can react per kind.
type ErrorCode string

const (
	// CodeInvalidArgument marks structurally invalid input (quantity <= 0, price <= 0).
	CodeInvalidArgument ErrorCode = "invalid_argument"
	// CodeValidation marks a business-rule violation with a user-facing message.
	CodeValidation ErrorCode = "validation"
	// CodeInvalidState marks operations rejected by the aggregate's current state.
	CodeInvalidState ErrorCode = "invalid_state"
	// CodeNotFound marks a missing aggregate.
	CodeNotFound ErrorCode = "not_found"
	// CodeConflict marks uniqueness conflicts (duplicate sale number).
	CodeConflict ErrorCode = "conflict"
)

// Error is the canonical domain error wrapper.
type Error struct {
	Code    ErrorCode
	Op      string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	op := strings.TrimSpace(e.Op)
	msg := strings.TrimSpace(e.Message)
	switch {
	case op != "" && msg != "":
		return fmt.Sprintf("%s: %s (%s)", op, msg, e.Code)
	case op != "":
		return fmt.Sprintf("%s (%s)", op, e.Code)
	case msg != "":
		return fmt.Sprintf("%s (%s)", msg, e.Code)
	default:
		return string(e.Code)
	}
}

func (e *Error) Unwrap() error { return e.Cause }

// NewError builds a domain error with explicit code + operation.
func NewError(code ErrorCode, op, message string, cause error) error {
	return &Error{
		Code:    code,
		Op:      strings.TrimSpace(op),
		Message: strings.TrimSpace(message),
		Cause:   cause,
	}
}

// IsCode checks whether err (or a wrapped err) carries the given code.
func IsCode(err error, code ErrorCode) bool {
	var domErr *Error
	if !errors.As(err, &domErr) {
		return false
	}
	return domErr.Code == code
}

// CodeOf extracts the domain error code when available.
func CodeOf(err error) ErrorCode {
	var domErr *Error
	if !errors.As(err, &domErr) {
		return ""
	}
	return domErr.Code
}
