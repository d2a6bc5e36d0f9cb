package activerecord

import (
	"errors"
	"fmt"
)

// QueryError is returned by every Select operation that fails.
//
// Query errors include:
//   - Invalid condition: malformed WHERE/ORDER input, or a field outside
//     the schema in strict mode
//   - Invalid limit: a limit that is not a positive integer
//   - Unknown type: the builder was constructed for an unregistered type
//   - Empty result: First or Last matched no record
//   - Resolution error: the resolver failed or returned a malformed row
type QueryError struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Type is the record type the builder is bound to.
	Type string

	// Field names the offending field, when there is one.
	Field string

	// Err is the underlying cause. Resolution errors keep only the cause
	// text in Message and leave Err nil.
	Err error
}

// ErrorCode categorizes query errors.
type ErrorCode string

const (
	// ErrCodeInvalidCondition indicates malformed WHERE or ORDER input.
	ErrCodeInvalidCondition ErrorCode = "INVALID_CONDITION"

	// ErrCodeInvalidLimit indicates a non-positive limit.
	ErrCodeInvalidLimit ErrorCode = "INVALID_LIMIT"

	// ErrCodeUnknownType indicates an empty or unregistered type name.
	ErrCodeUnknownType ErrorCode = "UNKNOWN_TYPE"

	// ErrCodeEmptyResult indicates First or Last found no record.
	ErrCodeEmptyResult ErrorCode = "EMPTY_RESULT"

	// ErrCodeResolutionError indicates the resolver failed.
	ErrCodeResolutionError ErrorCode = "RESOLUTION_ERROR"
)

// Error implements the error interface.
func (e *QueryError) Error() string {
	switch {
	case e.Type != "" && e.Field != "":
		return fmt.Sprintf("%s: %s (type=%s, field=%s)", e.Code, e.Message, e.Type, e.Field)
	case e.Type != "":
		return fmt.Sprintf("%s: %s (type=%s)", e.Code, e.Message, e.Type)
	default:
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
}

// Unwrap returns the cause. It is nil for resolution errors so storage
// error types never reach the caller.
func (e *QueryError) Unwrap() error {
	return e.Err
}

func hasCode(err error, code ErrorCode) bool {
	var qe *QueryError
	if errors.As(err, &qe) {
		return qe.Code == code
	}
	return false
}

// IsInvalidCondition returns true if err is an invalid condition error.
// Uses errors.As to handle wrapped errors.
func IsInvalidCondition(err error) bool { return hasCode(err, ErrCodeInvalidCondition) }

// IsInvalidLimit returns true if err is an invalid limit error.
func IsInvalidLimit(err error) bool { return hasCode(err, ErrCodeInvalidLimit) }

// IsUnknownType returns true if err is an unknown type error.
func IsUnknownType(err error) bool { return hasCode(err, ErrCodeUnknownType) }

// IsEmptyResult returns true if err is an empty result error.
func IsEmptyResult(err error) bool { return hasCode(err, ErrCodeEmptyResult) }

// IsResolutionError returns true if err is a resolution error.
func IsResolutionError(err error) bool { return hasCode(err, ErrCodeResolutionError) }

func newInvalidCondition(typeName, field string, err error) *QueryError {
	return &QueryError{
		Code:    ErrCodeInvalidCondition,
		Message: err.Error(),
		Type:    typeName,
		Field:   field,
		Err:     err,
	}
}

func newInvalidLimit(typeName string, n int) *QueryError {
	return &QueryError{
		Code:    ErrCodeInvalidLimit,
		Message: fmt.Sprintf("limit must be a positive integer, got %d", n),
		Type:    typeName,
	}
}

func newUnknownType(typeName string) *QueryError {
	msg := fmt.Sprintf("record type %q is not registered", typeName)
	if typeName == "" {
		msg = "record type name is required"
	}
	return &QueryError{Code: ErrCodeUnknownType, Message: msg, Type: typeName}
}

func newEmptyResult(typeName, op string) *QueryError {
	return &QueryError{
		Code:    ErrCodeEmptyResult,
		Message: op + " matched no record",
		Type:    typeName,
	}
}

func newResolutionError(typeName string, cause error) *QueryError {
	return &QueryError{
		Code:    ErrCodeResolutionError,
		Message: fmt.Sprintf("resolving %s: %v", typeName, cause),
		Type:    typeName,
	}
}
