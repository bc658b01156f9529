package vars

import (
	"errors"
	"fmt"
)

// Error represents a recoverable problem in the variable store or the
// condition evaluator. None of these errors is fatal to playback.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Name is the variable involved, if any.
	Name string

	// Message is a human-readable description.
	Message string
}

// ErrorCode categorizes variable errors.
type ErrorCode string

const (
	// ErrCodeNonNumericArithmetic indicates +=/-= against a non-numeric base
	// or with a non-numeric amount. The store is left unchanged.
	ErrCodeNonNumericArithmetic ErrorCode = "NON_NUMERIC_ARITHMETIC"

	// ErrCodeMalformedCondition indicates an unrecognized comparison operator.
	// The condition evaluates to false.
	ErrCodeMalformedCondition ErrorCode = "MALFORMED_CONDITION"

	// ErrCodeEmptyName indicates an assignment without a variable name.
	ErrCodeEmptyName ErrorCode = "EMPTY_NAME"
)

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("%s: %s (var=%s)", e.Code, e.Message, e.Name)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsNonNumericArithmetic returns true if err is a NON_NUMERIC_ARITHMETIC error.
// Uses errors.As to handle wrapped errors.
func IsNonNumericArithmetic(err error) bool {
	return hasCode(err, ErrCodeNonNumericArithmetic)
}

// IsMalformedCondition returns true if err is a MALFORMED_CONDITION error.
func IsMalformedCondition(err error) bool {
	return hasCode(err, ErrCodeMalformedCondition)
}

func hasCode(err error, code ErrorCode) bool {
	var ve *Error
	if errors.As(err, &ve) {
		return ve.Code == code
	}
	return false
}
