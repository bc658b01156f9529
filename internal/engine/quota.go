package engine

import (
	"errors"
	"fmt"
)

// QuotaEnforcer bounds the number of dispatch steps in one synchronous
// chain.
//
// A chain starts at every ProcessCurrentEvent call and covers condition
// skips, System events and skip-mode advances. Stories can loop (a Dialogue
// whose nextSceneId leads back to itself), so skip mode alone would never
// terminate; the quota stops it.
type QuotaEnforcer struct {
	maxSteps int
	current  int
}

// NewQuotaEnforcer creates a new quota enforcer with the given limit.
func NewQuotaEnforcer(maxSteps int) *QuotaEnforcer {
	return &QuotaEnforcer{
		maxSteps: maxSteps,
		current:  0,
	}
}

// Check increments the step counter and validates against the limit.
//
// Returns StepsExceededError if the quota is exceeded.
func (q *QuotaEnforcer) Check(session string) error {
	q.current++
	if q.current > q.maxSteps {
		return &StepsExceededError{
			Session: session,
			Steps:   q.current,
			Limit:   q.maxSteps,
		}
	}
	return nil
}

// Reset resets the step counter to 0.
func (q *QuotaEnforcer) Reset() {
	q.current = 0
}

// Current returns the current step count.
func (q *QuotaEnforcer) Current() int {
	return q.current
}

// MaxSteps returns the maximum steps limit.
func (q *QuotaEnforcer) MaxSteps() int {
	return q.maxSteps
}

// StepsExceededError is returned when a dispatch chain exceeds the quota.
type StepsExceededError struct {
	Session string // Session that hit the quota
	Steps   int    // Number of steps taken
	Limit   int    // Maximum allowed steps
}

// Error implements the error interface.
func (e *StepsExceededError) Error() string {
	return fmt.Sprintf("session %s exceeded max steps quota: %d steps > %d limit",
		e.Session, e.Steps, e.Limit)
}

// IsStepsExceededError returns true if the error is a StepsExceededError.
// Uses errors.As to handle wrapped errors.
func IsStepsExceededError(err error) bool {
	var se *StepsExceededError
	return errors.As(err, &se)
}
