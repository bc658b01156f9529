package vars

import (
	"fmt"
	"math"
	"strings"
)

// Store holds the named variables of a playback session.
//
// Thread-safety: Store is NOT safe for concurrent use. It is owned by the
// dispatch engine and only mutated from its single writer goroutine.
type Store struct {
	vars Map
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{vars: make(Map)}
}

// NewStoreFrom creates a store seeded with a copy of m.
func NewStoreFrom(m Map) *Store {
	s := NewStore()
	s.Replace(m)
	return s
}

// Get returns the stored value for name.
func (s *Store) Get(name string) (Value, bool) {
	v, ok := s.vars[name]
	return v, ok
}

// Len returns the number of stored variables.
func (s *Store) Len() int {
	return len(s.vars)
}

// Snapshot returns a copy of all variables.
func (s *Store) Snapshot() Map {
	return s.vars.Clone()
}

// Replace swaps the entire variable set for a copy of m.
// Entries with empty names or nil values are dropped.
func (s *Store) Replace(m Map) {
	s.vars = make(Map, len(m))
	for k, v := range m {
		if k == "" || v == nil {
			continue
		}
		s.vars[k] = v
	}
}

// Set assigns value to name.
//
// A Str beginning with "+=" or "-=" followed by a numeric literal adds to or
// subtracts from the current value (absent or empty counts as 0) and stores
// the Num result. Any other value is stored verbatim, replacing whatever type
// was there before.
//
// Arithmetic against a non-numeric value returns a NON_NUMERIC_ARITHMETIC
// error and leaves the store unchanged.
func (s *Store) Set(name string, value Value) error {
	if name == "" {
		return &Error{Code: ErrCodeEmptyName, Message: "variable name is empty"}
	}
	if value == nil {
		value = Str("")
	}

	if str, ok := value.(Str); ok {
		if sign, amount, ok := splitArithmetic(string(str)); ok {
			return s.apply(name, sign, amount)
		}
	}

	s.vars[name] = value
	return nil
}

// apply performs "+=" (sign 1) or "-=" (sign -1) on name.
func (s *Store) apply(name string, sign float64, amountText string) error {
	amount, ok := ParseNumber(amountText)
	if !ok {
		return &Error{
			Code:    ErrCodeNonNumericArithmetic,
			Name:    name,
			Message: fmt.Sprintf("amount %q is not numeric", amountText),
		}
	}

	current := 0.0
	if cur, exists := s.vars[name]; exists && cur.String() != "" {
		n, ok := cur.Number()
		if !ok {
			return &Error{
				Code:    ErrCodeNonNumericArithmetic,
				Name:    name,
				Message: fmt.Sprintf("current value %q is not numeric", cur.String()),
			}
		}
		current = n
	}

	result := current + sign*amount
	if math.IsInf(result, 0) || math.IsNaN(result) {
		return &Error{
			Code:    ErrCodeNonNumericArithmetic,
			Name:    name,
			Message: "result is not a finite number",
		}
	}

	s.vars[name] = Num(result)
	return nil
}

// splitArithmetic recognises "+=N" and "-=N".
func splitArithmetic(s string) (sign float64, amount string, ok bool) {
	switch {
	case strings.HasPrefix(s, "+="):
		return 1, s[2:], true
	case strings.HasPrefix(s, "-="):
		return -1, s[2:], true
	default:
		return 0, "", false
	}
}

// Evaluate reports whether c holds against the current variables.
// See Evaluate (package function) for the comparison rules.
func (s *Store) Evaluate(c *Condition) bool {
	return Evaluate(s.vars, c)
}

// Check is Evaluate with the malformed-operator diagnostic exposed.
func (s *Store) Check(c *Condition) (bool, error) {
	return Check(s.vars, c)
}
