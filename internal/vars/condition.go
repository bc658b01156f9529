package vars

import (
	"encoding/json"
	"fmt"
)

// Op is a comparison operator.
type Op string

const (
	OpEq Op = "=="
	OpNe Op = "!="
	OpGt Op = ">"
	OpGe Op = ">="
	OpLt Op = "<"
	OpLe Op = "<="
)

// Valid reports whether op is one of the six supported operators.
func (op Op) Valid() bool {
	switch op {
	case OpEq, OpNe, OpGt, OpGe, OpLt, OpLe:
		return true
	}
	return false
}

// Condition guards an event or choice option by comparing a stored variable
// to a literal. A nil Condition, or one with an empty Var, always holds.
type Condition struct {
	Var   string `json:"var" yaml:"var"`
	Op    Op     `json:"op" yaml:"op"`
	Value string `json:"value" yaml:"value"`
}

// IsZero reports whether the condition is vacuous.
func (c *Condition) IsZero() bool {
	return c == nil || c.Var == ""
}

// String renders the condition for logs.
func (c *Condition) String() string {
	if c.IsZero() {
		return "<always>"
	}
	return fmt.Sprintf("%s %s %q", c.Var, c.Op, c.Value)
}

// Evaluate reports whether c holds against m. Malformed conditions are false.
func Evaluate(m Map, c *Condition) bool {
	ok, _ := Check(m, c)
	return ok
}

// Check evaluates c against m.
//
// Rules:
//   - nil or empty-Var conditions hold.
//   - Unknown operators evaluate false with a MALFORMED_CONDITION error.
//   - When the stored value and the literal both parse as finite numbers the
//     comparison is numeric.
//   - Otherwise both sides are compared as strings (byte-wise ordering).
//   - An unset variable satisfies only "!=".
func Check(m Map, c *Condition) (bool, error) {
	if c.IsZero() {
		return true, nil
	}
	if !c.Op.Valid() {
		return false, &Error{
			Code:    ErrCodeMalformedCondition,
			Name:    c.Var,
			Message: fmt.Sprintf("unknown operator %q", c.Op),
		}
	}

	current, set := m[c.Var]
	if !set {
		return c.Op == OpNe, nil
	}

	if a, ok := current.Number(); ok {
		if b, ok := ParseNumber(c.Value); ok {
			return compare(c.Op, cmpFloat(a, b)), nil
		}
	}

	return compare(c.Op, cmpString(current.String(), c.Value)), nil
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func cmpString(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compare(op Op, c int) bool {
	switch op {
	case OpEq:
		return c == 0
	case OpNe:
		return c != 0
	case OpGt:
		return c > 0
	case OpGe:
		return c >= 0
	case OpLt:
		return c < 0
	case OpLe:
		return c <= 0
	}
	return false
}

// UnmarshalJSON accepts the literal as a JSON string, number or boolean.
func (c *Condition) UnmarshalJSON(data []byte) error {
	var raw struct {
		Var   string          `json:"var"`
		Op    Op              `json:"op"`
		Value json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	c.Var, c.Op, c.Value = raw.Var, raw.Op, ""
	if len(raw.Value) == 0 {
		return nil
	}
	v, err := DecodeJSON(raw.Value)
	if err != nil {
		return fmt.Errorf("condition value: %w", err)
	}
	if v != nil {
		c.Value = v.String()
	}
	return nil
}
