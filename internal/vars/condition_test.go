package vars

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate_Vacuous(t *testing.T) {
	assert.True(t, Evaluate(nil, nil))
	assert.True(t, Evaluate(Map{}, &Condition{}))
	assert.True(t, Evaluate(Map{}, &Condition{Op: OpEq, Value: "1"}))
}

func TestEvaluate_Numeric(t *testing.T) {
	m := Map{
		"n":   Num(5),
		"s":   Str("5"),
		"pad": Str(" 5 "),
	}

	tests := []struct {
		name string
		cond Condition
		want bool
	}{
		{"num == padded literal", Condition{Var: "n", Op: OpEq, Value: "5.0"}, true},
		{"str == padded literal", Condition{Var: "s", Op: OpEq, Value: "5.0"}, true},
		{"whitespace is ignored", Condition{Var: "pad", Op: OpEq, Value: "5"}, true},
		{"not equal", Condition{Var: "n", Op: OpNe, Value: "5"}, false},
		{"greater", Condition{Var: "n", Op: OpGt, Value: "4"}, true},
		{"greater or equal", Condition{Var: "n", Op: OpGe, Value: "5"}, true},
		{"less", Condition{Var: "n", Op: OpLt, Value: "10"}, true},
		{"numeric not lexicographic", Condition{Var: "n", Op: OpLt, Value: "10"}, true},
		{"less or equal", Condition{Var: "n", Op: OpLe, Value: "4.9"}, false},
		{"exponent literal", Condition{Var: "n", Op: OpEq, Value: "5e0"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Evaluate(m, &tt.cond))
		})
	}
}

func TestEvaluate_Strings(t *testing.T) {
	m := Map{"name": Str("alice"), "n": Num(5)}

	assert.True(t, Evaluate(m, &Condition{Var: "name", Op: OpEq, Value: "alice"}))
	assert.False(t, Evaluate(m, &Condition{Var: "name", Op: OpEq, Value: "Alice"}))
	assert.True(t, Evaluate(m, &Condition{Var: "name", Op: OpNe, Value: "bob"}))
	assert.True(t, Evaluate(m, &Condition{Var: "name", Op: OpLt, Value: "bob"}))
	assert.False(t, Evaluate(m, &Condition{Var: "name", Op: OpGt, Value: "bob"}))

	// Number against a non-numeric literal falls back to string comparison.
	assert.False(t, Evaluate(m, &Condition{Var: "n", Op: OpEq, Value: "five"}))
	assert.True(t, Evaluate(m, &Condition{Var: "n", Op: OpNe, Value: "five"}))
}

func TestEvaluate_Unset(t *testing.T) {
	m := Map{}

	assert.False(t, Evaluate(m, &Condition{Var: "flag", Op: OpEq, Value: "1"}))
	assert.True(t, Evaluate(m, &Condition{Var: "flag", Op: OpNe, Value: "1"}))
	assert.False(t, Evaluate(m, &Condition{Var: "flag", Op: OpGt, Value: "0"}))
	assert.False(t, Evaluate(m, &Condition{Var: "flag", Op: OpLe, Value: "0"}))
}

func TestCheck_UnknownOperator(t *testing.T) {
	m := Map{"x": Num(1)}

	ok, err := Check(m, &Condition{Var: "x", Op: "=~", Value: "1"})
	assert.False(t, ok)
	require.Error(t, err)
	assert.True(t, IsMalformedCondition(err))

	assert.False(t, Evaluate(m, &Condition{Var: "x", Op: "", Value: "1"}))
}

func TestCondition_UnmarshalNumericValue(t *testing.T) {
	var c Condition
	require.NoError(t, json.Unmarshal([]byte(`{"var":"gold","op":">=","value":15}`), &c))

	assert.Equal(t, "gold", c.Var)
	assert.Equal(t, OpGe, c.Op)
	assert.Equal(t, "15", c.Value)
}

func TestCondition_UnmarshalMissingValue(t *testing.T) {
	var c Condition
	require.NoError(t, json.Unmarshal([]byte(`{"var":"flag","op":"=="}`), &c))
	assert.Equal(t, "", c.Value)
}
