package vars

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"5", 5, true},
		{"5.0", 5, true},
		{" -2.5 ", -2.5, true},
		{".5", 0.5, true},
		{"1e3", 1000, true},
		{"", 0, false},
		{"abc", 0, false},
		{"5abc", 0, false},
		{"0x10", 0, false},
		{"Inf", 0, false},
		{"NaN", 0, false},
		{"1e400", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseNumber(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestNum_String(t *testing.T) {
	assert.Equal(t, "15", Num(15).String())
	assert.Equal(t, "2.5", Num(2.5).String())
	assert.Equal(t, "-3", Num(-3).String())
	assert.Equal(t, "0", Num(0).String())
}

func TestMap_JSONRoundTrip(t *testing.T) {
	m := Map{
		"gold": Num(15),
		"name": Str("Alice"),
		"code": Str("15"),
	}

	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{"gold":15,"name":"Alice","code":"15"}`, string(data))

	var got Map
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, m, got)
}

func TestMap_UnmarshalJSONDropsNull(t *testing.T) {
	var got Map
	require.NoError(t, json.Unmarshal([]byte(`{"a":null,"b":true}`), &got))
	assert.Equal(t, Map{"b": Str("true")}, got)
}

func TestMap_UnmarshalYAML(t *testing.T) {
	var got Map
	err := yaml.Unmarshal([]byte("gold: 10\nratio: 0.5\nname: Alice\nquoted: \"7\"\n"), &got)
	require.NoError(t, err)

	assert.Equal(t, Map{
		"gold":   Num(10),
		"ratio":  Num(0.5),
		"name":   Str("Alice"),
		"quoted": Str("7"),
	}, got)
}

func TestMap_Names(t *testing.T) {
	m := Map{"b": Num(1), "a": Num(2)}
	assert.Equal(t, []string{"a", "b"}, m.Names())
}
