package vars

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Value is a sealed interface over the two value kinds a variable can hold.
// Only Str and Num implement it.
type Value interface {
	fmt.Stringer

	// Number reports the value as a finite number, if it is one.
	Number() (float64, bool)

	value() // sealed
}

// Str is a string value.
type Str string

func (Str) value() {}

func (s Str) String() string { return string(s) }

// Number parses the string as a decimal literal.
func (s Str) Number() (float64, bool) { return ParseNumber(string(s)) }

// Num is a numeric value. Arithmetic results are always stored as Num.
type Num float64

func (Num) value() {}

func (n Num) String() string { return formatNumber(float64(n)) }

// Number returns the number when it is finite.
func (n Num) Number() (float64, bool) {
	f := float64(n)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// numberLiteral matches plain decimal literals. Hex, Inf and NaN spellings
// accepted by strconv are deliberately excluded.
var numberLiteral = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// ParseNumber parses s as a finite decimal number. Surrounding whitespace is
// ignored.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if !numberLiteral.MatchString(s) {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// formatNumber renders a number the way a script runtime prints it:
// integers without a fraction, no trailing zeros.
func formatNumber(f float64) string {
	abs := math.Abs(f)
	if f == 0 || (abs >= 1e-6 && abs < 1e21) {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// FromAny converts a decoded JSON/YAML scalar to a Value.
// Booleans are kept as their string spelling.
func FromAny(v any) (Value, error) {
	switch val := v.(type) {
	case Value:
		return val, nil
	case string:
		return Str(val), nil
	case bool:
		return Str(strconv.FormatBool(val)), nil
	case float64:
		return Num(val), nil
	case float32:
		return Num(val), nil
	case int:
		return Num(val), nil
	case int64:
		return Num(val), nil
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", val, err)
		}
		return Num(f), nil
	default:
		return nil, fmt.Errorf("unsupported variable value type: %T", v)
	}
}

// DecodeJSON decodes a single JSON scalar into a Value.
func DecodeJSON(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}
	return FromAny(raw)
}

// DecodeYAML decodes a YAML scalar node into a Value.
// !!int and !!float scalars become Num; every other scalar is a Str.
func DecodeYAML(node *yaml.Node) (Value, error) {
	if node.Kind != yaml.ScalarNode {
		return nil, fmt.Errorf("line %d: variable value must be a scalar", node.Line)
	}
	switch node.Tag {
	case "!!null":
		return nil, nil
	case "!!int", "!!float":
		var f float64
		if err := node.Decode(&f); err != nil {
			return nil, fmt.Errorf("line %d: %w", node.Line, err)
		}
		return Num(f), nil
	default:
		return Str(node.Value), nil
	}
}

// Map holds named variables. JSON numbers decode to Num and JSON strings to
// Str, so a Map survives a marshal/unmarshal round trip unchanged.
type Map map[string]Value

// Clone returns a shallow copy. Values are immutable so this is a full copy.
func (m Map) Clone() Map {
	out := make(Map, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Names returns the variable names in sorted order.
func (m Map) Names() []string {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// MarshalJSON encodes Num as a JSON number and Str as a JSON string.
func (m Map) MarshalJSON() ([]byte, error) {
	raw := make(map[string]any, len(m))
	for k, v := range m {
		switch val := v.(type) {
		case Num:
			if _, ok := val.Number(); !ok {
				return nil, fmt.Errorf("variable %q: non-finite number", k)
			}
			raw[k] = float64(val)
		case Str:
			raw[k] = string(val)
		default:
			return nil, fmt.Errorf("variable %q: unsupported value %T", k, v)
		}
	}
	return json.Marshal(raw)
}

// UnmarshalJSON decodes an object of scalars. Null entries are dropped.
func (m *Map) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return fmt.Errorf("decode variables: %w", err)
	}
	out := make(Map, len(raw))
	for k, v := range raw {
		if v == nil || k == "" {
			continue
		}
		val, err := FromAny(v)
		if err != nil {
			return fmt.Errorf("variable %q: %w", k, err)
		}
		out[k] = val
	}
	*m = out
	return nil
}

// UnmarshalYAML decodes a mapping of scalars.
func (m *Map) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: variables must be a mapping", node.Line)
	}
	out := make(Map, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		name := node.Content[i].Value
		val, err := DecodeYAML(node.Content[i+1])
		if err != nil {
			return fmt.Errorf("variable %q: %w", name, err)
		}
		if val == nil || name == "" {
			continue
		}
		out[name] = val
	}
	*m = out
	return nil
}
