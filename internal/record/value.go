package record

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"unicode/utf16"
)

// Value is a sealed interface representing the constrained field value types.
// Only String, Int, Float, and Bool implement it. There is no null: absence
// is modeled by the containing structure (a missing field, an unset cell),
// never by a null value.
type Value interface {
	value() // Sealed - only these types implement it
}

// String represents a text field value.
type String string

func (String) value() {}

// Int represents an integer field value. Always int64.
type Int int64

func (Int) value() {}

// Float represents a floating-point field value (prices, salaries).
// NaN and infinities are rejected at serialization boundaries.
type Float float64

func (Float) value() {}

// Bool represents a boolean field value.
type Bool bool

func (Bool) value() {}

// Fields is a map of field names to constrained values.
// Use SortedKeys() for deterministic iteration.
type Fields map[string]Value

// SortedKeys returns keys in RFC 8785 canonical order (UTF-16 code units).
// Go's sort.Strings uses UTF-8 which produces a DIFFERENT order.
func (f Fields) SortedKeys() []string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareKeysRFC8785)
	return keys
}

// Clone returns an independent copy of the fields.
// Values are immutable, so a shallow map copy is a deep copy.
func (f Fields) Clone() Fields {
	if f == nil {
		return nil
	}
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// Equal reports whether two field sets hold identical keys and values.
func (f Fields) Equal(other Fields) bool {
	if len(f) != len(other) {
		return false
	}
	for k, v := range f {
		ov, ok := other[k]
		if !ok || ov != v {
			return false
		}
	}
	return true
}

// compareKeysRFC8785 compares strings using UTF-16 code unit ordering
// as required by RFC 8785 (Canonical JSON).
func compareKeysRFC8785(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))

	minLen := min(len(a16), len(b16))
	for i := 0; i < minLen; i++ {
		if a16[i] != b16[i] {
			if a16[i] < b16[i] {
				return -1
			}
			return 1
		}
	}

	if len(a16) < len(b16) {
		return -1
	}
	if len(a16) > len(b16) {
		return 1
	}
	return 0
}

// FromAny converts a decoded JSON/YAML value to a Value.
// Rejects null, arrays, and objects: field payloads are flat scalars.
func FromAny(v any) (Value, error) {
	switch val := v.(type) {
	case nil:
		return nil, fmt.Errorf("null is forbidden: only string, int, float, bool allowed")
	case Value:
		return val, nil
	case string:
		return String(val), nil
	case bool:
		return Bool(val), nil
	case int:
		return Int(val), nil
	case int64:
		return Int(val), nil
	case float64:
		// JSON and YAML decoders hand back float64 for all numbers.
		// Preserve integral values as Int so equality checks stay exact.
		if val == math.Trunc(val) && val >= math.MinInt64 && val <= math.MaxInt64 {
			return Int(int64(val)), nil
		}
		return Float(val), nil
	case json.Number:
		s := string(val)
		if !strings.ContainsAny(s, ".eE") {
			n, err := val.Int64()
			if err != nil {
				return nil, fmt.Errorf("number out of int64 range: %s", val)
			}
			return Int(n), nil
		}
		fv, err := val.Float64()
		if err != nil {
			return nil, fmt.Errorf("invalid number: %s", val)
		}
		return Float(fv), nil
	default:
		return nil, fmt.Errorf("unsupported field value type %T", v)
	}
}

// FieldsFromAny converts a decoded map to Fields, rejecting nested values.
func FieldsFromAny(m map[string]any) (Fields, error) {
	out := make(Fields, len(m))
	for k, v := range m {
		val, err := FromAny(v)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", k, err)
		}
		out[k] = val
	}
	return out, nil
}

// ToAny converts a Value back to a plain Go value for generic output paths.
func ToAny(v Value) any {
	switch val := v.(type) {
	case String:
		return string(val)
	case Int:
		return int64(val)
	case Float:
		return float64(val)
	case Bool:
		return bool(val)
	default:
		return nil
	}
}

// formatFloat renders a float in its shortest round-trip decimal form.
// This is the single serialization used everywhere a Float crosses a
// boundary (journal, snapshot export, golden traces).
func formatFloat(f float64) (string, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "", fmt.Errorf("non-finite floats are forbidden: %v", f)
	}
	return strconv.FormatFloat(f, 'g', -1, 64), nil
}
