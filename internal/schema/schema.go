package schema

import (
	"fmt"
	"sort"

	"github.com/roach88/strata/internal/record"
)

// Kind is the declared type of a schema field.
type Kind string

const (
	KindString Kind = "string"
	KindInt    Kind = "int"
	KindFloat  Kind = "float"
	KindBool   Kind = "bool"
)

// Field is one typed field of a collection.
type Field struct {
	Name string
	Kind Kind

	// Placeholder replaces an empty string value during normalization.
	// Only meaningful for KindString; empty means no placeholder.
	Placeholder string

	// Floor is the lower clamp for numeric fields during normalization
	// and the invariant boundary for adjustments.
	Floor    float64
	HasFloor bool
}

// Definition describes one collection: its name, natural-key field, and
// field set. FieldOrder preserves declaration order for deterministic
// error reporting.
type Definition struct {
	Name       string
	KeyField   string
	Fields     map[string]Field
	FieldOrder []string
}

// Set is a compiled schema catalog keyed by collection name.
type Set map[string]*Definition

// Get returns the definition for a collection.
func (s Set) Get(name string) (*Definition, bool) {
	def, ok := s[name]
	return def, ok
}

// Names returns collection names in a stable order.
func (s Set) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ValidateTypes checks a payload against the definition: every field must
// be declared, carry the declared kind, and the key field must be present.
// Int values are accepted for float fields (widening only).
func (d *Definition) ValidateTypes(fields record.Fields) error {
	if _, ok := fields[d.KeyField]; !ok {
		return fmt.Errorf("collection %s: missing key field %q", d.Name, d.KeyField)
	}

	for _, name := range sortedFieldNames(fields) {
		decl, ok := d.Fields[name]
		if !ok {
			return fmt.Errorf("collection %s: unknown field %q", d.Name, name)
		}
		if err := checkKind(decl, fields[name]); err != nil {
			return fmt.Errorf("collection %s: %w", d.Name, err)
		}
	}
	return nil
}

// Normalize returns a normalized copy of the payload:
//   - empty string fields with a placeholder take the placeholder
//   - numeric fields below their floor are clamped to the floor
//
// The input is never mutated.
func (d *Definition) Normalize(fields record.Fields) record.Fields {
	out := fields.Clone()
	for name, v := range out {
		decl, ok := d.Fields[name]
		if !ok {
			continue
		}
		switch val := v.(type) {
		case record.String:
			if val == "" && decl.Placeholder != "" {
				out[name] = record.String(decl.Placeholder)
			}
		case record.Int:
			if decl.HasFloor && float64(val) < decl.Floor {
				out[name] = record.Int(int64(decl.Floor))
			}
		case record.Float:
			if decl.HasFloor && float64(val) < decl.Floor {
				out[name] = record.Float(decl.Floor)
			}
		}
	}
	return out
}

// Check verifies invariants without normalizing: a numeric field below its
// floor is a violation. Used after adjustments, where out-of-range values
// are rejected rather than clamped.
func (d *Definition) Check(fields record.Fields) error {
	for _, name := range sortedFieldNames(fields) {
		decl, ok := d.Fields[name]
		if !ok || !decl.HasFloor {
			continue
		}
		switch val := fields[name].(type) {
		case record.Int:
			if float64(val) < decl.Floor {
				return fmt.Errorf("field %q below floor %v: %d", name, decl.Floor, int64(val))
			}
		case record.Float:
			if float64(val) < decl.Floor {
				return fmt.Errorf("field %q below floor %v: %v", name, decl.Floor, float64(val))
			}
		}
	}
	return nil
}

func checkKind(decl Field, v record.Value) error {
	switch v.(type) {
	case record.String:
		if decl.Kind != KindString {
			return fmt.Errorf("field %q: expected %s, got string", decl.Name, decl.Kind)
		}
	case record.Int:
		// Ints widen into float fields.
		if decl.Kind != KindInt && decl.Kind != KindFloat {
			return fmt.Errorf("field %q: expected %s, got int", decl.Name, decl.Kind)
		}
	case record.Float:
		if decl.Kind != KindFloat {
			return fmt.Errorf("field %q: expected %s, got float", decl.Name, decl.Kind)
		}
	case record.Bool:
		if decl.Kind != KindBool {
			return fmt.Errorf("field %q: expected %s, got bool", decl.Name, decl.Kind)
		}
	default:
		return fmt.Errorf("field %q: unsupported value type %T", decl.Name, v)
	}
	return nil
}

func sortedFieldNames(fields record.Fields) []string {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
