package query

import (
	"fmt"

	"github.com/roach88/strata/internal/record"
	"github.com/roach88/strata/internal/schema"
)

// Op is a comparison operator.
type Op string

const (
	OpEq Op = "eq"
	OpNe Op = "ne"
	OpLt Op = "lt"
	OpLe Op = "le"
	OpGt Op = "gt"
	OpGe Op = "ge"
)

// KeyField is the pseudo-field addressing a record's natural key.
const KeyField = "key"

// Pred compares a field against a literal value.
type Pred struct {
	Field string
	Op    Op
	Value record.Value
}

// ParseOp converts an operator name to an Op.
func ParseOp(s string) (Op, error) {
	switch Op(s) {
	case OpEq, OpNe, OpLt, OpLe, OpGt, OpGe:
		return Op(s), nil
	default:
		return "", fmt.Errorf("unknown operator %q (want eq, ne, lt, le, gt, or ge)", s)
	}
}

// Validate checks a predicate against a collection schema.
//
// Rules:
//   - the field must be "key" or a declared schema field
//   - the literal's kind must match the field's declared kind
//     (int literals widen to float fields; "key" takes strings)
//   - ordering operators apply to strings and numerics, not bools
func Validate(p Pred, def *schema.Definition) error {
	if p.Value == nil {
		return fmt.Errorf("predicate on %q: nil value", p.Field)
	}
	if _, err := ParseOp(string(p.Op)); err != nil {
		return err
	}

	var kind schema.Kind
	if p.Field == KeyField {
		kind = schema.KindString
	} else {
		decl, ok := def.Fields[p.Field]
		if !ok {
			return fmt.Errorf("collection %s: unknown field %q", def.Name, p.Field)
		}
		kind = decl.Kind
	}

	switch p.Value.(type) {
	case record.String:
		if kind != schema.KindString {
			return fmt.Errorf("field %q: expected %s literal, got string", p.Field, kind)
		}
	case record.Int:
		if kind != schema.KindInt && kind != schema.KindFloat {
			return fmt.Errorf("field %q: expected %s literal, got int", p.Field, kind)
		}
	case record.Float:
		if kind != schema.KindFloat {
			return fmt.Errorf("field %q: expected %s literal, got float", p.Field, kind)
		}
	case record.Bool:
		if kind != schema.KindBool {
			return fmt.Errorf("field %q: expected %s literal, got bool", p.Field, kind)
		}
		if p.Op != OpEq && p.Op != OpNe {
			return fmt.Errorf("field %q: operator %s not defined for bool", p.Field, p.Op)
		}
	default:
		return fmt.Errorf("field %q: unsupported literal type %T", p.Field, p.Value)
	}

	return nil
}
