package query

import (
	"github.com/roach88/strata/internal/record"
	"github.com/roach88/strata/internal/table"
)

// Compile converts a predicate to an in-memory closure for ordered scans.
// A record missing the addressed field never matches.
func Compile(p Pred) table.Predicate {
	return func(rec record.Record) bool {
		var actual record.Value
		if p.Field == KeyField {
			actual = record.String(rec.Key)
		} else {
			v, ok := rec.Fields[p.Field]
			if !ok {
				return false
			}
			actual = v
		}
		return evalOp(actual, p.Op, p.Value)
	}
}

// CompileAll conjoins predicates: a record matches when every predicate
// matches. An empty slice matches everything.
func CompileAll(preds []Pred) table.Predicate {
	compiled := make([]table.Predicate, len(preds))
	for i, p := range preds {
		compiled[i] = Compile(p)
	}
	return func(rec record.Record) bool {
		for _, match := range compiled {
			if !match(rec) {
				return false
			}
		}
		return true
	}
}

func evalOp(actual record.Value, op Op, literal record.Value) bool {
	cmp, ok := compare(actual, literal)
	if !ok {
		// Incomparable kinds: only ne holds.
		return op == OpNe
	}
	switch op {
	case OpEq:
		return cmp == 0
	case OpNe:
		return cmp != 0
	case OpLt:
		return cmp < 0
	case OpLe:
		return cmp <= 0
	case OpGt:
		return cmp > 0
	case OpGe:
		return cmp >= 0
	default:
		return false
	}
}

// compare orders two values. Ints and floats compare numerically across
// kinds; strings compare byte-wise; bools compare false < true. Values of
// unrelated kinds are incomparable.
func compare(a, b record.Value) (int, bool) {
	switch av := a.(type) {
	case record.String:
		bv, ok := b.(record.String)
		if !ok {
			return 0, false
		}
		switch {
		case av < bv:
			return -1, true
		case av > bv:
			return 1, true
		default:
			return 0, true
		}
	case record.Int:
		switch bv := b.(type) {
		case record.Int:
			switch {
			case av < bv:
				return -1, true
			case av > bv:
				return 1, true
			default:
				return 0, true
			}
		case record.Float:
			return compareFloats(float64(av), float64(bv)), true
		}
		return 0, false
	case record.Float:
		switch bv := b.(type) {
		case record.Int:
			return compareFloats(float64(av), float64(bv)), true
		case record.Float:
			return compareFloats(float64(av), float64(bv)), true
		}
		return 0, false
	case record.Bool:
		bv, ok := b.(record.Bool)
		if !ok {
			return 0, false
		}
		switch {
		case !bool(av) && bool(bv):
			return -1, true
		case bool(av) && !bool(bv):
			return 1, true
		default:
			return 0, true
		}
	default:
		return 0, false
	}
}

func compareFloats(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
