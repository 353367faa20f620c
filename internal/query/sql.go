package query

import (
	"fmt"
	"strings"

	"github.com/roach88/strata/internal/record"
)

// CompileSQL converts a predicate to a parameterized SQLite WHERE fragment
// over the records table. Payload fields go through json_extract on the
// canonical fields column; the key pseudo-field hits the key column.
//
// Values are never interpolated - always ? placeholders. This path is an
// optimization for journal-side lookups; result ordering still belongs to
// the in-memory sequence.
func CompileSQL(p Pred) (string, []any, error) {
	op, err := sqlOp(p.Op)
	if err != nil {
		return "", nil, err
	}
	param, err := valueToParam(p.Value)
	if err != nil {
		return "", nil, err
	}

	if p.Field == KeyField {
		return fmt.Sprintf("key %s ?", op), []any{param}, nil
	}

	// json_extract path is parameterized too: field names come from a
	// validated schema, never raw user input, but there is no reason to
	// splice them into the JSON path either.
	return fmt.Sprintf("json_extract(fields, ?) %s ?", op), []any{"$." + p.Field, param}, nil
}

// CompileSQLAll conjoins predicates into one WHERE fragment with AND.
// An empty slice compiles to an always-true fragment.
func CompileSQLAll(preds []Pred) (string, []any, error) {
	if len(preds) == 0 {
		return "1 = 1", nil, nil
	}

	var fragments []string
	var args []any
	for _, p := range preds {
		sql, params, err := CompileSQL(p)
		if err != nil {
			return "", nil, err
		}
		fragments = append(fragments, sql)
		args = append(args, params...)
	}
	return strings.Join(fragments, " AND "), args, nil
}

func sqlOp(op Op) (string, error) {
	switch op {
	case OpEq:
		return "=", nil
	case OpNe:
		return "!=", nil
	case OpLt:
		return "<", nil
	case OpLe:
		return "<=", nil
	case OpGt:
		return ">", nil
	case OpGe:
		return ">=", nil
	default:
		return "", fmt.Errorf("unknown operator %q", op)
	}
}

// valueToParam converts a Value to a Go native type for a SQL parameter.
func valueToParam(v record.Value) (any, error) {
	switch val := v.(type) {
	case record.String:
		return string(val), nil
	case record.Int:
		return int64(val), nil
	case record.Float:
		return float64(val), nil
	case record.Bool:
		return bool(val), nil
	default:
		return nil, fmt.Errorf("unsupported value type for SQL parameter: %T", v)
	}
}
