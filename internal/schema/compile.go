package schema

import (
	_ "embed"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

//go:embed catalog.cue
var catalogCUE string

// Builtin compiles the embedded collection catalog.
func Builtin() (Set, error) {
	return CompileString(catalogCUE, "catalog.cue")
}

// Load compiles a schema file from disk.
func Load(path string) (Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema file: %w", err)
	}
	return CompileString(string(data), path)
}

// CompileString parses CUE source into a schema Set.
// Uses the CUE SDK's Go API directly (not CLI subprocess).
//
// Expected shape:
//
//	collections: {
//	  books: {
//	    key: "title"
//	    fields: {
//	      title: {type: "string", placeholder: "Untitled"}
//	      price: {type: "float", floor: 0}
//	    }
//	  }
//	}
func CompileString(src, filename string) (Set, error) {
	ctx := cuecontext.New()
	v := ctx.CompileString(src, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	return compileSet(v)
}

func compileSet(v cue.Value) (Set, error) {
	collectionsVal := v.LookupPath(cue.ParsePath("collections"))
	if !collectionsVal.Exists() {
		return nil, &CompileError{
			Field:   "collections",
			Message: "collections block is required",
			Pos:     v.Pos(),
		}
	}

	iter, err := collectionsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	set := make(Set)
	for iter.Next() {
		name := iter.Label()
		def, err := compileDefinition(name, iter.Value())
		if err != nil {
			return nil, err
		}
		set[name] = def
	}

	if len(set) == 0 {
		return nil, &CompileError{
			Field:   "collections",
			Message: "at least one collection is required",
			Pos:     collectionsVal.Pos(),
		}
	}
	return set, nil
}

func compileDefinition(name string, v cue.Value) (*Definition, error) {
	def := &Definition{
		Name:   name,
		Fields: make(map[string]Field),
	}

	keyVal := v.LookupPath(cue.ParsePath("key"))
	if !keyVal.Exists() {
		return nil, &CompileError{
			Field:   name + ".key",
			Message: "key field is required",
			Pos:     v.Pos(),
		}
	}
	key, err := keyVal.String()
	if err != nil {
		return nil, formatCUEError(err)
	}
	def.KeyField = key

	fieldsVal := v.LookupPath(cue.ParsePath("fields"))
	if !fieldsVal.Exists() {
		return nil, &CompileError{
			Field:   name + ".fields",
			Message: "fields block is required",
			Pos:     v.Pos(),
		}
	}

	iter, err := fieldsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for iter.Next() {
		field, err := compileField(name, iter.Label(), iter.Value())
		if err != nil {
			return nil, err
		}
		def.Fields[field.Name] = field
		def.FieldOrder = append(def.FieldOrder, field.Name)
	}

	keyField, ok := def.Fields[def.KeyField]
	if !ok {
		return nil, &CompileError{
			Field:   name + ".key",
			Message: fmt.Sprintf("key field %q is not declared in fields", def.KeyField),
			Pos:     keyVal.Pos(),
		}
	}
	if keyField.Kind != KindString {
		return nil, &CompileError{
			Field:   name + ".key",
			Message: fmt.Sprintf("key field %q must be a string, got %s", def.KeyField, keyField.Kind),
			Pos:     keyVal.Pos(),
		}
	}
	return def, nil
}

func compileField(collection, name string, v cue.Value) (Field, error) {
	field := Field{Name: name}

	typeVal := v.LookupPath(cue.ParsePath("type"))
	if !typeVal.Exists() {
		return Field{}, &CompileError{
			Field:   fmt.Sprintf("%s.fields.%s.type", collection, name),
			Message: "type is required",
			Pos:     v.Pos(),
		}
	}
	typeName, err := typeVal.String()
	if err != nil {
		return Field{}, formatCUEError(err)
	}
	switch Kind(typeName) {
	case KindString, KindInt, KindFloat, KindBool:
		field.Kind = Kind(typeName)
	default:
		return Field{}, &CompileError{
			Field:   fmt.Sprintf("%s.fields.%s.type", collection, name),
			Message: fmt.Sprintf("unsupported type %q (want string, int, float, or bool)", typeName),
			Pos:     typeVal.Pos(),
		}
	}

	placeholderVal := v.LookupPath(cue.ParsePath("placeholder"))
	if placeholderVal.Exists() {
		if field.Kind != KindString {
			return Field{}, &CompileError{
				Field:   fmt.Sprintf("%s.fields.%s.placeholder", collection, name),
				Message: "placeholder only applies to string fields",
				Pos:     placeholderVal.Pos(),
			}
		}
		placeholder, err := placeholderVal.String()
		if err != nil {
			return Field{}, formatCUEError(err)
		}
		field.Placeholder = placeholder
	}

	floorVal := v.LookupPath(cue.ParsePath("floor"))
	if floorVal.Exists() {
		if field.Kind != KindInt && field.Kind != KindFloat {
			return Field{}, &CompileError{
				Field:   fmt.Sprintf("%s.fields.%s.floor", collection, name),
				Message: "floor only applies to numeric fields",
				Pos:     floorVal.Pos(),
			}
		}
		floor, err := floorVal.Float64()
		if err != nil {
			return Field{}, formatCUEError(err)
		}
		field.Floor = floor
		field.HasFloor = true
	}

	return field, nil
}

// CompileError represents a schema compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
