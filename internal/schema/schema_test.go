package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/strata/internal/record"
)

func booksDef(t *testing.T) *Definition {
	t.Helper()
	set, err := Builtin()
	require.NoError(t, err)
	def, ok := set.Get("books")
	require.True(t, ok)
	return def
}

func TestValidateTypesAccepts(t *testing.T) {
	def := booksDef(t)

	err := def.ValidateTypes(record.Fields{
		"title":    record.String("1984"),
		"author":   record.String("Orwell"),
		"year":     record.Int(1949),
		"price":    record.Float(9.99),
		"quantity": record.Int(3),
	})
	assert.NoError(t, err)
}

func TestValidateTypesIntWidensToFloat(t *testing.T) {
	def := booksDef(t)

	err := def.ValidateTypes(record.Fields{
		"title": record.String("1984"),
		"price": record.Int(10),
	})
	assert.NoError(t, err)
}

func TestValidateTypesMissingKeyField(t *testing.T) {
	def := booksDef(t)

	err := def.ValidateTypes(record.Fields{
		"author": record.String("Orwell"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `missing key field "title"`)
}

func TestValidateTypesUnknownField(t *testing.T) {
	def := booksDef(t)

	err := def.ValidateTypes(record.Fields{
		"title": record.String("1984"),
		"isbn":  record.String("x"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown field "isbn"`)
}

func TestValidateTypesWrongKind(t *testing.T) {
	def := booksDef(t)

	err := def.ValidateTypes(record.Fields{
		"title": record.String("1984"),
		"year":  record.String("nineteen forty-nine"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `field "year"`)
}

func TestNormalizePlaceholderAndFloor(t *testing.T) {
	def := booksDef(t)

	in := record.Fields{
		"title": record.String(""),
		"price": record.Float(-5),
		"year":  record.Int(-100),
	}
	out := def.Normalize(in)

	assert.Equal(t, record.String("Untitled"), out["title"])
	assert.Equal(t, record.Float(0), out["price"])
	assert.Equal(t, record.Int(0), out["year"])

	// Input untouched.
	assert.Equal(t, record.String(""), in["title"])
	assert.Equal(t, record.Float(-5), in["price"])
}

func TestNormalizeLeavesValidValues(t *testing.T) {
	def := booksDef(t)

	in := record.Fields{
		"title": record.String("1984"),
		"price": record.Float(9.99),
	}
	out := def.Normalize(in)
	assert.True(t, out.Equal(in))
}

func TestCheckFloorViolation(t *testing.T) {
	def := booksDef(t)

	err := def.Check(record.Fields{
		"title":    record.String("1984"),
		"quantity": record.Int(-1),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `field "quantity" below floor`)
}

func TestCheckPasses(t *testing.T) {
	def := booksDef(t)

	err := def.Check(record.Fields{
		"title":    record.String("1984"),
		"quantity": record.Int(0),
		"price":    record.Float(0),
	})
	assert.NoError(t, err)
}
