package engine

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOpErrorFormat(t *testing.T) {
	err := notFound("books", "1984")
	assert.Equal(t, "NOT_FOUND: no record with this key (collection=books, key=1984)", err.Error())

	err = invalidState("books", "", "no schema for collection")
	assert.Equal(t, "INVALID_STATE: no schema for collection (collection=books)", err.Error())

	err = uninitialized()
	assert.Equal(t, "UNINITIALIZED: store is not initialized", err.Error())
}

func TestIsHelpersMatchWrappedErrors(t *testing.T) {
	wrapped := fmt.Errorf("handling request: %w", duplicateKey("books", "1984"))

	assert.True(t, IsDuplicateKey(wrapped))
	assert.False(t, IsNotFound(wrapped))
	assert.False(t, IsDuplicateKey(assert.AnError))
	assert.False(t, IsDuplicateKey(nil))
}

func TestIsHelpersDiscriminateCodes(t *testing.T) {
	cases := []struct {
		err  error
		want func(error) bool
	}{
		{notFound("c", "k"), IsNotFound},
		{alreadyInitialized(), IsAlreadyInitialized},
		{uninitialized(), IsUninitialized},
		{duplicateKey("c", "k"), IsDuplicateKey},
		{invalidState("c", "k", "m"), IsInvalidState},
	}
	for _, tc := range cases {
		assert.True(t, tc.want(tc.err), "%v", tc.err)
	}
}
