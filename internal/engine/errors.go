package engine

import (
	"errors"
	"fmt"
)

// OpCode categorizes operation errors.
type OpCode string

const (
	// ErrCodeNotFound indicates no record matched the given key.
	ErrCodeNotFound OpCode = "NOT_FOUND"

	// ErrCodeAlreadyInitialized indicates Initialize on an initialized store.
	ErrCodeAlreadyInitialized OpCode = "ALREADY_INITIALIZED"

	// ErrCodeUninitialized indicates an operation before Initialize.
	ErrCodeUninitialized OpCode = "UNINITIALIZED"

	// ErrCodeDuplicateKey indicates an add with an existing natural key.
	ErrCodeDuplicateKey OpCode = "DUPLICATE_KEY"

	// ErrCodeInvalidState indicates a payload that violates its schema,
	// or an adjustment that would violate an invariant.
	ErrCodeInvalidState OpCode = "INVALID_STATE"
)

// OpError represents a failed store operation.
//
// OpError carries the structured fields callers branch on: the code, and
// the collection/key the operation addressed when applicable. The engine
// is the only layer that constructs these; inner layers return sentinel
// errors that the engine translates.
type OpError struct {
	Code       OpCode
	Collection string
	Key        string
	Message    string
}

// Error implements the error interface.
func (e *OpError) Error() string {
	switch {
	case e.Collection != "" && e.Key != "":
		return fmt.Sprintf("%s: %s (collection=%s, key=%s)", e.Code, e.Message, e.Collection, e.Key)
	case e.Collection != "":
		return fmt.Sprintf("%s: %s (collection=%s)", e.Code, e.Message, e.Collection)
	default:
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
}

// IsNotFound reports whether err is a NOT_FOUND operation error.
// Uses errors.As to handle wrapped errors.
func IsNotFound(err error) bool { return hasCode(err, ErrCodeNotFound) }

// IsAlreadyInitialized reports whether err is an ALREADY_INITIALIZED error.
func IsAlreadyInitialized(err error) bool { return hasCode(err, ErrCodeAlreadyInitialized) }

// IsUninitialized reports whether err is an UNINITIALIZED error.
func IsUninitialized(err error) bool { return hasCode(err, ErrCodeUninitialized) }

// IsDuplicateKey reports whether err is a DUPLICATE_KEY error.
func IsDuplicateKey(err error) bool { return hasCode(err, ErrCodeDuplicateKey) }

// IsInvalidState reports whether err is an INVALID_STATE error.
func IsInvalidState(err error) bool { return hasCode(err, ErrCodeInvalidState) }

func hasCode(err error, code OpCode) bool {
	var oe *OpError
	if errors.As(err, &oe) {
		return oe.Code == code
	}
	return false
}

func notFound(collection, key string) *OpError {
	return &OpError{
		Code:       ErrCodeNotFound,
		Collection: collection,
		Key:        key,
		Message:    "no record with this key",
	}
}

func alreadyInitialized() *OpError {
	return &OpError{
		Code:    ErrCodeAlreadyInitialized,
		Message: "store is already initialized",
	}
}

func uninitialized() *OpError {
	return &OpError{
		Code:    ErrCodeUninitialized,
		Message: "store is not initialized",
	}
}

func duplicateKey(collection, key string) *OpError {
	return &OpError{
		Code:       ErrCodeDuplicateKey,
		Collection: collection,
		Key:        key,
		Message:    "a record with this key already exists",
	}
}

func invalidState(collection, key, message string) *OpError {
	return &OpError{
		Code:       ErrCodeInvalidState,
		Collection: collection,
		Key:        key,
		Message:    message,
	}
}
