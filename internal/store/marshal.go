package store

import (
	"fmt"

	"github.com/roach88/strata/internal/record"
)

// marshalFields serializes a record payload to canonical JSON.
// Canonical bytes keep the journal stable: rewriting the same payload
// always produces the same row content.
func marshalFields(fields record.Fields) (string, error) {
	data, err := record.MarshalCanonical(fields)
	if err != nil {
		return "", fmt.Errorf("marshal fields: %w", err)
	}
	return string(data), nil
}

// unmarshalFields deserializes a canonical JSON payload.
func unmarshalFields(data string) (record.Fields, error) {
	fields, err := record.UnmarshalFields([]byte(data))
	if err != nil {
		return nil, fmt.Errorf("unmarshal fields: %w", err)
	}
	return fields, nil
}

// marshalCellValue serializes a cell scalar to canonical JSON.
func marshalCellValue(v record.Value) (string, error) {
	data, err := record.MarshalCanonical(v)
	if err != nil {
		return "", fmt.Errorf("marshal cell value: %w", err)
	}
	return string(data), nil
}

// unmarshalCellValue deserializes a canonical JSON scalar.
func unmarshalCellValue(data string) (record.Value, error) {
	v, err := record.UnmarshalValue([]byte(data))
	if err != nil {
		return nil, fmt.Errorf("unmarshal cell value: %w", err)
	}
	return v, nil
}
