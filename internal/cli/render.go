package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/roach88/strata/internal/record"
)

// recordData flattens a record for JSON output.
func recordData(rec record.Record) map[string]any {
	fields := make(map[string]any, len(rec.Fields))
	for k, v := range rec.Fields {
		fields[k] = record.ToAny(v)
	}
	return map[string]any{
		"key":    rec.Key,
		"seq":    rec.Seq,
		"fields": fields,
	}
}

// writeRecord prints one record in text form: the key, a tab, and the
// canonical JSON payload.
func writeRecord(w io.Writer, rec record.Record) error {
	payload, err := record.MarshalCanonical(rec.Fields)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s\t%s\n", rec.Key, payload)
	return err
}

// parseFieldsJSON decodes a JSON object into a flat field payload.
// Numbers decode through json.Number so integers stay exact.
func parseFieldsJSON(src string) (record.Fields, error) {
	raw, err := decodeJSONMap(src)
	if err != nil {
		return nil, err
	}
	return record.FieldsFromAny(raw)
}

// decodeJSONMap decodes a JSON object into a generic map. An empty
// source yields a nil map.
func decodeJSONMap(src string) (map[string]any, error) {
	if src == "" {
		return nil, nil
	}
	dec := json.NewDecoder(strings.NewReader(src))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	return raw, nil
}
