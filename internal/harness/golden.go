package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/strata/internal/record"
)

// TraceSnapshot captures the complete trace for a scenario execution.
// Serialized as canonical JSON so golden comparison is byte-stable.
type TraceSnapshot struct {
	ScenarioName string       `json:"scenario_name"`
	OpToken      string       `json:"op_token,omitempty"`
	Trace        []TraceEvent `json:"trace"`
}

// toCanonicalMap flattens a snapshot into the generic shape the canonical
// marshaler accepts. Empty optional fields are omitted entirely.
func (s *TraceSnapshot) toCanonicalMap() map[string]any {
	traceList := make([]any, len(s.Trace))
	for i, event := range s.Trace {
		eventMap := map[string]any{
			"op":      event.Op,
			"outcome": event.Outcome,
		}
		if len(event.Args) > 0 {
			eventMap["args"] = event.Args
		}
		if event.Fields != nil {
			eventMap["fields"] = event.Fields
		}
		if event.Records != nil {
			records := make([]any, len(event.Records))
			for j, rec := range event.Records {
				records[j] = rec
			}
			eventMap["records"] = records
		}
		if event.Value != nil {
			eventMap["value"] = *event.Value
		}
		if event.Count != nil {
			eventMap["count"] = *event.Count
		}
		traceList[i] = eventMap
	}

	out := map[string]any{
		"scenario_name": s.ScenarioName,
		"trace":         traceList,
	}
	if s.OpToken != "" {
		out["op_token"] = s.OpToken
	}
	return out
}

// RunWithGolden executes a scenario and compares its trace against the
// golden file testdata/golden/{scenario.Name}.golden.
//
// Regenerate golden files with:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}

	snapshot := TraceSnapshot{
		ScenarioName: scenario.Name,
		OpToken:      scenario.OpToken,
		Trace:        result.Trace,
	}
	traceJSON, err := record.MarshalCanonical(snapshot.toCanonicalMap())
	if err != nil {
		return nil, err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, traceJSON)
	return result, nil
}
