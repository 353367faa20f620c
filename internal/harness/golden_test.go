package harness

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestScenarios_Golden runs every scenario under testdata/scenarios and
// compares its trace against the matching golden file. Regenerate with
// `go test ./internal/harness -update` after an intentional trace change.
func TestScenarios_Golden(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("testdata", "scenarios", "*.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, paths, "no scenario fixtures found")

	for _, path := range paths {
		path := path
		scenario, err := LoadScenario(path)
		require.NoError(t, err, path)

		t.Run(scenario.Name, func(t *testing.T) {
			result, err := RunWithGolden(t, scenario)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
		})
	}
}

func TestTraceSnapshot_CanonicalShape(t *testing.T) {
	scenario := &Scenario{
		Name:        "shape",
		Description: "snapshot serialization is stable and omits empty fields",
		OpToken:     "tok",
		Flow: []FlowStep{
			{Op: "init"},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)

	snapshot := TraceSnapshot{
		ScenarioName: scenario.Name,
		OpToken:      scenario.OpToken,
		Trace:        result.Trace,
	}
	m := snapshot.toCanonicalMap()
	assert.Equal(t, "shape", m["scenario_name"])
	assert.Equal(t, "tok", m["op_token"])

	events, ok := m["trace"].([]any)
	require.True(t, ok)
	require.Len(t, events, 1)
	event, ok := events[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "init", event["op"])
	assert.Equal(t, "ok", event["outcome"])
	_, hasArgs := event["args"]
	assert.False(t, hasArgs, "init carries no args")
	_, hasValue := event["value"]
	assert.False(t, hasValue)
}

func TestTraceSnapshot_OmitsEmptyToken(t *testing.T) {
	snapshot := TraceSnapshot{ScenarioName: "anon"}
	m := snapshot.toCanonicalMap()
	_, ok := m["op_token"]
	assert.False(t, ok)
}
