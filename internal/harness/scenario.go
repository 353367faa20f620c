package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario defines a conformance test scenario: a sequence of store
// operations with expected outcomes, plus assertions over the final trace
// and state.
type Scenario struct {
	// Name uniquely identifies this scenario; it doubles as the golden
	// file name.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Setup contains operations executed before the main flow.
	// Setup operations must succeed; a failure aborts the run.
	Setup []Step `yaml:"setup,omitempty"`

	// Flow contains the main operations with expected results.
	Flow []FlowStep `yaml:"flow"`

	// Assertions validate the final trace and state.
	// Supported types: trace_contains, trace_order, trace_count, final_state.
	Assertions []Assertion `yaml:"assertions"`

	// OpToken is the fixed operation token for deterministic runs.
	// Defaults to "test-op-default".
	OpToken string `yaml:"op_token,omitempty"`
}

// Step is one store operation.
//
// Supported ops and their args:
//
//	init          {}
//	add           {collection, fields}
//	find          {collection, key}
//	remove        {collection, key}
//	list          {collection}
//	count         {collection}
//	adjust        {collection, key, set: {field: value}, add: {field: delta}}
//	counter_get   {cell, default}
//	counter_add   {cell, delta, default}
//	counter_set   {cell, value}
//	counter_reset {cell}
type Step struct {
	Op   string         `yaml:"op"`
	Args map[string]any `yaml:"args"`
}

// FlowStep is a Step with an optional expectation on its result.
type FlowStep struct {
	Op     string         `yaml:"op"`
	Args   map[string]any `yaml:"args"`
	Expect *ExpectClause  `yaml:"expect,omitempty"`
}

// ExpectClause specifies the expected outcome of a flow step.
type ExpectClause struct {
	// Outcome is "ok" or an error code (e.g. "NOT_FOUND", "DUPLICATE_KEY").
	Outcome string `yaml:"outcome"`

	// Fields contains expected record field values. Subset match - only
	// the listed fields are checked.
	Fields map[string]any `yaml:"fields,omitempty"`

	// Value is the expected counter value (counter_get, counter_add).
	Value *int64 `yaml:"value,omitempty"`

	// Count is the expected record count (count).
	Count *int `yaml:"count,omitempty"`
}

// Assertion validates the final trace or state.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Op is the operation name (trace_contains, trace_count).
	Op string `yaml:"op,omitempty"`

	// Ops is the expected operation order (trace_order).
	Ops []string `yaml:"ops,omitempty"`

	// Count is the expected number of occurrences (trace_count).
	Count int `yaml:"count,omitempty"`

	// Collection is the collection to query (final_state).
	Collection string `yaml:"collection,omitempty"`

	// Key addresses one record (final_state). Empty key with Absent unset
	// asserts on collection size via Size.
	Key string `yaml:"key,omitempty"`

	// Expect contains expected field values, subset match (final_state).
	Expect map[string]any `yaml:"expect,omitempty"`

	// Absent asserts the key does not exist (final_state).
	Absent bool `yaml:"absent,omitempty"`

	// Size asserts the collection record count (final_state, no key).
	Size *int `yaml:"size,omitempty"`
}

// Assertion type constants.
const (
	AssertTraceContains = "trace_contains"
	AssertTraceOrder    = "trace_order"
	AssertTraceCount    = "trace_count"
	AssertFinalState    = "final_state"
)

// LoadScenario reads and parses a scenario YAML file.
// Unknown fields are rejected so typos fail loudly.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("parse scenario YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks required fields.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Flow) == 0 {
		return fmt.Errorf("flow list is required and must be non-empty")
	}

	for i, step := range s.Setup {
		if step.Op == "" {
			return fmt.Errorf("setup[%d]: op is required", i)
		}
	}
	for i, step := range s.Flow {
		if step.Op == "" {
			return fmt.Errorf("flow[%d]: op is required", i)
		}
		if step.Expect != nil && step.Expect.Outcome == "" {
			return fmt.Errorf("flow[%d].expect: outcome is required", i)
		}
	}
	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}
	return nil
}

func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case AssertTraceContains:
		if a.Op == "" {
			return fmt.Errorf("assertions[%d]: op is required for trace_contains", index)
		}
	case AssertTraceOrder:
		if len(a.Ops) == 0 {
			return fmt.Errorf("assertions[%d]: ops list is required for trace_order", index)
		}
	case AssertTraceCount:
		if a.Op == "" {
			return fmt.Errorf("assertions[%d]: op is required for trace_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative", index)
		}
	case AssertFinalState:
		if a.Collection == "" {
			return fmt.Errorf("assertions[%d]: collection is required for final_state", index)
		}
		if a.Key == "" && a.Size == nil {
			return fmt.Errorf("assertions[%d]: final_state needs a key or a size", index)
		}
		if a.Key != "" && !a.Absent && len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required unless absent is set", index)
		}
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
