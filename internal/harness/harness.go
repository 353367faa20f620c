package harness

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/roach88/strata/internal/engine"
	"github.com/roach88/strata/internal/record"
	"github.com/roach88/strata/internal/schema"
	"github.com/roach88/strata/internal/store"
	"github.com/roach88/strata/internal/testutil"
)

// Harness executes one scenario against a real engine.
type Harness struct {
	engine *engine.Engine
}

// Run executes a scenario and returns the result.
//
// Each scenario runs on a fresh in-memory journal with a fixed operation
// token, so traces are reproducible: seq numbers derive from operation
// order alone.
func Run(scenario *Scenario) (*Result, error) {
	journal, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("create in-memory journal: %w", err)
	}
	defer journal.Close()

	schemas, err := schema.Builtin()
	if err != nil {
		return nil, fmt.Errorf("compile builtin schemas: %w", err)
	}

	eng := engine.New(journal, schemas,
		engine.WithTokenGenerator(testutil.NewFixedTokenGenerator(scenario.OpToken)))
	if err := eng.Load(); err != nil {
		return nil, fmt.Errorf("load engine: %w", err)
	}

	h := &Harness{engine: eng}
	result := NewResult()
	ctx := context.Background()

	// Setup operations must succeed.
	for i, step := range scenario.Setup {
		event, err := h.execute(ctx, step)
		if err != nil {
			return nil, fmt.Errorf("setup[%d] %s: %w", i, step.Op, err)
		}
		result.Trace = append(result.Trace, event)
		if event.Outcome != "ok" {
			return nil, fmt.Errorf("setup[%d] %s failed: %s", i, step.Op, event.Outcome)
		}
	}

	for i, step := range scenario.Flow {
		event, err := h.execute(ctx, Step{Op: step.Op, Args: step.Args})
		if err != nil {
			return nil, fmt.Errorf("flow[%d] %s: %w", i, step.Op, err)
		}
		result.Trace = append(result.Trace, event)
		checkExpect(i, step, event, result)
	}

	h.evaluateAssertions(ctx, scenario.Assertions, result)
	return result, nil
}

// execute dispatches one operation and converts its result to a trace
// event. Typed operation errors become outcomes; anything else is an
// infrastructure failure and propagates.
func (h *Harness) execute(ctx context.Context, step Step) (TraceEvent, error) {
	event := TraceEvent{Op: step.Op, Args: step.Args}

	switch step.Op {
	case "init":
		return finish(event, h.engine.Initialize(ctx))

	case "add":
		collection, err := stringArg(step.Args, "collection")
		if err != nil {
			return event, err
		}
		fieldsRaw, _ := step.Args["fields"].(map[string]any)
		fields, err := record.FieldsFromAny(fieldsRaw)
		if err != nil {
			return event, fmt.Errorf("add fields: %w", err)
		}
		rec, opErr := h.engine.Add(ctx, collection, fields)
		if opErr == nil {
			event.Fields = fieldsToAny(rec.Fields)
		}
		return finish(event, opErr)

	case "find":
		collection, key, err := collectionKeyArgs(step.Args)
		if err != nil {
			return event, err
		}
		rec, opErr := h.engine.FindByKey(ctx, collection, key)
		if opErr == nil {
			event.Fields = fieldsToAny(rec.Fields)
		}
		return finish(event, opErr)

	case "remove":
		collection, key, err := collectionKeyArgs(step.Args)
		if err != nil {
			return event, err
		}
		rec, opErr := h.engine.RemoveByKey(ctx, collection, key)
		if opErr == nil {
			event.Fields = fieldsToAny(rec.Fields)
		}
		return finish(event, opErr)

	case "list":
		collection, err := stringArg(step.Args, "collection")
		if err != nil {
			return event, err
		}
		recs, opErr := h.engine.List(ctx, collection)
		if opErr == nil {
			event.Records = make([]map[string]any, len(recs))
			for i, rec := range recs {
				event.Records[i] = fieldsToAny(rec.Fields)
			}
		}
		return finish(event, opErr)

	case "count":
		collection, err := stringArg(step.Args, "collection")
		if err != nil {
			return event, err
		}
		n, opErr := h.engine.Count(ctx, collection)
		if opErr == nil {
			event.Count = &n
		}
		return finish(event, opErr)

	case "adjust":
		collection, key, err := collectionKeyArgs(step.Args)
		if err != nil {
			return event, err
		}
		mutation, err := buildMutation(step.Args)
		if err != nil {
			return event, err
		}
		rec, opErr := h.engine.Adjust(ctx, collection, key, mutation)
		if opErr == nil {
			event.Fields = fieldsToAny(rec.Fields)
		}
		return finish(event, opErr)

	case "counter_get":
		name, err := stringArg(step.Args, "cell")
		if err != nil {
			return event, err
		}
		def := int64Arg(step.Args, "default", 0)
		n, opErr := h.engine.CounterGet(ctx, name, def)
		if opErr == nil {
			event.Value = &n
		}
		return finish(event, opErr)

	case "counter_add":
		name, err := stringArg(step.Args, "cell")
		if err != nil {
			return event, err
		}
		delta := int64Arg(step.Args, "delta", 1)
		def := int64Arg(step.Args, "default", 0)
		n, opErr := h.engine.CounterAdd(ctx, name, delta, def)
		if opErr == nil {
			event.Value = &n
		}
		return finish(event, opErr)

	case "counter_set":
		name, err := stringArg(step.Args, "cell")
		if err != nil {
			return event, err
		}
		value := int64Arg(step.Args, "value", 0)
		return finish(event, h.engine.CounterSet(ctx, name, value))

	case "counter_reset":
		name, err := stringArg(step.Args, "cell")
		if err != nil {
			return event, err
		}
		return finish(event, h.engine.CounterReset(ctx, name))

	default:
		return event, fmt.Errorf("unknown op %q", step.Op)
	}
}

// finish stamps the event outcome. Typed operation errors are outcomes,
// not failures; the result payload is cleared so failed operations never
// leak partial state into the trace.
func finish(event TraceEvent, err error) (TraceEvent, error) {
	if err == nil {
		event.Outcome = "ok"
		return event, nil
	}
	var oe *engine.OpError
	if errors.As(err, &oe) {
		event.Outcome = string(oe.Code)
		event.Fields = nil
		event.Records = nil
		event.Value = nil
		event.Count = nil
		return event, nil
	}
	return event, err
}

// buildMutation turns the declarative set/add maps of an adjust step into
// a transform. Set entries overwrite fields; add entries require an
// existing integer field and apply a delta. Keys apply in sorted order so
// the transform is deterministic.
func buildMutation(args map[string]any) (func(record.Fields) error, error) {
	setRaw, _ := args["set"].(map[string]any)
	addRaw, _ := args["add"].(map[string]any)
	if len(setRaw) == 0 && len(addRaw) == 0 {
		return nil, fmt.Errorf("adjust needs a set or add map")
	}

	return func(f record.Fields) error {
		for _, k := range sortedKeys(setRaw) {
			val, err := record.FromAny(setRaw[k])
			if err != nil {
				return fmt.Errorf("set %q: %w", k, err)
			}
			f[k] = val
		}
		for _, k := range sortedKeys(addRaw) {
			deltaVal, err := record.FromAny(addRaw[k])
			if err != nil {
				return fmt.Errorf("add %q: %w", k, err)
			}
			delta, ok := deltaVal.(record.Int)
			if !ok {
				return fmt.Errorf("add %q: delta must be an integer", k)
			}
			cur, ok := f[k].(record.Int)
			if !ok {
				return fmt.Errorf("add %q: field is not an integer", k)
			}
			f[k] = cur + delta
		}
		return nil
	}, nil
}

// checkExpect validates a flow step's result against its expect clause.
func checkExpect(index int, step FlowStep, event TraceEvent, result *Result) {
	if step.Expect == nil {
		return
	}
	expect := step.Expect

	if event.Outcome != expect.Outcome {
		result.AddError("flow[%d] %s: outcome %q, expected %q",
			index, step.Op, event.Outcome, expect.Outcome)
		return
	}

	for _, k := range sortedKeys(expect.Fields) {
		want, err := record.FromAny(expect.Fields[k])
		if err != nil {
			result.AddError("flow[%d] %s: expect field %q: %v", index, step.Op, k, err)
			continue
		}
		gotRaw, ok := event.Fields[k]
		if !ok {
			result.AddError("flow[%d] %s: field %q missing from result", index, step.Op, k)
			continue
		}
		got, err := record.FromAny(gotRaw)
		if err != nil {
			result.AddError("flow[%d] %s: field %q: %v", index, step.Op, k, err)
			continue
		}
		if got != want {
			result.AddError("flow[%d] %s: field %q = %v, expected %v",
				index, step.Op, k, got, want)
		}
	}

	if expect.Value != nil {
		if event.Value == nil {
			result.AddError("flow[%d] %s: no value in result", index, step.Op)
		} else if *event.Value != *expect.Value {
			result.AddError("flow[%d] %s: value %d, expected %d",
				index, step.Op, *event.Value, *expect.Value)
		}
	}
	if expect.Count != nil {
		if event.Count == nil {
			result.AddError("flow[%d] %s: no count in result", index, step.Op)
		} else if *event.Count != *expect.Count {
			result.AddError("flow[%d] %s: count %d, expected %d",
				index, step.Op, *event.Count, *expect.Count)
		}
	}
}

func stringArg(args map[string]any, key string) (string, error) {
	v, ok := args[key].(string)
	if !ok || v == "" {
		return "", fmt.Errorf("arg %q is required", key)
	}
	return v, nil
}

func collectionKeyArgs(args map[string]any) (string, string, error) {
	collection, err := stringArg(args, "collection")
	if err != nil {
		return "", "", err
	}
	key, err := stringArg(args, "key")
	if err != nil {
		return "", "", err
	}
	return collection, key, nil
}

func int64Arg(args map[string]any, key string, def int64) int64 {
	switch v := args[key].(type) {
	case int:
		return int64(v)
	case int64:
		return v
	case float64:
		return int64(v)
	default:
		return def
	}
}

func fieldsToAny(fields record.Fields) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = record.ToAny(v)
	}
	return out
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
