package harness

import (
	"context"

	"github.com/roach88/strata/internal/record"
)

// evaluateAssertions checks every scenario assertion against the final
// trace and engine state, accumulating failures into the result.
func (h *Harness) evaluateAssertions(ctx context.Context, assertions []Assertion, result *Result) {
	for i, a := range assertions {
		switch a.Type {
		case AssertTraceContains:
			h.assertTraceContains(i, a, result)
		case AssertTraceOrder:
			h.assertTraceOrder(i, a, result)
		case AssertTraceCount:
			h.assertTraceCount(i, a, result)
		case AssertFinalState:
			h.assertFinalState(ctx, i, a, result)
		default:
			result.AddError("assertions[%d]: unknown type %q", i, a.Type)
		}
	}
}

func (h *Harness) assertTraceContains(index int, a Assertion, result *Result) {
	for _, event := range result.Trace {
		if event.Op == a.Op {
			return
		}
	}
	result.AddError("assertions[%d]: trace does not contain op %q", index, a.Op)
}

// assertTraceOrder checks that the listed ops appear in the trace in
// order, as a subsequence (other ops may interleave).
func (h *Harness) assertTraceOrder(index int, a Assertion, result *Result) {
	next := 0
	for _, event := range result.Trace {
		if next < len(a.Ops) && event.Op == a.Ops[next] {
			next++
		}
	}
	if next != len(a.Ops) {
		result.AddError("assertions[%d]: trace order mismatch, matched %d of %d ops",
			index, next, len(a.Ops))
	}
}

func (h *Harness) assertTraceCount(index int, a Assertion, result *Result) {
	count := 0
	for _, event := range result.Trace {
		if event.Op == a.Op {
			count++
		}
	}
	if count != a.Count {
		result.AddError("assertions[%d]: op %q appears %d times, expected %d",
			index, a.Op, count, a.Count)
	}
}

// assertFinalState queries the live engine and validates record presence,
// field values, or collection size. The listing is also captured into
// result.State for inspection.
func (h *Harness) assertFinalState(ctx context.Context, index int, a Assertion, result *Result) {
	recs, err := h.engine.List(ctx, a.Collection)
	if err != nil {
		result.AddError("assertions[%d]: list %s: %v", index, a.Collection, err)
		return
	}

	listing := make([]map[string]any, len(recs))
	for i, rec := range recs {
		listing[i] = fieldsToAny(rec.Fields)
	}
	result.State[a.Collection] = listing

	if a.Size != nil && len(recs) != *a.Size {
		result.AddError("assertions[%d]: collection %s has %d records, expected %d",
			index, a.Collection, len(recs), *a.Size)
	}
	if a.Key == "" {
		return
	}

	var found *record.Record
	for i := range recs {
		if recs[i].Key == a.Key {
			found = &recs[i]
			break
		}
	}

	if a.Absent {
		if found != nil {
			result.AddError("assertions[%d]: record %s/%s should be absent",
				index, a.Collection, a.Key)
		}
		return
	}
	if found == nil {
		result.AddError("assertions[%d]: record %s/%s not found", index, a.Collection, a.Key)
		return
	}

	for _, k := range sortedKeys(a.Expect) {
		want, err := record.FromAny(a.Expect[k])
		if err != nil {
			result.AddError("assertions[%d]: expect field %q: %v", index, k, err)
			continue
		}
		gotRaw, ok := found.Fields[k]
		if !ok {
			result.AddError("assertions[%d]: record %s/%s has no field %q",
				index, a.Collection, a.Key, k)
			continue
		}
		// Round-trip through the generic representation so an integral
		// float compares equal to an integer expectation.
		got, err := record.FromAny(record.ToAny(gotRaw))
		if err != nil {
			result.AddError("assertions[%d]: field %q: %v", index, k, err)
			continue
		}
		if got != want {
			result.AddError("assertions[%d]: record %s/%s field %q = %v, expected %v",
				index, a.Collection, a.Key, k, got, want)
		}
	}
}
