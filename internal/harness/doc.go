// Package harness runs YAML-defined conformance scenarios against a real
// engine.
//
// Each scenario runs on a fresh in-memory journal with a fixed operation
// token, so the produced trace is fully deterministic: logical seq numbers
// derive from operation order alone. Scenarios declare setup steps (which
// must succeed), flow steps (with optional expect clauses on outcome and
// result fields), and assertions over the final trace and state.
//
// Traces serialize to canonical JSON and compare against golden files under
// testdata/golden via goldie. Regenerate with:
//
//	go test ./internal/harness -update
package harness
