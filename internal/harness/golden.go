package harness

import (
	"maps"
	"slices"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/qnorm/internal/ir"
)

// TraceSnapshot captures what a scenario execution did.
// It is serialized as canonical JSON for deterministic comparison.
type TraceSnapshot struct {
	ScenarioName string
	PassID       string
	Firings      []TraceFiring
	Tree         ir.IRObject
	ErrorCode    string
	Executions   map[string]int
}

// NewTraceSnapshot builds the snapshot of result.
func NewTraceSnapshot(scenarioName string, result *Result) *TraceSnapshot {
	return &TraceSnapshot{
		ScenarioName: scenarioName,
		PassID:       result.PassID,
		Firings:      result.Firings,
		Tree:         result.Tree,
		ErrorCode:    result.ErrorCode,
		Executions:   result.Executions,
	}
}

// describe converts the snapshot to an ir.IRObject for canonical serialization.
// Tree and error are omitted when absent.
func (s *TraceSnapshot) describe() ir.IRObject {
	firings := make(ir.IRArray, len(s.Firings))
	for i, f := range s.Firings {
		firings[i] = ir.IRObject{
			"rule":    ir.IRString(f.Rule),
			"kind":    ir.IRString(f.Kind),
			"depth":   ir.IRInt(f.Depth),
			"changed": ir.IRBool(f.Changed),
		}
	}

	executions := make(ir.IRObject, len(s.Executions))
	for _, name := range slices.Sorted(maps.Keys(s.Executions)) {
		executions[name] = ir.IRInt(s.Executions[name])
	}

	out := ir.IRObject{
		"scenario_name": ir.IRString(s.ScenarioName),
		"pass_id":       ir.IRString(s.PassID),
		"firings":       firings,
		"executions":    executions,
	}
	if s.Tree != nil {
		out["tree"] = s.Tree
	}
	if s.ErrorCode != "" {
		out["error"] = ir.IRString(s.ErrorCode)
	}
	return out
}

// MarshalCanonical returns the canonical JSON form of the snapshot.
func (s *TraceSnapshot) MarshalCanonical() ([]byte, error) {
	return ir.MarshalCanonical(s.describe())
}

// Hash returns the trace fingerprint: the hash of the canonical snapshot
// under its own domain, so it never collides with a tree fingerprint.
func (s *TraceSnapshot) Hash() (string, error) {
	return ir.Hash(ir.DomainTrace, s.describe())
}

// RunWithGolden executes a scenario and compares its trace against a golden
// file stored in testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the trace doesn't match the golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}

	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares result's trace against the golden file named
// scenarioName without re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	traceJSON, err := NewTraceSnapshot(scenarioName, result).MarshalCanonical()
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, traceJSON)

	return nil
}
