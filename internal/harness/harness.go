package harness

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/qnorm/internal/expr"
	"github.com/roach88/qnorm/internal/normalize"
	"github.com/roach88/qnorm/internal/testutil"
	"github.com/roach88/qnorm/internal/visit"
)

// Run executes a scenario and returns the result.
//
// Each scenario gets fresh providers and a fresh engine running the default
// normalization rules, with a fixed pass id and logs discarded. opts are
// applied after those defaults, so callers may supply their own logger.
//
// Execution flow:
// 1. Build providers and both trees from their specs
// 2. Normalize the tree on behalf of the scenario's provider
// 3. Compare the outcome with the expectation
//
// A returned error means the scenario itself is broken (for example a tree
// that cannot be constructed). A normalization failure is part of the result.
func Run(scenario *Scenario, opts ...visit.Option) (*Result, error) {
	b, err := newBuilder(scenario.Providers)
	if err != nil {
		return nil, fmt.Errorf("failed to build providers: %w", err)
	}

	tree, err := b.build("tree", scenario.Tree)
	if err != nil {
		return nil, fmt.Errorf("failed to build tree: %w", err)
	}

	var want expr.Node
	if scenario.Expect.Tree != nil {
		want, err = b.build("expect.tree", scenario.Expect.Tree)
		if err != nil {
			return nil, fmt.Errorf("failed to build expected tree: %w", err)
		}
	}

	base := []visit.Option{
		visit.WithPassIDs(testutil.NewFixedPassID(scenario.PassID)),
		visit.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))), // Suppress logs in tests
	}
	if scenario.MaxDepth > 0 {
		base = append(base, visit.WithMaxDepth(scenario.MaxDepth))
	}
	eng, err := normalize.NewEngine(append(base, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}

	run, runErr := eng.Run(tree, normalize.Bind(nil, b.provider(scenario.Provider)))

	result := NewResult()
	for name, p := range b.providers {
		result.Executions[name] = len(p.Calls())
	}

	if runErr != nil {
		result.ErrorCode = string(visit.CodeOf(runErr))
		result.Error = runErr.Error()
		var re *visit.RuntimeError
		if errors.As(runErr, &re) {
			result.PassID = re.PassID
		}
	} else {
		result.PassID = run.PassID
		result.AddFirings(run.Firings)
		result.Tree = run.Root.Describe()
		result.Fingerprint, err = expr.Fingerprint(run.Root)
		if err != nil {
			return nil, fmt.Errorf("failed to fingerprint result: %w", err)
		}
	}

	checkExpectation(result, scenario.Expect, want, run, runErr)
	return result, nil
}

func checkExpectation(result *Result, expect Expectation, want expr.Node, run *visit.Result, runErr error) {
	switch {
	case expect.Error != "" && runErr == nil:
		result.AddError(fmt.Sprintf("expected error %s, normalization succeeded", expect.Error))
	case expect.Error != "" && result.ErrorCode != expect.Error:
		result.AddError(fmt.Sprintf("expected error %s, got %s: %s", expect.Error, result.ErrorCode, result.Error))
	case want != nil && runErr != nil:
		result.AddError(fmt.Sprintf("unexpected error: %s", result.Error))
	case want != nil && !want.Equal(run.Root):
		wantJSON, _ := expr.MarshalCanonical(want)
		gotJSON, _ := expr.MarshalCanonical(run.Root)
		result.AddError(fmt.Sprintf("tree mismatch:\n  want %s\n  got  %s", wantJSON, gotJSON))
	}

	for name, count := range expect.Executions {
		if got := result.Executions[name]; got != count {
			result.AddError(fmt.Sprintf("provider %s: expected %d executions, got %d", name, count, got))
		}
	}
}
