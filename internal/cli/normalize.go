package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/qnorm/internal/harness"
	"github.com/roach88/qnorm/internal/ir"
	"github.com/roach88/qnorm/internal/visit"
)

// NormalizeOutput is the success payload of the normalize command.
type NormalizeOutput struct {
	Scenario    string                `json:"scenario"`
	PassID      string                `json:"pass_id"`
	Tree        json.RawMessage       `json:"tree"`
	Fingerprint string                `json:"fingerprint"`
	Firings     []harness.TraceFiring `json:"firings"`
	Executions  map[string]int        `json:"executions"`
}

// NewNormalizeCommand creates the normalize command.
func NewNormalizeCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "normalize <scenario>",
		Short: "Normalize a scenario's tree",
		Long: `Normalize the tree of a single scenario and print the result.

The tree is normalized on behalf of the scenario's provider. Expectations
are not checked; use "qnorm check" for that.

Exit codes:
  0 - Normalization succeeded
  1 - Normalization failed (the error code is printed)
  2 - Command error (unreadable or malformed scenario)

Examples:
  qnorm normalize ./testdata/scenarios/inline_same_provider.yaml
  qnorm normalize ./scenario.cue --format json
  qnorm normalize ./scenario.yaml -v --max-depth 16`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNormalize(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runNormalize(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	scenario, err := harness.LoadScenario(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load scenario", err)
	}
	formatter.VerboseLog("Loaded scenario %s from %s", scenario.Name, path)

	result, err := harness.Run(scenario, engineOptions(opts, formatter)...)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to run scenario", err)
	}

	if result.ErrorCode != "" {
		details := map[string]string{"pass_id": result.PassID}
		if err := formatter.Error(result.ErrorCode, result.Error, details); err != nil {
			return err
		}
		return NewExitError(ExitFailure, "normalization failed")
	}

	tree, err := ir.MarshalCanonical(result.Tree)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to marshal tree", err)
	}

	out := NormalizeOutput{
		Scenario:    scenario.Name,
		PassID:      result.PassID,
		Tree:        tree,
		Fingerprint: result.Fingerprint,
		Firings:     result.Firings,
		Executions:  result.Executions,
	}
	if opts.Format == "json" {
		return formatter.Success(out)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Scenario:    %s\n", out.Scenario)
	fmt.Fprintf(w, "Pass:        %s\n", out.PassID)
	fmt.Fprintf(w, "Tree:        %s\n", out.Tree)
	fmt.Fprintf(w, "Fingerprint: %s\n", out.Fingerprint)
	fmt.Fprintf(w, "Firings:     %d\n", len(out.Firings))
	for _, f := range out.Firings {
		mark := ""
		if f.Changed {
			mark = " (changed)"
		}
		fmt.Fprintf(w, "  %*s%s on %s%s\n", f.Depth*2, "", f.Rule, f.Kind, mark)
	}
	return nil
}

func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}

// engineOptions applies the global flags to a scenario's engine.
func engineOptions(opts *RootOptions, formatter *OutputFormatter) []visit.Option {
	engineOpts := []visit.Option{visit.WithLogger(formatter.Logger())}
	if opts.MaxDepth > 0 {
		engineOpts = append(engineOpts, visit.WithMaxDepth(opts.MaxDepth))
	}
	return engineOpts
}
