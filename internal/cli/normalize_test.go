package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scenariosDir = "../harness/testdata/scenarios"

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCommand()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestNormalize_Text(t *testing.T) {
	out, _, err := execute(t, "normalize", scenariosDir+"/inline_same_provider.yaml")
	require.NoError(t, err)

	assert.Contains(t, out, "Scenario:    inline_same_provider")
	assert.Contains(t, out, "Pass:        pass-inline")
	assert.Contains(t, out, `"source":{"kind":"source","name":"customers"}`)
	assert.Contains(t, out, "Firings:     6")
	assert.Contains(t, out, "selection-descent on selection (changed)")
	assert.Contains(t, out, "        repository-resolver on constant (changed)")
	assert.Contains(t, out, "comparison-descent on comparison\n")
}

func TestNormalize_JSON(t *testing.T) {
	out, _, err := execute(t, "--format", "json", "normalize", scenariosDir+"/materialize_foreign.yaml")
	require.NoError(t, err)

	var resp struct {
		Status string          `json:"status"`
		Data   NormalizeOutput `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "materialize_foreign", resp.Data.Scenario)
	assert.Equal(t, "pass-foreign", resp.Data.PassID)
	assert.Len(t, resp.Data.Fingerprint, 64)
	assert.Equal(t, 1, resp.Data.Executions["remote"])
	assert.NotEmpty(t, resp.Data.Firings)
	assert.Contains(t, string(resp.Data.Tree), `"name":"ada"`)
}

func TestNormalize_FailureExitsWithCode(t *testing.T) {
	out, _, err := execute(t, "normalize", scenariosDir+"/missing_provider.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error [MISSING_STATE]")

	out, _, err = execute(t, "--format", "json", "normalize", scenariosDir+"/missing_provider.yaml")
	require.Error(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "MISSING_STATE", resp.Error.Code)
	assert.Equal(t, map[string]any{"pass_id": "test-pass-default"}, resp.Error.Details)
}

func TestNormalize_MaxDepthFlag(t *testing.T) {
	_, _, err := execute(t, "--max-depth", "1", "normalize", scenariosDir+"/inline_same_provider.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestNormalize_VerboseLogsFirings(t *testing.T) {
	out, diag, err := execute(t, "-v", "--format", "json", "normalize", scenariosDir+"/inline_same_provider.yaml")
	require.NoError(t, err)

	assert.Contains(t, diag, "rule fired")
	assert.Contains(t, diag, "pass_id=pass-inline")
	assert.Contains(t, diag, "Loaded scenario inline_same_provider")

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestNormalize_CommandErrors(t *testing.T) {
	_, _, err := execute(t, "normalize", "does/not/exist.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "failed to load scenario")

	_, _, err = execute(t, "normalize")
	require.Error(t, err)
}
