package eval_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/artuross/formula-engine/internal/commands/eval"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	cli "github.com/urfave/cli/v2"
)

func runEval(t *testing.T, source string, args ...string) (map[string]any, error) {
	t.Helper()

	dir := t.TempDir()

	formulaFile := filepath.Join(dir, "door.formula")
	require.NoError(t, os.WriteFile(formulaFile, []byte(source), 0o644))

	configFile := filepath.Join(dir, "formula.toml")
	require.NoError(t, os.WriteFile(configFile, []byte("[cache]\nenabled = false\n\n[log]\nlevel = \"error\"\n"), 0o644))

	var buf bytes.Buffer

	app := &cli.App{
		Name:     "formula",
		Writer:   &buf,
		Commands: []*cli.Command{eval.NewCommand()},
	}

	argv := append([]string{"formula", "eval", "--file", formulaFile, "--config", configFile}, args...)
	err := app.Run(argv)

	var out map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out), buf.String())

	return out, err
}

func TestEval(t *testing.T) {
	out, err := runEval(t,
		"return calculate_sqm(get_option('width'), get_option('height'));",
		"--input", "width=500", "--input", "height=300", "--id", "door",
	)
	require.NoError(t, err)

	assert.Equal(t, true, out["success"])
	assert.Equal(t, 0.15, out["value"])
	assert.Equal(t, false, out["cached"])
	assert.NotEmpty(t, out["execution_id"])
	assert.NotContains(t, out, "error")
}

func TestEvalFailure(t *testing.T) {
	out, err := runEval(t, "return 5 / 0;")
	assert.ErrorIs(t, err, eval.ErrEvaluationFailed)

	assert.Equal(t, false, out["success"])
	assert.NotContains(t, out, "value")
	require.IsType(t, map[string]any{}, out["error"])

	info := out["error"].(map[string]any)
	assert.Equal(t, "DivisionByZeroError", info["kind"])
	assert.Equal(t, "division by zero on line 1", info["message"])
	assert.Equal(t, float64(1), info["line"])
}
