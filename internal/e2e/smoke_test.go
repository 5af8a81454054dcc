package e2e

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSmokeFlow(t *testing.T) {
	home := t.TempDir()
	binaryPath := buildBinary(t)

	stdout, stderr, err := runPulse(t, binaryPath, home, "-q", "Calculate the sum of 10, 20, and 30")
	require.NoError(t, err, "stderr: %s", stderr)
	assert.Contains(t, stdout, "**calculate**")
	assert.Contains(t, stdout, "60")

	stdout, stderr, err = runPulse(t, binaryPath, home, "--list-tools")
	require.NoError(t, err, "stderr: %s", stderr)
	assert.Contains(t, stdout, "get_snowflake_cost_report")
}

func TestSmokeStdioServer(t *testing.T) {
	home := t.TempDir()
	binaryPath := buildBinary(t)

	stdout, stderr, err := runPulse(t, binaryPath, home,
		"--server-cmd", binaryPath+" serve --transport stdio",
		"-q", "What is the average of 2, 4 and 6?",
	)
	require.NoError(t, err, "stderr: %s", stderr)
	assert.Contains(t, stdout, "**calculate**")
	assert.Contains(t, stdout, "4")
}

func buildBinary(t *testing.T) string {
	t.Helper()

	binaryPath := filepath.Join(t.TempDir(), "pulse-e2e")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/pulse")
	cmd.Dir = repoRoot(t)

	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "build pulse binary: %s", string(output))
	return binaryPath
}

func runPulse(t *testing.T, binaryPath, home string, args ...string) (string, string, error) {
	t.Helper()

	cmd := exec.Command(binaryPath, args...)
	cmd.Env = append(os.Environ(),
		"HOME="+home,
		"XDG_CONFIG_HOME="+filepath.Join(home, ".config"),
		"OPENWEATHER_API_KEY=",
		"OPENAI_API_KEY=",
	)
	cmd.Stdin = bytes.NewReader(nil)

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

func repoRoot(t *testing.T) string {
	t.Helper()

	wd, err := os.Getwd()
	require.NoError(t, err)
	return filepath.Clean(filepath.Join(wd, "..", ".."))
}
