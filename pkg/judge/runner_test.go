package judge

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// shellProfile runs the materialised unit as a shell script, which keeps
// these tests independent of any language toolchain.
var shellProfile = Profile{
	ID:     "shell",
	RunCmd: []string{"sh", "{src}"},
}

func shellUnit(script string) ExecutionUnit {
	return ExecutionUnit{Language: "shell", FileName: "run.sh", Source: []byte(script)}
}

func newTestRunner(t *testing.T) *ProcessRunner {
	t.Helper()
	return NewProcessRunner(t.TempDir(), zerolog.Nop())
}

func TestMaterializeWritesAndCleansUp(t *testing.T) {
	runner := newTestRunner(t)

	unit := shellUnit("echo hi\n")
	dir, cleanup, err := runner.Materialize(unit)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "run.sh"))
	require.NoError(t, err)
	require.Equal(t, "echo hi\n", string(data))

	cleanup()
	_, err = os.Stat(dir)
	require.True(t, os.IsNotExist(err))
}

func TestMaterializeIsolatesUnits(t *testing.T) {
	runner := newTestRunner(t)

	dirA, cleanupA, err := runner.Materialize(shellUnit("a"))
	require.NoError(t, err)
	defer cleanupA()

	dirB, cleanupB, err := runner.Materialize(shellUnit("b"))
	require.NoError(t, err)
	defer cleanupB()

	require.NotEqual(t, dirA, dirB)
}

func TestExecuteCapturesOutput(t *testing.T) {
	runner := newTestRunner(t)

	dir, cleanup, err := runner.Materialize(shellUnit("echo out; echo err >&2\n"))
	require.NoError(t, err)
	defer cleanup()

	result, err := runner.Execute(context.Background(), dir, shellUnit(""), shellProfile, "", Limits{TimeLimit: 5 * time.Second})
	require.NoError(t, err)

	require.Equal(t, 0, result.ExitCode)
	require.Equal(t, "out\n", result.Stdout)
	require.Equal(t, "err\n", result.Stderr)
	require.False(t, result.TimedOut)
	require.Greater(t, result.WallTime, time.Duration(0))
}

func TestExecuteFeedsStdin(t *testing.T) {
	runner := newTestRunner(t)

	dir, cleanup, err := runner.Materialize(shellUnit("cat\n"))
	require.NoError(t, err)
	defer cleanup()

	result, err := runner.Execute(context.Background(), dir, shellUnit(""), shellProfile, "3 4\n", Limits{TimeLimit: 5 * time.Second})
	require.NoError(t, err)
	require.Equal(t, "3 4\n", result.Stdout)
}

func TestExecuteReportsExitCode(t *testing.T) {
	runner := newTestRunner(t)

	dir, cleanup, err := runner.Materialize(shellUnit("exit 3\n"))
	require.NoError(t, err)
	defer cleanup()

	result, err := runner.Execute(context.Background(), dir, shellUnit(""), shellProfile, "", Limits{TimeLimit: 5 * time.Second})
	require.NoError(t, err)
	require.Equal(t, 3, result.ExitCode)
	require.False(t, result.TimedOut)
}

func TestExecuteKillsAtDeadline(t *testing.T) {
	runner := newTestRunner(t)

	dir, cleanup, err := runner.Materialize(shellUnit("sleep 30\n"))
	require.NoError(t, err)
	defer cleanup()

	start := time.Now()
	result, err := runner.Execute(context.Background(), dir, shellUnit(""), shellProfile, "", Limits{TimeLimit: 200 * time.Millisecond})
	require.NoError(t, err)

	require.True(t, result.TimedOut)
	require.Equal(t, -1, result.ExitCode)
	require.Less(t, time.Since(start), 10*time.Second)
}

func TestExecuteSpawnFailureIsError(t *testing.T) {
	runner := newTestRunner(t)

	dir, cleanup, err := runner.Materialize(shellUnit(""))
	require.NoError(t, err)
	defer cleanup()

	profile := Profile{ID: "missing", RunCmd: []string{"judge-no-such-binary"}}
	_, err = runner.Execute(context.Background(), dir, shellUnit(""), profile, "", Limits{})
	require.Error(t, err)
}

func TestExecuteRuntimeMemoryFlagSkipsAddressSpaceCap(t *testing.T) {
	runner := newTestRunner(t)

	dir, cleanup, err := runner.Materialize(shellUnit("echo \"$1\"\n"))
	require.NoError(t, err)
	defer cleanup()

	// A 1 MB address-space cap kills any process at exec. Profiles that
	// carry the cap as a runtime flag must not be wrapped in the ulimit.
	profile := Profile{ID: "vm", RunCmd: []string{"sh", "{src}", "--heap={mem}"}}
	result, err := runner.Execute(context.Background(), dir, shellUnit(""), profile, "", Limits{TimeLimit: 5 * time.Second, MemoryMB: 1})
	require.NoError(t, err)
	require.Equal(t, 0, result.ExitCode)
	require.Equal(t, "--heap=1\n", result.Stdout)
}

func TestWithMemoryLimit(t *testing.T) {
	argv := []string{"python3", "/tmp/u/main.py"}

	require.Equal(t, argv, withMemoryLimit(argv, 0))

	wrapped := withMemoryLimit(argv, 256)
	require.Equal(t, "sh", wrapped[0])
	require.Equal(t, "-c", wrapped[1])
	require.Contains(t, wrapped[2], "ulimit -v 262144")
	require.Equal(t, []string{"sh", "python3", "/tmp/u/main.py"}, wrapped[3:])
}
