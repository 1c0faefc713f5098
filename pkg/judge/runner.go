package judge

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	runDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "judge",
		Subsystem: "runner",
		Name:      "execution_duration_seconds",
		Help:      "Wall-clock duration of candidate executions",
		Buckets:   prometheus.DefBuckets,
	}, []string{"language"})

	runTimeouts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "judge",
		Subsystem: "runner",
		Name:      "execution_timeouts_total",
		Help:      "Number of executions killed at the wall-clock deadline",
	}, []string{"language"})

	compileFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "judge",
		Subsystem: "runner",
		Name:      "compile_failures_total",
		Help:      "Number of compile phases that exited non-zero or timed out",
	}, []string{"language"})
)

// compileTimeout bounds the compile phase. It is a fixed constant,
// independent of any test case's time limit.
const compileTimeout = 20 * time.Second

// killGracePeriod bounds how long Wait blocks after the process group has
// been signalled.
const killGracePeriod = 2 * time.Second

// RawResult is the unclassified outcome of one compile or run phase.
type RawResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
	WallTime time.Duration
	// TimedOut distinguishes "killed at the deadline" from "exited
	// normally with a non-zero status".
	TimedOut bool
}

// Limits carries the effective per-execution resource bounds.
type Limits struct {
	TimeLimit time.Duration
	MemoryMB  int
}

// Runner owns filesystem and process lifecycle for execution units.
// Candidate code always runs as a child process, never in-process.
type Runner interface {
	// Materialize writes the unit's source into a fresh, unpredictable
	// directory. The returned cleanup removes every artifact and must be
	// called on all exit paths.
	Materialize(unit ExecutionUnit) (dir string, cleanup func(), err error)
	// Compile runs the profile's compile command inside dir.
	Compile(ctx context.Context, dir string, unit ExecutionUnit, profile Profile) (RawResult, error)
	// Execute runs the unit feeding input on stdin under the wall-clock
	// deadline in limits. On expiry the whole process group is killed.
	Execute(ctx context.Context, dir string, unit ExecutionUnit, profile Profile, input string, limits Limits) (RawResult, error)
}

// ProcessRunner executes units as plain child processes with a wall-clock
// deadline and best-effort pre-spawn resource limits. It performs no
// container or namespace isolation.
type ProcessRunner struct {
	workRoot string
	logger   zerolog.Logger
	tracer   trace.Tracer
}

// NewProcessRunner constructs a runner that materialises units under
// workRoot (the system temp directory when empty).
func NewProcessRunner(workRoot string, logger zerolog.Logger) *ProcessRunner {
	if workRoot == "" {
		workRoot = os.TempDir()
	}

	return &ProcessRunner{
		workRoot: workRoot,
		logger:   logger.With().Str("component", "process_runner").Logger(),
		tracer:   otel.Tracer("github.com/noah-isme/judge-go-api/pkg/judge"),
	}
}

// Materialize writes the unit source into a fresh directory under the work
// root. The random suffix keeps concurrent evaluations from ever sharing a
// location.
func (r *ProcessRunner) Materialize(unit ExecutionUnit) (string, func(), error) {
	dir, err := os.MkdirTemp(r.workRoot, "unit-")
	if err != nil {
		return "", nil, fmt.Errorf("create unit dir: %w", err)
	}

	cleanup := func() {
		if err := os.RemoveAll(dir); err != nil {
			r.logger.Error().Err(err).Str("dir", dir).Msg("failed to remove unit dir")
		}
	}

	if err := os.WriteFile(filepath.Join(dir, unit.FileName), unit.Source, 0o600); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("write unit source: %w", err)
	}

	return dir, cleanup, nil
}

// Compile runs the profile's compile command with a fixed timeout. A non-zero
// exit or timeout is reported in the RawResult, not as an error; errors are
// reserved for infrastructure faults.
func (r *ProcessRunner) Compile(parent context.Context, dir string, unit ExecutionUnit, profile Profile) (RawResult, error) {
	ctx, span := r.tracer.Start(parent, "judge.runner.compile", trace.WithAttributes(
		attribute.String("judge.language", profile.ID),
	))
	defer span.End()

	argv := r.command(dir, unit, profile.CompileCmd)
	result, err := r.spawn(ctx, dir, argv, "", compileTimeout, 0)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return result, err
	}

	if result.TimedOut || result.ExitCode != 0 {
		compileFailures.WithLabelValues(profile.ID).Inc()
	}

	return result, nil
}

// Execute runs the unit's run command feeding input on stdin.
func (r *ProcessRunner) Execute(parent context.Context, dir string, unit ExecutionUnit, profile Profile, input string, limits Limits) (RawResult, error) {
	ctx, span := r.tracer.Start(parent, "judge.runner.execute", trace.WithAttributes(
		attribute.String("judge.language", profile.ID),
		attribute.Float64("judge.time_limit_seconds", limits.TimeLimit.Seconds()),
	))
	defer span.End()

	argv := r.command(dir, unit, profile.RunCmd)
	memoryMB := limits.MemoryMB
	if profile.RuntimeMemoryLimit() {
		// The VM enforces its own heap cap; an address-space ulimit would
		// abort the runtime before candidate code ever runs.
		argv = ExpandMemoryLimit(argv, memoryMB)
		memoryMB = 0
	}
	result, err := r.spawn(ctx, dir, argv, input, limits.TimeLimit, memoryMB)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return result, err
	}

	runDuration.WithLabelValues(profile.ID).Observe(result.WallTime.Seconds())
	if result.TimedOut {
		runTimeouts.WithLabelValues(profile.ID).Inc()
		span.SetStatus(codes.Error, "execution timed out")
	}

	return result, nil
}

func (r *ProcessRunner) command(dir string, unit ExecutionUnit, tpl []string) []string {
	srcPath := filepath.Join(dir, unit.FileName)
	binPath := filepath.Join(dir, "prog")
	return ExpandCommand(tpl, srcPath, binPath, dir, unit.MainClass)
}

// spawn starts argv in dir under a wall-clock deadline. The child gets its
// own process group so the deadline kill reaps grandchildren too.
func (r *ProcessRunner) spawn(ctx context.Context, dir string, argv []string, input string, timeout time.Duration, memoryMB int) (RawResult, error) {
	if len(argv) == 0 {
		return RawResult{}, errors.New("empty command")
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	argv = withMemoryLimit(argv, memoryMB)

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = dir
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if input != "" {
		cmd.Stdin = strings.NewReader(input)
	}
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		// Negative pid signals the whole process group.
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
	cmd.WaitDelay = killGracePeriod

	start := time.Now()
	runErr := cmd.Run()
	wall := time.Since(start)

	result := RawResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		WallTime: wall,
		TimedOut: errors.Is(ctx.Err(), context.DeadlineExceeded),
	}

	if runErr != nil {
		var exitErr *exec.ExitError
		switch {
		case result.TimedOut:
			result.ExitCode = -1
		case errors.As(runErr, &exitErr):
			result.ExitCode = exitErr.ExitCode()
		default:
			// Spawn failure (e.g. interpreter missing): an
			// infrastructure fault, not a verdict on the code.
			return result, fmt.Errorf("spawn %s: %w", argv[0], runErr)
		}
	}

	return result, nil
}

// withMemoryLimit applies a best-effort address-space cap before spawn by
// wrapping the command in a shell ulimit. Passing the original argv after
// `sh` keeps arguments out of shell interpolation.
func withMemoryLimit(argv []string, memoryMB int) []string {
	if memoryMB <= 0 {
		return argv
	}

	script := fmt.Sprintf("ulimit -v %d 2>/dev/null; exec \"$@\"", memoryMB*1024)
	wrapped := append([]string{"sh", "-c", script, "sh"}, argv...)
	return wrapped
}
