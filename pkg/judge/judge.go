package judge

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

const defaultWorkers = 4

// maxDiagnosticBytes caps the stderr excerpt carried on a test result.
const maxDiagnosticBytes = 4096

// TestResult is the immutable outcome of judging one test case.
type TestResult struct {
	Index      int
	Verdict    Verdict
	Output     string
	Expected   string
	Duration   time.Duration
	Hidden     bool
	Difficulty string
	// Error carries a diagnostic for failing verdicts: a stderr excerpt
	// for runtime faults, compiler output for compile failures, or a
	// generic message for infrastructure faults.
	Error string
}

// Passed reports whether the test case was answered correctly.
func (r TestResult) Passed() bool {
	return r.Verdict == VerdictAccepted
}

// TimingStats summarises wall time across the submission's non-timed-out runs.
type TimingStats struct {
	Min     time.Duration
	Avg     time.Duration
	Max     time.Duration
	Samples int
}

// Report is the complete, ordered outcome of judging one submission.
type Report struct {
	Results          []TestResult
	PassedCount      int
	TotalCount       int
	CorrectnessScore float64
	Timing           TimingStats
	FinalVerdict     FinalVerdict
}

// Judge drives the registry → harness → runner → classifier pipeline over
// all test cases of a submission. Each call is independent and stateless.
type Judge struct {
	runner  Runner
	workers int
	logger  zerolog.Logger
	tracer  trace.Tracer
}

// NewJudge constructs an orchestrator evaluating up to workers test cases of
// one submission concurrently.
func NewJudge(runner Runner, workers int, logger zerolog.Logger) *Judge {
	if workers <= 0 {
		workers = defaultWorkers
	}

	return &Judge{
		runner:  runner,
		workers: workers,
		logger:  logger.With().Str("component", "judge").Logger(),
		tracer:  otel.Tracer("github.com/noah-isme/judge-go-api/pkg/judge"),
	}
}

// sharedArtifact is the compile-once output reused read-only across the
// test-case runs of a compiled-language submission.
type sharedArtifact struct {
	dir     string
	unit    ExecutionUnit
	cleanup func()
}

// Judge evaluates every test case of the submission and returns the ordered
// report. All test cases are always evaluated; a fault in one never aborts
// the remaining ones. Results are ordered by test-case index regardless of
// completion order.
func (j *Judge) Judge(ctx context.Context, sub Submission) (Report, error) {
	if len(sub.TestCases) == 0 {
		return Report{}, fmt.Errorf("%w: no test cases", ErrInvalidSubmission)
	}

	profile, err := Resolve(sub.Language)
	if err != nil {
		return Report{}, err
	}

	ctx, span := j.tracer.Start(ctx, "judge.submission", trace.WithAttributes(
		attribute.String("judge.language", profile.ID),
		attribute.Int("judge.test_cases", len(sub.TestCases)),
	))
	defer span.End()

	results := make([]TestResult, len(sub.TestCases))

	var shared *sharedArtifact
	if profile.Compiled() {
		artifact, compileResult, err := j.compileOnce(ctx, sub, profile)
		if err != nil {
			j.logger.Error().Err(err).Str("language", profile.ID).Msg("compile setup failed")
			j.fillAll(results, sub.TestCases, VerdictSetupError, "internal error while preparing submission")
			return j.summarise(results), nil
		}
		if artifact == nil {
			diagnostic := compileDiagnostic(compileResult)
			j.fillAll(results, sub.TestCases, VerdictCompilationError, diagnostic)
			return j.summarise(results), nil
		}
		shared = artifact
		defer shared.cleanup()
	}

	g := new(errgroup.Group)
	g.SetLimit(j.workers)
	for i := range sub.TestCases {
		i := i
		g.Go(func() error {
			results[i] = j.runTest(ctx, sub, profile, i, shared)
			return nil
		})
	}
	_ = g.Wait()

	return j.summarise(results), nil
}

// compileOnce builds and compiles the submission's unit. It returns a nil
// artifact (with the raw compiler result) when compilation failed, and an
// error only for infrastructure faults.
func (j *Judge) compileOnce(ctx context.Context, sub Submission, profile Profile) (*sharedArtifact, RawResult, error) {
	unit, err := BuildUnit(sub.Code, profile)
	if err != nil {
		return nil, RawResult{}, err
	}

	dir, cleanup, err := j.runner.Materialize(unit)
	if err != nil {
		return nil, RawResult{}, err
	}

	result, err := j.runner.Compile(ctx, dir, unit, profile)
	if err != nil {
		cleanup()
		return nil, RawResult{}, err
	}

	if result.TimedOut || result.ExitCode != 0 {
		cleanup()
		return nil, result, nil
	}

	return &sharedArtifact{dir: dir, unit: unit, cleanup: cleanup}, result, nil
}

// runTest evaluates one test case. Any panic or infrastructure fault is
// converted into a SETUP_ERROR result at this boundary.
func (j *Judge) runTest(ctx context.Context, sub Submission, profile Profile, index int, shared *sharedArtifact) (result TestResult) {
	tc := sub.TestCases[index]

	defer func() {
		if rec := recover(); rec != nil {
			j.logger.Error().Interface("panic", rec).Int("test", index).Msg("test evaluation panicked")
			result = setupResult(index, tc)
		}
	}()

	timeLimit, memoryMB := sub.limitsFor(tc, profile)

	var dir string
	var unit ExecutionUnit
	if shared != nil {
		dir, unit = shared.dir, shared.unit
	} else {
		built, err := BuildUnit(sub.Code, profile)
		if err != nil {
			j.logger.Error().Err(err).Int("test", index).Msg("harness generation failed")
			return setupResult(index, tc)
		}

		materialised, cleanup, err := j.runner.Materialize(built)
		if err != nil {
			j.logger.Error().Err(err).Int("test", index).Msg("unit materialisation failed")
			return setupResult(index, tc)
		}
		defer cleanup()
		dir, unit = materialised, built
	}

	raw, err := j.runner.Execute(ctx, dir, unit, profile, tc.Input, Limits{TimeLimit: timeLimit, MemoryMB: memoryMB})
	if err != nil {
		j.logger.Error().Err(err).Int("test", index).Str("language", profile.ID).Msg("execution failed")
		return setupResult(index, tc)
	}

	verdict, output := Classify(raw, tc.ExpectedOutput)

	diagnostic := ""
	if verdict == VerdictRuntimeError || verdict == VerdictTimeLimitExceeded {
		diagnostic = truncate(strings.TrimSpace(raw.Stderr), maxDiagnosticBytes)
	}

	return TestResult{
		Index:      index,
		Verdict:    verdict,
		Output:     output,
		Expected:   strings.TrimSpace(tc.ExpectedOutput),
		Duration:   raw.WallTime,
		Hidden:     tc.Hidden,
		Difficulty: tc.Difficulty,
		Error:      diagnostic,
	}
}

func (j *Judge) fillAll(results []TestResult, testCases []TestCase, verdict Verdict, diagnostic string) {
	for i, tc := range testCases {
		results[i] = TestResult{
			Index:      i,
			Verdict:    verdict,
			Expected:   strings.TrimSpace(tc.ExpectedOutput),
			Hidden:     tc.Hidden,
			Difficulty: tc.Difficulty,
			Error:      diagnostic,
		}
	}
}

func (j *Judge) summarise(results []TestResult) Report {
	report := Report{
		Results:    results,
		TotalCount: len(results),
	}

	var timed []time.Duration
	for _, r := range results {
		if r.Passed() {
			report.PassedCount++
		}
		if r.Verdict != VerdictTimeLimitExceeded && r.Duration > 0 {
			timed = append(timed, r.Duration)
		}
	}

	report.CorrectnessScore = 100 * float64(report.PassedCount) / float64(report.TotalCount)
	report.Timing = timingStats(timed)

	switch {
	case report.PassedCount == report.TotalCount:
		report.FinalVerdict = FinalAccepted
	case report.PassedCount > 0:
		report.FinalVerdict = FinalPartial
	default:
		report.FinalVerdict = FinalFailed
	}

	return report
}

func timingStats(samples []time.Duration) TimingStats {
	if len(samples) == 0 {
		return TimingStats{}
	}

	stats := TimingStats{Min: samples[0], Max: samples[0], Samples: len(samples)}
	var total time.Duration
	for _, d := range samples {
		if d < stats.Min {
			stats.Min = d
		}
		if d > stats.Max {
			stats.Max = d
		}
		total += d
	}
	stats.Avg = total / time.Duration(len(samples))
	return stats
}

func setupResult(index int, tc TestCase) TestResult {
	// Infrastructure detail stays in the server logs; callers get a
	// generic failure since this is not a verdict on the candidate code.
	return TestResult{
		Index:      index,
		Verdict:    VerdictSetupError,
		Expected:   strings.TrimSpace(tc.ExpectedOutput),
		Hidden:     tc.Hidden,
		Difficulty: tc.Difficulty,
		Error:      "internal error while evaluating test case",
	}
}

func compileDiagnostic(result RawResult) string {
	if result.TimedOut {
		return "compilation timed out"
	}
	diagnostic := strings.TrimSpace(result.Stderr)
	if diagnostic == "" {
		diagnostic = strings.TrimSpace(result.Stdout)
	}
	return truncate(diagnostic, maxDiagnosticBytes)
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
