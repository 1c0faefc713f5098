package judge

import "strings"

// Verdict is the terminal classification of one test-case execution.
type Verdict string

const (
	VerdictAccepted          Verdict = "ACCEPTED"
	VerdictWrongAnswer       Verdict = "WRONG_ANSWER"
	VerdictCompilationError  Verdict = "COMPILATION_ERROR"
	VerdictRuntimeError      Verdict = "RUNTIME_ERROR"
	VerdictTimeLimitExceeded Verdict = "TIME_LIMIT_EXCEEDED"
	VerdictSetupError        Verdict = "SETUP_ERROR"
)

// FinalVerdict summarises a whole submission.
type FinalVerdict string

const (
	FinalAccepted FinalVerdict = "ACCEPTED"
	FinalPartial  FinalVerdict = "PARTIAL"
	FinalFailed   FinalVerdict = "FAILED"
)

// Classify maps a raw run result to a verdict, first match wins:
// timeout, then runtime fault, then output comparison. Compile failures are
// classified by the orchestrator before any run happens and never reach here.
//
// Comparison is exact string equality after stripping leading and trailing
// whitespace; internal whitespace is significant. Looser equivalence (e.g.
// floating-point tolerance) is deliberately not applied.
func Classify(result RawResult, expected string) (Verdict, string) {
	output := strings.TrimSpace(result.Stdout)
	want := strings.TrimSpace(expected)

	switch {
	case result.TimedOut:
		return VerdictTimeLimitExceeded, output
	case result.ExitCode != 0:
		return VerdictRuntimeError, output
	case output == "" && want != "":
		return VerdictRuntimeError, output
	case output == want:
		return VerdictAccepted, output
	default:
		return VerdictWrongAnswer, output
	}
}
