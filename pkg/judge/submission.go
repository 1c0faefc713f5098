package judge

import (
	"errors"
	"time"
)

// ErrInvalidSubmission indicates the submission cannot be judged at all,
// e.g. it carries no test cases.
var ErrInvalidSubmission = errors.New("invalid submission")

// Difficulty labels a test case for reporting purposes.
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// TestCase is one input/expected-output pair a submission is judged against.
type TestCase struct {
	Input          string
	ExpectedOutput string
	// TimeLimit of zero falls back to the language default.
	TimeLimit  time.Duration
	MemoryMB   int
	Hidden     bool
	Difficulty string
}

// Constraints optionally override test-case limits for the whole submission.
type Constraints struct {
	TimeLimit time.Duration
	MemoryMB  int
}

// Submission is one piece of candidate code plus the test cases to judge it
// against. Submissions share no state with each other.
type Submission struct {
	Code        string
	Language    string
	ProblemID   string
	TestCases   []TestCase
	Constraints *Constraints
}

// limitsFor resolves the effective time and memory limits for one test case:
// submission constraints win, then the test case, then the language default.
func (s Submission) limitsFor(tc TestCase, profile Profile) (time.Duration, int) {
	timeLimit := tc.TimeLimit
	memoryMB := tc.MemoryMB

	if s.Constraints != nil {
		if s.Constraints.TimeLimit > 0 {
			timeLimit = s.Constraints.TimeLimit
		}
		if s.Constraints.MemoryMB > 0 {
			memoryMB = s.Constraints.MemoryMB
		}
	}

	if timeLimit <= 0 {
		timeLimit = profile.DefaultTimeLimit
	}
	if memoryMB <= 0 {
		memoryMB = profile.DefaultMemoryMB
	}

	return timeLimit, memoryMB
}
