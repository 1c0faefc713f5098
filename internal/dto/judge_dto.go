package dto

import (
	"time"

	"github.com/noah-isme/judge-go-api/internal/analysis"
	"github.com/noah-isme/judge-go-api/pkg/judge"
)

// TestCaseRequest describes one input/expected-output pair in a judge request.
type TestCaseRequest struct {
	Input          string `json:"input"`
	ExpectedOutput string `json:"expected_output"`
	TimeLimitMs    int    `json:"time_limit_ms" validate:"omitempty,gt=0"`
	MemoryMB       int    `json:"memory_mb" validate:"omitempty,gt=0"`
	Hidden         bool   `json:"hidden"`
	Difficulty     string `json:"difficulty" validate:"omitempty,oneof=easy medium hard"`
}

// ConstraintsRequest optionally overrides resource limits for every test case.
type ConstraintsRequest struct {
	TimeLimitMs int `json:"time_limit_ms" validate:"omitempty,gt=0"`
	MemoryMB    int `json:"memory_mb" validate:"omitempty,gt=0"`
}

// JudgeRequest is the payload for judging a piece of candidate code.
type JudgeRequest struct {
	ProblemStatement string              `json:"problem_statement"`
	Language         string              `json:"language" validate:"required"`
	Code             string              `json:"code" validate:"required,min=1"`
	TestCases        []TestCaseRequest   `json:"test_cases" validate:"required,min=1,dive"`
	Constraints      *ConstraintsRequest `json:"constraints"`
}

// ToSubmission converts the request into the engine's submission form.
func (r JudgeRequest) ToSubmission() judge.Submission {
	testCases := make([]judge.TestCase, 0, len(r.TestCases))
	for _, tc := range r.TestCases {
		testCases = append(testCases, judge.TestCase{
			Input:          tc.Input,
			ExpectedOutput: tc.ExpectedOutput,
			TimeLimit:      time.Duration(tc.TimeLimitMs) * time.Millisecond,
			MemoryMB:       tc.MemoryMB,
			Hidden:         tc.Hidden,
			Difficulty:     tc.Difficulty,
		})
	}

	sub := judge.Submission{
		Code:      r.Code,
		Language:  r.Language,
		TestCases: testCases,
	}

	if r.Constraints != nil {
		sub.Constraints = &judge.Constraints{
			TimeLimit: time.Duration(r.Constraints.TimeLimitMs) * time.Millisecond,
			MemoryMB:  r.Constraints.MemoryMB,
		}
	}

	return sub
}

// TestResultResponse is one test-case outcome as exposed to API consumers.
// Hidden test cases keep their verdict but have input-derived fields redacted.
type TestResultResponse struct {
	Index      int    `json:"index"`
	Verdict    string `json:"verdict"`
	Output     string `json:"output,omitempty"`
	Expected   string `json:"expected,omitempty"`
	DurationMs int64  `json:"duration_ms"`
	Hidden     bool   `json:"hidden"`
	Difficulty string `json:"difficulty,omitempty"`
	Error      string `json:"error,omitempty"`
}

// NewTestResultResponse converts an engine test result, redacting hidden ones.
func NewTestResultResponse(result judge.TestResult) TestResultResponse {
	response := TestResultResponse{
		Index:      result.Index,
		Verdict:    string(result.Verdict),
		DurationMs: result.Duration.Milliseconds(),
		Hidden:     result.Hidden,
		Difficulty: result.Difficulty,
	}

	if !result.Hidden {
		response.Output = result.Output
		response.Expected = result.Expected
		response.Error = result.Error
	}

	return response
}

// TimingResponse summarises execution wall times in milliseconds.
type TimingResponse struct {
	MinMs   float64 `json:"min_ms"`
	AvgMs   float64 `json:"avg_ms"`
	MaxMs   float64 `json:"max_ms"`
	Samples int     `json:"samples"`
}

// NewTimingResponse converts engine timing stats.
func NewTimingResponse(stats judge.TimingStats) TimingResponse {
	return TimingResponse{
		MinMs:   float64(stats.Min) / float64(time.Millisecond),
		AvgMs:   float64(stats.Avg) / float64(time.Millisecond),
		MaxMs:   float64(stats.Max) / float64(time.Millisecond),
		Samples: stats.Samples,
	}
}

// ExecutionResultsResponse groups the correctness outcome of a judge run.
type ExecutionResultsResponse struct {
	CorrectnessScore float64              `json:"correctness_score"`
	PassedTests      int                  `json:"passed_tests"`
	TotalTests       int                  `json:"total_tests"`
	FinalVerdict     string               `json:"final_verdict"`
	Timing           TimingResponse       `json:"timing"`
	TestDetails      []TestResultResponse `json:"test_details"`
}

// NewExecutionResultsResponse converts an engine report.
func NewExecutionResultsResponse(report judge.Report) ExecutionResultsResponse {
	details := make([]TestResultResponse, 0, len(report.Results))
	for _, result := range report.Results {
		details = append(details, NewTestResultResponse(result))
	}

	return ExecutionResultsResponse{
		CorrectnessScore: report.CorrectnessScore,
		PassedTests:      report.PassedCount,
		TotalTests:       report.TotalCount,
		FinalVerdict:     string(report.FinalVerdict),
		Timing:           NewTimingResponse(report.Timing),
		TestDetails:      details,
	}
}

// ComplexityResponse exposes the complexity analysis.
type ComplexityResponse struct {
	TimeComplexity string `json:"time_complexity"`
	Score          int    `json:"score"`
	LoopDepth      int    `json:"loop_depth"`
	HasRecursion   bool   `json:"has_recursion"`
	Summary        string `json:"summary"`
}

// StyleResponse exposes the style analysis.
type StyleResponse struct {
	Score         int      `json:"score"`
	Compliance    string   `json:"compliance"`
	Issues        []string `json:"issues"`
	GoodPractices []string `json:"good_practices"`
	LineCount     int      `json:"line_count"`
	CommentRatio  float64  `json:"comment_ratio"`
}

// SecurityResponse exposes the security analysis.
type SecurityResponse struct {
	Score     int      `json:"score"`
	RiskLevel string   `json:"risk_level"`
	Issues    []string `json:"issues"`
}

// NewComplexityResponse converts an analysis report.
func NewComplexityResponse(report analysis.ComplexityReport) ComplexityResponse {
	return ComplexityResponse{
		TimeComplexity: report.TimeComplexity,
		Score:          report.Score,
		LoopDepth:      report.LoopDepth,
		HasRecursion:   report.HasRecursion,
		Summary:        report.Summary,
	}
}

// NewStyleResponse converts an analysis report.
func NewStyleResponse(report analysis.StyleReport) StyleResponse {
	return StyleResponse{
		Score:         report.Score,
		Compliance:    report.Compliance,
		Issues:        report.Issues,
		GoodPractices: report.GoodPractices,
		LineCount:     report.LineCount,
		CommentRatio:  report.CommentRatio,
	}
}

// NewSecurityResponse converts an analysis report.
func NewSecurityResponse(report analysis.SecurityReport) SecurityResponse {
	return SecurityResponse{
		Score:     report.Score,
		RiskLevel: report.RiskLevel,
		Issues:    report.Issues,
	}
}

// JudgeSummaryResponse lists high-level strengths and weak spots.
type JudgeSummaryResponse struct {
	Strengths           []string `json:"strengths"`
	AreasForImprovement []string `json:"areas_for_improvement"`
}

// JudgeResponse is the full judging report returned by the judge endpoint.
type JudgeResponse struct {
	SubmissionID    uint                     `json:"submission_id,omitempty"`
	OverallScore    int                      `json:"overall_score"`
	Grade           string                   `json:"grade"`
	PassStatus      string                   `json:"pass_status"`
	Execution       ExecutionResultsResponse `json:"execution_results"`
	Complexity      ComplexityResponse       `json:"complexity_analysis"`
	Style           StyleResponse            `json:"style_analysis"`
	Security        SecurityResponse         `json:"security_analysis"`
	AIFeedback      string                   `json:"ai_feedback"`
	Recommendations []string                 `json:"recommendations"`
	Summary         JudgeSummaryResponse     `json:"summary"`
	Cached          bool                     `json:"cached,omitempty"`
}

// LanguageResponse describes one supported language.
type LanguageResponse struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	Extension          string `json:"extension"`
	Compiled           bool   `json:"compiled"`
	DefaultTimeLimitMs int64  `json:"default_time_limit_ms"`
	DefaultMemoryMB    int    `json:"default_memory_mb"`
}

// NewLanguageResponse converts a language profile.
func NewLanguageResponse(profile judge.Profile) LanguageResponse {
	return LanguageResponse{
		ID:                 profile.ID,
		Name:               profile.Name,
		Extension:          profile.Extension,
		Compiled:           profile.Compiled(),
		DefaultTimeLimitMs: profile.DefaultTimeLimit.Milliseconds(),
		DefaultMemoryMB:    profile.DefaultMemoryMB,
	}
}
