package ai

import "context"

// FeedbackInput carries the summary statistics of a judged submission. Raw
// candidate code is never sent to the model, only aggregate results.
type FeedbackInput struct {
	ProblemStatement string
	Language         string

	CorrectnessScore float64
	PassedTests      int
	TotalTests       int

	TimeComplexity  string
	ComplexityScore int

	StyleCompliance string
	StyleScore      int

	SecurityRiskLevel string
	SecurityScore     int
}

// Feedback is the model-generated improvement advice for a submission.
type Feedback struct {
	Text string                 `json:"text"`
	Raw  map[string]interface{} `json:"raw,omitempty"`
}

// Generator describes a model capable of turning judging results into
// actionable feedback prose.
type Generator interface {
	Generate(ctx context.Context, input FeedbackInput) (Feedback, error)
}
