package dto

import (
	"time"

	"github.com/noah-isme/judge-go-api/internal/models"
)

// SubmissionQuery describes query string filters for listing submissions.
type SubmissionQuery struct {
	Language *string `query:"language"`
	Status   *string `query:"status" validate:"omitempty,oneof=pending completed failed"`
	Verdict  *string `query:"verdict" validate:"omitempty,oneof=ACCEPTED PARTIAL FAILED"`
	Limit    int     `query:"limit" validate:"omitempty,gt=0,lte=100"`
	Offset   int     `query:"offset" validate:"omitempty,gte=0"`
}

// SubmissionResponse is returned to API clients when viewing stored
// submissions.
type SubmissionResponse struct {
	ID               uint                   `json:"id"`
	ProblemStatement string                 `json:"problem_statement"`
	Language         string                 `json:"language"`
	Source           string                 `json:"source,omitempty"`
	Status           string                 `json:"status"`
	FinalVerdict     string                 `json:"final_verdict"`
	OverallScore     int                    `json:"overall_score"`
	Grade            string                 `json:"grade"`
	Passed           bool                   `json:"passed"`
	CorrectnessScore float64                `json:"correctness_score"`
	PassedTests      int                    `json:"passed_tests"`
	TotalTests       int                    `json:"total_tests"`
	Report           map[string]interface{} `json:"report,omitempty"`
	CreatedAt        time.Time              `json:"created_at"`
}

// NewSubmissionResponse converts a Submission model into a DTO. The full
// report is only attached when includeReport is set; list endpoints skip it.
func NewSubmissionResponse(model models.Submission, includeReport bool) SubmissionResponse {
	response := SubmissionResponse{
		ID:               model.ID,
		ProblemStatement: model.ProblemStatement,
		Language:         model.Language,
		Status:           model.Status,
		FinalVerdict:     model.FinalVerdict,
		OverallScore:     model.OverallScore,
		Grade:            model.Grade,
		Passed:           model.Passed,
		CorrectnessScore: model.CorrectnessScore,
		PassedTests:      model.PassedTests,
		TotalTests:       model.TotalTests,
		CreatedAt:        model.CreatedAt,
	}

	if includeReport {
		response.Source = model.Source
		if model.Report != nil {
			response.Report = map[string]interface{}(model.Report)
		}
	}

	return response
}

// SubmissionListResponse wraps a page of submissions.
type SubmissionListResponse struct {
	Items []SubmissionResponse `json:"items"`
	Total int64                `json:"total"`
}

// NewSubmissionListResponse converts submission models into a list DTO.
func NewSubmissionListResponse(submissions []models.Submission, total int64) SubmissionListResponse {
	items := make([]SubmissionResponse, 0, len(submissions))
	for _, submission := range submissions {
		items = append(items, NewSubmissionResponse(submission, false))
	}

	return SubmissionListResponse{Items: items, Total: total}
}
