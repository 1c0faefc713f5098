package models

import (
	"time"

	"gorm.io/datatypes"
)

// SubmissionStatus enumerates possible submission states.
const (
	SubmissionStatusPending   = "pending"
	SubmissionStatusCompleted = "completed"
	SubmissionStatusFailed    = "failed"
)

// Submission represents one judged piece of candidate code together with its
// full judging report.
type Submission struct {
	ID               uint    `gorm:"primaryKey" json:"id"`
	ProblemStatement string  `gorm:"type:text" json:"problem_statement"`
	Language         string  `gorm:"size:32;not null" json:"language"`
	Source           string  `gorm:"type:text" json:"source"`
	Status           string  `gorm:"size:32;not null" json:"status"`
	FinalVerdict     string  `gorm:"size:32" json:"final_verdict"`
	OverallScore     int     `gorm:"default:0" json:"overall_score"`
	Grade            string  `gorm:"size:4" json:"grade"`
	Passed           bool    `gorm:"default:false" json:"passed"`
	CorrectnessScore float64 `gorm:"default:0" json:"correctness_score"`
	PassedTests      int     `gorm:"default:0" json:"passed_tests"`
	TotalTests       int     `gorm:"default:0" json:"total_tests"`
	// Digest identifies the (language, source, test set) triple for report
	// caching.
	Digest    string            `gorm:"size:64;index" json:"digest"`
	Report    datatypes.JSONMap `json:"report"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// IsCompleted reports whether judging finished and produced a report.
func (s Submission) IsCompleted() bool {
	return s.Status == SubmissionStatusCompleted
}
