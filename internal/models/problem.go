package models

import "time"

// ProblemType enumerates the supported kinds of problems.
const (
	ProblemTypeChoice = "choice"
	ProblemTypeFill   = "fill"
	ProblemTypeCoding = "coding"
)

// Problem represents a single quiz problem authored by an administrator.
type Problem struct {
	ID          uint     `gorm:"primaryKey" json:"id"`
	Title       string   `gorm:"size:255;not null" json:"title"`
	Type        string   `gorm:"size:32;not null;index" json:"type"`
	Description string   `gorm:"type:text" json:"description"`
	Options     []string `gorm:"serializer:json" json:"options,omitempty"`
	Answer      string   `gorm:"type:text" json:"answer,omitempty"`
	// JudgeProblemID is the identifier of this problem on the external
	// judge. Required for coding problems before they accept submissions.
	JudgeProblemID string    `gorm:"size:64" json:"judge_problem_id,omitempty"`
	Solution       string    `gorm:"type:text" json:"solution,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// IsCoding reports whether the problem is judged by the external judge.
func (p Problem) IsCoding() bool {
	return p.Type == ProblemTypeCoding
}

// IsChoice reports whether the problem is a multiple-choice question.
func (p Problem) IsChoice() bool {
	return p.Type == ProblemTypeChoice
}

// Judgeable reports whether submissions against this problem can be
// evaluated at all. Coding problems need a judge problem identifier.
func (p Problem) Judgeable() bool {
	if p.IsCoding() {
		return p.JudgeProblemID != ""
	}
	return true
}
