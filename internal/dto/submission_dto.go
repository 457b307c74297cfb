package dto

import (
	"time"

	"github.com/quizhub/quiz-go-api/internal/models"
)

// SubmissionCreateRequest is the payload for submitting an answer.
type SubmissionCreateRequest struct {
	ProblemID uint   `json:"problem_id" validate:"required"`
	Answer    string `json:"answer" validate:"required"`
}

// SubmissionForceVerdictRequest lets an administrator override a verdict.
type SubmissionForceVerdictRequest struct {
	Verdict string `json:"verdict" validate:"required"`
}

// SubmissionResponse is the API representation of a submission.
type SubmissionResponse struct {
	ID        uint      `json:"id"`
	UserID    uint      `json:"user_id"`
	ProblemID uint      `json:"problem_id"`
	Answer    string    `json:"answer"`
	Verdict   string    `json:"verdict"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewSubmissionResponse maps a submission model onto its API shape.
func NewSubmissionResponse(submission models.Submission) SubmissionResponse {
	return SubmissionResponse{
		ID:        submission.ID,
		UserID:    submission.UserID,
		ProblemID: submission.ProblemID,
		Answer:    submission.Answer,
		Verdict:   submission.Verdict,
		CreatedAt: submission.CreatedAt,
		UpdatedAt: submission.UpdatedAt,
	}
}

// NewSubmissionResponses maps a slice of submissions.
func NewSubmissionResponses(submissions []models.Submission) []SubmissionResponse {
	responses := make([]SubmissionResponse, 0, len(submissions))
	for _, submission := range submissions {
		responses = append(responses, NewSubmissionResponse(submission))
	}
	return responses
}

// SubmissionPageResponse is a paginated submission listing.
type SubmissionPageResponse struct {
	Items    []SubmissionResponse `json:"items"`
	Total    int64                `json:"total"`
	Page     int                  `json:"page"`
	PageSize int                  `json:"page_size"`
}
