package dto

import (
	"time"

	"github.com/quizhub/quiz-go-api/internal/models"
)

// ProblemCreateRequest is the payload for creating a problem.
type ProblemCreateRequest struct {
	Title       string   `json:"title" validate:"required"`
	Type        string   `json:"type" validate:"required,oneof=choice fill coding"`
	Description string   `json:"description"`
	Options     []string `json:"options"`
	Answer      string   `json:"answer"`
	// JudgeProblemID must reference an existing problem on the external
	// judge when Type is coding.
	JudgeProblemID string `json:"judge_problem_id"`
	Solution       string `json:"solution"`
}

// ProblemResponse is the API representation of a problem. The stored
// answer and solution are withheld unless the caller earned them.
type ProblemResponse struct {
	ID             uint      `json:"id"`
	Title          string    `json:"title"`
	Type           string    `json:"type"`
	Description    string    `json:"description"`
	Options        []string  `json:"options,omitempty"`
	Answer         string    `json:"answer,omitempty"`
	JudgeProblemID string    `json:"judge_problem_id,omitempty"`
	Solution       string    `json:"solution,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// NewProblemResponse maps a problem onto its API shape. The answer and
// solution fields are only populated when includeAnswer is set.
func NewProblemResponse(problem models.Problem, includeAnswer bool) ProblemResponse {
	response := ProblemResponse{
		ID:          problem.ID,
		Title:       problem.Title,
		Type:        problem.Type,
		Description: problem.Description,
		Options:     problem.Options,
		CreatedAt:   problem.CreatedAt,
	}
	if includeAnswer {
		response.Answer = problem.Answer
		response.Solution = problem.Solution
		response.JudgeProblemID = problem.JudgeProblemID
	}
	return response
}

// ProblemPageResponse is a paginated problem listing.
type ProblemPageResponse struct {
	Items    []ProblemResponse `json:"items"`
	Total    int64             `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
}
