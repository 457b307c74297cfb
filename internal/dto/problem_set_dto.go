package dto

import (
	"time"

	"github.com/quizhub/quiz-go-api/internal/models"
)

// ProblemSetCreateRequest is the payload for creating a problem set.
type ProblemSetCreateRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	ProblemIDs  []uint `json:"problem_ids"`
}

// ProblemSetUpdateRequest is the payload for updating a problem set.
type ProblemSetUpdateRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	ProblemIDs  *[]uint `json:"problem_ids"`
}

// ProblemSetProblemStatus describes one member problem from the viewpoint
// of the requesting user. Answer and solution appear only once the whole
// set is completed.
type ProblemSetProblemStatus struct {
	ProblemID  uint   `json:"problem_id"`
	Title      string `json:"title,omitempty"`
	Verdict    string `json:"verdict,omitempty"`
	UserAnswer string `json:"user_answer,omitempty"`
	Answer     string `json:"answer,omitempty"`
	Solution   string `json:"solution,omitempty"`
}

// ProblemSetStatusResponse is a problem set enriched with the requesting
// user's progress.
type ProblemSetStatusResponse struct {
	ID              uint                      `json:"id"`
	Title           string                    `json:"title"`
	Description     string                    `json:"description"`
	ProblemIDs      []uint                    `json:"problem_ids"`
	CreatedAt       time.Time                 `json:"created_at"`
	UpdatedAt       time.Time                 `json:"updated_at"`
	CompletedUsers  []UserResponse            `json:"completed_users"`
	IsCompleted     bool                      `json:"is_completed"`
	SolvedCount     int                       `json:"solved_count"`
	ProblemStatuses []ProblemSetProblemStatus `json:"problem_statuses,omitempty"`
	AnswersRevealed bool                      `json:"answers_revealed"`
}

// NewProblemSetStatusResponse seeds the response from the bare set model.
func NewProblemSetStatusResponse(set models.ProblemSet) ProblemSetStatusResponse {
	return ProblemSetStatusResponse{
		ID:             set.ID,
		Title:          set.Title,
		Description:    set.Description,
		ProblemIDs:     set.ProblemIDs,
		CreatedAt:      set.CreatedAt,
		UpdatedAt:      set.UpdatedAt,
		CompletedUsers: []UserResponse{},
	}
}

// ProblemSetPageResponse is a paginated problem-set listing.
type ProblemSetPageResponse struct {
	Items    []ProblemSetStatusResponse `json:"items"`
	Total    int64                      `json:"total"`
	Page     int                        `json:"page"`
	PageSize int                        `json:"page_size"`
}
