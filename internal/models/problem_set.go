package models

import "time"

// ProblemSet groups an ordered list of problems under a title.
type ProblemSet struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:255;not null;index" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	ProblemIDs  []uint    `gorm:"serializer:json" json:"problem_ids"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Contains reports whether the set includes the given problem.
func (ps ProblemSet) Contains(problemID uint) bool {
	for _, id := range ps.ProblemIDs {
		if id == problemID {
			return true
		}
	}
	return false
}

// ContainsAny reports whether the set includes any of the given problems.
func (ps ProblemSet) ContainsAny(problemIDs []uint) bool {
	for _, id := range problemIDs {
		if ps.Contains(id) {
			return true
		}
	}
	return false
}

// ProblemSetCompletion marks that a user holds an accepted submission for
// every problem in a set. At most one row per (user, set) pair.
type ProblemSetCompletion struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	ProblemSetID uint      `gorm:"not null;uniqueIndex:idx_completion_user_set" json:"problem_set_id"`
	UserID       uint      `gorm:"not null;uniqueIndex:idx_completion_user_set" json:"user_id"`
	CompletedAt  time.Time `json:"completed_at"`
}
