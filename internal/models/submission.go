package models

import "time"

// Verdict values a submission can carry. A submission is created as
// pending and moves to exactly one terminal verdict.
const (
	VerdictPending = "pending"
	// VerdictPendingTimeout marks a coding submission whose judge result
	// did not arrive within the polling window. Distinct from error so
	// callers can advise a retry.
	VerdictPendingTimeout = "pending_timeout"

	VerdictAccepted            = "accepted"
	VerdictWrong               = "wrong"
	VerdictError               = "error"
	VerdictTimeLimitExceeded   = "time_limit_exceeded"
	VerdictMemoryLimitExceeded = "memory_limit_exceeded"
	VerdictRuntimeError        = "runtime_error"
	VerdictPresentationError   = "presentation_error"
	VerdictCompileError        = "compile_error"
	VerdictSystemError         = "system_error"
)

// Submission records one answer a user handed in for a problem.
type Submission struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	ProblemID uint      `gorm:"not null;index" json:"problem_id"`
	Answer    string    `gorm:"type:text" json:"answer"`
	Verdict   string    `gorm:"size:32;not null;default:pending" json:"verdict"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsTerminalVerdict reports whether the given verdict ends a submission's
// lifecycle. Everything except pending is terminal.
func IsTerminalVerdict(verdict string) bool {
	return verdict != "" && verdict != VerdictPending
}

// IsKnownVerdict reports whether the verdict belongs to the internal
// verdict vocabulary.
func IsKnownVerdict(verdict string) bool {
	switch verdict {
	case VerdictPending, VerdictPendingTimeout, VerdictAccepted, VerdictWrong,
		VerdictError, VerdictTimeLimitExceeded, VerdictMemoryLimitExceeded,
		VerdictRuntimeError, VerdictPresentationError, VerdictCompileError,
		VerdictSystemError:
		return true
	}
	return false
}

// Accepted reports whether the submission passed.
func (s Submission) Accepted() bool {
	return s.Verdict == VerdictAccepted
}
