package judge

import "github.com/quizhub/quiz-go-api/internal/models"

// Status codes returned by the external judge. The judge reports a small
// integer; everything outside the running set is terminal.
const (
	StatusAccepted            = 0
	StatusWrongAnswer         = -1
	StatusPresentationError   = -3
	StatusSubmittedFailed     = -5
	StatusCompileError        = -6
	StatusTimeLimitExceeded   = 1
	StatusMemoryLimitExceeded = 2
	StatusRuntimeError        = 3
	StatusJudging             = 5
	StatusPending             = 6
	StatusCompiling           = 7
)

// statusVerdicts is the single canonicalization point between the judge's
// integer vocabulary and the internal verdict vocabulary. Integer codes
// never leak past this package.
var statusVerdicts = map[int]string{
	StatusAccepted:            models.VerdictAccepted,
	StatusWrongAnswer:         models.VerdictWrong,
	StatusPresentationError:   models.VerdictPresentationError,
	StatusSubmittedFailed:     models.VerdictSystemError,
	StatusCompileError:        models.VerdictCompileError,
	StatusTimeLimitExceeded:   models.VerdictTimeLimitExceeded,
	StatusMemoryLimitExceeded: models.VerdictMemoryLimitExceeded,
	StatusRuntimeError:        models.VerdictRuntimeError,
}

// IsRunning reports whether the status means the judge is still working.
func IsRunning(status int) bool {
	switch status {
	case StatusJudging, StatusPending, StatusCompiling:
		return true
	}
	return false
}

// VerdictForStatus maps a terminal judge status to an internal verdict.
// Unknown terminal codes map to system_error so a submission never stays
// pending because the judge grew a new failure mode.
func VerdictForStatus(status int) (string, bool) {
	if IsRunning(status) {
		return "", false
	}
	if verdict, ok := statusVerdicts[status]; ok {
		return verdict, true
	}
	return models.VerdictSystemError, true
}
