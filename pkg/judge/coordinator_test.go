package judge

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/quizhub/quiz-go-api/internal/models"
)

type stubSubmitter struct {
	submitID  int64
	submitErr error
	statuses  []int
	resultErr error
	noStatus  bool
	calls     int
}

func (s *stubSubmitter) Submit(ctx context.Context, problemID, code, language string) (int64, error) {
	if s.submitErr != nil {
		return 0, s.submitErr
	}
	return s.submitID, nil
}

func (s *stubSubmitter) Result(ctx context.Context, submitID int64) (int, bool, error) {
	if s.resultErr != nil {
		return 0, false, s.resultErr
	}
	if s.noStatus {
		return 0, false, nil
	}
	status := s.statuses[s.calls]
	if s.calls < len(s.statuses)-1 {
		s.calls++
	}
	return status, true, nil
}

func newTestCoordinator(client Submitter, attempts int) *Coordinator {
	return NewCoordinator(client, CoordinatorConfig{
		PollInterval: time.Millisecond,
		MaxAttempts:  attempts,
		Logger:       zerolog.Nop(),
	})
}

func TestCoordinatorMapsTerminalStatuses(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		verdict string
	}{
		{"accepted", StatusAccepted, models.VerdictAccepted},
		{"wrong answer", StatusWrongAnswer, models.VerdictWrong},
		{"compile error", StatusCompileError, models.VerdictCompileError},
		{"time limit", StatusTimeLimitExceeded, models.VerdictTimeLimitExceeded},
		{"memory limit", StatusMemoryLimitExceeded, models.VerdictMemoryLimitExceeded},
		{"runtime error", StatusRuntimeError, models.VerdictRuntimeError},
		{"presentation error", StatusPresentationError, models.VerdictPresentationError},
		{"system error", StatusSubmittedFailed, models.VerdictSystemError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := &stubSubmitter{submitID: 1, statuses: []int{tc.status}}
			outcome := newTestCoordinator(client, 5).Run(context.Background(), "1001", "code")
			require.Equal(t, tc.verdict, outcome.Verdict)
			require.EqualValues(t, 1, outcome.SubmitID)
		})
	}
}

func TestCoordinatorPollsThroughRunningStatuses(t *testing.T) {
	client := &stubSubmitter{submitID: 3, statuses: []int{StatusPending, StatusCompiling, StatusJudging, StatusAccepted}}
	outcome := newTestCoordinator(client, 10).Run(context.Background(), "1001", "code")
	require.Equal(t, models.VerdictAccepted, outcome.Verdict)
}

func TestCoordinatorTimesOutAfterAttemptCap(t *testing.T) {
	client := &stubSubmitter{submitID: 3, statuses: []int{StatusJudging}}
	outcome := newTestCoordinator(client, 4).Run(context.Background(), "1001", "code")
	require.Equal(t, models.VerdictPendingTimeout, outcome.Verdict)
	require.Contains(t, outcome.Detail, "retry")
}

func TestCoordinatorSubmitFailureIsError(t *testing.T) {
	client := &stubSubmitter{submitErr: errors.New("judge offline")}
	outcome := newTestCoordinator(client, 4).Run(context.Background(), "1001", "code")
	require.Equal(t, models.VerdictError, outcome.Verdict)
	require.Contains(t, outcome.Detail, "judge offline")
}

func TestCoordinatorResultFailureIsError(t *testing.T) {
	client := &stubSubmitter{submitID: 3, resultErr: errors.New("connection reset")}
	outcome := newTestCoordinator(client, 4).Run(context.Background(), "1001", "code")
	require.Equal(t, models.VerdictError, outcome.Verdict)
}

func TestCoordinatorMissingStatusIsError(t *testing.T) {
	client := &stubSubmitter{submitID: 3, noStatus: true}
	outcome := newTestCoordinator(client, 4).Run(context.Background(), "1001", "code")
	require.Equal(t, models.VerdictError, outcome.Verdict)
}

func TestCoordinatorHonoursContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := &stubSubmitter{submitID: 3, statuses: []int{StatusJudging}}
	outcome := newTestCoordinator(client, 4).Run(ctx, "1001", "code")
	require.Equal(t, models.VerdictError, outcome.Verdict)
}

func TestVerdictForStatusUnknownTerminalCode(t *testing.T) {
	verdict, terminal := VerdictForStatus(99)
	require.True(t, terminal)
	require.Equal(t, models.VerdictSystemError, verdict)

	_, terminal = VerdictForStatus(StatusPending)
	require.False(t, terminal)
}
