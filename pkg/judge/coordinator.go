package judge

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/quizhub/quiz-go-api/internal/models"
)

// Submitter is the slice of the judge client the coordinator needs.
type Submitter interface {
	Submit(ctx context.Context, problemID, code, language string) (int64, error)
	Result(ctx context.Context, submitID int64) (int, bool, error)
}

// Outcome is the terminal result of one coordinated coding submission.
type Outcome struct {
	Verdict  string
	SubmitID int64
	// Detail carries the failure text when the verdict is error.
	Detail string
}

// CoordinatorConfig tunes the polling loop.
type CoordinatorConfig struct {
	PollInterval time.Duration
	MaxAttempts  int
	Language     string
	Logger       zerolog.Logger
}

// Coordinator drives one coding submission end-to-end: submit, poll until
// the judge reports a terminal status, map that status to an internal
// verdict. Every call reaches exactly one terminal outcome.
type Coordinator struct {
	client   Submitter
	interval time.Duration
	attempts int
	language string
	logger   zerolog.Logger
}

// NewCoordinator constructs a coordinator bound to the given client.
func NewCoordinator(client Submitter, cfg CoordinatorConfig) *Coordinator {
	interval := cfg.PollInterval
	if interval <= 0 {
		interval = 2 * time.Second
	}
	attempts := cfg.MaxAttempts
	if attempts <= 0 {
		attempts = 60
	}
	language := cfg.Language
	if language == "" {
		language = "Python3"
	}

	return &Coordinator{
		client:   client,
		interval: interval,
		attempts: attempts,
		language: language,
		logger:   cfg.Logger.With().Str("component", "judge_coordinator").Logger(),
	}
}

// Run submits the code and polls for a verdict. The returned outcome is
// always terminal: accepted or a specific rejection verdict from the
// status map, pending_timeout when the attempt cap is exhausted, or error
// when the judge misbehaves.
func (j *Coordinator) Run(ctx context.Context, problemID, code string) Outcome {
	submitID, err := j.client.Submit(ctx, problemID, code, j.language)
	if err != nil {
		j.logger.Error().Err(err).Str("problem_id", problemID).Msg("judge submit failed")
		return Outcome{Verdict: models.VerdictError, Detail: err.Error()}
	}

	logger := j.logger.With().Int64("submit_id", submitID).Logger()

	for attempt := 0; attempt < j.attempts; attempt++ {
		select {
		case <-ctx.Done():
			return Outcome{Verdict: models.VerdictError, SubmitID: submitID, Detail: ctx.Err().Error()}
		case <-time.After(j.interval):
		}

		status, ok, err := j.client.Result(ctx, submitID)
		if err != nil {
			logger.Error().Err(err).Msg("judge result fetch failed")
			return Outcome{Verdict: models.VerdictError, SubmitID: submitID, Detail: err.Error()}
		}
		if !ok {
			return Outcome{Verdict: models.VerdictError, SubmitID: submitID, Detail: "judge response carried no status"}
		}

		if verdict, terminal := VerdictForStatus(status); terminal {
			logger.Info().Int("status", status).Str("verdict", verdict).Msg("judge reached terminal status")
			return Outcome{Verdict: verdict, SubmitID: submitID}
		}
	}

	logger.Warn().Int("attempts", j.attempts).Msg("judge polling window exhausted")
	return Outcome{Verdict: models.VerdictPendingTimeout, SubmitID: submitID, Detail: "judge did not finish in time, retry later"}
}
