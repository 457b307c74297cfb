package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/quizhub/quiz-go-api/internal/dto"
	"github.com/quizhub/quiz-go-api/internal/models"
	"github.com/quizhub/quiz-go-api/internal/repository"
	"github.com/quizhub/quiz-go-api/pkg/events"
	"github.com/quizhub/quiz-go-api/pkg/judge"
)

// ErrProblemNotFound indicates the referenced problem does not exist.
var ErrProblemNotFound = errors.New("problem not found")

// ErrSubmissionNotFound indicates the submission cannot be located.
var ErrSubmissionNotFound = errors.New("submission not found")

// ErrSubmissionForbidden indicates the caller may not view the submission.
var ErrSubmissionForbidden = errors.New("forbidden")

// ErrMissingJudgeConfig indicates a coding problem has no judge problem
// identifier and therefore cannot accept submissions.
var ErrMissingJudgeConfig = errors.New("coding problem is missing judge configuration")

// ErrUnknownVerdict indicates a forced verdict outside the vocabulary.
var ErrUnknownVerdict = errors.New("unknown verdict")

// CodingJudge is the slice of the judge coordinator the workflow needs.
type CodingJudge interface {
	Run(ctx context.Context, problemID, code string) judge.Outcome
}

// SubmissionService is the entry point for answer submissions.
type SubmissionService interface {
	// Submit records a pending submission and routes it to the right
	// evaluation path. Coding submissions return while still pending and
	// resolve in the background.
	Submit(ctx context.Context, userID uint, payload dto.SubmissionCreateRequest) (dto.SubmissionResponse, error)
	Get(ctx context.Context, id, viewerID uint, role string) (dto.SubmissionResponse, error)
	ListMine(ctx context.Context, userID uint) ([]dto.SubmissionResponse, error)
	ListMineForProblem(ctx context.Context, userID, problemID uint) ([]dto.SubmissionResponse, error)
	ListAll(ctx context.Context, page, pageSize int) (dto.SubmissionPageResponse, error)
	ListByUser(ctx context.Context, userID uint) ([]dto.SubmissionResponse, error)
	// ForceVerdict lets an administrator override a verdict, bypassing
	// evaluation entirely.
	ForceVerdict(ctx context.Context, submissionID uint, verdict string) (dto.SubmissionResponse, error)
	// Wait blocks until every in-flight coding judgement has finished.
	Wait()
}

// SubmissionConfig tunes the asynchronous judging path.
type SubmissionConfig struct {
	// JudgeDeadline bounds one whole coordinated judgement including all
	// polling. Zero means 10 minutes.
	JudgeDeadline time.Duration
}

type submissionService struct {
	submissions repository.SubmissionRepository
	problems    repository.ProblemRepository
	coordinator CodingJudge
	tracker     CompletionTracker
	publisher   events.Publisher
	validator   *validator.Validate
	logger      zerolog.Logger
	deadline    time.Duration

	wg sync.WaitGroup
}

// NewSubmissionService constructs the submission workflow.
func NewSubmissionService(
	submissions repository.SubmissionRepository,
	problems repository.ProblemRepository,
	coordinator CodingJudge,
	tracker CompletionTracker,
	publisher events.Publisher,
	validate *validator.Validate,
	logger zerolog.Logger,
	cfg SubmissionConfig,
) SubmissionService {
	deadline := cfg.JudgeDeadline
	if deadline <= 0 {
		deadline = 10 * time.Minute
	}
	if publisher == nil {
		publisher = events.Nop{}
	}

	return &submissionService{
		submissions: submissions,
		problems:    problems,
		coordinator: coordinator,
		tracker:     tracker,
		publisher:   publisher,
		validator:   validate,
		logger:      logger.With().Str("component", "submission_service").Logger(),
		deadline:    deadline,
	}
}

func (s *submissionService) Submit(ctx context.Context, userID uint, payload dto.SubmissionCreateRequest) (dto.SubmissionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, err
	}

	problem, err := s.problems.GetByID(ctx, payload.ProblemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrProblemNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	// Both gates run before any row is written.
	if problem.IsCoding() && problem.JudgeProblemID == "" {
		return dto.SubmissionResponse{}, ErrMissingJudgeConfig
	}

	submission := models.Submission{
		UserID:    userID,
		ProblemID: problem.ID,
		Answer:    payload.Answer,
		Verdict:   models.VerdictPending,
	}
	if err := s.submissions.Create(ctx, &submission); err != nil {
		return dto.SubmissionResponse{}, err
	}

	if problem.IsCoding() {
		s.judgeAsync(ctx, submission, problem)
		return dto.NewSubmissionResponse(submission), nil
	}

	verdict, err := EvaluateAnswer(problem, payload.Answer)
	if err != nil {
		// Unreachable for non-coding problems; resolve the row anyway.
		verdict = models.VerdictError
	}

	updated, err := s.finalize(ctx, submission.ID, userID, problem.ID, verdict)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}
	return dto.NewSubmissionResponse(updated), nil
}

// judgeAsync hands the submission to the coordinator on its own
// goroutine. Whatever happens, the submission ends up terminal: a
// deferred recovery path resolves it to error if the coordinator or the
// bookkeeping panics.
func (s *submissionService) judgeAsync(parent context.Context, submission models.Submission, problem models.Problem) {
	// Detach from the request's cancellation but keep its values.
	base := context.WithoutCancel(parent)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		// The deadline bounds the judging only. Finalization writes run
		// on the detached context so an expired deadline can never leave
		// the row pending.
		judgeCtx, cancel := context.WithTimeout(base, s.deadline)
		defer cancel()

		finalized := false
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error().Interface("panic", r).Uint("submission_id", submission.ID).Msg("judging panicked")
			}
			if !finalized {
				if _, err := s.finalize(base, submission.ID, submission.UserID, submission.ProblemID, models.VerdictError); err != nil {
					s.logger.Error().Err(err).Uint("submission_id", submission.ID).Msg("failed to resolve submission after failure")
				}
			}
		}()

		outcome := s.coordinator.Run(judgeCtx, problem.JudgeProblemID, submission.Answer)
		if outcome.Detail != "" {
			s.logger.Info().
				Uint("submission_id", submission.ID).
				Str("verdict", outcome.Verdict).
				Str("detail", outcome.Detail).
				Msg("judge outcome")
		}

		if _, err := s.finalize(base, submission.ID, submission.UserID, submission.ProblemID, outcome.Verdict); err != nil {
			s.logger.Error().Err(err).Uint("submission_id", submission.ID).Msg("failed to persist judge verdict")
			return
		}
		finalized = true
	}()
}

// finalize moves the submission to a terminal verdict, refreshes
// completion state when it became accepted, and emits the verdict event.
func (s *submissionService) finalize(ctx context.Context, submissionID, userID, problemID uint, verdict string) (models.Submission, error) {
	updated, err := s.submissions.UpdateVerdict(ctx, submissionID, verdict)
	if err != nil {
		return models.Submission{}, err
	}

	// Any verdict change can flip a set between complete and incomplete:
	// an accepted submission may finish a set, a newer wrong one may
	// invalidate the latest-submission view.
	if s.tracker != nil {
		if err := s.tracker.Refresh(ctx, userID, []uint{problemID}); err != nil {
			s.logger.Error().Err(err).Uint("user_id", userID).Msg("completion refresh failed")
		}
	}

	s.publisher.PublishSubmissionJudged(ctx, events.SubmissionJudged{
		SubmissionID: submissionID,
		UserID:       userID,
		ProblemID:    problemID,
		Verdict:      verdict,
		JudgedAt:     time.Now().UTC(),
	})

	return updated, nil
}

func (s *submissionService) Get(ctx context.Context, id, viewerID uint, role string) (dto.SubmissionResponse, error) {
	submission, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	if submission.UserID != viewerID && role != models.RoleAdmin {
		return dto.SubmissionResponse{}, ErrSubmissionForbidden
	}

	return dto.NewSubmissionResponse(submission), nil
}

func (s *submissionService) ListMine(ctx context.Context, userID uint) ([]dto.SubmissionResponse, error) {
	submissions, err := s.submissions.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return dto.NewSubmissionResponses(submissions), nil
}

func (s *submissionService) ListMineForProblem(ctx context.Context, userID, problemID uint) ([]dto.SubmissionResponse, error) {
	submissions, err := s.submissions.ListByUserAndProblem(ctx, userID, problemID)
	if err != nil {
		return nil, err
	}
	return dto.NewSubmissionResponses(submissions), nil
}

func (s *submissionService) ListAll(ctx context.Context, page, pageSize int) (dto.SubmissionPageResponse, error) {
	submissions, total, err := s.submissions.ListAll(ctx, page, pageSize)
	if err != nil {
		return dto.SubmissionPageResponse{}, err
	}
	return dto.SubmissionPageResponse{
		Items:    dto.NewSubmissionResponses(submissions),
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

func (s *submissionService) ListByUser(ctx context.Context, userID uint) ([]dto.SubmissionResponse, error) {
	return s.ListMine(ctx, userID)
}

func (s *submissionService) ForceVerdict(ctx context.Context, submissionID uint, verdict string) (dto.SubmissionResponse, error) {
	if !models.IsKnownVerdict(verdict) || !models.IsTerminalVerdict(verdict) {
		return dto.SubmissionResponse{}, ErrUnknownVerdict
	}

	submission, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	updated, err := s.finalize(ctx, submission.ID, submission.UserID, submission.ProblemID, verdict)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}
	return dto.NewSubmissionResponse(updated), nil
}

func (s *submissionService) Wait() {
	s.wg.Wait()
}
