package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/quizhub/quiz-go-api/internal/dto"
	"github.com/quizhub/quiz-go-api/internal/models"
	"github.com/quizhub/quiz-go-api/internal/repository"
)

// ErrProblemSetNotFound indicates the referenced set does not exist.
var ErrProblemSetNotFound = errors.New("problem set not found")

// ProblemSetService manages problem sets and per-user progress views.
type ProblemSetService interface {
	Create(ctx context.Context, payload dto.ProblemSetCreateRequest) (dto.ProblemSetStatusResponse, error)
	Update(ctx context.Context, id uint, payload dto.ProblemSetUpdateRequest) (dto.ProblemSetStatusResponse, error)
	Delete(ctx context.Context, id uint) error
	Get(ctx context.Context, id, currentUserID uint) (dto.ProblemSetStatusResponse, error)
	List(ctx context.Context, page, pageSize int, currentUserID uint) (dto.ProblemSetPageResponse, error)
}

type problemSetService struct {
	sets        repository.ProblemSetRepository
	problems    repository.ProblemRepository
	submissions repository.SubmissionRepository
	completions repository.CompletionRepository
	users       repository.UserRepository
	cache       *redis.Client
	cacheTTL    time.Duration
	validator   *validator.Validate
	logger      zerolog.Logger
}

// NewProblemSetService constructs the service. The redis client is
// optional; statuses are recomputed on every call without it.
func NewProblemSetService(
	sets repository.ProblemSetRepository,
	problems repository.ProblemRepository,
	submissions repository.SubmissionRepository,
	completions repository.CompletionRepository,
	users repository.UserRepository,
	cache *redis.Client,
	cacheTTL time.Duration,
	validate *validator.Validate,
	logger zerolog.Logger,
) ProblemSetService {
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &problemSetService{
		sets:        sets,
		problems:    problems,
		submissions: submissions,
		completions: completions,
		users:       users,
		cache:       cache,
		cacheTTL:    cacheTTL,
		validator:   validate,
		logger:      logger.With().Str("component", "problem_set_service").Logger(),
	}
}

func (s *problemSetService) Create(ctx context.Context, payload dto.ProblemSetCreateRequest) (dto.ProblemSetStatusResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ProblemSetStatusResponse{}, err
	}

	set := models.ProblemSet{
		Title:       payload.Title,
		Description: payload.Description,
		ProblemIDs:  payload.ProblemIDs,
	}
	if err := s.sets.Create(ctx, &set); err != nil {
		return dto.ProblemSetStatusResponse{}, err
	}

	return s.buildStatus(ctx, set, 0)
}

func (s *problemSetService) Update(ctx context.Context, id uint, payload dto.ProblemSetUpdateRequest) (dto.ProblemSetStatusResponse, error) {
	set, err := s.sets.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ProblemSetStatusResponse{}, ErrProblemSetNotFound
		}
		return dto.ProblemSetStatusResponse{}, err
	}

	if payload.Title != nil {
		set.Title = *payload.Title
	}
	if payload.Description != nil {
		set.Description = *payload.Description
	}
	if payload.ProblemIDs != nil {
		set.ProblemIDs = *payload.ProblemIDs
	}

	if err := s.sets.Update(ctx, &set); err != nil {
		return dto.ProblemSetStatusResponse{}, err
	}

	return s.buildStatus(ctx, set, 0)
}

func (s *problemSetService) Delete(ctx context.Context, id uint) error {
	if err := s.sets.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProblemSetNotFound
		}
		return err
	}
	return nil
}

func (s *problemSetService) Get(ctx context.Context, id, currentUserID uint) (dto.ProblemSetStatusResponse, error) {
	if cached, ok := s.cachedStatus(ctx, id, currentUserID); ok {
		return cached, nil
	}

	set, err := s.sets.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ProblemSetStatusResponse{}, ErrProblemSetNotFound
		}
		return dto.ProblemSetStatusResponse{}, err
	}

	status, err := s.buildStatus(ctx, set, currentUserID)
	if err != nil {
		return dto.ProblemSetStatusResponse{}, err
	}

	s.storeStatus(ctx, status, currentUserID)
	return status, nil
}

func (s *problemSetService) List(ctx context.Context, page, pageSize int, currentUserID uint) (dto.ProblemSetPageResponse, error) {
	sets, total, err := s.sets.List(ctx, page, pageSize)
	if err != nil {
		return dto.ProblemSetPageResponse{}, err
	}

	items := make([]dto.ProblemSetStatusResponse, 0, len(sets))
	for _, set := range sets {
		status, err := s.buildStatus(ctx, set, currentUserID)
		if err != nil {
			return dto.ProblemSetPageResponse{}, err
		}
		items = append(items, status)
	}

	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}

	return dto.ProblemSetPageResponse{Items: items, Total: total, Page: page, PageSize: pageSize}, nil
}

// buildStatus assembles the per-user view of the set: the roster of users
// who completed it, the viewer's per-problem verdicts, and whether
// answers are revealed. Answers unlock only once every member problem's
// latest submission is accepted.
func (s *problemSetService) buildStatus(ctx context.Context, set models.ProblemSet, currentUserID uint) (dto.ProblemSetStatusResponse, error) {
	status := dto.NewProblemSetStatusResponse(set)

	completions, err := s.completions.ListByProblemSet(ctx, set.ID)
	if err != nil {
		return dto.ProblemSetStatusResponse{}, err
	}
	for _, completion := range completions {
		user, err := s.users.GetByID(ctx, completion.UserID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return dto.ProblemSetStatusResponse{}, err
		}
		status.CompletedUsers = append(status.CompletedUsers, dto.NewUserResponse(user))
	}

	if currentUserID == 0 {
		return status, nil
	}

	latest, err := s.submissions.LatestByUserForProblems(ctx, currentUserID, set.ProblemIDs)
	if err != nil {
		return dto.ProblemSetStatusResponse{}, err
	}

	revealed := len(set.ProblemIDs) > 0
	for _, problemID := range set.ProblemIDs {
		submission, ok := latest[problemID]
		if !ok || !submission.Accepted() {
			revealed = false
			break
		}
	}

	for _, problemID := range set.ProblemIDs {
		entry := dto.ProblemSetProblemStatus{ProblemID: problemID}

		problem, err := s.problems.GetByID(ctx, problemID)
		if err == nil {
			entry.Title = problem.Title
			if revealed {
				entry.Answer = problem.Answer
				entry.Solution = problem.Solution
			}
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ProblemSetStatusResponse{}, err
		}

		if submission, ok := latest[problemID]; ok {
			entry.Verdict = submission.Verdict
			entry.UserAnswer = submission.Answer
			if submission.Accepted() {
				status.SolvedCount++
			}
		}

		status.ProblemStatuses = append(status.ProblemStatuses, entry)
	}

	status.AnswersRevealed = revealed
	status.IsCompleted = revealed
	return status, nil
}

func (s *problemSetService) cachedStatus(ctx context.Context, setID, userID uint) (dto.ProblemSetStatusResponse, bool) {
	if s.cache == nil {
		return dto.ProblemSetStatusResponse{}, false
	}

	raw, err := s.cache.Get(ctx, problemSetStatusCacheKey(setID, userID)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn().Err(err).Uint("problem_set_id", setID).Msg("status cache read failed")
		}
		return dto.ProblemSetStatusResponse{}, false
	}

	var status dto.ProblemSetStatusResponse
	if err := json.Unmarshal([]byte(raw), &status); err != nil {
		return dto.ProblemSetStatusResponse{}, false
	}
	return status, true
}

func (s *problemSetService) storeStatus(ctx context.Context, status dto.ProblemSetStatusResponse, userID uint) {
	if s.cache == nil {
		return
	}

	payload, err := json.Marshal(status)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, problemSetStatusCacheKey(status.ID, userID), payload, s.cacheTTL).Err(); err != nil {
		s.logger.Warn().Err(err).Uint("problem_set_id", status.ID).Msg("status cache write failed")
	}
}
