package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/quizhub/quiz-go-api/internal/dto"
	"github.com/quizhub/quiz-go-api/internal/models"
	"github.com/quizhub/quiz-go-api/internal/repository"
)

// ErrJudgeProblemMissing indicates the judge does not know the problem a
// coding problem wants to reference.
var ErrJudgeProblemMissing = errors.New("judge problem not found")

// JudgeProber is the existence probe the problem service needs from the
// judge client.
type JudgeProber interface {
	ProblemExists(ctx context.Context, problemID string) (bool, string)
}

// ProblemService exposes problem management and browsing.
type ProblemService interface {
	Create(ctx context.Context, payload dto.ProblemCreateRequest) (dto.ProblemResponse, error)
	Get(ctx context.Context, id uint, includeAnswer bool) (dto.ProblemResponse, error)
	List(ctx context.Context, filter repository.ProblemFilter, includeAnswer bool) (dto.ProblemPageResponse, error)
}

type problemService struct {
	problems  repository.ProblemRepository
	prober    JudgeProber
	sanitizer *bluemonday.Policy
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewProblemService constructs the problem service. The prober may be nil
// when no judge is configured; coding problems are then rejected.
func NewProblemService(problems repository.ProblemRepository, prober JudgeProber, validate *validator.Validate, logger zerolog.Logger) ProblemService {
	return &problemService{
		problems:  problems,
		prober:    prober,
		sanitizer: bluemonday.UGCPolicy(),
		validator: validate,
		logger:    logger.With().Str("component", "problem_service").Logger(),
	}
}

func (s *problemService) Create(ctx context.Context, payload dto.ProblemCreateRequest) (dto.ProblemResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ProblemResponse{}, err
	}

	if payload.Type == models.ProblemTypeCoding {
		if payload.JudgeProblemID == "" {
			return dto.ProblemResponse{}, ErrMissingJudgeConfig
		}
		if s.prober == nil {
			return dto.ProblemResponse{}, fmt.Errorf("%w: no judge configured", ErrJudgeProblemMissing)
		}
		if exists, reason := s.prober.ProblemExists(ctx, payload.JudgeProblemID); !exists {
			s.logger.Warn().Str("judge_problem_id", payload.JudgeProblemID).Str("reason", reason).Msg("judge problem probe failed")
			return dto.ProblemResponse{}, fmt.Errorf("%w: %s", ErrJudgeProblemMissing, reason)
		}
	}

	problem := models.Problem{
		Title:          payload.Title,
		Type:           payload.Type,
		Description:    s.sanitizer.Sanitize(payload.Description),
		Options:        payload.Options,
		Answer:         payload.Answer,
		JudgeProblemID: payload.JudgeProblemID,
		Solution:       s.sanitizer.Sanitize(payload.Solution),
	}

	if err := s.problems.Create(ctx, &problem); err != nil {
		return dto.ProblemResponse{}, err
	}

	return dto.NewProblemResponse(problem, true), nil
}

func (s *problemService) Get(ctx context.Context, id uint, includeAnswer bool) (dto.ProblemResponse, error) {
	problem, err := s.problems.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ProblemResponse{}, ErrProblemNotFound
		}
		return dto.ProblemResponse{}, err
	}
	return dto.NewProblemResponse(problem, includeAnswer), nil
}

func (s *problemService) List(ctx context.Context, filter repository.ProblemFilter, includeAnswer bool) (dto.ProblemPageResponse, error) {
	problems, total, err := s.problems.List(ctx, filter)
	if err != nil {
		return dto.ProblemPageResponse{}, err
	}

	items := make([]dto.ProblemResponse, 0, len(problems))
	for _, problem := range problems {
		items = append(items, dto.NewProblemResponse(problem, includeAnswer))
	}

	page := filter.Page
	if page <= 0 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}

	return dto.ProblemPageResponse{Items: items, Total: total, Page: page, PageSize: pageSize}, nil
}
