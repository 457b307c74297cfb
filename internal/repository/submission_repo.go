package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/quizhub/quiz-go-api/internal/models"
)

// SubmissionRepository defines data operations for submissions.
type SubmissionRepository interface {
	Create(ctx context.Context, submission *models.Submission) error
	GetByID(ctx context.Context, id uint) (models.Submission, error)
	UpdateVerdict(ctx context.Context, id uint, verdict string) (models.Submission, error)
	ListByUser(ctx context.Context, userID uint) ([]models.Submission, error)
	ListByUserAndProblem(ctx context.Context, userID, problemID uint) ([]models.Submission, error)
	ListAll(ctx context.Context, page, pageSize int) ([]models.Submission, int64, error)
	// LatestByUserForProblems returns the most recent submission the user
	// made for each of the given problems. Recency is creation time with
	// identity as the tie breaker.
	LatestByUserForProblems(ctx context.Context, userID uint, problemIDs []uint) (map[uint]models.Submission, error)
}

type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository instantiates the repository.
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) Create(ctx context.Context, submission *models.Submission) error {
	return r.db.WithContext(ctx).Create(submission).Error
}

func (r *submissionRepository) GetByID(ctx context.Context, id uint) (models.Submission, error) {
	var submission models.Submission
	if err := r.db.WithContext(ctx).First(&submission, id).Error; err != nil {
		return models.Submission{}, err
	}
	return submission, nil
}

func (r *submissionRepository) UpdateVerdict(ctx context.Context, id uint, verdict string) (models.Submission, error) {
	var submission models.Submission
	if err := r.db.WithContext(ctx).First(&submission, id).Error; err != nil {
		return models.Submission{}, err
	}
	submission.Verdict = verdict
	if err := r.db.WithContext(ctx).Save(&submission).Error; err != nil {
		return models.Submission{}, err
	}
	return submission, nil
}

func (r *submissionRepository) ListByUser(ctx context.Context, userID uint) ([]models.Submission, error) {
	var submissions []models.Submission
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&submissions).Error
	return submissions, err
}

func (r *submissionRepository) ListByUserAndProblem(ctx context.Context, userID, problemID uint) ([]models.Submission, error) {
	var submissions []models.Submission
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND problem_id = ?", userID, problemID).
		Order("created_at DESC, id DESC").
		Find(&submissions).Error
	return submissions, err
}

func (r *submissionRepository) ListAll(ctx context.Context, page, pageSize int) ([]models.Submission, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Submission{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 50
	}

	var submissions []models.Submission
	if err := query.Order("created_at DESC, id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&submissions).Error; err != nil {
		return nil, 0, err
	}

	return submissions, total, nil
}

func (r *submissionRepository) LatestByUserForProblems(ctx context.Context, userID uint, problemIDs []uint) (map[uint]models.Submission, error) {
	if len(problemIDs) == 0 {
		return map[uint]models.Submission{}, nil
	}

	var submissions []models.Submission
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND problem_id IN ?", userID, problemIDs).
		Order("created_at DESC, id DESC").
		Find(&submissions).Error; err != nil {
		return nil, err
	}

	latest := make(map[uint]models.Submission, len(problemIDs))
	for _, submission := range submissions {
		if _, ok := latest[submission.ProblemID]; !ok {
			latest[submission.ProblemID] = submission
		}
	}
	return latest, nil
}
