package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/quizhub/quiz-go-api/internal/models"
)

// ProblemSetRepository defines data operations for problem sets.
type ProblemSetRepository interface {
	Create(ctx context.Context, set *models.ProblemSet) error
	Update(ctx context.Context, set *models.ProblemSet) error
	Delete(ctx context.Context, id uint) error
	GetByID(ctx context.Context, id uint) (models.ProblemSet, error)
	List(ctx context.Context, page, pageSize int) ([]models.ProblemSet, int64, error)
	// ContainingAnyOf returns every set whose member list intersects the
	// given problems.
	ContainingAnyOf(ctx context.Context, problemIDs []uint) ([]models.ProblemSet, error)
}

type problemSetRepository struct {
	db *gorm.DB
}

// NewProblemSetRepository instantiates the repository.
func NewProblemSetRepository(db *gorm.DB) ProblemSetRepository {
	return &problemSetRepository{db: db}
}

func (r *problemSetRepository) Create(ctx context.Context, set *models.ProblemSet) error {
	return r.db.WithContext(ctx).Create(set).Error
}

func (r *problemSetRepository) Update(ctx context.Context, set *models.ProblemSet) error {
	return r.db.WithContext(ctx).Save(set).Error
}

func (r *problemSetRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.ProblemSet{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *problemSetRepository) GetByID(ctx context.Context, id uint) (models.ProblemSet, error) {
	var set models.ProblemSet
	if err := r.db.WithContext(ctx).First(&set, id).Error; err != nil {
		return models.ProblemSet{}, err
	}
	return set, nil
}

func (r *problemSetRepository) List(ctx context.Context, page, pageSize int) ([]models.ProblemSet, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.ProblemSet{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}

	var sets []models.ProblemSet
	if err := query.Order("id ASC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&sets).Error; err != nil {
		return nil, 0, err
	}

	return sets, total, nil
}

// ContainingAnyOf filters in memory: member lists are stored as JSON and
// problem sets number in the hundreds at most, so a table scan beats a
// dialect-specific JSON containment query.
func (r *problemSetRepository) ContainingAnyOf(ctx context.Context, problemIDs []uint) ([]models.ProblemSet, error) {
	if len(problemIDs) == 0 {
		return nil, nil
	}

	var sets []models.ProblemSet
	if err := r.db.WithContext(ctx).Find(&sets).Error; err != nil {
		return nil, err
	}

	var matched []models.ProblemSet
	for _, set := range sets {
		if set.ContainsAny(problemIDs) {
			matched = append(matched, set)
		}
	}
	return matched, nil
}

// CompletionRepository owns problem-set completion rows.
type CompletionRepository interface {
	// Upsert creates the completion row if absent; re-running is a no-op.
	Upsert(ctx context.Context, userID, problemSetID uint) error
	// Delete removes the completion row if present; absent rows are a no-op.
	Delete(ctx context.Context, userID, problemSetID uint) error
	Exists(ctx context.Context, userID, problemSetID uint) (bool, error)
	ListByProblemSet(ctx context.Context, problemSetID uint) ([]models.ProblemSetCompletion, error)
	ListByUser(ctx context.Context, userID uint) ([]models.ProblemSetCompletion, error)
}

type completionRepository struct {
	db *gorm.DB
}

// NewCompletionRepository instantiates the repository.
func NewCompletionRepository(db *gorm.DB) CompletionRepository {
	return &completionRepository{db: db}
}

func (r *completionRepository) Upsert(ctx context.Context, userID, problemSetID uint) error {
	exists, err := r.Exists(ctx, userID, problemSetID)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	completion := models.ProblemSetCompletion{
		UserID:       userID,
		ProblemSetID: problemSetID,
		CompletedAt:  time.Now().UTC(),
	}
	return r.db.WithContext(ctx).Create(&completion).Error
}

func (r *completionRepository) Delete(ctx context.Context, userID, problemSetID uint) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND problem_set_id = ?", userID, problemSetID).
		Delete(&models.ProblemSetCompletion{}).Error
}

func (r *completionRepository) Exists(ctx context.Context, userID, problemSetID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ProblemSetCompletion{}).
		Where("user_id = ? AND problem_set_id = ?", userID, problemSetID).
		Count(&count).Error
	return count > 0, err
}

func (r *completionRepository) ListByProblemSet(ctx context.Context, problemSetID uint) ([]models.ProblemSetCompletion, error) {
	var completions []models.ProblemSetCompletion
	err := r.db.WithContext(ctx).
		Where("problem_set_id = ?", problemSetID).
		Order("completed_at ASC").
		Find(&completions).Error
	return completions, err
}

func (r *completionRepository) ListByUser(ctx context.Context, userID uint) ([]models.ProblemSetCompletion, error) {
	var completions []models.ProblemSetCompletion
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("completed_at ASC").
		Find(&completions).Error
	return completions, err
}
