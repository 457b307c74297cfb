package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/quizhub/quiz-go-api/internal/models"
)

// ProblemFilter narrows problem listings.
type ProblemFilter struct {
	Type     string
	Title    string
	Page     int
	PageSize int
}

// ProblemRepository defines data operations for problems.
type ProblemRepository interface {
	GetByID(ctx context.Context, id uint) (models.Problem, error)
	List(ctx context.Context, filter ProblemFilter) ([]models.Problem, int64, error)
	Create(ctx context.Context, problem *models.Problem) error
}

type problemRepository struct {
	db *gorm.DB
}

// NewProblemRepository instantiates the repository.
func NewProblemRepository(db *gorm.DB) ProblemRepository {
	return &problemRepository{db: db}
}

func (r *problemRepository) GetByID(ctx context.Context, id uint) (models.Problem, error) {
	var problem models.Problem
	if err := r.db.WithContext(ctx).First(&problem, id).Error; err != nil {
		return models.Problem{}, err
	}
	return problem, nil
}

func (r *problemRepository) List(ctx context.Context, filter ProblemFilter) ([]models.Problem, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Problem{})

	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.Title != "" {
		query = query.Where("title LIKE ?", "%"+filter.Title+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page
	if page <= 0 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}

	var problems []models.Problem
	if err := query.Order("id ASC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&problems).Error; err != nil {
		return nil, 0, err
	}

	return problems, total, nil
}

func (r *problemRepository) Create(ctx context.Context, problem *models.Problem) error {
	return r.db.WithContext(ctx).Create(problem).Error
}
