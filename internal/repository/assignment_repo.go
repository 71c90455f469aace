package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/hw-eval-api/internal/models"
)

// AssignmentRepository defines persistence operations for assignments and their rubrics.
type AssignmentRepository interface {
	List(ctx context.Context) ([]models.Assignment, error)
	GetByNumber(ctx context.Context, number int) (models.Assignment, error)
	Create(ctx context.Context, assignment *models.Assignment) error
}

type assignmentRepository struct {
	db *gorm.DB
}

// NewAssignmentRepository instantiates a GORM-backed repository.
func NewAssignmentRepository(db *gorm.DB) AssignmentRepository {
	return &assignmentRepository{db: db}
}

func orderedEvalItems(db *gorm.DB) *gorm.DB {
	return db.Order("sequence ASC")
}

func (r *assignmentRepository) List(ctx context.Context) ([]models.Assignment, error) {
	var assignments []models.Assignment
	if err := r.db.WithContext(ctx).
		Preload("EvalItems", orderedEvalItems).
		Order("number ASC").
		Find(&assignments).Error; err != nil {
		return nil, err
	}

	return assignments, nil
}

func (r *assignmentRepository) GetByNumber(ctx context.Context, number int) (models.Assignment, error) {
	var assignment models.Assignment
	if err := r.db.WithContext(ctx).
		Preload("EvalItems", orderedEvalItems).
		Where("number = ?", number).
		First(&assignment).Error; err != nil {
		return models.Assignment{}, err
	}

	return assignment, nil
}

// Create inserts the assignment together with its rubric items.
func (r *assignmentRepository) Create(ctx context.Context, assignment *models.Assignment) error {
	return r.db.WithContext(ctx).Create(assignment).Error
}
