package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/noah-isme/hw-eval-api/internal/models"
)

// ExamGradeRepository is a keyed store of exam grades.
type ExamGradeRepository interface {
	FindByUser(ctx context.Context, userID uint) ([]models.ExamGrade, error)
	GetOrCreate(ctx context.Context, userID uint, number int) (models.ExamGrade, bool, error)
	Update(ctx context.Context, grade *models.ExamGrade) error
}

type examGradeRepository struct {
	db *gorm.DB
}

// NewExamGradeRepository constructs the exam grade repository.
func NewExamGradeRepository(db *gorm.DB) ExamGradeRepository {
	return &examGradeRepository{db: db}
}

func (r *examGradeRepository) FindByUser(ctx context.Context, userID uint) ([]models.ExamGrade, error) {
	var grades []models.ExamGrade
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("number ASC").
		Find(&grades).Error; err != nil {
		return nil, err
	}
	return grades, nil
}

func (r *examGradeRepository) GetOrCreate(ctx context.Context, userID uint, number int) (models.ExamGrade, bool, error) {
	var grade models.ExamGrade
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND number = ?", userID, number).
		First(&grade).Error
	if err == nil {
		return grade, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.ExamGrade{}, false, err
	}

	grade = models.ExamGrade{UserID: userID, Number: number}
	if err := r.db.WithContext(ctx).Create(&grade).Error; err != nil {
		return models.ExamGrade{}, false, err
	}
	return grade, true, nil
}

func (r *examGradeRepository) Update(ctx context.Context, grade *models.ExamGrade) error {
	return r.db.WithContext(ctx).Save(grade).Error
}
