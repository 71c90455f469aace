package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/hw-eval-api/internal/models"
)

// SourceFileRepository exposes the file metadata attached to submissions.
type SourceFileRepository interface {
	ListBySubmission(ctx context.Context, submissionID uint) ([]models.SourceFile, error)
	Create(ctx context.Context, file *models.SourceFile) error
}

type sourceFileRepository struct {
	db *gorm.DB
}

// NewSourceFileRepository constructs the repository.
func NewSourceFileRepository(db *gorm.DB) SourceFileRepository {
	return &sourceFileRepository{db: db}
}

func (r *sourceFileRepository) ListBySubmission(ctx context.Context, submissionID uint) ([]models.SourceFile, error) {
	var files []models.SourceFile
	if err := r.db.WithContext(ctx).
		Where("submission_id = ?", submissionID).
		Find(&files).Error; err != nil {
		return nil, err
	}
	return files, nil
}

func (r *sourceFileRepository) Create(ctx context.Context, file *models.SourceFile) error {
	return r.db.WithContext(ctx).Create(file).Error
}
