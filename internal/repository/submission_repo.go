package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/hw-eval-api/internal/models"
)

// SubmissionUpdate lists the administrative changes applied to a submission.
type SubmissionUpdate struct {
	DueDate  *time.Time
	EvalDate *time.Time
	User2ID  *uint
}

// SubmissionRepository defines data operations for submissions.
type SubmissionRepository interface {
	GetByID(ctx context.Context, id uint) (models.Submission, error)
	FindOrCreate(ctx context.Context, assignment models.Assignment, user models.User, now time.Time) (models.Submission, bool, error)
	ListByUser(ctx context.Context, userID uint) ([]models.Submission, error)
	Touch(ctx context.Context, id uint, at time.Time) error
	Update(ctx context.Context, id uint, update SubmissionUpdate) error
}

type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository instantiates the repository.
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) baseQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Submission{}).
		Preload("Assignment").
		Preload("Assignment.EvalItems", orderedEvalItems).
		Preload("User1").
		Preload("User2")
}

func (r *submissionRepository) GetByID(ctx context.Context, id uint) (models.Submission, error) {
	var submission models.Submission
	if err := r.baseQuery(ctx).First(&submission, id).Error; err != nil {
		return models.Submission{}, err
	}

	return submission, nil
}

// FindOrCreate returns the submission the user belongs to for the assignment,
// creating one owned by the user when none exists.
func (r *submissionRepository) FindOrCreate(ctx context.Context, assignment models.Assignment, user models.User, now time.Time) (models.Submission, bool, error) {
	var existing models.Submission
	err := r.baseQuery(ctx).
		Where("user1_id = ? OR user2_id = ?", user.ID, user.ID).
		Where("assignment_number = ?", assignment.Number).
		First(&existing).Error
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Submission{}, false, err
	}

	submission := models.NewSubmission(user, assignment, now)
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(&submission).Error; err != nil {
		return models.Submission{}, false, err
	}

	created, err := r.GetByID(ctx, submission.ID)
	if err != nil {
		return models.Submission{}, false, err
	}

	return created, true, nil
}

func (r *submissionRepository) ListByUser(ctx context.Context, userID uint) ([]models.Submission, error) {
	var submissions []models.Submission
	if err := r.baseQuery(ctx).
		Where("user1_id = ? OR user2_id = ?", userID, userID).
		Order("assignment_number ASC").
		Find(&submissions).Error; err != nil {
		return nil, err
	}

	return submissions, nil
}

func (r *submissionRepository) Touch(ctx context.Context, id uint, at time.Time) error {
	result := r.db.WithContext(ctx).Model(&models.Submission{}).
		Where("id = ?", id).
		Update("last_modified", at)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *submissionRepository) Update(ctx context.Context, id uint, update SubmissionUpdate) error {
	changes := map[string]interface{}{}
	if update.DueDate != nil {
		changes["due_date"] = *update.DueDate
	}
	if update.EvalDate != nil {
		changes["eval_date"] = *update.EvalDate
	}
	if update.User2ID != nil {
		if *update.User2ID == 0 {
			changes["user2_id"] = nil
		} else {
			changes["user2_id"] = *update.User2ID
		}
	}
	if len(changes) == 0 {
		return nil
	}

	result := r.db.WithContext(ctx).Model(&models.Submission{}).Where("id = ?", id).Updates(changes)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
