package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/hw-eval-api/internal/models"
)

// EvaluationRepository persists self and grader evaluations.
type EvaluationRepository interface {
	ListSelfEvals(ctx context.Context, submissionID uint) ([]models.SelfEval, error)
	ListGraderEvals(ctx context.Context, submissionID uint) ([]models.GraderEval, error)
	GetSelfEval(ctx context.Context, id uint) (models.SelfEval, error)
	CreateSelfEval(ctx context.Context, selfEval *models.SelfEval) error
	UpdateSelfEval(ctx context.Context, selfEval *models.SelfEval) error
	DeleteSelfEval(ctx context.Context, id uint) error
	CreateGraderEval(ctx context.Context, graderEval *models.GraderEval) error
	UpdateGraderEval(ctx context.Context, graderEval *models.GraderEval) error
	DeleteGraderEval(ctx context.Context, id uint) error
	Summary(ctx context.Context, submissionID uint, assignmentNumber int) (models.EvalSummary, error)
}

type evaluationRepository struct {
	db *gorm.DB
}

// NewEvaluationRepository constructs the evaluation repository.
func NewEvaluationRepository(db *gorm.DB) EvaluationRepository {
	return &evaluationRepository{db: db}
}

func (r *evaluationRepository) ListSelfEvals(ctx context.Context, submissionID uint) ([]models.SelfEval, error) {
	var selfEvals []models.SelfEval
	if err := r.db.WithContext(ctx).
		Where("submission_id = ?", submissionID).
		Order("id ASC").
		Find(&selfEvals).Error; err != nil {
		return nil, err
	}
	return selfEvals, nil
}

func (r *evaluationRepository) ListGraderEvals(ctx context.Context, submissionID uint) ([]models.GraderEval, error) {
	var graderEvals []models.GraderEval
	if err := r.db.WithContext(ctx).
		Joins("JOIN self_evals ON self_evals.id = grader_evals.self_eval_id").
		Where("self_evals.submission_id = ?", submissionID).
		Order("grader_evals.id ASC").
		Find(&graderEvals).Error; err != nil {
		return nil, err
	}
	return graderEvals, nil
}

func (r *evaluationRepository) GetSelfEval(ctx context.Context, id uint) (models.SelfEval, error) {
	var selfEval models.SelfEval
	if err := r.db.WithContext(ctx).First(&selfEval, id).Error; err != nil {
		return models.SelfEval{}, err
	}
	return selfEval, nil
}

func (r *evaluationRepository) CreateSelfEval(ctx context.Context, selfEval *models.SelfEval) error {
	return r.db.WithContext(ctx).Create(selfEval).Error
}

func (r *evaluationRepository) UpdateSelfEval(ctx context.Context, selfEval *models.SelfEval) error {
	return r.db.WithContext(ctx).Save(selfEval).Error
}

// DeleteSelfEval removes the self evaluation and any grader evaluation hanging off it.
func (r *evaluationRepository) DeleteSelfEval(ctx context.Context, id uint) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("self_eval_id = ?", id).Delete(&models.GraderEval{}).Error; err != nil {
		return err
	}
	return db.Delete(&models.SelfEval{}, id).Error
}

func (r *evaluationRepository) CreateGraderEval(ctx context.Context, graderEval *models.GraderEval) error {
	return r.db.WithContext(ctx).Create(graderEval).Error
}

func (r *evaluationRepository) UpdateGraderEval(ctx context.Context, graderEval *models.GraderEval) error {
	return r.db.WithContext(ctx).Save(graderEval).Error
}

func (r *evaluationRepository) DeleteGraderEval(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.GraderEval{}, id).Error
}

type countTotal struct {
	Count int64
	Total float64
}

// Summary computes the evaluation counters with aggregate queries, without
// materializing any records.
func (r *evaluationRepository) Summary(ctx context.Context, submissionID uint, assignmentNumber int) (models.EvalSummary, error) {
	db := r.db.WithContext(ctx)

	var items countTotal
	if err := db.Raw(
		`SELECT COUNT(*) AS count, COALESCE(SUM(relative_value), 0) AS total
		   FROM eval_items
		  WHERE assignment_number = ?`, assignmentNumber,
	).Scan(&items).Error; err != nil {
		return models.EvalSummary{}, err
	}

	var selfEvals countTotal
	if err := db.Raw(
		`SELECT COUNT(*) AS count, 0 AS total
		   FROM self_evals s
		  INNER JOIN eval_items e ON e.id = s.eval_item_id
		  WHERE s.submission_id = ?
		    AND e.assignment_number = ?`, submissionID, assignmentNumber,
	).Scan(&selfEvals).Error; err != nil {
		return models.EvalSummary{}, err
	}

	var graded countTotal
	if err := db.Raw(
		`SELECT COUNT(*) AS count, COALESCE(SUM(g.score * e.relative_value), 0) AS total
		   FROM grader_evals g
		  INNER JOIN self_evals s ON s.id = g.self_eval_id
		  INNER JOIN eval_items e ON e.id = s.eval_item_id
		  WHERE s.submission_id = ?
		    AND e.assignment_number = ?
		    AND g.status = ?`, submissionID, assignmentNumber, models.GraderEvalReady,
	).Scan(&graded).Error; err != nil {
		return models.EvalSummary{}, err
	}

	return models.EvalSummary{
		ItemCount:     int(items.Count),
		PointValue:    items.Total,
		SelfEvalCount: int(selfEvals.Count),
		GradedCount:   int(graded.Count),
		WeightedScore: graded.Total,
	}, nil
}
