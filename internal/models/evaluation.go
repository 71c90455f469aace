package models

import "time"

// GraderEvalStatus tracks whether a grader evaluation counts toward the grade.
type GraderEvalStatus string

const (
	GraderEvalPending GraderEvalStatus = "pending"
	GraderEvalReady   GraderEvalStatus = "ready"
)

// SelfEval is a student's answer to one rubric item of a submission.
type SelfEval struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	SubmissionID uint      `gorm:"not null;uniqueIndex:idx_self_evals_submission_item" json:"submission_id"`
	EvalItemID   uint      `gorm:"not null;uniqueIndex:idx_self_evals_submission_item" json:"eval_item_id"`
	Score        float64   `gorm:"not null;default:0" json:"score"`
	Explanation  string    `gorm:"type:text" json:"explanation"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// GraderEval is the reviewed score for a single self evaluation.
type GraderEval struct {
	ID          uint             `gorm:"primaryKey" json:"id"`
	SelfEvalID  uint             `gorm:"not null;uniqueIndex" json:"self_eval_id"`
	GraderID    uint             `gorm:"not null;index" json:"grader_id"`
	Score       float64          `gorm:"not null;default:0" json:"score"`
	Explanation string           `gorm:"type:text" json:"explanation"`
	Status      GraderEvalStatus `gorm:"size:16;not null;default:pending" json:"status"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// IsReady reports whether the grader evaluation has been finalized.
func (g GraderEval) IsReady() bool {
	return g.Status == GraderEvalReady
}
