package dto

import (
	"time"

	"github.com/noah-isme/hw-eval-api/internal/evaluation"
	"github.com/noah-isme/hw-eval-api/internal/models"
)

// SelfEvalRequest is a student's answer for one rubric item.
type SelfEvalRequest struct {
	Score       *float64 `json:"score" validate:"required,gte=0,lte=1"`
	Explanation string   `json:"explanation" validate:"max=5000"`
}

// GraderEvalRequest is a grader's review of one self evaluation.
type GraderEvalRequest struct {
	Score       *float64 `json:"score" validate:"required,gte=0,lte=1"`
	Explanation string   `json:"explanation" validate:"max=5000"`
	Status      string   `json:"status" validate:"required,oneof=pending ready"`
}

// SelfEvalResponse serializes a self evaluation.
type SelfEvalResponse struct {
	Score       float64   `json:"score"`
	Explanation string    `json:"explanation"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// GraderEvalResponse serializes a grader evaluation.
type GraderEvalResponse struct {
	Score       float64   `json:"score"`
	Explanation string    `json:"explanation"`
	Status      string    `json:"status"`
	GraderID    uint      `json:"grader_id"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// EvaluationItemResponse is one rubric slot with its evaluations.
type EvaluationItemResponse struct {
	Sequence      int                 `json:"sequence"`
	Type          string              `json:"type"`
	RelativeValue float64             `json:"relative_value"`
	Prompt        string              `json:"prompt"`
	SelfEval      *SelfEvalResponse   `json:"self_eval"`
	GraderEval    *GraderEvalResponse `json:"grader_eval,omitempty"`
}

// EvaluationSummaryResponse carries the derived evaluation state. Grade and
// IsGraded are omitted when the caller may not see grading results yet.
type EvaluationSummaryResponse struct {
	ItemCount     int               `json:"item_count"`
	PointValue    float64           `json:"point_value"`
	SelfEvalCount int               `json:"self_eval_count"`
	EvalStatus    models.EvalStatus `json:"eval_status"`
	IsEvaluated   bool              `json:"is_evaluated"`
	IsGraded      *bool             `json:"is_graded,omitempty"`
	Grade         string            `json:"grade,omitempty"`
}

// EvaluationResponse is the full evaluation view of a submission.
type EvaluationResponse struct {
	SubmissionID uint                      `json:"submission_id"`
	Status       models.SubmissionStatus   `json:"status"`
	CanEval      bool                      `json:"can_eval"`
	Summary      EvaluationSummaryResponse `json:"summary"`
	Items        []EvaluationItemResponse  `json:"items"`
}

// SelfEvalSaveResponse reports a saved answer and its grading side effects.
type SelfEvalSaveResponse struct {
	Item            EvaluationItemResponse    `json:"item"`
	Summary         EvaluationSummaryResponse `json:"summary"`
	AutoGraded      bool                      `json:"auto_graded"`
	GraderRetracted bool                      `json:"grader_retracted"`
}

// GraderEvalSaveResponse reports a saved grader evaluation.
type GraderEvalSaveResponse struct {
	Item    EvaluationItemResponse    `json:"item"`
	Summary EvaluationSummaryResponse `json:"summary"`
}

// NewEvaluationItemResponse converts a cache slot into a DTO. The grader
// evaluation is included only when showGrades is set.
func NewEvaluationItemResponse(item evaluation.Item, showGrades bool) EvaluationItemResponse {
	response := EvaluationItemResponse{
		Sequence:      item.EvalItem.Sequence,
		Type:          string(item.EvalItem.Type),
		RelativeValue: item.EvalItem.RelativeValue,
		Prompt:        item.EvalItem.Prompt,
	}

	if item.SelfEval != nil {
		response.SelfEval = &SelfEvalResponse{
			Score:       item.SelfEval.Score,
			Explanation: item.SelfEval.Explanation,
			UpdatedAt:   item.SelfEval.UpdatedAt,
		}
	}

	if showGrades && item.GraderEval != nil {
		response.GraderEval = &GraderEvalResponse{
			Score:       item.GraderEval.Score,
			Explanation: item.GraderEval.Explanation,
			Status:      string(item.GraderEval.Status),
			GraderID:    item.GraderEval.GraderID,
			UpdatedAt:   item.GraderEval.UpdatedAt,
		}
	}

	return response
}

// NewEvaluationSummaryResponse converts the counters into a DTO.
func NewEvaluationSummaryResponse(summary models.EvalSummary, showGrades bool) EvaluationSummaryResponse {
	response := EvaluationSummaryResponse{
		ItemCount:     summary.ItemCount,
		PointValue:    summary.PointValue,
		SelfEvalCount: summary.SelfEvalCount,
		EvalStatus:    summary.EvalStatus(),
		IsEvaluated:   summary.IsEvaluated(),
	}
	if showGrades {
		graded := summary.IsGraded()
		response.IsGraded = &graded
		response.Grade = summary.GradeString()
	}
	return response
}

// NewEvaluationResponse builds the evaluation view from a materialized cache.
func NewEvaluationResponse(cache *evaluation.Cache, status models.SubmissionStatus, canEval, showGrades bool) EvaluationResponse {
	items := cache.Items()
	responses := make([]EvaluationItemResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, NewEvaluationItemResponse(item, showGrades))
	}

	return EvaluationResponse{
		SubmissionID: cache.Submission().ID,
		Status:       status,
		CanEval:      canEval,
		Summary:      NewEvaluationSummaryResponse(cache.Summary(), showGrades),
		Items:        responses,
	}
}
