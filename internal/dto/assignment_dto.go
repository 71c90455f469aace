package dto

import (
	"time"

	"github.com/noah-isme/hw-eval-api/internal/models"
)

// EvalItemRequest describes one rubric item of a new assignment. Sequence is
// the item's position in the request.
type EvalItemRequest struct {
	Type          string  `json:"type" validate:"required,oneof=boolean scale response informational"`
	RelativeValue float64 `json:"relative_value" validate:"gte=0"`
	Prompt        string  `json:"prompt" validate:"required,max=2000"`
}

// AssignmentCreateRequest is the payload for creating an assignment with its rubric.
type AssignmentCreateRequest struct {
	Number    int               `json:"number" validate:"required,gt=0"`
	Title     string            `json:"title" validate:"required,min=1,max=200"`
	OpenDate  time.Time         `json:"open_date" validate:"required"`
	DueDate   time.Time         `json:"due_date" validate:"required,gtfield=OpenDate"`
	EvalDate  time.Time         `json:"eval_date" validate:"required,gtfield=DueDate"`
	EvalItems []EvalItemRequest `json:"eval_items" validate:"dive"`
}

// EvalItemResponse serializes a rubric item.
type EvalItemResponse struct {
	ID            uint    `json:"id"`
	Sequence      int     `json:"sequence"`
	Type          string  `json:"type"`
	RelativeValue float64 `json:"relative_value"`
	Prompt        string  `json:"prompt"`
}

// AssignmentResponse is returned when viewing an assignment.
type AssignmentResponse struct {
	Number     int                `json:"number"`
	Title      string             `json:"title"`
	OpenDate   time.Time          `json:"open_date"`
	DueDate    time.Time          `json:"due_date"`
	EvalDate   time.Time          `json:"eval_date"`
	PointValue float64            `json:"point_value"`
	EvalItems  []EvalItemResponse `json:"eval_items"`
}

// NewEvalItemResponse converts a rubric item model into a DTO.
func NewEvalItemResponse(model models.EvalItem) EvalItemResponse {
	return EvalItemResponse{
		ID:            model.ID,
		Sequence:      model.Sequence,
		Type:          string(model.Type),
		RelativeValue: model.RelativeValue,
		Prompt:        model.Prompt,
	}
}

// NewAssignmentResponse converts an Assignment model into a DTO.
func NewAssignmentResponse(model models.Assignment) AssignmentResponse {
	items := make([]EvalItemResponse, 0, len(model.EvalItems))
	for _, item := range model.EvalItems {
		items = append(items, NewEvalItemResponse(item))
	}

	return AssignmentResponse{
		Number:     model.Number,
		Title:      model.Title,
		OpenDate:   model.OpenDate,
		DueDate:    model.DueDate,
		EvalDate:   model.EvalDate,
		PointValue: model.PointValue(),
		EvalItems:  items,
	}
}
