package dto

import "github.com/noah-isme/hw-eval-api/internal/models"

// ExamGradeRequest records points earned out of points possible.
type ExamGradeRequest struct {
	Points   int `json:"points" validate:"gte=0"`
	Possible int `json:"possible" validate:"gte=0"`
}

// ExamGradeResponse serializes an exam grade with its percentage.
type ExamGradeResponse struct {
	Number   int    `json:"number"`
	Points   int    `json:"points"`
	Possible int    `json:"possible"`
	Percent  string `json:"percent"`
}

// NewExamGradeResponse converts an ExamGrade model into a DTO.
func NewExamGradeResponse(model models.ExamGrade) ExamGradeResponse {
	return ExamGradeResponse{
		Number:   model.Number,
		Points:   model.Points,
		Possible: model.Possible,
		Percent:  model.PctString(),
	}
}
