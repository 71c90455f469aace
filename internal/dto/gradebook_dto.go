package dto

import (
	"time"

	"github.com/noah-isme/hw-eval-api/internal/models"
)

// GradebookEntry is one homework line of a user's gradebook.
type GradebookEntry struct {
	SubmissionID     uint                    `json:"submission_id"`
	AssignmentNumber int                     `json:"assignment_number"`
	Title            string                  `json:"title"`
	Owners           string                  `json:"owners"`
	Status           models.SubmissionStatus `json:"status"`
	EvalStatus       models.EvalStatus       `json:"eval_status"`
	IsGraded         bool                    `json:"is_graded"`
	Grade            string                  `json:"grade"`
	LastModified     time.Time               `json:"last_modified"`
}

// GradebookResponse lists a user's homework grades followed by exam grades.
type GradebookResponse struct {
	UserID      uint                `json:"user_id"`
	Homework    []GradebookEntry    `json:"homework"`
	Exams       []ExamGradeResponse `json:"exams"`
	GeneratedAt time.Time           `json:"generated_at"`
}
