package dto

import (
	"time"

	"github.com/noah-isme/hw-eval-api/internal/models"
)

// SubmissionExtensionRequest lets an administrator move a submission's dates
// or attach a partner. Omitted fields are left unchanged; partner_id 0 removes
// the partner.
type SubmissionExtensionRequest struct {
	DueDate   *time.Time `json:"due_date"`
	EvalDate  *time.Time `json:"eval_date"`
	PartnerID *uint      `json:"partner_id"`
}

// SourceFileResponse serializes one uploaded file.
type SourceFileResponse struct {
	Name      string `json:"name"`
	ByteCount int64  `json:"byte_count"`
	LineCount int    `json:"line_count"`
}

// SubmissionResponse is returned to API clients when viewing submissions.
type SubmissionResponse struct {
	ID               uint                    `json:"id"`
	AssignmentNumber int                     `json:"assignment_number"`
	Owners           string                  `json:"owners"`
	Status           models.SubmissionStatus `json:"status"`
	DueDate          time.Time               `json:"due_date"`
	EvalDate         time.Time               `json:"eval_date"`
	Extended         bool                    `json:"extended"`
	EvalExtended     bool                    `json:"eval_extended"`
	LastModified     time.Time               `json:"last_modified"`
	CanSubmit        bool                    `json:"can_submit"`
	CanEval          bool                    `json:"can_eval"`
	Files            []SourceFileResponse    `json:"files"`
}

// NewSubmissionResponse converts a Submission model into a DTO as seen by user at now.
// files must already be in display order.
func NewSubmissionResponse(model models.Submission, files []models.SourceFile, user models.User, now time.Time) SubmissionResponse {
	fileResponses := make([]SourceFileResponse, 0, len(files))
	for _, file := range files {
		fileResponses = append(fileResponses, SourceFileResponse{
			Name:      file.Name,
			ByteCount: file.ByteCount,
			LineCount: file.LineCount,
		})
	}

	return SubmissionResponse{
		ID:               model.ID,
		AssignmentNumber: model.AssignmentNumber,
		Owners:           model.OwnerString(),
		Status:           model.Status(now),
		DueDate:          model.EffectiveDueDate(),
		EvalDate:         model.EffectiveEvalDate(),
		Extended:         model.Extended(),
		EvalExtended:     model.EvalExtended(),
		LastModified:     model.LastModified,
		CanSubmit:        model.CanSubmit(user, now),
		CanEval:          model.CanEval(user, now),
		Files:            fileResponses,
	}
}

// SourceFileCreateRequest uploads one source file as text.
type SourceFileCreateRequest struct {
	Name    string `json:"name" validate:"required,max=255"`
	Content string `json:"content" validate:"max=1048576"`
}
