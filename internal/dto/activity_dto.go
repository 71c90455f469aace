package dto

import (
	"time"

	"github.com/noah-isme/hw-eval-api/internal/models"
)

// ActivityListRequest holds filters for the audit feed.
type ActivityListRequest struct {
	Page         int    `query:"page" validate:"omitempty,gte=1"`
	PageSize     int    `query:"page_size" validate:"omitempty,gte=1,lte=100"`
	SubmissionID uint   `query:"submission_id" validate:"omitempty,gte=1"`
	ActorID      uint   `query:"actor_id" validate:"omitempty,gte=1"`
	Action       string `query:"action" validate:"omitempty,max=64"`
}

// ActivityResponse serializes one audit entry.
type ActivityResponse struct {
	ID           uint                   `json:"id"`
	ActorID      uint                   `json:"actor_id"`
	ActorRole    string                 `json:"actor_role"`
	Action       string                 `json:"action"`
	SubmissionID uint                   `json:"submission_id"`
	Metadata     map[string]interface{} `json:"metadata"`
	CreatedAt    time.Time              `json:"created_at"`
}

// PaginationMeta summarizes a paged listing.
type PaginationMeta struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalItems int64 `json:"total_items"`
	TotalPages int   `json:"total_pages"`
}

// ActivityListResponse is one page of the audit feed.
type ActivityListResponse struct {
	Items      []ActivityResponse `json:"items"`
	Pagination PaginationMeta     `json:"pagination"`
}

// NewActivityResponse converts an ActivityLog model into a DTO.
func NewActivityResponse(model models.ActivityLog) ActivityResponse {
	metadata := map[string]interface{}{}
	for key, value := range model.Metadata {
		metadata[key] = value
	}

	return ActivityResponse{
		ID:           model.ID,
		ActorID:      model.ActorID,
		ActorRole:    model.ActorRole,
		Action:       model.Action,
		SubmissionID: model.SubmissionID,
		Metadata:     metadata,
		CreatedAt:    model.CreatedAt,
	}
}
