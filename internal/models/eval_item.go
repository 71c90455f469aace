package models

// EvalItemType tags how a rubric item is answered.
type EvalItemType string

const (
	EvalItemBoolean       EvalItemType = "boolean"
	EvalItemScale         EvalItemType = "scale"
	EvalItemResponse      EvalItemType = "response"
	EvalItemInformational EvalItemType = "informational"
)

// Valid reports whether t is one of the known item types.
func (t EvalItemType) Valid() bool {
	switch t {
	case EvalItemBoolean, EvalItemScale, EvalItemResponse, EvalItemInformational:
		return true
	default:
		return false
	}
}

// EvalItem is one rubric criterion of an assignment.
type EvalItem struct {
	ID               uint         `gorm:"primaryKey" json:"id"`
	AssignmentNumber int          `gorm:"not null;uniqueIndex:idx_eval_items_assignment_sequence" json:"assignment_number"`
	Sequence         int          `gorm:"not null;uniqueIndex:idx_eval_items_assignment_sequence" json:"sequence"`
	RelativeValue    float64      `gorm:"not null;default:0" json:"relative_value"`
	Type             EvalItemType `gorm:"size:16;not null" json:"type"`
	Prompt           string       `gorm:"type:text" json:"prompt"`
}
