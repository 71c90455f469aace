package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// SubmissionStatus is the lifecycle stage of a submission at a point in time.
type SubmissionStatus int

const (
	StatusFuture SubmissionStatus = iota
	StatusOpen
	StatusExtended
	StatusSelfEval
	StatusExtendedEval
	StatusClosed
)

var submissionStatusNames = [...]string{"future", "open", "extended", "self_eval", "extended_eval", "closed"}

func (s SubmissionStatus) String() string {
	if s < StatusFuture || s > StatusClosed {
		return "unknown"
	}
	return submissionStatusNames[s]
}

// MarshalJSON encodes the status by name.
func (s SubmissionStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes a status name.
func (s *SubmissionStatus) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	for i, candidate := range submissionStatusNames {
		if candidate == name {
			*s = SubmissionStatus(i)
			return nil
		}
	}
	return fmt.Errorf("unknown submission status %q", name)
}

// Submission is one user's (or pair's) work on an assignment.
type Submission struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	AssignmentNumber int        `gorm:"not null;uniqueIndex:idx_submissions_assignment_user1" json:"assignment_number"`
	User1ID          uint       `gorm:"not null;uniqueIndex:idx_submissions_assignment_user1" json:"user1_id"`
	User2ID          *uint      `gorm:"index" json:"user2_id"`
	DueDate          time.Time  `gorm:"not null" json:"due_date"`
	EvalDate         time.Time  `gorm:"not null" json:"eval_date"`
	LastModified     time.Time  `gorm:"not null" json:"last_modified"`
	CreatedAt        time.Time  `json:"created_at"`
	Assignment       Assignment `gorm:"foreignKey:AssignmentNumber;references:Number;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	User1            User       `gorm:"foreignKey:User1ID" json:"-"`
	User2            *User      `gorm:"foreignKey:User2ID" json:"-"`
}

// NewSubmission starts a submission whose dates mirror the assignment's.
func NewSubmission(user User, assignment Assignment, now time.Time) Submission {
	return Submission{
		AssignmentNumber: assignment.Number,
		User1ID:          user.ID,
		DueDate:          assignment.DueDate,
		EvalDate:         assignment.EvalDate,
		LastModified:     now,
		Assignment:       assignment,
		User1:            user,
	}
}

// IsOwner reports whether the user is one of the submission's authors.
func (s Submission) IsOwner(userID uint) bool {
	if userID == 0 {
		return false
	}
	return s.User1ID == userID || (s.User2ID != nil && *s.User2ID == userID)
}

// OwnerString joins the owners' names, e.g. "alice+bob".
func (s Submission) OwnerString() string {
	result := s.User1.Name
	if s.User2 != nil {
		result += "+" + s.User2.Name
	}
	return result
}

// Touch refreshes the last-modified timestamp.
func (s *Submission) Touch(now time.Time) {
	s.LastModified = now
}
