package service

import (
	"errors"

	"gorm.io/gorm"
)

var (
	// ErrForbidden indicates the current user may not perform the operation now.
	ErrForbidden = errors.New("operation not permitted")
	// ErrAssignmentNotFound indicates the assignment number is unknown.
	ErrAssignmentNotFound = errors.New("assignment not found")
	// ErrAssignmentExists indicates an assignment with the same number already exists.
	ErrAssignmentExists = errors.New("assignment already exists")
	// ErrSubmissionNotFound indicates the submission was not located.
	ErrSubmissionNotFound = errors.New("submission not found")
	// ErrEvalItemNotFound indicates the rubric has no item at the requested sequence.
	ErrEvalItemNotFound = errors.New("eval item not found")
	// ErrSelfEvalNotFound indicates there is no self evaluation to act on.
	ErrSelfEvalNotFound = errors.New("self eval not found")
	// ErrGraderEvalNotFound indicates there is no grader evaluation to act on.
	ErrGraderEvalNotFound = errors.New("grader eval not found")
	// ErrUserNotFound indicates the user was not located.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidScore indicates the score is not allowed for the item type.
	ErrInvalidScore = errors.New("score not valid for item type")
	// ErrInvalidRubric indicates a rubric item with an unknown type.
	ErrInvalidRubric = errors.New("invalid rubric")
)

func notFound(err, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}
