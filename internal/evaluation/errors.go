package evaluation

import "errors"

var (
	// ErrSessionClosed is returned by any operation on a committed or rolled back session.
	ErrSessionClosed = errors.New("evaluation session closed")
	// ErrItemNotInRubric indicates the rubric item belongs to a different assignment.
	ErrItemNotInRubric = errors.New("eval item is not part of the submission's rubric")
	// ErrInvalidState indicates a record that is no longer the one held by the cache,
	// such as a grader evaluation whose self evaluation was retracted.
	ErrInvalidState = errors.New("evaluation record is not current")
	// ErrNotGradable indicates an informational rubric item, which never carries a grader evaluation.
	ErrNotGradable = errors.New("informational items are not graded")
)
