package models

import "time"

// Lifecycle helpers expect Submission.Assignment to be loaded.

// Extended reports whether the submission's due date was pushed past the assignment's.
func (s Submission) Extended() bool {
	return s.DueDate.After(s.Assignment.DueDate)
}

// EvalExtended reports whether the self-evaluation deadline was extended.
func (s Submission) EvalExtended() bool {
	return s.EvalDate.After(s.Assignment.EvalDate)
}

// EffectiveDueDate is the later of the submission and assignment due dates.
func (s Submission) EffectiveDueDate() time.Time {
	return laterOf(s.DueDate, s.Assignment.DueDate)
}

// EffectiveEvalDate is the later of the submission and assignment eval dates.
func (s Submission) EffectiveEvalDate() time.Time {
	return laterOf(s.EvalDate, s.Assignment.EvalDate)
}

// Status derives the lifecycle stage from the assignment and submission dates.
func (s Submission) Status(now time.Time) SubmissionStatus {
	switch {
	case !now.After(s.Assignment.OpenDate):
		return StatusFuture
	case !now.After(s.Assignment.DueDate):
		return StatusOpen
	case !now.After(s.DueDate):
		return StatusExtended
	case !now.After(s.Assignment.EvalDate):
		return StatusSelfEval
	case !now.After(s.EvalDate):
		return StatusExtendedEval
	default:
		return StatusClosed
	}
}

// CanView allows admins and owners at any time.
func (s Submission) CanView(user User) bool {
	return user.CanAdmin() || s.IsOwner(user.ID)
}

// CanSubmit allows owners to upload until the effective due date.
func (s Submission) CanSubmit(user User, now time.Time) bool {
	if user.CanAdmin() {
		return true
	}
	return s.IsOwner(user.ID) && !now.After(s.EffectiveDueDate())
}

// CanEval allows owners to self-evaluate strictly after the due date and up to the eval date.
func (s Submission) CanEval(user User, now time.Time) bool {
	if user.CanAdmin() {
		return true
	}
	return s.IsOwner(user.ID) &&
		s.EffectiveDueDate().Before(now) &&
		!now.After(s.EffectiveEvalDate())
}

// CanViewEval allows owners to see evaluation results once the due date has passed.
func (s Submission) CanViewEval(user User, now time.Time) bool {
	if user.CanAdmin() {
		return true
	}
	return s.IsOwner(user.ID) && s.EffectiveDueDate().Before(now)
}

func laterOf(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}
