package evaluation

import (
	"errors"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/hw-eval-api/internal/models"
)

// Activity actions recorded when a submission is touched.
const (
	ActionSelfEvalCreated     = "self_eval.created"
	ActionSelfEvalSaved       = "self_eval.saved"
	ActionSelfEvalRetracted   = "self_eval.retracted"
	ActionGraderEvalCreated   = "grader_eval.created"
	ActionGraderEvalSaved     = "grader_eval.saved"
	ActionGraderEvalRetracted = "grader_eval.retracted"
)

// SaveResult describes the side effects of saving a self evaluation.
type SaveResult struct {
	SelfEval        *models.SelfEval
	GraderEval      *models.GraderEval
	AutoGraded      bool
	GraderRetracted bool
}

// GetOrCreateSelfEval returns the submission's self evaluation for item,
// creating an empty one when none exists.
func (s *Session) GetOrCreateSelfEval(sub *models.Submission, item *models.EvalItem) (*models.SelfEval, bool, error) {
	cache, err := s.Load(sub)
	if err != nil {
		return nil, false, err
	}
	if item.AssignmentNumber != cache.submission.AssignmentNumber {
		return nil, false, ErrItemNotInRubric
	}
	slot := cache.slotForEvalItem(item.ID)
	if slot == nil {
		return nil, false, ErrItemNotInRubric
	}

	if slot.SelfEval != nil {
		return slot.SelfEval, false, nil
	}

	self := &models.SelfEval{
		SubmissionID: cache.submission.ID,
		EvalItemID:   slot.EvalItem.ID,
	}
	if err := s.store.Evaluations.CreateSelfEval(s.ctx, self); err != nil {
		return nil, false, fmt.Errorf("create self eval: %w", err)
	}
	slot.SelfEval = self
	s.owners[self.ID] = cache.submission.ID

	if err := s.touch(cache.submission, ActionSelfEvalCreated, slot); err != nil {
		return nil, false, err
	}
	return self, true, nil
}

// RetractSelfEval deletes the self evaluation together with its grader
// evaluation. Retracting an already cleared slot does nothing.
func (s *Session) RetractSelfEval(self *models.SelfEval) error {
	cache, slot, err := s.slotOfSelfEval(self)
	if err != nil {
		return err
	}
	if slot == nil || slot.SelfEval == nil || slot.SelfEval.ID != self.ID {
		return nil
	}

	if err := s.store.Evaluations.DeleteSelfEval(s.ctx, self.ID); err != nil {
		return fmt.Errorf("delete self eval: %w", err)
	}
	slot.SelfEval = nil
	slot.GraderEval = nil

	return s.touch(cache.submission, ActionSelfEvalRetracted, slot)
}

// SaveSelfEval stores a new answer and applies the auto-grade rule: a boolean
// item answered 0 gets a ready grader evaluation from the policy, any other
// gradable item loses its grader evaluation so it is reviewed again.
func (s *Session) SaveSelfEval(self *models.SelfEval, score float64, explanation string) (SaveResult, error) {
	cache, slot, err := s.slotOfSelfEval(self)
	if err != nil {
		return SaveResult{}, err
	}
	if slot == nil || slot.SelfEval == nil || slot.SelfEval.ID != self.ID {
		return SaveResult{}, ErrInvalidState
	}

	current := slot.SelfEval
	current.Score = score
	current.Explanation = explanation
	if err := s.store.Evaluations.UpdateSelfEval(s.ctx, current); err != nil {
		return SaveResult{}, fmt.Errorf("update self eval: %w", err)
	}
	if self != current {
		*self = *current
	}

	result := SaveResult{SelfEval: current}
	switch {
	case slot.EvalItem.Type == models.EvalItemBoolean && score == 0:
		grader := slot.GraderEval
		if grader == nil {
			grader = &models.GraderEval{SelfEvalID: current.ID, GraderID: s.user.ID}
		}
		grader.Score = s.policy.AutoGradeScore
		grader.Explanation = s.policy.AutoGradeExplanation
		grader.Status = models.GraderEvalReady

		if grader.ID == 0 {
			err = s.store.Evaluations.CreateGraderEval(s.ctx, grader)
		} else {
			err = s.store.Evaluations.UpdateGraderEval(s.ctx, grader)
		}
		if err != nil {
			return SaveResult{}, fmt.Errorf("auto-grade: %w", err)
		}
		slot.GraderEval = grader
		result.GraderEval = grader
		result.AutoGraded = true

	case slot.EvalItem.Type != models.EvalItemInformational:
		if slot.GraderEval != nil {
			if err := s.store.Evaluations.DeleteGraderEval(s.ctx, slot.GraderEval.ID); err != nil {
				return SaveResult{}, fmt.Errorf("retract stale grader eval: %w", err)
			}
			slot.GraderEval = nil
			result.GraderRetracted = true
		}
	}

	if err := s.touch(cache.submission, ActionSelfEvalSaved, slot); err != nil {
		return SaveResult{}, err
	}
	return result, nil
}

// GetOrCreateGraderEval returns the grader evaluation for self, creating a
// pending one owned by grader when none exists.
func (s *Session) GetOrCreateGraderEval(self *models.SelfEval, grader models.User) (*models.GraderEval, bool, error) {
	cache, slot, err := s.slotOfSelfEval(self)
	if err != nil {
		return nil, false, err
	}
	if slot == nil || slot.SelfEval == nil || slot.SelfEval.ID != self.ID {
		return nil, false, ErrInvalidState
	}
	if slot.EvalItem.Type == models.EvalItemInformational {
		return nil, false, ErrNotGradable
	}

	if slot.GraderEval != nil {
		return slot.GraderEval, false, nil
	}

	created := &models.GraderEval{
		SelfEvalID: self.ID,
		GraderID:   grader.ID,
		Status:     models.GraderEvalPending,
	}
	if err := s.store.Evaluations.CreateGraderEval(s.ctx, created); err != nil {
		return nil, false, fmt.Errorf("create grader eval: %w", err)
	}
	slot.GraderEval = created

	if err := s.touch(cache.submission, ActionGraderEvalCreated, slot); err != nil {
		return nil, false, err
	}
	return created, true, nil
}

// SaveGraderEval records a grader's score, explanation and status.
func (s *Session) SaveGraderEval(graderEval *models.GraderEval, grader models.User, score float64, explanation string, status models.GraderEvalStatus) error {
	cache, slot, err := s.slotOfGraderEval(graderEval)
	if err != nil {
		return err
	}
	if slot == nil || slot.GraderEval == nil || slot.GraderEval.ID != graderEval.ID {
		return ErrInvalidState
	}

	current := slot.GraderEval
	current.GraderID = grader.ID
	current.Score = score
	current.Explanation = explanation
	current.Status = status
	if err := s.store.Evaluations.UpdateGraderEval(s.ctx, current); err != nil {
		return fmt.Errorf("update grader eval: %w", err)
	}
	if graderEval != current {
		*graderEval = *current
	}

	return s.touch(cache.submission, ActionGraderEvalSaved, slot)
}

// RetractGraderEval deletes the grader evaluation, leaving the self
// evaluation in place. Retracting an already cleared slot does nothing.
func (s *Session) RetractGraderEval(graderEval *models.GraderEval) error {
	cache, slot, err := s.slotOfGraderEval(graderEval)
	if err != nil {
		return err
	}
	if slot == nil || slot.GraderEval == nil || slot.GraderEval.ID != graderEval.ID {
		return nil
	}

	if err := s.store.Evaluations.DeleteGraderEval(s.ctx, graderEval.ID); err != nil {
		return fmt.Errorf("delete grader eval: %w", err)
	}
	slot.GraderEval = nil

	return s.touch(cache.submission, ActionGraderEvalRetracted, slot)
}

func (s *Session) slotOfSelfEval(self *models.SelfEval) (*Cache, *Item, error) {
	if err := s.ensureOpen(); err != nil {
		return nil, nil, err
	}
	sub, err := s.Submission(self.SubmissionID)
	if err != nil {
		return nil, nil, err
	}
	cache, err := s.Load(sub)
	if err != nil {
		return nil, nil, err
	}
	return cache, cache.slotForEvalItem(self.EvalItemID), nil
}

// slotOfGraderEval returns a nil slot when the parent self evaluation no
// longer exists.
func (s *Session) slotOfGraderEval(graderEval *models.GraderEval) (*Cache, *Item, error) {
	if err := s.ensureOpen(); err != nil {
		return nil, nil, err
	}

	submissionID, ok := s.owners[graderEval.SelfEvalID]
	if !ok {
		parent, err := s.store.Evaluations.GetSelfEval(s.ctx, graderEval.SelfEvalID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, nil
		}
		if err != nil {
			return nil, nil, err
		}
		submissionID = parent.SubmissionID
	}

	sub, err := s.Submission(submissionID)
	if err != nil {
		return nil, nil, err
	}
	cache, err := s.Load(sub)
	if err != nil {
		return nil, nil, err
	}

	for i := range cache.items {
		slot := &cache.items[i]
		if slot.SelfEval != nil && slot.SelfEval.ID == graderEval.SelfEvalID {
			return cache, slot, nil
		}
	}
	return cache, nil, nil
}

// touch refreshes the submission's last-modified time and writes the audit entry.
func (s *Session) touch(sub *models.Submission, action string, slot *Item) error {
	now := s.now()
	sub.Touch(now)

	if err := s.store.Submissions.Touch(s.ctx, sub.ID, now); err != nil {
		return fmt.Errorf("touch submission: %w", err)
	}

	sequence := slot.EvalItem.Sequence
	role := s.user.Role
	if role == "" {
		role = models.RoleStudent
	}
	entry := models.ActivityLog{
		ActorID:      s.user.ID,
		ActorRole:    role,
		Action:       action,
		SubmissionID: sub.ID,
		Metadata: datatypes.JSONMap{
			"sequence":      sequence,
			"eval_item_id":  slot.EvalItem.ID,
			"last_modified": now.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		},
		CreatedAt: now,
	}
	if err := s.store.Activity.Create(s.ctx, &entry); err != nil {
		return fmt.Errorf("record activity: %w", err)
	}

	s.touched = append(s.touched, Touch{
		SubmissionID: sub.ID,
		Action:       action,
		Sequence:     sequence,
		At:           now,
	})

	s.logger.Debug().
		Uint("submission_id", sub.ID).
		Int("sequence", sequence).
		Str("action", action).
		Msg("submission touched")
	return nil
}
