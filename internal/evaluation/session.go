package evaluation

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/hw-eval-api/internal/models"
)

// Touch records one refresh of a submission's last-modified time.
type Touch struct {
	SubmissionID uint
	Action       string
	Sequence     int
	At           time.Time
}

// Manager opens evaluation sessions against the root database.
type Manager struct {
	db     *gorm.DB
	policy Policy
	logger zerolog.Logger
	now    func() time.Time
}

// NewManager constructs a session manager.
func NewManager(db *gorm.DB, policy Policy, logger zerolog.Logger) *Manager {
	return &Manager{
		db:     db,
		policy: policy,
		logger: logger.With().Str("component", "evaluation_session").Logger(),
		now:    time.Now,
	}
}

// SetClock replaces the time source used by new sessions.
func (m *Manager) SetClock(now func() time.Time) {
	m.now = now
}

// Policy returns the auto-grade policy applied by sessions.
func (m *Manager) Policy() Policy {
	return m.policy
}

// Begin starts a unit of work on behalf of user. Callers must end it with
// Commit or Rollback; deferring Rollback right after Begin is safe.
func (m *Manager) Begin(ctx context.Context, user models.User) (*Session, error) {
	tx := m.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("begin evaluation session: %w", tx.Error)
	}

	return &Session{
		ctx:         ctx,
		tx:          tx,
		store:       NewStore(tx),
		user:        user,
		policy:      m.policy,
		logger:      m.logger,
		now:         m.now,
		submissions: make(map[uint]*models.Submission),
		caches:      make(map[uint]*Cache),
		owners:      make(map[uint]uint),
	}, nil
}

// Session is a transaction-scoped unit of work with an identity map of
// submissions and their materialized caches.
type Session struct {
	ctx    context.Context
	tx     *gorm.DB
	store  Store
	user   models.User
	policy Policy
	logger zerolog.Logger
	now    func() time.Time

	submissions map[uint]*models.Submission
	caches      map[uint]*Cache
	// self eval id -> submission id
	owners  map[uint]uint
	touched []Touch
	closed  bool
}

// Context returns the request context the session was opened with.
func (s *Session) Context() context.Context {
	return s.ctx
}

// User is the current user of the session.
func (s *Session) User() models.User {
	return s.user
}

// Now reads the session clock.
func (s *Session) Now() time.Time {
	return s.now()
}

// Store exposes the transaction-bound repositories.
func (s *Session) Store() Store {
	return s.store
}

// Touched lists the submission touches performed so far, in order.
func (s *Session) Touched() []Touch {
	result := make([]Touch, len(s.touched))
	copy(result, s.touched)
	return result
}

// Commit makes the session's changes durable and discards its caches.
func (s *Session) Commit() error {
	if s.closed {
		return ErrSessionClosed
	}
	s.close()

	if err := s.tx.Commit().Error; err != nil {
		return fmt.Errorf("commit evaluation session: %w", err)
	}
	return nil
}

// Rollback abandons the session. It is a no-op on a closed session.
func (s *Session) Rollback() error {
	if s.closed {
		return nil
	}
	s.close()
	s.touched = nil

	if err := s.tx.Rollback().Error; err != nil {
		return fmt.Errorf("rollback evaluation session: %w", err)
	}
	return nil
}

func (s *Session) close() {
	s.closed = true
	s.caches = nil
	s.submissions = nil
	s.owners = nil
}

func (s *Session) ensureOpen() error {
	if s.closed {
		return ErrSessionClosed
	}
	return nil
}

// Submission returns the session's single in-memory copy of the submission.
func (s *Session) Submission(id uint) (*models.Submission, error) {
	if err := s.ensureOpen(); err != nil {
		return nil, err
	}
	if sub, ok := s.submissions[id]; ok {
		return sub, nil
	}

	loaded, err := s.store.Submissions.GetByID(s.ctx, id)
	if err != nil {
		return nil, err
	}
	return s.adopt(loaded), nil
}

// FindOrCreateSubmission returns the user's submission for the assignment,
// creating it when absent. created reports whether a row was inserted.
func (s *Session) FindOrCreateSubmission(assignment models.Assignment, user models.User) (*models.Submission, bool, error) {
	if err := s.ensureOpen(); err != nil {
		return nil, false, err
	}

	loaded, created, err := s.store.Submissions.FindOrCreate(s.ctx, assignment, user, s.now())
	if err != nil {
		return nil, false, err
	}
	return s.adopt(loaded), created, nil
}

func (s *Session) adopt(sub models.Submission) *models.Submission {
	if existing, ok := s.submissions[sub.ID]; ok {
		return existing
	}
	ptr := &sub
	s.submissions[sub.ID] = ptr
	return ptr
}

// Load materializes the submission's cache on first use and returns it.
// Later calls in the same session return the same cache.
func (s *Session) Load(sub *models.Submission) (*Cache, error) {
	if err := s.ensureOpen(); err != nil {
		return nil, err
	}
	sub = s.adopt(*sub)
	if cache, ok := s.caches[sub.ID]; ok {
		return cache, nil
	}

	cache, err := s.materialize(sub)
	if err != nil {
		return nil, err
	}
	s.caches[sub.ID] = cache
	return cache, nil
}

// Loaded reports whether the submission's cache has been materialized.
func (s *Session) Loaded(submissionID uint) bool {
	_, ok := s.caches[submissionID]
	return ok
}

func (s *Session) materialize(sub *models.Submission) (*Cache, error) {
	if sub.Assignment.Number != sub.AssignmentNumber {
		assignment, err := s.store.Assignments.GetByNumber(s.ctx, sub.AssignmentNumber)
		if err != nil {
			return nil, fmt.Errorf("load rubric: %w", err)
		}
		sub.Assignment = assignment
	}

	cache := newCache(sub)
	for i := range sub.Assignment.EvalItems {
		cache.addEvalItem(&sub.Assignment.EvalItems[i])
	}

	selfEvals, err := s.store.Evaluations.ListSelfEvals(s.ctx, sub.ID)
	if err != nil {
		return nil, fmt.Errorf("load self evals: %w", err)
	}
	graderEvals, err := s.store.Evaluations.ListGraderEvals(s.ctx, sub.ID)
	if err != nil {
		return nil, fmt.Errorf("load grader evals: %w", err)
	}

	bySelfEval := make(map[uint]*models.GraderEval, len(graderEvals))
	for i := range graderEvals {
		bySelfEval[graderEvals[i].SelfEvalID] = &graderEvals[i]
	}

	for i := range selfEvals {
		self := &selfEvals[i]
		slot := cache.slotForEvalItem(self.EvalItemID)
		if slot == nil {
			s.logger.Warn().
				Uint("submission_id", sub.ID).
				Uint("self_eval_id", self.ID).
				Msg("self eval refers to an item outside the rubric")
			continue
		}
		slot.SelfEval = self
		slot.GraderEval = bySelfEval[self.ID]
		s.owners[self.ID] = sub.ID
	}

	return cache, nil
}

// Summary returns the evaluation counters for the submission, from the cache
// when it is materialized and from aggregate queries otherwise.
func (s *Session) Summary(sub *models.Submission) (models.EvalSummary, error) {
	if err := s.ensureOpen(); err != nil {
		return models.EvalSummary{}, err
	}
	if cache, ok := s.caches[sub.ID]; ok {
		return cache.Summary(), nil
	}
	return s.store.Evaluations.Summary(s.ctx, sub.ID, sub.AssignmentNumber)
}
