package service

import (
	"context"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/hw-eval-api/internal/database/dbtest"
	"github.com/noah-isme/hw-eval-api/internal/evaluation"
	"github.com/noah-isme/hw-eval-api/internal/events"
	"github.com/noah-isme/hw-eval-api/internal/models"
	"github.com/noah-isme/hw-eval-api/internal/repository"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.SubmissionTouched
}

func (p *recordingPublisher) PublishSubmissionTouched(_ context.Context, event events.SubmissionTouched) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) recorded() []events.SubmissionTouched {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.SubmissionTouched(nil), p.events...)
}

type testEnv struct {
	db        *gorm.DB
	mini      *miniredis.Miniredis
	redis     *redis.Client
	validate  *validator.Validate
	manager   *evaluation.Manager
	publisher *recordingPublisher
	gradebook GradebookService

	due time.Time
	now time.Time

	student models.User
	other   models.User
	grader  models.User
	admin   models.User
}

// newTestEnv seeds four users and places the clock one hour after the due
// date, inside the self-evaluation window.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	mini, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mini.Close)

	db := dbtest.New(t)
	env := &testEnv{
		db:        db,
		mini:      mini,
		redis:     redis.NewClient(&redis.Options{Addr: mini.Addr()}),
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		publisher: &recordingPublisher{},
		due:       time.Date(2026, time.May, 4, 23, 59, 0, 0, time.UTC),
	}
	t.Cleanup(func() { _ = env.redis.Close() })
	env.now = env.due.Add(time.Hour)

	env.manager = evaluation.NewManager(db, evaluation.DefaultPolicy(), zerolog.Nop())
	env.manager.SetClock(env.clock)

	gradebook := NewGradebookService(
		repository.NewUserRepository(db),
		repository.NewSubmissionRepository(db),
		repository.NewEvaluationRepository(db),
		repository.NewExamGradeRepository(db),
		env.redis,
		time.Minute,
		zerolog.Nop(),
	)
	gradebook.(*gradebookService).now = env.clock
	env.gradebook = gradebook

	env.student = dbtest.CreateUser(t, db, "alice", models.RoleStudent)
	env.other = dbtest.CreateUser(t, db, "bob", models.RoleStudent)
	env.grader = dbtest.CreateUser(t, db, "gus", models.RoleGrader)
	env.admin = dbtest.CreateUser(t, db, "root", models.RoleAdmin)
	return env
}

func (e *testEnv) clock() time.Time {
	return e.now
}

func (e *testEnv) assignment(t *testing.T, number int, items ...models.EvalItem) models.Assignment {
	t.Helper()
	return dbtest.CreateAssignment(t, e.db, number, e.due, e.due.Add(48*time.Hour), items...)
}

func (e *testEnv) submission(t *testing.T, assignment models.Assignment, user models.User) models.Submission {
	t.Helper()
	sub, _, err := repository.NewSubmissionRepository(e.db).FindOrCreate(context.Background(), assignment, user, e.now)
	require.NoError(t, err)
	return sub
}

func (e *testEnv) evaluationService() EvaluationService {
	return NewEvaluationService(e.manager, e.validate, e.gradebook, e.publisher, zerolog.Nop())
}

func score(v float64) *float64 {
	return &v
}
