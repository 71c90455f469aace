package handler_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/hw-eval-api/internal/config"
	"github.com/noah-isme/hw-eval-api/internal/database/dbtest"
	"github.com/noah-isme/hw-eval-api/internal/evaluation"
	"github.com/noah-isme/hw-eval-api/internal/events"
	"github.com/noah-isme/hw-eval-api/internal/handler"
	"github.com/noah-isme/hw-eval-api/internal/middleware"
	"github.com/noah-isme/hw-eval-api/internal/models"
	"github.com/noah-isme/hw-eval-api/internal/repository"
	"github.com/noah-isme/hw-eval-api/internal/router"
	"github.com/noah-isme/hw-eval-api/internal/service"
)

const testSecret = "handler-secret"

type harness struct {
	app *fiber.App
	db  *gorm.DB

	student models.User
	other   models.User
	grader  models.User
	admin   models.User
}

// newHarness wires the full HTTP stack over SQLite and miniredis with the
// real clock. Assignments created by the harness are one hour past due.
func newHarness(t *testing.T) *harness {
	t.Helper()

	mini, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mini.Close)
	cache := redis.NewClient(&redis.Options{Addr: mini.Addr()})
	t.Cleanup(func() { _ = cache.Close() })

	db := dbtest.New(t)
	validate := validator.New(validator.WithRequiredStructEnabled())
	logger := zerolog.New(io.Discard)

	users := repository.NewUserRepository(db)
	assignments := repository.NewAssignmentRepository(db)
	submissions := repository.NewSubmissionRepository(db)
	evaluations := repository.NewEvaluationRepository(db)
	exams := repository.NewExamGradeRepository(db)

	manager := evaluation.NewManager(db, evaluation.DefaultPolicy(), logger)
	gradebook := service.NewGradebookService(users, submissions, evaluations, exams, cache, time.Minute, logger)
	userService := service.NewUserService(users, validate, logger)

	cfg := config.Config{AppName: "hw-eval-test", AppEnv: "test", JWTSecret: testSecret}
	sqlDB, err := db.DB()
	require.NoError(t, err)

	app := fiber.New()
	middleware.Register(app, middleware.Config{Logger: logger})
	router.Register(app, cfg, router.Dependencies{
		HealthHandler:     handler.NewHealthHandler(cfg, sqlDB),
		UserHandler:       handler.NewUserHandler(userService, logger),
		AssignmentHandler: handler.NewAssignmentHandler(service.NewAssignmentService(assignments, validate, logger), logger),
		SubmissionHandler: handler.NewSubmissionHandler(service.NewSubmissionService(service.SubmissionDependencies{
			Manager:     manager,
			Assignments: assignments,
			Submissions: submissions,
			Users:       users,
			Files:       repository.NewSourceFileRepository(db),
			Gradebook:   gradebook,
			Validator:   validate,
		}, logger), logger),
		EvaluationHandler: handler.NewEvaluationHandler(service.NewEvaluationService(manager, validate, gradebook, events.NewNATSPublisher(nil, "", logger), logger), logger),
		ExamGradeHandler:  handler.NewExamGradeHandler(service.NewExamGradeService(exams, users, gradebook, validate, logger), logger),
		GradebookHandler:  handler.NewGradebookHandler(gradebook, logger),
		ActivityHandler:   handler.NewActivityHandler(service.NewActivityService(repository.NewActivityLogRepository(db), validate, logger), logger),
		Auth: []fiber.Handler{
			middleware.JWTProtected(testSecret),
			middleware.CurrentUser(userService),
		},
		EvaluationRateLimit: 100,
	})

	return &harness{
		app:     app,
		db:      db,
		student: dbtest.CreateUser(t, db, "alice", models.RoleStudent),
		other:   dbtest.CreateUser(t, db, "bob", models.RoleStudent),
		grader:  dbtest.CreateUser(t, db, "gus", models.RoleGrader),
		admin:   dbtest.CreateUser(t, db, "root", models.RoleAdmin),
	}
}

func (h *harness) assignment(t *testing.T, number int, items ...models.EvalItem) models.Assignment {
	t.Helper()
	due := time.Now().Add(-time.Hour)
	return dbtest.CreateAssignment(t, h.db, number, due, due.Add(48*time.Hour), items...)
}

type envelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Details map[string]string `json:"details"`
}

func (h *harness) do(t *testing.T, user *models.User, method, path string, body interface{}) (int, envelope, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if user != nil {
		token, err := middleware.IssueToken(testSecret, user.ID, nil)
		require.NoError(t, err)
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	resp, err := h.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var env envelope
	require.NoError(t, json.Unmarshal(raw, &env))
	return resp.StatusCode, env, raw
}

func decodeData(t *testing.T, env envelope, target interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, target))
}
