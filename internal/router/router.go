package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/hw-eval-api/internal/config"
	"github.com/noah-isme/hw-eval-api/internal/handler"
	"github.com/noah-isme/hw-eval-api/internal/middleware"
	"github.com/noah-isme/hw-eval-api/internal/models"
	"github.com/noah-isme/hw-eval-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	HealthHandler     *handler.HealthHandler
	UserHandler       *handler.UserHandler
	AssignmentHandler *handler.AssignmentHandler
	SubmissionHandler *handler.SubmissionHandler
	EvaluationHandler *handler.EvaluationHandler
	ExamGradeHandler  *handler.ExamGradeHandler
	GradebookHandler  *handler.GradebookHandler
	ActivityHandler   *handler.ActivityHandler
	// Auth authenticates the request and stores the current user, usually
	// JWTProtected followed by CurrentUser.
	Auth []fiber.Handler
	// EvaluationRateLimit bounds evaluation writes per user per minute.
	EvaluationRateLimit int
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})

	health := deps.HealthHandler
	if health == nil {
		health = handler.NewHealthHandler(cfg, nil)
	}
	health.Register(api)
	api.Get("/metrics", observability.MetricsHandler())

	protected := api.Group("", deps.Auth...)

	if deps.UserHandler != nil {
		deps.UserHandler.Register(protected)
	}
	if deps.GradebookHandler != nil {
		deps.GradebookHandler.Register(protected)
	}

	assignments := protected.Group("/assignments")
	if deps.AssignmentHandler != nil {
		deps.AssignmentHandler.Register(assignments)
	}

	submissions := protected.Group("/submissions")
	if deps.SubmissionHandler != nil {
		deps.SubmissionHandler.RegisterAssignmentRoutes(assignments)
		deps.SubmissionHandler.Register(submissions)
	}
	if deps.EvaluationHandler != nil {
		deps.EvaluationHandler.Register(submissions, middleware.RateLimit("evaluation", deps.EvaluationRateLimit, time.Minute))
	}

	users := protected.Group("/users")
	if deps.UserHandler != nil {
		deps.UserHandler.RegisterUserRoutes(users)
	}
	if deps.ExamGradeHandler != nil {
		deps.ExamGradeHandler.Register(users)
	}
	if deps.GradebookHandler != nil {
		deps.GradebookHandler.RegisterUserRoutes(users)
	}

	if deps.ActivityHandler != nil {
		activity := protected.Group("/activity", middleware.RequireRole(models.RoleGrader, models.RoleAdmin))
		deps.ActivityHandler.Register(activity)
	}
}
