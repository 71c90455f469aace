package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/hw-eval-api/internal/config"
	"github.com/noah-isme/hw-eval-api/internal/database"
	"github.com/noah-isme/hw-eval-api/internal/evaluation"
	"github.com/noah-isme/hw-eval-api/internal/events"
	"github.com/noah-isme/hw-eval-api/internal/handler"
	"github.com/noah-isme/hw-eval-api/internal/middleware"
	"github.com/noah-isme/hw-eval-api/internal/models"
	"github.com/noah-isme/hw-eval-api/internal/repository"
	"github.com/noah-isme/hw-eval-api/internal/router"
	"github.com/noah-isme/hw-eval-api/internal/service"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger = logger.Level(level).With().Str("service", cfg.AppName).Logger()

	db, err := database.Connect(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.DatabaseDriver).Msg("failed to connect to database")
	}
	if err := database.Migrate(db); err != nil {
		logger.Fatal().Err(err).Msg("failed to migrate database")
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to access database pool")
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to redis")
		}
	} else {
		logger.Warn().Msg("redis url not set, gradebook cache disabled")
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = database.ConnectNATS(cfg.NATSURL, cfg.AppName)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to nats")
		}
	}

	judge, err := models.CompileJudgePattern(cfg.JudgePattern)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid judge pattern")
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	userRepo := repository.NewUserRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	evaluationRepo := repository.NewEvaluationRepository(db)
	examGradeRepo := repository.NewExamGradeRepository(db)
	sourceFileRepo := repository.NewSourceFileRepository(db)
	activityRepo := repository.NewActivityLogRepository(db)

	manager := evaluation.NewManager(db, evaluation.Policy{
		AutoGradeScore:       cfg.AutoGradeScore,
		AutoGradeExplanation: cfg.AutoGradeExplanation,
	}, logger)
	publisher := events.NewNATSPublisher(natsConn, cfg.NATSSubject, logger)

	gradebookService := service.NewGradebookService(userRepo, submissionRepo, evaluationRepo, examGradeRepo, redisClient, cfg.GradebookCacheTTL, logger)
	userService := service.NewUserService(userRepo, validate, logger)
	assignmentService := service.NewAssignmentService(assignmentRepo, validate, logger)
	submissionService := service.NewSubmissionService(service.SubmissionDependencies{
		Manager:     manager,
		Assignments: assignmentRepo,
		Submissions: submissionRepo,
		Users:       userRepo,
		Files:       sourceFileRepo,
		Gradebook:   gradebookService,
		Validator:   validate,
		Judge:       judge,
	}, logger)
	evaluationService := service.NewEvaluationService(manager, validate, gradebookService, publisher, logger)
	examGradeService := service.NewExamGradeService(examGradeRepo, userRepo, gradebookService, validate, logger)
	activityService := service.NewActivityService(activityRepo, validate, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	})

	middleware.Register(app, middleware.Config{Logger: logger, AllowOrigins: cfg.CORSAllowOrigins})
	router.Register(app, cfg, router.Dependencies{
		HealthHandler:     handler.NewHealthHandler(cfg, sqlDB),
		UserHandler:       handler.NewUserHandler(userService, logger),
		AssignmentHandler: handler.NewAssignmentHandler(assignmentService, logger),
		SubmissionHandler: handler.NewSubmissionHandler(submissionService, logger),
		EvaluationHandler: handler.NewEvaluationHandler(evaluationService, logger),
		ExamGradeHandler:  handler.NewExamGradeHandler(examGradeService, logger),
		GradebookHandler:  handler.NewGradebookHandler(gradebookService, logger),
		ActivityHandler:   handler.NewActivityHandler(activityService, logger),
		Auth: []fiber.Handler{
			middleware.JWTProtected(cfg.JWTSecret),
			middleware.CurrentUser(userService),
		},
		EvaluationRateLimit: cfg.EvaluationRateLimit,
	})

	go func() {
		logger.Info().Str("addr", cfg.HTTPAddress()).Str("env", cfg.AppEnv).Msg("http server starting")
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	waitForShutdown(app, logger)

	if natsConn != nil {
		if err := natsConn.Drain(); err != nil {
			logger.Warn().Err(err).Msg("failed to drain nats connection")
		}
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}
	_ = sqlDB.Close()
}

func waitForShutdown(app *fiber.App, logger zerolog.Logger) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	logger.Info().Msg("server stopped")
}
