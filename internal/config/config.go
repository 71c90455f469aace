package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/noah-isme/hw-eval-api/internal/models"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName              string
	AppEnv               string
	AppPort              string
	LogLevel             string
	DatabaseDriver       string
	DatabaseURL          string
	RedisURL             string
	NATSURL              string
	NATSSubject          string
	JWTSecret            string
	GradebookCacheTTL    time.Duration
	AutoGradeScore       float64
	AutoGradeExplanation string
	JudgePattern         string
	EvaluationRateLimit  int
	CORSAllowOrigins     string
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("HWEVAL")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Homework Evaluation API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("nats.subject", "submission.touched")
	v.SetDefault("gradebook.cache_ttl", "5m")
	v.SetDefault("autograde.score", 0.1)
	v.SetDefault("autograde.explanation", "You chose no.")
	v.SetDefault("files.judge_pattern", models.DefaultJudgePattern)
	v.SetDefault("ratelimit.evaluation_per_minute", 60)
	v.SetDefault("cors.allow_origins", "*")

	ttlString := v.GetString("gradebook.cache_ttl")
	if ttlString == "" {
		ttlString = "5m"
	}

	ttl, err := time.ParseDuration(ttlString)
	if err != nil {
		return Config{}, fmt.Errorf("invalid gradebook cache ttl: %w", err)
	}

	cfg := Config{
		AppName:              v.GetString("app.name"),
		AppEnv:               v.GetString("app.env"),
		AppPort:              v.GetString("app.port"),
		LogLevel:             strings.ToLower(v.GetString("log.level")),
		DatabaseDriver:       strings.ToLower(v.GetString("database.driver")),
		DatabaseURL:          v.GetString("database.url"),
		RedisURL:             v.GetString("redis.url"),
		NATSURL:              v.GetString("nats.url"),
		NATSSubject:          v.GetString("nats.subject"),
		JWTSecret:            v.GetString("jwt.secret"),
		GradebookCacheTTL:    ttl,
		AutoGradeScore:       v.GetFloat64("autograde.score"),
		AutoGradeExplanation: v.GetString("autograde.explanation"),
		JudgePattern:         v.GetString("files.judge_pattern"),
		EvaluationRateLimit:  v.GetInt("ratelimit.evaluation_per_minute"),
		CORSAllowOrigins:     v.GetString("cors.allow_origins"),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	switch cfg.DatabaseDriver {
	case "postgres", "sqlite":
	default:
		return Config{}, fmt.Errorf("unsupported database driver %q", cfg.DatabaseDriver)
	}

	if cfg.AutoGradeScore < 0 || cfg.AutoGradeScore > 1 {
		return Config{}, fmt.Errorf("autograde score must be within [0, 1], got %v", cfg.AutoGradeScore)
	}

	if cfg.EvaluationRateLimit <= 0 {
		return Config{}, fmt.Errorf("evaluation rate limit must be positive")
	}

	if _, err := models.CompileJudgePattern(cfg.JudgePattern); err != nil {
		return Config{}, fmt.Errorf("invalid judge pattern: %w", err)
	}

	return cfg, nil
}
