package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HWEVAL_JWT_SECRET", "secret")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "postgres", cfg.DatabaseDriver)
	require.Equal(t, ":8080", cfg.HTTPAddress())
	require.Equal(t, 5*time.Minute, cfg.GradebookCacheTTL)
	require.Equal(t, 0.1, cfg.AutoGradeScore)
	require.Equal(t, "You chose no.", cfg.AutoGradeExplanation)
	require.Equal(t, `.*\.out`, cfg.JudgePattern)
	require.Equal(t, "submission.touched", cfg.NATSSubject)
	require.Equal(t, 60, cfg.EvaluationRateLimit)
	require.Equal(t, "*", cfg.CORSAllowOrigins)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("HWEVAL_JWT_SECRET", "secret")
	t.Setenv("HWEVAL_APP_PORT", ":9090")
	t.Setenv("HWEVAL_DATABASE_DRIVER", "SQLite")
	t.Setenv("HWEVAL_AUTOGRADE_SCORE", "0.25")
	t.Setenv("HWEVAL_GRADEBOOK_CACHE_TTL", "30s")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.HTTPAddress())
	require.Equal(t, "sqlite", cfg.DatabaseDriver)
	require.Equal(t, 0.25, cfg.AutoGradeScore)
	require.Equal(t, 30*time.Second, cfg.GradebookCacheTTL)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]map[string]string{
		"missing secret": {},
		"driver":         {"HWEVAL_JWT_SECRET": "s", "HWEVAL_DATABASE_DRIVER": "mysql"},
		"score":          {"HWEVAL_JWT_SECRET": "s", "HWEVAL_AUTOGRADE_SCORE": "1.5"},
		"pattern":        {"HWEVAL_JWT_SECRET": "s", "HWEVAL_FILES_JUDGE_PATTERN": "("},
		"ttl":            {"HWEVAL_JWT_SECRET": "s", "HWEVAL_GRADEBOOK_CACHE_TTL": "soon"},
		"rate limit":     {"HWEVAL_JWT_SECRET": "s", "HWEVAL_RATELIMIT_EVALUATION_PER_MINUTE": "0"},
	}

	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv("HWEVAL_JWT_SECRET", "")
			for key, value := range env {
				t.Setenv(key, value)
			}
			_, err := Load()
			require.Error(t, err)
		})
	}
}
