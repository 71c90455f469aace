package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/hw-eval-api/internal/dto"
	"github.com/noah-isme/hw-eval-api/internal/repository"
)

func TestExamGradeServiceSetAndList(t *testing.T) {
	env := newTestEnv(t)
	svc := NewExamGradeService(repository.NewExamGradeRepository(env.db), repository.NewUserRepository(env.db), env.gradebook, env.validate, zerolog.Nop())
	ctx := context.Background()

	_, err := svc.Set(ctx, env.grader, env.student.ID, 1, dto.ExamGradeRequest{Points: 10, Possible: 20})
	require.ErrorIs(t, err, ErrForbidden)

	_, err = env.gradebook.Get(ctx, env.student, env.student.ID)
	require.NoError(t, err)

	grade, err := svc.Set(ctx, env.admin, env.student.ID, 2, dto.ExamGradeRequest{Points: 10, Possible: 20})
	require.NoError(t, err)
	require.Equal(t, "50.0%", grade.Percent)
	require.False(t, env.mini.Exists(gradebookCacheKey(env.student.ID)))

	_, err = svc.Set(ctx, env.admin, env.student.ID, 1, dto.ExamGradeRequest{})
	require.NoError(t, err)

	grades, err := svc.List(ctx, env.student, env.student.ID)
	require.NoError(t, err)
	require.Len(t, grades, 2)
	require.Equal(t, 1, grades[0].Number)
	require.Equal(t, "N/A", grades[0].Percent)

	_, err = svc.List(ctx, env.other, env.student.ID)
	require.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Set(ctx, env.admin, 999, 1, dto.ExamGradeRequest{})
	require.ErrorIs(t, err, ErrUserNotFound)
}
