package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/hw-eval-api/internal/database/dbtest"
	"github.com/noah-isme/hw-eval-api/internal/dto"
	"github.com/noah-isme/hw-eval-api/internal/models"
	"github.com/noah-isme/hw-eval-api/internal/repository"
)

func newSubmissionService(env *testEnv) SubmissionService {
	svc := NewSubmissionService(SubmissionDependencies{
		Manager:     env.manager,
		Assignments: repository.NewAssignmentRepository(env.db),
		Submissions: repository.NewSubmissionRepository(env.db),
		Users:       repository.NewUserRepository(env.db),
		Files:       repository.NewSourceFileRepository(env.db),
		Gradebook:   env.gradebook,
		Validator:   env.validate,
	}, zerolog.Nop())
	svc.(*submissionService).now = env.clock
	return svc
}

func TestStartFindsOrCreatesSubmission(t *testing.T) {
	env := newTestEnv(t)
	env.assignment(t, 1, dbtest.Item(models.EvalItemScale, 1))
	svc := newSubmissionService(env)
	ctx := context.Background()

	env.now = env.due.Add(-time.Hour)
	created, isNew, err := svc.Start(ctx, env.student, 1)
	require.NoError(t, err)
	require.True(t, isNew)
	require.Equal(t, models.StatusOpen, created.Status)
	require.Equal(t, "alice", created.Owners)
	require.True(t, created.CanSubmit)
	require.False(t, created.CanEval)

	again, isNew, err := svc.Start(ctx, env.student, 1)
	require.NoError(t, err)
	require.False(t, isNew)
	require.Equal(t, created.ID, again.ID)

	_, _, err = svc.Start(ctx, env.student, 42)
	require.ErrorIs(t, err, ErrAssignmentNotFound)
}

func TestStartBeforeOpenIsForbiddenForStudents(t *testing.T) {
	env := newTestEnv(t)
	env.assignment(t, 1)
	svc := newSubmissionService(env)

	env.now = env.due.Add(-8 * 24 * time.Hour)
	_, _, err := svc.Start(context.Background(), env.student, 1)
	require.ErrorIs(t, err, ErrForbidden)

	_, created, err := svc.Start(context.Background(), env.admin, 1)
	require.NoError(t, err)
	require.True(t, created)
}

func TestExtendMovesDeadlinesAndPartner(t *testing.T) {
	env := newTestEnv(t)
	assignment := env.assignment(t, 1)
	sub := env.submission(t, assignment, env.student)
	svc := newSubmissionService(env)
	ctx := context.Background()

	due := env.due.Add(24 * time.Hour)
	_, err := svc.Extend(ctx, env.student, sub.ID, dto.SubmissionExtensionRequest{DueDate: &due})
	require.ErrorIs(t, err, ErrForbidden)

	resp, err := svc.Extend(ctx, env.admin, sub.ID, dto.SubmissionExtensionRequest{DueDate: &due, PartnerID: &env.other.ID})
	require.NoError(t, err)
	require.True(t, resp.Extended)
	require.False(t, resp.EvalExtended)
	require.True(t, resp.DueDate.Equal(due))
	require.Equal(t, models.StatusExtended, resp.Status)
	require.Equal(t, "alice+bob", resp.Owners)

	partnerView, err := svc.Get(ctx, env.other, sub.ID)
	require.NoError(t, err)
	require.Equal(t, sub.ID, partnerView.ID)

	missing := uint(999)
	_, err = svc.Extend(ctx, env.admin, sub.ID, dto.SubmissionExtensionRequest{PartnerID: &missing})
	require.ErrorIs(t, err, ErrUserNotFound)

	none := uint(0)
	resp, err = svc.Extend(ctx, env.admin, sub.ID, dto.SubmissionExtensionRequest{PartnerID: &none})
	require.NoError(t, err)
	require.Equal(t, "alice", resp.Owners)
}

func TestAddFileSortsJudgeOutputLast(t *testing.T) {
	env := newTestEnv(t)
	assignment := env.assignment(t, 1)
	sub := env.submission(t, assignment, env.student)
	svc := newSubmissionService(env)
	ctx := context.Background()

	env.now = env.due.Add(-time.Hour)
	for _, name := range []string{"test.out", "Main.cpp", "answers.txt"} {
		_, err := svc.AddFile(ctx, env.student, sub.ID, dto.SourceFileCreateRequest{Name: name, Content: "a\nb\n"})
		require.NoError(t, err)
	}

	resp, err := svc.Get(ctx, env.student, sub.ID)
	require.NoError(t, err)
	require.Len(t, resp.Files, 3)
	require.Equal(t, "answers.txt", resp.Files[0].Name)
	require.Equal(t, "Main.cpp", resp.Files[1].Name)
	require.Equal(t, "test.out", resp.Files[2].Name)
	require.Equal(t, int64(4), resp.Files[0].ByteCount)
	require.Equal(t, 2, resp.Files[0].LineCount)
	require.True(t, resp.LastModified.Equal(env.now))

	env.now = env.due.Add(time.Minute)
	_, err = svc.AddFile(ctx, env.student, sub.ID, dto.SourceFileCreateRequest{Name: "late.cpp"})
	require.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Get(ctx, env.other, sub.ID)
	require.ErrorIs(t, err, ErrForbidden)
}

func TestAddFileInvalidatesGradebook(t *testing.T) {
	env := newTestEnv(t)
	assignment := env.assignment(t, 1)
	sub := env.submission(t, assignment, env.student)
	svc := newSubmissionService(env)
	ctx := context.Background()

	env.now = env.due.Add(-time.Hour)
	_, err := env.gradebook.Get(ctx, env.student, env.student.ID)
	require.NoError(t, err)
	require.True(t, env.mini.Exists(gradebookCacheKey(env.student.ID)))

	_, err = svc.AddFile(ctx, env.student, sub.ID, dto.SourceFileCreateRequest{Name: "main.go", Content: "package main\n"})
	require.NoError(t, err)
	require.False(t, env.mini.Exists(gradebookCacheKey(env.student.ID)))
}

func TestAddFileRollsBackWhenTouchFails(t *testing.T) {
	env := newTestEnv(t)
	assignment := env.assignment(t, 1)
	sub := env.submission(t, assignment, env.student)
	svc := newSubmissionService(env)
	ctx := context.Background()

	errTouch := errors.New("touch failed")
	require.NoError(t, env.db.Callback().Update().Before("gorm:update").Register("test:fail_touch", func(tx *gorm.DB) {
		if tx.Statement.Table == "submissions" {
			_ = tx.AddError(errTouch)
		}
	}))

	env.now = env.due.Add(-time.Hour)
	_, err := svc.AddFile(ctx, env.student, sub.ID, dto.SourceFileCreateRequest{Name: "main.go", Content: "package main\n"})
	require.ErrorIs(t, err, errTouch)

	var count int64
	require.NoError(t, env.db.Model(&models.SourceFile{}).Where("submission_id = ?", sub.ID).Count(&count).Error)
	require.Zero(t, count)

	stored, err := repository.NewSubmissionRepository(env.db).GetByID(ctx, sub.ID)
	require.NoError(t, err)
	require.True(t, stored.LastModified.Equal(sub.LastModified))
}

func TestCountLines(t *testing.T) {
	require.Equal(t, 0, countLines(""))
	require.Equal(t, 1, countLines("one"))
	require.Equal(t, 2, countLines("one\ntwo"))
	require.Equal(t, 2, countLines("one\ntwo\n"))
}
