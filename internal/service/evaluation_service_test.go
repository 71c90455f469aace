package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/hw-eval-api/internal/database/dbtest"
	"github.com/noah-isme/hw-eval-api/internal/dto"
	"github.com/noah-isme/hw-eval-api/internal/evaluation"
	"github.com/noah-isme/hw-eval-api/internal/models"
)

func TestSaveSelfEvalAutoGradesAndPublishes(t *testing.T) {
	env := newTestEnv(t)
	assignment := env.assignment(t, 1, dbtest.Item(models.EvalItemBoolean, 1), dbtest.Item(models.EvalItemScale, 1))
	sub := env.submission(t, assignment, env.student)
	svc := env.evaluationService()
	ctx := context.Background()

	_, err := env.gradebook.Get(ctx, env.student, env.student.ID)
	require.NoError(t, err)
	require.True(t, env.mini.Exists(gradebookCacheKey(env.student.ID)))

	resp, err := svc.SaveSelfEval(ctx, env.student, sub.ID, 0, dto.SelfEvalRequest{Score: score(0), Explanation: "<b>skipped</b> it"})
	require.NoError(t, err)
	require.True(t, resp.AutoGraded)
	require.NotNil(t, resp.Item.SelfEval)
	require.Equal(t, "skipped it", resp.Item.SelfEval.Explanation)
	require.NotNil(t, resp.Item.GraderEval)
	require.Equal(t, evaluation.DefaultAutoGradeScore, resp.Item.GraderEval.Score)
	require.Equal(t, "ready", resp.Item.GraderEval.Status)
	require.Equal(t, models.EvalStatusStarted, resp.Summary.EvalStatus)
	require.Equal(t, "5.00%", resp.Summary.Grade)

	require.False(t, env.mini.Exists(gradebookCacheKey(env.student.ID)))

	published := env.publisher.recorded()
	require.Len(t, published, 1)
	require.Equal(t, sub.ID, published[0].SubmissionID)
	require.Equal(t, []string{evaluation.ActionSelfEvalCreated, evaluation.ActionSelfEvalSaved}, published[0].Actions)
	require.True(t, published[0].LastModified.Equal(env.now))
}

func TestSaveSelfEvalEndToEndGrade(t *testing.T) {
	env := newTestEnv(t)
	assignment := env.assignment(t, 1, dbtest.Item(models.EvalItemBoolean, 1), dbtest.Item(models.EvalItemScale, 1))
	sub := env.submission(t, assignment, env.student)
	svc := env.evaluationService()
	ctx := context.Background()

	_, err := svc.SaveSelfEval(ctx, env.student, sub.ID, 0, dto.SelfEvalRequest{Score: score(0)})
	require.NoError(t, err)
	saved, err := svc.SaveSelfEval(ctx, env.student, sub.ID, 1, dto.SelfEvalRequest{Score: score(0.8), Explanation: "mostly done"})
	require.NoError(t, err)
	require.Equal(t, models.EvalStatusComplete, saved.Summary.EvalStatus)
	require.NotNil(t, saved.Summary.IsGraded)
	require.False(t, *saved.Summary.IsGraded)

	graded, err := svc.SaveGraderEval(ctx, env.grader, sub.ID, 1, dto.GraderEvalRequest{Score: score(0.7), Explanation: "ok", Status: "ready"})
	require.NoError(t, err)
	require.True(t, *graded.Summary.IsGraded)
	require.Equal(t, "40.0%", graded.Summary.Grade)
	require.Equal(t, env.grader.ID, graded.Item.GraderEval.GraderID)

	view, err := svc.Get(ctx, env.student, sub.ID)
	require.NoError(t, err)
	require.Equal(t, "40.0%", view.Summary.Grade)
	require.Equal(t, models.StatusSelfEval, view.Status)
	require.Len(t, view.Items, 2)
}

func TestSaveSelfEvalOutsideWindowIsForbidden(t *testing.T) {
	env := newTestEnv(t)
	assignment := env.assignment(t, 1, dbtest.Item(models.EvalItemScale, 1))
	sub := env.submission(t, assignment, env.student)
	svc := env.evaluationService()

	env.now = env.due.Add(-time.Minute)
	_, err := svc.SaveSelfEval(context.Background(), env.student, sub.ID, 0, dto.SelfEvalRequest{Score: score(0.5)})
	require.ErrorIs(t, err, ErrForbidden)

	env.now = env.due.Add(49 * time.Hour)
	_, err = svc.SaveSelfEval(context.Background(), env.student, sub.ID, 0, dto.SelfEvalRequest{Score: score(0.5)})
	require.ErrorIs(t, err, ErrForbidden)

	var count int64
	require.NoError(t, env.db.Model(&models.SelfEval{}).Count(&count).Error)
	require.Zero(t, count)
	require.Empty(t, env.publisher.recorded())
}

func TestGradesHiddenBeforeDueDate(t *testing.T) {
	env := newTestEnv(t)
	assignment := env.assignment(t, 1, dbtest.Item(models.EvalItemScale, 1))
	sub := env.submission(t, assignment, env.student)
	svc := env.evaluationService()

	env.now = env.due.Add(-time.Hour)
	view, err := svc.Get(context.Background(), env.student, sub.ID)
	require.NoError(t, err)
	require.Empty(t, view.Summary.Grade)
	require.Nil(t, view.Summary.IsGraded)
	require.Equal(t, models.StatusOpen, view.Status)
	require.False(t, view.CanEval)
}

func TestSaveSelfEvalValidation(t *testing.T) {
	env := newTestEnv(t)
	assignment := env.assignment(t, 1, dbtest.Item(models.EvalItemBoolean, 1))
	sub := env.submission(t, assignment, env.student)
	svc := env.evaluationService()
	ctx := context.Background()

	_, err := svc.SaveSelfEval(ctx, env.student, sub.ID, 0, dto.SelfEvalRequest{})
	var validationErrs validator.ValidationErrors
	require.ErrorAs(t, err, &validationErrs)

	_, err = svc.SaveSelfEval(ctx, env.student, sub.ID, 0, dto.SelfEvalRequest{Score: score(0.5)})
	require.ErrorIs(t, err, ErrInvalidScore)

	_, err = svc.SaveSelfEval(ctx, env.student, sub.ID, 4, dto.SelfEvalRequest{Score: score(1)})
	require.ErrorIs(t, err, ErrEvalItemNotFound)

	_, err = svc.SaveSelfEval(ctx, env.student, 999, 0, dto.SelfEvalRequest{Score: score(1)})
	require.ErrorIs(t, err, ErrSubmissionNotFound)
}

func TestOtherStudentCannotSeeOrEvaluate(t *testing.T) {
	env := newTestEnv(t)
	assignment := env.assignment(t, 1, dbtest.Item(models.EvalItemScale, 1))
	sub := env.submission(t, assignment, env.student)
	svc := env.evaluationService()
	ctx := context.Background()

	_, err := svc.Get(ctx, env.other, sub.ID)
	require.ErrorIs(t, err, ErrForbidden)

	_, err = svc.SaveSelfEval(ctx, env.other, sub.ID, 0, dto.SelfEvalRequest{Score: score(1)})
	require.ErrorIs(t, err, ErrForbidden)
}

func TestGraderOperationsRequireGrader(t *testing.T) {
	env := newTestEnv(t)
	assignment := env.assignment(t, 1, dbtest.Item(models.EvalItemScale, 1))
	sub := env.submission(t, assignment, env.student)
	svc := env.evaluationService()
	ctx := context.Background()

	_, err := svc.SaveSelfEval(ctx, env.student, sub.ID, 0, dto.SelfEvalRequest{Score: score(0.5)})
	require.NoError(t, err)

	_, err = svc.SaveGraderEval(ctx, env.student, sub.ID, 0, dto.GraderEvalRequest{Score: score(1), Status: "ready"})
	require.ErrorIs(t, err, ErrForbidden)
	_, err = svc.RetractGraderEval(ctx, env.student, sub.ID, 0)
	require.ErrorIs(t, err, ErrForbidden)

	_, err = svc.RetractGraderEval(ctx, env.grader, sub.ID, 0)
	require.ErrorIs(t, err, ErrGraderEvalNotFound)

	_, err = svc.SaveGraderEval(ctx, env.grader, sub.ID, 0, dto.GraderEvalRequest{Score: score(0.9), Status: "pending"})
	require.NoError(t, err)

	view, err := svc.RetractGraderEval(ctx, env.grader, sub.ID, 0)
	require.NoError(t, err)
	require.Nil(t, view.Items[0].GraderEval)
	require.NotNil(t, view.Items[0].SelfEval)
}

func TestGraderEvalRequiresSelfEval(t *testing.T) {
	env := newTestEnv(t)
	assignment := env.assignment(t, 1, dbtest.Item(models.EvalItemScale, 1), dbtest.Item(models.EvalItemInformational, 0))
	sub := env.submission(t, assignment, env.student)
	svc := env.evaluationService()
	ctx := context.Background()

	_, err := svc.SaveGraderEval(ctx, env.grader, sub.ID, 0, dto.GraderEvalRequest{Score: score(1), Status: "ready"})
	require.ErrorIs(t, err, ErrSelfEvalNotFound)

	_, err = svc.SaveSelfEval(ctx, env.student, sub.ID, 1, dto.SelfEvalRequest{Score: score(0), Explanation: "read it"})
	require.NoError(t, err)
	_, err = svc.SaveGraderEval(ctx, env.grader, sub.ID, 1, dto.GraderEvalRequest{Score: score(1), Status: "ready"})
	require.ErrorIs(t, err, evaluation.ErrNotGradable)
}

func TestRetractSelfEvalRemovesGrade(t *testing.T) {
	env := newTestEnv(t)
	assignment := env.assignment(t, 1, dbtest.Item(models.EvalItemBoolean, 1))
	sub := env.submission(t, assignment, env.student)
	svc := env.evaluationService()
	ctx := context.Background()

	_, err := svc.SaveSelfEval(ctx, env.student, sub.ID, 0, dto.SelfEvalRequest{Score: score(0)})
	require.NoError(t, err)

	view, err := svc.RetractSelfEval(ctx, env.student, sub.ID, 0)
	require.NoError(t, err)
	require.Nil(t, view.Items[0].SelfEval)
	require.Nil(t, view.Items[0].GraderEval)
	require.Equal(t, models.EvalStatusEmpty, view.Summary.EvalStatus)
	require.Equal(t, "0.00%", view.Summary.Grade)

	_, err = svc.RetractSelfEval(ctx, env.student, sub.ID, 0)
	require.ErrorIs(t, err, ErrSelfEvalNotFound)

	var graderEvals int64
	require.NoError(t, env.db.Model(&models.GraderEval{}).Count(&graderEvals).Error)
	require.Zero(t, graderEvals)

	published := env.publisher.recorded()
	require.Len(t, published, 2)
	require.Equal(t, []string{evaluation.ActionSelfEvalRetracted}, published[1].Actions)
}
