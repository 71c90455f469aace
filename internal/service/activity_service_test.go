package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/hw-eval-api/internal/database/dbtest"
	"github.com/noah-isme/hw-eval-api/internal/dto"
	"github.com/noah-isme/hw-eval-api/internal/evaluation"
	"github.com/noah-isme/hw-eval-api/internal/models"
	"github.com/noah-isme/hw-eval-api/internal/repository"
)

func TestActivityServiceListsTouches(t *testing.T) {
	env := newTestEnv(t)
	assignment := env.assignment(t, 1, dbtest.Item(models.EvalItemBoolean, 1))
	sub := env.submission(t, assignment, env.student)
	ctx := context.Background()

	_, err := env.evaluationService().SaveSelfEval(ctx, env.student, sub.ID, 0, dto.SelfEvalRequest{Score: score(1)})
	require.NoError(t, err)

	svc := NewActivityService(repository.NewActivityLogRepository(env.db), env.validate, zerolog.Nop())

	_, err = svc.List(ctx, env.student, dto.ActivityListRequest{})
	require.ErrorIs(t, err, ErrForbidden)

	page, err := svc.List(ctx, env.grader, dto.ActivityListRequest{SubmissionID: sub.ID})
	require.NoError(t, err)
	require.Equal(t, int64(2), page.Pagination.TotalItems)
	require.Equal(t, 1, page.Pagination.TotalPages)
	require.Equal(t, evaluation.ActionSelfEvalSaved, page.Items[0].Action)
	require.Equal(t, env.student.ID, page.Items[0].ActorID)
	require.Equal(t, json.Number("0"), page.Items[0].Metadata["sequence"])

	filtered, err := svc.List(ctx, env.admin, dto.ActivityListRequest{Action: evaluation.ActionSelfEvalCreated, PageSize: 1})
	require.NoError(t, err)
	require.Len(t, filtered.Items, 1)
	require.Equal(t, evaluation.ActionSelfEvalCreated, filtered.Items[0].Action)
}
