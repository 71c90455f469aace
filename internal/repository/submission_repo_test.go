package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/hw-eval-api/internal/database/dbtest"
	"github.com/noah-isme/hw-eval-api/internal/models"
)

func TestSubmissionRepositoryFindOrCreate(t *testing.T) {
	db := dbtest.New(t)
	repo := NewSubmissionRepository(db)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	alice := dbtest.CreateUser(t, db, "alice", models.RoleStudent)
	assignment := dbtest.CreateAssignment(t, db, 1, now.Add(time.Hour), now.Add(2*time.Hour),
		dbtest.Item(models.EvalItemBoolean, 1),
		dbtest.Item(models.EvalItemScale, 2),
	)

	created, isNew, err := repo.FindOrCreate(ctx, assignment, alice, now)
	require.NoError(t, err)
	require.True(t, isNew)
	require.NotZero(t, created.ID)
	require.True(t, created.DueDate.Equal(assignment.DueDate))
	require.True(t, created.EvalDate.Equal(assignment.EvalDate))
	require.Len(t, created.Assignment.EvalItems, 2)
	require.Equal(t, 0, created.Assignment.EvalItems[0].Sequence)
	require.Equal(t, "alice", created.User1.Name)

	again, isNew, err := repo.FindOrCreate(ctx, assignment, alice, now)
	require.NoError(t, err)
	require.False(t, isNew)
	require.Equal(t, created.ID, again.ID)

	var count int64
	require.NoError(t, db.Model(&models.Submission{}).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestSubmissionRepositoryFindsPartnerSubmission(t *testing.T) {
	db := dbtest.New(t)
	repo := NewSubmissionRepository(db)
	ctx := context.Background()

	now := time.Now().UTC()
	alice := dbtest.CreateUser(t, db, "alice", models.RoleStudent)
	bob := dbtest.CreateUser(t, db, "bob", models.RoleStudent)
	assignment := dbtest.CreateAssignment(t, db, 2, now.Add(time.Hour), now.Add(2*time.Hour))

	sub, _, err := repo.FindOrCreate(ctx, assignment, alice, now)
	require.NoError(t, err)
	require.NoError(t, repo.Update(ctx, sub.ID, SubmissionUpdate{User2ID: &bob.ID}))

	found, isNew, err := repo.FindOrCreate(ctx, assignment, bob, now)
	require.NoError(t, err)
	require.False(t, isNew)
	require.Equal(t, sub.ID, found.ID)
	require.NotNil(t, found.User2)
	require.Equal(t, "alice+bob", found.OwnerString())

	mine, err := repo.ListByUser(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
}

func TestSubmissionRepositoryTouchAndExtend(t *testing.T) {
	db := dbtest.New(t)
	repo := NewSubmissionRepository(db)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	alice := dbtest.CreateUser(t, db, "alice", models.RoleStudent)
	assignment := dbtest.CreateAssignment(t, db, 3, now.Add(time.Hour), now.Add(2*time.Hour))
	sub, _, err := repo.FindOrCreate(ctx, assignment, alice, now)
	require.NoError(t, err)

	later := now.Add(10 * time.Minute)
	require.NoError(t, repo.Touch(ctx, sub.ID, later))

	due := assignment.DueDate.Add(24 * time.Hour)
	require.NoError(t, repo.Update(ctx, sub.ID, SubmissionUpdate{DueDate: &due}))

	reloaded, err := repo.GetByID(ctx, sub.ID)
	require.NoError(t, err)
	require.True(t, reloaded.LastModified.Equal(later))
	require.True(t, reloaded.Extended())
	require.False(t, reloaded.EvalExtended())

	require.ErrorIs(t, repo.Touch(ctx, 9999, later), gorm.ErrRecordNotFound)
}
