package dbtest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/hw-eval-api/internal/models"
)

// CreateUser inserts a user with the given role.
func CreateUser(t testing.TB, db *gorm.DB, name, role string) models.User {
	t.Helper()
	user := models.User{Name: name, Role: role}
	require.NoError(t, db.Create(&user).Error)
	return user
}

// Item builds an unsaved rubric item; sequence is assigned by CreateAssignment.
func Item(kind models.EvalItemType, weight float64) models.EvalItem {
	return models.EvalItem{Type: kind, RelativeValue: weight, Prompt: string(kind) + " item"}
}

// CreateAssignment inserts an assignment whose windows are placed around now:
// open a week ago, due at due, self-evaluation closing at eval.
func CreateAssignment(t testing.TB, db *gorm.DB, number int, due, eval time.Time, items ...models.EvalItem) models.Assignment {
	t.Helper()

	rubric := make([]models.EvalItem, len(items))
	for i, item := range items {
		item.Sequence = i
		rubric[i] = item
	}

	assignment := models.Assignment{
		Number:    number,
		Title:     "Homework",
		OpenDate:  due.Add(-7 * 24 * time.Hour),
		DueDate:   due,
		EvalDate:  eval,
		EvalItems: rubric,
	}
	require.NoError(t, db.Create(&assignment).Error)
	return assignment
}
