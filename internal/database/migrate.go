package database

import (
	"gorm.io/gorm"

	"github.com/noah-isme/hw-eval-api/internal/models"
)

// Migrate creates or updates the tables backing the evaluation workflow.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Assignment{},
		&models.EvalItem{},
		&models.Submission{},
		&models.SelfEval{},
		&models.GraderEval{},
		&models.ExamGrade{},
		&models.SourceFile{},
		&models.ActivityLog{},
	)
}
