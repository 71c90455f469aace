package evaluation

import (
	"gorm.io/gorm"

	"github.com/noah-isme/hw-eval-api/internal/repository"
)

// Store bundles the repositories a session reads and writes through.
type Store struct {
	Assignments repository.AssignmentRepository
	Submissions repository.SubmissionRepository
	Evaluations repository.EvaluationRepository
	Activity    repository.ActivityLogRepository
	Files       repository.SourceFileRepository
}

// NewStore binds the repositories to db, which is normally a transaction.
func NewStore(db *gorm.DB) Store {
	return Store{
		Assignments: repository.NewAssignmentRepository(db),
		Submissions: repository.NewSubmissionRepository(db),
		Evaluations: repository.NewEvaluationRepository(db),
		Activity:    repository.NewActivityLogRepository(db),
		Files:       repository.NewSourceFileRepository(db),
	}
}
