package service

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/hw-eval-api/internal/dto"
	"github.com/noah-isme/hw-eval-api/internal/evaluation"
	"github.com/noah-isme/hw-eval-api/internal/models"
	"github.com/noah-isme/hw-eval-api/internal/repository"
)

// SubmissionService manages submissions outside of evaluation.
type SubmissionService interface {
	Start(ctx context.Context, user models.User, assignmentNumber int) (dto.SubmissionResponse, bool, error)
	Get(ctx context.Context, user models.User, id uint) (dto.SubmissionResponse, error)
	Extend(ctx context.Context, user models.User, id uint, payload dto.SubmissionExtensionRequest) (dto.SubmissionResponse, error)
	AddFile(ctx context.Context, user models.User, id uint, payload dto.SourceFileCreateRequest) (dto.SubmissionResponse, error)
}

type submissionService struct {
	manager     *evaluation.Manager
	assignments repository.AssignmentRepository
	submissions repository.SubmissionRepository
	users       repository.UserRepository
	files       repository.SourceFileRepository
	gradebook   GradebookInvalidator
	validator   *validator.Validate
	judge       *regexp.Regexp
	tracer      trace.Tracer
	logger      zerolog.Logger
	now         func() time.Time
}

// SubmissionDependencies groups the collaborators of the submission service.
type SubmissionDependencies struct {
	Manager     *evaluation.Manager
	Assignments repository.AssignmentRepository
	Submissions repository.SubmissionRepository
	Users       repository.UserRepository
	Files       repository.SourceFileRepository
	Gradebook   GradebookInvalidator
	Validator   *validator.Validate
	// Judge matches file names that are listed after the sources.
	Judge *regexp.Regexp
}

// NewSubmissionService constructs the submission service.
func NewSubmissionService(deps SubmissionDependencies, logger zerolog.Logger) SubmissionService {
	judge := deps.Judge
	if judge == nil {
		judge, _ = models.CompileJudgePattern(models.DefaultJudgePattern)
	}

	return &submissionService{
		manager:     deps.Manager,
		assignments: deps.Assignments,
		submissions: deps.Submissions,
		users:       deps.Users,
		files:       deps.Files,
		gradebook:   deps.Gradebook,
		validator:   deps.Validator,
		judge:       judge,
		tracer:      otel.Tracer("github.com/noah-isme/hw-eval-api/internal/service/submission"),
		logger:      logger.With().Str("component", "submission_service").Logger(),
		now:         time.Now,
	}
}

// Start returns the caller's submission for the assignment, creating it on
// first visit once the assignment is open.
func (s *submissionService) Start(ctx context.Context, user models.User, assignmentNumber int) (dto.SubmissionResponse, bool, error) {
	ctx, span := s.tracer.Start(ctx, "submission.start")
	span.SetAttributes(
		attribute.Int("submission.assignment_number", assignmentNumber),
		attribute.Int64("submission.user_id", int64(user.ID)),
	)
	defer span.End()

	assignment, err := s.assignments.GetByNumber(ctx, assignmentNumber)
	if err != nil {
		return dto.SubmissionResponse{}, false, fail(span, notFound(err, ErrAssignmentNotFound), "assignment_lookup_failed")
	}

	sess, err := s.manager.Begin(ctx, user)
	if err != nil {
		return dto.SubmissionResponse{}, false, fail(span, err, "session_begin_failed")
	}
	defer func() { _ = sess.Rollback() }()

	now := sess.Now()
	if !user.CanAdmin() && !now.After(assignment.OpenDate) {
		return dto.SubmissionResponse{}, false, fail(span, ErrForbidden, "assignment_not_open")
	}

	sub, created, err := sess.FindOrCreateSubmission(assignment, user)
	if err != nil {
		return dto.SubmissionResponse{}, false, fail(span, err, "submission_find_or_create_failed")
	}
	if err := sess.Commit(); err != nil {
		return dto.SubmissionResponse{}, false, fail(span, err, "commit_failed")
	}

	if created {
		s.logger.Info().
			Uint("submission_id", sub.ID).
			Int("assignment_number", assignmentNumber).
			Uint("user_id", user.ID).
			Msg("submission created")
		if s.gradebook != nil {
			s.gradebook.Invalidate(ctx, user.ID)
		}
	}

	response, err := s.respond(ctx, *sub, user, now)
	return response, created, err
}

func (s *submissionService) Get(ctx context.Context, user models.User, id uint) (dto.SubmissionResponse, error) {
	sub, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		return dto.SubmissionResponse{}, notFound(err, ErrSubmissionNotFound)
	}
	if !sub.CanView(user) && !user.CanGrade() {
		return dto.SubmissionResponse{}, ErrForbidden
	}
	return s.respond(ctx, sub, user, s.now())
}

// Extend moves a submission's deadlines or changes its partner. Admin only.
func (s *submissionService) Extend(ctx context.Context, user models.User, id uint, payload dto.SubmissionExtensionRequest) (dto.SubmissionResponse, error) {
	ctx, span := s.tracer.Start(ctx, "submission.extend")
	span.SetAttributes(attribute.Int64("submission.id", int64(id)))
	defer span.End()

	if !user.CanAdmin() {
		return dto.SubmissionResponse{}, fail(span, ErrForbidden, "admin_required")
	}

	before, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		return dto.SubmissionResponse{}, fail(span, notFound(err, ErrSubmissionNotFound), "submission_lookup_failed")
	}

	if payload.PartnerID != nil && *payload.PartnerID != 0 {
		if _, err := s.users.GetByID(ctx, *payload.PartnerID); err != nil {
			return dto.SubmissionResponse{}, fail(span, notFound(err, ErrUserNotFound), "partner_lookup_failed")
		}
	}

	update := repository.SubmissionUpdate{
		DueDate:  payload.DueDate,
		EvalDate: payload.EvalDate,
		User2ID:  payload.PartnerID,
	}
	if err := s.submissions.Update(ctx, id, update); err != nil {
		return dto.SubmissionResponse{}, fail(span, notFound(err, ErrSubmissionNotFound), "submission_update_failed")
	}

	after, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		return dto.SubmissionResponse{}, fail(span, err, "submission_reload_failed")
	}

	if s.gradebook != nil {
		s.gradebook.Invalidate(ctx, append(submissionOwners(before), submissionOwners(after)...)...)
	}

	s.logger.Info().
		Uint("submission_id", id).
		Time("due_date", after.DueDate).
		Time("eval_date", after.EvalDate).
		Msg("submission extended")

	return s.respond(ctx, after, user, s.now())
}

// AddFile records an uploaded source file while submission is allowed. The
// file row and the submission touch commit together.
func (s *submissionService) AddFile(ctx context.Context, user models.User, id uint, payload dto.SourceFileCreateRequest) (dto.SubmissionResponse, error) {
	ctx, span := s.tracer.Start(ctx, "submission.add_file")
	span.SetAttributes(attribute.Int64("submission.id", int64(id)))
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, err
	}

	sess, err := s.manager.Begin(ctx, user)
	if err != nil {
		return dto.SubmissionResponse{}, fail(span, err, "session_begin_failed")
	}
	defer func() { _ = sess.Rollback() }()

	sub, err := sess.Submission(id)
	if err != nil {
		return dto.SubmissionResponse{}, fail(span, notFound(err, ErrSubmissionNotFound), "submission_lookup_failed")
	}

	now := s.now()
	if !sub.CanSubmit(user, now) {
		return dto.SubmissionResponse{}, fail(span, ErrForbidden, "submission_closed")
	}

	store := sess.Store()
	file := models.SourceFile{
		SubmissionID: sub.ID,
		Name:         strings.TrimSpace(payload.Name),
		ByteCount:    int64(len(payload.Content)),
		LineCount:    countLines(payload.Content),
		CreatedAt:    now,
	}
	if err := store.Files.Create(ctx, &file); err != nil {
		return dto.SubmissionResponse{}, fail(span, err, "file_create_failed")
	}
	if err := store.Submissions.Touch(ctx, sub.ID, now); err != nil {
		return dto.SubmissionResponse{}, fail(span, notFound(err, ErrSubmissionNotFound), "submission_touch_failed")
	}
	sub.Touch(now)
	touched := *sub

	if err := sess.Commit(); err != nil {
		return dto.SubmissionResponse{}, fail(span, err, "commit_failed")
	}

	if s.gradebook != nil {
		s.gradebook.Invalidate(ctx, submissionOwners(touched)...)
	}

	s.logger.Info().Uint("submission_id", touched.ID).Str("file", file.Name).Msg("source file recorded")
	return s.respond(ctx, touched, user, now)
}

func (s *submissionService) respond(ctx context.Context, sub models.Submission, user models.User, now time.Time) (dto.SubmissionResponse, error) {
	files, err := s.files.ListBySubmission(ctx, sub.ID)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}
	return dto.NewSubmissionResponse(sub, models.SortSourceFiles(files, s.judge), user, now), nil
}

func countLines(content string) int {
	if content == "" {
		return 0
	}
	lines := strings.Count(content, "\n")
	if !strings.HasSuffix(content, "\n") {
		lines++
	}
	return lines
}
