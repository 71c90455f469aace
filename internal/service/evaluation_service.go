package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/hw-eval-api/internal/dto"
	"github.com/noah-isme/hw-eval-api/internal/evaluation"
	"github.com/noah-isme/hw-eval-api/internal/events"
	"github.com/noah-isme/hw-eval-api/internal/models"
	"github.com/noah-isme/hw-eval-api/internal/observability"
)

// EvaluationService runs self and grader evaluation use cases, each in its own session.
type EvaluationService interface {
	Get(ctx context.Context, user models.User, submissionID uint) (dto.EvaluationResponse, error)
	SaveSelfEval(ctx context.Context, user models.User, submissionID uint, sequence int, payload dto.SelfEvalRequest) (dto.SelfEvalSaveResponse, error)
	RetractSelfEval(ctx context.Context, user models.User, submissionID uint, sequence int) (dto.EvaluationResponse, error)
	SaveGraderEval(ctx context.Context, user models.User, submissionID uint, sequence int, payload dto.GraderEvalRequest) (dto.GraderEvalSaveResponse, error)
	RetractGraderEval(ctx context.Context, user models.User, submissionID uint, sequence int) (dto.EvaluationResponse, error)
}

type evaluationService struct {
	manager   *evaluation.Manager
	validator *validator.Validate
	gradebook GradebookInvalidator
	publisher events.Publisher
	sanitizer *bluemonday.Policy
	tracer    trace.Tracer
	logger    zerolog.Logger
}

// NewEvaluationService constructs the evaluation use cases. gradebook and
// publisher may be nil.
func NewEvaluationService(manager *evaluation.Manager, validator *validator.Validate, gradebook GradebookInvalidator, publisher events.Publisher, logger zerolog.Logger) EvaluationService {
	return &evaluationService{
		manager:   manager,
		validator: validator,
		gradebook: gradebook,
		publisher: publisher,
		sanitizer: bluemonday.StrictPolicy(),
		tracer:    otel.Tracer("github.com/noah-isme/hw-eval-api/internal/service/evaluation"),
		logger:    logger.With().Str("component", "evaluation_service").Logger(),
	}
}

func (s *evaluationService) start(ctx context.Context, name string, user models.User, submissionID uint, sequence int) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, name, trace.WithAttributes(
		attribute.Int64("evaluation.submission_id", int64(submissionID)),
		attribute.Int("evaluation.sequence", sequence),
		attribute.Int64("evaluation.user_id", int64(user.ID)),
		attribute.String("evaluation.user_role", user.Role),
	))
}

func fail(span trace.Span, err error, status string) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, status)
	return err
}

// open begins a session and loads the submission and its cache.
func (s *evaluationService) open(ctx context.Context, user models.User, submissionID uint) (*evaluation.Session, *models.Submission, *evaluation.Cache, error) {
	sess, err := s.manager.Begin(ctx, user)
	if err != nil {
		return nil, nil, nil, err
	}

	sub, err := sess.Submission(submissionID)
	if err != nil {
		_ = sess.Rollback()
		return nil, nil, nil, notFound(err, ErrSubmissionNotFound)
	}
	if !sub.CanView(user) && !user.CanGrade() {
		_ = sess.Rollback()
		return nil, nil, nil, ErrForbidden
	}

	cache, err := sess.Load(sub)
	if err != nil {
		_ = sess.Rollback()
		return nil, nil, nil, err
	}
	return sess, sub, cache, nil
}

func showGrades(sub *models.Submission, user models.User, sess *evaluation.Session) bool {
	return user.CanGrade() || sub.CanViewEval(user, sess.Now())
}

func (s *evaluationService) Get(ctx context.Context, user models.User, submissionID uint) (dto.EvaluationResponse, error) {
	ctx, span := s.start(ctx, "evaluation.get", user, submissionID, -1)
	defer span.End()

	sess, sub, cache, err := s.open(ctx, user, submissionID)
	if err != nil {
		return dto.EvaluationResponse{}, fail(span, err, "evaluation_open_failed")
	}
	defer func() { _ = sess.Rollback() }()

	now := sess.Now()
	return dto.NewEvaluationResponse(cache, sub.Status(now), sub.CanEval(user, now), showGrades(sub, user, sess)), nil
}

func (s *evaluationService) SaveSelfEval(ctx context.Context, user models.User, submissionID uint, sequence int, payload dto.SelfEvalRequest) (dto.SelfEvalSaveResponse, error) {
	ctx, span := s.start(ctx, "evaluation.self.save", user, submissionID, sequence)
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		return dto.SelfEvalSaveResponse{}, fail(span, err, "validation_failed")
	}

	sess, sub, cache, err := s.open(ctx, user, submissionID)
	if err != nil {
		return dto.SelfEvalSaveResponse{}, fail(span, err, "evaluation_open_failed")
	}
	defer func() { _ = sess.Rollback() }()

	if !sub.CanEval(user, sess.Now()) {
		return dto.SelfEvalSaveResponse{}, fail(span, ErrForbidden, "eval_window_closed")
	}

	slot, ok := cache.Item(sequence)
	if !ok {
		return dto.SelfEvalSaveResponse{}, fail(span, ErrEvalItemNotFound, "eval_item_not_found")
	}
	score := *payload.Score
	if err := validateScore(slot.EvalItem.Type, score); err != nil {
		return dto.SelfEvalSaveResponse{}, fail(span, err, "invalid_score")
	}

	self, _, err := sess.GetOrCreateSelfEval(sub, slot.EvalItem)
	if err != nil {
		return dto.SelfEvalSaveResponse{}, fail(span, err, "self_eval_create_failed")
	}
	result, err := sess.SaveSelfEval(self, score, s.clean(payload.Explanation))
	if err != nil {
		return dto.SelfEvalSaveResponse{}, fail(span, err, "self_eval_save_failed")
	}

	slot, _ = cache.Item(sequence)
	grades := showGrades(sub, user, sess)
	response := dto.SelfEvalSaveResponse{
		Item:            dto.NewEvaluationItemResponse(slot, grades),
		Summary:         dto.NewEvaluationSummaryResponse(cache.Summary(), grades),
		AutoGraded:      result.AutoGraded,
		GraderRetracted: result.GraderRetracted,
	}

	if err := s.commit(ctx, sess, *sub); err != nil {
		return dto.SelfEvalSaveResponse{}, fail(span, err, "commit_failed")
	}
	if result.AutoGraded {
		observability.AutoGrades().Inc()
	}

	span.SetAttributes(
		attribute.Float64("evaluation.score", score),
		attribute.Bool("evaluation.auto_graded", result.AutoGraded),
	)
	s.logger.Info().
		Uint("submission_id", sub.ID).
		Int("sequence", sequence).
		Bool("auto_graded", result.AutoGraded).
		Msg("self eval saved")

	return response, nil
}

func (s *evaluationService) RetractSelfEval(ctx context.Context, user models.User, submissionID uint, sequence int) (dto.EvaluationResponse, error) {
	ctx, span := s.start(ctx, "evaluation.self.retract", user, submissionID, sequence)
	defer span.End()

	sess, sub, cache, err := s.open(ctx, user, submissionID)
	if err != nil {
		return dto.EvaluationResponse{}, fail(span, err, "evaluation_open_failed")
	}
	defer func() { _ = sess.Rollback() }()

	now := sess.Now()
	if !sub.CanEval(user, now) {
		return dto.EvaluationResponse{}, fail(span, ErrForbidden, "eval_window_closed")
	}

	slot, ok := cache.Item(sequence)
	if !ok {
		return dto.EvaluationResponse{}, fail(span, ErrEvalItemNotFound, "eval_item_not_found")
	}
	if slot.SelfEval == nil {
		return dto.EvaluationResponse{}, fail(span, ErrSelfEvalNotFound, "self_eval_not_found")
	}
	if err := sess.RetractSelfEval(slot.SelfEval); err != nil {
		return dto.EvaluationResponse{}, fail(span, err, "self_eval_retract_failed")
	}

	response := dto.NewEvaluationResponse(cache, sub.Status(now), true, showGrades(sub, user, sess))
	if err := s.commit(ctx, sess, *sub); err != nil {
		return dto.EvaluationResponse{}, fail(span, err, "commit_failed")
	}

	s.logger.Info().Uint("submission_id", sub.ID).Int("sequence", sequence).Msg("self eval retracted")
	return response, nil
}

func (s *evaluationService) SaveGraderEval(ctx context.Context, user models.User, submissionID uint, sequence int, payload dto.GraderEvalRequest) (dto.GraderEvalSaveResponse, error) {
	ctx, span := s.start(ctx, "evaluation.grader.save", user, submissionID, sequence)
	defer span.End()

	if !user.CanGrade() {
		return dto.GraderEvalSaveResponse{}, fail(span, ErrForbidden, "grader_required")
	}
	if err := s.validator.Struct(payload); err != nil {
		return dto.GraderEvalSaveResponse{}, fail(span, err, "validation_failed")
	}

	sess, sub, cache, err := s.open(ctx, user, submissionID)
	if err != nil {
		return dto.GraderEvalSaveResponse{}, fail(span, err, "evaluation_open_failed")
	}
	defer func() { _ = sess.Rollback() }()

	slot, ok := cache.Item(sequence)
	if !ok {
		return dto.GraderEvalSaveResponse{}, fail(span, ErrEvalItemNotFound, "eval_item_not_found")
	}
	if slot.SelfEval == nil {
		return dto.GraderEvalSaveResponse{}, fail(span, ErrSelfEvalNotFound, "self_eval_not_found")
	}

	grade, _, err := sess.GetOrCreateGraderEval(slot.SelfEval, user)
	if err != nil {
		return dto.GraderEvalSaveResponse{}, fail(span, err, "grader_eval_create_failed")
	}
	status := models.GraderEvalStatus(payload.Status)
	if err := sess.SaveGraderEval(grade, user, *payload.Score, s.clean(payload.Explanation), status); err != nil {
		return dto.GraderEvalSaveResponse{}, fail(span, err, "grader_eval_save_failed")
	}

	slot, _ = cache.Item(sequence)
	response := dto.GraderEvalSaveResponse{
		Item:    dto.NewEvaluationItemResponse(slot, true),
		Summary: dto.NewEvaluationSummaryResponse(cache.Summary(), true),
	}
	if err := s.commit(ctx, sess, *sub); err != nil {
		return dto.GraderEvalSaveResponse{}, fail(span, err, "commit_failed")
	}

	span.SetAttributes(
		attribute.Float64("evaluation.score", *payload.Score),
		attribute.String("evaluation.status", payload.Status),
	)
	s.logger.Info().
		Uint("submission_id", sub.ID).
		Int("sequence", sequence).
		Str("status", payload.Status).
		Msg("grader eval saved")

	return response, nil
}

func (s *evaluationService) RetractGraderEval(ctx context.Context, user models.User, submissionID uint, sequence int) (dto.EvaluationResponse, error) {
	ctx, span := s.start(ctx, "evaluation.grader.retract", user, submissionID, sequence)
	defer span.End()

	if !user.CanGrade() {
		return dto.EvaluationResponse{}, fail(span, ErrForbidden, "grader_required")
	}

	sess, sub, cache, err := s.open(ctx, user, submissionID)
	if err != nil {
		return dto.EvaluationResponse{}, fail(span, err, "evaluation_open_failed")
	}
	defer func() { _ = sess.Rollback() }()

	slot, ok := cache.Item(sequence)
	if !ok {
		return dto.EvaluationResponse{}, fail(span, ErrEvalItemNotFound, "eval_item_not_found")
	}
	if slot.GraderEval == nil {
		return dto.EvaluationResponse{}, fail(span, ErrGraderEvalNotFound, "grader_eval_not_found")
	}
	if err := sess.RetractGraderEval(slot.GraderEval); err != nil {
		return dto.EvaluationResponse{}, fail(span, err, "grader_eval_retract_failed")
	}

	now := sess.Now()
	response := dto.NewEvaluationResponse(cache, sub.Status(now), sub.CanEval(user, now), true)
	if err := s.commit(ctx, sess, *sub); err != nil {
		return dto.EvaluationResponse{}, fail(span, err, "commit_failed")
	}

	s.logger.Info().Uint("submission_id", sub.ID).Int("sequence", sequence).Msg("grader eval retracted")
	return response, nil
}

// commit ends the session and runs the post-commit side effects.
func (s *evaluationService) commit(ctx context.Context, sess *evaluation.Session, sub models.Submission) error {
	touched := sess.Touched()
	if err := sess.Commit(); err != nil {
		return err
	}
	if len(touched) == 0 {
		return nil
	}

	actions := make([]string, 0, len(touched))
	for _, touch := range touched {
		observability.EvaluationMutations().WithLabelValues(touch.Action).Inc()
		actions = append(actions, touch.Action)
	}

	if s.gradebook != nil {
		s.gradebook.Invalidate(ctx, submissionOwners(sub)...)
	}

	if s.publisher != nil {
		event := events.SubmissionTouched{
			SubmissionID:     sub.ID,
			AssignmentNumber: sub.AssignmentNumber,
			ActorID:          sess.User().ID,
			Actions:          actions,
			LastModified:     touched[len(touched)-1].At,
		}
		if err := s.publisher.PublishSubmissionTouched(ctx, event); err != nil {
			s.logger.Warn().Err(err).Uint("submission_id", sub.ID).Msg("failed to publish submission event")
		}
	}
	return nil
}

func (s *evaluationService) clean(explanation string) string {
	return strings.TrimSpace(s.sanitizer.Sanitize(explanation))
}

// validateScore enforces the score domain of each item type. Boolean answers
// are 0 or 1; every other type takes a fraction in [0, 1].
func validateScore(kind models.EvalItemType, score float64) error {
	switch kind {
	case models.EvalItemBoolean:
		if score != 0 && score != 1 {
			return ErrInvalidScore
		}
	case models.EvalItemScale, models.EvalItemResponse, models.EvalItemInformational:
		if score < 0 || score > 1 {
			return ErrInvalidScore
		}
	default:
		return errors.Join(ErrInvalidScore, ErrInvalidRubric)
	}
	return nil
}
