package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/hw-eval-api/internal/dto"
	"github.com/noah-isme/hw-eval-api/internal/models"
	"github.com/noah-isme/hw-eval-api/internal/observability"
	"github.com/noah-isme/hw-eval-api/internal/repository"
)

// GradebookInvalidator drops cached gradebooks after their data changed.
type GradebookInvalidator interface {
	Invalidate(ctx context.Context, userIDs ...uint)
}

// GradebookService produces a user's homework and exam grades.
type GradebookService interface {
	GradebookInvalidator
	Get(ctx context.Context, viewer models.User, userID uint) (dto.GradebookResponse, error)
}

// gradebookSnapshot is the cached, time-independent part of a gradebook.
type gradebookSnapshot struct {
	Homework []gradebookRow     `json:"homework"`
	Exams    []models.ExamGrade `json:"exams"`
}

type gradebookRow struct {
	SubmissionID     uint               `json:"submission_id"`
	AssignmentNumber int                `json:"assignment_number"`
	Title            string             `json:"title"`
	Owners           string             `json:"owners"`
	User1ID          uint               `json:"user1_id"`
	User2ID          *uint              `json:"user2_id"`
	OpenDate         time.Time          `json:"open_date"`
	AssignmentDue    time.Time          `json:"assignment_due"`
	AssignmentEval   time.Time          `json:"assignment_eval"`
	DueDate          time.Time          `json:"due_date"`
	EvalDate         time.Time          `json:"eval_date"`
	LastModified     time.Time          `json:"last_modified"`
	Summary          models.EvalSummary `json:"summary"`
}

func (r gradebookRow) submission() models.Submission {
	return models.Submission{
		ID:               r.SubmissionID,
		AssignmentNumber: r.AssignmentNumber,
		User1ID:          r.User1ID,
		User2ID:          r.User2ID,
		DueDate:          r.DueDate,
		EvalDate:         r.EvalDate,
		LastModified:     r.LastModified,
		Assignment: models.Assignment{
			Number:   r.AssignmentNumber,
			OpenDate: r.OpenDate,
			DueDate:  r.AssignmentDue,
			EvalDate: r.AssignmentEval,
		},
	}
}

type gradebookService struct {
	users       repository.UserRepository
	submissions repository.SubmissionRepository
	evaluations repository.EvaluationRepository
	exams       repository.ExamGradeRepository
	cache       *redis.Client
	cacheTTL    time.Duration
	logger      zerolog.Logger
	now         func() time.Time
}

// NewGradebookService builds the gradebook aggregator. cache may be nil.
func NewGradebookService(users repository.UserRepository, submissions repository.SubmissionRepository, evaluations repository.EvaluationRepository, exams repository.ExamGradeRepository, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) GradebookService {
	return &gradebookService{
		users:       users,
		submissions: submissions,
		evaluations: evaluations,
		exams:       exams,
		cache:       cache,
		cacheTTL:    ttl,
		logger:      logger.With().Str("component", "gradebook_service").Logger(),
		now:         time.Now,
	}
}

func gradebookCacheKey(userID uint) string {
	return fmt.Sprintf("gradebook:user:%d", userID)
}

func (s *gradebookService) Get(ctx context.Context, viewer models.User, userID uint) (dto.GradebookResponse, error) {
	if viewer.ID != userID && !viewer.CanGrade() {
		return dto.GradebookResponse{}, ErrForbidden
	}

	snapshot, err := s.snapshot(ctx, userID)
	if err != nil {
		return dto.GradebookResponse{}, err
	}

	now := s.now()
	response := dto.GradebookResponse{
		UserID:      userID,
		Homework:    make([]dto.GradebookEntry, 0, len(snapshot.Homework)),
		Exams:       make([]dto.ExamGradeResponse, 0, len(snapshot.Exams)),
		GeneratedAt: now,
	}

	for _, row := range snapshot.Homework {
		sub := row.submission()
		entry := dto.GradebookEntry{
			SubmissionID:     row.SubmissionID,
			AssignmentNumber: row.AssignmentNumber,
			Title:            row.Title,
			Owners:           row.Owners,
			Status:           sub.Status(now),
			EvalStatus:       row.Summary.EvalStatus(),
			LastModified:     row.LastModified,
		}
		if sub.CanViewEval(viewer, now) || viewer.CanGrade() {
			entry.IsGraded = row.Summary.IsGraded()
			entry.Grade = row.Summary.GradeString()
		}
		response.Homework = append(response.Homework, entry)
	}

	for _, exam := range snapshot.Exams {
		response.Exams = append(response.Exams, dto.NewExamGradeResponse(exam))
	}

	return response, nil
}

func (s *gradebookService) snapshot(ctx context.Context, userID uint) (gradebookSnapshot, error) {
	cacheKey := gradebookCacheKey(userID)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var snapshot gradebookSnapshot
			if unmarshalErr := json.Unmarshal([]byte(cached), &snapshot); unmarshalErr == nil {
				observability.GradebookCacheLookups().WithLabelValues("hit").Inc()
				s.logger.Debug().Uint("user_id", userID).Msg("gradebook cache hit")
				return snapshot, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read gradebook cache")
		}
		observability.GradebookCacheLookups().WithLabelValues("miss").Inc()
	}

	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return gradebookSnapshot{}, notFound(err, ErrUserNotFound)
	}

	submissions, err := s.submissions.ListByUser(ctx, userID)
	if err != nil {
		return gradebookSnapshot{}, err
	}

	snapshot := gradebookSnapshot{Homework: make([]gradebookRow, 0, len(submissions))}
	for _, sub := range submissions {
		summary, err := s.evaluations.Summary(ctx, sub.ID, sub.AssignmentNumber)
		if err != nil {
			return gradebookSnapshot{}, err
		}
		snapshot.Homework = append(snapshot.Homework, gradebookRow{
			SubmissionID:     sub.ID,
			AssignmentNumber: sub.AssignmentNumber,
			Title:            sub.Assignment.Title,
			Owners:           sub.OwnerString(),
			User1ID:          sub.User1ID,
			User2ID:          sub.User2ID,
			OpenDate:         sub.Assignment.OpenDate,
			AssignmentDue:    sub.Assignment.DueDate,
			AssignmentEval:   sub.Assignment.EvalDate,
			DueDate:          sub.DueDate,
			EvalDate:         sub.EvalDate,
			LastModified:     sub.LastModified,
			Summary:          summary,
		})
	}

	exams, err := s.exams.FindByUser(ctx, userID)
	if err != nil {
		return gradebookSnapshot{}, err
	}
	snapshot.Exams = exams

	if s.cache != nil {
		payload, err := json.Marshal(snapshot)
		if err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store gradebook cache")
			}
		}
	}

	return snapshot, nil
}

func (s *gradebookService) Invalidate(ctx context.Context, userIDs ...uint) {
	if s.cache == nil || len(userIDs) == 0 {
		return
	}

	keys := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		if id != 0 {
			keys = append(keys, gradebookCacheKey(id))
		}
	}
	if len(keys) == 0 {
		return
	}
	if err := s.cache.Del(ctx, keys...).Err(); err != nil {
		s.logger.Warn().Err(err).Strs("keys", keys).Msg("failed to invalidate gradebook cache")
	}
}

func submissionOwners(sub models.Submission) []uint {
	owners := []uint{sub.User1ID}
	if sub.User2ID != nil {
		owners = append(owners, *sub.User2ID)
	}
	return owners
}
