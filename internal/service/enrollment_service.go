package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/hifzhub/tahfiz-enrollment-api/internal/models"
	"github.com/hifzhub/tahfiz-enrollment-api/internal/repository"
	appErrors "github.com/hifzhub/tahfiz-enrollment-api/pkg/errors"
)

type enrollmentWriter interface {
	Create(ctx context.Context, enrollment *models.Enrollment) error
	Delete(ctx context.Context, programID, studentID string) (int64, error)
}

type programFinder interface {
	FindByID(ctx context.Context, id string) (*models.Program, error)
}

// EnrollmentService implements the student enroll and withdraw operations.
type EnrollmentService struct {
	enrollments enrollmentWriter
	programs    programFinder
	cache       *CacheService
	logger      *zap.Logger
}

// NewEnrollmentService constructs an EnrollmentService instance.
func NewEnrollmentService(enrollments enrollmentWriter, programs programFinder, cache *CacheService, logger *zap.Logger) *EnrollmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{enrollments: enrollments, programs: programs, cache: cache, logger: logger}
}

// Enroll registers the student on the program. A second enroll for the same
// pair surfaces as a conflict; the unique constraint at the store is the
// source of truth, not a read-then-write check.
func (s *EnrollmentService) Enroll(ctx context.Context, caller Caller, programID string) (*models.Enrollment, error) {
	if _, err := s.programs.FindByID(ctx, programID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "program not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load program")
	}

	enrollment := &models.Enrollment{
		ProgramID:  programID,
		StudentID:  caller.ID,
		EnrolledAt: time.Now().UTC(),
	}
	if err := s.enrollments.Create(ctx, enrollment); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "already enrolled in this program")
		}
		if repository.IsForeignKeyViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "program no longer exists")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enroll")
	}

	s.cache.InvalidateProgramViews(ctx, programID, caller.ID)
	s.logger.Info("student enrolled", zap.String("program_id", programID), zap.String("student_id", caller.ID))
	return enrollment, nil
}

// Withdraw removes the student's enrollment. Withdrawing when not enrolled
// is a no-op success; the end state is the same either way.
func (s *EnrollmentService) Withdraw(ctx context.Context, caller Caller, programID string) error {
	affected, err := s.enrollments.Delete(ctx, programID, caller.ID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to withdraw")
	}
	if affected == 0 {
		s.logger.Debug("withdraw without enrollment", zap.String("program_id", programID), zap.String("student_id", caller.ID))
		return nil
	}

	s.cache.InvalidateProgramViews(ctx, programID, caller.ID)
	s.logger.Info("student withdrew", zap.String("program_id", programID), zap.String("student_id", caller.ID))
	return nil
}
