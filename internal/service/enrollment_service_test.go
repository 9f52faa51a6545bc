package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hifzhub/tahfiz-enrollment-api/internal/models"
	appErrors "github.com/hifzhub/tahfiz-enrollment-api/pkg/errors"
)

type mockEnrollmentWriter struct {
	createErr error
	created   []*models.Enrollment
	deleted   int64
	deleteErr error
}

func (m *mockEnrollmentWriter) Create(ctx context.Context, enrollment *models.Enrollment) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.created = append(m.created, enrollment)
	return nil
}

func (m *mockEnrollmentWriter) Delete(ctx context.Context, programID, studentID string) (int64, error) {
	return m.deleted, m.deleteErr
}

type mockProgramFinder struct {
	programs map[string]*models.Program
}

func (m *mockProgramFinder) FindByID(ctx context.Context, id string) (*models.Program, error) {
	if p, ok := m.programs[id]; ok {
		return p, nil
	}
	return nil, sql.ErrNoRows
}

func disabledCache() *CacheService {
	return NewCacheService(nil, nil, time.Minute, zap.NewNop(), false)
}

func TestEnrollSuccess(t *testing.T) {
	writer := &mockEnrollmentWriter{}
	finder := &mockProgramFinder{programs: map[string]*models.Program{"prog-1": {ID: "prog-1"}}}
	svc := NewEnrollmentService(writer, finder, disabledCache(), zap.NewNop())

	enrollment, err := svc.Enroll(context.Background(), Caller{ID: "student-1", Role: models.RoleStudent}, "prog-1")
	require.NoError(t, err)
	assert.Equal(t, "prog-1", enrollment.ProgramID)
	assert.Equal(t, "student-1", enrollment.StudentID)
	assert.False(t, enrollment.EnrolledAt.IsZero())
	require.Len(t, writer.created, 1)
}

func TestEnrollUnknownProgram(t *testing.T) {
	svc := NewEnrollmentService(&mockEnrollmentWriter{}, &mockProgramFinder{}, disabledCache(), zap.NewNop())

	_, err := svc.Enroll(context.Background(), Caller{ID: "student-1"}, "ghost")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestEnrollTwiceConflicts(t *testing.T) {
	writer := &mockEnrollmentWriter{createErr: &pq.Error{Code: "23505"}}
	finder := &mockProgramFinder{programs: map[string]*models.Program{"prog-1": {ID: "prog-1"}}}
	svc := NewEnrollmentService(writer, finder, disabledCache(), zap.NewNop())

	_, err := svc.Enroll(context.Background(), Caller{ID: "student-1"}, "prog-1")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

func TestEnrollProgramDeletedUnderneath(t *testing.T) {
	writer := &mockEnrollmentWriter{createErr: &pq.Error{Code: "23503"}}
	finder := &mockProgramFinder{programs: map[string]*models.Program{"prog-1": {ID: "prog-1"}}}
	svc := NewEnrollmentService(writer, finder, disabledCache(), zap.NewNop())

	_, err := svc.Enroll(context.Background(), Caller{ID: "student-1"}, "prog-1")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestWithdrawRemovesEnrollment(t *testing.T) {
	writer := &mockEnrollmentWriter{deleted: 1}
	svc := NewEnrollmentService(writer, &mockProgramFinder{}, disabledCache(), zap.NewNop())

	err := svc.Withdraw(context.Background(), Caller{ID: "student-1"}, "prog-1")
	require.NoError(t, err)
}

func TestWithdrawNotEnrolledIsNoop(t *testing.T) {
	writer := &mockEnrollmentWriter{deleted: 0}
	svc := NewEnrollmentService(writer, &mockProgramFinder{}, disabledCache(), zap.NewNop())

	err := svc.Withdraw(context.Background(), Caller{ID: "student-1"}, "prog-1")
	require.NoError(t, err)
}
