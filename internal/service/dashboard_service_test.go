package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hifzhub/tahfiz-enrollment-api/internal/models"
)

type mockDashboardPrograms struct {
	programs []models.Program
}

func (m *mockDashboardPrograms) FindByID(ctx context.Context, id string) (*models.Program, error) {
	for i := range m.programs {
		if m.programs[i].ID == id {
			return &m.programs[i], nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockDashboardPrograms) ListByTeacher(ctx context.Context, teacherID string) ([]models.Program, error) {
	var out []models.Program
	for _, p := range m.programs {
		if p.TeacherID == teacherID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockDashboardPrograms) Count(ctx context.Context) (int, error) {
	return len(m.programs), nil
}

type mockDashboardProfiles struct {
	counts map[models.Role]int
}

func (m *mockDashboardProfiles) CountByRole(ctx context.Context) (map[models.Role]int, error) {
	return m.counts, nil
}

type mockDashboardEnrollments struct {
	byStudent map[string]map[string]struct{}
}

func (m *mockDashboardEnrollments) ProgramIDsByStudent(ctx context.Context, studentID string) (map[string]struct{}, error) {
	if ids, ok := m.byStudent[studentID]; ok {
		return ids, nil
	}
	return map[string]struct{}{}, nil
}

func newTestDashboardService() *DashboardService {
	programs := &mockDashboardPrograms{programs: []models.Program{
		{ID: "prog-1", Name: "Juz Amma", MosqueID: "mosque-1", TeacherID: "teacher-1"},
		{ID: "prog-2", Name: "Tahfiz Intensive", MosqueID: "mosque-1", TeacherID: "teacher-1"},
		{ID: "prog-3", Name: "Tajwid Basics", MosqueID: "mosque-1", TeacherID: "teacher-2"},
	}}
	profiles := &mockDashboardProfiles{counts: map[models.Role]int{
		models.RoleStudent: 10,
		models.RoleTeacher: 2,
		models.RoleAdmin:   1,
	}}
	enrollments := &mockDashboardEnrollments{byStudent: map[string]map[string]struct{}{
		"student-1": {"prog-2": {}, "prog-1": {}, "gone": {}},
	}}
	mosques := &mockMosqueRepo{mosques: []models.Mosque{
		{ID: "mosque-1", Name: "Al-Falah"},
	}}
	return NewDashboardService(programs, profiles, enrollments, mosques, &mockMedia{}, disabledCache(), zap.NewNop())
}

func TestDashboardStudentShape(t *testing.T) {
	svc := newTestDashboardService()

	dashboard, err := svc.Get(context.Background(), Caller{ID: "student-1", Role: models.RoleStudent})
	require.NoError(t, err)
	assert.Equal(t, models.RoleStudent, dashboard.Role)
	require.NotNil(t, dashboard.Student)
	assert.Nil(t, dashboard.Teacher)
	assert.Nil(t, dashboard.Admin)
	// deleted program skipped, names sorted
	assert.Equal(t, []string{"Juz Amma", "Tahfiz Intensive"}, dashboard.Student.ProgramNames)
}

func TestDashboardStudentWithoutEnrollments(t *testing.T) {
	svc := newTestDashboardService()

	dashboard, err := svc.Get(context.Background(), Caller{ID: "student-9", Role: models.RoleStudent})
	require.NoError(t, err)
	require.NotNil(t, dashboard.Student)
	assert.Empty(t, dashboard.Student.ProgramNames)
}

func TestDashboardTeacherShape(t *testing.T) {
	svc := newTestDashboardService()

	dashboard, err := svc.Get(context.Background(), Caller{ID: "teacher-1", Role: models.RoleTeacher})
	require.NoError(t, err)
	require.NotNil(t, dashboard.Teacher)
	assert.Nil(t, dashboard.Student)
	require.Len(t, dashboard.Teacher.Programs, 2)
	assert.Equal(t, "Al-Falah", dashboard.Teacher.Programs[0].Location)
}

func TestDashboardAdminShape(t *testing.T) {
	svc := newTestDashboardService()

	dashboard, err := svc.Get(context.Background(), Caller{ID: "admin-1", Role: models.RoleAdmin})
	require.NoError(t, err)
	require.NotNil(t, dashboard.Admin)
	assert.Equal(t, 3, dashboard.Admin.ProgramCount)
	assert.Equal(t, 10, dashboard.Admin.UserCounts[models.RoleStudent])
}
