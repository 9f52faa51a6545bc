package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hifzhub/tahfiz-enrollment-api/internal/dto"
	"github.com/hifzhub/tahfiz-enrollment-api/internal/models"
	appErrors "github.com/hifzhub/tahfiz-enrollment-api/pkg/errors"
)

type mockProfileAdminRepo struct {
	profiles    []models.Profile
	roleUpdates map[string]models.Role
	affected    int64
}

func (m *mockProfileAdminRepo) ListAll(ctx context.Context) ([]models.Profile, error) {
	return m.profiles, nil
}

func (m *mockProfileAdminRepo) UpdateRole(ctx context.Context, id string, role models.Role) (int64, error) {
	if m.roleUpdates == nil {
		m.roleUpdates = make(map[string]models.Role)
	}
	m.roleUpdates[id] = role
	return m.affected, nil
}

type mockUserDeleter struct {
	deleted []string
	err     error
}

func (m *mockUserDeleter) Delete(ctx context.Context, id string) error {
	if m.err != nil {
		return m.err
	}
	m.deleted = append(m.deleted, id)
	return nil
}

func TestUserAdminListGroupsByRole(t *testing.T) {
	repo := &mockProfileAdminRepo{profiles: []models.Profile{
		{ID: "s1", Role: models.RoleStudent},
		{ID: "t1", Role: models.RoleTeacher},
		{ID: "a1", Role: models.RoleAdmin},
		{ID: "s2", Role: models.RoleStudent},
	}}
	svc := NewUserAdminService(repo, &mockUserDeleter{}, disabledCache(), nil, zap.NewNop())

	list, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, list.Students, 2)
	assert.Len(t, list.Teachers, 1)
	assert.Len(t, list.Admins, 1)
}

func TestUserAdminListEmptyGroupsAreNotNil(t *testing.T) {
	svc := NewUserAdminService(&mockProfileAdminRepo{}, &mockUserDeleter{}, disabledCache(), nil, zap.NewNop())

	list, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, list.Students)
	assert.NotNil(t, list.Teachers)
	assert.NotNil(t, list.Admins)
}

func TestUpdateRoleValid(t *testing.T) {
	repo := &mockProfileAdminRepo{affected: 1}
	svc := NewUserAdminService(repo, &mockUserDeleter{}, disabledCache(), nil, zap.NewNop())

	err := svc.UpdateRole(context.Background(), dto.UpdateRoleRequest{UserID: "u1", Role: models.RoleTeacher})
	require.NoError(t, err)
	assert.Equal(t, models.RoleTeacher, repo.roleUpdates["u1"])
}

func TestUpdateRoleRejectsUnknownRole(t *testing.T) {
	repo := &mockProfileAdminRepo{}
	svc := NewUserAdminService(repo, &mockUserDeleter{}, disabledCache(), nil, zap.NewNop())

	err := svc.UpdateRole(context.Background(), dto.UpdateRoleRequest{UserID: "u1", Role: "superuser"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Empty(t, repo.roleUpdates)
}

func TestUpdateRoleRequiresUserID(t *testing.T) {
	svc := NewUserAdminService(&mockProfileAdminRepo{}, &mockUserDeleter{}, disabledCache(), nil, zap.NewNop())

	err := svc.UpdateRole(context.Background(), dto.UpdateRoleRequest{Role: models.RoleAdmin})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestDeleteUser(t *testing.T) {
	deleter := &mockUserDeleter{}
	svc := NewUserAdminService(&mockProfileAdminRepo{}, deleter, disabledCache(), nil, zap.NewNop())

	err := svc.Delete(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, deleter.deleted)
}

func TestDeleteUserRequiresID(t *testing.T) {
	deleter := &mockUserDeleter{}
	svc := NewUserAdminService(&mockProfileAdminRepo{}, deleter, disabledCache(), nil, zap.NewNop())

	err := svc.Delete(context.Background(), "")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Empty(t, deleter.deleted)
}
