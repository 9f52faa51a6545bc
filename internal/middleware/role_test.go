package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hifzhub/tahfiz-enrollment-api/internal/models"
)

type stubRoleResolver struct {
	role models.Role
}

func (s *stubRoleResolver) ResolveRole(ctx context.Context, userID string) models.Role {
	return s.role
}

func newAuthedContext(t *testing.T, userID string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	if userID != "" {
		c.Set(ContextUserKey, &models.JWTClaims{UserID: userID})
	}
	return c, recorder
}

func TestResolveRoleSetsResolvedRole(t *testing.T) {
	c, _ := newAuthedContext(t, "user-1")

	ResolveRole(&stubRoleResolver{role: models.RoleTeacher})(c)

	require.False(t, c.IsAborted())
	roleValue, exists := c.Get(ContextRoleKey)
	require.True(t, exists)
	assert.Equal(t, models.RoleTeacher, roleValue)
}

func TestResolveRoleWithoutClaimsAborts(t *testing.T) {
	c, recorder := newAuthedContext(t, "")

	ResolveRole(&stubRoleResolver{role: models.RoleStudent})(c)

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestRequireRolesAllowsListedRole(t *testing.T) {
	c, _ := newAuthedContext(t, "user-1")
	c.Set(ContextRoleKey, models.RoleAdmin)

	RequireRoles(models.RoleAdmin)(c)

	assert.False(t, c.IsAborted())
}

func TestRequireRolesBlocksOtherRoles(t *testing.T) {
	c, recorder := newAuthedContext(t, "user-1")
	c.Set(ContextRoleKey, models.RoleStudent)

	RequireRoles(models.RoleAdmin)(c)

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusForbidden, recorder.Code)
}

func TestRequireRolesWithoutAuthIsUnauthorized(t *testing.T) {
	c, recorder := newAuthedContext(t, "")

	RequireRoles(models.RoleAdmin)(c)

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestCallerFromContextDefaultsToStudent(t *testing.T) {
	c, _ := newAuthedContext(t, "user-1")

	caller, ok := CallerFromContext(c)
	require.True(t, ok)
	assert.Equal(t, "user-1", caller.ID)
	assert.Equal(t, models.RoleStudent, caller.Role)
}

func TestCallerFromContextIgnoresInvalidStoredRole(t *testing.T) {
	c, _ := newAuthedContext(t, "user-1")
	c.Set(ContextRoleKey, models.Role("superuser"))

	caller, ok := CallerFromContext(c)
	require.True(t, ok)
	assert.Equal(t, models.RoleStudent, caller.Role)
}
