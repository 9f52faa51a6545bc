package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/hifzhub/tahfiz-enrollment-api/internal/models"
	"github.com/hifzhub/tahfiz-enrollment-api/internal/service"
	appErrors "github.com/hifzhub/tahfiz-enrollment-api/pkg/errors"
	"github.com/hifzhub/tahfiz-enrollment-api/pkg/response"
)

// ContextRoleKey is the gin context key storing the resolved role.
const ContextRoleKey = "currentRole"

type roleResolver interface {
	ResolveRole(ctx context.Context, userID string) models.Role
}

// ResolveRole looks up the caller's stored role once per request and stores
// it on the context. The token is never trusted for authorization, so a
// role reassignment takes effect on the target's very next request.
func ResolveRole(resolver roleResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		claimsValue, exists := c.Get(ContextUserKey)
		if !exists {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		claims := claimsValue.(*models.JWTClaims)

		c.Set(ContextRoleKey, resolver.ResolveRole(c.Request.Context(), claims.UserID))
		c.Next()
	}
}

// RequireRoles blocks callers whose resolved role is not in the allow list.
func RequireRoles(roles ...models.Role) gin.HandlerFunc {
	allowed := make(map[models.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		caller, ok := CallerFromContext(c)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		if _, ok := allowed[caller.Role]; !ok {
			response.Error(c, appErrors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}

// CallerFromContext extracts the authenticated caller with its resolved
// role. It reports false when the auth middleware did not run.
func CallerFromContext(c *gin.Context) (service.Caller, bool) {
	claimsValue, exists := c.Get(ContextUserKey)
	if !exists {
		return service.Caller{}, false
	}
	claims, ok := claimsValue.(*models.JWTClaims)
	if !ok {
		return service.Caller{}, false
	}

	role := models.RoleStudent
	if roleValue, exists := c.Get(ContextRoleKey); exists {
		if resolved, ok := roleValue.(models.Role); ok && resolved.Valid() {
			role = resolved
		}
	}
	return service.Caller{ID: claims.UserID, Role: role}, true
}
