package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hifzhub/tahfiz-enrollment-api/internal/middleware"
	"github.com/hifzhub/tahfiz-enrollment-api/internal/models"
	"github.com/hifzhub/tahfiz-enrollment-api/internal/service"
	appErrors "github.com/hifzhub/tahfiz-enrollment-api/pkg/errors"
	"github.com/hifzhub/tahfiz-enrollment-api/pkg/response"
)

func claimsFromContext(c *gin.Context) (*models.JWTClaims, bool) {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil, false
	}
	claims, ok := value.(*models.JWTClaims)
	return claims, ok
}

func callerFromContext(c *gin.Context) (service.Caller, bool) {
	return middleware.CallerFromContext(c)
}

// bindJSON decodes the request body into dst and renders a validation error
// on failure. Callers return immediately when it reports false.
func bindJSON(c *gin.Context, dst any, msg string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, msg))
		return false
	}
	return true
}
