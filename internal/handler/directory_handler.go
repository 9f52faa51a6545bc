package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hifzhub/tahfiz-enrollment-api/internal/dto"
	"github.com/hifzhub/tahfiz-enrollment-api/internal/models"
	appErrors "github.com/hifzhub/tahfiz-enrollment-api/pkg/errors"
	"github.com/hifzhub/tahfiz-enrollment-api/pkg/response"
)

type mosqueLister interface {
	List(ctx context.Context) ([]models.Mosque, error)
}

type teacherLister interface {
	ListTeachers(ctx context.Context) ([]models.Profile, error)
}

// DirectoryHandler serves the mosque and teacher reference listings.
type DirectoryHandler struct {
	mosques  mosqueLister
	teachers teacherLister
}

// NewDirectoryHandler creates a new handler.
func NewDirectoryHandler(mosques mosqueLister, teachers teacherLister) *DirectoryHandler {
	return &DirectoryHandler{mosques: mosques, teachers: teachers}
}

// Mosques godoc
// @Summary List mosques
// @Description Mosque directory for the program creation form
// @Tags Directory
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /mosques [get]
func (h *DirectoryHandler) Mosques(c *gin.Context) {
	mosques, err := h.mosques.List(c.Request.Context())
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, http.StatusInternalServerError, "failed to list mosques"))
		return
	}

	options := make([]dto.MosqueOption, 0, len(mosques))
	for _, m := range mosques {
		options = append(options, dto.NewMosqueOption(m))
	}
	response.OK(c, options)
}

// Teachers godoc
// @Summary List teachers
// @Description Teacher directory for admin program assignment
// @Tags Directory
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Security BearerAuth
// @Router /teachers [get]
func (h *DirectoryHandler) Teachers(c *gin.Context) {
	teachers, err := h.teachers.ListTeachers(c.Request.Context())
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, http.StatusInternalServerError, "failed to list teachers"))
		return
	}

	options := make([]dto.TeacherOption, 0, len(teachers))
	for i := range teachers {
		options = append(options, dto.TeacherOption{ID: teachers[i].ID, FullName: teachers[i].DisplayName()})
	}
	response.OK(c, options)
}
