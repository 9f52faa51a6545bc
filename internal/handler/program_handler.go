package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hifzhub/tahfiz-enrollment-api/internal/dto"
	"github.com/hifzhub/tahfiz-enrollment-api/internal/service"
	appErrors "github.com/hifzhub/tahfiz-enrollment-api/pkg/errors"
	"github.com/hifzhub/tahfiz-enrollment-api/pkg/response"
)

// ProgramHandler wires HTTP endpoints to the program service.
type ProgramHandler struct {
	service       *service.ProgramService
	export        *service.ExportService
	maxUploadSize int64
}

// NewProgramHandler creates a new handler.
func NewProgramHandler(svc *service.ProgramService, export *service.ExportService, maxUploadSize int64) *ProgramHandler {
	if maxUploadSize <= 0 {
		maxUploadSize = 5 << 20
	}
	return &ProgramHandler{service: svc, export: export, maxUploadSize: maxUploadSize}
}

// List godoc
// @Summary List programs
// @Description Program directory; students additionally see their enrolled flag
// @Tags Programs
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /programs [get]
func (h *ProgramHandler) List(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	programs, err := h.service.List(c.Request.Context(), caller)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, programs)
}

// Detail godoc
// @Summary Program detail
// @Description Full program view; roster included for the program teacher or an admin
// @Tags Programs
// @Produce json
// @Param id path string true "Program ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /programs/{id} [get]
func (h *ProgramHandler) Detail(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	detail, err := h.service.Detail(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, detail)
}

// CreationOptions godoc
// @Summary Program creation form options
// @Description Mosque directory plus, for admins, the teacher directory
// @Tags Programs
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /programs/options [get]
func (h *ProgramHandler) CreationOptions(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	mosques, teachers, err := h.service.CreationOptions(c.Request.Context(), caller)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{"mosques": mosques, "teachers": teachers})
}

// Create godoc
// @Summary Create a program
// @Description Teachers create programs they own; admins assign a teacher
// @Tags Programs
// @Accept mpfd
// @Produce json
// @Param name formData string true "Program name"
// @Param mosque_id formData string true "Mosque ID"
// @Param teacher_id formData string false "Teacher ID (admin only)"
// @Param description formData string false "Description"
// @Param price formData string false "Price, free text"
// @Param thumbnail formData file false "Thumbnail image"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Security BearerAuth
// @Router /programs [post]
func (h *ProgramHandler) Create(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.CreateProgramRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid program form"))
		return
	}

	thumbnail, err := h.readUpload(c, "thumbnail")
	if err != nil {
		response.Error(c, err)
		return
	}

	program, err := h.service.Create(c.Request.Context(), caller, req, thumbnail)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, program)
}

// Roster godoc
// @Summary Program roster
// @Description Enrolled students, visible to the program teacher or an admin
// @Tags Programs
// @Produce json
// @Param id path string true "Program ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /programs/{id}/roster [get]
func (h *ProgramHandler) Roster(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	name, roster, err := h.service.Roster(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{"program_name": name, "roster": roster})
}

// ExportRoster godoc
// @Summary Export program roster
// @Description Download the roster as PDF or CSV
// @Tags Programs
// @Produce application/pdf
// @Param id path string true "Program ID"
// @Param format query string false "pdf or csv" default(pdf)
// @Success 200 {file} binary
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /programs/{id}/roster/export [get]
func (h *ProgramHandler) ExportRoster(c *gin.Context) {
	caller, ok := callerFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	format := service.RosterFormat(c.DefaultQuery("format", string(service.RosterFormatPDF)))
	doc, err := h.export.RosterDocument(c.Request.Context(), caller, c.Param("id"), format)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+doc.Filename+`"`)
	c.Data(http.StatusOK, doc.ContentType, doc.Data)
}

func (h *ProgramHandler) readUpload(c *gin.Context, field string) (*service.Upload, error) {
	fileHeader, err := c.FormFile(field)
	if err != nil {
		if err == http.ErrMissingFile {
			return nil, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid upload")
	}
	if fileHeader.Size > h.maxUploadSize {
		return nil, appErrors.Clone(appErrors.ErrValidation, "upload exceeds the size limit")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, http.StatusInternalServerError, "failed to open upload")
	}
	defer file.Close() //nolint:errcheck

	data, err := io.ReadAll(io.LimitReader(file, h.maxUploadSize+1))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, http.StatusInternalServerError, "failed to read upload")
	}
	if int64(len(data)) > h.maxUploadSize {
		return nil, appErrors.Clone(appErrors.ErrValidation, "upload exceeds the size limit")
	}

	return &service.Upload{Filename: fileHeader.Filename, Data: data}, nil
}
