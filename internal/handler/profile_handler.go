package handler

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/hifzhub/tahfiz-enrollment-api/internal/dto"
	"github.com/hifzhub/tahfiz-enrollment-api/internal/service"
	appErrors "github.com/hifzhub/tahfiz-enrollment-api/pkg/errors"
	"github.com/hifzhub/tahfiz-enrollment-api/pkg/response"
)

// ProfileHandler wires the self-service profile endpoints.
type ProfileHandler struct {
	service       *service.ProfileService
	maxUploadSize int64
}

// NewProfileHandler creates a new handler.
func NewProfileHandler(svc *service.ProfileService, maxUploadSize int64) *ProfileHandler {
	if maxUploadSize <= 0 {
		maxUploadSize = 5 << 20
	}
	return &ProfileHandler{service: svc, maxUploadSize: maxUploadSize}
}

// Get godoc
// @Summary Get own profile
// @Description The caller's profile with a cache-busted avatar URL
// @Tags Profile
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /profile [get]
func (h *ProfileHandler) Get(c *gin.Context) {
	claims, ok := claimsFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	profile, err := h.service.Get(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, profile)
}

// Update godoc
// @Summary Update own profile
// @Description Multipart form: avatar, new password and display fields applied in that order
// @Tags Profile
// @Accept mpfd
// @Produce json
// @Param full_name formData string false "Full name (empty keeps current)"
// @Param phone_number formData string false "Phone number (empty keeps current)"
// @Param new_password formData string false "New password"
// @Param avatar formData file false "Avatar image (jpeg, png or webp)"
// @Param crop_x formData int false "Crop origin X"
// @Param crop_y formData int false "Crop origin Y"
// @Param crop_width formData int false "Crop width"
// @Param crop_height formData int false "Crop height"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /profile [put]
func (h *ProfileHandler) Update(c *gin.Context) {
	claims, ok := claimsFromContext(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	req := dto.UpdateProfileRequest{
		FullName:    c.PostForm("full_name"),
		PhoneNumber: c.PostForm("phone_number"),
		NewPassword: c.PostForm("new_password"),
		Crop: dto.CropRect{
			X:      formInt(c, "crop_x"),
			Y:      formInt(c, "crop_y"),
			Width:  formInt(c, "crop_width"),
			Height: formInt(c, "crop_height"),
		},
	}

	if fileHeader, err := c.FormFile("avatar"); err == nil {
		if fileHeader.Size > h.maxUploadSize {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "avatar exceeds the size limit"))
			return
		}
		file, err := fileHeader.Open()
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, http.StatusInternalServerError, "failed to open avatar"))
			return
		}
		data, err := io.ReadAll(io.LimitReader(file, h.maxUploadSize+1))
		file.Close() //nolint:errcheck
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, http.StatusInternalServerError, "failed to read avatar"))
			return
		}
		if int64(len(data)) > h.maxUploadSize {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "avatar exceeds the size limit"))
			return
		}
		req.Avatar = data
		req.AvatarMIME = fileHeader.Header.Get("Content-Type")
	} else if err != http.ErrMissingFile {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid avatar upload"))
		return
	}

	profile, err := h.service.Update(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, profile)
}

func formInt(c *gin.Context, field string) int {
	value, err := strconv.Atoi(c.PostForm(field))
	if err != nil {
		return 0
	}
	return value
}
