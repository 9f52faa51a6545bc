package dto

import "github.com/hifzhub/tahfiz-enrollment-api/internal/models"

// ProfileView is the caller's own profile. AvatarURL carries a cache-busting
// parameter so a fresh upload shows immediately.
type ProfileView struct {
	ID          string      `json:"id"`
	Email       string      `json:"email"`
	FullName    *string     `json:"full_name"`
	PhoneNumber *string     `json:"phone_number"`
	Role        models.Role `json:"role"`
	AvatarURL   string      `json:"avatar_url"`
}

// CropRect is the client-communicated square crop region for a new avatar,
// in pixels of the uploaded image.
type CropRect struct {
	X      int `form:"crop_x"`
	Y      int `form:"crop_y"`
	Width  int `form:"crop_width"`
	Height int `form:"crop_height"`
}

// UpdateProfileRequest is the multipart profile form. Empty drafts mean
// "keep the current value"; an explicit unset is not supported.
type UpdateProfileRequest struct {
	FullName    string `form:"full_name"`
	PhoneNumber string `form:"phone_number"`
	NewPassword string `form:"new_password"`
	Crop        CropRect

	// Avatar holds the decoded upload when the form carried a file.
	Avatar     []byte `form:"-"`
	AvatarMIME string `form:"-"`
}
