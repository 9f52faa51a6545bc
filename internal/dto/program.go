package dto

import "github.com/hifzhub/tahfiz-enrollment-api/internal/models"

// ProgramSummary is a directory row joined with its mosque and teacher.
type ProgramSummary struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Description      *string  `json:"description,omitempty"`
	ThumbnailURL     string   `json:"thumbnail_url,omitempty"`
	Location         string   `json:"location"`
	TeacherName      string   `json:"teacher_name"`
	TeacherAvatarURL string   `json:"teacher_avatar_url,omitempty"`
	Price            *float64 `json:"price,omitempty"`

	// Enrolled is present only when the caller is a student.
	Enrolled *bool `json:"enrolled,omitempty"`
}

// RosterEntry is one enrolled student on a program detail view.
type RosterEntry struct {
	ID        string `json:"id"`
	FullName  string `json:"full_name"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// ProgramDetail is the full program view. Roster is serialized only for
// callers allowed to see it.
type ProgramDetail struct {
	ProgramSummary

	MosqueName         string        `json:"mosque_name"`
	MosqueAddress      *string       `json:"mosque_address,omitempty"`
	IsEnrolled         bool          `json:"is_enrolled"`
	IsTeacherOfProgram bool          `json:"is_teacher_of_program"`
	RosterVisible      bool          `json:"roster_visible"`
	Roster             []RosterEntry `json:"roster,omitempty"`
}

// CreateProgramRequest is the multipart form payload for program creation.
// Price is accepted as free text and parsed permissively: anything that is
// not a finite non-negative number is stored as absent.
type CreateProgramRequest struct {
	Name        string `form:"name" validate:"required"`
	Description string `form:"description"`
	MosqueID    string `form:"mosque_id" validate:"required"`
	TeacherID   string `form:"teacher_id"`
	Price       string `form:"price"`
}

// MosqueOption is a directory entry for the program creation form.
type MosqueOption struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Address *string `json:"address,omitempty"`
}

// TeacherOption is a teacher picker entry for admin program creation.
type TeacherOption struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
}

// NewMosqueOption maps a mosque row to its form entry.
func NewMosqueOption(m models.Mosque) MosqueOption {
	return MosqueOption{ID: m.ID, Name: m.Name, Address: m.Address}
}
