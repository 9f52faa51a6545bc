package models

import "time"

// Role is the sole authorization signal for every caller.
type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
)

// Valid reports whether the role is one of the recognized values.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleTeacher, RoleAdmin:
		return true
	}
	return false
}

// DefaultAvatarPath is the sentinel image key assigned to new profiles.
const DefaultAvatarPath = "avatars/default.jpg"

// User is an account identity stored in the users table. Credentials live
// here; everything display- or authorization-related lives on Profile.
type User struct {
	ID           string    `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Profile extends a User with role and display attributes. Exactly one row
// exists per account; deleting the account cascades it away.
type Profile struct {
	ID          string    `db:"id" json:"id"`
	FullName    *string   `db:"full_name" json:"full_name"`
	PhoneNumber *string   `db:"phone_number" json:"phone_number"`
	Role        Role      `db:"role" json:"role"`
	ImagePath   *string   `db:"image_path" json:"image_path"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// DisplayName returns the profile name or an empty string.
func (p *Profile) DisplayName() string {
	if p == nil || p.FullName == nil {
		return ""
	}
	return *p.FullName
}

// AvatarPath returns the stored image key, falling back to the default
// sentinel for empty values.
func (p *Profile) AvatarPath() string {
	if p == nil || p.ImagePath == nil || *p.ImagePath == "" {
		return DefaultAvatarPath
	}
	return *p.ImagePath
}
