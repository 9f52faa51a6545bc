package service

import "github.com/hifzhub/tahfiz-enrollment-api/internal/models"

// Caller identifies an authenticated request. Role is resolved from the
// profiles table on every request, never read from the token.
type Caller struct {
	ID   string
	Role models.Role
}

// IsStudent reports whether the caller acts as a student.
func (c Caller) IsStudent() bool { return c.Role == models.RoleStudent }

// IsTeacher reports whether the caller acts as a teacher.
func (c Caller) IsTeacher() bool { return c.Role == models.RoleTeacher }

// IsAdmin reports whether the caller acts as an admin.
func (c Caller) IsAdmin() bool { return c.Role == models.RoleAdmin }
