package dto

import "github.com/hifzhub/tahfiz-enrollment-api/internal/models"

// StudentDashboard lists the names of the caller's current programs.
type StudentDashboard struct {
	ProgramNames []string `json:"program_names"`
}

// TeacherDashboard lists the programs led by the caller.
type TeacherDashboard struct {
	Programs []ProgramSummary `json:"programs"`
}

// AdminDashboard carries headline counts for the admin landing view.
type AdminDashboard struct {
	UserCounts   map[models.Role]int `json:"user_counts"`
	ProgramCount int                 `json:"program_count"`
}

// Dashboard is the role-shaped dashboard response; exactly one member is set.
type Dashboard struct {
	Role    models.Role       `json:"role"`
	Student *StudentDashboard `json:"student,omitempty"`
	Teacher *TeacherDashboard `json:"teacher,omitempty"`
	Admin   *AdminDashboard   `json:"admin,omitempty"`
}
