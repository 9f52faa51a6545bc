package models

import "time"

// Enrollment registers a student in a program. At most one row exists per
// (program, student) pair; the composite primary key enforces that at the
// store, not in application logic.
type Enrollment struct {
	ProgramID  string    `db:"program_id" json:"program_id"`
	StudentID  string    `db:"student_id" json:"student_id"`
	EnrolledAt time.Time `db:"enrolled_at" json:"enrolled_at"`
}
