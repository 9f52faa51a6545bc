package models

import "time"

// Program is a course-like offering owned by a teacher, located at a mosque.
// teacher_id must reference a profile with role teacher at creation time;
// the reference is not re-validated afterwards.
type Program struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description *string   `db:"description" json:"description"`
	ImagePath   *string   `db:"image_path" json:"image_path"`
	Price       *float64  `db:"price" json:"price"`
	MosqueID    string    `db:"mosque_id" json:"mosque_id"`
	TeacherID   string    `db:"teacher_id" json:"teacher_id"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
