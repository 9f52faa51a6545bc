package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/hifzhub/tahfiz-enrollment-api/internal/models"
)

// EnrollmentRepository handles persistence of program enrollments. The
// (program_id, student_id) composite primary key is the only duplicate
// protection; concurrent inserts race and the store rejects the loser.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// Create inserts an enrollment row. A duplicate pair surfaces as a unique
// violation from the store; callers translate it with IsUniqueViolation.
func (r *EnrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) error {
	if enrollment.EnrolledAt.IsZero() {
		enrollment.EnrolledAt = time.Now().UTC()
	}
	const query = `INSERT INTO program_enrollments (program_id, student_id, enrolled_at)
        VALUES (:program_id, :student_id, :enrolled_at)`
	if _, err := r.db.NamedExecContext(ctx, query, enrollment); err != nil {
		return err
	}
	return nil
}

// Delete removes the enrollment for (programID, studentID) and returns how
// many rows were affected. Zero rows is not an error.
func (r *EnrollmentRepository) Delete(ctx context.Context, programID, studentID string) (int64, error) {
	const query = `DELETE FROM program_enrollments WHERE program_id = $1 AND student_id = $2`
	res, err := r.db.ExecContext(ctx, query, programID, studentID)
	if err != nil {
		return 0, fmt.Errorf("delete enrollment: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete enrollment rows affected: %w", err)
	}
	return affected, nil
}

// ProgramIDsByStudent returns the set of program ids the student is enrolled
// in. Fetched once per listing to avoid per-row existence queries.
func (r *EnrollmentRepository) ProgramIDsByStudent(ctx context.Context, studentID string) (map[string]struct{}, error) {
	const query = `SELECT program_id FROM program_enrollments WHERE student_id = $1`
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, studentID); err != nil {
		return nil, fmt.Errorf("list student enrollments: %w", err)
	}
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}

// ListByProgram returns all enrollments for a program.
func (r *EnrollmentRepository) ListByProgram(ctx context.Context, programID string) ([]models.Enrollment, error) {
	const query = `SELECT program_id, student_id, enrolled_at FROM program_enrollments WHERE program_id = $1`
	var enrollments []models.Enrollment
	if err := r.db.SelectContext(ctx, &enrollments, query, programID); err != nil {
		return nil, fmt.Errorf("list program enrollments: %w", err)
	}
	return enrollments, nil
}

// Exists reports whether the (programID, studentID) pair is enrolled.
func (r *EnrollmentRepository) Exists(ctx context.Context, programID, studentID string) (bool, error) {
	const query = `SELECT COUNT(*) FROM program_enrollments WHERE program_id = $1 AND student_id = $2`
	var count int
	if err := r.db.GetContext(ctx, &count, query, programID, studentID); err != nil {
		return false, fmt.Errorf("check enrollment: %w", err)
	}
	return count > 0, nil
}
