package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/hifzhub/tahfiz-enrollment-api/internal/models"
)

// ProgramRepository handles persistence of programs.
type ProgramRepository struct {
	db *sqlx.DB
}

// NewProgramRepository constructs the repository.
func NewProgramRepository(db *sqlx.DB) *ProgramRepository {
	return &ProgramRepository{db: db}
}

const programColumns = `id, name, description, image_path, price, mosque_id, teacher_id, created_at`

// ListAll returns every program ordered by creation time descending.
func (r *ProgramRepository) ListAll(ctx context.Context) ([]models.Program, error) {
	query := fmt.Sprintf(`SELECT %s FROM programs ORDER BY created_at DESC`, programColumns)
	var programs []models.Program
	if err := r.db.SelectContext(ctx, &programs, query); err != nil {
		return nil, fmt.Errorf("list programs: %w", err)
	}
	return programs, nil
}

// FindByID returns a program by identifier.
func (r *ProgramRepository) FindByID(ctx context.Context, id string) (*models.Program, error) {
	query := fmt.Sprintf(`SELECT %s FROM programs WHERE id = $1 LIMIT 1`, programColumns)
	var program models.Program
	if err := r.db.GetContext(ctx, &program, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find program by id: %w", err)
	}
	return &program, nil
}

// ListByTeacher returns the programs led by the given teacher, newest first.
func (r *ProgramRepository) ListByTeacher(ctx context.Context, teacherID string) ([]models.Program, error) {
	query := fmt.Sprintf(`SELECT %s FROM programs WHERE teacher_id = $1 ORDER BY created_at DESC`, programColumns)
	var programs []models.Program
	if err := r.db.SelectContext(ctx, &programs, query, teacherID); err != nil {
		return nil, fmt.Errorf("list programs by teacher: %w", err)
	}
	return programs, nil
}

// Create persists a new program record.
func (r *ProgramRepository) Create(ctx context.Context, program *models.Program) error {
	if program.ID == "" {
		program.ID = uuid.NewString()
	}
	if program.CreatedAt.IsZero() {
		program.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO programs (id, name, description, image_path, price, mosque_id, teacher_id, created_at)
        VALUES (:id, :name, :description, :image_path, :price, :mosque_id, :teacher_id, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, program); err != nil {
		return fmt.Errorf("create program: %w", err)
	}
	return nil
}

// Count returns the total number of programs.
func (r *ProgramRepository) Count(ctx context.Context) (int, error) {
	const query = `SELECT COUNT(*) FROM programs`
	var total int
	if err := r.db.GetContext(ctx, &total, query); err != nil {
		return 0, fmt.Errorf("count programs: %w", err)
	}
	return total, nil
}
