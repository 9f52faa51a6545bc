package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/hifzhub/tahfiz-enrollment-api/internal/models"
)

// ProfileRepository handles persistence of profiles.
type ProfileRepository struct {
	db *sqlx.DB
}

// NewProfileRepository constructs the repository.
func NewProfileRepository(db *sqlx.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

const profileColumns = `id, full_name, phone_number, role, image_path, created_at`

// FindByID returns a profile by account identifier.
func (r *ProfileRepository) FindByID(ctx context.Context, id string) (*models.Profile, error) {
	query := fmt.Sprintf(`SELECT %s FROM profiles WHERE id = $1 LIMIT 1`, profileColumns)
	var profile models.Profile
	if err := r.db.GetContext(ctx, &profile, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find profile by id: %w", err)
	}
	return &profile, nil
}

// GetRole returns the stored role for an account.
func (r *ProfileRepository) GetRole(ctx context.Context, id string) (models.Role, error) {
	const query = `SELECT role FROM profiles WHERE id = $1 LIMIT 1`
	var role models.Role
	if err := r.db.GetContext(ctx, &role, query, id); err != nil {
		if err == sql.ErrNoRows {
			return "", err
		}
		return "", fmt.Errorf("get role: %w", err)
	}
	return role, nil
}

// ListAll returns every profile ordered by creation time ascending.
func (r *ProfileRepository) ListAll(ctx context.Context) ([]models.Profile, error) {
	query := fmt.Sprintf(`SELECT %s FROM profiles ORDER BY created_at ASC`, profileColumns)
	var profiles []models.Profile
	if err := r.db.SelectContext(ctx, &profiles, query); err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	return profiles, nil
}

// ListByIDs returns the profiles for the given identifiers in one batched
// lookup. Missing ids are simply absent from the result.
func (r *ProfileRepository) ListByIDs(ctx context.Context, ids []string) ([]models.Profile, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(ids))
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}
	query := fmt.Sprintf(`SELECT %s FROM profiles WHERE id IN (%s)`, profileColumns, strings.Join(placeholders, ","))
	var profiles []models.Profile
	if err := r.db.SelectContext(ctx, &profiles, query, args...); err != nil {
		return nil, fmt.Errorf("list profiles by ids: %w", err)
	}
	return profiles, nil
}

// ListTeachers returns all teacher profiles ordered by name.
func (r *ProfileRepository) ListTeachers(ctx context.Context) ([]models.Profile, error) {
	query := fmt.Sprintf(`SELECT %s FROM profiles WHERE role = $1 ORDER BY full_name ASC`, profileColumns)
	var profiles []models.Profile
	if err := r.db.SelectContext(ctx, &profiles, query, models.RoleTeacher); err != nil {
		return nil, fmt.Errorf("list teachers: %w", err)
	}
	return profiles, nil
}

// CountByRole returns how many profiles exist per role.
func (r *ProfileRepository) CountByRole(ctx context.Context) (map[models.Role]int, error) {
	const query = `SELECT role, COUNT(*) AS count FROM profiles GROUP BY role`
	rows, err := r.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("count profiles by role: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	counts := make(map[models.Role]int)
	for rows.Next() {
		var role models.Role
		var count int
		if err := rows.Scan(&role, &count); err != nil {
			return nil, fmt.Errorf("scan role count: %w", err)
		}
		counts[role] = count
	}
	return counts, rows.Err()
}

// UpdateRole reassigns a profile's role and returns the number of affected
// rows. An unknown id affects zero rows; callers decide whether that matters.
func (r *ProfileRepository) UpdateRole(ctx context.Context, id string, role models.Role) (int64, error) {
	const query = `UPDATE profiles SET role = $2 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, role)
	if err != nil {
		return 0, fmt.Errorf("update role: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("update role rows affected: %w", err)
	}
	return affected, nil
}

// UpdateFields overwrites the display fields of a profile. Callers resolve
// keep-current semantics before calling; this is a plain write.
func (r *ProfileRepository) UpdateFields(ctx context.Context, id string, fullName, phoneNumber, imagePath *string) error {
	const query = `UPDATE profiles SET full_name = $2, phone_number = $3, image_path = COALESCE($4, image_path) WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, fullName, phoneNumber, imagePath); err != nil {
		return fmt.Errorf("update profile fields: %w", err)
	}
	return nil
}
