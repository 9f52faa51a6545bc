package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/hifzhub/tahfiz-enrollment-api/internal/models"
)

// MosqueRepository reads mosque reference data. Mosques are created out of
// band; no write path exists here.
type MosqueRepository struct {
	db *sqlx.DB
}

// NewMosqueRepository constructs the repository.
func NewMosqueRepository(db *sqlx.DB) *MosqueRepository {
	return &MosqueRepository{db: db}
}

// List returns all mosques ordered by name ascending.
func (r *MosqueRepository) List(ctx context.Context) ([]models.Mosque, error) {
	const query = `SELECT id, name, address, image_path FROM mosques ORDER BY name ASC`
	var mosques []models.Mosque
	if err := r.db.SelectContext(ctx, &mosques, query); err != nil {
		return nil, fmt.Errorf("list mosques: %w", err)
	}
	return mosques, nil
}

// ListByIDs returns the mosques for the given identifiers in one batched lookup.
func (r *MosqueRepository) ListByIDs(ctx context.Context, ids []string) ([]models.Mosque, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(ids))
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}
	query := fmt.Sprintf(`SELECT id, name, address, image_path FROM mosques WHERE id IN (%s)`, strings.Join(placeholders, ","))
	var mosques []models.Mosque
	if err := r.db.SelectContext(ctx, &mosques, query, args...); err != nil {
		return nil, fmt.Errorf("list mosques by ids: %w", err)
	}
	return mosques, nil
}
