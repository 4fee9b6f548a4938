package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"radruga/pkg/models"
)

// PersonQualityRepository persists the trait catalog
type PersonQualityRepository interface {
	GetPersonQualities(ctx context.Context) ([]*models.PersonQuality, error)
	GetPersonQuality(ctx context.Context, id string) (*models.PersonQuality, error)
	AddPersonQuality(ctx context.Context, q *models.PersonQuality) error
}

type personQualityRepository struct {
	pool *pgxpool.Pool
}

// NewPersonQualityRepository creates a new PostgreSQL person quality repository
func NewPersonQualityRepository(pool *pgxpool.Pool) PersonQualityRepository {
	return &personQualityRepository{pool: pool}
}

func (r *personQualityRepository) GetPersonQualities(ctx context.Context) ([]*models.PersonQuality, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, description FROM person_qualities ORDER BY id`)
	if err != nil {
		return nil, mapDBError(err, "get_person_qualities", nil)
	}
	defer rows.Close()

	var out []*models.PersonQuality
	for rows.Next() {
		q := &models.PersonQuality{}
		if err := rows.Scan(&q.ID, &q.Name, &q.Description); err != nil {
			return nil, mapDBError(err, "scan_person_quality", nil)
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func (r *personQualityRepository) GetPersonQuality(ctx context.Context, id string) (*models.PersonQuality, error) {
	q := &models.PersonQuality{}
	err := r.pool.QueryRow(ctx, `SELECT id, name, description FROM person_qualities WHERE id = $1`, id).
		Scan(&q.ID, &q.Name, &q.Description)
	if err != nil {
		return nil, mapDBError(err, "get_person_quality", models.ErrPersonQualityNotFound)
	}
	return q, nil
}

// AddPersonQuality inserts or renames a quality
func (r *personQualityRepository) AddPersonQuality(ctx context.Context, q *models.PersonQuality) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO person_qualities (id, name, description) VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, description = EXCLUDED.description`,
		q.ID, q.Name, q.Description)
	return mapDBError(err, "add_person_quality", models.ErrPersonQualityNotFound)
}
