package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"radruga/pkg/database"
	"radruga/pkg/models"
)

// CommonPlaceRepository persists aliases and crowd-agreed places
type CommonPlaceRepository interface {
	GetAlias(ctx context.Context, id string) (*models.CommonPlaceAlias, error)
	GetAliases(ctx context.Context) ([]*models.CommonPlaceAlias, error)
	AddAlias(ctx context.Context, alias *models.CommonPlaceAlias) error

	// GetCommonPlaceByAlias returns the approved place of the alias in the
	// settlement, or ErrCommonPlaceNotFound
	GetCommonPlaceByAlias(ctx context.Context, settlement, alias string) (*models.CommonPlace, error)
	// GetTemporaryCommonPlaces lists pending submissions, optionally
	// restricted to the given H3 cells
	GetTemporaryCommonPlaces(ctx context.Context, settlement, alias string, cells []string) ([]*models.CommonPlace, error)
	AddCommonPlace(ctx context.Context, place *models.CommonPlace) error
	// ApproveCommonPlace stores the approved place and deletes the
	// temporaries it was built from, atomically
	ApproveCommonPlace(ctx context.Context, approved *models.CommonPlace, temporaryIDs []string) error
}

type commonPlaceRepository struct {
	pool *pgxpool.Pool
}

// NewCommonPlaceRepository creates a new PostgreSQL common place repository
func NewCommonPlaceRepository(pool *pgxpool.Pool) CommonPlaceRepository {
	return &commonPlaceRepository{pool: pool}
}

const commonPlaceColumns = `id, settlement, alias, user_id, latitude, longitude, cell, is_approved, created_at`

func scanCommonPlace(row pgx.Row) (*models.CommonPlace, error) {
	p := &models.CommonPlace{}
	err := row.Scan(&p.ID, &p.Settlement, &p.Alias, &p.UserID,
		&p.Coordinate.Latitude, &p.Coordinate.Longitude, &p.Cell, &p.IsApproved, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *commonPlaceRepository) GetAlias(ctx context.Context, id string) (*models.CommonPlaceAlias, error) {
	a := &models.CommonPlaceAlias{}
	err := r.pool.QueryRow(ctx, `SELECT id, name, description FROM common_place_aliases WHERE id = $1`, id).
		Scan(&a.ID, &a.Name, &a.Description)
	if err != nil {
		return nil, mapDBError(err, "get_alias", models.ErrAliasNotFound)
	}
	return a, nil
}

func (r *commonPlaceRepository) GetAliases(ctx context.Context) ([]*models.CommonPlaceAlias, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, description FROM common_place_aliases ORDER BY id`)
	if err != nil {
		return nil, mapDBError(err, "get_aliases", nil)
	}
	defer rows.Close()

	var out []*models.CommonPlaceAlias
	for rows.Next() {
		a := &models.CommonPlaceAlias{}
		if err := rows.Scan(&a.ID, &a.Name, &a.Description); err != nil {
			return nil, mapDBError(err, "scan_alias", nil)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *commonPlaceRepository) AddAlias(ctx context.Context, alias *models.CommonPlaceAlias) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO common_place_aliases (id, name, description) VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, description = EXCLUDED.description`,
		alias.ID, alias.Name, alias.Description)
	return mapDBError(err, "add_alias", models.ErrAliasNotFound)
}

func (r *commonPlaceRepository) GetCommonPlaceByAlias(ctx context.Context, settlement, alias string) (*models.CommonPlace, error) {
	query := `SELECT ` + commonPlaceColumns + ` FROM common_places
		WHERE settlement = $1 AND alias = $2 AND is_approved`
	p, err := scanCommonPlace(r.pool.QueryRow(ctx, query, settlement, alias))
	if err != nil {
		return nil, mapDBError(err, "get_common_place", models.ErrCommonPlaceNotFound)
	}
	return p, nil
}

func (r *commonPlaceRepository) GetTemporaryCommonPlaces(ctx context.Context, settlement, alias string, cells []string) ([]*models.CommonPlace, error) {
	query := `SELECT ` + commonPlaceColumns + ` FROM common_places
		WHERE settlement = $1 AND alias = $2 AND NOT is_approved`
	args := []any{settlement, alias}
	if cells != nil {
		query += ` AND cell = ANY($3)`
		args = append(args, cells)
	}
	query += ` ORDER BY created_at, id`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, mapDBError(err, "get_temporary_common_places", nil)
	}
	defer rows.Close()

	var out []*models.CommonPlace
	for rows.Next() {
		p, err := scanCommonPlace(rows)
		if err != nil {
			return nil, mapDBError(err, "scan_common_place", nil)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *commonPlaceRepository) AddCommonPlace(ctx context.Context, p *models.CommonPlace) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO common_places (`+commonPlaceColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		p.ID, p.Settlement, p.Alias, p.UserID, p.Coordinate.Latitude, p.Coordinate.Longitude,
		p.Cell, p.IsApproved, p.CreatedAt)
	return mapDBError(err, "add_common_place", models.ErrCommonPlaceNotFound)
}

func (r *commonPlaceRepository) ApproveCommonPlace(ctx context.Context, approved *models.CommonPlace, temporaryIDs []string) error {
	return database.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if len(temporaryIDs) > 0 {
			if _, err := tx.Exec(ctx, `DELETE FROM common_places WHERE id = ANY($1) AND NOT is_approved`, temporaryIDs); err != nil {
				return mapDBError(err, "delete_temporary_common_places", nil)
			}
		}
		_, err := tx.Exec(ctx, `INSERT INTO common_places (`+commonPlaceColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, TRUE, $8)`,
			approved.ID, approved.Settlement, approved.Alias, approved.UserID,
			approved.Coordinate.Latitude, approved.Coordinate.Longitude, approved.Cell, approved.CreatedAt)
		return mapDBError(err, "approve_common_place", models.ErrCommonPlaceNotFound)
	})
}
