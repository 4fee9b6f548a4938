package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"radruga/pkg/models"
)

// UserDataRepository is an append log of reported kind actions
type UserDataRepository interface {
	AddKindAction(ctx context.Context, action *models.KindAction) error
	GetKindActions(ctx context.Context, userID string, limit int) ([]*models.KindAction, error)
}

type userDataRepository struct {
	pool *pgxpool.Pool
}

// NewUserDataRepository creates a new PostgreSQL kind action repository
func NewUserDataRepository(pool *pgxpool.Pool) UserDataRepository {
	return &userDataRepository{pool: pool}
}

func (r *userDataRepository) AddKindAction(ctx context.Context, a *models.KindAction) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO kind_actions (id, user_id, description, created_at)
		VALUES ($1, $2, $3, $4)`,
		a.ID, a.UserID, a.Description, a.CreatedAt)
	return mapDBError(err, "add_kind_action", nil)
}

// GetKindActions returns the newest actions of the user first
func (r *userDataRepository) GetKindActions(ctx context.Context, userID string, limit int) ([]*models.KindAction, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, description, created_at
		FROM kind_actions WHERE user_id = $1
		ORDER BY created_at DESC LIMIT $2`, userID, limit)
	if err != nil {
		return nil, mapDBError(err, "get_kind_actions", nil)
	}
	defer rows.Close()

	var out []*models.KindAction
	for rows.Next() {
		a := &models.KindAction{}
		if err := rows.Scan(&a.ID, &a.UserID, &a.Description, &a.CreatedAt); err != nil {
			return nil, mapDBError(err, "scan_kind_action", nil)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
