package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"radruga/pkg/models"
)

// HintRequestRepository is an append log of bought hints
type HintRequestRepository interface {
	AddHintRequest(ctx context.Context, req *models.HintRequest) error
	GetHintRequests(ctx context.Context, userID string) ([]*models.HintRequest, error)
}

type hintRequestRepository struct {
	pool *pgxpool.Pool
}

// NewHintRequestRepository creates a new PostgreSQL hint request repository
func NewHintRequestRepository(pool *pgxpool.Pool) HintRequestRepository {
	return &hintRequestRepository{pool: pool}
}

func (r *hintRequestRepository) AddHintRequest(ctx context.Context, req *models.HintRequest) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO hint_requests (id, user_id, mission_id, hint_id, price, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		req.ID, req.UserID, req.MissionID, req.HintID, req.Price, req.CreatedAt)
	return mapDBError(err, "add_hint_request", nil)
}

func (r *hintRequestRepository) GetHintRequests(ctx context.Context, userID string) ([]*models.HintRequest, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, mission_id, hint_id, price, created_at
		FROM hint_requests WHERE user_id = $1 ORDER BY created_at`, userID)
	if err != nil {
		return nil, mapDBError(err, "get_hint_requests", nil)
	}
	defer rows.Close()

	var out []*models.HintRequest
	for rows.Next() {
		h := &models.HintRequest{}
		if err := rows.Scan(&h.ID, &h.UserID, &h.MissionID, &h.HintID, &h.Price, &h.CreatedAt); err != nil {
			return nil, mapDBError(err, "scan_hint_request", nil)
		}
		out = append(out, h)
	}
	return out, rows.Err()
}
