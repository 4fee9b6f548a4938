package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"radruga/pkg/models"
)

// MissionRequestRepository persists completion attempts
type MissionRequestRepository interface {
	AddMissionRequest(ctx context.Context, req *models.MissionRequest) error
	GetMissionRequest(ctx context.Context, id string) (*models.MissionRequest, error)
	// GetMissionRequests returns matching requests, oldest first
	GetMissionRequests(ctx context.Context, filter models.MissionRequestFilter) ([]*models.MissionRequest, error)
	CountMissionRequests(ctx context.Context, userID, missionID string) (int, error)
	UpdateMissionRequest(ctx context.Context, req *models.MissionRequest) error
}

type missionRequestRepository struct {
	pool *pgxpool.Pool
}

// NewMissionRequestRepository creates a new PostgreSQL mission request repository
func NewMissionRequestRepository(pool *pgxpool.Pool) MissionRequestRepository {
	return &missionRequestRepository{pool: pool}
}

const missionRequestColumns = `id, user_id, mission_id, mission_set_id, status, stars_count, proof, decline_reason, created_at, resolved_at`

func scanMissionRequest(row pgx.Row) (*models.MissionRequest, error) {
	req := &models.MissionRequest{}
	var status string
	err := row.Scan(&req.ID, &req.UserID, &req.MissionID, &req.MissionSetID, &status,
		&req.StarsCount, &req.Proof, &req.DeclineReason, &req.CreatedAt, &req.ResolvedAt)
	if err != nil {
		return nil, err
	}
	req.Status = models.RequestStatus(status)
	return req, nil
}

func (r *missionRequestRepository) AddMissionRequest(ctx context.Context, req *models.MissionRequest) error {
	query := `INSERT INTO mission_requests (` + missionRequestColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.pool.Exec(ctx, query,
		req.ID, req.UserID, req.MissionID, req.MissionSetID, string(req.Status),
		req.StarsCount, req.Proof, req.DeclineReason, req.CreatedAt, req.ResolvedAt)
	return mapDBError(err, "add_mission_request", models.ErrMissionRequestNotFound)
}

func (r *missionRequestRepository) GetMissionRequest(ctx context.Context, id string) (*models.MissionRequest, error) {
	query := `SELECT ` + missionRequestColumns + ` FROM mission_requests WHERE id = $1`
	req, err := scanMissionRequest(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, mapDBError(err, "get_mission_request", models.ErrMissionRequestNotFound)
	}
	return req, nil
}

func (r *missionRequestRepository) GetMissionRequests(ctx context.Context, filter models.MissionRequestFilter) ([]*models.MissionRequest, error) {
	var conds []string
	var args []any
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if filter.UserID != "" {
		add("user_id = $%d", filter.UserID)
	}
	if filter.MissionID != "" {
		add("mission_id = $%d", filter.MissionID)
	}
	if filter.Status != "" {
		add("status = $%d", string(filter.Status))
	}

	query := `SELECT ` + missionRequestColumns + ` FROM mission_requests`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY created_at, id`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(` LIMIT $%d`, len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(` OFFSET $%d`, len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, mapDBError(err, "get_mission_requests", nil)
	}
	defer rows.Close()

	var out []*models.MissionRequest
	for rows.Next() {
		req, err := scanMissionRequest(rows)
		if err != nil {
			return nil, mapDBError(err, "scan_mission_request", nil)
		}
		out = append(out, req)
	}
	return out, rows.Err()
}

func (r *missionRequestRepository) CountMissionRequests(ctx context.Context, userID, missionID string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM mission_requests WHERE user_id = $1 AND mission_id = $2`,
		userID, missionID).Scan(&count)
	if err != nil {
		return 0, mapDBError(err, "count_mission_requests", nil)
	}
	return count, nil
}

func (r *missionRequestRepository) UpdateMissionRequest(ctx context.Context, req *models.MissionRequest) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE mission_requests
		SET status = $2, stars_count = $3, proof = $4, decline_reason = $5, resolved_at = $6
		WHERE id = $1`,
		req.ID, string(req.Status), req.StarsCount, req.Proof, req.DeclineReason, req.ResolvedAt)
	if err != nil {
		return mapDBError(err, "update_mission_request", models.ErrMissionRequestNotFound)
	}
	if tag.RowsAffected() == 0 {
		return mapDBError(pgx.ErrNoRows, "update_mission_request", models.ErrMissionRequestNotFound)
	}
	return nil
}
