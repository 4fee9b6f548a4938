package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"radruga/pkg/models"
)

// UserQuery pages through users
type UserQuery struct {
	Limit  int
	Offset int
}

// UserRepository persists users and their mission progress
type UserRepository interface {
	AddUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	// UpdateUser replaces the stored user with the given one
	UpdateUser(ctx context.Context, user *models.User) error
	GetUsers(ctx context.Context, q UserQuery) ([]*models.User, error)

	// GetRatingProjection returns every user with non-null points
	GetRatingProjection(ctx context.Context) ([]models.RatingProjection, error)
	GetKindScaleLeaders(ctx context.Context, limit int) ([]*models.User, error)

	// DecreaseKindActionScales lowers every positive kind scale by decay
	// (never below zero) and maintains the high-scale day streaks.
	DecreaseKindActionScales(ctx context.Context, decay, highThreshold int) error
	UpdateLastRatingsPlaces(ctx context.Context, places []models.RatingPlaceUpdate) error
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new PostgreSQL user repository
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

const userColumns = `id, nick_name, avatar_url, role, date_of_birth, settlement, home_coordinate,
	points, level, level_points, coins_count,
	kind_scale, kind_actions_count, kind_scale_high_current_days, kind_scale_high_max_days,
	three_stars_current_streak, three_stars_max_streak,
	last_rating_place, up_in_rating_current_days, up_in_rating_max_days,
	active_mission_ids, completed_mission_ids, failed_mission_ids,
	active_mission_set_ids, mission_set_ids, bought_hint_ids, person_qualities_with_scores,
	radruga_color, created_at`

func userArgs(u *models.User) ([]any, error) {
	var home []byte
	if u.HomeCoordinate != nil {
		var err error
		if home, err = json.Marshal(u.HomeCoordinate); err != nil {
			return nil, fmt.Errorf("encode home coordinate: %w", err)
		}
	}
	return []any{
		u.ID, u.NickName, u.AvatarURL, string(u.Role), u.DateOfBirth, u.Settlement, home,
		u.Points, u.Level, u.LevelPoints, u.CoinsCount,
		u.KindScale, u.KindActionsCount, u.KindScaleHighCurrentDays, u.KindScaleHighMaxDays,
		u.ThreeStarsCurrentStreak, u.ThreeStarsMaxStreak,
		u.LastRatingPlace, u.UpInRatingCurrentDays, u.UpInRatingMaxDays,
		jsonList(u.ActiveMissionIds), jsonList(u.CompletedMissionIds), jsonList(u.FailedMissionIds),
		jsonList(u.ActiveMissionSetIds), jsonList(u.MissionSetIds), jsonList(u.BoughtHintIds), jsonList(u.PersonQualitiesWithScores),
		u.RadrugaColor, u.CreatedAt,
	}, nil
}

func scanUser(row pgx.Row) (*models.User, error) {
	u := &models.User{}
	var role string
	err := row.Scan(
		&u.ID, &u.NickName, &u.AvatarURL, &role, &u.DateOfBirth, &u.Settlement, &u.HomeCoordinate,
		&u.Points, &u.Level, &u.LevelPoints, &u.CoinsCount,
		&u.KindScale, &u.KindActionsCount, &u.KindScaleHighCurrentDays, &u.KindScaleHighMaxDays,
		&u.ThreeStarsCurrentStreak, &u.ThreeStarsMaxStreak,
		&u.LastRatingPlace, &u.UpInRatingCurrentDays, &u.UpInRatingMaxDays,
		&u.ActiveMissionIds, &u.CompletedMissionIds, &u.FailedMissionIds,
		&u.ActiveMissionSetIds, &u.MissionSetIds, &u.BoughtHintIds, &u.PersonQualitiesWithScores,
		&u.RadrugaColor, &u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	u.Role = models.UserRole(role)
	return u, nil
}

// AddUser inserts a new user
func (r *userRepository) AddUser(ctx context.Context, user *models.User) error {
	args, err := userArgs(user)
	if err != nil {
		return err
	}
	query := `INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20,
			$21, $22, $23, $24, $25, $26, $27, $28, $29)`
	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		mapped := mapDBError(err, "add_user", models.ErrUserNotFound)
		if errors.Is(mapped, models.ErrAlreadyExists) {
			return models.NewHTTPError(models.ErrCodeConflict, "user already exists", http.StatusConflict, models.ErrUserExists)
		}
		return mapped
	}
	return nil
}

// GetUser retrieves a user by ID
func (r *userRepository) GetUser(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := scanUser(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, mapDBError(err, "get_user", models.ErrUserNotFound)
	}
	return user, nil
}

// UpdateUser overwrites every mutable column of the user
func (r *userRepository) UpdateUser(ctx context.Context, user *models.User) error {
	args, err := userArgs(user)
	if err != nil {
		return err
	}
	query := `
		UPDATE users SET
			nick_name = $2, avatar_url = $3, role = $4, date_of_birth = $5, settlement = $6, home_coordinate = $7,
			points = $8, level = $9, level_points = $10, coins_count = $11,
			kind_scale = $12, kind_actions_count = $13, kind_scale_high_current_days = $14, kind_scale_high_max_days = $15,
			three_stars_current_streak = $16, three_stars_max_streak = $17,
			last_rating_place = $18, up_in_rating_current_days = $19, up_in_rating_max_days = $20,
			active_mission_ids = $21, completed_mission_ids = $22, failed_mission_ids = $23,
			active_mission_set_ids = $24, mission_set_ids = $25, bought_hint_ids = $26, person_qualities_with_scores = $27,
			radruga_color = $28
		WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, args[:28]...)
	if err != nil {
		return mapDBError(err, "update_user", models.ErrUserNotFound)
	}
	if tag.RowsAffected() == 0 {
		return mapDBError(pgx.ErrNoRows, "update_user", models.ErrUserNotFound)
	}
	return nil
}

// GetUsers pages through users ordered by creation
func (r *userRepository) GetUsers(ctx context.Context, q UserQuery) ([]*models.User, error) {
	if q.Limit <= 0 {
		q.Limit = 100
	}
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at, id LIMIT $1 OFFSET $2`
	rows, err := r.pool.Query(ctx, query, q.Limit, q.Offset)
	if err != nil {
		return nil, mapDBError(err, "get_users", nil)
	}
	defer rows.Close()

	var out []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, mapDBError(err, "scan_user", nil)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *userRepository) GetRatingProjection(ctx context.Context) ([]models.RatingProjection, error) {
	query := `
		SELECT id, points, nick_name, avatar_url, last_rating_place
		FROM users
		WHERE points IS NOT NULL`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, mapDBError(err, "get_rating_projection", nil)
	}
	defer rows.Close()

	var out []models.RatingProjection
	for rows.Next() {
		var p models.RatingProjection
		if err := rows.Scan(&p.UserID, &p.Points, &p.NickName, &p.AvatarURL, &p.LastRatingPlace); err != nil {
			return nil, mapDBError(err, "scan_rating_projection", nil)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *userRepository) GetKindScaleLeaders(ctx context.Context, limit int) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE kind_scale > 0 ORDER BY kind_scale DESC, id LIMIT $1`
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, mapDBError(err, "get_kind_scale_leaders", nil)
	}
	defer rows.Close()

	var out []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, mapDBError(err, "scan_user", nil)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *userRepository) DecreaseKindActionScales(ctx context.Context, decay, highThreshold int) error {
	query := `
		UPDATE users SET
			kind_scale_high_current_days = CASE WHEN kind_scale >= $2 THEN kind_scale_high_current_days + 1 ELSE 0 END,
			kind_scale_high_max_days = GREATEST(kind_scale_high_max_days,
				CASE WHEN kind_scale >= $2 THEN kind_scale_high_current_days + 1 ELSE 0 END),
			kind_scale = GREATEST(kind_scale - $1, 0)
		WHERE kind_scale > 0 OR kind_scale_high_current_days > 0`
	if _, err := r.pool.Exec(ctx, query, decay, highThreshold); err != nil {
		return mapDBError(err, "decrease_kind_action_scales", nil)
	}
	return nil
}

func (r *userRepository) UpdateLastRatingsPlaces(ctx context.Context, places []models.RatingPlaceUpdate) error {
	if len(places) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, p := range places {
		batch.Queue(`
			UPDATE users
			SET last_rating_place = $2, up_in_rating_current_days = $3, up_in_rating_max_days = $4
			WHERE id = $1`, p.UserID, p.Place, p.UpInRatingCurrentDays, p.UpInRatingMaxDays)
	}
	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()
	for range places {
		if _, err := results.Exec(); err != nil {
			return mapDBError(err, "update_last_ratings_places", nil)
		}
	}
	return nil
}
