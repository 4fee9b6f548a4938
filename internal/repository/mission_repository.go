package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"radruga/pkg/models"
)

// MissionRepository persists the mission catalog
type MissionRepository interface {
	GetMission(ctx context.Context, id string) (*models.Mission, error)
	// GetMissions returns the missions with the given ids, or every mission
	// when ids is nil. Unknown ids are skipped.
	GetMissions(ctx context.Context, ids []string) ([]*models.Mission, error)
	AddMission(ctx context.Context, mission *models.Mission) error
	UpdateMission(ctx context.Context, mission *models.Mission) error
	DeleteMission(ctx context.Context, id string) error
	// SetMissionSetForMissions points the missions at setID, or clears the
	// back-reference when setID is empty.
	SetMissionSetForMissions(ctx context.Context, missionIDs []string, setID string) error
}

type missionRepository struct {
	pool *pgxpool.Pool
}

// NewMissionRepository creates a new PostgreSQL mission repository
func NewMissionRepository(pool *pgxpool.Pool) MissionRepository {
	return &missionRepository{pool: pool}
}

const missionSelect = `
	SELECT m.id, m.name, m.description, m.execution_type, m.difficulty,
		m.tries_for_1_star, m.tries_for_2_stars, m.tries_for_3_stars,
		m.seconds_for_1_star, m.seconds_for_2_stars, m.seconds_for_3_stars,
		m.correct_answers, m.exact_answer, m.answers_count,
		COALESCE(m.common_place_alias, ''), m.accuracy_radius, m.age_from, m.age_to,
		m.depends_on, COALESCE(l.mission_set_id, ''), m.hints, m.person_qualities
	FROM missions m
	LEFT JOIN mission_set_missions l ON l.mission_id = m.id`

func scanMission(row pgx.Row) (*models.Mission, error) {
	m := &models.Mission{}
	var execType string
	err := row.Scan(
		&m.ID, &m.Name, &m.Description, &execType, &m.Difficulty,
		&m.TriesFor1Star, &m.TriesFor2Stars, &m.TriesFor3Stars,
		&m.SecondsFor1Star, &m.SecondsFor2Stars, &m.SecondsFor3Stars,
		&m.CorrectAnswers, &m.ExactAnswer, &m.AnswersCount,
		&m.CommonPlaceAlias, &m.AccuracyRadius, &m.AgeFrom, &m.AgeTo,
		&m.DependsOn, &m.MissionSetID, &m.Hints, &m.PersonQualities,
	)
	if err != nil {
		return nil, err
	}
	m.ExecutionType = models.ExecutionType(execType)
	return m, nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (r *missionRepository) GetMission(ctx context.Context, id string) (*models.Mission, error) {
	m, err := scanMission(r.pool.QueryRow(ctx, missionSelect+` WHERE m.id = $1`, id))
	if err != nil {
		return nil, mapDBError(err, "get_mission", models.ErrMissionNotFound)
	}
	return m, nil
}

func (r *missionRepository) GetMissions(ctx context.Context, ids []string) ([]*models.Mission, error) {
	var rows pgx.Rows
	var err error
	if ids == nil {
		rows, err = r.pool.Query(ctx, missionSelect+` ORDER BY m.id`)
	} else {
		rows, err = r.pool.Query(ctx, missionSelect+` WHERE m.id = ANY($1) ORDER BY m.id`, ids)
	}
	if err != nil {
		return nil, mapDBError(err, "get_missions", nil)
	}
	defer rows.Close()

	var out []*models.Mission
	for rows.Next() {
		m, err := scanMission(rows)
		if err != nil {
			return nil, mapDBError(err, "scan_mission", nil)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// AddMission inserts the catalog row; set membership is written separately
func (r *missionRepository) AddMission(ctx context.Context, m *models.Mission) error {
	query := `
		INSERT INTO missions (id, name, description, execution_type, difficulty,
			tries_for_1_star, tries_for_2_stars, tries_for_3_stars,
			seconds_for_1_star, seconds_for_2_stars, seconds_for_3_stars,
			correct_answers, exact_answer, answers_count,
			common_place_alias, accuracy_radius, age_from, age_to,
			depends_on, hints, person_qualities)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)`
	_, err := r.pool.Exec(ctx, query,
		m.ID, m.Name, m.Description, string(m.ExecutionType), m.Difficulty,
		m.TriesFor1Star, m.TriesFor2Stars, m.TriesFor3Stars,
		m.SecondsFor1Star, m.SecondsFor2Stars, m.SecondsFor3Stars,
		m.CorrectAnswers, m.ExactAnswer, m.AnswersCount,
		nullIfEmpty(m.CommonPlaceAlias), m.AccuracyRadius, m.AgeFrom, m.AgeTo,
		jsonList(m.DependsOn), jsonList(m.Hints), jsonList(m.PersonQualities),
	)
	return mapDBError(err, "add_mission", models.ErrMissionNotFound)
}

func (r *missionRepository) UpdateMission(ctx context.Context, m *models.Mission) error {
	query := `
		UPDATE missions SET name = $2, description = $3, execution_type = $4, difficulty = $5,
			tries_for_1_star = $6, tries_for_2_stars = $7, tries_for_3_stars = $8,
			seconds_for_1_star = $9, seconds_for_2_stars = $10, seconds_for_3_stars = $11,
			correct_answers = $12, exact_answer = $13, answers_count = $14,
			common_place_alias = $15, accuracy_radius = $16, age_from = $17, age_to = $18,
			depends_on = $19, hints = $20, person_qualities = $21
		WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query,
		m.ID, m.Name, m.Description, string(m.ExecutionType), m.Difficulty,
		m.TriesFor1Star, m.TriesFor2Stars, m.TriesFor3Stars,
		m.SecondsFor1Star, m.SecondsFor2Stars, m.SecondsFor3Stars,
		m.CorrectAnswers, m.ExactAnswer, m.AnswersCount,
		nullIfEmpty(m.CommonPlaceAlias), m.AccuracyRadius, m.AgeFrom, m.AgeTo,
		jsonList(m.DependsOn), jsonList(m.Hints), jsonList(m.PersonQualities),
	)
	if err != nil {
		return mapDBError(err, "update_mission", models.ErrMissionNotFound)
	}
	if tag.RowsAffected() == 0 {
		return mapDBError(pgx.ErrNoRows, "update_mission", models.ErrMissionNotFound)
	}
	return nil
}

// DeleteMission removes the mission; its membership row goes with it
func (r *missionRepository) DeleteMission(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM missions WHERE id = $1`, id)
	if err != nil {
		return mapDBError(err, "delete_mission", models.ErrMissionNotFound)
	}
	if tag.RowsAffected() == 0 {
		return mapDBError(pgx.ErrNoRows, "delete_mission", models.ErrMissionNotFound)
	}
	return nil
}

func (r *missionRepository) SetMissionSetForMissions(ctx context.Context, missionIDs []string, setID string) error {
	if len(missionIDs) == 0 {
		return nil
	}
	if setID == "" {
		_, err := r.pool.Exec(ctx, `DELETE FROM mission_set_missions WHERE mission_id = ANY($1)`, missionIDs)
		return mapDBError(err, "clear_mission_set", nil)
	}
	// a mission already in setID keeps its order; new members go last
	query := `
		INSERT INTO mission_set_missions (mission_id, mission_set_id, ord)
		SELECT id, $2, (SELECT COALESCE(MAX(ord), 0) FROM mission_set_missions WHERE mission_set_id = $2) + n
		FROM unnest($1::text[]) WITH ORDINALITY AS t(id, n)
		ON CONFLICT (mission_id) DO UPDATE
		SET mission_set_id = EXCLUDED.mission_set_id,
			ord = CASE WHEN mission_set_missions.mission_set_id = EXCLUDED.mission_set_id
				THEN mission_set_missions.ord ELSE EXCLUDED.ord END`
	_, err := r.pool.Exec(ctx, query, missionIDs, setID)
	return mapDBError(err, "set_mission_set", nil)
}
