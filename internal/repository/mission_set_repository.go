package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"radruga/pkg/database"
	"radruga/pkg/models"
)

// MissionSetRepository persists mission sets and their membership
type MissionSetRepository interface {
	GetMissionSet(ctx context.Context, id string) (*models.MissionSet, error)
	GetMissionSets(ctx context.Context) ([]*models.MissionSet, error)
	AddMissionSet(ctx context.Context, set *models.MissionSet) error
	// UpdateMissionSet stores the set and its membership. Members claimed
	// by another set move to this one.
	UpdateMissionSet(ctx context.Context, set *models.MissionSet) error
	DeleteMissionSet(ctx context.Context, id string) error
	// RefreshMissionDependentLinks recomputes the age range and trait sum of
	// the set from its current member missions.
	RefreshMissionDependentLinks(ctx context.Context, id string) error
}

type missionSetRepository struct {
	pool     *pgxpool.Pool
	missions MissionRepository
}

// NewMissionSetRepository creates a new PostgreSQL mission set repository
func NewMissionSetRepository(pool *pgxpool.Pool, missions MissionRepository) MissionSetRepository {
	return &missionSetRepository{pool: pool, missions: missions}
}

func (r *missionSetRepository) loadMembers(ctx context.Context, sets map[string]*models.MissionSet) error {
	if len(sets) == 0 {
		return nil
	}
	ids := make([]string, 0, len(sets))
	for id := range sets {
		ids = append(ids, id)
	}
	rows, err := r.pool.Query(ctx, `
		SELECT mission_set_id, mission_id, ord
		FROM mission_set_missions
		WHERE mission_set_id = ANY($1)
		ORDER BY mission_set_id, ord, mission_id`, ids)
	if err != nil {
		return mapDBError(err, "get_mission_set_members", nil)
	}
	defer rows.Close()
	for rows.Next() {
		var setID string
		var m models.MissionWithOrder
		if err := rows.Scan(&setID, &m.MissionID, &m.Order); err != nil {
			return mapDBError(err, "scan_mission_set_member", nil)
		}
		sets[setID].Missions = append(sets[setID].Missions, m)
	}
	return rows.Err()
}

func (r *missionSetRepository) GetMissionSet(ctx context.Context, id string) (*models.MissionSet, error) {
	set := &models.MissionSet{}
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, age_from, age_to, person_qualities
		FROM mission_sets WHERE id = $1`, id,
	).Scan(&set.ID, &set.Name, &set.AgeFrom, &set.AgeTo, &set.PersonQualities)
	if err != nil {
		return nil, mapDBError(err, "get_mission_set", models.ErrMissionSetNotFound)
	}
	if err := r.loadMembers(ctx, map[string]*models.MissionSet{id: set}); err != nil {
		return nil, err
	}
	return set, nil
}

func (r *missionSetRepository) GetMissionSets(ctx context.Context) ([]*models.MissionSet, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, age_from, age_to, person_qualities
		FROM mission_sets ORDER BY id`)
	if err != nil {
		return nil, mapDBError(err, "get_mission_sets", nil)
	}
	var out []*models.MissionSet
	byID := make(map[string]*models.MissionSet)
	for rows.Next() {
		set := &models.MissionSet{}
		if err := rows.Scan(&set.ID, &set.Name, &set.AgeFrom, &set.AgeTo, &set.PersonQualities); err != nil {
			rows.Close()
			return nil, mapDBError(err, "scan_mission_set", nil)
		}
		out = append(out, set)
		byID[set.ID] = set
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, mapDBError(err, "get_mission_sets", nil)
	}
	if err := r.loadMembers(ctx, byID); err != nil {
		return nil, err
	}
	return out, nil
}

func writeMembers(ctx context.Context, tx pgx.Tx, set *models.MissionSet) error {
	ids := make([]string, len(set.Missions))
	orders := make([]int32, len(set.Missions))
	for i, m := range set.Missions {
		ids[i] = m.MissionID
		orders[i] = int32(m.Order)
	}
	if _, err := tx.Exec(ctx,
		`DELETE FROM mission_set_missions WHERE mission_set_id = $1 AND NOT (mission_id = ANY($2))`,
		set.ID, ids); err != nil {
		return mapDBError(err, "trim_mission_set_members", nil)
	}
	if len(ids) == 0 {
		return nil
	}
	_, err := tx.Exec(ctx, `
		INSERT INTO mission_set_missions (mission_id, mission_set_id, ord)
		SELECT * FROM unnest($1::text[], $2::text[], $3::int[])
		ON CONFLICT (mission_id) DO UPDATE
		SET mission_set_id = EXCLUDED.mission_set_id, ord = EXCLUDED.ord`,
		ids, repeat(set.ID, len(ids)), orders)
	return mapDBError(err, "write_mission_set_members", nil)
}

func repeat(s string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = s
	}
	return out
}

// purgeMissions drops cached missions whose set back-reference may be stale
func (r *missionSetRepository) purgeMissions(err error) error {
	if p, ok := r.missions.(Purger); ok && err == nil {
		p.Purge()
	}
	return err
}

func (r *missionSetRepository) AddMissionSet(ctx context.Context, set *models.MissionSet) error {
	return r.purgeMissions(database.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO mission_sets (id, name, age_from, age_to, person_qualities)
			VALUES ($1, $2, $3, $4, $5)`,
			set.ID, set.Name, set.AgeFrom, set.AgeTo, jsonList(set.PersonQualities))
		if err != nil {
			return mapDBError(err, "add_mission_set", models.ErrMissionSetNotFound)
		}
		return writeMembers(ctx, tx, set)
	}))
}

func (r *missionSetRepository) UpdateMissionSet(ctx context.Context, set *models.MissionSet) error {
	return r.purgeMissions(database.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE mission_sets SET name = $2, age_from = $3, age_to = $4, person_qualities = $5
			WHERE id = $1`,
			set.ID, set.Name, set.AgeFrom, set.AgeTo, jsonList(set.PersonQualities))
		if err != nil {
			return mapDBError(err, "update_mission_set", models.ErrMissionSetNotFound)
		}
		if tag.RowsAffected() == 0 {
			return mapDBError(pgx.ErrNoRows, "update_mission_set", models.ErrMissionSetNotFound)
		}
		return writeMembers(ctx, tx, set)
	}))
}

// DeleteMissionSet removes the set; membership rows cascade, which clears the
// back-reference of every member mission
func (r *missionSetRepository) DeleteMissionSet(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM mission_sets WHERE id = $1`, id)
	if err != nil {
		return mapDBError(err, "delete_mission_set", models.ErrMissionSetNotFound)
	}
	if tag.RowsAffected() == 0 {
		return mapDBError(pgx.ErrNoRows, "delete_mission_set", models.ErrMissionSetNotFound)
	}
	return r.purgeMissions(nil)
}

func (r *missionSetRepository) RefreshMissionDependentLinks(ctx context.Context, id string) error {
	set, err := r.GetMissionSet(ctx, id)
	if err != nil {
		return err
	}
	members, err := r.missions.GetMissions(ctx, set.MissionIDs())
	if err != nil {
		return fmt.Errorf("load members of %s: %w", id, err)
	}
	set.RefreshAggregates(members)
	_, err = r.pool.Exec(ctx, `
		UPDATE mission_sets SET age_from = $2, age_to = $3, person_qualities = $4
		WHERE id = $1`,
		set.ID, set.AgeFrom, set.AgeTo, jsonList(set.PersonQualities))
	return mapDBError(err, "refresh_mission_set", models.ErrMissionSetNotFound)
}
