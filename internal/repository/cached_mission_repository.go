package repository

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru"

	"radruga/pkg/models"
)

type cachedMissionRepository struct {
	next  MissionRepository
	cache *lru.Cache
}

// NewCachedMissionRepository decorates a mission repository with a bounded
// LRU cache of catalog entries. Writes evict the touched ids.
func NewCachedMissionRepository(next MissionRepository, size int) (MissionRepository, error) {
	if size <= 0 {
		size = 512
	}
	cache, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("create mission cache: %w", err)
	}
	return &cachedMissionRepository{next: next, cache: cache}, nil
}

func (r *cachedMissionRepository) GetMission(ctx context.Context, id string) (*models.Mission, error) {
	if v, ok := r.cache.Get(id); ok {
		return v.(*models.Mission).Clone(), nil
	}
	m, err := r.next.GetMission(ctx, id)
	if err != nil {
		return nil, err
	}
	r.cache.Add(id, m.Clone())
	return m, nil
}

func (r *cachedMissionRepository) GetMissions(ctx context.Context, ids []string) ([]*models.Mission, error) {
	if ids == nil {
		missions, err := r.next.GetMissions(ctx, nil)
		if err != nil {
			return nil, err
		}
		for _, m := range missions {
			r.cache.Add(m.ID, m.Clone())
		}
		return missions, nil
	}

	found := make(map[string]*models.Mission, len(ids))
	var missing []string
	for _, id := range ids {
		if v, ok := r.cache.Get(id); ok {
			found[id] = v.(*models.Mission).Clone()
		} else {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		loaded, err := r.next.GetMissions(ctx, missing)
		if err != nil {
			return nil, err
		}
		for _, m := range loaded {
			r.cache.Add(m.ID, m.Clone())
			found[m.ID] = m
		}
	}

	out := make([]*models.Mission, 0, len(found))
	seen := make(map[string]bool, len(found))
	for _, id := range ids {
		if m, ok := found[id]; ok && !seen[id] {
			seen[id] = true
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *cachedMissionRepository) AddMission(ctx context.Context, m *models.Mission) error {
	defer r.cache.Remove(m.ID)
	return r.next.AddMission(ctx, m)
}

func (r *cachedMissionRepository) UpdateMission(ctx context.Context, m *models.Mission) error {
	defer r.cache.Remove(m.ID)
	return r.next.UpdateMission(ctx, m)
}

func (r *cachedMissionRepository) DeleteMission(ctx context.Context, id string) error {
	defer r.cache.Remove(id)
	return r.next.DeleteMission(ctx, id)
}

func (r *cachedMissionRepository) SetMissionSetForMissions(ctx context.Context, missionIDs []string, setID string) error {
	defer func() {
		for _, id := range missionIDs {
			r.cache.Remove(id)
		}
	}()
	return r.next.SetMissionSetForMissions(ctx, missionIDs, setID)
}

// Purge drops every cached mission. Set writes that move membership call it
// since they bypass this decorator.
func (r *cachedMissionRepository) Purge() {
	r.cache.Purge()
}

// Purger is implemented by repositories holding a cache
type Purger interface {
	Purge()
}
