package memory

import (
	"context"
	"sort"
	"sync"

	"radruga/internal/repository"
	"radruga/pkg/models"
)

type link struct {
	setID string
	order int
}

// Catalog holds missions, sets and the membership links between them. Both
// repository views share one lock so membership stays consistent.
type Catalog struct {
	mu       sync.RWMutex
	missions map[string]*models.Mission
	sets     map[string]*models.MissionSet
	links    map[string]link
}

// NewCatalog creates an empty in-memory catalog
func NewCatalog() *Catalog {
	return &Catalog{
		missions: make(map[string]*models.Mission),
		sets:     make(map[string]*models.MissionSet),
		links:    make(map[string]link),
	}
}

// Missions returns the mission repository view
func (c *Catalog) Missions() repository.MissionRepository {
	return &missionRepo{c: c}
}

// MissionSets returns the mission set repository view
func (c *Catalog) MissionSets() repository.MissionSetRepository {
	return &missionSetRepo{c: c}
}

// mission must be called with c.mu held
func (c *Catalog) mission(id string) *models.Mission {
	m, ok := c.missions[id]
	if !ok {
		return nil
	}
	out := m.Clone()
	out.MissionSetID = c.links[id].setID
	return out
}

// set must be called with c.mu held
func (c *Catalog) set(id string) *models.MissionSet {
	s, ok := c.sets[id]
	if !ok {
		return nil
	}
	out := s.Clone()
	out.Missions = nil
	for missionID, l := range c.links {
		if l.setID == id {
			out.Missions = append(out.Missions, models.MissionWithOrder{MissionID: missionID, Order: l.order})
		}
	}
	out.Missions = out.SortedMissions()
	return out
}

func (c *Catalog) maxOrder(setID string) int {
	top := 0
	for _, l := range c.links {
		if l.setID == setID && l.order > top {
			top = l.order
		}
	}
	return top
}

type missionRepo struct {
	c *Catalog
}

func (r *missionRepo) GetMission(ctx context.Context, id string) (*models.Mission, error) {
	_ = ctx
	r.c.mu.RLock()
	defer r.c.mu.RUnlock()

	m := r.c.mission(id)
	if m == nil {
		return nil, notFound(models.ErrMissionNotFound)
	}
	return m, nil
}

func (r *missionRepo) GetMissions(ctx context.Context, ids []string) ([]*models.Mission, error) {
	_ = ctx
	r.c.mu.RLock()
	defer r.c.mu.RUnlock()

	var out []*models.Mission
	if ids == nil {
		for id := range r.c.missions {
			out = append(out, r.c.mission(id))
		}
	} else {
		seen := make(map[string]bool, len(ids))
		for _, id := range ids {
			if seen[id] {
				continue
			}
			seen[id] = true
			if m := r.c.mission(id); m != nil {
				out = append(out, m)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *missionRepo) AddMission(ctx context.Context, m *models.Mission) error {
	_ = ctx
	r.c.mu.Lock()
	defer r.c.mu.Unlock()

	if _, ok := r.c.missions[m.ID]; ok {
		return conflict(models.ErrAlreadyExists)
	}
	stored := m.Clone()
	stored.MissionSetID = ""
	r.c.missions[m.ID] = stored
	return nil
}

func (r *missionRepo) UpdateMission(ctx context.Context, m *models.Mission) error {
	_ = ctx
	r.c.mu.Lock()
	defer r.c.mu.Unlock()

	if _, ok := r.c.missions[m.ID]; !ok {
		return notFound(models.ErrMissionNotFound)
	}
	stored := m.Clone()
	stored.MissionSetID = ""
	r.c.missions[m.ID] = stored
	return nil
}

func (r *missionRepo) DeleteMission(ctx context.Context, id string) error {
	_ = ctx
	r.c.mu.Lock()
	defer r.c.mu.Unlock()

	if _, ok := r.c.missions[id]; !ok {
		return notFound(models.ErrMissionNotFound)
	}
	delete(r.c.missions, id)
	delete(r.c.links, id)
	return nil
}

func (r *missionRepo) SetMissionSetForMissions(ctx context.Context, missionIDs []string, setID string) error {
	_ = ctx
	r.c.mu.Lock()
	defer r.c.mu.Unlock()

	if setID == "" {
		for _, id := range missionIDs {
			delete(r.c.links, id)
		}
		return nil
	}
	if _, ok := r.c.sets[setID]; !ok {
		return invalidRelation()
	}
	next := r.c.maxOrder(setID)
	for _, id := range missionIDs {
		if _, ok := r.c.missions[id]; !ok {
			return invalidRelation()
		}
		if l, ok := r.c.links[id]; ok && l.setID == setID {
			continue
		}
		next++
		r.c.links[id] = link{setID: setID, order: next}
	}
	return nil
}

type missionSetRepo struct {
	c *Catalog
}

func (r *missionSetRepo) GetMissionSet(ctx context.Context, id string) (*models.MissionSet, error) {
	_ = ctx
	r.c.mu.RLock()
	defer r.c.mu.RUnlock()

	s := r.c.set(id)
	if s == nil {
		return nil, notFound(models.ErrMissionSetNotFound)
	}
	return s, nil
}

func (r *missionSetRepo) GetMissionSets(ctx context.Context) ([]*models.MissionSet, error) {
	_ = ctx
	r.c.mu.RLock()
	defer r.c.mu.RUnlock()

	out := make([]*models.MissionSet, 0, len(r.c.sets))
	for id := range r.c.sets {
		out = append(out, r.c.set(id))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// writeMembers must be called with c.mu held
func (r *missionSetRepo) writeMembers(set *models.MissionSet) error {
	for _, m := range set.Missions {
		if _, ok := r.c.missions[m.MissionID]; !ok {
			return invalidRelation()
		}
	}
	for missionID, l := range r.c.links {
		if l.setID == set.ID && !set.Contains(missionID) {
			delete(r.c.links, missionID)
		}
	}
	for _, m := range set.Missions {
		r.c.links[m.MissionID] = link{setID: set.ID, order: m.Order}
	}
	return nil
}

func (r *missionSetRepo) AddMissionSet(ctx context.Context, set *models.MissionSet) error {
	_ = ctx
	r.c.mu.Lock()
	defer r.c.mu.Unlock()

	if _, ok := r.c.sets[set.ID]; ok {
		return conflict(models.ErrAlreadyExists)
	}
	if err := r.writeMembers(set); err != nil {
		return err
	}
	r.c.sets[set.ID] = set.Clone()
	return nil
}

func (r *missionSetRepo) UpdateMissionSet(ctx context.Context, set *models.MissionSet) error {
	_ = ctx
	r.c.mu.Lock()
	defer r.c.mu.Unlock()

	if _, ok := r.c.sets[set.ID]; !ok {
		return notFound(models.ErrMissionSetNotFound)
	}
	if err := r.writeMembers(set); err != nil {
		return err
	}
	r.c.sets[set.ID] = set.Clone()
	return nil
}

func (r *missionSetRepo) DeleteMissionSet(ctx context.Context, id string) error {
	_ = ctx
	r.c.mu.Lock()
	defer r.c.mu.Unlock()

	if _, ok := r.c.sets[id]; !ok {
		return notFound(models.ErrMissionSetNotFound)
	}
	delete(r.c.sets, id)
	for missionID, l := range r.c.links {
		if l.setID == id {
			delete(r.c.links, missionID)
		}
	}
	return nil
}

func (r *missionSetRepo) RefreshMissionDependentLinks(ctx context.Context, id string) error {
	_ = ctx
	r.c.mu.Lock()
	defer r.c.mu.Unlock()

	set := r.c.set(id)
	if set == nil {
		return notFound(models.ErrMissionSetNotFound)
	}
	members := make([]*models.Mission, 0, len(set.Missions))
	for _, m := range set.Missions {
		if mission := r.c.mission(m.MissionID); mission != nil {
			members = append(members, mission)
		}
	}
	set.RefreshAggregates(members)
	r.c.sets[id] = set
	return nil
}

// NewRepositories wires a complete in-memory store
func NewRepositories() *repository.Repositories {
	catalog := NewCatalog()
	return &repository.Repositories{
		Users:           NewUserRepo(),
		Missions:        catalog.Missions(),
		MissionSets:     catalog.MissionSets(),
		MissionRequests: NewMissionRequestRepo(),
		CommonPlaces:    NewCommonPlaceRepo(),
		PersonQualities: NewPersonQualityRepo(),
		HintRequests:    NewHintRequestRepo(),
		Counters:        NewAppCountersRepo(),
		UserData:        NewUserDataRepo(),
	}
}
