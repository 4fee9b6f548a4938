package memory

import (
	"context"
	"sort"
	"sync"

	"radruga/internal/repository"
	"radruga/pkg/models"
)

// PersonQualityRepo is an in-memory repository.PersonQualityRepository
type PersonQualityRepo struct {
	mu        sync.RWMutex
	qualities map[string]models.PersonQuality
}

func NewPersonQualityRepo() *PersonQualityRepo {
	return &PersonQualityRepo{qualities: make(map[string]models.PersonQuality)}
}

var _ repository.PersonQualityRepository = (*PersonQualityRepo)(nil)

func (r *PersonQualityRepo) GetPersonQualities(ctx context.Context) ([]*models.PersonQuality, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*models.PersonQuality, 0, len(r.qualities))
	for _, q := range r.qualities {
		q := q
		out = append(out, &q)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *PersonQualityRepo) GetPersonQuality(ctx context.Context, id string) (*models.PersonQuality, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	q, ok := r.qualities[id]
	if !ok {
		return nil, notFound(models.ErrPersonQualityNotFound)
	}
	return &q, nil
}

func (r *PersonQualityRepo) AddPersonQuality(ctx context.Context, q *models.PersonQuality) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	r.qualities[q.ID] = *q
	return nil
}

// HintRequestRepo is an in-memory repository.HintRequestRepository
type HintRequestRepo struct {
	mu       sync.RWMutex
	requests []models.HintRequest
}

func NewHintRequestRepo() *HintRequestRepo {
	return &HintRequestRepo{}
}

var _ repository.HintRequestRepository = (*HintRequestRepo)(nil)

func (r *HintRequestRepo) AddHintRequest(ctx context.Context, req *models.HintRequest) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	r.requests = append(r.requests, *req)
	return nil
}

func (r *HintRequestRepo) GetHintRequests(ctx context.Context, userID string) ([]*models.HintRequest, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*models.HintRequest
	for _, h := range r.requests {
		if h.UserID == userID {
			h := h
			out = append(out, &h)
		}
	}
	return out, nil
}

// AppCountersRepo is an in-memory repository.AppCountersRepository
type AppCountersRepo struct {
	mu       sync.Mutex
	counters map[models.AppCounter]int64
}

func NewAppCountersRepo() *AppCountersRepo {
	return &AppCountersRepo{counters: make(map[models.AppCounter]int64)}
}

var _ repository.AppCountersRepository = (*AppCountersRepo)(nil)

func (r *AppCountersRepo) Increment(ctx context.Context, counter models.AppCounter, delta int64) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	r.counters[counter] += delta
	return nil
}

func (r *AppCountersRepo) GetCounters(ctx context.Context) (map[models.AppCounter]int64, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[models.AppCounter]int64, len(r.counters))
	for k, v := range r.counters {
		out[k] = v
	}
	return out, nil
}

// UserDataRepo is an in-memory repository.UserDataRepository
type UserDataRepo struct {
	mu      sync.RWMutex
	actions []models.KindAction
}

func NewUserDataRepo() *UserDataRepo {
	return &UserDataRepo{}
}

var _ repository.UserDataRepository = (*UserDataRepo)(nil)

func (r *UserDataRepo) AddKindAction(ctx context.Context, action *models.KindAction) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	r.actions = append(r.actions, *action)
	return nil
}

func (r *UserDataRepo) GetKindActions(ctx context.Context, userID string, limit int) ([]*models.KindAction, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	if limit <= 0 {
		limit = 50
	}
	var out []*models.KindAction
	for i := len(r.actions) - 1; i >= 0 && len(out) < limit; i-- {
		if r.actions[i].UserID == userID {
			a := r.actions[i]
			out = append(out, &a)
		}
	}
	return out, nil
}
