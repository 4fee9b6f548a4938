package memory

import (
	"context"
	"sort"
	"sync"

	"radruga/internal/repository"
	"radruga/pkg/models"
)

// MissionRequestRepo is an in-memory repository.MissionRequestRepository
type MissionRequestRepo struct {
	mu       sync.RWMutex
	requests map[string]*models.MissionRequest
}

// NewMissionRequestRepo creates an empty mission request repository
func NewMissionRequestRepo() *MissionRequestRepo {
	return &MissionRequestRepo{requests: make(map[string]*models.MissionRequest)}
}

var _ repository.MissionRequestRepository = (*MissionRequestRepo)(nil)

func (r *MissionRequestRepo) AddMissionRequest(ctx context.Context, req *models.MissionRequest) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.requests[req.ID]; ok {
		return conflict(models.ErrAlreadyExists)
	}
	r.requests[req.ID] = req.Clone()
	return nil
}

func (r *MissionRequestRepo) GetMissionRequest(ctx context.Context, id string) (*models.MissionRequest, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	req, ok := r.requests[id]
	if !ok {
		return nil, notFound(models.ErrMissionRequestNotFound)
	}
	return req.Clone(), nil
}

func (r *MissionRequestRepo) GetMissionRequests(ctx context.Context, f models.MissionRequestFilter) ([]*models.MissionRequest, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*models.MissionRequest
	for _, req := range r.requests {
		if f.UserID != "" && req.UserID != f.UserID {
			continue
		}
		if f.MissionID != "" && req.MissionID != f.MissionID {
			continue
		}
		if f.Status != "" && req.Status != f.Status {
			continue
		}
		out = append(out, req.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	if f.Offset > 0 {
		if f.Offset >= len(out) {
			return nil, nil
		}
		out = out[f.Offset:]
	}
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (r *MissionRequestRepo) CountMissionRequests(ctx context.Context, userID, missionID string) (int, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, req := range r.requests {
		if req.UserID == userID && req.MissionID == missionID {
			count++
		}
	}
	return count, nil
}

func (r *MissionRequestRepo) UpdateMissionRequest(ctx context.Context, req *models.MissionRequest) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.requests[req.ID]; !ok {
		return notFound(models.ErrMissionRequestNotFound)
	}
	r.requests[req.ID] = req.Clone()
	return nil
}
