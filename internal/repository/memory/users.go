package memory

import (
	"context"
	"sort"
	"sync"

	"radruga/internal/repository"
	"radruga/pkg/models"
)

// UserRepo is an in-memory repository.UserRepository
type UserRepo struct {
	mu    sync.RWMutex
	users map[string]*models.User
}

// NewUserRepo creates an empty user repository
func NewUserRepo() *UserRepo {
	return &UserRepo{users: make(map[string]*models.User)}
}

var _ repository.UserRepository = (*UserRepo)(nil)

func (r *UserRepo) AddUser(ctx context.Context, user *models.User) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.ID]; ok {
		return conflict(models.ErrUserExists)
	}
	r.users[user.ID] = user.Clone()
	return nil
}

func (r *UserRepo) GetUser(ctx context.Context, id string) (*models.User, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, notFound(models.ErrUserNotFound)
	}
	return u.Clone(), nil
}

func (r *UserRepo) UpdateUser(ctx context.Context, user *models.User) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.users[user.ID]
	if !ok {
		return notFound(models.ErrUserNotFound)
	}
	stored := user.Clone()
	stored.CreatedAt = existing.CreatedAt
	r.users[user.ID] = stored
	return nil
}

func (r *UserRepo) sorted() []*models.User {
	out := make([]*models.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (r *UserRepo) GetUsers(ctx context.Context, q repository.UserQuery) ([]*models.User, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	if q.Limit <= 0 {
		q.Limit = 100
	}
	all := r.sorted()
	if q.Offset >= len(all) {
		return nil, nil
	}
	all = all[q.Offset:]
	if len(all) > q.Limit {
		all = all[:q.Limit]
	}
	out := make([]*models.User, len(all))
	for i, u := range all {
		out[i] = u.Clone()
	}
	return out, nil
}

func (r *UserRepo) GetRatingProjection(ctx context.Context) ([]models.RatingProjection, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []models.RatingProjection
	for _, u := range r.sorted() {
		if u.Points == nil {
			continue
		}
		p := models.RatingProjection{
			UserID:    u.ID,
			Points:    *u.Points,
			NickName:  u.NickName,
			AvatarURL: u.AvatarURL,
		}
		if u.LastRatingPlace != nil {
			last := *u.LastRatingPlace
			p.LastRatingPlace = &last
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *UserRepo) GetKindScaleLeaders(ctx context.Context, limit int) ([]*models.User, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*models.User
	for _, u := range r.users {
		if u.KindScale > 0 {
			out = append(out, u.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].KindScale != out[j].KindScale {
			return out[i].KindScale > out[j].KindScale
		}
		return out[i].ID < out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *UserRepo) DecreaseKindActionScales(ctx context.Context, decay, highThreshold int) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.KindScale >= highThreshold && u.KindScale > 0 {
			u.KindScaleHighCurrentDays++
		} else {
			u.KindScaleHighCurrentDays = 0
		}
		if u.KindScaleHighCurrentDays > u.KindScaleHighMaxDays {
			u.KindScaleHighMaxDays = u.KindScaleHighCurrentDays
		}
		u.KindScale = max(u.KindScale-decay, 0)
	}
	return nil
}

func (r *UserRepo) UpdateLastRatingsPlaces(ctx context.Context, places []models.RatingPlaceUpdate) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range places {
		u, ok := r.users[p.UserID]
		if !ok {
			continue
		}
		place := p.Place
		u.LastRatingPlace = &place
		u.UpInRatingCurrentDays = p.UpInRatingCurrentDays
		u.UpInRatingMaxDays = p.UpInRatingMaxDays
	}
	return nil
}
