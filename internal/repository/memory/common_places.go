package memory

import (
	"context"
	"slices"
	"sort"
	"sync"

	"radruga/internal/repository"
	"radruga/pkg/models"
)

// CommonPlaceRepo is an in-memory repository.CommonPlaceRepository
type CommonPlaceRepo struct {
	mu      sync.RWMutex
	aliases map[string]models.CommonPlaceAlias
	places  map[string]models.CommonPlace
}

// NewCommonPlaceRepo creates an empty common place repository
func NewCommonPlaceRepo() *CommonPlaceRepo {
	return &CommonPlaceRepo{
		aliases: make(map[string]models.CommonPlaceAlias),
		places:  make(map[string]models.CommonPlace),
	}
}

var _ repository.CommonPlaceRepository = (*CommonPlaceRepo)(nil)

func (r *CommonPlaceRepo) GetAlias(ctx context.Context, id string) (*models.CommonPlaceAlias, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.aliases[id]
	if !ok {
		return nil, notFound(models.ErrAliasNotFound)
	}
	return &a, nil
}

func (r *CommonPlaceRepo) GetAliases(ctx context.Context) ([]*models.CommonPlaceAlias, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*models.CommonPlaceAlias, 0, len(r.aliases))
	for _, a := range r.aliases {
		a := a
		out = append(out, &a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *CommonPlaceRepo) AddAlias(ctx context.Context, alias *models.CommonPlaceAlias) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	r.aliases[alias.ID] = *alias
	return nil
}

func (r *CommonPlaceRepo) GetCommonPlaceByAlias(ctx context.Context, settlement, alias string) (*models.CommonPlace, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.places {
		if p.IsApproved && p.Settlement == settlement && p.Alias == alias {
			return &p, nil
		}
	}
	return nil, notFound(models.ErrCommonPlaceNotFound)
}

func (r *CommonPlaceRepo) GetTemporaryCommonPlaces(ctx context.Context, settlement, alias string, cells []string) ([]*models.CommonPlace, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*models.CommonPlace
	for _, p := range r.places {
		if p.IsApproved || p.Settlement != settlement || p.Alias != alias {
			continue
		}
		if cells != nil && !slices.Contains(cells, p.Cell) {
			continue
		}
		p := p
		out = append(out, &p)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *CommonPlaceRepo) AddCommonPlace(ctx context.Context, place *models.CommonPlace) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.places[place.ID]; ok {
		return conflict(models.ErrAlreadyExists)
	}
	if place.IsApproved && r.hasApproved(place.Settlement, place.Alias) {
		return conflict(models.ErrAlreadyExists)
	}
	r.places[place.ID] = *place
	return nil
}

func (r *CommonPlaceRepo) hasApproved(settlement, alias string) bool {
	for _, p := range r.places {
		if p.IsApproved && p.Settlement == settlement && p.Alias == alias {
			return true
		}
	}
	return false
}

func (r *CommonPlaceRepo) ApproveCommonPlace(ctx context.Context, approved *models.CommonPlace, temporaryIDs []string) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.hasApproved(approved.Settlement, approved.Alias) {
		return conflict(models.ErrAlreadyExists)
	}
	for _, id := range temporaryIDs {
		if p, ok := r.places[id]; ok && !p.IsApproved {
			delete(r.places, id)
		}
	}
	stored := *approved
	stored.IsApproved = true
	r.places[stored.ID] = stored
	return nil
}
