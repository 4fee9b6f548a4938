package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"radruga/internal/metrics"
	"radruga/internal/repository"
	"radruga/pkg/config"
	"radruga/pkg/geo"
	"radruga/pkg/logger"
	"radruga/pkg/models"
	"radruga/pkg/utils"
)

// CommonPlaceService maintains aliases and the crowd-agreed places behind them
type CommonPlaceService interface {
	GetAliases(ctx context.Context) ([]*models.CommonPlaceAlias, error)
	AddAlias(ctx context.Context, alias *models.CommonPlaceAlias) error
	// GetCommonPlaceByAlias returns the approved place, or nil when the
	// settlement has not agreed on one yet
	GetCommonPlaceByAlias(ctx context.Context, settlement, alias string) (*models.CommonPlace, error)
	// AddCommonPlace records a submission for the alias. It returns the
	// approved place when one exists or this submission completed the
	// consensus, and nil while the place is still being agreed on.
	AddCommonPlace(ctx context.Context, userID, settlement, alias string, coordinate models.GeoCoordinate) (*models.CommonPlace, error)
}

type commonPlaceService struct {
	repo    repository.CommonPlaceRepository
	cfg     config.MissionsConfig
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewCommonPlaceService creates a new common place service
func NewCommonPlaceService(repo repository.CommonPlaceRepository, cfg config.MissionsConfig, m *metrics.Metrics) CommonPlaceService {
	return &commonPlaceService{repo: repo, cfg: cfg, metrics: m, now: time.Now}
}

func (s *commonPlaceService) GetAliases(ctx context.Context) ([]*models.CommonPlaceAlias, error) {
	return s.repo.GetAliases(ctx)
}

func (s *commonPlaceService) AddAlias(ctx context.Context, alias *models.CommonPlaceAlias) error {
	alias.ID = strings.TrimSpace(alias.ID)
	if alias.ID == "" {
		return fmt.Errorf("%w: alias id is required", models.ErrInvalidInput)
	}
	if alias.Name == "" {
		alias.Name = alias.ID
	}
	return s.repo.AddAlias(ctx, alias)
}

func (s *commonPlaceService) GetCommonPlaceByAlias(ctx context.Context, settlement, alias string) (*models.CommonPlace, error) {
	place, err := s.repo.GetCommonPlaceByAlias(ctx, settlement, alias)
	if err != nil {
		if models.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return place, nil
}

func (s *commonPlaceService) AddCommonPlace(ctx context.Context, userID, settlement, alias string, coordinate models.GeoCoordinate) (*models.CommonPlace, error) {
	if err := geo.Validate(coordinate); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidInput, err)
	}
	approved, err := s.GetCommonPlaceByAlias(ctx, settlement, alias)
	if err != nil || approved != nil {
		return approved, err
	}

	submission := &models.CommonPlace{
		ID:         utils.GeneratePlaceID(),
		Settlement: settlement,
		Alias:      alias,
		UserID:     userID,
		Coordinate: coordinate,
		Cell:       geo.Cell(coordinate),
		CreatedAt:  s.now(),
	}
	if err := s.repo.AddCommonPlace(ctx, submission); err != nil {
		return nil, fmt.Errorf("store common place submission: %w", err)
	}

	radius := s.cfg.TemporaryCommonPlaceAccuracyRadius
	candidates, err := s.repo.GetTemporaryCommonPlaces(ctx, settlement, alias, geo.CellsWithin(coordinate, radius))
	if err != nil {
		return nil, fmt.Errorf("load common place submissions: %w", err)
	}

	// the submission itself is among the candidates
	var cluster []*models.CommonPlace
	users := make(map[string]struct{})
	for _, c := range candidates {
		if geo.Distance(coordinate, c.Coordinate) > radius {
			continue
		}
		cluster = append(cluster, c)
		users[c.UserID] = struct{}{}
	}
	limit := max(s.cfg.TemporaryCommonPlaceLimit, 1)
	if len(users) < limit {
		return nil, nil
	}
	return s.approve(ctx, settlement, alias, cluster)
}

// approve promotes the cluster to an approved place at its centroid
func (s *commonPlaceService) approve(ctx context.Context, settlement, alias string, cluster []*models.CommonPlace) (*models.CommonPlace, error) {
	points := make([]models.GeoCoordinate, len(cluster))
	ids := make([]string, len(cluster))
	for i, c := range cluster {
		points[i] = c.Coordinate
		ids[i] = c.ID
	}
	center := geo.Centroid(points)
	place := &models.CommonPlace{
		ID:         utils.GeneratePlaceID(),
		Settlement: settlement,
		Alias:      alias,
		Coordinate: center,
		Cell:       geo.Cell(center),
		IsApproved: true,
		CreatedAt:  s.now(),
	}

	if err := s.repo.ApproveCommonPlace(ctx, place, ids); err != nil {
		if errors.Is(err, models.ErrAlreadyExists) {
			// a concurrent submission won the approval
			return s.GetCommonPlaceByAlias(ctx, settlement, alias)
		}
		return nil, fmt.Errorf("approve common place: %w", err)
	}

	s.metrics.CommonPlaceApproved()
	logger.WithFields(map[string]interface{}{
		"settlement":  settlement,
		"alias":       alias,
		"submissions": len(cluster),
	}).Info("common place approved")
	return place, nil
}
