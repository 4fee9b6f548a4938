package core

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"radruga/internal/metrics"
	"radruga/internal/repository"
	"radruga/pkg/config"
	"radruga/pkg/logger"
	"radruga/pkg/models"
)

// RatingService owns the process-wide leaderboard
type RatingService interface {
	// GetRatings returns the leaders of the rating. For the common rating a
	// user outside the leaders also gets the window of neighboring buckets.
	GetRatings(ctx context.Context, ratingType models.RatingType, userID string) (*models.Ratings, error)
	// UpdateUserRating moves the stored user from oldPoints to its current
	// points. A cache that disagrees with oldPoints is rebuilt.
	UpdateUserRating(ctx context.Context, user *models.User, oldPoints *int) error
	BuildRatings(ctx context.Context) error
	GetUserRanks(ctx context.Context, userIDs []string) ([]models.UserRank, error)
	UpdateAvatar(ctx context.Context, userID, avatarURL string) error
	UpdateNickname(ctx context.Context, userID, nickName string) error
	// UpdateLastRatingPlaces snapshots the current places into the users and
	// maintains their rating-climb streaks.
	UpdateLastRatingPlaces(ctx context.Context) error
}

const (
	rebuildLazy     = "lazy"
	rebuildManual   = "manual"
	rebuildSelfHeal = "self_heal"
	rebuildDaily    = "daily"

	usersPageSize = 500
)

type ratingService struct {
	users   repository.UserRepository
	cfg     config.MissionsConfig
	metrics *metrics.Metrics

	cache *ratingCache
	ready atomic.Bool
	group singleflight.Group
}

// NewRatingService creates a rating service. The cache is built on first use.
func NewRatingService(users repository.UserRepository, cfg config.MissionsConfig, m *metrics.Metrics) RatingService {
	if cfg.LeadersCount <= 0 {
		cfg.LeadersCount = config.Default().Missions.LeadersCount
	}
	return &ratingService{
		users:   users,
		cfg:     cfg,
		metrics: m,
		cache:   newRatingCache(),
	}
}

// rebuild reloads the cache from the user store. Concurrent callers share one
// load.
func (s *ratingService) rebuild(ctx context.Context, trigger string) error {
	_, err, _ := s.group.Do("rebuild", func() (interface{}, error) {
		start := time.Now()
		rows, err := s.users.GetRatingProjection(ctx)
		if err != nil {
			return nil, fmt.Errorf("load rating projection: %w", err)
		}
		s.cache.build(rows)
		s.ready.Store(true)

		took := time.Since(start)
		size := s.cache.size()
		s.metrics.RatingRebuild(trigger, took, size)
		s.metrics.RatingUsers(size)
		logger.Rating(trigger+" rebuild", size, took)
		return nil, nil
	})
	return err
}

func (s *ratingService) ensureReady(ctx context.Context) error {
	if s.ready.Load() {
		return nil
	}
	return s.rebuild(ctx, rebuildLazy)
}

func (s *ratingService) BuildRatings(ctx context.Context) error {
	return s.rebuild(ctx, rebuildManual)
}

func (s *ratingService) GetRatings(ctx context.Context, ratingType models.RatingType, userID string) (*models.Ratings, error) {
	switch ratingType {
	case models.RatingKindScale:
		return s.kindScaleRatings(ctx)
	case models.RatingCommon, "":
	default:
		return nil, fmt.Errorf("%w: unknown rating type %q", models.ErrInvalidInput, ratingType)
	}

	if err := s.ensureReady(ctx); err != nil {
		return nil, err
	}
	ratings := &models.Ratings{
		Type:    models.RatingCommon,
		Leaders: s.cache.leaders(s.cfg.LeadersCount),
	}
	if userID == "" {
		return ratings, nil
	}
	for _, l := range ratings.Leaders {
		if l.UserID == userID {
			return ratings, nil
		}
	}
	ratings.Neighbors = s.cache.neighbors(userID)
	return ratings, nil
}

// kindScaleRatings reads the kind scale top straight from the store; users
// with equal scale share a place.
func (s *ratingService) kindScaleRatings(ctx context.Context) (*models.Ratings, error) {
	users, err := s.users.GetKindScaleLeaders(ctx, s.cfg.LeadersCount)
	if err != nil {
		return nil, fmt.Errorf("load kind scale leaders: %w", err)
	}
	ratings := &models.Ratings{Type: models.RatingKindScale, Leaders: make([]models.RatingInfo, 0, len(users))}
	place := 0
	for i, u := range users {
		if i == 0 || u.KindScale != users[i-1].KindScale {
			place = i + 1
		}
		ratings.Leaders = append(ratings.Leaders, models.RatingInfo{
			UserID:    u.ID,
			NickName:  u.NickName,
			AvatarURL: u.AvatarURL,
			Points:    u.KindScale,
			Place:     place,
		})
	}
	return ratings, nil
}

func (s *ratingService) UpdateUserRating(ctx context.Context, user *models.User, oldPoints *int) error {
	if !s.ready.Load() {
		// the lazy build reads the already stored user
		return s.ensureReady(ctx)
	}
	if err := s.cache.move(user, oldPoints, user.Points); err != nil {
		logger.WithFields(map[string]interface{}{
			"user_id": user.ID,
		}).WithError(err).Warn("rating cache out of sync, rebuilding")
		s.ready.Store(false)
		return s.rebuild(ctx, rebuildSelfHeal)
	}
	return nil
}

func (s *ratingService) GetUserRanks(ctx context.Context, userIDs []string) ([]models.UserRank, error) {
	if err := s.ensureReady(ctx); err != nil {
		return nil, err
	}
	out := make([]models.UserRank, 0, len(userIDs))
	for _, id := range userIDs {
		if rank, ok := s.cache.rank(id); ok {
			out = append(out, rank)
		}
	}
	return out, nil
}

func (s *ratingService) UpdateAvatar(ctx context.Context, userID, avatarURL string) error {
	if !s.ready.Load() {
		return nil
	}
	s.cache.setProfile(userID, nil, &avatarURL)
	return nil
}

func (s *ratingService) UpdateNickname(ctx context.Context, userID, nickName string) error {
	if !s.ready.Load() {
		return nil
	}
	s.cache.setProfile(userID, &nickName, nil)
	return nil
}

func (s *ratingService) UpdateLastRatingPlaces(ctx context.Context) error {
	if err := s.rebuild(ctx, rebuildDaily); err != nil {
		return err
	}
	places := s.cache.places()

	var updates []models.RatingPlaceUpdate
	for offset := 0; ; offset += usersPageSize {
		users, err := s.users.GetUsers(ctx, repository.UserQuery{Limit: usersPageSize, Offset: offset})
		if err != nil {
			return fmt.Errorf("load users: %w", err)
		}
		for _, u := range users {
			place, ok := places[u.ID]
			if !ok {
				continue
			}
			updates = append(updates, placeUpdate(u, place))
		}
		if len(users) < usersPageSize {
			break
		}
	}

	if err := s.users.UpdateLastRatingsPlaces(ctx, updates); err != nil {
		return fmt.Errorf("store rating places: %w", err)
	}
	logger.Infof("stored rating places of %d users", len(updates))
	// tie-breaks use the new last places
	return s.rebuild(ctx, rebuildDaily)
}

// placeUpdate extends the climb streak when the user moved up since the last
// snapshot and resets it otherwise.
func placeUpdate(u *models.User, place int) models.RatingPlaceUpdate {
	current := 0
	if u.LastRatingPlace != nil && place < *u.LastRatingPlace {
		current = u.UpInRatingCurrentDays + 1
	}
	return models.RatingPlaceUpdate{
		UserID:                u.ID,
		Place:                 place,
		UpInRatingCurrentDays: current,
		UpInRatingMaxDays:     max(u.UpInRatingMaxDays, current),
	}
}
