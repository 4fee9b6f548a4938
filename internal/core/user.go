package core

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"radruga/internal/lock"
	"radruga/internal/repository"
	"radruga/pkg/config"
	"radruga/pkg/logger"
	"radruga/pkg/models"
	"radruga/pkg/utils"
)

// UserService manages player profiles outside the completion flow
type UserService interface {
	Register(ctx context.Context, req models.RegisterRequest) (models.IdResult, error)
	GetUser(ctx context.Context, id string) (*models.User, error)
	UpdateProfile(ctx context.Context, userID string, req models.UpdateProfileRequest) (models.OperationResult, error)
	AddKindAction(ctx context.Context, userID, description string) (models.OperationResult, error)
	GetKindActions(ctx context.Context, userID string, limit int) ([]*models.KindAction, error)
	// GetMissionSetsForUser lists the sets attached to the user in display order
	GetMissionSetsForUser(ctx context.Context, userID string) ([]*models.MissionSet, error)
	GetCounters(ctx context.Context) (map[models.AppCounter]int64, error)
}

type userService struct {
	repos   *repository.Repositories
	rewards *RewardsCalculator
	ratings RatingService
	locker  lock.Locker
	cfg     config.MissionsConfig
	now     func() time.Time
}

// NewUserService creates a new user service
func NewUserService(repos *repository.Repositories, rewards *RewardsCalculator, ratings RatingService, locker lock.Locker, cfg config.MissionsConfig) UserService {
	if locker == nil {
		locker = lock.NewKeyedMutex()
	}
	return &userService{repos: repos, rewards: rewards, ratings: ratings, locker: locker, cfg: cfg, now: time.Now}
}

func (s *userService) Register(ctx context.Context, req models.RegisterRequest) (models.IdResult, error) {
	id := strings.TrimSpace(req.ID)
	nick := strings.TrimSpace(req.NickName)
	if id == "" || nick == "" {
		return models.IdResult{OperationResult: models.ErrorResult("id and nick_name are required")}, nil
	}

	user := &models.User{
		ID:                        id,
		NickName:                  nick,
		AvatarURL:                 req.AvatarURL,
		Role:                      models.UserRoleUser,
		DateOfBirth:               req.DateOfBirth,
		Settlement:                strings.ToLower(strings.TrimSpace(req.Settlement)),
		HomeCoordinate:            req.HomeCoordinate,
		Level:                     1,
		ActiveMissionIds:          []models.MissionIdWithSetId{},
		CompletedMissionIds:       []models.MissionIdWithSetId{},
		FailedMissionIds:          []models.MissionIdWithSetId{},
		ActiveMissionSetIds:       []string{},
		MissionSetIds:             []models.MissionSetIdWithOrder{},
		BoughtHintIds:             []string{},
		PersonQualitiesWithScores: []models.PersonQualityIdWithScore{},
		RadrugaColor:              DefaultRadrugaColor,
		CreatedAt:                 s.now(),
	}
	for _, setID := range s.cfg.StarterMissionSets {
		set, err := s.repos.MissionSets.GetMissionSet(ctx, setID)
		if err != nil {
			logger.WithFields(map[string]interface{}{"mission_set_id": setID}).
				WithError(err).Warn("starter mission set is unavailable")
			continue
		}
		user.AttachMissionSet(set)
	}

	if err := s.repos.Users.AddUser(ctx, user); err != nil {
		if errors.Is(err, models.ErrAlreadyExists) || errors.Is(err, models.ErrUserExists) {
			return models.IdResult{OperationResult: models.ErrorResult(MsgUserExists)}, nil
		}
		return models.IdResult{}, err
	}
	if err := s.repos.Counters.Increment(ctx, models.CounterRegisteredUsers, 1); err != nil {
		logger.WithFields(map[string]interface{}{"user_id": id}).
			WithError(err).Warn("failed to increment counter " + string(models.CounterRegisteredUsers))
	}
	logger.WithRequestID(ctx).WithFields(map[string]interface{}{
		"user_id":  id,
		"missions": len(user.ActiveMissionIds),
	}).Info("user registered")
	return models.IdResult{OperationResult: models.SuccessResult(), ID: id}, nil
}

func (s *userService) GetUser(ctx context.Context, id string) (*models.User, error) {
	return s.repos.Users.GetUser(ctx, id)
}

// lockedUpdate runs change on the stored user under the profile lock and
// saves it
func (s *userService) lockedUpdate(ctx context.Context, userID string, change func(user *models.User)) (*models.User, models.OperationResult, error) {
	release, err := s.locker.Acquire(ctx, lock.ProfileKey(userID))
	if err != nil {
		return nil, models.ErrorResult(MsgMissionBusy), nil
	}
	defer release()

	user, err := s.repos.Users.GetUser(ctx, userID)
	if err != nil {
		if models.IsNotFound(err) {
			return nil, models.NotFoundResult(MsgUserNotFound), nil
		}
		return nil, models.OperationResult{}, err
	}
	change(user)
	if err := s.repos.Users.UpdateUser(ctx, user); err != nil {
		logger.WithRequestID(ctx).WithFields(map[string]interface{}{"user_id": userID}).
			WithError(err).Error("failed to update user")
		return nil, models.ErrorResult(MsgUserUpdateFailed), nil
	}
	return user, models.SuccessResult(), nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID string, req models.UpdateProfileRequest) (models.OperationResult, error) {
	if req.NickName != nil {
		nick := strings.TrimSpace(*req.NickName)
		if err := utils.ValidateNickName(nick); err != nil {
			return models.ErrorResult(MsgInvalidNickName), nil
		}
		req.NickName = &nick
	}
	_, result, err := s.lockedUpdate(ctx, userID, func(user *models.User) {
		if req.NickName != nil {
			user.NickName = *req.NickName
		}
		if req.AvatarURL != nil {
			user.AvatarURL = *req.AvatarURL
		}
	})
	if err != nil || !result.IsSuccess() {
		return result, err
	}

	log := logger.WithRequestID(ctx).WithFields(map[string]interface{}{"user_id": userID})
	if req.NickName != nil {
		if err := s.ratings.UpdateNickname(ctx, userID, *req.NickName); err != nil {
			log.WithError(err).Warn("failed to update nickname in rating")
		}
	}
	if req.AvatarURL != nil {
		if err := s.ratings.UpdateAvatar(ctx, userID, *req.AvatarURL); err != nil {
			log.WithError(err).Warn("failed to update avatar in rating")
		}
	}
	return result, nil
}

// AddKindAction records a good deed reported outside any mission
func (s *userService) AddKindAction(ctx context.Context, userID, description string) (models.OperationResult, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return models.ErrorResult(MsgKindDeedEmpty), nil
	}
	user, result, err := s.lockedUpdate(ctx, userID, s.rewards.UpdateUserAfterKindAction)
	if err != nil || !result.IsSuccess() {
		return result, err
	}

	log := logger.WithRequestID(ctx).WithFields(map[string]interface{}{
		"user_id":    userID,
		"kind_scale": user.KindScale,
	})
	if err := s.repos.UserData.AddKindAction(ctx, &models.KindAction{
		ID:          utils.GenerateKindActionID(),
		UserID:      userID,
		Description: description,
		CreatedAt:   s.now(),
	}); err != nil {
		log.WithError(err).Warn("failed to log kind action")
	}
	if err := s.repos.Counters.Increment(ctx, models.CounterKindActions, 1); err != nil {
		log.WithError(err).Warn("failed to increment counter " + string(models.CounterKindActions))
	}
	return result, nil
}

func (s *userService) GetKindActions(ctx context.Context, userID string, limit int) ([]*models.KindAction, error) {
	return s.repos.UserData.GetKindActions(ctx, userID, limit)
}

func (s *userService) GetMissionSetsForUser(ctx context.Context, userID string) ([]*models.MissionSet, error) {
	user, err := s.repos.Users.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	refs := make([]models.MissionSetIdWithOrder, len(user.MissionSetIds))
	copy(refs, user.MissionSetIds)
	sort.SliceStable(refs, func(i, j int) bool { return refs[i].Order < refs[j].Order })

	out := make([]*models.MissionSet, 0, len(refs))
	for _, ref := range refs {
		set, err := s.repos.MissionSets.GetMissionSet(ctx, ref.MissionSetID)
		if err != nil {
			if models.IsNotFound(err) {
				continue
			}
			return nil, fmt.Errorf("load mission set %s: %w", ref.MissionSetID, err)
		}
		out = append(out, set)
	}
	return out, nil
}

func (s *userService) GetCounters(ctx context.Context) (map[models.AppCounter]int64, error) {
	return s.repos.Counters.GetCounters(ctx)
}
