package core

import (
	"context"
	"fmt"
	"time"

	"radruga/internal/lock"
	"radruga/internal/repository"
	"radruga/pkg/logger"
	"radruga/pkg/models"
	"radruga/pkg/utils"
)

// HintService sells mission hints for coins
type HintService interface {
	RequestHint(ctx context.Context, userID, missionID, hintID string) (*models.HintRequestResult, error)
}

type hintService struct {
	repos  *repository.Repositories
	places CommonPlaceService
	locker lock.Locker
	now    func() time.Time
}

// NewHintService creates a new hint service. The locker should be the one the
// completion flow uses so coin spending and rewards change the user in turn.
func NewHintService(repos *repository.Repositories, places CommonPlaceService, locker lock.Locker) HintService {
	if locker == nil {
		locker = lock.NewKeyedMutex()
	}
	return &hintService{repos: repos, places: places, locker: locker, now: time.Now}
}

func hintError(status models.OperationResult) *models.HintRequestResult {
	return &models.HintRequestResult{OperationResult: status}
}

// reveal builds the successful payload of a hint, or reports that the hint
// cannot be shown yet
func (s *hintService) reveal(ctx context.Context, user *models.User, mission *models.Mission, hint models.Hint) (*models.HintRequestResult, bool, error) {
	result := &models.HintRequestResult{OperationResult: models.SuccessResult()}
	switch hint.Type {
	case models.HintTypeText:
		result.HintText = hint.Text
	case models.HintTypeCoordinate:
		place, err := s.places.GetCommonPlaceByAlias(ctx, user.Settlement, mission.CommonPlaceAlias)
		if err != nil {
			return nil, false, fmt.Errorf("load common place: %w", err)
		}
		if place == nil {
			return nil, false, nil
		}
		coordinate := place.Coordinate
		result.HintText = hint.Text
		result.Coordinate = &coordinate
	default:
		models.PanicCatalogDefect("hint", mission.ID+"/"+hint.ID, "type", string(hint.Type))
	}
	return result, true, nil
}

func (s *hintService) RequestHint(ctx context.Context, userID, missionID, hintID string) (*models.HintRequestResult, error) {
	release, err := s.locker.Acquire(ctx, lock.ProfileKey(userID))
	if err != nil {
		return hintError(models.ErrorResult(MsgMissionBusy)), nil
	}
	defer release()

	user, err := s.repos.Users.GetUser(ctx, userID)
	if err != nil {
		if models.IsNotFound(err) {
			return hintError(models.NotFoundResult(MsgUserNotFound)), nil
		}
		return nil, err
	}
	if !user.IsMissionActive(missionID) {
		return hintError(models.ErrorResult(MsgMissionNotActive)), nil
	}
	mission, err := s.repos.Missions.GetMission(ctx, missionID)
	if err != nil {
		if models.IsNotFound(err) {
			return hintError(models.NotFoundResult(MsgMissionNotFound)), nil
		}
		return nil, err
	}
	hint, ok := mission.FindHint(hintID)
	if !ok {
		return hintError(models.NotFoundResult(MsgHintNotFound)), nil
	}

	result, available, err := s.reveal(ctx, user, mission, hint)
	if err != nil {
		return nil, err
	}
	if !available {
		return &models.HintRequestResult{
			OperationResult:   models.OperationResult{Status: models.StatusSuccess, Description: MsgHintNotAvailable},
			HintRequestStatus: models.HintNotAvailable,
		}, nil
	}
	if user.HasBoughtHint(missionID, hintID) {
		result.HintRequestStatus = models.HintAlreadyTaken
		return result, nil
	}
	if user.CoinsCount < hint.Score {
		return &models.HintRequestResult{
			OperationResult:   models.OperationResult{Status: models.StatusSuccess, Description: MsgNotEnoughCoins},
			HintRequestStatus: models.HintNotEnoughCoins,
		}, nil
	}

	user.CoinsCount -= hint.Score
	user.BoughtHintIds = append(user.BoughtHintIds, models.BoughtHintKey(missionID, hintID))
	if err := s.repos.Users.UpdateUser(ctx, user); err != nil {
		logger.WithRequestID(ctx).WithFields(map[string]interface{}{
			"user_id":    userID,
			"mission_id": missionID,
			"hint_id":    hintID,
		}).WithError(err).Error("failed to store bought hint")
		return hintError(models.ErrorResult(MsgUserUpdateFailed)), nil
	}

	log := logger.WithRequestID(ctx).WithFields(map[string]interface{}{
		"user_id":    userID,
		"mission_id": missionID,
		"hint_id":    hintID,
	})
	if err := s.repos.HintRequests.AddHintRequest(ctx, &models.HintRequest{
		ID:        utils.GenerateHintRequestID(),
		UserID:    userID,
		MissionID: missionID,
		HintID:    hintID,
		Price:     hint.Score,
		CreatedAt: s.now(),
	}); err != nil {
		log.WithError(err).Warn("failed to log hint request")
	}
	if err := s.repos.Counters.Increment(ctx, models.CounterHintsBought, 1); err != nil {
		log.WithError(err).Warn("failed to increment counter " + string(models.CounterHintsBought))
	}

	result.HintRequestStatus = models.HintSuccess
	return result, nil
}
