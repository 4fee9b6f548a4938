package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"radruga/internal/lock"
	"radruga/internal/metrics"
	"radruga/internal/notification"
	"radruga/internal/repository"
	"radruga/pkg/config"
	"radruga/pkg/geo"
	"radruga/pkg/logger"
	"radruga/pkg/models"
	"radruga/pkg/utils"
)

// MissionRequestService runs mission completion attempts and their manual
// review
type MissionRequestService interface {
	// CompleteMission judges a proof for one of the user's active missions.
	// User-facing outcomes are results; the error is reserved for storage
	// failures.
	CompleteMission(ctx context.Context, userID, missionID string, proof models.Proof) (*models.MissionCompletionResult, error)
	// ApproveRequest resolves a request waiting for review with 1 to 3 stars
	ApproveRequest(ctx context.Context, requestID string, stars int) (models.OperationResult, error)
	// DeclineRequest resolves a request waiting for review as failed
	DeclineRequest(ctx context.Context, requestID, reason string) (models.OperationResult, error)
	GetRequests(ctx context.Context, filter models.MissionRequestFilter) ([]*models.MissionRequest, error)
}

// MissionRequestDeps are the collaborators of the completion flow
type MissionRequestDeps struct {
	Repos    *repository.Repositories
	Rewards  *RewardsCalculator
	Ratings  RatingService
	Places   CommonPlaceService
	Unique   *UniqueMissionProcessor
	Locker   lock.Locker
	Notifier notification.Notifier
	Metrics  *metrics.Metrics
	Config   config.MissionsConfig
}

type missionRequestService struct {
	repos    *repository.Repositories
	rewards  *RewardsCalculator
	ratings  RatingService
	places   CommonPlaceService
	unique   *UniqueMissionProcessor
	locker   lock.Locker
	notifier notification.Notifier
	metrics  *metrics.Metrics
	cfg      config.MissionsConfig
	now      func() time.Time
}

// NewMissionRequestService creates the completion orchestrator
func NewMissionRequestService(deps MissionRequestDeps) MissionRequestService {
	if deps.Locker == nil {
		deps.Locker = lock.NewKeyedMutex()
	}
	if deps.Notifier == nil {
		deps.Notifier = notification.LogNotifier{}
	}
	if deps.Unique == nil {
		deps.Unique = NewUniqueMissionProcessor(deps.Ratings)
	}
	return &missionRequestService{
		repos:    deps.Repos,
		rewards:  deps.Rewards,
		ratings:  deps.Ratings,
		places:   deps.Places,
		unique:   deps.Unique,
		locker:   deps.Locker,
		notifier: deps.Notifier,
		metrics:  deps.Metrics,
		cfg:      deps.Config,
		now:      time.Now,
	}
}

// attempt is the state of one completion or review run
type attempt struct {
	user    *models.User
	mission *models.Mission
	entry   models.MissionIdWithSetId
	proof   models.Proof

	oldPoints    *int
	oldLevel     int
	hadCompleted bool
	kindAction   string
}

func newAttempt(user *models.User, mission *models.Mission, entry models.MissionIdWithSetId, proof models.Proof) *attempt {
	a := &attempt{
		user:         user,
		mission:      mission,
		entry:        entry,
		proof:        proof,
		oldLevel:     user.Level,
		hadCompleted: len(user.CompletedMissionIds) > 0,
	}
	if user.Points != nil {
		p := *user.Points
		a.oldPoints = &p
	}
	return a
}

// acquire takes the profile lock of the user. Every flow that loads and
// stores the user holds it, so a review and a completion of another mission
// cannot overwrite each other.
func (s *missionRequestService) acquire(ctx context.Context, userID string) (func(), error) {
	release, err := s.locker.Acquire(ctx, lock.ProfileKey(userID))
	if err != nil {
		return nil, fmt.Errorf("lock %s: %w", userID, err)
	}
	return release, nil
}

func (s *missionRequestService) CompleteMission(ctx context.Context, userID, missionID string, proof models.Proof) (*models.MissionCompletionResult, error) {
	release, err := s.acquire(ctx, userID)
	if err != nil {
		if errors.Is(err, models.ErrLockNotAcquired) {
			return models.CompletionError(MsgMissionBusy), nil
		}
		return nil, err
	}
	defer release()

	user, err := s.repos.Users.GetUser(ctx, userID)
	if err != nil {
		if models.IsNotFound(err) {
			return models.CompletionNotFound(MsgUserNotFound), nil
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	entry, ok := user.ActiveMission(missionID)
	if !ok {
		return models.CompletionError(MsgMissionNotFound), nil
	}
	mission, err := s.repos.Missions.GetMission(ctx, missionID)
	if err != nil {
		if models.IsNotFound(err) {
			return models.CompletionNotFound(MsgMissionNotFound), nil
		}
		return nil, fmt.Errorf("load mission: %w", err)
	}

	a := newAttempt(user, mission, entry, proof)
	if kind := UniqueMissionOf(mission.ID); kind != UniqueNone {
		return s.completeUnique(ctx, a, kind)
	}

	switch t := mission.ExecutionType; {
	case t.IsManualReview():
		return s.submitForReview(ctx, a)
	case t == models.ExecutionRightAnswer:
		return s.completeRightAnswer(ctx, a)
	case t == models.ExecutionPath:
		return s.completePath(ctx, a)
	case t == models.ExecutionCommonPlace:
		return s.completeCommonPlace(ctx, a)
	default:
		// includes ExecutionUnique for an id missing from the registry
		models.PanicCatalogDefect("mission", mission.ID, "execution_type", string(t))
		return nil, nil
	}
}

func (s *missionRequestService) newRequest(a *attempt, status models.RequestStatus) *models.MissionRequest {
	return &models.MissionRequest{
		ID:           utils.GenerateRequestID(),
		UserID:       a.user.ID,
		MissionID:    a.mission.ID,
		MissionSetID: a.entry.MissionSetID,
		Status:       status,
		Proof:        a.proof,
		CreatedAt:    s.now(),
	}
}

func (s *missionRequestService) submitForReview(ctx context.Context, a *attempt) (*models.MissionCompletionResult, error) {
	pending, err := s.repos.MissionRequests.GetMissionRequests(ctx, models.MissionRequestFilter{
		UserID:    a.user.ID,
		MissionID: a.mission.ID,
		Status:    models.RequestNotChecked,
		Limit:     1,
	})
	if err != nil {
		return nil, fmt.Errorf("load pending requests: %w", err)
	}
	result := &models.MissionCompletionResult{
		OperationResult:         models.OperationResult{Status: models.StatusSuccess, Description: MsgWaitingReview},
		MissionCompletionStatus: models.CompletionWaiting,
	}
	if len(pending) > 0 {
		result.Description = MsgAlreadyWaiting
		return result, nil
	}

	req := s.newRequest(a, models.RequestNotChecked)
	if err := s.repos.MissionRequests.AddMissionRequest(ctx, req); err != nil {
		return nil, fmt.Errorf("store mission request: %w", err)
	}
	s.notify(ctx, notification.Event{
		Type:      notification.EventMissionWaiting,
		UserID:    a.user.ID,
		MissionID: a.mission.ID,
		RequestID: req.ID,
	})
	s.metrics.Completion(string(a.mission.ExecutionType), string(models.CompletionWaiting))
	logger.Mission(a.user.ID, a.mission.ID, string(models.CompletionWaiting), 0)
	return result, nil
}

func (s *missionRequestService) completeRightAnswer(ctx context.Context, a *attempt) (*models.MissionCompletionResult, error) {
	answers := SubmittedAnswers(a.proof)
	if len(answers) == 0 {
		return models.CompletionError(MsgEmptyAnswer), nil
	}
	match := MatchAnswers(a.mission, answers)
	if !match.Passed() {
		result, err := s.processIncorrectTry(ctx, a, models.DeclineIncorrect, MsgIncorrectAnswer)
		if result != nil {
			result.AnswerStatuses = match.Statuses
		}
		return result, err
	}
	result, err := s.succeedByTries(ctx, a)
	if result != nil {
		result.AnswerStatuses = match.Statuses
	}
	return result, err
}

func (s *missionRequestService) completePath(ctx context.Context, a *attempt) (*models.MissionCompletionResult, error) {
	if a.proof.TimeElapsed == nil {
		return models.CompletionError(MsgTimeRequired), nil
	}
	stars := a.mission.StarsForSeconds(*a.proof.TimeElapsed)
	if stars == 0 {
		return s.decline(ctx, a, s.newRequest(a, models.RequestDeclined), models.DeclineTimeout, MsgTimeout)
	}
	return s.succeed(ctx, a, stars)
}

func (s *missionRequestService) completeCommonPlace(ctx context.Context, a *attempt) (*models.MissionCompletionResult, error) {
	if len(a.proof.Coordinates) == 0 {
		return models.CompletionError(MsgCoordinateRequired), nil
	}
	point := a.proof.Coordinates[0]
	if err := geo.Validate(point); err != nil {
		return models.CompletionError(MsgCoordinateInvalid), nil
	}
	alias := strings.TrimSpace(a.mission.CommonPlaceAlias)
	if alias == "" {
		return models.CompletionError(MsgAliasInvalid), nil
	}
	if _, err := s.repos.CommonPlaces.GetAlias(ctx, alias); err != nil {
		if models.IsNotFound(err) {
			return models.CompletionError(MsgAliasInvalid), nil
		}
		return nil, fmt.Errorf("load alias: %w", err)
	}

	if home := a.user.HomeCoordinate; home != nil && geo.Distance(*home, point) < s.cfg.MinDistanceFromHome {
		return s.processIncorrectTry(ctx, a, models.DeclineStillHome, MsgStillHome)
	}

	place, err := s.places.GetCommonPlaceByAlias(ctx, a.user.Settlement, alias)
	if err != nil {
		return nil, fmt.Errorf("load common place: %w", err)
	}
	if place == nil {
		// nobody agreed on the place yet, the submission is a vote for it
		approved, err := s.places.AddCommonPlace(ctx, a.user.ID, a.user.Settlement, alias, point)
		if err != nil {
			return nil, fmt.Errorf("add common place: %w", err)
		}
		if approved != nil {
			s.notify(ctx, notification.Event{
				Type:      notification.EventCommonPlaceApproved,
				UserID:    a.user.ID,
				MissionID: a.mission.ID,
			})
		}
		return s.succeedByTries(ctx, a)
	}

	radius := float64(a.mission.AccuracyRadius)
	if radius <= 0 {
		radius = float64(s.cfg.DefaultAccuracyRadius)
	}
	switch distance := geo.Distance(place.Coordinate, point); {
	case distance <= radius:
		return s.succeedByTries(ctx, a)
	case distance > 2*radius:
		return s.processIncorrectTry(ctx, a, models.DeclineIncorrect, MsgWrongPlace)
	default:
		return s.processIncorrectTry(ctx, a, models.DeclineIsNear, MsgIsNear)
	}
}

func (s *missionRequestService) completeUnique(ctx context.Context, a *attempt, kind UniqueMission) (*models.MissionCompletionResult, error) {
	outcome, err := s.unique.Process(ctx, kind, a.user, a.proof)
	if err != nil {
		return nil, err
	}
	switch {
	case outcome.Invalid:
		return models.CompletionError(outcome.Description), nil
	case outcome.Declined:
		return s.decline(ctx, a, s.newRequest(a, models.RequestDeclined), outcome.DeclineReason, outcome.Description)
	}
	if outcome.KindAction {
		s.rewards.UpdateUserAfterKindAction(a.user)
		a.kindAction = strings.TrimSpace(a.proof.CreatedText)
	}
	return s.succeed(ctx, a, outcome.Stars)
}

// tries returns the number of this attempt
func (s *missionRequestService) tries(ctx context.Context, a *attempt) (int, error) {
	count, err := s.repos.MissionRequests.CountMissionRequests(ctx, a.user.ID, a.mission.ID)
	if err != nil {
		return 0, fmt.Errorf("count mission requests: %w", err)
	}
	return count + 1, nil
}

// processIncorrectTry stores a failed try. The try that reaches the mission's
// limit declines the mission; earlier ones leave it active.
func (s *missionRequestService) processIncorrectTry(ctx context.Context, a *attempt, reason, description string) (*models.MissionCompletionResult, error) {
	tries, err := s.tries(ctx, a)
	if err != nil {
		return nil, err
	}
	req := s.newRequest(a, models.RequestDeclined)
	if limit := a.mission.MaxTries(); limit > 0 && tries >= limit {
		return s.decline(ctx, a, req, models.DeclineTriesOver, MsgTriesOver)
	}

	now := s.now()
	req.DeclineReason = reason
	req.ResolvedAt = &now
	if err := s.repos.MissionRequests.AddMissionRequest(ctx, req); err != nil {
		return nil, fmt.Errorf("store mission request: %w", err)
	}
	s.metrics.Completion(string(a.mission.ExecutionType), string(models.CompletionIntermediateFail))
	logger.Mission(a.user.ID, a.mission.ID, string(models.CompletionIntermediateFail), 0)
	return &models.MissionCompletionResult{
		OperationResult:         models.OperationResult{Status: models.StatusSuccess, Description: description},
		MissionCompletionStatus: models.CompletionIntermediateFail,
		TryCount:                &tries,
	}, nil
}

func (s *missionRequestService) succeedByTries(ctx context.Context, a *attempt) (*models.MissionCompletionResult, error) {
	tries, err := s.tries(ctx, a)
	if err != nil {
		return nil, err
	}
	stars := a.mission.StarsForTries(tries)
	if stars == 0 {
		return s.decline(ctx, a, s.newRequest(a, models.RequestDeclined), models.DeclineTriesOver, MsgTriesOver)
	}
	result, err := s.succeed(ctx, a, stars)
	if result != nil && result.MissionCompletionStatus == models.CompletionSuccess {
		result.TryCount = &tries
	}
	return result, err
}

// succeed auto-approves the attempt with the given stars
func (s *missionRequestService) succeed(ctx context.Context, a *attempt, stars int) (*models.MissionCompletionResult, error) {
	req := s.newRequest(a, models.RequestAutoApproval)
	now := s.now()
	req.StarsCount = &stars
	req.ResolvedAt = &now

	points := s.rewards.UpdateUserAfterMissionCompletion(req, a.user, a.mission)
	result := &models.MissionCompletionResult{
		OperationResult:         models.SuccessResult(),
		MissionCompletionStatus: models.CompletionSuccess,
		Points:                  points,
		StarsCount:              &stars,
	}
	return s.finish(ctx, a, req, true, result)
}

// decline fails the mission for good
func (s *missionRequestService) decline(ctx context.Context, a *attempt, req *models.MissionRequest, reason, description string) (*models.MissionCompletionResult, error) {
	now := s.now()
	req.Status = models.RequestDeclined
	req.DeclineReason = reason
	req.ResolvedAt = &now

	s.rewards.UpdateUserAfterMissionDecline(req, a.user)
	result := &models.MissionCompletionResult{
		OperationResult:         models.OperationResult{Status: models.StatusSuccess, Description: description},
		MissionCompletionStatus: models.CompletionFail,
	}
	return s.finish(ctx, a, req, true, result)
}

// finish persists a resolved request and the user, then runs the secondary
// effects. Only the request and user writes can fail the attempt.
func (s *missionRequestService) finish(ctx context.Context, a *attempt, req *models.MissionRequest, isNew bool, result *models.MissionCompletionResult) (*models.MissionCompletionResult, error) {
	var err error
	if isNew {
		err = s.repos.MissionRequests.AddMissionRequest(ctx, req)
	} else {
		err = s.repos.MissionRequests.UpdateMissionRequest(ctx, req)
	}
	if err != nil {
		return nil, fmt.Errorf("store mission request: %w", err)
	}

	log := logger.WithRequestID(ctx).WithFields(map[string]interface{}{
		"user_id":    a.user.ID,
		"mission_id": a.mission.ID,
		"request_id": req.ID,
	})
	if err := s.repos.Users.UpdateUser(ctx, a.user); err != nil {
		log.WithError(err).Error("failed to store user after mission resolution")
		return models.CompletionError(MsgUserUpdateFailed), nil
	}

	if err := s.ratings.UpdateUserRating(ctx, a.user, a.oldPoints); err != nil {
		log.WithError(err).Warn("failed to update rating")
	}
	s.countResolution(ctx, a, req, log)
	if a.kindAction != "" {
		s.recordKindAction(ctx, a, log)
	}
	if a.user.Level > a.oldLevel {
		s.notify(ctx, notification.Event{Type: notification.EventLevelUp, UserID: a.user.ID, Level: a.user.Level})
	}

	outcome := string(result.MissionCompletionStatus)
	s.metrics.Completion(string(a.mission.ExecutionType), outcome)
	logger.Mission(a.user.ID, a.mission.ID, outcome, req.Stars())
	return result, nil
}

func (s *missionRequestService) countResolution(ctx context.Context, a *attempt, req *models.MissionRequest, log *logger.FieldLogger) {
	counters := []models.AppCounter{models.CounterMissionsDeclined}
	if req.Status.IsSuccessful() {
		counters = []models.AppCounter{models.CounterMissionsApproved}
		if !a.hadCompleted && len(a.user.CompletedMissionIds) > 0 {
			counters = append(counters, models.CounterOneMissionPassedUsers)
		}
	}
	if len(a.user.ActiveMissionIds) == 0 {
		counters = append(counters, models.CounterFinishedUsers)
	}
	for _, c := range counters {
		if err := s.repos.Counters.Increment(ctx, c, 1); err != nil {
			log.WithError(err).Warn("failed to increment counter " + string(c))
		}
	}
}

func (s *missionRequestService) recordKindAction(ctx context.Context, a *attempt, log *logger.FieldLogger) {
	action := &models.KindAction{
		ID:          utils.GenerateKindActionID(),
		UserID:      a.user.ID,
		Description: a.kindAction,
		CreatedAt:   s.now(),
	}
	if err := s.repos.UserData.AddKindAction(ctx, action); err != nil {
		log.WithError(err).Warn("failed to log kind action")
	}
	if err := s.repos.Counters.Increment(ctx, models.CounterKindActions, 1); err != nil {
		log.WithError(err).Warn("failed to increment counter " + string(models.CounterKindActions))
	}
}

func (s *missionRequestService) notify(ctx context.Context, event notification.Event) {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = s.now()
	}
	if err := s.notifier.Notify(ctx, event); err != nil {
		s.metrics.NotificationFailed()
		logger.WithRequestID(ctx).WithFields(map[string]interface{}{
			"type":    event.Type,
			"user_id": event.UserID,
		}).WithError(err).Warn("failed to deliver notification")
	}
}

func (s *missionRequestService) ApproveRequest(ctx context.Context, requestID string, stars int) (models.OperationResult, error) {
	if stars < 1 || stars > 3 {
		return models.ErrorResult(MsgInvalidStars), nil
	}
	return s.review(ctx, requestID, func(a *attempt, req *models.MissionRequest) (*models.MissionCompletionResult, notification.Event) {
		req.Status = models.RequestApproved
		req.StarsCount = &stars
		points := s.rewards.UpdateUserAfterMissionCompletion(req, a.user, a.mission)
		event := notification.Event{Type: notification.EventMissionApproved, Stars: stars}
		if points != nil {
			event.Points = *points
		}
		return &models.MissionCompletionResult{
			OperationResult:         models.SuccessResult(),
			MissionCompletionStatus: models.CompletionSuccess,
			Points:                  points,
			StarsCount:              &stars,
		}, event
	})
}

func (s *missionRequestService) DeclineRequest(ctx context.Context, requestID, reason string) (models.OperationResult, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = models.DeclineIncorrect
	}
	return s.review(ctx, requestID, func(a *attempt, req *models.MissionRequest) (*models.MissionCompletionResult, notification.Event) {
		req.Status = models.RequestDeclined
		req.DeclineReason = reason
		s.rewards.UpdateUserAfterMissionDecline(req, a.user)
		return &models.MissionCompletionResult{
			OperationResult:         models.SuccessResult(),
			MissionCompletionStatus: models.CompletionFail,
		}, notification.Event{Type: notification.EventMissionDeclined, Reason: reason}
	})
}

type reviewFunc func(a *attempt, req *models.MissionRequest) (*models.MissionCompletionResult, notification.Event)

// review resolves a NotChecked request under the profile lock of its user
func (s *missionRequestService) review(ctx context.Context, requestID string, resolve reviewFunc) (models.OperationResult, error) {
	req, err := s.repos.MissionRequests.GetMissionRequest(ctx, requestID)
	if err != nil {
		if models.IsNotFound(err) {
			return models.NotFoundResult(MsgRequestNotFound), nil
		}
		return models.OperationResult{}, fmt.Errorf("load mission request: %w", err)
	}
	release, err := s.acquire(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, models.ErrLockNotAcquired) {
			return models.ErrorResult(MsgMissionBusy), nil
		}
		return models.OperationResult{}, err
	}
	defer release()

	// reload under the lock, a concurrent review may have resolved it
	if req, err = s.repos.MissionRequests.GetMissionRequest(ctx, requestID); err != nil {
		return models.OperationResult{}, fmt.Errorf("reload mission request: %w", err)
	}
	if req.Status != models.RequestNotChecked {
		return models.ErrorResult(MsgRequestResolved), nil
	}

	user, err := s.repos.Users.GetUser(ctx, req.UserID)
	if err != nil {
		if models.IsNotFound(err) {
			return models.NotFoundResult(MsgUserNotFound), nil
		}
		return models.OperationResult{}, fmt.Errorf("load user: %w", err)
	}
	mission, err := s.repos.Missions.GetMission(ctx, req.MissionID)
	if err != nil {
		if models.IsNotFound(err) {
			return models.NotFoundResult(MsgMissionNotFound), nil
		}
		return models.OperationResult{}, fmt.Errorf("load mission: %w", err)
	}

	entry := models.MissionIdWithSetId{MissionID: mission.ID, MissionSetID: req.MissionSetID}
	a := newAttempt(user, mission, entry, req.Proof)
	now := s.now()
	req.ResolvedAt = &now

	result, event := resolve(a, req)
	result, err = s.finish(ctx, a, req, false, result)
	if err != nil {
		return models.OperationResult{}, err
	}
	if result.Status != models.StatusSuccess {
		return result.OperationResult, nil
	}

	s.metrics.Review(string(req.Status))
	event.UserID = user.ID
	event.MissionID = mission.ID
	event.RequestID = req.ID
	s.notify(ctx, event)
	return result.OperationResult, nil
}

func (s *missionRequestService) GetRequests(ctx context.Context, filter models.MissionRequestFilter) ([]*models.MissionRequest, error) {
	return s.repos.MissionRequests.GetMissionRequests(ctx, filter)
}
