package core

import (
	"context"
	"fmt"
	"time"

	"radruga/internal/lock"
	"radruga/internal/repository"
	"radruga/pkg/config"
	"radruga/pkg/logger"
	"radruga/pkg/models"
)

// QuizService scores personality quiz answers and hands out mission sets that
// match the resulting profile
type QuizService interface {
	GetPersonQualities(ctx context.Context) ([]*models.PersonQuality, error)
	AddPersonQuality(ctx context.Context, q *models.PersonQuality) error
	AnswerQuestion(ctx context.Context, userID string, qualities []models.PersonQualityIdWithScore) (models.OperationResult, error)
	// CompleteQuiz applies every answer, recomputes the color and attaches
	// the best matching new mission sets
	CompleteQuiz(ctx context.Context, userID string, answers []models.QuizAnswerRequest) (*models.ColorResult, error)
}

type quizService struct {
	repos   *repository.Repositories
	rewards *RewardsCalculator
	locker  lock.Locker
	cfg     config.MissionsConfig
	now     func() time.Time
}

// NewQuizService creates a new quiz service
func NewQuizService(repos *repository.Repositories, rewards *RewardsCalculator, locker lock.Locker, cfg config.MissionsConfig) QuizService {
	if locker == nil {
		locker = lock.NewKeyedMutex()
	}
	return &quizService{repos: repos, rewards: rewards, locker: locker, cfg: cfg, now: time.Now}
}

func (s *quizService) GetPersonQualities(ctx context.Context) ([]*models.PersonQuality, error) {
	return s.repos.PersonQualities.GetPersonQualities(ctx)
}

func (s *quizService) AddPersonQuality(ctx context.Context, q *models.PersonQuality) error {
	if q.ID == "" {
		return fmt.Errorf("%w: person quality id is required", models.ErrInvalidInput)
	}
	return s.repos.PersonQualities.AddPersonQuality(ctx, q)
}

// knownQualities reports whether every id in answers is in the catalog
func (s *quizService) knownQualities(ctx context.Context, answers ...[]models.PersonQualityIdWithScore) (bool, error) {
	catalog, err := s.repos.PersonQualities.GetPersonQualities(ctx)
	if err != nil {
		return false, fmt.Errorf("load person qualities: %w", err)
	}
	known := make(map[string]bool, len(catalog))
	for _, q := range catalog {
		known[q.ID] = true
	}
	for _, qualities := range answers {
		for _, q := range qualities {
			if !known[q.PersonQualityID] {
				return false, nil
			}
		}
	}
	return true, nil
}

// withUser loads the user under the profile lock, applies change and stores
// the result. change returns a non-nil result to stop without saving.
func (s *quizService) withUser(ctx context.Context, userID string, change func(user *models.User) (*models.OperationResult, error)) (models.OperationResult, error) {
	release, err := s.locker.Acquire(ctx, lock.ProfileKey(userID))
	if err != nil {
		return models.ErrorResult(MsgMissionBusy), nil
	}
	defer release()

	user, err := s.repos.Users.GetUser(ctx, userID)
	if err != nil {
		if models.IsNotFound(err) {
			return models.NotFoundResult(MsgUserNotFound), nil
		}
		return models.OperationResult{}, err
	}
	stop, err := change(user)
	if err != nil {
		return models.OperationResult{}, err
	}
	if stop != nil {
		return *stop, nil
	}
	if err := s.repos.Users.UpdateUser(ctx, user); err != nil {
		logger.WithRequestID(ctx).WithFields(map[string]interface{}{"user_id": userID}).
			WithError(err).Error("failed to store quiz progress")
		return models.ErrorResult(MsgUserUpdateFailed), nil
	}
	return models.SuccessResult(), nil
}

func (s *quizService) AnswerQuestion(ctx context.Context, userID string, qualities []models.PersonQualityIdWithScore) (models.OperationResult, error) {
	if len(qualities) == 0 {
		return models.ErrorResult(MsgUnknownQuality), nil
	}
	ok, err := s.knownQualities(ctx, qualities)
	if err != nil {
		return models.OperationResult{}, err
	}
	if !ok {
		return models.ErrorResult(MsgUnknownQuality), nil
	}
	return s.withUser(ctx, userID, func(user *models.User) (*models.OperationResult, error) {
		s.rewards.UpdateUserAfterAnsweringQuestion(qualities, user)
		return nil, nil
	})
}

func (s *quizService) CompleteQuiz(ctx context.Context, userID string, answers []models.QuizAnswerRequest) (*models.ColorResult, error) {
	all := make([][]models.PersonQualityIdWithScore, len(answers))
	for i, a := range answers {
		all[i] = a.Qualities
	}
	ok, err := s.knownQualities(ctx, all...)
	if err != nil {
		return nil, err
	}
	if !ok {
		return &models.ColorResult{OperationResult: models.ErrorResult(MsgUnknownQuality)}, nil
	}

	var color string
	var attached []*models.MissionSet
	result, err := s.withUser(ctx, userID, func(user *models.User) (*models.OperationResult, error) {
		for _, qualities := range all {
			s.rewards.UpdateUserAfterAnsweringQuestion(qualities, user)
		}
		color = s.rewards.UpdateRadrugaColor(user)

		sets, err := s.repos.MissionSets.GetMissionSets(ctx)
		if err != nil {
			return nil, fmt.Errorf("load mission sets: %w", err)
		}
		attached = s.rewards.SetNewMissionSets(user, sets, s.cfg.NewMissionSetsCount, s.now())
		return nil, nil
	})
	if err != nil {
		return nil, err
	}
	if !result.IsSuccess() {
		return &models.ColorResult{OperationResult: result}, nil
	}

	ids := make([]string, len(attached))
	for i, set := range attached {
		ids[i] = set.ID
	}
	logger.WithRequestID(ctx).WithFields(map[string]interface{}{
		"user_id":       userID,
		"color":         color,
		"attached_sets": ids,
	}).Info("quiz completed")
	return &models.ColorResult{OperationResult: result, RadrugaColor: color}, nil
}
