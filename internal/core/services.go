package core

import (
	"radruga/internal/lock"
	"radruga/internal/metrics"
	"radruga/internal/notification"
	"radruga/internal/repository"
	"radruga/pkg/config"
)

// Services bundles every service the transports expose
type Services struct {
	Auth        AuthService
	Users       UserService
	Missions    MissionService
	Requests    MissionRequestService
	Hints       HintService
	Quiz        QuizService
	Ratings     RatingService
	Places      CommonPlaceService
	Maintenance *MaintenanceJob
}

// NewServices wires the services over one set of repositories. The locker is
// shared so a user's completions, hint purchases and profile changes of one
// key run in turn.
func NewServices(cfg *config.Config, repos *repository.Repositories, locker lock.Locker, notifier notification.Notifier, m *metrics.Metrics) *Services {
	if locker == nil {
		locker = lock.NewKeyedMutex()
	}
	rewards := NewRewardsCalculator(cfg.Rewards)
	ratings := NewRatingService(repos.Users, cfg.Missions, m)
	places := NewCommonPlaceService(repos.CommonPlaces, cfg.Missions, m)

	return &Services{
		Auth:     NewAuthService(cfg.JWT.Secret, cfg.JWT.Issuer),
		Users:    NewUserService(repos, rewards, ratings, locker, cfg.Missions),
		Missions: NewMissionService(repos),
		Requests: NewMissionRequestService(MissionRequestDeps{
			Repos:    repos,
			Rewards:  rewards,
			Ratings:  ratings,
			Places:   places,
			Locker:   locker,
			Notifier: notifier,
			Metrics:  m,
			Config:   cfg.Missions,
		}),
		Hints:       NewHintService(repos, places, locker),
		Quiz:        NewQuizService(repos, rewards, locker, cfg.Missions),
		Ratings:     ratings,
		Places:      places,
		Maintenance: NewMaintenanceJob(repos.Users, ratings, cfg.Rewards),
	}
}
