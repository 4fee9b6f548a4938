package repository

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repositories bundles every store the services depend on
type Repositories struct {
	Users           UserRepository
	Missions        MissionRepository
	MissionSets     MissionSetRepository
	MissionRequests MissionRequestRepository
	CommonPlaces    CommonPlaceRepository
	PersonQualities PersonQualityRepository
	HintRequests    HintRequestRepository
	Counters        AppCountersRepository
	UserData        UserDataRepository
}

// NewPostgresRepositories wires the pgx repositories over one pool. The
// mission catalog is fronted by an LRU cache of missionCacheSize entries.
func NewPostgresRepositories(pool *pgxpool.Pool, missionCacheSize int) (*Repositories, error) {
	missions, err := NewCachedMissionRepository(NewMissionRepository(pool), missionCacheSize)
	if err != nil {
		return nil, err
	}
	return &Repositories{
		Users:           NewUserRepository(pool),
		Missions:        missions,
		MissionSets:     NewMissionSetRepository(pool, missions),
		MissionRequests: NewMissionRequestRepository(pool),
		CommonPlaces:    NewCommonPlaceRepository(pool),
		PersonQualities: NewPersonQualityRepository(pool),
		HintRequests:    NewHintRequestRepository(pool),
		Counters:        NewAppCountersRepository(pool),
		UserData:        NewUserDataRepository(pool),
	}, nil
}
