package core

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/lithammer/fuzzysearch/fuzzy"

	"radruga/internal/repository"
	"radruga/pkg/logger"
	"radruga/pkg/models"
)

// MissionService reads the catalog for players and maintains the
// mission/set graph for admins
type MissionService interface {
	GetMission(ctx context.Context, id string) (*models.Mission, error)
	GetMissions(ctx context.Context) ([]*models.Mission, error)
	// GetMissionsForUser lists every mission assigned to the user in display
	// order together with its computed status
	GetMissionsForUser(ctx context.Context, userID string) ([]models.MissionWithStatus, error)
	SearchMissions(ctx context.Context, query string, limit int) ([]*models.Mission, error)

	AddMission(ctx context.Context, mission *models.Mission) (models.IdResult, error)
	UpdateMission(ctx context.Context, mission *models.Mission) (models.OperationResult, error)
	DeleteMission(ctx context.Context, id string) (models.OperationResult, error)

	GetMissionSet(ctx context.Context, id string) (*models.MissionSet, error)
	GetMissionSets(ctx context.Context) ([]*models.MissionSet, error)
	AddMissionSet(ctx context.Context, set *models.MissionSet) (models.IdResult, error)
	UpdateMissionSet(ctx context.Context, set *models.MissionSet) (models.OperationResult, error)
	DeleteMissionSet(ctx context.Context, id string) (models.OperationResult, error)
}

type missionService struct {
	users    repository.UserRepository
	missions repository.MissionRepository
	sets     repository.MissionSetRepository
	requests repository.MissionRequestRepository
}

// NewMissionService creates a new mission service
func NewMissionService(repos *repository.Repositories) MissionService {
	return &missionService{
		users:    repos.Users,
		missions: repos.Missions,
		sets:     repos.MissionSets,
		requests: repos.MissionRequests,
	}
}

// DisplayStatus derives what the user sees for a mission. Failure of a
// prerequisite fails the dependent mission; an unfinished one locks it.
func DisplayStatus(user *models.User, mission *models.Mission, pendingReview bool) models.DisplayStatus {
	switch {
	case user.IsMissionCompleted(mission.ID):
		return models.DisplaySuccess
	case user.IsMissionFailed(mission.ID):
		return models.DisplayFail
	case pendingReview:
		return models.DisplayWaiting
	}
	if slices.ContainsFunc(mission.DependsOn, user.IsMissionFailed) {
		return models.DisplayFail
	}
	for _, dep := range mission.DependsOn {
		if !user.IsMissionCompleted(dep) {
			return models.DisplayNotAvailable
		}
	}
	return models.DisplayAvailable
}

func (s *missionService) GetMission(ctx context.Context, id string) (*models.Mission, error) {
	return s.missions.GetMission(ctx, id)
}

func (s *missionService) GetMissions(ctx context.Context) ([]*models.Mission, error) {
	return s.missions.GetMissions(ctx, nil)
}

func (s *missionService) GetMissionsForUser(ctx context.Context, userID string) ([]models.MissionWithStatus, error) {
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	var entries []models.MissionIdWithSetId
	entries = append(entries, user.ActiveMissionIds...)
	entries = append(entries, user.CompletedMissionIds...)
	entries = append(entries, user.FailedMissionIds...)
	if len(entries) == 0 {
		return []models.MissionWithStatus{}, nil
	}

	order, err := s.displayOrder(ctx, user)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return order(entries[i]) < order(entries[j])
	})

	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.MissionID
	}
	missions, err := s.missions.GetMissions(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load missions: %w", err)
	}
	byID := make(map[string]*models.Mission, len(missions))
	for _, m := range missions {
		byID[m.ID] = m
	}

	pending, err := s.requests.GetMissionRequests(ctx, models.MissionRequestFilter{
		UserID: userID,
		Status: models.RequestNotChecked,
	})
	if err != nil {
		return nil, fmt.Errorf("load pending requests: %w", err)
	}
	waiting := make(map[string]bool, len(pending))
	for _, r := range pending {
		waiting[r.MissionID] = true
	}

	out := make([]models.MissionWithStatus, 0, len(entries))
	for _, e := range entries {
		m, ok := byID[e.MissionID]
		if !ok {
			continue
		}
		out = append(out, models.MissionWithStatus{
			Mission:       m,
			MissionSetID:  e.MissionSetID,
			DisplayStatus: DisplayStatus(user, m, waiting[m.ID]),
		})
	}
	return out, nil
}

// displayOrder ranks entries by the user's set order, then by position
// inside the set
func (s *missionService) displayOrder(ctx context.Context, user *models.User) (func(models.MissionIdWithSetId) float64, error) {
	setRank := make(map[string]int, len(user.MissionSetIds))
	memberRank := make(map[string]int)
	for _, ref := range user.MissionSetIds {
		setRank[ref.MissionSetID] = ref.Order
		set, err := s.sets.GetMissionSet(ctx, ref.MissionSetID)
		if err != nil {
			if models.IsNotFound(err) {
				continue
			}
			return nil, fmt.Errorf("load mission set %s: %w", ref.MissionSetID, err)
		}
		for i, id := range set.MissionIDs() {
			memberRank[ref.MissionSetID+"/"+id] = i
		}
	}
	return func(e models.MissionIdWithSetId) float64 {
		set, ok := setRank[e.MissionSetID]
		if !ok {
			return math.MaxInt32
		}
		return float64(set)*1e6 + float64(memberRank[e.MissionSetID+"/"+e.MissionID])
	}, nil
}

func (s *missionService) SearchMissions(ctx context.Context, query string, limit int) ([]*models.Mission, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []*models.Mission{}, nil
	}
	if limit <= 0 {
		limit = 20
	}
	missions, err := s.missions.GetMissions(ctx, nil)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(missions))
	for i, m := range missions {
		names[i] = m.Name
	}

	ranks := fuzzy.RankFindFold(query, names)
	sort.Stable(ranks)
	out := make([]*models.Mission, 0, min(limit, len(ranks)))
	for _, r := range ranks {
		if len(out) == limit {
			break
		}
		out = append(out, missions[r.OriginalIndex])
	}
	return out, nil
}

// conflictOrError turns a duplicate key into a user-facing result
func conflictOrError(err error, what string) (models.OperationResult, error) {
	if errors.Is(err, models.ErrAlreadyExists) {
		return models.ErrorResult(what + " already exists"), nil
	}
	if errors.Is(err, models.ErrInvalidInput) {
		return models.ErrorResult(err.Error()), nil
	}
	return models.OperationResult{}, err
}

// refreshSets recomputes the aggregates of every listed set. Failures are
// logged; the catalog write they follow already succeeded.
func (s *missionService) refreshSets(ctx context.Context, setIDs ...string) {
	seen := make(map[string]bool, len(setIDs))
	for _, id := range setIDs {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		if err := s.sets.RefreshMissionDependentLinks(ctx, id); err != nil && !models.IsNotFound(err) {
			logger.WithFields(map[string]interface{}{"mission_set_id": id}).
				WithError(err).Warn("failed to refresh mission set")
		}
	}
}

func (s *missionService) AddMission(ctx context.Context, mission *models.Mission) (models.IdResult, error) {
	if mission.ID == "" {
		mission.ID = uuid.New().String()
	}
	if err := mission.Validate(); err != nil {
		return models.IdResult{OperationResult: models.ErrorResult(MsgInvalidMission + ": " + err.Error())}, nil
	}
	if err := s.missions.AddMission(ctx, mission); err != nil {
		result, err := conflictOrError(err, "mission")
		return models.IdResult{OperationResult: result}, err
	}
	if mission.MissionSetID != "" {
		if err := s.missions.SetMissionSetForMissions(ctx, []string{mission.ID}, mission.MissionSetID); err != nil {
			logger.WithFields(map[string]interface{}{
				"mission_id":     mission.ID,
				"mission_set_id": mission.MissionSetID,
			}).WithError(err).Warn("failed to attach mission to set")
		} else {
			s.refreshSets(ctx, mission.MissionSetID)
		}
	}
	return models.IdResult{OperationResult: models.SuccessResult(), ID: mission.ID}, nil
}

// aggregatesChanged reports whether the fields a set summarizes differ
func aggregatesChanged(old, updated *models.Mission) bool {
	return !equalIntPtr(old.AgeFrom, updated.AgeFrom) ||
		!equalIntPtr(old.AgeTo, updated.AgeTo) ||
		!slices.Equal(old.PersonQualities, updated.PersonQualities)
}

func equalIntPtr(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// UpdateMission stores the mission fields. Set membership is changed through
// the set operations only.
func (s *missionService) UpdateMission(ctx context.Context, mission *models.Mission) (models.OperationResult, error) {
	old, err := s.missions.GetMission(ctx, mission.ID)
	if err != nil {
		if models.IsNotFound(err) {
			return models.NotFoundResult(MsgMissionNotFound), nil
		}
		return models.OperationResult{}, err
	}
	if err := mission.Validate(); err != nil {
		return models.ErrorResult(MsgInvalidMission + ": " + err.Error()), nil
	}
	if err := s.missions.UpdateMission(ctx, mission); err != nil {
		return conflictOrError(err, "mission")
	}
	if old.MissionSetID != "" && aggregatesChanged(old, mission) {
		s.refreshSets(ctx, old.MissionSetID)
	}
	return models.SuccessResult(), nil
}

func (s *missionService) DeleteMission(ctx context.Context, id string) (models.OperationResult, error) {
	old, err := s.missions.GetMission(ctx, id)
	if err != nil {
		if models.IsNotFound(err) {
			return models.NotFoundResult(MsgMissionNotFound), nil
		}
		return models.OperationResult{}, err
	}
	if err := s.missions.DeleteMission(ctx, id); err != nil {
		return models.OperationResult{}, err
	}
	s.refreshSets(ctx, old.MissionSetID)
	return models.SuccessResult(), nil
}

func (s *missionService) GetMissionSet(ctx context.Context, id string) (*models.MissionSet, error) {
	return s.sets.GetMissionSet(ctx, id)
}

func (s *missionService) GetMissionSets(ctx context.Context) ([]*models.MissionSet, error) {
	return s.sets.GetMissionSets(ctx)
}

// previousOwners checks that every member exists and returns the other sets
// the members currently belong to
func (s *missionService) previousOwners(ctx context.Context, set *models.MissionSet) ([]string, bool, error) {
	ids := set.MissionIDs()
	if len(ids) == 0 {
		return nil, true, nil
	}
	members, err := s.missions.GetMissions(ctx, ids)
	if err != nil {
		return nil, false, fmt.Errorf("load members: %w", err)
	}
	if len(members) != len(ids) {
		return nil, false, nil
	}
	var owners []string
	for _, m := range members {
		if m.MissionSetID != "" && m.MissionSetID != set.ID && !slices.Contains(owners, m.MissionSetID) {
			owners = append(owners, m.MissionSetID)
		}
	}
	return owners, true, nil
}

func (s *missionService) AddMissionSet(ctx context.Context, set *models.MissionSet) (models.IdResult, error) {
	if set.ID == "" {
		set.ID = uuid.New().String()
	}
	owners, ok, err := s.previousOwners(ctx, set)
	if err != nil {
		return models.IdResult{}, err
	}
	if !ok {
		return models.IdResult{OperationResult: models.ErrorResult(MsgMissionSetMembers)}, nil
	}
	if err := s.sets.AddMissionSet(ctx, set); err != nil {
		result, err := conflictOrError(err, "mission set")
		return models.IdResult{OperationResult: result}, err
	}
	s.refreshSets(ctx, append([]string{set.ID}, owners...)...)
	return models.IdResult{OperationResult: models.SuccessResult(), ID: set.ID}, nil
}

// UpdateMissionSet replaces the set and its membership. Missions dropped from
// the list lose their back-reference; missions taken from other sets move
// here and the sets they left are refreshed.
func (s *missionService) UpdateMissionSet(ctx context.Context, set *models.MissionSet) (models.OperationResult, error) {
	existing, err := s.sets.GetMissionSet(ctx, set.ID)
	if err != nil {
		if models.IsNotFound(err) {
			return models.NotFoundResult(MsgMissionSetNotFound), nil
		}
		return models.OperationResult{}, err
	}
	owners, ok, err := s.previousOwners(ctx, set)
	if err != nil {
		return models.OperationResult{}, err
	}
	if !ok {
		return models.ErrorResult(MsgMissionSetMembers), nil
	}
	if err := s.sets.UpdateMissionSet(ctx, set); err != nil {
		return conflictOrError(err, "mission set")
	}

	var removed []string
	for _, id := range existing.MissionIDs() {
		if !set.Contains(id) {
			removed = append(removed, id)
		}
	}
	if len(removed) > 0 {
		if err := s.missions.SetMissionSetForMissions(ctx, removed, ""); err != nil {
			logger.WithFields(map[string]interface{}{"mission_set_id": set.ID}).
				WithError(err).Warn("failed to clear removed members")
		}
	}
	s.refreshSets(ctx, append([]string{set.ID}, owners...)...)
	return models.SuccessResult(), nil
}

func (s *missionService) DeleteMissionSet(ctx context.Context, id string) (models.OperationResult, error) {
	set, err := s.sets.GetMissionSet(ctx, id)
	if err != nil {
		if models.IsNotFound(err) {
			return models.NotFoundResult(MsgMissionSetNotFound), nil
		}
		return models.OperationResult{}, err
	}
	if err := s.missions.SetMissionSetForMissions(ctx, set.MissionIDs(), ""); err != nil {
		logger.WithFields(map[string]interface{}{"mission_set_id": id}).
			WithError(err).Warn("failed to clear mission set members")
	}
	if err := s.sets.DeleteMissionSet(ctx, id); err != nil {
		return models.OperationResult{}, err
	}
	return models.SuccessResult(), nil
}
