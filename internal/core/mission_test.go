package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"radruga/internal/repository"
	"radruga/internal/repository/memory"
	"radruga/pkg/models"
)

func entries(ids ...string) []models.MissionIdWithSetId {
	out := make([]models.MissionIdWithSetId, len(ids))
	for i, id := range ids {
		out[i] = models.MissionIdWithSetId{MissionID: id}
	}
	return out
}

func TestDisplayStatus(t *testing.T) {
	user := &models.User{
		ActiveMissionIds:    entries("bridge", "tower", "museum", "park"),
		CompletedMissionIds: entries("square"),
		FailedMissionIds:    entries("river"),
	}

	tests := []struct {
		name    string
		mission *models.Mission
		pending bool
		want    models.DisplayStatus
	}{
		{"completed", &models.Mission{ID: "square"}, false, models.DisplaySuccess},
		{"failed", &models.Mission{ID: "river"}, false, models.DisplayFail},
		{"waiting for review", &models.Mission{ID: "museum"}, true, models.DisplayWaiting},
		{"no prerequisites", &models.Mission{ID: "park"}, false, models.DisplayAvailable},
		{"prerequisite done", &models.Mission{ID: "bridge", DependsOn: []string{"square"}}, false, models.DisplayAvailable},
		{"prerequisite active", &models.Mission{ID: "tower", DependsOn: []string{"square", "bridge"}}, false, models.DisplayNotAvailable},
		{"prerequisite declined", &models.Mission{ID: "tower", DependsOn: []string{"bridge", "river"}}, false, models.DisplayFail},
		{"completed wins over failed prerequisite", &models.Mission{ID: "square", DependsOn: []string{"river"}}, false, models.DisplaySuccess},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DisplayStatus(user, tt.mission, tt.pending))
		})
	}
}

type catalogFixture struct {
	repos *repository.Repositories
	svc   MissionService
}

func newCatalogFixture(t *testing.T, missions ...*models.Mission) *catalogFixture {
	t.Helper()
	repos := memory.NewRepositories()
	for _, m := range missions {
		require.NoError(t, repos.Missions.AddMission(context.Background(), m))
	}
	return &catalogFixture{repos: repos, svc: NewMissionService(repos)}
}

func (f *catalogFixture) set(t *testing.T, id string) *models.MissionSet {
	t.Helper()
	set, err := f.svc.GetMissionSet(context.Background(), id)
	require.NoError(t, err)
	return set
}

func (f *catalogFixture) owner(t *testing.T, missionID string) string {
	t.Helper()
	m, err := f.svc.GetMission(context.Background(), missionID)
	require.NoError(t, err)
	return m.MissionSetID
}

func textMission(id, name string) *models.Mission {
	return &models.Mission{ID: id, Name: name, ExecutionType: models.ExecutionTextCreation, Difficulty: 1}
}

func members(ids ...string) []models.MissionWithOrder {
	out := make([]models.MissionWithOrder, len(ids))
	for i, id := range ids {
		out[i] = models.MissionWithOrder{MissionID: id, Order: i + 1}
	}
	return out
}

func TestMissionSets_StealAndRefresh(t *testing.T) {
	kid := textMission("draw", "Draw your street")
	kid.AgeFrom, kid.AgeTo = intPtr(6), intPtr(12)
	kid.PersonQualities = []models.PersonQualityIdWithScore{{PersonQualityID: "creativity", Score: 2}}
	adult := textMission("essay", "Write an essay")
	adult.AgeFrom, adult.AgeTo = intPtr(16), intPtr(99)
	adult.PersonQualities = []models.PersonQualityIdWithScore{{PersonQualityID: "creativity", Score: 1}}

	f := newCatalogFixture(t, kid, adult)
	ctx := context.Background()

	res, err := f.svc.AddMissionSet(ctx, &models.MissionSet{ID: "art", Name: "Art", Missions: members("draw", "essay")})
	require.NoError(t, err)
	require.True(t, res.IsSuccess())
	assert.Equal(t, "art", res.ID)

	art := f.set(t, "art")
	assert.Equal(t, intPtr(6), art.AgeFrom)
	assert.Equal(t, intPtr(99), art.AgeTo)
	assert.Equal(t, []models.PersonQualityIdWithScore{{PersonQualityID: "creativity", Score: 3}}, art.PersonQualities)

	res, err = f.svc.AddMissionSet(ctx, &models.MissionSet{ID: "school", Name: "School", Missions: members("essay")})
	require.NoError(t, err)
	require.True(t, res.IsSuccess())

	assert.Equal(t, "school", f.owner(t, "essay"))
	art = f.set(t, "art")
	assert.Equal(t, []string{"draw"}, art.MissionIDs())
	assert.Equal(t, intPtr(12), art.AgeTo, "set that lost a member is refreshed")
	assert.Equal(t, intPtr(16), f.set(t, "school").AgeFrom)
}

func TestMissionSets_UpdateClearsRemovedMembers(t *testing.T) {
	f := newCatalogFixture(t, textMission("a", "A"), textMission("b", "B"), textMission("c", "C"))
	ctx := context.Background()

	_, err := f.svc.AddMissionSet(ctx, &models.MissionSet{ID: "s", Missions: members("a", "b")})
	require.NoError(t, err)

	result, err := f.svc.UpdateMissionSet(ctx, &models.MissionSet{ID: "s", Name: "renamed", Missions: members("b", "c")})
	require.NoError(t, err)
	require.True(t, result.IsSuccess())

	assert.Equal(t, "", f.owner(t, "a"))
	assert.Equal(t, "s", f.owner(t, "b"))
	assert.Equal(t, "s", f.owner(t, "c"))
	assert.Equal(t, "renamed", f.set(t, "s").Name)

	result, err = f.svc.UpdateMissionSet(ctx, &models.MissionSet{ID: "ghost"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusNotFound, result.Status)
}

func TestMissionSets_UnknownMemberRejected(t *testing.T) {
	f := newCatalogFixture(t, textMission("a", "A"))

	res, err := f.svc.AddMissionSet(context.Background(), &models.MissionSet{ID: "s", Missions: members("a", "missing")})
	require.NoError(t, err)
	assert.Equal(t, models.StatusError, res.Status)
	assert.Equal(t, MsgMissionSetMembers, res.Description)

	_, err = f.svc.GetMissionSet(context.Background(), "s")
	assert.True(t, models.IsNotFound(err))
}

func TestMissionSets_DeleteClearsBackReferences(t *testing.T) {
	f := newCatalogFixture(t, textMission("a", "A"), textMission("b", "B"))
	ctx := context.Background()
	_, err := f.svc.AddMissionSet(ctx, &models.MissionSet{ID: "s", Missions: members("a", "b")})
	require.NoError(t, err)

	result, err := f.svc.DeleteMissionSet(ctx, "s")
	require.NoError(t, err)
	require.True(t, result.IsSuccess())

	assert.Equal(t, "", f.owner(t, "a"))
	assert.Equal(t, "", f.owner(t, "b"))

	result, err = f.svc.DeleteMissionSet(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, models.StatusNotFound, result.Status)
}

func TestMissions_AdminLifecycle(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()
	_, err := f.svc.AddMissionSet(ctx, &models.MissionSet{ID: "s"})
	require.NoError(t, err)

	first := textMission("", "Take a photo")
	first.MissionSetID = "s"
	first.AgeFrom = intPtr(10)
	res, err := f.svc.AddMission(ctx, first)
	require.NoError(t, err)
	require.True(t, res.IsSuccess())
	require.NotEmpty(t, res.ID)
	assert.Equal(t, "s", f.owner(t, res.ID))
	assert.Equal(t, intPtr(10), f.set(t, "s").AgeFrom)

	dup, err := f.svc.AddMission(ctx, textMission(res.ID, "Again"))
	require.NoError(t, err)
	assert.Equal(t, models.StatusError, dup.Status)

	bad := textMission("broken", "Broken")
	bad.ExecutionType = "teleport"
	invalid, err := f.svc.AddMission(ctx, bad)
	require.NoError(t, err)
	assert.Equal(t, models.StatusError, invalid.Status)

	updated := textMission(res.ID, "Take two photos")
	updated.AgeFrom = intPtr(14)
	result, err := f.svc.UpdateMission(ctx, updated)
	require.NoError(t, err)
	require.True(t, result.IsSuccess())
	assert.Equal(t, intPtr(14), f.set(t, "s").AgeFrom)
	assert.Equal(t, "s", f.owner(t, res.ID), "membership survives a field update")

	result, err = f.svc.DeleteMission(ctx, res.ID)
	require.NoError(t, err)
	require.True(t, result.IsSuccess())
	set := f.set(t, "s")
	assert.Empty(t, set.Missions)
	assert.Nil(t, set.AgeFrom)

	result, err = f.svc.UpdateMission(ctx, updated)
	require.NoError(t, err)
	assert.Equal(t, models.StatusNotFound, result.Status)
}

func TestGetMissionsForUser(t *testing.T) {
	f := newCatalogFixture(t,
		textMission("photo", "Photo"),
		textMission("poem", "Poem"),
		&models.Mission{ID: "riddle", Name: "Riddle", ExecutionType: models.ExecutionRightAnswer, DependsOn: []string{"poem"}},
		textMission("song", "Song"),
	)
	ctx := context.Background()
	_, err := f.svc.AddMissionSet(ctx, &models.MissionSet{ID: "first", Missions: members("poem", "photo", "riddle")})
	require.NoError(t, err)
	_, err = f.svc.AddMissionSet(ctx, &models.MissionSet{ID: "second", Missions: members("song")})
	require.NoError(t, err)

	user := &models.User{
		ID:                  "u1",
		MissionSetIds:       []models.MissionSetIdWithOrder{{MissionSetID: "second", Order: 2}, {MissionSetID: "first", Order: 1}},
		ActiveMissionIds:    []models.MissionIdWithSetId{{MissionID: "song", MissionSetID: "second"}, {MissionID: "photo", MissionSetID: "first"}, {MissionID: "riddle", MissionSetID: "first"}},
		FailedMissionIds:    []models.MissionIdWithSetId{{MissionID: "poem", MissionSetID: "first"}},
		CompletedMissionIds: []models.MissionIdWithSetId{},
	}
	require.NoError(t, f.repos.Users.AddUser(ctx, user))
	require.NoError(t, f.repos.MissionRequests.AddMissionRequest(ctx, &models.MissionRequest{
		ID: "r1", UserID: "u1", MissionID: "photo", Status: models.RequestNotChecked,
	}))

	got, err := f.svc.GetMissionsForUser(ctx, "u1")
	require.NoError(t, err)

	var ids []string
	statuses := make(map[string]models.DisplayStatus)
	for _, m := range got {
		ids = append(ids, m.Mission.ID)
		statuses[m.Mission.ID] = m.DisplayStatus
	}
	assert.Equal(t, []string{"poem", "photo", "riddle", "song"}, ids)
	assert.Equal(t, map[string]models.DisplayStatus{
		"poem":   models.DisplayFail,
		"photo":  models.DisplayWaiting,
		"riddle": models.DisplayFail,
		"song":   models.DisplayAvailable,
	}, statuses)

	_, err = f.svc.GetMissionsForUser(ctx, "nobody")
	assert.True(t, models.IsNotFound(err))
}

func TestSearchMissions(t *testing.T) {
	f := newCatalogFixture(t,
		textMission("fountain", "Fountain hunt"),
		textMission("capital", "Capital of France"),
		textMission("bridge", "Count the bridges"),
	)
	ctx := context.Background()

	got, err := f.svc.SearchMissions(ctx, "FOUNTAIN", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "fountain", got[0].ID)

	got, err = f.svc.SearchMissions(ctx, "t", 2)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = f.svc.SearchMissions(ctx, "   ", 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}
