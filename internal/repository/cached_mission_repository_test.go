package repository_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"radruga/internal/repository"
	"radruga/internal/repository/memory"
	"radruga/pkg/models"
)

type countingMissions struct {
	repository.MissionRepository
	gets int
}

func (c *countingMissions) GetMission(ctx context.Context, id string) (*models.Mission, error) {
	c.gets++
	return c.MissionRepository.GetMission(ctx, id)
}

func TestCachedMissionRepository(t *testing.T) {
	ctx := context.Background()
	catalog := memory.NewCatalog()
	next := &countingMissions{MissionRepository: catalog.Missions()}
	cached, err := repository.NewCachedMissionRepository(next, 8)
	require.NoError(t, err)

	require.NoError(t, cached.AddMission(ctx, &models.Mission{ID: "m1", Name: "first"}))

	for i := 0; i < 3; i++ {
		m, err := cached.GetMission(ctx, "m1")
		require.NoError(t, err)
		assert.Equal(t, "first", m.Name)
	}
	assert.Equal(t, 1, next.gets)

	require.NoError(t, cached.UpdateMission(ctx, &models.Mission{ID: "m1", Name: "second"}))
	m, err := cached.GetMission(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, "second", m.Name)
	assert.Equal(t, 2, next.gets)

	// callers cannot mutate the cached entry
	m.Name = "mutated"
	m, err = cached.GetMission(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, "second", m.Name)
}

func TestCachedMissionRepository_GetMissionsKeepsOrder(t *testing.T) {
	ctx := context.Background()
	catalog := memory.NewCatalog()
	cached, err := repository.NewCachedMissionRepository(catalog.Missions(), 8)
	require.NoError(t, err)
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, cached.AddMission(ctx, &models.Mission{ID: id}))
	}
	_, err = cached.GetMission(ctx, "b")
	require.NoError(t, err)

	missions, err := cached.GetMissions(ctx, []string{"c", "b", "missing", "a"})
	require.NoError(t, err)
	require.Len(t, missions, 3)
	assert.Equal(t, "c", missions[0].ID)
	assert.Equal(t, "b", missions[1].ID)
	assert.Equal(t, "a", missions[2].ID)
}

func TestCachedMissionRepository_MembershipInvalidates(t *testing.T) {
	ctx := context.Background()
	catalog := memory.NewCatalog()
	cached, err := repository.NewCachedMissionRepository(catalog.Missions(), 8)
	require.NoError(t, err)
	require.NoError(t, cached.AddMission(ctx, &models.Mission{ID: "a"}))
	require.NoError(t, catalog.MissionSets().AddMissionSet(ctx, &models.MissionSet{ID: "s"}))

	m, err := cached.GetMission(ctx, "a")
	require.NoError(t, err)
	assert.Empty(t, m.MissionSetID)

	require.NoError(t, cached.SetMissionSetForMissions(ctx, []string{"a"}, "s"))
	m, err = cached.GetMission(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "s", m.MissionSetID)
}
