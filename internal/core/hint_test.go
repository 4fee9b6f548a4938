package core

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"radruga/internal/repository"
	"radruga/internal/repository/memory"
	"radruga/pkg/config"
	"radruga/pkg/models"
)

func hintedMission() *models.Mission {
	m := fountainMission("fountain")
	m.Hints = []models.Hint{
		{ID: "riddle", Type: models.HintTypeText, Text: "Look for water", Score: 5},
		{ID: "map", Type: models.HintTypeCoordinate, Text: "Here it is", Score: 3},
		{ID: "smell", Type: "smell", Score: 1},
	}
	return m
}

func newHintFixture(t *testing.T, coins int) (*repository.Repositories, HintService) {
	t.Helper()
	ctx := context.Background()
	repos := memory.NewRepositories()
	require.NoError(t, repos.Missions.AddMission(ctx, hintedMission()))
	require.NoError(t, repos.Users.AddUser(ctx, &models.User{
		ID:               "u1",
		Settlement:       "moscow",
		CoinsCount:       coins,
		ActiveMissionIds: []models.MissionIdWithSetId{{MissionID: "fountain"}},
		CreatedAt:        time.Now(),
	}))
	places := NewCommonPlaceService(repos.CommonPlaces, config.Default().Missions, nil)
	return repos, NewHintService(repos, places, nil)
}

func TestRequestHint_TextHintIsPaidOnce(t *testing.T) {
	repos, svc := newHintFixture(t, 12)
	ctx := context.Background()

	res, err := svc.RequestHint(ctx, "u1", "fountain", "riddle")
	require.NoError(t, err)
	assert.Equal(t, models.StatusSuccess, res.Status)
	assert.Equal(t, models.HintSuccess, res.HintRequestStatus)
	assert.Equal(t, "Look for water", res.HintText)

	res, err = svc.RequestHint(ctx, "u1", "fountain", "riddle")
	require.NoError(t, err)
	assert.Equal(t, models.HintAlreadyTaken, res.HintRequestStatus)
	assert.Equal(t, "Look for water", res.HintText)

	u, err := repos.Users.GetUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 7, u.CoinsCount)
	assert.Equal(t, []string{"fountain:riddle"}, u.BoughtHintIds)

	logged, err := repos.HintRequests.GetHintRequests(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, logged, 1)
	assert.Equal(t, 5, logged[0].Price)

	counters, err := repos.Counters.GetCounters(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counters[models.CounterHintsBought])
}

func TestRequestHint_CoordinateNeedsApprovedPlace(t *testing.T) {
	repos, svc := newHintFixture(t, 10)
	ctx := context.Background()

	res, err := svc.RequestHint(ctx, "u1", "fountain", "map")
	require.NoError(t, err)
	assert.Equal(t, models.HintNotAvailable, res.HintRequestStatus)
	assert.Nil(t, res.Coordinate)

	u, err := repos.Users.GetUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 10, u.CoinsCount, "unavailable hint is free")

	require.NoError(t, repos.CommonPlaces.ApproveCommonPlace(ctx, &models.CommonPlace{
		ID: "p1", Settlement: "moscow", Alias: "fountain", Coordinate: townHall,
	}, nil))

	res, err = svc.RequestHint(ctx, "u1", "fountain", "map")
	require.NoError(t, err)
	assert.Equal(t, models.HintSuccess, res.HintRequestStatus)
	require.NotNil(t, res.Coordinate)
	assert.Equal(t, townHall, *res.Coordinate)
}

func TestRequestHint_Rejections(t *testing.T) {
	tests := []struct {
		name       string
		coins      int
		userID     string
		missionID  string
		hintID     string
		wantStatus models.OperationStatus
		wantHint   models.HintRequestStatus
		wantDesc   string
	}{
		{"not enough coins", 4, "u1", "fountain", "riddle", models.StatusSuccess, models.HintNotEnoughCoins, MsgNotEnoughCoins},
		{"unknown hint", 10, "u1", "fountain", "nope", models.StatusNotFound, "", MsgHintNotFound},
		{"inactive mission", 10, "u1", "bridge", "riddle", models.StatusError, "", MsgMissionNotActive},
		{"unknown user", 10, "ghost", "fountain", "riddle", models.StatusNotFound, "", MsgUserNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repos, svc := newHintFixture(t, tt.coins)
			res, err := svc.RequestHint(context.Background(), tt.userID, tt.missionID, tt.hintID)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, res.Status)
			assert.Equal(t, tt.wantHint, res.HintRequestStatus)
			assert.Equal(t, tt.wantDesc, res.Description)

			u, err := repos.Users.GetUser(context.Background(), "u1")
			require.NoError(t, err)
			assert.Equal(t, tt.coins, u.CoinsCount)
			assert.Empty(t, u.BoughtHintIds)
		})
	}
}

func TestRequestHint_UnknownTypeIsCatalogDefect(t *testing.T) {
	_, svc := newHintFixture(t, 10)
	assert.PanicsWithError(t, `catalog defect: hint fountain/smell has unsupported type "smell"`, func() {
		_, _ = svc.RequestHint(context.Background(), "u1", "fountain", "smell")
	})
}
