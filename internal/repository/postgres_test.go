package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"radruga/pkg/database"
	"radruga/pkg/models"
)

func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	pool, err := database.NewPGXPool(database.Config{
		Host:     "localhost",
		Port:     5432,
		User:     "radruga",
		Password: "radruga_dev_password",
		Database: "radruga_dev",
		SSLMode:  "disable",
		Timeout:  3 * time.Second,
	})
	if err != nil {
		t.Skipf("Skipping test: PostgreSQL not available: %v", err)
	}
	t.Cleanup(pool.Close)

	_, err = pool.Exec(context.Background(), database.Schema())
	require.NoError(t, err)
	return pool
}

func uniqueID(prefix string) string {
	return prefix + "-" + uuid.NewString()
}

func TestUserRepository_RoundTrip(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	repo := NewUserRepository(pool)

	dob := time.Date(2012, 5, 1, 0, 0, 0, 0, time.UTC)
	user := &models.User{
		ID:             uniqueID("user"),
		NickName:       "fox",
		Role:           models.UserRoleUser,
		DateOfBirth:    &dob,
		HomeCoordinate: &models.GeoCoordinate{Latitude: 55.75, Longitude: 37.61},
		ActiveMissionIds: []models.MissionIdWithSetId{
			{MissionID: "london", MissionSetID: "europe"},
		},
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
	require.NoError(t, repo.AddUser(ctx, user))
	assert.ErrorIs(t, repo.AddUser(ctx, user), models.ErrUserExists)

	got, err := repo.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Points)
	assert.Equal(t, user.ActiveMissionIds, got.ActiveMissionIds)
	assert.Empty(t, got.CompletedMissionIds)
	require.NotNil(t, got.HomeCoordinate)
	assert.InDelta(t, 55.75, got.HomeCoordinate.Latitude, 1e-9)

	points := 30
	got.Points = &points
	got.MoveMissionToCompleted(got.ActiveMissionIds[0])
	require.NoError(t, repo.UpdateUser(ctx, got))

	again, err := repo.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 30, again.PointsOrZero())
	assert.Empty(t, again.ActiveMissionIds)
	assert.Len(t, again.CompletedMissionIds, 1)

	_, err = repo.GetUser(ctx, uniqueID("missing"))
	assert.ErrorIs(t, err, models.ErrUserNotFound)
}

func TestMissionSetRepository_Membership(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	missions, err := NewCachedMissionRepository(NewMissionRepository(pool), 16)
	require.NoError(t, err)
	sets := NewMissionSetRepository(pool, missions)

	age := 10
	m1 := &models.Mission{ID: uniqueID("m"), Name: "one", ExecutionType: models.ExecutionRightAnswer, AgeFrom: &age,
		PersonQualities: []models.PersonQualityIdWithScore{{PersonQualityID: "brave", Score: 2}}}
	m2 := &models.Mission{ID: uniqueID("m"), Name: "two", ExecutionType: models.ExecutionPhotoCreation}
	require.NoError(t, missions.AddMission(ctx, m1))
	require.NoError(t, missions.AddMission(ctx, m2))

	// warm the cache before membership changes
	_, err = missions.GetMission(ctx, m1.ID)
	require.NoError(t, err)

	set := &models.MissionSet{ID: uniqueID("set"), Name: "set", Missions: []models.MissionWithOrder{
		{MissionID: m1.ID, Order: 1}, {MissionID: m2.ID, Order: 2},
	}}
	require.NoError(t, sets.AddMissionSet(ctx, set))
	require.NoError(t, sets.RefreshMissionDependentLinks(ctx, set.ID))

	got, err := missions.GetMission(ctx, m1.ID)
	require.NoError(t, err)
	assert.Equal(t, set.ID, got.MissionSetID)

	stored, err := sets.GetMissionSet(ctx, set.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{m1.ID, m2.ID}, stored.MissionIDs())
	require.NotNil(t, stored.AgeFrom)
	assert.Equal(t, 10, *stored.AgeFrom)

	require.NoError(t, sets.DeleteMissionSet(ctx, set.ID))
	got, err = missions.GetMission(ctx, m1.ID)
	require.NoError(t, err)
	assert.Empty(t, got.MissionSetID)
}

func TestAppCountersRepository_Increment(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	repo := NewAppCountersRepository(pool)

	before, err := repo.GetCounters(ctx)
	require.NoError(t, err)
	require.NoError(t, repo.Increment(ctx, models.CounterHintsBought, 2))
	after, err := repo.GetCounters(ctx)
	require.NoError(t, err)
	assert.Equal(t, before[models.CounterHintsBought]+2, after[models.CounterHintsBought])
}
