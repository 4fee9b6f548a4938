package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"radruga/pkg/config"
	"radruga/pkg/models"
)

func intPtr(v int) *int { return &v }

func newCalculator() *RewardsCalculator {
	return NewRewardsCalculator(config.DefaultRewards())
}

func TestRewards_PointsFor(t *testing.T) {
	c := newCalculator()
	tests := []struct {
		name       string
		difficulty int
		stars      int
		want       int
	}{
		{"easy one star", 1, 1, 10},
		{"easy three stars", 1, 3, 30},
		{"hard two stars", 4, 2, 60},
		{"difficulty beyond table", 9, 1, 40},
		{"difficulty zero", 0, 2, 20},
		{"no stars", 3, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.PointsFor(tt.difficulty, tt.stars))
		})
	}
}

func TestRewards_CompletionMovesMissionAndGrantsPoints(t *testing.T) {
	c := newCalculator()
	user := &models.User{
		Level: 1,
		ActiveMissionIds: []models.MissionIdWithSetId{
			{MissionID: "m1", MissionSetID: "s"},
			{MissionID: "m2", MissionSetID: "s"},
		},
		ActiveMissionSetIds: []string{"s"},
	}
	mission := &models.Mission{ID: "m1", Difficulty: 2}
	req := &models.MissionRequest{MissionID: "m1", StarsCount: intPtr(2)}

	points := c.UpdateUserAfterMissionCompletion(req, user, mission)
	require.NotNil(t, points)
	assert.Equal(t, 30, *points)
	assert.Equal(t, 30, user.PointsOrZero())
	assert.True(t, user.IsMissionCompleted("m1"))
	assert.False(t, user.IsMissionActive("m1"))
	assert.Equal(t, []string{"s"}, user.ActiveMissionSetIds)

	// second completion finishes the set
	points = c.UpdateUserAfterMissionCompletion(&models.MissionRequest{MissionID: "m2", StarsCount: intPtr(1)}, user,
		&models.Mission{ID: "m2", Difficulty: 1})
	require.NotNil(t, points)
	assert.Empty(t, user.ActiveMissionSetIds)
}

func TestRewards_CompletionOfInactiveMissionIsNoop(t *testing.T) {
	c := newCalculator()
	user := &models.User{}
	points := c.UpdateUserAfterMissionCompletion(&models.MissionRequest{StarsCount: intPtr(3)}, user, &models.Mission{ID: "m"})
	assert.Nil(t, points)
	assert.Nil(t, user.Points)
}

func TestRewards_LevelUpCarriesRemainder(t *testing.T) {
	c := NewRewardsCalculator(config.RewardsConfig{
		PointsPerStar: []int{40},
		LevelPoints:   []int{50, 100},
		CoinsPerLevel: 7,
	})
	user := &models.User{Level: 1, ActiveMissionIds: []models.MissionIdWithSetId{{MissionID: "m"}}}
	c.UpdateUserAfterMissionCompletion(&models.MissionRequest{StarsCount: intPtr(3)}, user, &models.Mission{ID: "m", Difficulty: 1})

	// 120 points: level 1 needs 50, level 2 needs 100 -> level 2 with 70 left
	assert.Equal(t, 2, user.Level)
	assert.Equal(t, 70, user.LevelPoints)
	assert.Equal(t, 7, user.CoinsCount)
}

func TestRewards_ThreeStarStreak(t *testing.T) {
	c := newCalculator()
	user := &models.User{Level: 1}
	for i, stars := range []int{3, 3, 3, 2, 3} {
		id := string(rune('a' + i))
		user.ActiveMissionIds = append(user.ActiveMissionIds, models.MissionIdWithSetId{MissionID: id})
		c.UpdateUserAfterMissionCompletion(&models.MissionRequest{StarsCount: intPtr(stars)}, user, &models.Mission{ID: id, Difficulty: 1})
	}
	assert.Equal(t, 1, user.ThreeStarsCurrentStreak)
	assert.Equal(t, 3, user.ThreeStarsMaxStreak)
	// 10 streak coins plus one level: 140 points against thresholds 50, 100
	assert.Equal(t, 10+20, user.CoinsCount)
}

func TestRewards_DeclineMovesMissionToFailed(t *testing.T) {
	c := newCalculator()
	user := &models.User{
		ActiveMissionIds:        []models.MissionIdWithSetId{{MissionID: "m", MissionSetID: "s"}},
		ActiveMissionSetIds:     []string{"s"},
		ThreeStarsCurrentStreak: 2,
	}
	ok := c.UpdateUserAfterMissionDecline(&models.MissionRequest{MissionID: "m"}, user)
	require.True(t, ok)
	assert.True(t, user.IsMissionFailed("m"))
	assert.False(t, user.IsMissionActive("m"))
	require.NotNil(t, user.Points)
	assert.Equal(t, 0, *user.Points)
	assert.Zero(t, user.ThreeStarsCurrentStreak)
	assert.Empty(t, user.ActiveMissionSetIds)

	assert.False(t, c.UpdateUserAfterMissionDecline(&models.MissionRequest{MissionID: "m"}, user))
}

func TestRewards_MissionStateExclusivity(t *testing.T) {
	c := newCalculator()
	user := &models.User{ActiveMissionIds: []models.MissionIdWithSetId{{MissionID: "a"}, {MissionID: "b"}, {MissionID: "c"}}}
	c.UpdateUserAfterMissionCompletion(&models.MissionRequest{StarsCount: intPtr(1)}, user, &models.Mission{ID: "a"})
	c.UpdateUserAfterMissionDecline(&models.MissionRequest{MissionID: "b"}, user)

	for _, id := range []string{"a", "b", "c"} {
		states := 0
		for _, in := range []bool{user.IsMissionActive(id), user.IsMissionCompleted(id), user.IsMissionFailed(id)} {
			if in {
				states++
			}
		}
		assert.Equal(t, 1, states, "mission %s", id)
	}
}

func TestRewards_KindActionCapsScale(t *testing.T) {
	c := newCalculator()
	user := &models.User{KindScale: 95}
	c.UpdateUserAfterKindAction(user)
	assert.Equal(t, 100, user.KindScale)
	assert.Equal(t, 1, user.KindActionsCount)
	assert.Equal(t, 5, user.CoinsCount)
}

func TestRewards_AnsweringQuestionSumsScores(t *testing.T) {
	c := newCalculator()
	user := &models.User{PersonQualitiesWithScores: []models.PersonQualityIdWithScore{{PersonQualityID: "brave", Score: 1}}}
	c.UpdateUserAfterAnsweringQuestion([]models.PersonQualityIdWithScore{
		{PersonQualityID: "kind", Score: 2},
		{PersonQualityID: "brave", Score: 0.5},
	}, user)
	assert.Equal(t, []models.PersonQualityIdWithScore{
		{PersonQualityID: "brave", Score: 1.5},
		{PersonQualityID: "kind", Score: 2},
	}, user.PersonQualitiesWithScores)
}

func TestRewards_UpdateRadrugaColor(t *testing.T) {
	c := newCalculator()

	tests := []struct {
		name   string
		scores []models.PersonQualityIdWithScore
		want   string
	}{
		{"no scores", nil, DefaultRadrugaColor},
		{"only negative", []models.PersonQualityIdWithScore{{PersonQualityID: "a", Score: -1}}, DefaultRadrugaColor},
		{"single trait", []models.PersonQualityIdWithScore{{PersonQualityID: "a", Score: 4}}, "#FF0000"},
		{"equal traits", []models.PersonQualityIdWithScore{{PersonQualityID: "a", Score: 2}, {PersonQualityID: "b", Score: 2}}, "#80807F"},
		// a=3 leads, b beats c on id for second place
		{"third trait ignored", []models.PersonQualityIdWithScore{
			{PersonQualityID: "c", Score: 1}, {PersonQualityID: "a", Score: 3}, {PersonQualityID: "b", Score: 1},
		}, "#BF4040"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := &models.User{PersonQualitiesWithScores: tt.scores}
			got := c.UpdateRadrugaColor(user)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, user.RadrugaColor)
		})
	}
}

func TestRewards_SetNewMissionSets(t *testing.T) {
	c := newCalculator()
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	dob := time.Date(2014, 1, 1, 0, 0, 0, 0, time.UTC)
	user := &models.User{
		DateOfBirth:               &dob,
		MissionSetIds:             []models.MissionSetIdWithOrder{{MissionSetID: "starter", Order: 1}},
		PersonQualitiesWithScores: []models.PersonQualityIdWithScore{{PersonQualityID: "brave", Score: 2}, {PersonQualityID: "kind", Score: 1}},
	}
	member := func(id string) []models.MissionWithOrder { return []models.MissionWithOrder{{MissionID: id, Order: 1}} }
	sets := []*models.MissionSet{
		{ID: "starter", Missions: member("s1")},
		{ID: "brave-set", Missions: member("b1"), PersonQualities: []models.PersonQualityIdWithScore{{PersonQualityID: "brave", Score: 3}}},
		{ID: "kind-set", Missions: member("k1"), PersonQualities: []models.PersonQualityIdWithScore{{PersonQualityID: "kind", Score: 3}}},
		{ID: "adult-set", Missions: member("a1"), AgeFrom: intPtr(18),
			PersonQualities: []models.PersonQualityIdWithScore{{PersonQualityID: "brave", Score: 10}}},
		{ID: "empty-set"},
		{ID: "neutral-set", Missions: member("n1")},
	}

	attached := c.SetNewMissionSets(user, sets, 2, now)
	require.Len(t, attached, 2)
	assert.Equal(t, "brave-set", attached[0].ID)
	assert.Equal(t, "kind-set", attached[1].ID)

	assert.Equal(t, []models.MissionSetIdWithOrder{
		{MissionSetID: "starter", Order: 1},
		{MissionSetID: "brave-set", Order: 2},
		{MissionSetID: "kind-set", Order: 3},
	}, user.MissionSetIds)
	assert.True(t, user.IsMissionActive("b1"))
	assert.True(t, user.IsMissionActive("k1"))
	assert.False(t, user.IsMissionActive("a1"))
}
