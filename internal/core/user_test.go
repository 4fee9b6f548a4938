package core

import (
	"bytes"
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"radruga/internal/repository"
	"radruga/internal/repository/memory"
	"radruga/pkg/config"
	"radruga/pkg/logger"
	"radruga/pkg/models"
)

type profileFixture struct {
	repos   *repository.Repositories
	ratings RatingService
	users   UserService
	quiz    QuizService
}

func newProfileFixture(t *testing.T, starterSets ...string) *profileFixture {
	t.Helper()
	ctx := context.Background()
	repos := memory.NewRepositories()
	for _, id := range []string{"a1", "a2", "b1", "c1"} {
		require.NoError(t, repos.Missions.AddMission(ctx, textMission(id, id)))
	}
	svc := NewMissionService(repos)
	for _, set := range []*models.MissionSet{
		{ID: "alpha", Missions: members("a1", "a2")},
		{ID: "brave", Missions: members("b1")},
		{ID: "calm", Missions: members("c1")},
	} {
		res, err := svc.AddMissionSet(ctx, set)
		require.NoError(t, err)
		require.True(t, res.IsSuccess())
	}
	for _, q := range []string{"courage", "kindness"} {
		require.NoError(t, repos.PersonQualities.AddPersonQuality(ctx, &models.PersonQuality{ID: q, Name: q}))
	}

	cfg := config.Default()
	cfg.Missions.StarterMissionSets = starterSets
	cfg.Missions.NewMissionSetsCount = 1
	rewards := NewRewardsCalculator(cfg.Rewards)
	ratings := NewRatingService(repos.Users, cfg.Missions, nil)
	return &profileFixture{
		repos:   repos,
		ratings: ratings,
		users:   NewUserService(repos, rewards, ratings, nil, cfg.Missions),
		quiz:    NewQuizService(repos, rewards, nil, cfg.Missions),
	}
}

func (f *profileFixture) register(t *testing.T, id string) {
	t.Helper()
	res, err := f.users.Register(context.Background(), models.RegisterRequest{ID: id, NickName: "nick " + id, Settlement: " Moscow "})
	require.NoError(t, err)
	require.True(t, res.IsSuccess(), res.Description)
}

func TestRegister_AttachesStarterSets(t *testing.T) {
	f := newProfileFixture(t, "alpha", "missing")
	ctx := context.Background()
	f.register(t, "u1")

	u, err := f.users.GetUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, u.Level)
	assert.Nil(t, u.Points)
	assert.Equal(t, "moscow", u.Settlement)
	assert.Equal(t, []string{"alpha"}, u.ActiveMissionSetIds)
	assert.Equal(t, []models.MissionIdWithSetId{
		{MissionID: "a1", MissionSetID: "alpha"},
		{MissionID: "a2", MissionSetID: "alpha"},
	}, u.ActiveMissionIds)

	res, err := f.users.Register(ctx, models.RegisterRequest{ID: "u1", NickName: "again"})
	require.NoError(t, err)
	assert.Equal(t, MsgUserExists, res.Description)

	counters, err := f.users.GetCounters(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counters[models.CounterRegisteredUsers])

	sets, err := f.users.GetMissionSetsForUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, sets, 1)
	assert.Equal(t, "alpha", sets[0].ID)
}

func TestUpdateProfile_MirrorsIntoRating(t *testing.T) {
	f := newProfileFixture(t)
	ctx := context.Background()
	require.NoError(t, f.repos.Users.AddUser(ctx, &models.User{ID: "u1", NickName: "old", Points: intPtr(40), CreatedAt: time.Now()}))
	require.NoError(t, f.ratings.BuildRatings(ctx))

	nick, avatar := "new", "https://cdn.example/u1.png"
	res, err := f.users.UpdateProfile(ctx, "u1", models.UpdateProfileRequest{NickName: &nick, AvatarURL: &avatar})
	require.NoError(t, err)
	require.True(t, res.IsSuccess())

	u, err := f.users.GetUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "new", u.NickName)

	ratings, err := f.ratings.GetRatings(ctx, models.RatingCommon, "")
	require.NoError(t, err)
	require.Len(t, ratings.Leaders, 1)
	assert.Equal(t, "new", ratings.Leaders[0].NickName)
	assert.Equal(t, avatar, ratings.Leaders[0].AvatarURL)

	blank := "  "
	res, err = f.users.UpdateProfile(ctx, "u1", models.UpdateProfileRequest{NickName: &blank})
	require.NoError(t, err)
	assert.Equal(t, models.StatusError, res.Status)

	short := " x "
	res, err = f.users.UpdateProfile(ctx, "u1", models.UpdateProfileRequest{NickName: &short})
	require.NoError(t, err)
	assert.Equal(t, models.StatusError, res.Status)
	assert.Equal(t, MsgInvalidNickName, res.Description)

	res, err = f.users.UpdateProfile(ctx, "ghost", models.UpdateProfileRequest{NickName: &nick})
	require.NoError(t, err)
	assert.Equal(t, models.StatusNotFound, res.Status)
}

func TestAddKindAction(t *testing.T) {
	f := newProfileFixture(t)
	ctx := context.Background()
	f.register(t, "u1")

	res, err := f.users.AddKindAction(ctx, "u1", "helped a neighbour")
	require.NoError(t, err)
	require.True(t, res.IsSuccess())

	res, err = f.users.AddKindAction(ctx, "u1", " ")
	require.NoError(t, err)
	assert.Equal(t, MsgKindDeedEmpty, res.Description)

	u, err := f.users.GetUser(ctx, "u1")
	require.NoError(t, err)
	rewards := config.DefaultRewards()
	assert.Equal(t, rewards.KindActionScore, u.KindScale)
	assert.Equal(t, 1, u.KindActionsCount)
	assert.Equal(t, rewards.KindActionCoins, u.CoinsCount)

	actions, err := f.users.GetKindActions(ctx, "u1", 10)
	require.NoError(t, err)
	require.Len(t, actions, 1)
	assert.Equal(t, "helped a neighbour", actions[0].Description)
}

func TestQuiz_CompleteAssignsMatchingSet(t *testing.T) {
	f := newProfileFixture(t)
	ctx := context.Background()
	mission, err := f.repos.Missions.GetMission(ctx, "b1")
	require.NoError(t, err)
	mission.PersonQualities = []models.PersonQualityIdWithScore{{PersonQualityID: "courage", Score: 5}}
	require.NoError(t, f.repos.Missions.UpdateMission(ctx, mission))
	require.NoError(t, f.repos.MissionSets.RefreshMissionDependentLinks(ctx, "brave"))
	f.register(t, "u1")

	result, err := f.quiz.AnswerQuestion(ctx, "u1", []models.PersonQualityIdWithScore{{PersonQualityID: "courage", Score: 1}})
	require.NoError(t, err)
	require.True(t, result.IsSuccess())

	color, err := f.quiz.CompleteQuiz(ctx, "u1", []models.QuizAnswerRequest{
		{Qualities: []models.PersonQualityIdWithScore{{PersonQualityID: "courage", Score: 2}}},
		{Qualities: []models.PersonQualityIdWithScore{{PersonQualityID: "kindness", Score: 1}}},
	})
	require.NoError(t, err)
	require.True(t, color.IsSuccess())
	assert.Equal(t, "#BF4040", color.RadrugaColor)

	u, err := f.users.GetUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []models.PersonQualityIdWithScore{
		{PersonQualityID: "courage", Score: 3},
		{PersonQualityID: "kindness", Score: 1},
	}, u.PersonQualitiesWithScores)
	assert.Equal(t, []string{"brave"}, u.ActiveMissionSetIds)
	assert.True(t, u.IsMissionActive("b1"))
}

func TestQuiz_UnknownQualityRejected(t *testing.T) {
	f := newProfileFixture(t)
	ctx := context.Background()
	f.register(t, "u1")

	result, err := f.quiz.AnswerQuestion(ctx, "u1", []models.PersonQualityIdWithScore{{PersonQualityID: "greed", Score: 1}})
	require.NoError(t, err)
	assert.Equal(t, MsgUnknownQuality, result.Description)

	color, err := f.quiz.CompleteQuiz(ctx, "u1", []models.QuizAnswerRequest{
		{Qualities: []models.PersonQualityIdWithScore{{PersonQualityID: "greed", Score: 1}}},
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusError, color.Status)

	u, err := f.users.GetUser(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, u.PersonQualitiesWithScores)
}

func TestMaintenanceJob_RunDaily(t *testing.T) {
	f := newProfileFixture(t)
	ctx := context.Background()
	require.NoError(t, f.repos.Users.AddUser(ctx, &models.User{ID: "kind", Points: intPtr(5), KindScale: 90}))
	require.NoError(t, f.repos.Users.AddUser(ctx, &models.User{ID: "top", Points: intPtr(50), KindScale: 1}))

	rewards := config.DefaultRewards()
	job := NewMaintenanceJob(f.repos.Users, f.ratings, rewards)
	require.NoError(t, job.RunDaily(ctx))

	kind, err := f.users.GetUser(ctx, "kind")
	require.NoError(t, err)
	assert.Equal(t, 90-rewards.KindScaleDailyDecay, kind.KindScale)
	assert.Equal(t, 1, kind.KindScaleHighCurrentDays)
	assert.Equal(t, intPtr(2), kind.LastRatingPlace)

	top, err := f.users.GetUser(ctx, "top")
	require.NoError(t, err)
	assert.Equal(t, 0, top.KindScale)
	assert.Equal(t, intPtr(1), top.LastRatingPlace)
}

type decayFailingUsers struct {
	repository.UserRepository
}

func (decayFailingUsers) DecreaseKindActionScales(ctx context.Context, decay, highThreshold int) error {
	return errors.New("connection reset")
}

func TestMaintenanceJob_ScheduledRunLogsFailure(t *testing.T) {
	f := newProfileFixture(t)
	ctx := context.Background()
	require.NoError(t, f.repos.Users.AddUser(ctx, &models.User{ID: "top", Points: intPtr(50)}))

	var buf bytes.Buffer
	logger.SetOutput(&buf)
	t.Cleanup(func() { logger.SetOutput(os.Stdout) })

	job := NewMaintenanceJob(decayFailingUsers{UserRepository: f.repos.Users}, f.ratings, config.DefaultRewards())
	next := job.runScheduled(ctx, time.Hour)

	assert.Greater(t, next, time.Duration(0))
	assert.LessOrEqual(t, next, time.Hour)
	assert.Contains(t, buf.String(), "scheduled daily maintenance failed")
	assert.Contains(t, buf.String(), "decrease kind scales")

	top, err := f.users.GetUser(ctx, "top")
	require.NoError(t, err)
	assert.Equal(t, intPtr(1), top.LastRatingPlace)
}
