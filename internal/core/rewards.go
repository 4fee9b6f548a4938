package core

import (
	"fmt"
	"math"
	"sort"
	"time"

	"radruga/pkg/config"
	"radruga/pkg/models"
)

// DefaultRadrugaColor is assigned while the user has no positive trait score
const DefaultRadrugaColor = "#808080"

// RewardsCalculator applies the game rules to an in-memory user. It performs
// no I/O; callers persist the user afterwards.
type RewardsCalculator struct {
	cfg config.RewardsConfig
}

// NewRewardsCalculator creates a calculator over the reward tables
func NewRewardsCalculator(cfg config.RewardsConfig) *RewardsCalculator {
	if len(cfg.PointsPerStar) == 0 || len(cfg.LevelPoints) == 0 {
		defaults := config.DefaultRewards()
		if len(cfg.PointsPerStar) == 0 {
			cfg.PointsPerStar = defaults.PointsPerStar
		}
		if len(cfg.LevelPoints) == 0 {
			cfg.LevelPoints = defaults.LevelPoints
		}
	}
	return &RewardsCalculator{cfg: cfg}
}

// PointsFor is stars times the per-star weight of the difficulty. Difficulties
// beyond the table use its last entry.
func (c *RewardsCalculator) PointsFor(difficulty, stars int) int {
	if stars <= 0 {
		return 0
	}
	i := difficulty - 1
	if i < 0 {
		i = 0
	}
	if i >= len(c.cfg.PointsPerStar) {
		i = len(c.cfg.PointsPerStar) - 1
	}
	return stars * c.cfg.PointsPerStar[i]
}

// levelThreshold is the number of level points needed to leave level
func (c *RewardsCalculator) levelThreshold(level int) int {
	i := level - 1
	if i < 0 {
		i = 0
	}
	if i >= len(c.cfg.LevelPoints) {
		i = len(c.cfg.LevelPoints) - 1
	}
	return c.cfg.LevelPoints[i]
}

// addLevelPoints accumulates points and levels up as many times as they
// allow, carrying the remainder. It returns the number of levels gained.
func (c *RewardsCalculator) addLevelPoints(user *models.User, points int) int {
	if user.Level < 1 {
		user.Level = 1
	}
	user.LevelPoints += points
	gained := 0
	for {
		threshold := c.levelThreshold(user.Level)
		if threshold <= 0 || user.LevelPoints < threshold {
			break
		}
		user.LevelPoints -= threshold
		user.Level++
		user.CoinsCount += c.cfg.CoinsPerLevel
		gained++
	}
	return gained
}

// UpdateUserAfterMissionCompletion moves the mission to Completed and grants
// points, levels, streak coins. It returns the points awarded, or nil when the
// mission was not active for the user.
func (c *RewardsCalculator) UpdateUserAfterMissionCompletion(req *models.MissionRequest, user *models.User, mission *models.Mission) *int {
	entry, ok := user.ActiveMission(mission.ID)
	if !ok {
		return nil
	}
	user.MoveMissionToCompleted(entry)

	stars := req.Stars()
	points := c.PointsFor(mission.Difficulty, stars)
	total := user.PointsOrZero() + points
	user.Points = &total
	c.addLevelPoints(user, points)

	if stars == 3 {
		user.ThreeStarsCurrentStreak++
		if user.ThreeStarsCurrentStreak > user.ThreeStarsMaxStreak {
			user.ThreeStarsMaxStreak = user.ThreeStarsCurrentStreak
		}
		if c.cfg.ThreeStarsStreak > 0 && user.ThreeStarsCurrentStreak%c.cfg.ThreeStarsStreak == 0 {
			user.CoinsCount += c.cfg.ThreeStarsStreakCoins
		}
	} else {
		user.ThreeStarsCurrentStreak = 0
	}

	user.DeactivateFinishedSet(entry.MissionSetID)
	return &points
}

// UpdateUserAfterMissionDecline moves the mission to Failed. Dependents are
// not touched; their Fail status is derived at display time. The user enters
// the rating with zero points if this is the first resolved mission.
func (c *RewardsCalculator) UpdateUserAfterMissionDecline(req *models.MissionRequest, user *models.User) bool {
	entry, ok := user.ActiveMission(req.MissionID)
	if !ok {
		return false
	}
	user.MoveMissionToFailed(entry)
	user.ThreeStarsCurrentStreak = 0
	if user.Points == nil {
		zero := 0
		user.Points = &zero
	}
	user.DeactivateFinishedSet(entry.MissionSetID)
	return true
}

// UpdateUserAfterKindAction raises the kind scale up to its ceiling and pays
// the kind-action coins.
func (c *RewardsCalculator) UpdateUserAfterKindAction(user *models.User) {
	user.KindScale += c.cfg.KindActionScore
	if c.cfg.KindScaleMax > 0 && user.KindScale > c.cfg.KindScaleMax {
		user.KindScale = c.cfg.KindScaleMax
	}
	if user.KindScale < 0 {
		user.KindScale = 0
	}
	user.KindActionsCount++
	user.CoinsCount += c.cfg.KindActionCoins
}

// UpdateUserAfterAnsweringQuestion adds the answer's trait deltas to the
// user's accumulated scores, keeping first-seen order.
func (c *RewardsCalculator) UpdateUserAfterAnsweringQuestion(qualities []models.PersonQualityIdWithScore, user *models.User) {
	for _, q := range qualities {
		found := false
		for i := range user.PersonQualitiesWithScores {
			if user.PersonQualitiesWithScores[i].PersonQualityID == q.PersonQualityID {
				user.PersonQualitiesWithScores[i].Score += q.Score
				found = true
				break
			}
		}
		if !found {
			user.PersonQualitiesWithScores = append(user.PersonQualitiesWithScores, q)
		}
	}
}

// dominantQualities returns the positive scores sorted by score desc then id
func dominantQualities(scores []models.PersonQualityIdWithScore) []models.PersonQualityIdWithScore {
	var out []models.PersonQualityIdWithScore
	for _, q := range scores {
		if q.Score > 0 {
			out = append(out, q)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].PersonQualityID < out[j].PersonQualityID
	})
	return out
}

// UpdateRadrugaColor maps the two dominant traits onto the red and green
// channels in proportion to their scores. Blue is the share left by the
// weaker axis.
func (c *RewardsCalculator) UpdateRadrugaColor(user *models.User) string {
	top := dominantQualities(user.PersonQualitiesWithScores)
	if len(top) == 0 {
		user.RadrugaColor = DefaultRadrugaColor
		return user.RadrugaColor
	}
	first := top[0].Score
	second := 0.0
	if len(top) > 1 {
		second = top[1].Score
	}
	total := first + second
	r := int(math.Round(255 * first / total))
	g := int(math.Round(255 * second / total))
	b := 255 - r
	user.RadrugaColor = fmt.Sprintf("#%02X%02X%02X", r, g, b)
	return user.RadrugaColor
}

// SetNewMissionSets attaches up to count sets the user does not have yet,
// restricted to the user's age and ranked by how well their trait profile
// matches the user's scores. It returns the attached sets.
func (c *RewardsCalculator) SetNewMissionSets(user *models.User, sets []*models.MissionSet, count int, now time.Time) []*models.MissionSet {
	if count <= 0 {
		return nil
	}
	scores := make(map[string]float64, len(user.PersonQualitiesWithScores))
	for _, q := range user.PersonQualitiesWithScores {
		scores[q.PersonQualityID] = q.Score
	}
	age := user.Age(now)

	type candidate struct {
		set   *models.MissionSet
		score float64
	}
	var candidates []candidate
	for _, set := range sets {
		if set == nil || len(set.Missions) == 0 || user.HasMissionSet(set.ID) || !set.FitsAge(age) {
			continue
		}
		score := 0.0
		for _, q := range set.PersonQualities {
			score += q.Score * scores[q.PersonQualityID]
		}
		candidates = append(candidates, candidate{set: set, score: score})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].set.ID < candidates[j].set.ID
	})

	var attached []*models.MissionSet
	for _, cand := range candidates {
		if len(attached) == count {
			break
		}
		user.AttachMissionSet(cand.set)
		attached = append(attached, cand.set)
	}
	return attached
}
