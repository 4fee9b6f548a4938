package models

import (
	"slices"
	"time"
)

// UserRole represents valid user roles
type UserRole string

const (
	UserRoleUser  UserRole = "user"
	UserRoleAdmin UserRole = "admin"
)

// User is a player profile together with its mission progress.
//
// Points stays nil until the first rating event (the first resolved mission).
// Every user with non-nil Points has exactly one entry in the rating cache.
type User struct {
	ID             string         `json:"id" db:"id"`
	NickName       string         `json:"nick_name" db:"nick_name"`
	AvatarURL      string         `json:"avatar_url,omitempty" db:"avatar_url"`
	Role           UserRole       `json:"role" db:"role"`
	DateOfBirth    *time.Time     `json:"date_of_birth,omitempty" db:"date_of_birth"`
	Settlement     string         `json:"settlement,omitempty" db:"settlement"`
	HomeCoordinate *GeoCoordinate `json:"home_coordinate,omitempty" db:"home_coordinate"`

	Points      *int `json:"points,omitempty" db:"points"`
	Level       int  `json:"level" db:"level"`
	LevelPoints int  `json:"level_points" db:"level_points"`
	CoinsCount  int  `json:"coins_count" db:"coins_count"`

	KindScale                int `json:"kind_scale" db:"kind_scale"`
	KindActionsCount         int `json:"kind_actions_count" db:"kind_actions_count"`
	KindScaleHighCurrentDays int `json:"kind_scale_high_current_days" db:"kind_scale_high_current_days"`
	KindScaleHighMaxDays     int `json:"kind_scale_high_max_days" db:"kind_scale_high_max_days"`

	ThreeStarsCurrentStreak int `json:"three_stars_current_streak" db:"three_stars_current_streak"`
	ThreeStarsMaxStreak     int `json:"three_stars_max_streak" db:"three_stars_max_streak"`

	LastRatingPlace       *int `json:"last_rating_place,omitempty" db:"last_rating_place"`
	UpInRatingCurrentDays int  `json:"up_in_rating_current_days" db:"up_in_rating_current_days"`
	UpInRatingMaxDays     int  `json:"up_in_rating_max_days" db:"up_in_rating_max_days"`

	ActiveMissionIds          []MissionIdWithSetId       `json:"active_mission_ids" db:"active_mission_ids"`
	CompletedMissionIds       []MissionIdWithSetId       `json:"completed_mission_ids" db:"completed_mission_ids"`
	FailedMissionIds          []MissionIdWithSetId       `json:"failed_mission_ids" db:"failed_mission_ids"`
	ActiveMissionSetIds       []string                   `json:"active_mission_set_ids" db:"active_mission_set_ids"`
	MissionSetIds             []MissionSetIdWithOrder    `json:"mission_set_ids" db:"mission_set_ids"`
	BoughtHintIds             []string                   `json:"bought_hint_ids" db:"bought_hint_ids"`
	PersonQualitiesWithScores []PersonQualityIdWithScore `json:"person_qualities_with_scores" db:"person_qualities_with_scores"`
	RadrugaColor              string                     `json:"radruga_color,omitempty" db:"radruga_color"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// MissionIdWithSetId is one mission instance assigned to a user
type MissionIdWithSetId struct {
	MissionID    string `json:"mission_id"`
	MissionSetID string `json:"mission_set_id,omitempty"`
}

// MissionSetIdWithOrder keeps the display order of a user's mission sets
type MissionSetIdWithOrder struct {
	MissionSetID string `json:"mission_set_id"`
	Order        int    `json:"order"`
}

// GeoCoordinate is a WGS84 point
type GeoCoordinate struct {
	Latitude  float64 `json:"latitude" validate:"min=-90,max=90"`
	Longitude float64 `json:"longitude" validate:"min=-180,max=180"`
}

// PersonQualityIdWithScore links a person quality to a score delta or total
type PersonQualityIdWithScore struct {
	PersonQualityID string  `json:"person_quality_id" yaml:"person_quality_id" validate:"required"`
	Score           float64 `json:"score" yaml:"score"`
}

// Age returns the full years lived at the given moment, or nil when the
// birth date is unknown.
func (u *User) Age(now time.Time) *int {
	if u.DateOfBirth == nil {
		return nil
	}
	dob := *u.DateOfBirth
	age := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		age--
	}
	return &age
}

// PointsOrZero reads Points treating "not rated yet" as zero.
func (u *User) PointsOrZero() int {
	if u.Points == nil {
		return 0
	}
	return *u.Points
}

func indexOfMission(list []MissionIdWithSetId, missionID string) int {
	return slices.IndexFunc(list, func(m MissionIdWithSetId) bool { return m.MissionID == missionID })
}

// ActiveMission returns the active entry for missionID.
func (u *User) ActiveMission(missionID string) (MissionIdWithSetId, bool) {
	i := indexOfMission(u.ActiveMissionIds, missionID)
	if i < 0 {
		return MissionIdWithSetId{}, false
	}
	return u.ActiveMissionIds[i], true
}

func (u *User) IsMissionActive(missionID string) bool {
	return indexOfMission(u.ActiveMissionIds, missionID) >= 0
}

func (u *User) IsMissionCompleted(missionID string) bool {
	return indexOfMission(u.CompletedMissionIds, missionID) >= 0
}

func (u *User) IsMissionFailed(missionID string) bool {
	return indexOfMission(u.FailedMissionIds, missionID) >= 0
}

// IsMissionAssigned reports whether the mission is in any of the three
// progress lists.
func (u *User) IsMissionAssigned(missionID string) bool {
	return u.IsMissionActive(missionID) || u.IsMissionCompleted(missionID) || u.IsMissionFailed(missionID)
}

// MoveMissionToCompleted removes the mission from Active and Failed and
// appends it to Completed.
func (u *User) MoveMissionToCompleted(entry MissionIdWithSetId) {
	u.removeMissionEverywhere(entry.MissionID)
	u.CompletedMissionIds = append(u.CompletedMissionIds, entry)
}

// MoveMissionToFailed removes the mission from Active and Completed and
// appends it to Failed.
func (u *User) MoveMissionToFailed(entry MissionIdWithSetId) {
	u.removeMissionEverywhere(entry.MissionID)
	u.FailedMissionIds = append(u.FailedMissionIds, entry)
}

func (u *User) removeMissionEverywhere(missionID string) {
	match := func(m MissionIdWithSetId) bool { return m.MissionID == missionID }
	u.ActiveMissionIds = slices.DeleteFunc(u.ActiveMissionIds, match)
	u.CompletedMissionIds = slices.DeleteFunc(u.CompletedMissionIds, match)
	u.FailedMissionIds = slices.DeleteFunc(u.FailedMissionIds, match)
}

// HasMissionSet reports whether the set was ever attached to the user.
func (u *User) HasMissionSet(setID string) bool {
	return slices.ContainsFunc(u.MissionSetIds, func(s MissionSetIdWithOrder) bool { return s.MissionSetID == setID })
}

// AttachMissionSet appends the set to MissionSetIds and ActiveMissionSetIds
// keeping display order, and activates its missions that the user has not
// seen yet.
func (u *User) AttachMissionSet(set *MissionSet) {
	if u.HasMissionSet(set.ID) {
		return
	}
	order := 1
	for _, s := range u.MissionSetIds {
		if s.Order >= order {
			order = s.Order + 1
		}
	}
	u.MissionSetIds = append(u.MissionSetIds, MissionSetIdWithOrder{MissionSetID: set.ID, Order: order})
	u.ActiveMissionSetIds = append(u.ActiveMissionSetIds, set.ID)
	for _, m := range set.SortedMissions() {
		if u.IsMissionAssigned(m.MissionID) {
			continue
		}
		u.ActiveMissionIds = append(u.ActiveMissionIds, MissionIdWithSetId{MissionID: m.MissionID, MissionSetID: set.ID})
	}
}

// DeactivateFinishedSet drops setID from ActiveMissionSetIds once no active
// mission of that set remains. It reports whether the set was dropped.
func (u *User) DeactivateFinishedSet(setID string) bool {
	if setID == "" {
		return false
	}
	for _, m := range u.ActiveMissionIds {
		if m.MissionSetID == setID {
			return false
		}
	}
	before := len(u.ActiveMissionSetIds)
	u.ActiveMissionSetIds = slices.DeleteFunc(u.ActiveMissionSetIds, func(id string) bool { return id == setID })
	return len(u.ActiveMissionSetIds) != before
}

// HasBoughtHint reports whether the hint of the mission was already bought.
func (u *User) HasBoughtHint(missionID, hintID string) bool {
	return slices.Contains(u.BoughtHintIds, BoughtHintKey(missionID, hintID))
}

// BoughtHintKey is the composite id stored in User.BoughtHintIds
func BoughtHintKey(missionID, hintID string) string {
	return missionID + ":" + hintID
}

// RegisterRequest is the payload accepted on registration
type RegisterRequest struct {
	ID             string         `json:"id" validate:"required"`
	NickName       string         `json:"nick_name" validate:"required,min=2,max=50"`
	AvatarURL      string         `json:"avatar_url" validate:"omitempty,url"`
	DateOfBirth    *time.Time     `json:"date_of_birth"`
	Settlement     string         `json:"settlement" validate:"max=100"`
	HomeCoordinate *GeoCoordinate `json:"home_coordinate"`
}

// UpdateProfileRequest changes the public profile fields
type UpdateProfileRequest struct {
	NickName  *string `json:"nick_name" validate:"omitempty,min=2,max=50"`
	AvatarURL *string `json:"avatar_url" validate:"omitempty,url"`
}

// RatingProjection is the subset of a user needed by the rating cache
type RatingProjection struct {
	UserID          string `json:"user_id" db:"id"`
	Points          int    `json:"points" db:"points"`
	NickName        string `json:"nick_name" db:"nick_name"`
	AvatarURL       string `json:"avatar_url" db:"avatar_url"`
	LastRatingPlace *int   `json:"last_rating_place" db:"last_rating_place"`
}

// RatingPlaceUpdate is written by the daily rating snapshot
type RatingPlaceUpdate struct {
	UserID                string
	Place                 int
	UpInRatingCurrentDays int
	UpInRatingMaxDays     int
}
