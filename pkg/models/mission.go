package models

import (
	"fmt"
	"sort"
)

// ExecutionType is the way a mission proof is verified
type ExecutionType string

const (
	ExecutionRightAnswer   ExecutionType = "right_answer"
	ExecutionPhotoCreation ExecutionType = "photo_creation"
	ExecutionTextCreation  ExecutionType = "text_creation"
	ExecutionVideo         ExecutionType = "video"
	ExecutionPath          ExecutionType = "path"
	ExecutionCommonPlace   ExecutionType = "common_place"
	ExecutionUnique        ExecutionType = "unique"
)

// IsManualReview reports whether proofs of this type wait for a moderator.
func (t ExecutionType) IsManualReview() bool {
	switch t {
	case ExecutionPhotoCreation, ExecutionTextCreation, ExecutionVideo:
		return true
	}
	return false
}

// HintType defines what a bought hint reveals
type HintType string

const (
	HintTypeText       HintType = "text"
	HintTypeCoordinate HintType = "coordinate"
)

// Hint is a purchasable clue attached to a mission. Score is its price in coins.
type Hint struct {
	ID    string   `json:"id" yaml:"id"`
	Text  string   `json:"text" yaml:"text"`
	Type  HintType `json:"type" yaml:"type"`
	Score int      `json:"score" yaml:"score"`
}

// Mission is a single completable task from the catalog
type Mission struct {
	ID            string        `json:"id" db:"id" yaml:"id"`
	Name          string        `json:"name" db:"name" yaml:"name"`
	Description   string        `json:"description,omitempty" db:"description" yaml:"description"`
	ExecutionType ExecutionType `json:"execution_type" db:"execution_type" yaml:"execution_type"`
	Difficulty    int           `json:"difficulty" db:"difficulty" yaml:"difficulty"`

	TriesFor1Star    int `json:"tries_for_1_star" db:"tries_for_1_star" yaml:"tries_for_1_star"`
	TriesFor2Stars   int `json:"tries_for_2_stars" db:"tries_for_2_stars" yaml:"tries_for_2_stars"`
	TriesFor3Stars   int `json:"tries_for_3_stars" db:"tries_for_3_stars" yaml:"tries_for_3_stars"`
	SecondsFor1Star  int `json:"seconds_for_1_star" db:"seconds_for_1_star" yaml:"seconds_for_1_star"`
	SecondsFor2Stars int `json:"seconds_for_2_stars" db:"seconds_for_2_stars" yaml:"seconds_for_2_stars"`
	SecondsFor3Stars int `json:"seconds_for_3_stars" db:"seconds_for_3_stars" yaml:"seconds_for_3_stars"`

	CorrectAnswers string `json:"correct_answers,omitempty" db:"correct_answers" yaml:"correct_answers"`
	ExactAnswer    bool   `json:"exact_answer" db:"exact_answer" yaml:"exact_answer"`
	AnswersCount   int    `json:"answers_count" db:"answers_count" yaml:"answers_count"`

	CommonPlaceAlias string `json:"common_place_alias,omitempty" db:"common_place_alias" yaml:"common_place_alias"`
	AccuracyRadius   int    `json:"accuracy_radius,omitempty" db:"accuracy_radius" yaml:"accuracy_radius"`

	AgeFrom         *int                       `json:"age_from,omitempty" db:"age_from" yaml:"age_from"`
	AgeTo           *int                       `json:"age_to,omitempty" db:"age_to" yaml:"age_to"`
	DependsOn       []string                   `json:"depends_on,omitempty" db:"depends_on" yaml:"depends_on"`
	MissionSetID    string                     `json:"mission_set_id,omitempty" db:"mission_set_id" yaml:"-"`
	Hints           []Hint                     `json:"hints,omitempty" db:"hints" yaml:"hints"`
	PersonQualities []PersonQualityIdWithScore `json:"person_qualities,omitempty" db:"person_qualities" yaml:"person_qualities"`
}

// FindHint returns the hint with the given id.
func (m *Mission) FindHint(hintID string) (Hint, bool) {
	for _, h := range m.Hints {
		if h.ID == hintID {
			return h, true
		}
	}
	return Hint{}, false
}

// MaxTries is the number of attempts after which a failing try-based mission
// is declined. Zero means unlimited.
func (m *Mission) MaxTries() int {
	return m.TriesFor1Star
}

// StarsForTries applies the try thresholds. A tries value beyond
// TriesFor1Star yields zero stars.
func (m *Mission) StarsForTries(tries int) int {
	switch {
	case m.TriesFor3Stars > 0 && tries <= m.TriesFor3Stars:
		return 3
	case m.TriesFor2Stars > 0 && tries <= m.TriesFor2Stars:
		return 2
	case m.TriesFor1Star <= 0 || tries <= m.TriesFor1Star:
		return 1
	}
	return 0
}

// StarsForSeconds applies the elapsed-time thresholds of a path mission.
func (m *Mission) StarsForSeconds(seconds int) int {
	switch {
	case seconds <= m.SecondsFor3Stars:
		return 3
	case seconds <= m.SecondsFor2Stars:
		return 2
	case seconds <= m.SecondsFor1Star:
		return 1
	}
	return 0
}

// Validate checks catalog data that would otherwise surface as a defect
// during a completion flow.
func (m *Mission) Validate() error {
	if m.ID == "" {
		return fmt.Errorf("%w: mission id is required", ErrInvalidInput)
	}
	switch m.ExecutionType {
	case ExecutionRightAnswer, ExecutionPhotoCreation, ExecutionTextCreation,
		ExecutionVideo, ExecutionPath, ExecutionCommonPlace, ExecutionUnique:
	default:
		return fmt.Errorf("%w: unknown execution type %q", ErrInvalidInput, m.ExecutionType)
	}
	if m.TriesFor3Stars > 0 && m.TriesFor2Stars > 0 && m.TriesFor3Stars > m.TriesFor2Stars {
		return fmt.Errorf("%w: tries for 3 stars exceed tries for 2 stars", ErrInvalidInput)
	}
	if m.TriesFor2Stars > 0 && m.TriesFor1Star > 0 && m.TriesFor2Stars > m.TriesFor1Star {
		return fmt.Errorf("%w: tries for 2 stars exceed tries for 1 star", ErrInvalidInput)
	}
	if m.ExecutionType == ExecutionPath &&
		!(m.SecondsFor3Stars <= m.SecondsFor2Stars && m.SecondsFor2Stars <= m.SecondsFor1Star) {
		return fmt.Errorf("%w: time thresholds must grow from 3 to 1 star", ErrInvalidInput)
	}
	for _, h := range m.Hints {
		if h.Type != HintTypeText && h.Type != HintTypeCoordinate {
			return fmt.Errorf("%w: unknown hint type %q", ErrInvalidInput, h.Type)
		}
	}
	return nil
}

// DisplayStatus is the user-facing state of a mission. It is computed from the
// user's progress lists and never stored.
type DisplayStatus string

const (
	DisplayAvailable    DisplayStatus = "available"
	DisplayNotAvailable DisplayStatus = "not_available"
	DisplayWaiting      DisplayStatus = "waiting"
	DisplaySuccess      DisplayStatus = "success"
	DisplayFail         DisplayStatus = "fail"
)

// MissionWithStatus is a mission as shown to one user
type MissionWithStatus struct {
	Mission       *Mission      `json:"mission"`
	MissionSetID  string        `json:"mission_set_id"`
	DisplayStatus DisplayStatus `json:"display_status"`
}

// MissionWithOrder is a member of a mission set
type MissionWithOrder struct {
	MissionID string `json:"mission_id" yaml:"mission_id"`
	Order     int    `json:"order" yaml:"order"`
}

// MissionSet is an ordered bundle of missions unlocked together.
// AgeFrom, AgeTo and PersonQualities are aggregates of the members and must be
// refreshed whenever membership or member fields change.
type MissionSet struct {
	ID              string                     `json:"id" db:"id" yaml:"id"`
	Name            string                     `json:"name" db:"name" yaml:"name"`
	Missions        []MissionWithOrder         `json:"missions" db:"missions" yaml:"missions"`
	AgeFrom         *int                       `json:"age_from,omitempty" db:"age_from" yaml:"-"`
	AgeTo           *int                       `json:"age_to,omitempty" db:"age_to" yaml:"-"`
	PersonQualities []PersonQualityIdWithScore `json:"person_qualities,omitempty" db:"person_qualities" yaml:"-"`
}

// SortedMissions returns the members ordered by Order then id.
func (s *MissionSet) SortedMissions() []MissionWithOrder {
	out := make([]MissionWithOrder, len(s.Missions))
	copy(out, s.Missions)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].MissionID < out[j].MissionID
	})
	return out
}

// MissionIDs lists member ids in display order.
func (s *MissionSet) MissionIDs() []string {
	sorted := s.SortedMissions()
	ids := make([]string, len(sorted))
	for i, m := range sorted {
		ids[i] = m.MissionID
	}
	return ids
}

// Contains reports membership of missionID.
func (s *MissionSet) Contains(missionID string) bool {
	for _, m := range s.Missions {
		if m.MissionID == missionID {
			return true
		}
	}
	return false
}

// RefreshAggregates recomputes the age range and the summed trait profile
// from the given member missions. Missions not in the set are ignored.
func (s *MissionSet) RefreshAggregates(members []*Mission) {
	s.AgeFrom, s.AgeTo = nil, nil
	scores := make(map[string]float64)
	var order []string
	for _, m := range members {
		if m == nil || !s.Contains(m.ID) {
			continue
		}
		if m.AgeFrom != nil && (s.AgeFrom == nil || *m.AgeFrom < *s.AgeFrom) {
			v := *m.AgeFrom
			s.AgeFrom = &v
		}
		if m.AgeTo != nil && (s.AgeTo == nil || *m.AgeTo > *s.AgeTo) {
			v := *m.AgeTo
			s.AgeTo = &v
		}
		for _, q := range m.PersonQualities {
			if _, seen := scores[q.PersonQualityID]; !seen {
				order = append(order, q.PersonQualityID)
			}
			scores[q.PersonQualityID] += q.Score
		}
	}
	s.PersonQualities = make([]PersonQualityIdWithScore, 0, len(order))
	for _, id := range order {
		s.PersonQualities = append(s.PersonQualities, PersonQualityIdWithScore{PersonQualityID: id, Score: scores[id]})
	}
}

// FitsAge reports whether age lies within the set's aggregate range. An
// unknown age fits every set.
func (s *MissionSet) FitsAge(age *int) bool {
	if age == nil {
		return true
	}
	if s.AgeFrom != nil && *age < *s.AgeFrom {
		return false
	}
	if s.AgeTo != nil && *age > *s.AgeTo {
		return false
	}
	return true
}
