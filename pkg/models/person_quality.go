package models

import "time"

// PersonQuality is one personality trait axis scored by quiz answers
type PersonQuality struct {
	ID          string `json:"id" db:"id" yaml:"id" validate:"required,max=64"`
	Name        string `json:"name" db:"name" yaml:"name" validate:"required"`
	Description string `json:"description,omitempty" db:"description" yaml:"description"`
}

// QuizAnswerRequest is one answered quiz question
type QuizAnswerRequest struct {
	Qualities []PersonQualityIdWithScore `json:"qualities" validate:"required,min=1,dive"`
}

// QuizCompleteRequest carries all answers of a finished quiz
type QuizCompleteRequest struct {
	Answers []QuizAnswerRequest `json:"answers" validate:"dive"`
}

// HintRequest logs a bought hint
type HintRequest struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	MissionID string    `json:"mission_id" db:"mission_id"`
	HintID    string    `json:"hint_id" db:"hint_id"`
	Price     int       `json:"price" db:"price"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// KindAction is a good deed reported by a user
type KindAction struct {
	ID          string    `json:"id" db:"id"`
	UserID      string    `json:"user_id" db:"user_id"`
	Description string    `json:"description" db:"description" validate:"required,min=3,max=1000"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// AppCounter names a global product counter
type AppCounter string

const (
	CounterRegisteredUsers       AppCounter = "registered_users"
	CounterOneMissionPassedUsers AppCounter = "one_mission_passed_users"
	CounterFinishedUsers         AppCounter = "finished_users"
	CounterHintsBought           AppCounter = "hints_bought"
	CounterKindActions           AppCounter = "kind_actions"
	CounterMissionsApproved      AppCounter = "missions_approved"
	CounterMissionsDeclined      AppCounter = "missions_declined"
)

// KindActionRequest reports a good deed
type KindActionRequest struct {
	Description string `json:"description" validate:"max=1000"`
}
