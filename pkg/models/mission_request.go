package models

import "time"

// RequestStatus is the review state of a mission request
type RequestStatus string

const (
	RequestNotChecked   RequestStatus = "not_checked"
	RequestApproved     RequestStatus = "approved"
	RequestDeclined     RequestStatus = "declined"
	RequestAutoApproval RequestStatus = "auto_approval"
)

// IsSuccessful reports whether the request counts as a passed mission.
func (s RequestStatus) IsSuccessful() bool {
	return s == RequestApproved || s == RequestAutoApproval
}

// Decline reasons stored on intermediate and final failed requests
const (
	DeclineIncorrect = "Incorrect"
	DeclineStillHome = "StillHome"
	DeclineIsNear    = "IsNear"
	DeclineTimeout   = "Timeout"
	DeclineCensored  = "Censored"
	DeclineTriesOver = "TriesOver"
)

// Proof is what a user submits to complete a mission
type Proof struct {
	ImageURLs     []string        `json:"image_urls,omitempty"`
	VideoURL      string          `json:"video_url,omitempty"`
	CreatedText   string          `json:"created_text,omitempty"`
	Coordinates   []GeoCoordinate `json:"coordinates,omitempty" validate:"dive"`
	TimeElapsed   *int            `json:"time_elapsed,omitempty" validate:"omitempty,min=0"`
	NumberOfTries int             `json:"number_of_tries,omitempty"`
	Answers       []string        `json:"answers,omitempty"`
}

// MissionRequest is one user's attempt at one mission
type MissionRequest struct {
	ID            string        `json:"id" db:"id"`
	UserID        string        `json:"user_id" db:"user_id"`
	MissionID     string        `json:"mission_id" db:"mission_id"`
	MissionSetID  string        `json:"mission_set_id,omitempty" db:"mission_set_id"`
	Status        RequestStatus `json:"status" db:"status"`
	StarsCount    *int          `json:"stars_count,omitempty" db:"stars_count"`
	Proof         Proof         `json:"proof" db:"proof"`
	DeclineReason string        `json:"decline_reason,omitempty" db:"decline_reason"`
	CreatedAt     time.Time     `json:"created_at" db:"created_at"`
	ResolvedAt    *time.Time    `json:"resolved_at,omitempty" db:"resolved_at"`
}

// Stars reads StarsCount treating nil as zero.
func (r *MissionRequest) Stars() int {
	if r.StarsCount == nil {
		return 0
	}
	return *r.StarsCount
}

// MissionRequestFilter narrows GetMissionRequests. Empty fields match all.
type MissionRequestFilter struct {
	UserID    string
	MissionID string
	Status    RequestStatus
	Limit     int
	Offset    int
}

// ApproveRequestBody is the moderator verdict for an approved proof
type ApproveRequestBody struct {
	Stars int `json:"stars"`
}

// DeclineRequestBody is the moderator verdict for a declined proof
type DeclineRequestBody struct {
	Reason string `json:"reason" validate:"max=500"`
}
