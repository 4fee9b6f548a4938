package models

import "time"

// APIResponse is the envelope of every HTTP answer
type APIResponse struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// OperationStatus is the outcome class of a service operation
type OperationStatus string

const (
	StatusSuccess  OperationStatus = "success"
	StatusWarning  OperationStatus = "warning"
	StatusError    OperationStatus = "error"
	StatusNotFound OperationStatus = "not_found"
)

// OperationResult is returned by every user-facing service operation
type OperationResult struct {
	Status      OperationStatus `json:"status"`
	Description string          `json:"description,omitempty"`
}

func SuccessResult() OperationResult {
	return OperationResult{Status: StatusSuccess}
}

func ErrorResult(description string) OperationResult {
	return OperationResult{Status: StatusError, Description: description}
}

func NotFoundResult(description string) OperationResult {
	return OperationResult{Status: StatusNotFound, Description: description}
}

// IsSuccess reports a Success status.
func (r OperationResult) IsSuccess() bool {
	return r.Status == StatusSuccess
}

// IdResult is an OperationResult carrying the id of a created entity
type IdResult struct {
	OperationResult
	ID string `json:"id,omitempty"`
}

// MissionCompletionStatus is the state a completion attempt ends in
type MissionCompletionStatus string

const (
	CompletionSuccess          MissionCompletionStatus = "success"
	CompletionFail             MissionCompletionStatus = "fail"
	CompletionIntermediateFail MissionCompletionStatus = "intermediate_fail"
	CompletionWaiting          MissionCompletionStatus = "waiting"
)

// AnswerStatus is the verdict on a single submitted answer
type AnswerStatus string

const (
	AnswerValid   AnswerStatus = "valid"
	AnswerInvalid AnswerStatus = "invalid"
)

// MissionCompletionResult is the outcome of CompleteMission. AnswerStatuses is
// only filled for right-answer missions.
type MissionCompletionResult struct {
	OperationResult
	MissionCompletionStatus MissionCompletionStatus `json:"mission_completion_status,omitempty"`
	Points                  *int                    `json:"points,omitempty"`
	StarsCount              *int                    `json:"stars_count,omitempty"`
	TryCount                *int                    `json:"try_count,omitempty"`
	AnswerStatuses          []AnswerStatus          `json:"answer_statuses,omitempty"`
}

// CompletionError wraps an error description into a completion result.
func CompletionError(description string) *MissionCompletionResult {
	return &MissionCompletionResult{OperationResult: ErrorResult(description)}
}

// CompletionNotFound reports a missing user or mission.
func CompletionNotFound(description string) *MissionCompletionResult {
	return &MissionCompletionResult{OperationResult: NotFoundResult(description)}
}

// HintRequestStatus is the outcome of buying a hint
type HintRequestStatus string

const (
	HintSuccess        HintRequestStatus = "success"
	HintAlreadyTaken   HintRequestStatus = "already_taken"
	HintNotEnoughCoins HintRequestStatus = "not_enough_coins"
	HintNotAvailable   HintRequestStatus = "not_available"
)

// HintRequestResult carries the revealed hint. Coordinate is set for
// coordinate hints.
type HintRequestResult struct {
	OperationResult
	HintRequestStatus HintRequestStatus `json:"hint_request_status,omitempty"`
	HintText          string            `json:"hint_text,omitempty"`
	Coordinate        *GeoCoordinate    `json:"coordinate,omitempty"`
}

// ColorResult is returned after quiz completion
type ColorResult struct {
	OperationResult
	RadrugaColor string `json:"radruga_color,omitempty"`
}
