// Package notification publishes review outcomes and other user-facing events
// to the external delivery service.
package notification

import (
	"context"
	"time"

	"radruga/pkg/logger"
)

// EventType names what happened to the user
type EventType string

const (
	EventMissionApproved     EventType = "mission_approved"
	EventMissionDeclined     EventType = "mission_declined"
	EventMissionWaiting      EventType = "mission_waiting"
	EventCommonPlaceApproved EventType = "common_place_approved"
	EventLevelUp             EventType = "level_up"
)

// Event is the message body handed to the delivery service
type Event struct {
	Type      EventType `json:"type"`
	UserID    string    `json:"user_id"`
	MissionID string    `json:"mission_id,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
	Stars     int       `json:"stars,omitempty"`
	Points    int       `json:"points,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	Level     int       `json:"level,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Notifier delivers events. Callers treat failures as secondary and only log
// them.
type Notifier interface {
	Notify(ctx context.Context, event Event) error
}

// LogNotifier writes events to the log instead of a broker
type LogNotifier struct{}

func (LogNotifier) Notify(ctx context.Context, event Event) error {
	logger.WithRequestID(ctx).WithFields(map[string]interface{}{
		"type":       event.Type,
		"user_id":    event.UserID,
		"mission_id": event.MissionID,
		"stars":      event.Stars,
		"reason":     event.Reason,
	}).Info("notification")
	return nil
}
