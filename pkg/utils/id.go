package utils

import (
	"github.com/google/uuid"
)

// GenerateID returns a prefixed random id (e.g. "req-0b0f...").
func GenerateID(prefix string) string {
	if prefix == "" {
		return uuid.NewString()
	}
	return prefix + "-" + uuid.NewString()
}

// GenerateRequestID creates a mission request id
func GenerateRequestID() string {
	return GenerateID("req")
}

// GeneratePlaceID creates a common place id
func GeneratePlaceID() string {
	return GenerateID("place")
}

// GenerateHintRequestID creates a hint request id
func GenerateHintRequestID() string {
	return GenerateID("hint")
}

// GenerateKindActionID creates a kind action id
func GenerateKindActionID() string {
	return GenerateID("kind")
}
