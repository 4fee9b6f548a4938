package core

import (
	"context"
	"fmt"
	"strings"

	"radruga/pkg/models"
)

// UniqueMission is one of the hard-coded missions that bypass the generic
// execution-type pipeline.
type UniqueMission int

const (
	UniqueNone UniqueMission = iota
	UniqueCensored
	UniqueShowYourRating
	UniqueKindDeed
)

func (u UniqueMission) String() string {
	switch u {
	case UniqueCensored:
		return "censored"
	case UniqueShowYourRating:
		return "show_your_rating"
	case UniqueKindDeed:
		return "kind_deed"
	}
	return "none"
}

// uniqueMissions maps catalog mission ids to their handler
var uniqueMissions = map[string]UniqueMission{
	"censored":         UniqueCensored,
	"show_your_rating": UniqueShowYourRating,
	"kind_deed":        UniqueKindDeed,
}

// UniqueMissionOf returns the handler of the mission, or UniqueNone
func UniqueMissionOf(missionID string) UniqueMission {
	return uniqueMissions[missionID]
}

// UniqueOutcome tells the orchestrator how to resolve a unique mission
type UniqueOutcome struct {
	Declined      bool
	DeclineReason string
	Stars         int
	KindAction    bool
	// Invalid is set when the proof cannot be judged; nothing is persisted
	Invalid     bool
	Description string
}

type rankReader interface {
	GetUserRanks(ctx context.Context, userIDs []string) ([]models.UserRank, error)
}

// UniqueMissionProcessor judges unique missions
type UniqueMissionProcessor struct {
	ranks rankReader
}

// NewUniqueMissionProcessor creates a processor reading places from ranks
func NewUniqueMissionProcessor(ranks rankReader) *UniqueMissionProcessor {
	return &UniqueMissionProcessor{ranks: ranks}
}

// Process dispatches to the handler of kind. UniqueNone is a caller bug.
func (p *UniqueMissionProcessor) Process(ctx context.Context, kind UniqueMission, user *models.User, proof models.Proof) (UniqueOutcome, error) {
	switch kind {
	case UniqueCensored:
		return UniqueOutcome{
			Declined:      true,
			DeclineReason: models.DeclineCensored,
			Description:   MsgCensored,
		}, nil
	case UniqueShowYourRating:
		return p.showYourRating(ctx, user)
	case UniqueKindDeed:
		if strings.TrimSpace(proof.CreatedText) == "" {
			return UniqueOutcome{Invalid: true, Description: MsgKindDeedEmpty}, nil
		}
		return UniqueOutcome{Stars: 3, KindAction: true}, nil
	}
	return UniqueOutcome{}, fmt.Errorf("no handler for unique mission %s", kind)
}

// showYourRating pays by current place: top 10 earn three stars, top 100 two,
// everyone else one.
func (p *UniqueMissionProcessor) showYourRating(ctx context.Context, user *models.User) (UniqueOutcome, error) {
	ranks, err := p.ranks.GetUserRanks(ctx, []string{user.ID})
	if err != nil {
		return UniqueOutcome{}, fmt.Errorf("read rank of %s: %w", user.ID, err)
	}
	stars := 1
	if len(ranks) == 1 {
		switch place := ranks[0].Place; {
		case place <= 10:
			stars = 3
		case place <= 100:
			stars = 2
		}
	}
	return UniqueOutcome{Stars: stars}, nil
}
