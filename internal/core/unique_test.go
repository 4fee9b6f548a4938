package core

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"radruga/pkg/models"
)

type fixedRanks struct {
	ranks []models.UserRank
	err   error
}

func (f fixedRanks) GetUserRanks(ctx context.Context, userIDs []string) ([]models.UserRank, error) {
	return f.ranks, f.err
}

func TestUniqueMissionOf(t *testing.T) {
	assert.Equal(t, UniqueCensored, UniqueMissionOf("censored"))
	assert.Equal(t, UniqueShowYourRating, UniqueMissionOf("show_your_rating"))
	assert.Equal(t, UniqueKindDeed, UniqueMissionOf("kind_deed"))
	assert.Equal(t, UniqueNone, UniqueMissionOf("paris_quiz"))

	for id, kind := range uniqueMissions {
		assert.Equal(t, id, kind.String())
	}
}

func TestUniqueMissionProcessor(t *testing.T) {
	user := &models.User{ID: "u1"}
	tests := []struct {
		name  string
		kind  UniqueMission
		ranks rankReader
		proof models.Proof
		want  UniqueOutcome
	}{
		{
			name: "censored always declines",
			kind: UniqueCensored,
			want: UniqueOutcome{Declined: true, DeclineReason: models.DeclineCensored, Description: MsgCensored},
		},
		{
			name:  "top ten earns three stars",
			kind:  UniqueShowYourRating,
			ranks: fixedRanks{ranks: []models.UserRank{{UserID: "u1", Place: 10}}},
			want:  UniqueOutcome{Stars: 3},
		},
		{
			name:  "top hundred earns two stars",
			kind:  UniqueShowYourRating,
			ranks: fixedRanks{ranks: []models.UserRank{{UserID: "u1", Place: 11}}},
			want:  UniqueOutcome{Stars: 2},
		},
		{
			name:  "unrated user earns one star",
			kind:  UniqueShowYourRating,
			ranks: fixedRanks{},
			want:  UniqueOutcome{Stars: 1},
		},
		{
			name:  "kind deed needs a description",
			kind:  UniqueKindDeed,
			proof: models.Proof{CreatedText: "   "},
			want:  UniqueOutcome{Invalid: true, Description: MsgKindDeedEmpty},
		},
		{
			name:  "kind deed",
			kind:  UniqueKindDeed,
			proof: models.Proof{CreatedText: "helped a neighbour"},
			want:  UniqueOutcome{Stars: 3, KindAction: true},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewUniqueMissionProcessor(tt.ranks).Process(context.Background(), tt.kind, user, tt.proof)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUniqueMissionProcessor_Errors(t *testing.T) {
	p := NewUniqueMissionProcessor(fixedRanks{err: errors.New("cache down")})
	_, err := p.Process(context.Background(), UniqueShowYourRating, &models.User{ID: "u1"}, models.Proof{})
	assert.Error(t, err)

	_, err = p.Process(context.Background(), UniqueNone, &models.User{ID: "u1"}, models.Proof{})
	assert.Error(t, err)
}
