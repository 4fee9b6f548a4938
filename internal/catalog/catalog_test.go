package catalog

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"radruga/internal/core"
	"radruga/internal/repository/memory"
	"radruga/pkg/config"
	"radruga/pkg/models"
)

const seed = `
person_qualities:
  - id: courage
    name: Courage
  - id: curiosity
    name: Curiosity
aliases:
  - id: fountain
    name: Central fountain
missions:
  - id: poem
    name: Write a poem
    execution_type: text_creation
    difficulty: 1
    age_from: 10
    age_to: 99
    person_qualities:
      - person_quality_id: curiosity
        score: 2
  - id: riddle
    name: Solve the riddle
    execution_type: right_answer
    difficulty: 2
    correct_answers: echo
    tries_for_3_stars: 1
    tries_for_2_stars: 2
    tries_for_1_star: 3
    depends_on: [poem]
    hints:
      - id: h1
        type: text
        text: listen
        score: 5
mission_sets:
  - id: starter
    name: Starter
    missions:
      - mission_id: poem
        order: 1
      - mission_id: riddle
        order: 2
`

func newImporter() (*Importer, *core.Services) {
	cfg := config.Default()
	cfg.JWT.Secret = "test"
	svc := core.NewServices(cfg, memory.NewRepositories(), nil, nil, nil)
	return NewImporter(svc.Missions, svc.Quiz, svc.Places), svc
}

func TestImport(t *testing.T) {
	ctx := context.Background()
	c, err := Load(strings.NewReader(seed))
	require.NoError(t, err)
	require.Len(t, c.Missions, 2)
	assert.Equal(t, []string{"poem"}, c.Missions[1].DependsOn)
	assert.Equal(t, models.HintTypeText, c.Missions[1].Hints[0].Type)

	im, svc := newImporter()
	report, err := im.Import(ctx, c)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Qualities)
	assert.Equal(t, 1, report.Aliases)
	assert.Equal(t, 3, report.Added)
	assert.Empty(t, report.Failures)

	riddle, err := svc.Missions.GetMission(ctx, "riddle")
	require.NoError(t, err)
	assert.Equal(t, "starter", riddle.MissionSetID)

	set, err := svc.Missions.GetMissionSet(ctx, "starter")
	require.NoError(t, err)
	require.NotNil(t, set.AgeFrom)
	assert.Equal(t, 10, *set.AgeFrom)
	assert.Equal(t, []models.PersonQualityIdWithScore{{PersonQualityID: "curiosity", Score: 2}}, set.PersonQualities)

	// a second run updates in place
	report, err = im.Import(ctx, c)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Added)
	assert.Equal(t, 3, report.Updated)
}

func TestImport_ReportsRejectedSets(t *testing.T) {
	ctx := context.Background()
	im, _ := newImporter()

	report, err := im.Import(ctx, &Catalog{
		MissionSets: []models.MissionSet{{ID: "ghosts", Missions: []models.MissionWithOrder{{MissionID: "nobody", Order: 1}}}},
	})
	require.NoError(t, err)
	require.Len(t, report.Failures, 1)
	assert.Contains(t, report.Failures[0], "ghosts")
}

func TestExportRoundTrip(t *testing.T) {
	ctx := context.Background()
	c, err := Load(strings.NewReader(seed))
	require.NoError(t, err)
	im, _ := newImporter()
	_, err = im.Import(ctx, c)
	require.NoError(t, err)

	exported, err := im.Export(ctx)
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, exported.Write(&buf))

	again, err := Load(&buf)
	require.NoError(t, err)
	assert.Len(t, again.PersonQualities, 2)
	assert.Len(t, again.Aliases, 1)
	assert.Len(t, again.Missions, 2)
	require.Len(t, again.MissionSets, 1)
	assert.Equal(t, []string{"poem", "riddle"}, again.MissionSets[0].MissionIDs())
}

func TestLoad_Rejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown key", "missions:\n  - id: a\n    execution_type: video\n    colour: red\n"},
		{"duplicate mission", "missions:\n  - id: a\n    execution_type: video\n  - id: a\n    execution_type: video\n"},
		{"bad execution type", "missions:\n  - id: a\n    execution_type: dance\n"},
		{"mission in two sets", "mission_sets:\n  - id: s1\n    missions: [{mission_id: a, order: 1}]\n  - id: s2\n    missions: [{mission_id: a, order: 1}]\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.yaml))
			require.Error(t, err)
		})
	}

	_, err := Load(strings.NewReader("missions:\n  - id: a\n    execution_type: dance\n"))
	assert.True(t, errors.Is(err, models.ErrInvalidInput))

	empty, err := Load(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, empty.Missions)
}
