// Package catalog reads and writes the mission catalog as a YAML seed file:
// person qualities, place aliases, missions and mission sets.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"radruga/internal/core"
	"radruga/pkg/logger"
	"radruga/pkg/models"
)

// Catalog is the content of one seed file
type Catalog struct {
	PersonQualities []models.PersonQuality    `yaml:"person_qualities"`
	Aliases         []models.CommonPlaceAlias `yaml:"aliases"`
	Missions        []models.Mission          `yaml:"missions"`
	MissionSets     []models.MissionSet       `yaml:"mission_sets"`
}

// Load decodes a catalog. Unknown keys are rejected.
func Load(r io.Reader) (*Catalog, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var c Catalog
	if err := dec.Decode(&c); err != nil {
		if errors.Is(err, io.EOF) {
			return &c, nil
		}
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// LoadFile reads a catalog from disk
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Write encodes the catalog as YAML
func (c *Catalog) Write(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}
	return enc.Close()
}

// Validate checks ids are present and unique, missions are well formed and
// no mission is listed in two sets.
func (c *Catalog) Validate() error {
	var errs []error
	dup := func(kind string) func(id string) {
		seen := map[string]bool{}
		return func(id string) {
			switch {
			case id == "":
				errs = append(errs, fmt.Errorf("%s without id", kind))
			case seen[id]:
				errs = append(errs, fmt.Errorf("duplicate %s %q", kind, id))
			}
			seen[id] = true
		}
	}

	checkQuality := dup("person quality")
	for _, q := range c.PersonQualities {
		checkQuality(q.ID)
	}
	checkAlias := dup("alias")
	for _, a := range c.Aliases {
		checkAlias(a.ID)
	}
	checkMission := dup("mission")
	for i := range c.Missions {
		checkMission(c.Missions[i].ID)
		if c.Missions[i].ID == "" {
			continue
		}
		if err := c.Missions[i].Validate(); err != nil {
			errs = append(errs, fmt.Errorf("mission %q: %w", c.Missions[i].ID, err))
		}
	}
	checkSet := dup("mission set")
	owner := map[string]string{}
	for _, s := range c.MissionSets {
		checkSet(s.ID)
		for _, m := range s.Missions {
			if prev, ok := owner[m.MissionID]; ok && prev != s.ID {
				errs = append(errs, fmt.Errorf("mission %q is listed in sets %q and %q", m.MissionID, prev, s.ID))
			}
			owner[m.MissionID] = s.ID
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", models.ErrInvalidInput, errors.Join(errs...))
	}
	return nil
}

// Report summarizes an import
type Report struct {
	Qualities int      `json:"qualities"`
	Aliases   int      `json:"aliases"`
	Added     int      `json:"added"`
	Updated   int      `json:"updated"`
	Failures  []string `json:"failures,omitempty"`
}

func (r *Report) fail(kind, id, description string) {
	r.Failures = append(r.Failures, fmt.Sprintf("%s %s: %s", kind, id, description))
}

// Importer writes a catalog through the services so set aggregates and
// back-references are maintained the same way the admin API does it
type Importer struct {
	missions core.MissionService
	quiz     core.QuizService
	places   core.CommonPlaceService
}

// NewImporter creates an importer over the catalog services
func NewImporter(missions core.MissionService, quiz core.QuizService, places core.CommonPlaceService) *Importer {
	return &Importer{missions: missions, quiz: quiz, places: places}
}

// Import upserts every entity of the catalog. Rejected missions and sets are
// listed in the report; the error is reserved for storage failures.
func (im *Importer) Import(ctx context.Context, c *Catalog) (*Report, error) {
	report := &Report{}

	for i := range c.PersonQualities {
		q := c.PersonQualities[i]
		if err := im.quiz.AddPersonQuality(ctx, &q); err != nil {
			return report, fmt.Errorf("person quality %s: %w", q.ID, err)
		}
		report.Qualities++
	}
	for i := range c.Aliases {
		a := c.Aliases[i]
		if err := im.places.AddAlias(ctx, &a); err != nil {
			return report, fmt.Errorf("alias %s: %w", a.ID, err)
		}
		report.Aliases++
	}

	// Membership is owned by the sets, which are written after every mission
	// exists.
	for i := range c.Missions {
		m := c.Missions[i]
		m.MissionSetID = ""
		if err := im.upsertMission(ctx, &m, report); err != nil {
			return report, err
		}
	}
	for i := range c.MissionSets {
		s := c.MissionSets[i]
		if err := im.upsertMissionSet(ctx, &s, report); err != nil {
			return report, err
		}
	}

	logger.WithFields(map[string]interface{}{
		"qualities": report.Qualities,
		"aliases":   report.Aliases,
		"added":     report.Added,
		"updated":   report.Updated,
		"failures":  len(report.Failures),
	}).Info("catalog imported")
	return report, nil
}

func (im *Importer) upsertMission(ctx context.Context, m *models.Mission, report *Report) error {
	_, err := im.missions.GetMission(ctx, m.ID)
	switch {
	case err == nil:
		res, err := im.missions.UpdateMission(ctx, m)
		if err != nil {
			return fmt.Errorf("update mission %s: %w", m.ID, err)
		}
		if !res.IsSuccess() {
			report.fail("mission", m.ID, res.Description)
			return nil
		}
		report.Updated++
	case models.IsNotFound(err):
		res, err := im.missions.AddMission(ctx, m)
		if err != nil {
			return fmt.Errorf("add mission %s: %w", m.ID, err)
		}
		if !res.IsSuccess() {
			report.fail("mission", m.ID, res.Description)
			return nil
		}
		report.Added++
	default:
		return fmt.Errorf("load mission %s: %w", m.ID, err)
	}
	return nil
}

func (im *Importer) upsertMissionSet(ctx context.Context, s *models.MissionSet, report *Report) error {
	_, err := im.missions.GetMissionSet(ctx, s.ID)
	switch {
	case err == nil:
		res, err := im.missions.UpdateMissionSet(ctx, s)
		if err != nil {
			return fmt.Errorf("update mission set %s: %w", s.ID, err)
		}
		if !res.IsSuccess() {
			report.fail("mission set", s.ID, res.Description)
			return nil
		}
		report.Updated++
	case models.IsNotFound(err):
		res, err := im.missions.AddMissionSet(ctx, s)
		if err != nil {
			return fmt.Errorf("add mission set %s: %w", s.ID, err)
		}
		if !res.IsSuccess() {
			report.fail("mission set", s.ID, res.Description)
			return nil
		}
		report.Added++
	default:
		return fmt.Errorf("load mission set %s: %w", s.ID, err)
	}
	return nil
}

// Export reads the whole catalog back
func (im *Importer) Export(ctx context.Context) (*Catalog, error) {
	qualities, err := im.quiz.GetPersonQualities(ctx)
	if err != nil {
		return nil, fmt.Errorf("load person qualities: %w", err)
	}
	aliases, err := im.places.GetAliases(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aliases: %w", err)
	}
	missions, err := im.missions.GetMissions(ctx)
	if err != nil {
		return nil, fmt.Errorf("load missions: %w", err)
	}
	sets, err := im.missions.GetMissionSets(ctx)
	if err != nil {
		return nil, fmt.Errorf("load mission sets: %w", err)
	}

	c := &Catalog{}
	for _, q := range qualities {
		c.PersonQualities = append(c.PersonQualities, *q)
	}
	for _, a := range aliases {
		c.Aliases = append(c.Aliases, *a)
	}
	for _, m := range missions {
		c.Missions = append(c.Missions, *m)
	}
	for _, s := range sets {
		c.MissionSets = append(c.MissionSets, *s)
	}
	return c, nil
}
