package seed

import (
	"context"
	"fmt"
	"math/rand/v2"
	"testing"

	"property-ingest/internal/config"
	"property-ingest/internal/db"
	"property-ingest/internal/model"
	"property-ingest/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func smallCatalog() []model.CityCatalogEntry {
	return []model.CityCatalogEntry{
		{
			Name:         "Pune",
			Country:      "India",
			Micromarkets: []string{"Wakad", "Baner", "Kharadi"},
			Developers: []model.DeveloperProfile{
				{Name: "VTP Realty", Specialization: "Affordable housing", YearsInBusiness: 40},
				{Name: "Kolte Patil", Specialization: "Townships", YearsInBusiness: 33},
			},
		},
		{
			Name:         "Chennai",
			Country:      "India",
			Micromarkets: []string{"OMR"},
			Developers: []model.DeveloperProfile{
				{Name: "Casagrand", Specialization: "Apartments", YearsInBusiness: 21},
			},
		},
	}
}

func newTestCascade(t *testing.T, store db.Store, opts ...Option) *Cascade {
	t.Helper()
	cfg := config.Default()
	cfg.Seeding.RandomSeed = 42
	opts = append([]Option{WithCatalog(smallCatalog())}, opts...)
	c, err := NewCascade(cfg, store, opts...)
	require.NoError(t, err)
	return c
}

func TestCascade_SecondRunInsertsNothing(t *testing.T) {
	ctx := context.Background()
	store := db.NewMemoryStore()
	c := newTestCascade(t, store)

	first := c.Run(ctx)
	assert.Equal(t, 2, first.Inserted(PhaseCities))
	assert.Equal(t, 4, first.Inserted(PhaseMicromarkets))
	assert.Equal(t, 3, first.Inserted(PhaseDevelopers))
	// Pune: 2 micromarkets x 2 developers, Chennai: 1 x 1.
	assert.Equal(t, 5, first.Inserted(PhaseProjects))

	second := c.Run(ctx)
	assert.Zero(t, second.TotalInserted())
	require.Len(t, second.Phases, 4)
	for _, p := range second.Phases {
		assert.Zero(t, p.Failed, p.Phase)
		assert.NotZero(t, p.Skipped, p.Phase)
	}

	assert.Equal(t, 2, store.Count(model.TableCities))
	assert.Equal(t, 5, store.Count(model.TableProjects))
}

func TestCascade_ProjectsStayInsideOneCity(t *testing.T) {
	ctx := context.Background()
	store := db.NewMemoryStore()
	newTestCascade(t, store).Run(ctx)

	projects, err := store.FindMany(ctx, model.TableProjects, nil, nil)
	require.NoError(t, err)
	require.NotEmpty(t, projects)

	for _, p := range projects {
		mm, err := store.FindOne(ctx, model.TableMicromarkets, model.Filter{"id": p.String("micromarket_id")})
		require.NoError(t, err)
		dev, err := store.FindOne(ctx, model.TableDevelopers, model.Filter{"id": p.String("developer_id")})
		require.NoError(t, err)

		assert.Equal(t, p.String("city_id"), mm.String("city_id"))
		assert.Equal(t, p.String("city_id"), dev.String("primary_market_city_id"))
		assert.Less(t, p.Int("min_price"), p.Int("max_price"))
		assert.Contains(t, completionStatuses, p.String("completion_status"))
	}

	// Micromarkets are taken in name order (Baner, Kharadi), so Wakad never gets a project.
	wakad, err := store.FindOne(ctx, model.TableMicromarkets, model.Filter{"name": "Wakad"})
	require.NoError(t, err)
	none, err := store.FindMany(ctx, model.TableProjects, model.Filter{"micromarket_id": wakad.ID()}, nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestCascade_CitySEOIsDeterministic(t *testing.T) {
	ctx := context.Background()
	store := db.NewMemoryStore()
	newTestCascade(t, store).Run(ctx)

	pune, err := store.FindOne(ctx, model.TableCities, model.Filter{"name": "Pune"})
	require.NoError(t, err)
	require.NotNil(t, pune)

	want := BuildCitySEO("Pune", "India")
	assert.Equal(t, "pune", pune.String("slug"))
	assert.Equal(t, want.Title, pune.String("seo_title"))
	assert.Equal(t, "Properties for Sale in Pune", pune.String("h1"))
	assert.Equal(t, "Find your next home in Pune", pune.String("hero_hook"))
}

func TestCascade_SkipsExistingNamesCaseInsensitively(t *testing.T) {
	ctx := context.Background()
	store := db.NewMemoryStore()
	_, err := store.InsertMany(ctx, model.TableCities, []model.Record{{"name": "  pune "}})
	require.NoError(t, err)

	res := newTestCascade(t, store).Run(ctx)
	assert.Equal(t, 1, res.Inserted(PhaseCities))
	assert.Equal(t, 1, res.Phases[0].Skipped)
}

// developerFailStore rejects every developer insert.
type developerFailStore struct {
	*db.MemoryStore
}

func (s *developerFailStore) InsertMany(ctx context.Context, table string, records []model.Record) (int, error) {
	if table == model.TableDevelopers {
		return 0, fmt.Errorf("developers table is read-only")
	}
	return s.MemoryStore.InsertMany(ctx, table, records)
}

func TestCascade_FailedPhaseDoesNotBlockLaterPhases(t *testing.T) {
	store := &developerFailStore{MemoryStore: db.NewMemoryStore()}
	res := newTestCascade(t, store).Run(context.Background())

	require.Len(t, res.Phases, 4)
	assert.Equal(t, 2, res.Inserted(PhaseCities))
	assert.Equal(t, 4, res.Inserted(PhaseMicromarkets))
	assert.Equal(t, 3, res.Phases[2].Failed)
	assert.Len(t, res.Phases[2].Errors, 3)
	assert.Equal(t, PhaseProjects, res.Phases[3].Phase)
	assert.Zero(t, res.Inserted(PhaseProjects))
}

func TestCascade_SeededRandomIsReproducible(t *testing.T) {
	ctx := context.Background()
	prices := func() []int {
		store := db.NewMemoryStore()
		newTestCascade(t, store, WithRand(rand.New(rand.NewPCG(7, 7)))).Run(ctx)
		projects, err := store.FindMany(ctx, model.TableProjects, nil, []string{"min_price"})
		require.NoError(t, err)
		out := make([]int, len(projects))
		for i, p := range projects {
			out[i] = p.Int("min_price")
		}
		return out
	}
	assert.Equal(t, prices(), prices())
}

type namedPhase struct {
	name     string
	requires []string
}

func (p namedPhase) Name() string       { return p.name }
func (p namedPhase) Requires() []string { return p.requires }
func (p namedPhase) Run(ctx context.Context, env *Env) model.PhaseResult {
	return model.PhaseResult{}
}

func TestNewCascade_RejectsBadOrder(t *testing.T) {
	cfg := config.Default()

	tests := []struct {
		name   string
		phases []Phase
	}{
		{"projects first", []Phase{ProjectPhase{}, CityPhase{}, MicromarketPhase{}, DeveloperPhase{}}},
		{"developers before cities", []Phase{DeveloperPhase{}, CityPhase{}}},
		{"unknown requirement", []Phase{namedPhase{name: "agents", requires: []string{"offices"}}}},
		{"duplicate", []Phase{CityPhase{}, CityPhase{}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCascade(cfg, db.NewMemoryStore(), WithPhases(tt.phases...))
			assert.ErrorIs(t, err, errors.ErrPhaseOrder)
		})
	}

	_, err := NewCascade(cfg, db.NewMemoryStore(), WithPhases(append(DefaultPhases(), namedPhase{name: "landmarks", requires: []string{PhaseProjects}})...))
	assert.NoError(t, err)
}
