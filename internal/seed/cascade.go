// Package seed inserts the reference data listings hang off: cities, their
// micromarkets and developers, and one sample project per
// (micromarket, developer) pair. Every phase only inserts rows whose name is
// missing, so running the cascade again is a no-op.
package seed

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"property-ingest/internal/config"
	"property-ingest/internal/db"
	"property-ingest/internal/logger"
	"property-ingest/internal/metrics"
	"property-ingest/internal/model"
	"property-ingest/pkg/errors"

	"github.com/rs/zerolog"
)

// Phase is one step of the cascade. Requires names the phases whose inserts
// must be visible before this one reads.
type Phase interface {
	Name() string
	Requires() []string
	Run(ctx context.Context, env *Env) model.PhaseResult
}

// Env is what every phase gets to work with.
type Env struct {
	Store           db.Store
	Catalog         []model.CityCatalogEntry
	MaxPairsPerCity int
	Rand            *rand.Rand
	Timeout         time.Duration
	Log             zerolog.Logger
}

type Cascade struct {
	phases []Phase
	env    *Env
}

type Option func(*Cascade)

func WithCatalog(catalog []model.CityCatalogEntry) Option {
	return func(c *Cascade) { c.env.Catalog = catalog }
}

func WithRand(r *rand.Rand) Option {
	return func(c *Cascade) { c.env.Rand = r }
}

func WithPhases(phases ...Phase) Option {
	return func(c *Cascade) { c.phases = phases }
}

func DefaultPhases() []Phase {
	return []Phase{CityPhase{}, MicromarketPhase{}, DeveloperPhase{}, ProjectPhase{}}
}

// NewCascade rejects a phase list in which a phase comes before one of its
// requirements, names an unknown requirement, or repeats a name.
func NewCascade(cfg *config.Config, store db.Store, opts ...Option) (*Cascade, error) {
	seed := cfg.Seeding.RandomSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	c := &Cascade{
		phases: DefaultPhases(),
		env: &Env{
			Store:           store,
			Catalog:         DefaultCatalog(),
			MaxPairsPerCity: cfg.Seeding.MaxPairsPerCity,
			Rand:            rand.New(rand.NewPCG(uint64(seed), uint64(seed))),
			Timeout:         cfg.Ingestion.StoreTimeout,
			Log:             logger.Get().With().Str("component", "seed").Logger(),
		},
	}
	for _, opt := range opts {
		opt(c)
	}

	if err := validateOrder(c.phases); err != nil {
		return nil, err
	}
	return c, nil
}

func validateOrder(phases []Phase) error {
	all := make(map[string]bool, len(phases))
	for _, p := range phases {
		if all[p.Name()] {
			return fmt.Errorf("%w: phase %q listed twice", errors.ErrPhaseOrder, p.Name())
		}
		all[p.Name()] = true
	}

	done := make(map[string]bool, len(phases))
	for _, p := range phases {
		for _, req := range p.Requires() {
			if !all[req] {
				return fmt.Errorf("%w: phase %q requires unknown phase %q", errors.ErrPhaseOrder, p.Name(), req)
			}
			if !done[req] {
				return fmt.Errorf("%w: phase %q runs before %q", errors.ErrPhaseOrder, p.Name(), req)
			}
		}
		done[p.Name()] = true
	}
	return nil
}

// Run executes every phase to completion in order. A failing phase never
// stops the ones after it; its failures are in its PhaseResult.
func (c *Cascade) Run(ctx context.Context) model.SeedResult {
	var result model.SeedResult

	for _, phase := range c.phases {
		log := c.env.Log.With().Str("phase", phase.Name()).Logger()
		env := *c.env
		env.Log = log

		start := time.Now()
		res := phase.Run(ctx, &env)
		res.Phase = phase.Name()
		result.Phases = append(result.Phases, res)

		metrics.SeedRowsInserted.WithLabelValues(phase.Name()).Add(float64(res.Inserted))
		log.Info().
			Int("inserted", res.Inserted).
			Int("skipped", res.Skipped).
			Int("failed", res.Failed).
			Dur("duration", time.Since(start)).
			Msg("Seed phase completed")
	}

	return result
}

func (e *Env) call(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, e.Timeout)
}

func (e *Env) findMany(ctx context.Context, table string, filter model.Filter, projection ...string) ([]model.Record, error) {
	callCtx, cancel := e.call(ctx)
	defer cancel()
	return e.Store.FindMany(callCtx, table, filter, projection)
}

func (e *Env) insert(ctx context.Context, table string, record model.Record) error {
	callCtx, cancel := e.call(ctx)
	defer cancel()
	_, err := e.Store.InsertMany(callCtx, table, []model.Record{record})
	return err
}

// existingNames indexes records by nameKey of their "name" column.
func existingNames(records []model.Record) map[string]model.Record {
	out := make(map[string]model.Record, len(records))
	for _, r := range records {
		out[nameKey(r.String("name"))] = r
	}
	return out
}
