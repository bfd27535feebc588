package seed

import (
	"context"
	"fmt"
	"sort"

	"property-ingest/internal/model"
	"property-ingest/internal/slug"
)

const (
	PhaseCities       = "cities"
	PhaseMicromarkets = "micromarkets"
	PhaseDevelopers   = "developers"
	PhaseProjects     = "projects"
)

var completionStatuses = []string{"Ready to Move", "Under Construction", "New Launch"}

func (r *phaseRun) fail(format string, args ...any) {
	r.res.Failed++
	msg := fmt.Sprintf(format, args...)
	r.res.Errors = append(r.res.Errors, msg)
	r.env.Log.Error().Msg(msg)
}

type phaseRun struct {
	env *Env
	res model.PhaseResult
}

// catalogCities returns the stored cities that appear in the catalog, paired
// with their catalog entry.
func (r *phaseRun) catalogCities(ctx context.Context) ([]cityRef, bool) {
	records, err := r.env.findMany(ctx, model.TableCities, nil, "id", "name")
	if err != nil {
		r.fail("list cities: %v", err)
		return nil, false
	}
	stored := existingNames(records)

	var out []cityRef
	for _, entry := range r.env.Catalog {
		rec, ok := stored[nameKey(entry.Name)]
		if !ok {
			continue
		}
		out = append(out, cityRef{id: rec.ID(), entry: entry})
	}
	return out, true
}

type cityRef struct {
	id    string
	entry model.CityCatalogEntry
}

type CityPhase struct{}

func (CityPhase) Name() string       { return PhaseCities }
func (CityPhase) Requires() []string { return nil }

func (CityPhase) Run(ctx context.Context, env *Env) model.PhaseResult {
	r := &phaseRun{env: env}

	records, err := env.findMany(ctx, model.TableCities, nil, "name")
	if err != nil {
		r.fail("list cities: %v", err)
		return r.res
	}
	existing := existingNames(records)

	for _, entry := range env.Catalog {
		if _, ok := existing[nameKey(entry.Name)]; ok {
			r.res.Skipped++
			continue
		}

		seo := BuildCitySEO(entry.Name, entry.Country)
		err := env.insert(ctx, model.TableCities, model.Record{
			"name":            seo.DisplayName,
			"country":         seo.DisplayCountry,
			"slug":            seo.Slug,
			"seo_title":       seo.Title,
			"seo_description": seo.Description,
			"h1":              seo.H1,
			"hero_hook":       seo.HeroHook,
			"is_active":       true,
		})
		if err != nil {
			r.fail("insert city %s: %v", entry.Name, err)
			continue
		}
		existing[nameKey(entry.Name)] = nil
		r.res.Inserted++
	}
	return r.res
}

type MicromarketPhase struct{}

func (MicromarketPhase) Name() string       { return PhaseMicromarkets }
func (MicromarketPhase) Requires() []string { return []string{PhaseCities} }

func (MicromarketPhase) Run(ctx context.Context, env *Env) model.PhaseResult {
	r := &phaseRun{env: env}

	cities, ok := r.catalogCities(ctx)
	if !ok {
		return r.res
	}

	for _, city := range cities {
		records, err := env.findMany(ctx, model.TableMicromarkets, model.Filter{"city_id": city.id}, "name")
		if err != nil {
			r.fail("list micromarkets of %s: %v", city.entry.Name, err)
			continue
		}
		existing := existingNames(records)
		citySlug := slug.Slugify(city.entry.Name)

		for _, name := range city.entry.Micromarkets {
			if _, ok := existing[nameKey(name)]; ok {
				r.res.Skipped++
				continue
			}
			err := env.insert(ctx, model.TableMicromarkets, model.Record{
				"name":      name,
				"city_id":   city.id,
				"slug":      citySlug + "-" + slug.Slugify(name),
				"is_active": true,
			})
			if err != nil {
				r.fail("insert micromarket %s/%s: %v", city.entry.Name, name, err)
				continue
			}
			existing[nameKey(name)] = nil
			r.res.Inserted++
		}
	}
	return r.res
}

type DeveloperPhase struct{}

func (DeveloperPhase) Name() string       { return PhaseDevelopers }
func (DeveloperPhase) Requires() []string { return []string{PhaseCities} }

func (DeveloperPhase) Run(ctx context.Context, env *Env) model.PhaseResult {
	r := &phaseRun{env: env}

	cities, ok := r.catalogCities(ctx)
	if !ok {
		return r.res
	}

	for _, city := range cities {
		records, err := env.findMany(ctx, model.TableDevelopers, model.Filter{"primary_market_city_id": city.id}, "name")
		if err != nil {
			r.fail("list developers of %s: %v", city.entry.Name, err)
			continue
		}
		existing := existingNames(records)

		for _, dev := range city.entry.Developers {
			if _, ok := existing[nameKey(dev.Name)]; ok {
				r.res.Skipped++
				continue
			}
			err := env.insert(ctx, model.TableDevelopers, model.Record{
				"name":                   dev.Name,
				"specialization":         dev.Specialization,
				"years_in_business":      dev.YearsInBusiness,
				"primary_market_city_id": city.id,
				"slug":                   slug.Slugify(dev.Name + " " + city.entry.Name),
				"is_active":              true,
			})
			if err != nil {
				r.fail("insert developer %s/%s: %v", city.entry.Name, dev.Name, err)
				continue
			}
			existing[nameKey(dev.Name)] = nil
			r.res.Inserted++
		}
	}
	return r.res
}

// ProjectPhase pairs the first MaxPairsPerCity micromarkets with the first
// MaxPairsPerCity developers of each city, both by name. A pair that already
// has a project is left alone.
type ProjectPhase struct{}

func (ProjectPhase) Name() string { return PhaseProjects }
func (ProjectPhase) Requires() []string {
	return []string{PhaseMicromarkets, PhaseDevelopers}
}

func (ProjectPhase) Run(ctx context.Context, env *Env) model.PhaseResult {
	r := &phaseRun{env: env}

	cities, ok := r.catalogCities(ctx)
	if !ok {
		return r.res
	}

	for _, city := range cities {
		micromarkets, err := env.findMany(ctx, model.TableMicromarkets, model.Filter{"city_id": city.id}, "id", "name")
		if err != nil {
			r.fail("list micromarkets of %s: %v", city.entry.Name, err)
			continue
		}
		developers, err := env.findMany(ctx, model.TableDevelopers, model.Filter{"primary_market_city_id": city.id}, "id", "name")
		if err != nil {
			r.fail("list developers of %s: %v", city.entry.Name, err)
			continue
		}

		for _, mm := range firstByName(micromarkets, env.MaxPairsPerCity) {
			for _, dev := range firstByName(developers, env.MaxPairsPerCity) {
				r.seedPair(ctx, city, mm, dev)
			}
		}
	}
	return r.res
}

func (r *phaseRun) seedPair(ctx context.Context, city cityRef, mm, dev model.Record) {
	existing, err := r.env.findMany(ctx, model.TableProjects, model.Filter{
		"micromarket_id": mm.ID(),
		"developer_id":   dev.ID(),
	}, "id")
	if err != nil {
		r.fail("list projects of %s x %s: %v", mm.String("name"), dev.String("name"), err)
		return
	}
	if len(existing) > 0 {
		r.res.Skipped++
		return
	}

	name := fmt.Sprintf("%s %s Residences", dev.String("name"), mm.String("name"))
	minPrice := int64(40+r.env.Rand.IntN(111)) * 100000
	maxPrice := minPrice + int64(20+r.env.Rand.IntN(81))*100000

	err = r.env.insert(ctx, model.TableProjects, model.Record{
		"name":              name,
		"slug":              slug.Slugify(name + " " + city.entry.Name),
		"city_id":           city.id,
		"micromarket_id":    mm.ID(),
		"developer_id":      dev.ID(),
		"min_price":         minPrice,
		"max_price":         maxPrice,
		"completion_status": completionStatuses[r.env.Rand.IntN(len(completionStatuses))],
	})
	if err != nil {
		r.fail("insert project %s: %v", name, err)
		return
	}
	r.res.Inserted++
}

func firstByName(records []model.Record, n int) []model.Record {
	sorted := make([]model.Record, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return nameKey(sorted[i].String("name")) < nameKey(sorted[j].String("name"))
	})
	if n > 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
