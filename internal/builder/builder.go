// Package builder turns a parsed sheet row and its matched images into a
// persistence-ready listing.
package builder

import (
	"fmt"
	"strings"

	"property-ingest/internal/config"
	"property-ingest/internal/model"
	"property-ingest/internal/slug"
)

const (
	TypeApartment        = "Apartment"
	TypeVilla            = "Villa"
	TypeIndependentHouse = "Independent House"
)

// Defaults are the values applied to every built listing unless the row
// carries its own.
type Defaults struct {
	PlaceholderURL   string
	FallbackAgentID  string
	Amenities        []string
	OwnershipStatus  string
	PossessionStatus string
}

func DefaultsFromConfig(cfg config.IngestionConfig) Defaults {
	return Defaults{
		PlaceholderURL:   cfg.PlaceholderURL,
		FallbackAgentID:  cfg.FallbackAgentID,
		Amenities:        cfg.Amenities,
		OwnershipStatus:  cfg.OwnershipStatus,
		PossessionStatus: cfg.PossessionStatus,
	}
}

type Builder struct {
	defaults Defaults
	agentID  string
}

// New returns a builder that assigns agentID to every listing, or the
// fallback agent when agentID is empty.
func New(defaults Defaults, agentID string) *Builder {
	if agentID == "" {
		agentID = defaults.FallbackAgentID
	}
	return &Builder{defaults: defaults, agentID: agentID}
}

func (b *Builder) AgentID() string {
	return b.agentID
}

// Build maps row and images to an entity. The only side effect is recording
// the issued slug in registry.
func (b *Builder) Build(row model.SourceRow, images model.MatchedImageSet, registry *slug.Registry) model.IngestEntity {
	propertyType := ClassifyType(row.PropertyType)
	title := Title(row, propertyType)

	mainImage := images.Main
	if mainImage == "" {
		mainImage = b.defaults.PlaceholderURL
	}
	gallery := make([]string, len(images.Gallery))
	copy(gallery, images.Gallery)

	amenities := make([]string, len(b.defaults.Amenities))
	copy(amenities, b.defaults.Amenities)

	return model.IngestEntity{
		SNo:              row.SNo,
		Title:            title,
		Slug:             registry.EnsureUnique(CandidateSlug(title, row.Location)),
		Description:      description(row, title),
		City:             row.City,
		Location:         row.Location,
		ProjectName:      row.ProjectName,
		PropertyType:     propertyType,
		Configuration:    row.Configuration,
		Area:             row.Area,
		FloorNo:          row.FloorNo,
		TotalFloors:      row.TotalFloors,
		Facing:           row.Facing,
		Parking:          row.Parking,
		Price:            row.Price,
		PriceDisplay:     row.PriceDisplay,
		Bedrooms:         row.Bedrooms,
		Bathrooms:        row.Bathrooms,
		Status:           row.Status,
		FurnishingStatus: row.FurnishingStatus,
		MapURL:           row.MapURL,
		MainImageURL:     mainImage,
		ImageGallery:     gallery,
		NearbyLandmarks:  row.LandmarkMap(),
		Amenities:        amenities,
		OwnershipStatus:  b.defaults.OwnershipStatus,
		PossessionStatus: b.defaults.PossessionStatus,
		AgentID:          b.agentID,
	}
}

// ClassifyType normalizes a free-text property type into Apartment, Villa
// or Independent House.
func ClassifyType(raw string) string {
	t := strings.ToLower(raw)
	switch {
	case strings.Contains(t, "villa"):
		return TypeVilla
	case strings.Contains(t, "independent"), strings.Contains(t, "house"), strings.Contains(t, "bungalow"):
		return TypeIndependentHouse
	default:
		return TypeApartment
	}
}

func Title(row model.SourceRow, propertyType string) string {
	var b strings.Builder
	if c := strings.TrimSpace(row.Configuration); c != "" {
		b.WriteString(c)
		b.WriteByte(' ')
	}
	b.WriteString(propertyType)
	if p := strings.TrimSpace(row.ProjectName); p != "" {
		b.WriteString(" in ")
		b.WriteString(p)
	}
	if l := strings.TrimSpace(row.Location); l != "" {
		if row.ProjectName != "" {
			b.WriteString(", ")
		} else {
			b.WriteString(" in ")
		}
		b.WriteString(l)
	}
	return b.String()
}

// CandidateSlug slugifies title and appends the location slug unless the
// title slug already contains it.
func CandidateSlug(title, location string) string {
	s := slug.Slugify(title)
	loc := slug.Slugify(location)
	if loc == "" || strings.Contains(s, loc) {
		return s
	}
	if s == "" {
		return loc
	}
	return s + "-" + loc
}

func description(row model.SourceRow, title string) string {
	desc := title
	if row.City != "" {
		desc += fmt.Sprintf(", %s", row.City)
	}
	desc += "."
	if row.Area != "" {
		desc += fmt.Sprintf(" Built-up area %s.", row.Area)
	}
	if row.PriceDisplay != "" {
		desc += fmt.Sprintf(" Priced at %s.", row.PriceDisplay)
	}
	return desc
}
