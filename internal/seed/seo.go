package seed

import (
	"fmt"
	"strings"

	"property-ingest/internal/slug"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// CitySEO is the landing page copy stored with every seeded city. It is a
// pure function of the city and country names.
type CitySEO struct {
	Slug           string
	Title          string
	Description    string
	H1             string
	HeroHook       string
	DisplayName    string
	DisplayCountry string
}

func BuildCitySEO(name, country string) CitySEO {
	// A Caser is stateful, so each call gets its own.
	caser := cases.Title(language.English, cases.NoLower)
	display := caser.String(strings.TrimSpace(name))
	displayCountry := caser.String(strings.TrimSpace(country))

	return CitySEO{
		Slug:           slug.Slugify(display),
		Title:          fmt.Sprintf("Property for Sale in %s | Apartments, Villas & Independent Houses", display),
		Description:    fmt.Sprintf("Explore verified apartments, villas and independent houses for sale in %s, %s. Compare prices across top localities and trusted developers.", display, displayCountry),
		H1:             fmt.Sprintf("Properties for Sale in %s", display),
		HeroHook:       fmt.Sprintf("Find your next home in %s", display),
		DisplayName:    display,
		DisplayCountry: displayCountry,
	}
}

// nameKey is the natural key used to compare catalog names with stored ones.
func nameKey(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}
