package builder

import (
	"testing"

	"property-ingest/internal/model"
	"property-ingest/internal/slug"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testDefaults = Defaults{
	PlaceholderURL:   "https://placehold.test/none.png",
	FallbackAgentID:  "agent-fallback",
	Amenities:        []string{"Lift", "Security"},
	OwnershipStatus:  "Freehold",
	PossessionStatus: "Ready to Move",
}

func lakeviewRow() model.SourceRow {
	return model.SourceRow{
		SNo:           3,
		City:          "Bangalore",
		Location:      "Whitefield",
		ProjectName:   "Lakeview",
		PropertyType:  "Flat",
		Configuration: "2BHK",
		Area:          "1200 sq ft",
		Price:         8500000,
		PriceDisplay:  "₹85 Lakh",
		Bedrooms:      2,
		Bathrooms:     2,
	}
}

func TestBuild_SparseLandmarkMap(t *testing.T) {
	row := lakeviewRow()
	row.Landmarks[0] = model.Landmark{Name: "Delhi Public School", Distance: "1.2 km"}

	entity := New(testDefaults, "agent-1").Build(row, model.MatchedImageSet{Main: testDefaults.PlaceholderURL}, slug.NewRegistry())

	assert.Equal(t, map[string]string{
		"school_1_name":     "Delhi Public School",
		"school_1_distance": "1.2 km",
	}, entity.NearbyLandmarks)
}

func TestBuild_DistanceWithoutNameIsDropped(t *testing.T) {
	row := lakeviewRow()
	row.Landmarks[2] = model.Landmark{Distance: "3 km"}

	entity := New(testDefaults, "").Build(row, model.MatchedImageSet{}, slug.NewRegistry())

	assert.Empty(t, entity.NearbyLandmarks)
}

func TestBuild_TitleSlugAndImages(t *testing.T) {
	images := model.MatchedImageSet{
		Main:    "https://drive.test/1.jpg",
		Gallery: []string{"https://drive.test/2.jpg"},
	}

	entity := New(testDefaults, "agent-1").Build(lakeviewRow(), images, slug.NewRegistry())

	assert.Equal(t, "2BHK Apartment in Lakeview, Whitefield", entity.Title)
	assert.Equal(t, "2bhk-apartment-in-lakeview-whitefield", entity.Slug)
	assert.Equal(t, "https://drive.test/1.jpg", entity.MainImageURL)
	assert.Equal(t, []string{"https://drive.test/2.jpg"}, entity.ImageGallery)
	assert.Equal(t, "agent-1", entity.AgentID)
	assert.Equal(t, []string{"Lift", "Security"}, entity.Amenities)
	assert.Equal(t, "Freehold", entity.OwnershipStatus)
	assert.Equal(t, "Ready to Move", entity.PossessionStatus)
	assert.Contains(t, entity.Description, "₹85 Lakh")
}

func TestBuild_SameTitleGetsDistinctSlugs(t *testing.T) {
	b := New(testDefaults, "")
	registry := slug.NewRegistry()

	first := b.Build(lakeviewRow(), model.MatchedImageSet{}, registry)
	second := b.Build(lakeviewRow(), model.MatchedImageSet{}, registry)
	third := b.Build(lakeviewRow(), model.MatchedImageSet{}, registry)

	assert.Equal(t, "2bhk-apartment-in-lakeview-whitefield", first.Slug)
	assert.Equal(t, "2bhk-apartment-in-lakeview-whitefield-2", second.Slug)
	assert.Equal(t, "2bhk-apartment-in-lakeview-whitefield-3", third.Slug)
	assert.Equal(t, "agent-fallback", first.AgentID)
	assert.Equal(t, testDefaults.PlaceholderURL, first.MainImageURL)
}

func TestBuild_DoesNotAliasDefaults(t *testing.T) {
	entity := New(testDefaults, "").Build(lakeviewRow(), model.MatchedImageSet{}, slug.NewRegistry())
	require.NotEmpty(t, entity.Amenities)

	entity.Amenities[0] = "changed"
	assert.Equal(t, "Lift", testDefaults.Amenities[0])
}

func TestClassifyType(t *testing.T) {
	assert.Equal(t, TypeVilla, ClassifyType("Luxury VILLA"))
	assert.Equal(t, TypeIndependentHouse, ClassifyType("Independent Floor"))
	assert.Equal(t, TypeIndependentHouse, ClassifyType("row house"))
	assert.Equal(t, TypeApartment, ClassifyType("Flat"))
	assert.Equal(t, TypeApartment, ClassifyType(""))
}

func TestCandidateSlug(t *testing.T) {
	assert.Equal(t, "3bhk-villa-in-palm-meadows-whitefield", CandidateSlug("3BHK Villa in Palm Meadows", "Whitefield"))
	assert.Equal(t, "villa-in-whitefield", CandidateSlug("Villa in Whitefield", "Whitefield"))
	assert.Equal(t, "villa", CandidateSlug("Villa", ""))
}
