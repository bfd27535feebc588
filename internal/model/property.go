package model

// LandmarkCategory orders the seven optional landmark columns of a sheet.
type LandmarkCategory string

const (
	LandmarkSchool1        LandmarkCategory = "school_1"
	LandmarkSchool2        LandmarkCategory = "school_2"
	LandmarkHospital       LandmarkCategory = "hospital"
	LandmarkShoppingMall   LandmarkCategory = "shopping_mall"
	LandmarkMetroStation   LandmarkCategory = "metro_station"
	LandmarkRailwayStation LandmarkCategory = "railway_station"
	LandmarkAirport        LandmarkCategory = "airport"
)

var LandmarkCategories = [7]LandmarkCategory{
	LandmarkSchool1,
	LandmarkSchool2,
	LandmarkHospital,
	LandmarkShoppingMall,
	LandmarkMetroStation,
	LandmarkRailwayStation,
	LandmarkAirport,
}

func (c LandmarkCategory) NameKey() string     { return string(c) + "_name" }
func (c LandmarkCategory) DistanceKey() string { return string(c) + "_distance" }

type Landmark struct {
	Name     string `json:"name"`
	Distance string `json:"distance"`
}

// SourceRow is one parsed spreadsheet row. It is not modified after parsing.
type SourceRow struct {
	SNo              int         `json:"s_no"`
	City             string      `json:"city"`
	Location         string      `json:"location"`
	ProjectName      string      `json:"project_name"`
	PropertyType     string      `json:"property_type"`
	Configuration    string      `json:"configuration"`
	Area             string      `json:"area"`
	FloorNo          string      `json:"floor_no"`
	TotalFloors      int         `json:"total_floors"`
	Facing           string      `json:"facing"`
	Parking          int         `json:"parking"`
	Price            float64     `json:"price"`
	PriceDisplay     string      `json:"price_display"`
	Bedrooms         int         `json:"bedrooms"`
	Bathrooms        int         `json:"bathrooms"`
	Status           string      `json:"status"`
	FurnishingStatus string      `json:"furnishing_status"`
	Landmarks        [7]Landmark `json:"landmarks"`
	MapURL           string      `json:"map_url"`
}

// HasLandmarks reports whether at least one landmark name is filled in.
func (r SourceRow) HasLandmarks() bool {
	for _, l := range r.Landmarks {
		if l.Name != "" {
			return true
		}
	}
	return false
}

// LandmarkMap builds the sparse nearby_landmarks object: a category
// contributes keys only when its name is non-empty.
func (r SourceRow) LandmarkMap() map[string]string {
	out := make(map[string]string)
	for i, l := range r.Landmarks {
		if l.Name == "" {
			continue
		}
		category := LandmarkCategories[i]
		out[category.NameKey()] = l.Name
		out[category.DistanceKey()] = l.Distance
	}
	return out
}

// IngestEntity is the persistence-ready listing produced by the record
// builder. Field tags are the storage column names.
type IngestEntity struct {
	SNo              int               `json:"-"`
	Title            string            `json:"title"`
	Slug             string            `json:"slug"`
	Description      string            `json:"description"`
	City             string            `json:"city"`
	Location         string            `json:"location"`
	ProjectName      string            `json:"project_name"`
	PropertyType     string            `json:"property_type"`
	Configuration    string            `json:"configuration"`
	Area             string            `json:"area"`
	FloorNo          string            `json:"floor_no"`
	TotalFloors      int               `json:"total_floors"`
	Facing           string            `json:"facing"`
	Parking          int               `json:"parking"`
	Price            float64           `json:"price"`
	PriceDisplay     string            `json:"price_display"`
	Bedrooms         int               `json:"bedrooms"`
	Bathrooms        int               `json:"bathrooms"`
	Status           string            `json:"status"`
	FurnishingStatus string            `json:"furnishing_status"`
	MapURL           string            `json:"map_url"`
	MainImageURL     string            `json:"main_image_url"`
	ImageGallery     []string          `json:"image_gallery"`
	NearbyLandmarks  map[string]string `json:"nearby_landmarks"`
	Amenities        []string          `json:"amenities"`
	OwnershipStatus  string            `json:"ownership_status"`
	PossessionStatus string            `json:"possession_status"`
	AgentID          string            `json:"agent_id"`
}

// Record maps the entity to storage field names.
func (e IngestEntity) Record() Record {
	gallery := e.ImageGallery
	if gallery == nil {
		gallery = []string{}
	}
	landmarks := e.NearbyLandmarks
	if landmarks == nil {
		landmarks = map[string]string{}
	}
	return Record{
		"title":             e.Title,
		"slug":              e.Slug,
		"description":       e.Description,
		"city":              e.City,
		"location":          e.Location,
		"project_name":      e.ProjectName,
		"property_type":     e.PropertyType,
		"configuration":     e.Configuration,
		"area":              e.Area,
		"floor_no":          e.FloorNo,
		"total_floors":      e.TotalFloors,
		"facing":            e.Facing,
		"parking":           e.Parking,
		"price":             e.Price,
		"price_display":     e.PriceDisplay,
		"bedrooms":          e.Bedrooms,
		"bathrooms":         e.Bathrooms,
		"status":            e.Status,
		"furnishing_status": e.FurnishingStatus,
		"map_url":           e.MapURL,
		"main_image_url":    e.MainImageURL,
		"image_gallery":     gallery,
		"nearby_landmarks":  landmarks,
		"amenities":         e.Amenities,
		"ownership_status":  e.OwnershipStatus,
		"possession_status": e.PossessionStatus,
		"agent_id":          e.AgentID,
	}
}
