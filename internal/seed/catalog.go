package seed

import "property-ingest/internal/model"

// DefaultCatalog is the reference data seeded into a fresh database.
func DefaultCatalog() []model.CityCatalogEntry {
	return []model.CityCatalogEntry{
		{
			Name:         "Bangalore",
			Country:      "India",
			Micromarkets: []string{"Whitefield", "Sarjapur Road", "Hebbal", "Electronic City", "Koramangala", "Yelahanka"},
			Developers: []model.DeveloperProfile{
				{Name: "Prestige Group", Specialization: "Luxury apartments", YearsInBusiness: 37},
				{Name: "Brigade Group", Specialization: "Integrated townships", YearsInBusiness: 36},
				{Name: "Sobha Limited", Specialization: "Premium villas", YearsInBusiness: 29},
			},
		},
		{
			Name:         "Hyderabad",
			Country:      "India",
			Micromarkets: []string{"Gachibowli", "Kondapur", "Kokapet", "Madhapur", "Kompally"},
			Developers: []model.DeveloperProfile{
				{Name: "My Home Constructions", Specialization: "Gated communities", YearsInBusiness: 38},
				{Name: "Aparna Constructions", Specialization: "High-rise apartments", YearsInBusiness: 27},
				{Name: "Rajapushpa Properties", Specialization: "Mid-segment housing", YearsInBusiness: 17},
			},
		},
		{
			Name:         "Pune",
			Country:      "India",
			Micromarkets: []string{"Hinjewadi", "Baner", "Kharadi", "Wakad", "Hadapsar"},
			Developers: []model.DeveloperProfile{
				{Name: "Kolte Patil Developers", Specialization: "Township projects", YearsInBusiness: 33},
				{Name: "Panchshil Realty", Specialization: "Luxury residences", YearsInBusiness: 22},
				{Name: "VTP Realty", Specialization: "Affordable housing", YearsInBusiness: 40},
			},
		},
		{
			Name:         "Chennai",
			Country:      "India",
			Micromarkets: []string{"OMR", "Porur", "Velachery", "Perumbakkam", "Anna Nagar"},
			Developers: []model.DeveloperProfile{
				{Name: "Casagrand Builder", Specialization: "Mid-segment apartments", YearsInBusiness: 21},
				{Name: "Radiance Realty", Specialization: "Premium apartments", YearsInBusiness: 16},
				{Name: "Olympia Group", Specialization: "Commercial and residential", YearsInBusiness: 24},
			},
		},
		{
			Name:         "Mumbai",
			Country:      "India",
			Micromarkets: []string{"Andheri West", "Powai", "Thane West", "Goregaon East", "Chembur"},
			Developers: []model.DeveloperProfile{
				{Name: "Lodha Group", Specialization: "Luxury high-rises", YearsInBusiness: 44},
				{Name: "Godrej Properties", Specialization: "Sustainable housing", YearsInBusiness: 34},
				{Name: "Oberoi Realty", Specialization: "Premium residences", YearsInBusiness: 43},
			},
		},
	}
}
