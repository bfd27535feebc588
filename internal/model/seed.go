package model

type DeveloperProfile struct {
	Name            string
	Specialization  string
	YearsInBusiness int
}

// CityCatalogEntry is one city of the reference catalog together with the
// micromarkets and developers seeded under it.
type CityCatalogEntry struct {
	Name         string
	Country      string
	Micromarkets []string
	Developers   []DeveloperProfile
}
