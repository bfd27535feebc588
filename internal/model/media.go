package model

// DriveFile describes one file in the external drive folder.
type DriveFile struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
}

type ImageRef struct {
	Ordinal int    `json:"ordinal"`
	URL     string `json:"url"`
}

// MatchedImageSet holds the images matched to one sequence number, sorted
// ascending by ordinal. Ordinal 1 is the main image.
type MatchedImageSet struct {
	SNo     int        `json:"s_no"`
	Images  []ImageRef `json:"images"`
	Main    string     `json:"main_image_url"`
	Gallery []string   `json:"image_gallery"`
	Pattern string     `json:"pattern,omitempty"`
}

// Empty reports whether no file matched the sequence number.
func (m MatchedImageSet) Empty() bool {
	return len(m.Images) == 0
}
