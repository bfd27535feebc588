// Package matcher assigns drive images to spreadsheet rows by parsing the
// sequence number and image ordinal out of each filename.
package matcher

import (
	"sort"

	"property-ingest/internal/logger"
	"property-ingest/internal/model"

	"github.com/rs/zerolog"
)

type Matcher struct {
	patterns    []Pattern
	placeholder string
	log         zerolog.Logger
}

// New returns a matcher over patterns in precedence order; DefaultPatterns
// is used when none are given.
func New(placeholder string, patterns ...Pattern) *Matcher {
	if len(patterns) == 0 {
		patterns = DefaultPatterns()
	}
	return &Matcher{
		patterns:    patterns,
		placeholder: placeholder,
		log:         logger.Get(),
	}
}

func (m *Matcher) WithLogger(log zerolog.Logger) *Matcher {
	m.log = log
	return m
}

// Match collects the images of sequence number seq using the first pattern
// that matches at least one file. With no match the main image is the
// placeholder and the gallery is empty.
//
// When two files yield the same ordinal the one listed first wins.
func (m *Matcher) Match(seq int, files []model.DriveFile) model.MatchedImageSet {
	set := model.MatchedImageSet{
		SNo:     seq,
		Main:    m.placeholder,
		Gallery: []string{},
	}

	for _, p := range m.patterns {
		images := m.collect(p, seq, files)
		if len(images) == 0 {
			continue
		}

		set.Pattern = p.Name()
		set.Images = images
		for _, img := range images {
			if img.Ordinal == 1 {
				set.Main = img.URL
				continue
			}
			set.Gallery = append(set.Gallery, img.URL)
		}

		if set.Main == m.placeholder {
			m.log.Warn().Int("s_no", seq).Str("pattern", p.Name()).Msg("Matched images have no ordinal 1, keeping placeholder main image")
		}
		return set
	}

	m.log.Info().Int("s_no", seq).Msg("No images matched")
	return set
}

func (m *Matcher) collect(p Pattern, seq int, files []model.DriveFile) []model.ImageRef {
	seen := make(map[int]string)
	var images []model.ImageRef

	for _, f := range files {
		ordinal, ok := p.TryMatch(seq, f.Name)
		if !ok {
			continue
		}
		if first, dup := seen[ordinal]; dup {
			m.log.Warn().
				Int("s_no", seq).
				Int("ordinal", ordinal).
				Str("kept", first).
				Str("dropped", f.Name).
				Msg("Duplicate image ordinal")
			continue
		}
		seen[ordinal] = f.Name
		images = append(images, model.ImageRef{Ordinal: ordinal, URL: f.URL})
	}

	sort.SliceStable(images, func(i, j int) bool {
		return images[i].Ordinal < images[j].Ordinal
	})
	return images
}
