// Package slug turns free-text titles into URL-safe identifiers and keeps
// them unique for the duration of one run.
package slug

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fallback replaces a candidate that slugifies to nothing.
const Fallback = "listing"

// Slugify lower-cases text, collapses every run of non-alphanumeric
// characters into one hyphen and trims hyphens at both ends. Accented Latin
// letters are folded to ASCII first.
func Slugify(text string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), text)
	if err != nil {
		folded = text
	}

	var b strings.Builder
	b.Grow(len(folded))
	pendingHyphen := false
	for _, r := range strings.ToLower(folded) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}
	return b.String()
}

// Registry is the append-only set of slugs issued during a run, seeded with
// the slugs already present in the store. It is not safe for concurrent use:
// uniqueness relies on serialized check-then-insert.
type Registry struct {
	issued map[string]struct{}
}

func NewRegistry(existing ...string) *Registry {
	r := &Registry{issued: make(map[string]struct{}, len(existing))}
	for _, s := range existing {
		if s != "" {
			r.issued[s] = struct{}{}
		}
	}
	return r
}

func (r *Registry) Contains(s string) bool {
	_, ok := r.issued[s]
	return ok
}

func (r *Registry) Len() int {
	return len(r.issued)
}

// EnsureUnique returns candidate if unused, otherwise candidate-2,
// candidate-3, ... whichever is first free. The returned slug is recorded.
func (r *Registry) EnsureUnique(candidate string) string {
	if candidate == "" {
		candidate = Fallback
	}

	result := candidate
	for n := 2; r.Contains(result); n++ {
		result = candidate + "-" + strconv.Itoa(n)
	}

	r.issued[result] = struct{}{}
	return result
}
