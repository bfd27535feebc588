package matcher

import (
	"fmt"
	"regexp"
	"strconv"
	"sync"
)

// Pattern extracts the image ordinal from a filename that belongs to a
// given sequence number.
type Pattern interface {
	Name() string
	TryMatch(seq int, filename string) (ordinal int, ok bool)
}

// regexPattern is a filename template with one %d verb for the sequence
// number and a named "ordinal" group. Compiled expressions are cached per
// sequence number.
type regexPattern struct {
	name     string
	template string
	cache    sync.Map // int -> *regexp.Regexp
}

func NewRegexPattern(name, template string) Pattern {
	return &regexPattern{name: name, template: template}
}

func (p *regexPattern) Name() string {
	return p.name
}

func (p *regexPattern) TryMatch(seq int, filename string) (int, bool) {
	re := p.compile(seq)
	m := re.FindStringSubmatch(filename)
	if m == nil {
		return 0, false
	}

	idx := re.SubexpIndex("ordinal")
	if idx < 0 || idx >= len(m) {
		return 0, false
	}
	ordinal, err := strconv.Atoi(m[idx])
	if err != nil {
		return 0, false
	}
	return ordinal, true
}

func (p *regexPattern) compile(seq int) *regexp.Regexp {
	if re, ok := p.cache.Load(seq); ok {
		return re.(*regexp.Regexp)
	}
	re := regexp.MustCompile(fmt.Sprintf(p.template, seq))
	p.cache.Store(seq, re)
	return re
}

// DefaultPatterns are tried most-specific first.
func DefaultPatterns() []Pattern {
	return []Pattern{
		// 3-Lakeview-2BHK-1.jpg
		NewRegexPattern("seq-text-ordinal", `(?i)^%d[\s_-].*?[\s_-](?P<ordinal>\d+)\.(?:jpg|jpeg|png)$`),
		// 3-1.jpg
		NewRegexPattern("seq-ordinal", `(?i)^%d[\s_-](?P<ordinal>\d+)\.(?:jpg|jpeg|png)$`),
		// Property 3 - 1.jpg, S.No 3_front_2.png
		NewRegexPattern("marker-seq-ordinal", `(?i)^(?:property|s\.?\s?no\.?)[\s_.-]*%d[\s_-](?:.*?[\s_-])?(?P<ordinal>\d+)\.(?:jpg|jpeg|png)$`),
	}
}
