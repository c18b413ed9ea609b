package matching

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
	"unicode"
)

// Tiered experience scores.
const (
	ExperienceNeutral = 50.0
	ExperienceHigh    = 85.0
	ExperienceMedium  = 65.0
	ExperienceLow     = 40.0

	experienceHighRatio   = 0.8
	experienceMediumRatio = 0.5
)

// ExperienceEstimator compares stated years of experience.
//
// Only "N <marker>" phrasing is recognised and the first figure in the job
// text is taken as the requirement. For a range such as "3-5 years" the
// figure directly before the marker (5) is the one extracted. Any Unicode
// decimal digits count, and non-breaking spaces may separate the figure
// from the marker.
type ExperienceEstimator struct {
	yearsRe *regexp.Regexp
	// mentions are the markers checked by MentionsYears.
	mentions []string
}

// NewExperienceEstimator builds the marker patterns from t, or from the defaults when t is nil.
func NewExperienceEstimator(t *Tables) *ExperienceEstimator {
	if t == nil {
		t = DefaultTables()
	}
	markers := append([]string(nil), t.YearsMarkers...)
	// Longest first so "years" wins over "year" in the alternation.
	sort.Slice(markers, func(i, j int) bool { return len(markers[i]) > len(markers[j]) })
	quoted := make([]string, len(markers))
	for i, m := range markers {
		quoted[i] = regexp.QuoteMeta(m)
	}
	alt := strings.Join(quoted, "|")
	return &ExperienceEstimator{
		yearsRe:  regexp.MustCompile(`(?i)(\p{Nd}+)[\s\p{Zs}]*(?:` + alt + `)`),
		mentions: mentionMarkers(markers),
	}
}

// mentionMarkers drops markers that are a prefix of a longer one, so "year"
// only counts as "years" and words like "yearly" are not a mention.
func mentionMarkers(markers []string) []string {
	out := make([]string, 0, len(markers))
	for _, m := range markers {
		m = strings.ToLower(m)
		prefix := false
		for _, other := range markers {
			other = strings.ToLower(other)
			if other != m && strings.HasPrefix(other, m) {
				prefix = true
				break
			}
		}
		if !prefix {
			out = append(out, m)
		}
	}
	return out
}

// Estimate returns a score in [0,100]; 50 when either side states no years.
func (e *ExperienceEstimator) Estimate(cvText, jobText string) float64 {
	cvYears, err := e.extract(cvText)
	if err != nil || len(cvYears) == 0 {
		return ExperienceNeutral
	}
	jobYears, err := e.extract(jobText)
	if err != nil || len(jobYears) == 0 {
		return ExperienceNeutral
	}

	var sum float64
	for _, y := range cvYears {
		sum += float64(y)
	}
	cvAverage := sum / float64(len(cvYears))
	jobRequired := float64(jobYears[0])

	switch {
	case cvAverage >= jobRequired*experienceHighRatio:
		return ExperienceHigh
	case cvAverage >= jobRequired*experienceMediumRatio:
		return ExperienceMedium
	default:
		return ExperienceLow
	}
}

// MentionsYears reports whether text contains a years marker such as
// "years" or "år", case-insensitively and anywhere in a word.
func (e *ExperienceEstimator) MentionsYears(text string) bool {
	lower := strings.ToLower(text)
	for _, m := range e.mentions {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

// extract returns every integer that directly precedes a years marker.
// An integer that does not fit in an int is a parse error.
func (e *ExperienceEstimator) extract(text string) ([]int, error) {
	matches := e.yearsRe.FindAllStringSubmatch(text, -1)
	out := make([]int, 0, len(matches))
	for _, m := range matches {
		n, err := parseDigits(m[1])
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

// parseDigits converts a run of Unicode decimal digits ("5", "５", "٥") to an int.
func parseDigits(s string) (int, error) {
	n := 0
	for _, r := range s {
		d, ok := digitValue(r)
		if !ok {
			return 0, fmt.Errorf("not a decimal digit: %q", r)
		}
		if n > (math.MaxInt-d)/10 {
			return 0, fmt.Errorf("value out of range: %q", s)
		}
		n = n*10 + d
	}
	return n, nil
}

// digitValue relies on every Nd range in the Unicode tables starting at a
// zero and running in complete 0-9 sets.
func digitValue(r rune) (int, bool) {
	if r >= '0' && r <= '9' {
		return int(r - '0'), true
	}
	for _, rg := range unicode.Nd.R16 {
		if lo, hi := rune(rg.Lo), rune(rg.Hi); r >= lo && r <= hi {
			return int(r-lo) % 10, (r-lo)%rune(rg.Stride) == 0
		}
	}
	for _, rg := range unicode.Nd.R32 {
		if lo, hi := rune(rg.Lo), rune(rg.Hi); r >= lo && r <= hi {
			return int(r-lo) % 10, (r-lo)%rune(rg.Stride) == 0
		}
	}
	return 0, false
}
