package streaming

import (
	"regexp"
	"strings"

	levenshtein "github.com/ka-weihe/fast-levenshtein"
	"github.com/kinocast-cli/kinocast/key"
	"github.com/kinocast-cli/kinocast/util"
	"github.com/spf13/viper"
)

// Candidate is one entry of a provider search listing.
type Candidate struct {
	Title string
	Year  int
	URL   string
}

var (
	whitespace = regexp.MustCompile(`\s+`)
	yearSuffix = regexp.MustCompile(`^(?P<title>.+?)\s*\((?P<year>\d{4})\)$`)
)

// NormalizeTitle returns a lowercased, whitespace-collapsed string for
// consistent comparison.
func NormalizeTitle(title string) string {
	return whitespace.ReplaceAllString(strings.ToLower(strings.TrimSpace(title)), " ")
}

// SplitYear separates a trailing "(YYYY)" release year from a listing title.
// The year is 0 when the title carries none.
func SplitYear(title string) (string, int) {
	groups := util.ReGroups(yearSuffix, strings.TrimSpace(title))
	if len(groups) == 0 {
		return strings.TrimSpace(title), 0
	}

	year := 0
	for _, c := range groups["year"] {
		year = year*10 + int(c-'0')
	}
	return groups["title"], year
}

// BestMatch picks the listing candidate matching the query. An exact
// case-insensitive title match wins outright; otherwise candidates are
// ranked by Levenshtein distance and rejected when their similarity falls
// below the configured threshold. A query year breaks ties between
// candidates at equal distance.
func BestMatch(query TitleQuery, candidates []Candidate) (Candidate, bool) {
	if len(candidates) == 0 {
		return Candidate{}, false
	}

	want := NormalizeTitle(query.Title)

	type ranked struct {
		candidate Candidate
		title     string
		year      int
		distance  int
	}

	var (
		best  *ranked
		exact *ranked
	)

	for _, c := range candidates {
		title, year := c.Title, c.Year
		if year == 0 {
			title, year = SplitYear(c.Title)
		}

		r := ranked{
			candidate: c,
			title:     NormalizeTitle(title),
			year:      year,
		}
		r.distance = levenshtein.Distance(want, r.title)

		if r.distance == 0 {
			if exact == nil || tieBreak(query.Year, exact.year, r.year) {
				clone := r
				exact = &clone
			}
			continue
		}

		if best == nil || r.distance < best.distance ||
			(r.distance == best.distance && tieBreak(query.Year, best.year, r.year)) {
			clone := r
			best = &clone
		}
	}

	if exact != nil {
		return exact.candidate, true
	}

	if best == nil || similarity(want, best.title, best.distance) < viper.GetInt(key.MatchSimilarityThreshold) {
		return Candidate{}, false
	}

	return best.candidate, true
}

// tieBreak reports whether the challenger's year beats the incumbent's for
// the queried year. Without a queried year nothing changes.
func tieBreak(queried, incumbent, challenger int) bool {
	if queried == 0 {
		return false
	}
	return challenger == queried && incumbent != queried
}

// similarity converts an edit distance into a 0-100 score relative to the
// longer of the two strings.
func similarity(a, b string, distance int) int {
	longest := util.Max(len([]rune(a)), len([]rune(b)))
	if longest == 0 {
		return 100
	}
	return 100 - (100*distance)/longest
}
