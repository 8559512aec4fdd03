package normalize

import (
	"strings"
	"time"
)

// dateLayouts are tried in order when parsing a loosely-formatted date.
// The slash layouts are month-first, matching how the upstream forms
// historically recorded them.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"02 Jan 2006",
	"Jan 2, 2006",
	"January 2, 2006",
}

// Date converts a loosely-formatted date string into the canonical
// YYYY-MM-DD form (UTC calendar date, time-of-day discarded). It reports
// false for blank input, the literal word "null" in any case, unparseable
// strings, and parsed years outside (1900, 2100) exclusive. Pure and
// total: untrusted input never produces an error, only a miss.
func Date(raw string) (string, bool) {
	clean := strings.TrimSpace(raw)
	if clean == "" || strings.EqualFold(clean, "null") {
		return "", false
	}

	for _, layout := range dateLayouts {
		parsed, err := time.Parse(layout, clean)
		if err != nil {
			continue
		}
		utc := parsed.UTC()
		if year := utc.Year(); year <= 1900 || year >= 2100 {
			return "", false
		}
		return utc.Format("2006-01-02"), true
	}

	return "", false
}
