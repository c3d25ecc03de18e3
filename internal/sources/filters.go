package sources

import (
	"regexp"
	"time"
)

const dateLayout = "2006-01-02 15:04:05"

var baseStopWords = []string{
	"today", "yesterday", "this week", "new",
	"show", "shows", "display", "get", "give", "list", "find", "fetch",
	"me", "my", "want", "need", "see", "view",
	"data", "details", "information", "info",
	"all", "the", "some", "any", "of", "for", "with", "from",
	"is", "are", "was", "were", "and", "what", "which", "who", "how", "many",
	"please", "can", "you", "tell", "about", "there", "have", "has",
}

var (
	todayRe     = regexp.MustCompile(`(?i)\btoday\b`)
	yesterdayRe = regexp.MustCompile(`(?i)\byesterday\b`)
	thisWeekRe  = regexp.MustCompile(`(?i)\bthis week\b`)
	newRe       = regexp.MustCompile(`(?i)\bnew\b`)
)

// Filters narrows a table search.
type Filters struct {
	Start *time.Time
	End   *time.Time
	Terms []string
}

// HasRange reports whether a date range applies.
func (f Filters) HasRange() bool {
	return f.Start != nil && f.End != nil
}

// parseFilters extracts a date range from relative date words in text.
// "new" alone means the last seven days.
func parseFilters(text string, now time.Time) Filters {
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dayEnd := dayStart.Add(24*time.Hour - time.Second)

	var f Filters
	set := func(start, end time.Time) {
		f.Start, f.End = &start, &end
	}

	switch {
	case todayRe.MatchString(text):
		set(dayStart, dayEnd)
	case yesterdayRe.MatchString(text):
		set(dayStart.AddDate(0, 0, -1), dayEnd.AddDate(0, 0, -1))
	case thisWeekRe.MatchString(text):
		sinceMonday := (int(now.Weekday()) + 6) % 7
		set(dayStart.AddDate(0, 0, -sinceMonday), dayEnd)
	}
	if newRe.MatchString(text) && f.Start == nil {
		set(dayStart.AddDate(0, 0, -7), dayEnd)
	}
	return f
}
