package matcher

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

var isoLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"20060102",
}

var (
	dayFirstPattern  = regexp.MustCompile(`^(\d{1,2})[/-](\d{1,2})[/-](\d{4})$`)
	yearFirstPattern = regexp.MustCompile(`^(\d{4})[/-](\d{1,2})[/-](\d{1,2})$`)
)

// ParseDate reads a date string using, in order: ISO-8601 layouts, general
// date parsing, then positional P1/P2/P3 heuristics tried as DD/MM/YYYY,
// MM/DD/YYYY and YYYY/MM/DD. The first calendrically valid interpretation
// wins, so an ambiguous value that reaches the heuristics is read day first.
// Times without a zone are read as UTC.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range isoLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, true
		}
	}

	if t, err := dateparse.ParseIn(s, time.UTC); err == nil {
		return t, true
	}

	return parsePositional(s)
}

func parsePositional(s string) (time.Time, bool) {
	for _, pattern := range []*regexp.Regexp{dayFirstPattern, yearFirstPattern} {
		m := pattern.FindStringSubmatch(s)
		if m == nil {
			continue
		}

		p1, _ := strconv.Atoi(m[1])
		p2, _ := strconv.Atoi(m[2])
		p3, _ := strconv.Atoi(m[3])

		attempts := [][3]int{
			{p3, p2, p1}, // DD/MM/YYYY
			{p3, p1, p2}, // MM/DD/YYYY
			{p1, p2, p3}, // YYYY/MM/DD
		}
		for _, ymd := range attempts {
			if t, ok := validDate(ymd[0], ymd[1], ymd[2]); ok {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

// validDate builds a UTC date, rejecting values that time.Date would normalize
func validDate(year, month, day int) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}

// DaysBetween returns the absolute number of whole days between a and b
func DaysBetween(a, b time.Time) int {
	d := b.Sub(a)
	if d < 0 {
		d = -d
	}
	return int(d / (24 * time.Hour))
}
