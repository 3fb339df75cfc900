// Package daykey normalizes the calendar-day discriminator (YYYY-MM-DD) used
// by every per-day aggregation.
package daykey

import (
	"strings"
	"time"
)

const Layout = "2006-01-02"

// Zoned timestamps are converted into loc before taking the date.
var zonedLayouts = []string{time.RFC3339Nano, time.RFC3339}

// Naive layouts already carry the local calendar date. Day-first forms follow
// the suite's Spanish locale.
var naiveLayouts = []string{
	Layout,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-1-2",
	"2006/01/02",
	"2006/1/2",
	"02/01/2006",
	"2/1/2006",
}

// Normalize turns free-form, ISO-datetime or date-only input into a day key.
// ok is false when the input cannot be read as a real calendar date.
func Normalize(raw string, loc *time.Location) (string, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", false
	}
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.In(loc).Format(Layout), true
		}
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t.Format(Layout), true
		}
	}
	return "", false
}

// Valid reports whether s is already a canonical day key.
func Valid(s string) bool {
	if len(s) != len(Layout) {
		return false
	}
	_, err := time.Parse(Layout, s)
	return err == nil
}

// FromTime formats t as the calendar day in loc.
func FromTime(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(Layout)
}

// Start returns midnight of key in loc.
func Start(key string, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(Layout, key, loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Spellings lists the stored prefixes a row dated key can start with: key in
// every naive layout, plus the datetime prefixes of the neighbouring days
// whose zoned timestamps can still fall on key in loc.
func Spellings(key string) []string {
	t, err := time.Parse(Layout, key)
	if err != nil {
		return []string{key}
	}
	seen := map[string]struct{}{}
	out := make([]string, 0, len(naiveLayouts)+2)
	add := func(p string) {
		if _, dup := seen[p]; dup {
			return
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	for _, layout := range []string{Layout, "2006-1-2", "2006/01/02", "2006/1/2", "02/01/2006", "2/1/2006"} {
		add(t.Format(layout))
	}
	add(t.AddDate(0, 0, -1).Format(Layout) + "T")
	add(t.AddDate(0, 0, 1).Format(Layout) + "T")
	return out
}

// Matches reports whether raw falls on key. Values Normalize cannot read
// still match when they start with key followed by a non-digit, as in
// "2026-10-15 13:45".
func Matches(raw, key string, loc *time.Location) bool {
	if got, ok := Normalize(raw, loc); ok {
		return got == key
	}
	s := strings.TrimSpace(raw)
	if len(s) <= len(key) || !strings.HasPrefix(s, key) {
		return false
	}
	c := s[len(key)]
	return c < '0' || c > '9'
}

// Before compares two canonical keys; canonical keys sort lexically.
func Before(a, b string) bool {
	return a < b
}
