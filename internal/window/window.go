// Package window implements the coarse date filter (today / yesterday /
// 7days) over the catalog's offset post dates.
//
// Stored post dates run one day behind the true publish date of the content.
// This package is the single place that compensates: the true content date is
// taken to be storedPostDate + 1 day, and that adjusted instant is compared
// against local-midnight-aligned boundaries.
package window

import (
	"time"

	"contentvault/internal/models"
)

type Range string

const (
	RangeAll       Range = "all"
	RangeToday     Range = "today"
	RangeYesterday Range = "yesterday"
	Range7Days     Range = "7days"
)

// Parse maps a query-string value onto a Range. The empty string is treated
// as "all".
func Parse(s string) (Range, bool) {
	switch Range(s) {
	case "", RangeAll:
		return RangeAll, true
	case RangeToday, RangeYesterday, Range7Days:
		return Range(s), true
	}
	return "", false
}

// Contains reports whether a stored post date falls inside r, evaluated
// against now's calendar day in now's location. Boundaries are inclusive at
// the start of the day and exclusive at the next midnight, so an adjusted
// content date exactly at local midnight counts as that day.
func (r Range) Contains(stored, now time.Time) bool {
	if r == RangeAll || r == "" {
		return true
	}
	content := stored.AddDate(0, 0, 1)
	today := startOfDay(now)
	switch r {
	case RangeToday:
		return !content.Before(today) && content.Before(today.AddDate(0, 0, 1))
	case RangeYesterday:
		return !content.Before(today.AddDate(0, 0, -1)) && content.Before(today)
	case Range7Days:
		return !content.Before(today.AddDate(0, 0, -6)) && content.Before(today.AddDate(0, 0, 1))
	}
	return false
}

// Matches applies r to an item, falling back to the creation timestamp when
// the post date is unset. An item with neither is excluded.
func Matches(r Range, item models.ContentItem, now time.Time) bool {
	base := item.PostDate
	if base.IsZero() {
		base = item.CreatedAt
	}
	if base.IsZero() {
		return false
	}
	return r.Contains(base, now)
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
