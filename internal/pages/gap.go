package pages

import (
	"strings"
	"time"

	"github.com/rozkladbot/rozkladbot/internal/api"
)

// IsDayEmpty reports whether a schedule day has nothing to show: no
// lessons at all, or every period hidden by the marker substring
// (case-insensitive) in its discipline name.
func IsDayEmpty(day api.ScheduleDay, hiddenMarker string) bool {
	if len(day.Lessons) == 0 {
		return true
	}
	if hiddenMarker == "" {
		return false
	}

	marker := strings.ToLower(hiddenMarker)
	for _, lesson := range day.Lessons {
		for _, period := range lesson.Periods {
			if !strings.Contains(strings.ToLower(period.DisciplineShortName), marker) {
				return false
			}
		}
	}
	return true
}

// GapAnalysis is the outcome of scanning a fetch window around a
// reference date for the nearest non-empty days.
type GapAnalysis struct {
	// SkipLeft and SkipRight are the day distances from the reference
	// to the nearest non-empty day in each direction. An unbounded
	// direction holds the distance to one day past the window boundary.
	SkipLeft  int
	SkipRight int

	// LeftBounded / RightBounded report whether a non-empty day was
	// actually found in that direction inside the window.
	LeftBounded  bool
	RightBounded bool
}

// Merged reports whether the empty run spans more than one day in either
// direction and should be aggregated into a single range page.
func (g GapAnalysis) Merged() bool {
	return g.SkipLeft > 1 || g.SkipRight > 1
}

// AnalyzeGaps computes the navigation skip counts around ref for a
// date-sorted fetch window. Days strictly beyond ref are scanned for the
// first non-empty one; when a direction has none, the skip falls back to
// the window boundary offset by one day, so day-navigation buttons always
// land on content or just past the window.
func AnalyzeGaps(days []api.ScheduleDay, ref time.Time, hiddenMarker string) GapAnalysis {
	g := GapAnalysis{SkipLeft: 1, SkipRight: 1}
	if len(days) == 0 {
		return g
	}

	if skip, ok := countGapDays(days, ref, true, hiddenMarker); ok {
		g.SkipRight = skip
		g.RightBounded = true
	} else if last, err := api.ParseDate(days[len(days)-1].Date); err == nil {
		g.SkipRight = daysBetween(ref, last) + 1
	}

	if skip, ok := countGapDays(days, ref, false, hiddenMarker); ok {
		g.SkipLeft = skip
		g.LeftBounded = true
	} else if first, err := api.ParseDate(days[0].Date); err == nil {
		g.SkipLeft = daysBetween(first, ref) + 1
	}

	return g
}

// countGapDays finds the distance to the nearest non-empty day strictly
// beyond ref in the given direction. ok is false when the window holds
// none.
func countGapDays(days []api.ScheduleDay, ref time.Time, forward bool, hiddenMarker string) (skip int, ok bool) {
	for i := range days {
		day := days[i]
		if !forward {
			day = days[len(days)-1-i]
		}

		date, err := api.ParseDate(day.Date)
		if err != nil {
			continue
		}

		if forward {
			if date.After(ref) && !IsDayEmpty(day, hiddenMarker) {
				return daysBetween(ref, date), true
			}
		} else {
			if date.Before(ref) && !IsDayEmpty(day, hiddenMarker) {
				return daysBetween(date, ref), true
			}
		}
	}
	return 0, false
}

// daysBetween returns the calendar-day distance from a to b (positive
// when b is after a).
func daysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}

// hasExtraText reports whether any period of the day carries an
// announcement, like an online meeting link.
func hasExtraText(day api.ScheduleDay) bool {
	for _, lesson := range day.Lessons {
		for _, period := range lesson.Periods {
			if period.ExtraText {
				return true
			}
		}
	}
	return false
}
