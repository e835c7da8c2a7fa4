package api

import "time"

// ISODateFormat is the calendar date layout used across the API and in
// button payloads.
const ISODateFormat = "2006-01-02"

// DefaultDateRange is the fetch-window bucket size in days.
const DefaultDateRange = 14

// ParseDate parses an ISO-8601 calendar date.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(ISODateFormat, s)
}

// FormatDate renders a calendar date in ISO-8601.
func FormatDate(t time.Time) string {
	return t.Format(ISODateFormat)
}

// DateRange buckets a date into its fetch window of rng days, aligned on
// day-of-year boundaries. For example day-of-year 233 with rng=10 falls
// into days 230..239, i.e. Aug 18 - Aug 28 of a non-leap year. A window
// end past day 365 wraps into the next year; a window start of zero lands
// on the last day of the previous year.
func DateRange(date time.Time, rng int) (from, to time.Time) {
	dayOfYear := date.YearDay()

	fromDay := dayOfYear - dayOfYear%rng
	toDay := fromDay + rng - 1

	yearsDiff := toDay / 365
	toDay = toDay % 365

	from = dateFromYearDay(date.Year(), fromDay)
	to = dateFromYearDay(date.Year()+yearsDiff, toDay)
	return from, to
}

func dateFromYearDay(year, dayOfYear int) time.Time {
	return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC).
		AddDate(0, 0, dayOfYear-1)
}
