package api

import (
	"testing"
	"time"
)

func TestDateRange(t *testing.T) {
	t.Parallel()

	day := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}

	tests := []struct {
		name     string
		date     time.Time
		rng      int
		wantFrom time.Time
		wantTo   time.Time
	}{
		{
			// Day-of-year 233 in a non-leap year: from=230, to=239.
			name:     "mid august bucket of ten days",
			date:     day(2023, time.August, 21),
			rng:      10,
			wantFrom: day(2023, time.August, 18),
			wantTo:   day(2023, time.August, 27),
		},
		{
			// Day 233 with rng=14: from=224, to=237.
			name:     "default bucket size",
			date:     day(2023, time.August, 21),
			rng:      DefaultDateRange,
			wantFrom: day(2023, time.August, 12),
			wantTo:   day(2023, time.August, 25),
		},
		{
			// Day 364 with rng=10: from=360, to=369 wraps to day 4 of next year.
			name:     "window end wraps into next year",
			date:     day(2023, time.December, 30),
			rng:      10,
			wantFrom: day(2023, time.December, 26),
			wantTo:   day(2024, time.January, 4),
		},
		{
			// Day 5 with rng=10: from=0 lands on Dec 31 of the previous year.
			name:     "window start before day one",
			date:     day(2023, time.January, 5),
			rng:      10,
			wantFrom: day(2022, time.December, 31),
			wantTo:   day(2023, time.January, 9),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			from, to := DateRange(tc.date, tc.rng)
			if !from.Equal(tc.wantFrom) {
				t.Errorf("DateRange() from = %s, want %s", FormatDate(from), FormatDate(tc.wantFrom))
			}
			if !to.Equal(tc.wantTo) {
				t.Errorf("DateRange() to = %s, want %s", FormatDate(to), FormatDate(tc.wantTo))
			}
		})
	}
}

func TestParseDateRoundTrip(t *testing.T) {
	t.Parallel()

	d, err := ParseDate("2023-08-21")
	if err != nil {
		t.Fatalf("ParseDate() error = %v", err)
	}
	if got := FormatDate(d); got != "2023-08-21" {
		t.Errorf("FormatDate() = %q, want %q", got, "2023-08-21")
	}
}
