package pages

import (
	"testing"
	"time"

	"github.com/rozkladbot/rozkladbot/internal/api"
)

const testHiddenMarker = "приховано"

func day(date string, disciplines ...string) api.ScheduleDay {
	d := api.ScheduleDay{Date: date}
	for i, name := range disciplines {
		d.Lessons = append(d.Lessons, api.Lesson{
			Number:  i + 1,
			Periods: []api.Period{{DisciplineShortName: name}},
		})
	}
	return d
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	parsed, err := api.ParseDate(s)
	if err != nil {
		t.Fatalf("ParseDate(%q): %v", s, err)
	}
	return parsed
}

func TestIsDayEmpty(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		day  api.ScheduleDay
		want bool
	}{
		{
			name: "no lessons",
			day:  day("2023-08-21"),
			want: true,
		},
		{
			name: "visible lesson",
			day:  day("2023-08-21", "Математика"),
			want: false,
		},
		{
			name: "all periods hidden",
			day:  day("2023-08-21", "Приховано 1", "ПРИХОВАНО 2"),
			want: true,
		},
		{
			name: "one visible among hidden",
			day:  day("2023-08-21", "приховано", "Фізика"),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := IsDayEmpty(tt.day, testHiddenMarker); got != tt.want {
				t.Errorf("IsDayEmpty() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAnalyzeGaps(t *testing.T) {
	t.Parallel()

	window := []api.ScheduleDay{
		day("2023-08-18", "Математика"),
		day("2023-08-19"),
		day("2023-08-20"),
		day("2023-08-21"),
		day("2023-08-22"),
		day("2023-08-23"),
		day("2023-08-24", "Фізика"),
	}

	tests := []struct {
		name          string
		days          []api.ScheduleDay
		ref           string
		wantSkipLeft  int
		wantSkipRight int
		wantLeftOK    bool
		wantRightOK   bool
	}{
		{
			name:          "bounded both directions",
			days:          window,
			ref:           "2023-08-21",
			wantSkipLeft:  3,
			wantSkipRight: 3,
			wantLeftOK:    true,
			wantRightOK:   true,
		},
		{
			name: "unbounded both directions",
			days: []api.ScheduleDay{
				day("2023-08-19"),
				day("2023-08-20"),
				day("2023-08-21"),
				day("2023-08-22"),
				day("2023-08-23"),
			},
			ref:           "2023-08-21",
			wantSkipLeft:  3,
			wantSkipRight: 3,
		},
		{
			name: "hidden periods count as empty",
			days: []api.ScheduleDay{
				day("2023-08-20", "приховано"),
				day("2023-08-21"),
				day("2023-08-22", "Приховано"),
				day("2023-08-23", "Хімія"),
			},
			ref:           "2023-08-21",
			wantSkipLeft:  2,
			wantSkipRight: 2,
			wantRightOK:   true,
		},
		{
			name:          "empty window",
			days:          nil,
			ref:           "2023-08-21",
			wantSkipLeft:  1,
			wantSkipRight: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := AnalyzeGaps(tt.days, mustDate(t, tt.ref), testHiddenMarker)
			if got.SkipLeft != tt.wantSkipLeft || got.SkipRight != tt.wantSkipRight {
				t.Errorf("skips = (%d, %d), want (%d, %d)",
					got.SkipLeft, got.SkipRight, tt.wantSkipLeft, tt.wantSkipRight)
			}
			if got.LeftBounded != tt.wantLeftOK || got.RightBounded != tt.wantRightOK {
				t.Errorf("bounded = (%v, %v), want (%v, %v)",
					got.LeftBounded, got.RightBounded, tt.wantLeftOK, tt.wantRightOK)
			}
		})
	}
}

func TestGapAnalysisMerged(t *testing.T) {
	t.Parallel()

	if (GapAnalysis{SkipLeft: 1, SkipRight: 1}).Merged() {
		t.Error("single-day gap should not merge")
	}
	if !(GapAnalysis{SkipLeft: 1, SkipRight: 2}).Merged() {
		t.Error("two-day gap should merge")
	}
	if !(GapAnalysis{SkipLeft: 4, SkipRight: 1}).Merged() {
		t.Error("backward run should merge")
	}
}

func TestHasExtraText(t *testing.T) {
	t.Parallel()

	plain := day("2023-08-21", "Математика")
	if hasExtraText(plain) {
		t.Error("hasExtraText() = true for a day without announcements")
	}

	withExtra := day("2023-08-21", "Математика")
	withExtra.Lessons[0].Periods[0].ExtraText = true
	if !hasExtraText(withExtra) {
		t.Error("hasExtraText() = false for a day with an announcement")
	}
	if hasExtraText(plain) {
		t.Error("hasExtraText() mutated an unrelated day")
	}
}
