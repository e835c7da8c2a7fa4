package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewClient(srv.URL, 5*time.Second, nil)
}

func TestTimetableGroup(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/time-table/group" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("Accept-Language"); got != "en" {
			t.Errorf("Accept-Language = %q, want %q", got, "en")
		}

		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decoding request body: %v", err)
		}
		if body["groupId"] != float64(12345) {
			t.Errorf("groupId = %v, want 12345", body["groupId"])
		}

		_ = json.NewEncoder(w).Encode([]ScheduleDay{
			{Date: "2023-08-21", Lessons: []Lesson{
				{Number: 2, Periods: []Period{{DisciplineShortName: "Math", TypeStr: "Lec"}}},
			}},
		})
	})

	days, err := c.TimetableGroup(context.Background(), 12345, "2023-08-21", "2023-08-21", "en")
	if err != nil {
		t.Fatalf("TimetableGroup() error = %v", err)
	}
	if len(days) != 1 || days[0].Date != "2023-08-21" {
		t.Fatalf("unexpected days: %+v", days)
	}
	if days[0].Lessons[0].Periods[0].DisciplineShortName != "Math" {
		t.Errorf("unexpected period: %+v", days[0].Lessons[0].Periods[0])
	}
}

func TestSearchTeacher(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/other/search-teachers" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}

		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decoding request body: %v", err)
		}
		if body["name"] != "Smith" {
			t.Errorf("name = %v, want Smith", body["name"])
		}

		_ = json.NewEncoder(w).Encode([]TeacherMatch{
			{LastName: "Smith", FirstName: "Jane", PageLink: "https://example.edu/teachers/1"},
		})
	})

	teachers, err := c.SearchTeacher(context.Background(), "Smith")
	if err != nil {
		t.Fatalf("SearchTeacher() error = %v", err)
	}
	if len(teachers) != 1 || teachers[0].LastName != "Smith" {
		t.Fatalf("unexpected teachers: %+v", teachers)
	}
	if teachers[0].PageLink != "https://example.edu/teachers/1" {
		t.Errorf("PageLink = %q", teachers[0].PageLink)
	}
}

func TestErrorClassification(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status int
		want   error
	}{
		{"validation rejected", http.StatusUnprocessableEntity, ErrValidation},
		{"forbidden", http.StatusForbidden, ErrForbidden},
		{"not found", http.StatusNotFound, ErrNotFound},
		{"server error", http.StatusInternalServerError, ErrUnavailable},
		{"bad gateway", http.StatusBadGateway, ErrUnavailable},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
			})

			_, err := c.TimetableGroup(context.Background(), 1, "2023-01-01", "2023-01-01", "")
			if !errors.Is(err, tc.want) {
				t.Errorf("error = %v, want class %v", err, tc.want)
			}
		})
	}
}

func TestTransportFailureIsUnavailable(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // nothing listens anymore

	c := NewClient(srv.URL, time.Second, nil)
	_, err := c.TimetableCallSchedule(context.Background())
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("error = %v, want class %v", err, ErrUnavailable)
	}
}
