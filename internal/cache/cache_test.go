package cache

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/rozkladbot/rozkladbot/internal/api"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()

	c, err := New(filepath.Join(t.TempDir(), "cache.db"), slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestScheduleRangeHitAndMiss(t *testing.T) {
	t.Parallel()

	c := newTestCache(t)
	ctx := context.Background()

	days := []api.ScheduleDay{
		{Date: "2023-08-21", Lessons: []api.Lesson{{Number: 1}}},
		{Date: "2023-08-22", Lessons: []api.Lesson{}},
		{Date: "2023-08-23", Lessons: []api.Lesson{{Number: 3}}},
	}
	if err := c.PutScheduleDays(ctx, 555, "uk", days); err != nil {
		t.Fatalf("PutScheduleDays() error = %v", err)
	}

	got, ok, err := c.GetScheduleRange(ctx, 555, "uk", "2023-08-21", "2023-08-23", time.Hour)
	if err != nil {
		t.Fatalf("GetScheduleRange() error = %v", err)
	}
	if !ok {
		t.Fatal("expected a cache hit for a fully covered range")
	}
	if len(got) != 3 || got[0].Date != "2023-08-21" || got[0].Lessons[0].Number != 1 {
		t.Errorf("unexpected cached days: %+v", got)
	}

	// Range extending past the stored window is a miss.
	_, ok, err = c.GetScheduleRange(ctx, 555, "uk", "2023-08-21", "2023-08-24", time.Hour)
	if err != nil {
		t.Fatalf("GetScheduleRange() error = %v", err)
	}
	if ok {
		t.Error("expected a miss for a partially covered range")
	}

	// Different language is a miss.
	_, ok, _ = c.GetScheduleRange(ctx, 555, "en", "2023-08-21", "2023-08-23", time.Hour)
	if ok {
		t.Error("expected a miss for another language")
	}
}

func TestGroupDirectory(t *testing.T) {
	t.Parallel()

	c := newTestCache(t)
	ctx := context.Background()

	err := c.AddGroups(ctx, 3, 2, []api.Group{{ID: 100, Name: "CS-21", Course: 2}})
	if err != nil {
		t.Fatalf("AddGroups() error = %v", err)
	}

	g, err := c.GetGroup(ctx, 100)
	if err != nil {
		t.Fatalf("GetGroup() error = %v", err)
	}
	if g == nil || g.Name != "CS-21" {
		t.Errorf("GetGroup() = %+v, want CS-21", g)
	}

	missing, err := c.GetGroup(ctx, 999)
	if err != nil {
		t.Fatalf("GetGroup() error = %v", err)
	}
	if missing != nil {
		t.Errorf("GetGroup(999) = %+v, want nil", missing)
	}
}

func TestTeacherDirectory(t *testing.T) {
	t.Parallel()

	c := newTestCache(t)
	ctx := context.Background()

	ref := TeacherRef{FullName: "Jane Smith", PageLink: "https://example.edu/teachers/1"}
	if err := c.PutTeacher(ctx, "jane smith", ref); err != nil {
		t.Fatalf("PutTeacher() error = %v", err)
	}

	got, err := c.FindTeacher(ctx, "jane smith")
	if err != nil {
		t.Fatalf("FindTeacher() error = %v", err)
	}
	if got == nil || got.PageLink != ref.PageLink {
		t.Errorf("FindTeacher() = %+v, want %+v", got, ref)
	}

	none, err := c.FindTeacher(ctx, "nobody")
	if err != nil {
		t.Fatalf("FindTeacher() error = %v", err)
	}
	if none != nil {
		t.Errorf("FindTeacher(nobody) = %+v, want nil", none)
	}
}

func TestClear(t *testing.T) {
	t.Parallel()

	c := newTestCache(t)
	ctx := context.Background()

	_ = c.AddGroups(ctx, 1, 1, []api.Group{{ID: 1, Name: "A-11"}})
	if err := c.Clear(ctx); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}

	g, err := c.GetGroup(ctx, 1)
	if err != nil {
		t.Fatalf("GetGroup() error = %v", err)
	}
	if g != nil {
		t.Errorf("GetGroup() after Clear = %+v, want nil", g)
	}
}
