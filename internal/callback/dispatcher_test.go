package callback

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDispatchFirstMatchWins(t *testing.T) {
	t.Parallel()

	var fired []string
	record := func(name string) Handler {
		return func(context.Context, *bot.Bot, *models.Update, Action) {
			fired = append(fired, name)
		}
	}

	d := NewDispatcher(discardLogger(), record("fallback"), nil)
	d.Register("open.schedule.extra", record("extra"))
	d.Register("open.schedule", record("schedule"))
	d.Register("open", record("open"))

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"longest registered first", "open.schedule.extra#date=2023-08-21", "extra"},
		{"middle rule", "open.schedule.day#date=2023-08-21", "schedule"},
		{"shortest rule", "open.menu", "open"},
		{"no match falls back", "select.lang#lang=en", "fallback"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fired = nil
			d.Dispatch(context.Background(), nil, nil, tc.raw)
			if len(fired) != 1 || fired[0] != tc.want {
				t.Errorf("Dispatch(%q) fired %v, want exactly [%s]", tc.raw, fired, tc.want)
			}
		})
	}
}

func TestDispatchRegistrationOrderIsPriority(t *testing.T) {
	t.Parallel()

	var fired string
	record := func(name string) Handler {
		return func(context.Context, *bot.Bot, *models.Update, Action) { fired = name }
	}

	// A broad rule registered first shadows a narrower one registered
	// later; that ordering is the contract, not an accident.
	d := NewDispatcher(discardLogger(), nil, nil)
	d.Register("open", record("broad"))
	d.Register("open.schedule", record("narrow"))

	d.Dispatch(context.Background(), nil, nil, "open.schedule.day#date=2023-08-21")
	if fired != "broad" {
		t.Errorf("fired %q, want %q", fired, "broad")
	}
}

func TestDispatchContainsPanic(t *testing.T) {
	t.Parallel()

	panicked := false
	d := NewDispatcher(discardLogger(), nil, func(context.Context, *bot.Bot, *models.Update, Action) {
		panicked = true
	})
	d.Register("open.menu", func(context.Context, *bot.Bot, *models.Update, Action) {
		panic("boom")
	})

	d.Dispatch(context.Background(), nil, nil, "open.menu")
	if !panicked {
		t.Error("onPanic handler did not run after handler panic")
	}

	// The dispatcher must stay usable afterwards.
	var fired bool
	d.Register("open.settings", func(context.Context, *bot.Bot, *models.Update, Action) {
		fired = true
	})
	d.Dispatch(context.Background(), nil, nil, "open.settings")
	if !fired {
		t.Error("dispatcher unusable after a contained panic")
	}
}
