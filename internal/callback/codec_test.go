package callback

import (
	"reflect"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		actionName string
		args       map[string]string
	}{
		{"no args", "open.menu", map[string]string{}},
		{"single arg", "open.schedule.day", map[string]string{"date": "2023-08-21"}},
		{
			"multiple args",
			"select.schedule.course",
			map[string]string{"structureId": "1", "facultyId": "3", "course": "2"},
		},
		{"empty value", "set.cl_notif", map[string]string{"time": "15m", "state": ""}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := Decode(Encode(tc.actionName, tc.args))
			if got.Name != tc.actionName {
				t.Errorf("Decode(Encode()).Name = %q, want %q", got.Name, tc.actionName)
			}
			if !reflect.DeepEqual(got.Args, tc.args) {
				t.Errorf("Decode(Encode()).Args = %v, want %v", got.Args, tc.args)
			}
		})
	}
}

func TestEncodeDeterministic(t *testing.T) {
	t.Parallel()

	args := map[string]string{"facultyId": "3", "course": "2", "structureId": "1"}
	want := "select.schedule.course#course=2&facultyId=3&structureId=1"
	for range 10 {
		if got := Encode("select.schedule.course", args); got != want {
			t.Fatalf("Encode() = %q, want %q", got, want)
		}
	}
}

func TestDecode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		want Action
	}{
		{
			"bare name",
			"open.menu",
			Action{Name: "open.menu", Args: map[string]string{}},
		},
		{
			"bare flag argument",
			"open.schedule.day#week&date=2023-08-21",
			Action{Name: "open.schedule.day", Args: map[string]string{"week": "", "date": "2023-08-21"}},
		},
		{
			"trailing hash",
			"open.menu#",
			Action{Name: "open.menu", Args: map[string]string{}},
		},
		{
			"empty string",
			"",
			Action{Name: "", Args: map[string]string{}},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := Decode(tc.raw)
			if got.Name != tc.want.Name || !reflect.DeepEqual(got.Args, tc.want.Args) {
				t.Errorf("Decode(%q) = %+v, want %+v", tc.raw, got, tc.want)
			}
		})
	}
}
