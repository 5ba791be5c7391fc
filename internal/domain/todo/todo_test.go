package todo

import (
	"reflect"
	"testing"
	"time"
)

func sampleList() []Todo {
	return []Todo{
		{ID: "a", Title: "first"},
		{ID: "b", Title: "second", Completed: false},
		{ID: "c", Title: "third", Description: "keep me"},
	}
}

func TestReplaceByIDUpdatesOnlyMatch(t *testing.T) {
	list := sampleList()
	updated := Todo{ID: "b", Title: "second", Completed: true}

	got := ReplaceByID(list, updated)

	want := []Todo{
		{ID: "a", Title: "first"},
		{ID: "b", Title: "second", Completed: true},
		{ID: "c", Title: "third", Description: "keep me"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
	if list[1].Completed {
		t.Fatalf("input list must not be mutated")
	}
}

func TestReplaceByIDUnknownIDKeepsList(t *testing.T) {
	list := sampleList()

	got := ReplaceByID(list, Todo{ID: "zzz", Title: "ghost"})

	if !reflect.DeepEqual(got, list) {
		t.Fatalf("got %+v, want unchanged list", got)
	}
}

func TestRemoveByIDRemovesExactlyOne(t *testing.T) {
	got := RemoveByID(sampleList(), "b")

	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "c" {
		t.Fatalf("unexpected list after delete: %+v", got)
	}
}

func TestDueDateColor(t *testing.T) {
	now := time.Date(2025, 9, 10, 12, 0, 0, 0, time.UTC)
	at := func(d time.Duration) *time.Time {
		v := now.Add(d)
		return &v
	}

	tests := []struct {
		name string
		due  *time.Time
		want DueColor
	}{
		{name: "absent", due: nil, want: DueNone},
		{name: "zero", due: &time.Time{}, want: DueNone},
		{name: "long past", due: at(-72 * time.Hour), want: DueDanger},
		{name: "just past", due: at(-time.Minute), want: DueDanger},
		{name: "now", due: at(0), want: DueWarning},
		{name: "in one hour", due: at(time.Hour), want: DueWarning},
		{name: "exactly one day", due: at(24 * time.Hour), want: DueWarning},
		{name: "a day and a bit", due: at(25 * time.Hour), want: DueMedium},
		{name: "next week", due: at(7 * 24 * time.Hour), want: DueMedium},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			if got := DueDateColor(tt.due, now); got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}
