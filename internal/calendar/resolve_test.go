package calendar

import (
	"testing"
	"time"

	"tracky/internal/core"
)

func TestResolveCycleBounds(t *testing.T) {
	cases := []struct {
		name       string
		reference  time.Time
		closingDay int
		wantStart  time.Time
		wantEnd    time.Time
	}{
		{
			"reference after closing rolls to next month",
			NewDate(2024, time.March, 10), 8,
			NewDate(2024, time.March, 9), NewDate(2024, time.April, 8),
		},
		{
			"reference on closing day stays in month",
			NewDate(2024, time.March, 8), 8,
			NewDate(2024, time.February, 9), NewDate(2024, time.March, 8),
		},
		{
			"reference before closing stays in month",
			NewDate(2024, time.March, 5), 8,
			NewDate(2024, time.February, 9), NewDate(2024, time.March, 8),
		},
		{
			"closing day clamped in february",
			NewDate(2024, time.February, 20), 31,
			NewDate(2024, time.February, 1), NewDate(2024, time.February, 29),
		},
		{
			"first of cycle after clamped closing",
			NewDate(2023, time.March, 1), 31,
			NewDate(2023, time.March, 1), NewDate(2023, time.March, 31),
		},
	}
	for _, tc := range cases {
		got := ResolveCycleBounds(tc.reference, tc.closingDay)
		if !got.Start.Equal(tc.wantStart) || !got.End.Equal(tc.wantEnd) {
			t.Fatalf("%s: expected [%v, %v], got [%v, %v]",
				tc.name, tc.wantStart, tc.wantEnd, got.Start, got.End)
		}
	}
}

func TestResolveDueDate(t *testing.T) {
	cases := []struct {
		name       string
		cycleEnd   time.Time
		closingDay int
		dueDay     int
		want       time.Time
	}{
		{
			"due after closing lands in cycle end month",
			NewDate(2024, time.April, 8), 8, 15,
			NewDate(2024, time.April, 15),
		},
		{
			"due on closing day rolls to next month",
			NewDate(2024, time.April, 8), 8, 8,
			NewDate(2024, time.May, 8),
		},
		{
			"due before closing rolls to next month",
			NewDate(2024, time.April, 20), 20, 5,
			NewDate(2024, time.May, 5),
		},
		{
			"clamped cycle end compares against configured closing day",
			NewDate(2024, time.February, 29), 31, 30,
			NewDate(2024, time.March, 30),
		},
		{
			"rolled due day clamps in short month",
			NewDate(2024, time.January, 31), 31, 30,
			NewDate(2024, time.February, 29),
		},
	}
	for _, tc := range cases {
		if got := ResolveDueDate(tc.cycleEnd, tc.closingDay, tc.dueDay); !got.Equal(tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}
}

func TestCycleID(t *testing.T) {
	card := core.Card{ID: "card-1"}
	if got := CycleID(card, NewDate(2024, time.April, 8)); got != "card-1-2024-04-08" {
		t.Fatalf("expected card-1-2024-04-08, got %q", got)
	}
}
