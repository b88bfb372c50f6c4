package domain

import (
	"errors"
	"testing"
	"time"
)

func TestRecurrence_WeeklyFromTuesday(t *testing.T) {
	n := 4
	c := RecurrenceConfiguration{
		DayOfWeek:     2,
		StartTime:     "10:00",
		Duration:      60,
		Frequency:     FrequencyWeekly,
		SessionsCount: &n,
		StartDate:     tuesday,
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	got := c.Schedule()
	want := []time.Time{
		at(tuesday, 10, 0),
		at(tuesday.AddDate(0, 0, 7), 10, 0),
		at(tuesday.AddDate(0, 0, 14), 10, 0),
		at(tuesday.AddDate(0, 0, 21), 10, 0),
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d sessions, got %d", len(want), len(got))
	}
	for i := range want {
		if !got[i].Equal(want[i]) {
			t.Fatalf("session %d: got %s, want %s", i, got[i], want[i])
		}
	}
}

func TestRecurrence_FirstOccurrenceAdvances(t *testing.T) {
	// Wednesday start rolls forward to the following Monday.
	c := RecurrenceConfiguration{DayOfWeek: 1, StartTime: "08:30", Frequency: FrequencyBiweekly, StartDate: tuesday.AddDate(0, 0, 1)}
	first := c.FirstOccurrence()
	want := time.Date(2025, 1, 13, 8, 30, 0, 0, time.UTC)
	if !first.Equal(want) {
		t.Fatalf("got %s, want %s", first, want)
	}

	sched := c.Schedule()
	if len(sched) != DefaultRecurrenceOccurrences {
		t.Fatalf("expected default %d occurrences, got %d", DefaultRecurrenceOccurrences, len(sched))
	}
	if d := sched[1].Sub(sched[0]); d != 14*24*time.Hour {
		t.Fatalf("expected biweekly spacing, got %s", d)
	}
}

func TestRecurrence_Validate(t *testing.T) {
	zero := 0
	cases := []struct {
		name string
		c    RecurrenceConfiguration
		want error
	}{
		{"bad day", RecurrenceConfiguration{DayOfWeek: 9, StartTime: "10:00", Frequency: FrequencyWeekly, StartDate: tuesday}, ErrInvalidDayOfWeek},
		{"bad time", RecurrenceConfiguration{DayOfWeek: 2, StartTime: "25:00", Frequency: FrequencyWeekly, StartDate: tuesday}, ErrInvalidTimeFormat},
		{"bad frequency", RecurrenceConfiguration{DayOfWeek: 2, StartTime: "10:00", Frequency: "DAILY", StartDate: tuesday}, ErrInvalidRecurrence},
		{"zero count", RecurrenceConfiguration{DayOfWeek: 2, StartTime: "10:00", Frequency: FrequencyWeekly, StartDate: tuesday, SessionsCount: &zero}, ErrInvalidRecurrence},
		{"no start", RecurrenceConfiguration{DayOfWeek: 2, StartTime: "10:00", Frequency: FrequencyWeekly}, ErrInvalidRecurrence},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.c.Validate(); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestRecurrence_BlockedSlot(t *testing.T) {
	c := RecurrenceConfiguration{TherapyID: "t1", DayOfWeek: 2, StartTime: "10:00", Duration: 50}
	slot, err := c.BlockedSlot("p1")
	if err != nil {
		t.Fatalf("BlockedSlot: %v", err)
	}
	if slot.Type != SlotBlocked || slot.StartTime != "10:00" || slot.EndTime != "10:50" {
		t.Fatalf("unexpected slot: %+v", slot)
	}
	if slot.TherapyID == nil || *slot.TherapyID != "t1" {
		t.Fatalf("expected slot owned by therapy, got %v", slot.TherapyID)
	}
}
