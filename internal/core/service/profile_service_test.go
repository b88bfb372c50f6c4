package service

import (
	"context"
	"errors"
	"testing"

	"github.com/terapia/practice-api/internal/core/domain"
	"github.com/terapia/practice-api/internal/core/ports"
)

func TestPsychologistService_SetMyAvailability(t *testing.T) {
	f := newFixture(t)
	svc := NewPsychologistService(f.store, f.log)
	ctx := context.Background()

	cases := []struct {
		name string
		slot ports.SlotInput
		want error
	}{
		{"bad day", ports.SlotInput{DayOfWeek: 7, StartTime: "09:00", EndTime: "10:00"}, domain.ErrInvalidDayOfWeek},
		{"bad format", ports.SlotInput{DayOfWeek: 1, StartTime: "9am", EndTime: "10:00"}, domain.ErrInvalidTimeFormat},
		{"inverted", ports.SlotInput{DayOfWeek: 1, StartTime: "10:00", EndTime: "09:00"}, domain.ErrInvalidTimeRange},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.SetMyAvailability(ctx, f.psychologist.UserID, []ports.SlotInput{
				{DayOfWeek: 2, StartTime: "08:00", EndTime: "12:00"},
				tc.slot,
			})
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}

	// A rejected batch leaves the old slots untouched.
	slots, err := svc.MyAvailability(ctx, f.psychologist.UserID)
	if err != nil || len(slots) != 1 || slots[0].EndTime != "18:00" {
		t.Fatalf("availability changed after a rejected batch: %+v (%v)", slots, err)
	}

	slots, err = svc.SetMyAvailability(ctx, f.psychologist.UserID, []ports.SlotInput{
		{DayOfWeek: 1, StartTime: "9:00", EndTime: "13:00"},
		{DayOfWeek: 1, StartTime: "11:00", EndTime: "12:00", Type: domain.SlotBlocked},
	})
	if err != nil {
		t.Fatalf("SetMyAvailability: %v", err)
	}
	if len(slots) != 2 || slots[0].StartTime != "09:00" {
		t.Fatalf("unexpected slots: %+v", slots)
	}
}

func TestPsychologistService_UpdateMyProfile(t *testing.T) {
	f := newFixture(t)
	svc := NewPsychologistService(f.store, f.log)
	ctx := context.Background()

	negative := -1.0
	if _, err := svc.UpdateMyProfile(ctx, f.psychologist.UserID, ports.PsychologistProfileInput{SessionFee: &negative}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}

	fee, bio := 750.0, "CBT"
	if _, err := svc.UpdateMyProfile(ctx, f.psychologist.UserID, ports.PsychologistProfileInput{
		SessionFee:      &fee,
		Bio:             &bio,
		Specializations: []string{"anxiety", "grief"},
	}); err != nil {
		t.Fatalf("UpdateMyProfile: %v", err)
	}

	got, err := svc.Get(ctx, f.psychologist.UserID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Fee() != 750 || got.Bio != "CBT" || len(got.Specializations) != 2 || len(got.Slots) != 1 {
		t.Fatalf("unexpected profile: %+v", got)
	}

	page, err := svc.List(ctx, domain.PageRequest{Page: 1, PerPage: 10})
	if err != nil || page.Total != 1 || page.Items[0].User == nil {
		t.Fatalf("List: %+v (%v)", page, err)
	}
}
