package domain

import (
	"errors"
	"testing"
	"time"
)

func TestScheduleProposition_Select(t *testing.T) {
	a := at(tuesday, 10, 0)
	b := at(tuesday, 15, 0)
	p := &ScheduleProposition{ProposedSlots: []time.Time{a, b}, Status: PropositionPending}

	if err := p.Select(a.Add(time.Minute)); !errors.Is(err, ErrInvalidSelectedSlot) {
		t.Fatalf("expected near miss to be rejected, got %v", err)
	}

	// Same instant in another zone is the same slot.
	if err := p.Select(b.In(time.FixedZone("CET", 3600))); err != nil {
		t.Fatalf("Select: %v", err)
	}
	if p.Status != PropositionAccepted || p.SelectedSlot == nil || !p.SelectedSlot.Equal(b) {
		t.Fatalf("unexpected proposition: %+v", p)
	}

	if err := p.Select(a); !errors.Is(err, ErrPropositionAlreadyProcessed) {
		t.Fatalf("expected second selection to fail, got %v", err)
	}
}

func TestScheduleProposition_SelectIsExactToTheMillisecond(t *testing.T) {
	slot := at(tuesday, 10, 0).Add(123 * time.Millisecond)
	p := &ScheduleProposition{ProposedSlots: []time.Time{slot}, Status: PropositionPending}

	for _, d := range []time.Duration{time.Millisecond, -time.Millisecond} {
		if err := p.Select(slot.Add(d)); !errors.Is(err, ErrInvalidSelectedSlot) {
			t.Fatalf("offset %v: expected ErrInvalidSelectedSlot, got %v", d, err)
		}
	}
	if p.Status != PropositionPending {
		t.Fatalf("rejected selections changed the status to %s", p.Status)
	}
	if err := p.Select(slot); err != nil {
		t.Fatalf("Select: %v", err)
	}
}

func TestRequests_Respond(t *testing.T) {
	sr := &SessionRequest{Status: RequestPending}
	if err := sr.Respond(false); err != nil || sr.Status != RequestRejected {
		t.Fatalf("reject: status=%s err=%v", sr.Status, err)
	}
	if err := sr.Respond(true); !errors.Is(err, ErrRequestAlreadyProcessed) {
		t.Fatalf("expected ErrRequestAlreadyProcessed, got %v", err)
	}

	tr := &TherapyRequest{Status: RequestPending}
	if err := tr.Respond(true); err != nil || tr.Status != RequestAccepted {
		t.Fatalf("accept: status=%s err=%v", tr.Status, err)
	}
}

func TestRole_Grants(t *testing.T) {
	if !RoleAdminPsychologist.IsPsychologist() || !RoleAdminPsychologist.IsAdmin() {
		t.Fatalf("ADMIN_PSYCHOLOGIST must act as admin and psychologist")
	}
	if RolePsychologist.IsAdmin() {
		t.Fatalf("PSYCHOLOGIST must not be admin")
	}
	if RoleConsultant.HasAny(RolePsychologist, RoleAdmin) {
		t.Fatalf("CONSULTANT must not hold staff roles")
	}
	if Role("ROOT").Valid() {
		t.Fatalf("unknown role must be invalid")
	}
}

func TestNotification_DebounceKey(t *testing.T) {
	msg := NewNotification("u1", NotifyNewMessage, map[string]any{"therapy_id": "t1"})
	if msg.DebounceKey() != "u1:t1" {
		t.Fatalf("unexpected key %q", msg.DebounceKey())
	}
	if msg.Title == "" {
		t.Fatalf("expected a title")
	}
	other := NewNotification("u1", NotifySessionScheduled, nil)
	if other.DebounceKey() != "" {
		t.Fatalf("only NEW_MESSAGE is debounced")
	}

	var box Outbox
	box.Add(NotifySessionScheduled, nil, "a", "b", "")
	if len(box) != 2 {
		t.Fatalf("expected empty recipients to be skipped, got %d entries", len(box))
	}
}
