package domain

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func newScheduled() *TherapySession {
	fee := 600.0
	s := NewSession(&Therapy{ID: "t1", BillingPlan: &BillingPlan{DefaultFee: fee}}, at(tuesday, 10, 0), 0, "")
	return &s
}

func TestNewSession_Defaults(t *testing.T) {
	s := newScheduled()
	if s.Status != SessionScheduled {
		t.Fatalf("expected SCHEDULED, got %s", s.Status)
	}
	if s.Duration != DefaultSessionDuration {
		t.Fatalf("expected default duration, got %d", s.Duration)
	}
	if s.Type != SessionInitial {
		t.Fatalf("expected INITIAL, got %s", s.Type)
	}
	if s.SessionFee == nil || *s.SessionFee != 600 {
		t.Fatalf("expected fee from billing plan, got %v", s.SessionFee)
	}
}

func TestTherapySession_CompleteTwice(t *testing.T) {
	s := newScheduled()
	if err := s.Complete(); err != nil {
		t.Fatalf("first Complete: %v", err)
	}
	err := s.Complete()
	if !errors.Is(err, ErrInvalidSessionStatus) {
		t.Fatalf("expected ErrInvalidSessionStatus, got %v", err)
	}
	if !strings.Contains(err.Error(), string(SessionCompleted)) {
		t.Fatalf("expected message to name the current status, got %q", err.Error())
	}
}

func TestTherapySession_Cancel(t *testing.T) {
	s := newScheduled()
	now := time.Now()
	if err := s.Cancel("u1", now, "sick"); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if s.Status != SessionCancelled || s.CancelledBy == nil || *s.CancelledBy != "u1" || s.CancelReason != "sick" {
		t.Fatalf("unexpected cancelled session: %+v", s)
	}
	if err := s.Postpone(now); !errors.Is(err, ErrInvalidSessionStatus) {
		t.Fatalf("expected cancelled session to reject postpone, got %v", err)
	}
}

func TestTherapySession_PostponeRoundTrip(t *testing.T) {
	s := newScheduled()
	original := s.ScheduledAt
	to := at(tuesday.AddDate(0, 0, 7), 11, 0)

	if err := s.Postpone(to); err != nil {
		t.Fatalf("Postpone: %v", err)
	}
	if s.Status != SessionPostponed || !s.ScheduledAt.Equal(original) {
		t.Fatalf("postpone must stage without moving scheduled_at: %+v", s)
	}
	if err := s.Complete(); !errors.Is(err, ErrInvalidSessionStatus) {
		t.Fatalf("expected postponed session to reject complete, got %v", err)
	}
	if err := s.ConfirmPostpone(); err != nil {
		t.Fatalf("ConfirmPostpone: %v", err)
	}
	if s.Status != SessionScheduled || !s.ScheduledAt.Equal(to) || s.PostponedTo != nil {
		t.Fatalf("unexpected confirmed session: %+v", s)
	}
}

func TestTherapySession_ConfirmWithoutPostpone(t *testing.T) {
	s := newScheduled()
	if err := s.ConfirmPostpone(); !errors.Is(err, ErrInvalidSessionStatus) {
		t.Fatalf("expected ErrInvalidSessionStatus, got %v", err)
	}
}

func TestTherapySession_ResolveFee(t *testing.T) {
	plan := &BillingPlan{DefaultFee: 450}
	s := TherapySession{}
	if got := s.ResolveFee(plan); got != 450 {
		t.Fatalf("expected plan fee, got %v", got)
	}
	override := 300.0
	s.SessionFee = &override
	if got := s.ResolveFee(plan); got != 300 {
		t.Fatalf("expected override, got %v", got)
	}
	if got := (&TherapySession{}).ResolveFee(nil); got != 0 {
		t.Fatalf("expected 0 without plan, got %v", got)
	}
}
