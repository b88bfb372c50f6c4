package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/terapia/practice-api/internal/core/domain"
	"github.com/terapia/practice-api/internal/core/ports"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := OpenSQLite(":memory:", zerolog.Nop())
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return NewStore(db)
}

func seedUser(t *testing.T, s *Store, email string, role domain.Role) *domain.User {
	t.Helper()
	u := &domain.User{Email: email, Name: email, PasswordHash: "x", Role: role}
	if err := s.Repos().Users.Create(context.Background(), u); err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return u
}

func seedTherapy(t *testing.T, s *Store, psychologistID, consultantID string, status domain.TherapyStatus) *domain.Therapy {
	t.Helper()
	th := &domain.Therapy{
		PsychologistID: psychologistID,
		ConsultantID:   consultantID,
		Origin:         domain.OriginPsychologistInitiated,
		Status:         status,
		Modality:       domain.DefaultModality,
		BillingPlan:    &domain.BillingPlan{BillingType: domain.BillingPerSession, DefaultFee: 700},
	}
	if err := s.Repos().Therapies.Create(context.Background(), th); err != nil {
		t.Fatalf("create therapy: %v", err)
	}
	return th
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	s := newTestStore(t)
	seedUser(t, s, "ana@example.com", domain.RolePsychologist)

	err := s.Repos().Users.Create(context.Background(), &domain.User{Email: "ana@example.com", Role: domain.RoleConsultant})
	if !errors.Is(err, domain.ErrEmailAlreadyRegistered) {
		t.Fatalf("expected ErrEmailAlreadyRegistered, got %v", err)
	}
}

func TestTherapyRepository_OneActivePerConsultant(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	psy := seedUser(t, s, "psy@example.com", domain.RolePsychologist)
	con := seedUser(t, s, "con@example.com", domain.RoleConsultant)

	first := seedTherapy(t, s, psy.ID, con.ID, domain.TherapyActive)
	if first.BillingPlan == nil || first.BillingPlan.TherapyID != first.ID {
		t.Fatalf("billing plan not linked: %+v", first.BillingPlan)
	}

	second := &domain.Therapy{PsychologistID: psy.ID, ConsultantID: con.ID, Status: domain.TherapyActive, Origin: domain.OriginConsultantInitiated}
	if err := s.Repos().Therapies.Create(ctx, second); !errors.Is(err, domain.ErrConsultantHasActiveTherapy) {
		t.Fatalf("expected ErrConsultantHasActiveTherapy, got %v", err)
	}

	// PENDING therapies are unconstrained, promoting one is not.
	pending := seedTherapy(t, s, psy.ID, con.ID, domain.TherapyPending)
	pending.Status = domain.TherapyActive
	if err := s.Repos().Therapies.Update(ctx, pending); !errors.Is(err, domain.ErrConsultantHasActiveTherapy) {
		t.Fatalf("expected promotion to conflict, got %v", err)
	}

	// A soft-deleted therapy frees the slot.
	if err := s.Repos().Therapies.Delete(ctx, first.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Repos().Therapies.FindByID(ctx, first.ID); !errors.Is(err, domain.ErrTherapyNotFound) {
		t.Fatalf("deleted therapy still visible: %v", err)
	}
	if err := s.Repos().Therapies.Update(ctx, pending); err != nil {
		t.Fatalf("promotion after delete: %v", err)
	}
	active, err := s.Repos().Therapies.HasActive(ctx, con.ID)
	if err != nil || !active {
		t.Fatalf("HasActive = %v, %v", active, err)
	}
}

func TestStore_WithinTxRollsBack(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	boom := errors.New("boom")

	err := s.WithinTx(ctx, func(tx ports.Repositories) error {
		if err := tx.Users.Create(ctx, &domain.User{Email: "tx@example.com", Role: domain.RoleConsultant}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if _, err := s.Repos().Users.FindByEmail(ctx, "tx@example.com"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected rollback, got %v", err)
	}
}

func TestSessionRepository_ListAndRecurrentCleanup(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	psy := seedUser(t, s, "psy@example.com", domain.RolePsychologist)
	con := seedUser(t, s, "con@example.com", domain.RoleConsultant)
	th := seedTherapy(t, s, psy.ID, con.ID, domain.TherapyActive)

	base := time.Date(2025, 1, 7, 10, 0, 0, 0, time.UTC)
	custom := 900.0
	sessions := []domain.TherapySession{
		domain.NewSession(th, base, 50, domain.SessionRecurrent),
		domain.NewSession(th, base.AddDate(0, 0, 7), 50, domain.SessionRecurrent),
		domain.NewSession(th, base.AddDate(0, 0, 14), 50, domain.SessionExtraordinary),
	}
	sessions[0].SessionFee = nil
	sessions[2].SessionFee = &custom
	if err := s.Repos().Sessions.CreateBatch(ctx, sessions); err != nil {
		t.Fatalf("CreateBatch: %v", err)
	}

	views, total, err := s.Repos().Sessions.List(ctx, ports.SessionFilter{ConsultantID: con.ID, Page: domain.PageRequest{Page: 1, PerPage: 10}})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 3 || len(views) != 3 {
		t.Fatalf("expected 3 sessions, got total=%d len=%d", total, len(views))
	}
	if !views[0].ScheduledAt.Equal(base) {
		t.Fatalf("expected chronological order, first is %s", views[0].ScheduledAt)
	}
	if views[0].EffectiveFee != 700 || views[2].EffectiveFee != 900 {
		t.Fatalf("unexpected fees %.0f and %.0f", views[0].EffectiveFee, views[2].EffectiveFee)
	}
	if views[0].PsychologistID != psy.ID || views[0].Consultant == nil {
		t.Fatalf("participants not joined: %+v", views[0])
	}

	n, err := s.Repos().Sessions.DeleteScheduledRecurrentFrom(ctx, th.ID, base.Add(time.Hour))
	if err != nil {
		t.Fatalf("DeleteScheduledRecurrentFrom: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected only the future recurrent session to go, removed %d", n)
	}
}

func TestSessionNoteRepository_ListVisible(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	psy := seedUser(t, s, "psy@example.com", domain.RolePsychologist)
	con := seedUser(t, s, "con@example.com", domain.RoleConsultant)
	th := seedTherapy(t, s, psy.ID, con.ID, domain.TherapyActive)
	session := domain.NewSession(th, time.Date(2025, 1, 7, 10, 0, 0, 0, time.UTC), 0, domain.SessionInitial)
	if err := s.Repos().Sessions.Create(ctx, &session); err != nil {
		t.Fatalf("create session: %v", err)
	}

	notes := s.Repos().SessionNotes
	for _, n := range []*domain.SessionNote{
		{SessionID: session.ID, AuthorID: psy.ID, Content: "shared"},
		{SessionID: session.ID, AuthorID: psy.ID, Content: "mine", IsPrivate: true},
		{SessionID: session.ID, AuthorID: con.ID, Content: "theirs", IsPrivate: true},
	} {
		if err := notes.Create(ctx, n); err != nil {
			t.Fatalf("create note: %v", err)
		}
	}

	visible, err := notes.ListVisible(ctx, session.ID, psy.ID)
	if err != nil {
		t.Fatalf("ListVisible: %v", err)
	}
	if len(visible) != 2 {
		t.Fatalf("expected 2 visible notes, got %d", len(visible))
	}
	for _, n := range visible {
		if n.Content == "theirs" {
			t.Fatalf("private note of another author leaked")
		}
	}
}

func TestAvailabilityRepository_ReplaceManagedKeepsTherapyBlocks(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	psy := seedUser(t, s, "psy@example.com", domain.RolePsychologist)
	profile := &domain.PsychologistProfile{UserID: psy.ID}
	if err := s.Repos().Psychologists.Create(ctx, profile); err != nil {
		t.Fatalf("create profile: %v", err)
	}

	repo := s.Repos().Availability
	therapyID := "therapy-1"
	block := &domain.AvailabilitySlot{ProfileID: profile.ID, DayOfWeek: 2, StartTime: "10:00", EndTime: "10:50", Type: domain.SlotBlocked, TherapyID: &therapyID}
	if err := repo.ReplaceTherapyBlock(ctx, block); err != nil {
		t.Fatalf("ReplaceTherapyBlock: %v", err)
	}
	// Re-running replaces rather than stacks.
	block.StartTime, block.EndTime = "11:00", "11:50"
	if err := repo.ReplaceTherapyBlock(ctx, block); err != nil {
		t.Fatalf("ReplaceTherapyBlock again: %v", err)
	}

	if err := repo.ReplaceManaged(ctx, profile.ID, []domain.AvailabilitySlot{
		{DayOfWeek: 2, StartTime: "08:00", EndTime: "18:00", Type: domain.SlotAvailable},
	}); err != nil {
		t.Fatalf("ReplaceManaged: %v", err)
	}
	if err := repo.ReplaceManaged(ctx, profile.ID, []domain.AvailabilitySlot{
		{DayOfWeek: 3, StartTime: "09:00", EndTime: "12:00", Type: domain.SlotAvailable},
	}); err != nil {
		t.Fatalf("ReplaceManaged again: %v", err)
	}

	slots, err := repo.ListByProfile(ctx, profile.ID)
	if err != nil {
		t.Fatalf("ListByProfile: %v", err)
	}
	if len(slots) != 2 {
		t.Fatalf("expected block plus one managed slot, got %+v", slots)
	}
	if slots[0].TherapyID == nil || slots[0].StartTime != "11:00" {
		t.Fatalf("unexpected therapy block %+v", slots[0])
	}
	if slots[1].DayOfWeek != 3 {
		t.Fatalf("old managed slots survived: %+v", slots[1])
	}
}

func TestConsultantRepository_OnboardingDataRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	con := seedUser(t, s, "con@example.com", domain.RoleConsultant)

	p := domain.NewConsultantProfile(con.ID)
	if err := s.Repos().Consultants.Create(ctx, p); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := p.SubmitStep(1, json.RawMessage(`{"reason":"anxiety"}`)); err != nil {
		t.Fatalf("SubmitStep: %v", err)
	}
	if err := s.Repos().Consultants.Update(ctx, p); err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, err := s.Repos().Consultants.FindByUserID(ctx, con.ID)
	if err != nil {
		t.Fatalf("FindByUserID: %v", err)
	}
	if got.OnboardingStep != 2 {
		t.Fatalf("expected step 2, got %d", got.OnboardingStep)
	}
	var step1 map[string]string
	if err := json.Unmarshal(got.OnboardingData[domain.StepKey(1)], &step1); err != nil || step1["reason"] != "anxiety" {
		t.Fatalf("onboarding data lost: %s (%v)", got.OnboardingData[domain.StepKey(1)], err)
	}
}

func TestTherapyRepository_UpsertRecurrenceKeepsID(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	psy := seedUser(t, s, "psy@example.com", domain.RolePsychologist)
	con := seedUser(t, s, "con@example.com", domain.RoleConsultant)
	th := seedTherapy(t, s, psy.ID, con.ID, domain.TherapyActive)
	four, six := 4, 6

	cfg := &domain.RecurrenceConfiguration{TherapyID: th.ID, DayOfWeek: 2, StartTime: "10:00", Duration: 50, Frequency: domain.FrequencyWeekly, StartDate: time.Date(2025, 1, 7, 0, 0, 0, 0, time.UTC), SessionsCount: &four}
	if err := s.Repos().Therapies.UpsertRecurrence(ctx, cfg); err != nil {
		t.Fatalf("UpsertRecurrence: %v", err)
	}
	firstID := cfg.ID

	cfg2 := &domain.RecurrenceConfiguration{TherapyID: th.ID, DayOfWeek: 4, StartTime: "16:00", Duration: 60, Frequency: domain.FrequencyBiweekly, StartDate: time.Date(2025, 1, 9, 0, 0, 0, 0, time.UTC), SessionsCount: &six}
	if err := s.Repos().Therapies.UpsertRecurrence(ctx, cfg2); err != nil {
		t.Fatalf("UpsertRecurrence again: %v", err)
	}
	if cfg2.ID != firstID {
		t.Fatalf("expected id %s to be kept, got %s", firstID, cfg2.ID)
	}

	got, err := s.Repos().Therapies.FindRecurrence(ctx, th.ID)
	if err != nil {
		t.Fatalf("FindRecurrence: %v", err)
	}
	if got.DayOfWeek != 4 || got.Frequency != domain.FrequencyBiweekly {
		t.Fatalf("configuration not replaced: %+v", got)
	}
}
