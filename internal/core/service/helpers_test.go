package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/terapia/practice-api/internal/core/domain"
	"github.com/terapia/practice-api/internal/core/ports"
	"github.com/terapia/practice-api/internal/infrastructure/db/postgres"
)

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

type stubNotifier struct {
	mu   sync.Mutex
	sent []domain.Notification
}

func (n *stubNotifier) Publish(_ context.Context, notifications ...domain.Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, notifications...)
}

// to returns the notifications of type typ addressed to userID.
func (n *stubNotifier) to(userID string, typ domain.NotificationType) []domain.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []domain.Notification
	for _, s := range n.sent {
		if s.UserID == userID && s.Type == typ {
			out = append(out, s)
		}
	}
	return out
}

type stubMailer struct {
	to       string
	password string
}

func (m *stubMailer) SendInvite(_ context.Context, to, _, temporaryPassword string) error {
	m.to, m.password = to, temporaryPassword
	return nil
}

// ---------------------------------------------------------------------------
// Fixture
// ---------------------------------------------------------------------------

// tuesday10 is Tuesday 2025-01-07 10:00 UTC.
var tuesday10 = time.Date(2025, 1, 7, 10, 0, 0, 0, time.UTC)

type fixture struct {
	store        *postgres.Store
	notifier     *stubNotifier
	log          zerolog.Logger
	psychologist domain.Actor
	consultant   domain.Actor
	profileID    string
	therapy      *domain.Therapy
}

func newTestStore(t *testing.T) *postgres.Store {
	t.Helper()
	db, err := postgres.OpenSQLite(":memory:", zerolog.Nop())
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	if err := postgres.AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return postgres.NewStore(db)
}

func createUser(t *testing.T, store ports.Store, email string, role domain.Role) domain.Actor {
	t.Helper()
	ctx := context.Background()
	u := &domain.User{Email: email, Name: email, PasswordHash: "x", Role: role}
	if err := store.Repos().Users.Create(ctx, u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	if role == domain.RoleConsultant {
		if err := store.Repos().Consultants.Create(ctx, domain.NewConsultantProfile(u.ID)); err != nil {
			t.Fatalf("create consultant profile: %v", err)
		}
	}
	return domain.Actor{UserID: u.ID, Role: role}
}

// newFixture seeds a psychologist available on Tuesdays 08:00-18:00 and a
// consultant with an ACTIVE therapy between them.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := newTestStore(t)

	f := &fixture{store: store, notifier: &stubNotifier{}, log: zerolog.Nop()}
	f.psychologist = createUser(t, store, "psy@example.com", domain.RolePsychologist)
	f.consultant = createUser(t, store, "con@example.com", domain.RoleConsultant)

	profile := &domain.PsychologistProfile{UserID: f.psychologist.UserID}
	if err := store.Repos().Psychologists.Create(ctx, profile); err != nil {
		t.Fatalf("create profile: %v", err)
	}
	f.profileID = profile.ID
	if err := store.Repos().Availability.ReplaceManaged(ctx, profile.ID, []domain.AvailabilitySlot{
		{DayOfWeek: 2, StartTime: "08:00", EndTime: "18:00", Type: domain.SlotAvailable},
	}); err != nil {
		t.Fatalf("seed availability: %v", err)
	}

	f.therapy = &domain.Therapy{
		PsychologistID: f.psychologist.UserID,
		ConsultantID:   f.consultant.UserID,
		Origin:         domain.OriginPsychologistInitiated,
		Status:         domain.TherapyActive,
		Modality:       domain.DefaultModality,
		BillingPlan:    &domain.BillingPlan{BillingType: domain.BillingPerSession, DefaultFee: 600},
	}
	if err := store.Repos().Therapies.Create(ctx, f.therapy); err != nil {
		t.Fatalf("create therapy: %v", err)
	}
	return f
}

func (f *fixture) scheduleSession(t *testing.T, at time.Time) *domain.TherapySession {
	t.Helper()
	s := domain.NewSession(f.therapy, at, 50, domain.SessionInitial)
	if err := f.store.Repos().Sessions.Create(context.Background(), &s); err != nil {
		t.Fatalf("create session: %v", err)
	}
	return &s
}
