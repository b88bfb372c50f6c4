package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/terapia/practice-api/internal/core/domain"
	"github.com/terapia/practice-api/internal/core/ports"
)

type stubMessageRepo struct {
	messages []domain.Message
}

func (r *stubMessageRepo) Insert(_ context.Context, m *domain.Message) error {
	m.ID = fmt.Sprintf("m%d", len(r.messages)+1)
	r.messages = append(r.messages, *m)
	return nil
}

func (r *stubMessageRepo) ListByTherapy(_ context.Context, therapyID string, _ domain.PageRequest) ([]domain.Message, int64, error) {
	var out []domain.Message
	for _, m := range r.messages {
		if m.TherapyID == therapyID {
			out = append(out, m)
		}
	}
	return out, int64(len(out)), nil
}

type stubUploader struct {
	folder string
}

func (u *stubUploader) Upload(_ context.Context, r io.Reader, folder string) (string, error) {
	if _, err := io.ReadAll(r); err != nil {
		return "", err
	}
	u.folder = folder
	return "https://cdn.example.com/" + folder + "/file", nil
}

func TestNoteService_SessionNotePrivacy(t *testing.T) {
	f := newFixture(t)
	svc := NewNoteService(f.store, f.notifier, f.log)
	ctx := context.Background()
	s := f.scheduleSession(t, tuesday10)

	if _, err := svc.AddSessionNote(ctx, f.psychologist, s.ID, "shared", false); err != nil {
		t.Fatalf("AddSessionNote shared: %v", err)
	}
	private, err := svc.AddSessionNote(ctx, f.psychologist, s.ID, "private", true)
	if err != nil {
		t.Fatalf("AddSessionNote private: %v", err)
	}
	if n := len(f.notifier.to(f.consultant.UserID, domain.NotifyNoteAdded)); n != 1 {
		t.Fatalf("expected one NOTE_ADDED for the shared note, got %d", n)
	}

	mine, err := svc.ListSessionNotes(ctx, f.psychologist, s.ID)
	if err != nil || len(mine) != 2 {
		t.Fatalf("author should see 2 notes, got %d (%v)", len(mine), err)
	}
	theirs, err := svc.ListSessionNotes(ctx, f.consultant, s.ID)
	if err != nil || len(theirs) != 1 {
		t.Fatalf("consultant should see 1 note, got %d (%v)", len(theirs), err)
	}

	content := "edited"
	if _, err := svc.UpdateSessionNote(ctx, f.consultant, s.ID, private.ID, &content, nil); !errors.Is(err, domain.ErrNoteNotFound) {
		t.Fatalf("private note must be invisible to the consultant, got %v", err)
	}
	if err := svc.DeleteSessionNote(ctx, f.consultant, s.ID, theirs[0].ID); !errors.Is(err, domain.ErrForbiddenNoteAction) {
		t.Fatalf("expected ErrForbiddenNoteAction, got %v", err)
	}

	outsider := domain.Actor{UserID: "outsider", Role: domain.RoleConsultant}
	if _, err := svc.ListSessionNotes(ctx, outsider, s.ID); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestNoteService_TherapyNotesArePsychologistOnly(t *testing.T) {
	f := newFixture(t)
	svc := NewNoteService(f.store, f.notifier, f.log)
	ctx := context.Background()

	note, err := svc.AddTherapyNote(ctx, f.psychologist, f.therapy.ID, "Intake", "first impressions")
	if err != nil {
		t.Fatalf("AddTherapyNote: %v", err)
	}
	if _, err := svc.ListTherapyNotes(ctx, f.consultant, f.therapy.ID); !errors.Is(err, domain.ErrTherapyNotFound) {
		t.Fatalf("consultant must not read therapy notes, got %v", err)
	}
	title := "Intake v2"
	got, err := svc.UpdateTherapyNote(ctx, f.psychologist, f.therapy.ID, note.ID, &title, nil)
	if err != nil || got.Title != title {
		t.Fatalf("UpdateTherapyNote: %+v (%v)", got, err)
	}
	if err := svc.DeleteTherapyNote(ctx, f.psychologist, f.therapy.ID, note.ID); err != nil {
		t.Fatalf("DeleteTherapyNote: %v", err)
	}
}

func TestPaymentService_Register(t *testing.T) {
	f := newFixture(t)
	svc := NewPaymentService(f.store, f.notifier, f.log)
	ctx := context.Background()
	s := f.scheduleSession(t, tuesday10)

	if _, err := svc.Register(ctx, f.psychologist, f.therapy.ID, ports.RegisterPaymentInput{Amount: 0}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if _, err := svc.Register(ctx, f.consultant, f.therapy.ID, ports.RegisterPaymentInput{Amount: 100}); !errors.Is(err, domain.ErrTherapyNotFound) {
		t.Fatalf("consultant must not register payments, got %v", err)
	}

	p, err := svc.Register(ctx, f.psychologist, f.therapy.ID, ports.RegisterPaymentInput{Amount: 600, SessionID: &s.ID})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if p.Method != "cash" || p.RegisteredBy != f.psychologist.UserID {
		t.Fatalf("unexpected payment: %+v", p)
	}
	if len(f.notifier.to(f.consultant.UserID, domain.NotifyPaymentRegistered)) != 1 {
		t.Fatalf("consultant was not notified of the payment")
	}

	page, err := svc.List(ctx, f.consultant, f.therapy.ID, domain.PageRequest{Page: 1, PerPage: 10})
	if err != nil || page.Total != 1 {
		t.Fatalf("List: %+v (%v)", page, err)
	}
}

func TestMessageService_SendNotifiesCounterpart(t *testing.T) {
	f := newFixture(t)
	repo := &stubMessageRepo{}
	svc := NewMessageService(f.store, repo, f.notifier, f.log)
	ctx := context.Background()

	if _, err := svc.Send(ctx, f.consultant, f.therapy.ID, "  "); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	m, err := svc.Send(ctx, f.consultant, f.therapy.ID, "hola")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	got := f.notifier.to(f.psychologist.UserID, domain.NotifyNewMessage)
	if len(got) != 1 || got[0].Payload["therapy_id"] != f.therapy.ID {
		t.Fatalf("unexpected notifications: %+v", got)
	}
	if m.SenderID != f.consultant.UserID || m.CreatedAt.IsZero() {
		t.Fatalf("unexpected message: %+v", m)
	}

	admin := domain.Actor{UserID: "admin", Role: domain.RoleAdmin}
	if _, err := svc.Send(ctx, admin, f.therapy.ID, "hi"); !errors.Is(err, domain.ErrTherapyNotFound) {
		t.Fatalf("admins can read but not chat, got %v", err)
	}
}

func TestUploadService_AvatarUpdatesUser(t *testing.T) {
	f := newFixture(t)
	up := &stubUploader{}
	svc := NewUploadService(f.store, up, f.log)
	ctx := context.Background()

	if _, err := svc.Upload(ctx, f.consultant, "secrets", strings.NewReader("x")); !errors.Is(err, domain.ErrInvalidUploadFolder) {
		t.Fatalf("expected ErrInvalidUploadFolder, got %v", err)
	}
	url, err := svc.Upload(ctx, f.consultant, FolderAvatars, strings.NewReader("png"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	user, err := f.store.Repos().Users.FindByID(ctx, f.consultant.UserID)
	if err != nil || user.AvatarURL != url {
		t.Fatalf("avatar not stored: %+v (%v)", user, err)
	}
}

// ---------------------------------------------------------------------------
// Notification delivery
// ---------------------------------------------------------------------------

type stubNotificationRepo struct {
	inserted []domain.Notification
}

func (r *stubNotificationRepo) Insert(_ context.Context, n *domain.Notification) error {
	r.inserted = append(r.inserted, *n)
	return nil
}

func (r *stubNotificationRepo) List(context.Context, string, bool, domain.PageRequest) ([]domain.Notification, int64, error) {
	return r.inserted, int64(len(r.inserted)), nil
}

func (r *stubNotificationRepo) CountUnread(context.Context, string) (int64, error) {
	return int64(len(r.inserted)), nil
}

func (r *stubNotificationRepo) MarkRead(context.Context, string, string) error { return nil }

func (r *stubNotificationRepo) MarkAllRead(context.Context, string) (int64, error) {
	return int64(len(r.inserted)), nil
}

type stubDebouncer struct {
	held map[string]bool
	err  error
}

func (d *stubDebouncer) Acquire(_ context.Context, key string, _ time.Duration) (bool, error) {
	if d.err != nil {
		return false, d.err
	}
	if d.held[key] {
		return false, nil
	}
	d.held[key] = true
	return true, nil
}

func TestNotificationService_DebouncesMessages(t *testing.T) {
	repo := &stubNotificationRepo{}
	svc := NewNotificationService(repo, &stubDebouncer{held: map[string]bool{}}, zerolog.Nop())
	ctx := context.Background()

	msg := domain.NewNotification("u1", domain.NotifyNewMessage, map[string]any{"therapy_id": "t1"})
	for i := 0; i < 3; i++ {
		if err := svc.Deliver(ctx, msg); err != nil {
			t.Fatalf("Deliver: %v", err)
		}
	}
	other := domain.NewNotification("u1", domain.NotifyNewMessage, map[string]any{"therapy_id": "t2"})
	if err := svc.Deliver(ctx, other); err != nil {
		t.Fatalf("Deliver: %v", err)
	}
	scheduled := domain.NewNotification("u1", domain.NotifySessionScheduled, map[string]any{"therapy_id": "t1"})
	for i := 0; i < 2; i++ {
		if err := svc.Deliver(ctx, scheduled); err != nil {
			t.Fatalf("Deliver: %v", err)
		}
	}

	if len(repo.inserted) != 4 {
		t.Fatalf("expected 4 stored notifications, got %d", len(repo.inserted))
	}
	if repo.inserted[0].CreatedAt.IsZero() {
		t.Fatalf("expected CreatedAt to be set")
	}
}

func TestNotificationService_DebounceFailsOpen(t *testing.T) {
	repo := &stubNotificationRepo{}
	svc := NewNotificationService(repo, &stubDebouncer{err: errors.New("redis down")}, zerolog.Nop())

	msg := domain.NewNotification("u1", domain.NotifyNewMessage, map[string]any{"therapy_id": "t1"})
	for i := 0; i < 2; i++ {
		if err := svc.Deliver(context.Background(), msg); err != nil {
			t.Fatalf("Deliver: %v", err)
		}
	}
	if len(repo.inserted) != 2 {
		t.Fatalf("expected delivery without the debouncer, got %d", len(repo.inserted))
	}
}
