package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/terapia/practice-api/internal/core/domain"
	"github.com/terapia/practice-api/internal/core/ports"
)

// NoteService manages session notes and therapy notes.
type NoteService struct {
	store    ports.Store
	notifier ports.Notifier
	log      zerolog.Logger
}

func NewNoteService(store ports.Store, notifier ports.Notifier, log zerolog.Logger) *NoteService {
	return &NoteService{store: store, notifier: notifier, log: log}
}

// sessionForParticipant loads a session whose therapy includes the actor.
func sessionForParticipant(ctx context.Context, repos ports.Repositories, actor domain.Actor, sessionID string) (*domain.TherapySession, *domain.Therapy, error) {
	session, err := repos.Sessions.FindByID(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	therapy, err := repos.Therapies.FindByID(ctx, session.TherapyID)
	if err != nil {
		return nil, nil, err
	}
	if !therapy.IsParticipant(actor.UserID) {
		return nil, nil, domain.ErrSessionNotFound
	}
	return session, therapy, nil
}

// ListSessionNotes returns the notes the actor may read: every shared note
// plus the actor's own private ones.
func (s *NoteService) ListSessionNotes(ctx context.Context, actor domain.Actor, sessionID string) ([]domain.SessionNote, error) {
	repos := s.store.Repos()
	if _, _, err := sessionForParticipant(ctx, repos, actor, sessionID); err != nil {
		return nil, err
	}
	return repos.SessionNotes.ListVisible(ctx, sessionID, actor.UserID)
}

func (s *NoteService) AddSessionNote(ctx context.Context, actor domain.Actor, sessionID, content string, private bool) (*domain.SessionNote, error) {
	if strings.TrimSpace(content) == "" {
		return nil, domain.ErrValidation.WithMessage("content is required")
	}
	repos := s.store.Repos()
	session, therapy, err := sessionForParticipant(ctx, repos, actor, sessionID)
	if err != nil {
		return nil, err
	}

	note := &domain.SessionNote{
		SessionID: session.ID,
		AuthorID:  actor.UserID,
		Content:   content,
		IsPrivate: private,
	}
	if err := repos.SessionNotes.Create(ctx, note); err != nil {
		return nil, err
	}

	if !private {
		var outbox domain.Outbox
		outbox.Add(domain.NotifyNoteAdded, therapyPayload(therapy, map[string]any{
			"session_id": session.ID,
			"note_id":    note.ID,
		}), therapy.CounterpartOf(actor.UserID))
		s.notifier.Publish(ctx, outbox...)
	}

	s.log.Info().Str("session_id", session.ID).Str("note_id", note.ID).Bool("private", private).Msg("session note added")
	return note, nil
}

// ownSessionNote loads a note the actor can see and may modify.
func ownSessionNote(ctx context.Context, repos ports.Repositories, actor domain.Actor, sessionID, noteID string) (*domain.SessionNote, error) {
	if _, _, err := sessionForParticipant(ctx, repos, actor, sessionID); err != nil {
		return nil, err
	}
	note, err := repos.SessionNotes.FindByID(ctx, noteID)
	if err != nil {
		return nil, err
	}
	if note.SessionID != sessionID || !note.VisibleTo(actor.UserID) {
		return nil, domain.ErrNoteNotFound
	}
	if note.AuthorID != actor.UserID {
		return nil, domain.ErrForbiddenNoteAction
	}
	return note, nil
}

func (s *NoteService) UpdateSessionNote(ctx context.Context, actor domain.Actor, sessionID, noteID string, content *string, private *bool) (*domain.SessionNote, error) {
	repos := s.store.Repos()
	note, err := ownSessionNote(ctx, repos, actor, sessionID, noteID)
	if err != nil {
		return nil, err
	}
	if content != nil {
		if strings.TrimSpace(*content) == "" {
			return nil, domain.ErrValidation.WithMessage("content must not be empty")
		}
		note.Content = *content
	}
	if private != nil {
		note.IsPrivate = *private
	}
	if err := repos.SessionNotes.Update(ctx, note); err != nil {
		return nil, err
	}
	return note, nil
}

func (s *NoteService) DeleteSessionNote(ctx context.Context, actor domain.Actor, sessionID, noteID string) error {
	repos := s.store.Repos()
	note, err := ownSessionNote(ctx, repos, actor, sessionID, noteID)
	if err != nil {
		return err
	}
	return repos.SessionNotes.Delete(ctx, note.ID)
}

// Therapy notes are the psychologist's private clinical record.

func (s *NoteService) ListTherapyNotes(ctx context.Context, actor domain.Actor, therapyID string) ([]domain.TherapyNote, error) {
	repos := s.store.Repos()
	therapy, err := therapyForPsychologist(ctx, repos, actor, therapyID)
	if err != nil {
		return nil, err
	}
	return repos.TherapyNotes.ListByTherapy(ctx, therapy.ID)
}

func (s *NoteService) AddTherapyNote(ctx context.Context, actor domain.Actor, therapyID, title, content string) (*domain.TherapyNote, error) {
	if strings.TrimSpace(title) == "" || strings.TrimSpace(content) == "" {
		return nil, domain.ErrValidation.WithMessage("title and content are required")
	}
	repos := s.store.Repos()
	therapy, err := therapyForPsychologist(ctx, repos, actor, therapyID)
	if err != nil {
		return nil, err
	}
	note := &domain.TherapyNote{
		TherapyID: therapy.ID,
		AuthorID:  actor.UserID,
		Title:     title,
		Content:   content,
	}
	if err := repos.TherapyNotes.Create(ctx, note); err != nil {
		return nil, err
	}
	return note, nil
}

func (s *NoteService) ownTherapyNote(ctx context.Context, repos ports.Repositories, actor domain.Actor, therapyID, noteID string) (*domain.TherapyNote, error) {
	if _, err := therapyForPsychologist(ctx, repos, actor, therapyID); err != nil {
		return nil, err
	}
	note, err := repos.TherapyNotes.FindByID(ctx, noteID)
	if err != nil {
		return nil, err
	}
	if note.TherapyID != therapyID {
		return nil, domain.ErrNoteNotFound
	}
	if note.AuthorID != actor.UserID {
		return nil, domain.ErrForbiddenNoteAction
	}
	return note, nil
}

func (s *NoteService) UpdateTherapyNote(ctx context.Context, actor domain.Actor, therapyID, noteID string, title, content *string) (*domain.TherapyNote, error) {
	repos := s.store.Repos()
	note, err := s.ownTherapyNote(ctx, repos, actor, therapyID, noteID)
	if err != nil {
		return nil, err
	}
	if title != nil {
		note.Title = *title
	}
	if content != nil {
		note.Content = *content
	}
	if err := repos.TherapyNotes.Update(ctx, note); err != nil {
		return nil, err
	}
	return note, nil
}

func (s *NoteService) DeleteTherapyNote(ctx context.Context, actor domain.Actor, therapyID, noteID string) error {
	repos := s.store.Repos()
	note, err := s.ownTherapyNote(ctx, repos, actor, therapyID, noteID)
	if err != nil {
		return err
	}
	return repos.TherapyNotes.Delete(ctx, note.ID)
}
