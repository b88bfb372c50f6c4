package service

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/terapia/practice-api/internal/core/domain"
	"github.com/terapia/practice-api/internal/core/ports"
)

// PaymentService registers and lists therapy payments.
type PaymentService struct {
	store    ports.Store
	notifier ports.Notifier
	log      zerolog.Logger
}

func NewPaymentService(store ports.Store, notifier ports.Notifier, log zerolog.Logger) *PaymentService {
	return &PaymentService{store: store, notifier: notifier, log: log}
}

func (s *PaymentService) Register(ctx context.Context, actor domain.Actor, therapyID string, in ports.RegisterPaymentInput) (*domain.Payment, error) {
	if in.Amount <= 0 {
		return nil, domain.ErrValidation.WithMessage("amount must be greater than 0")
	}
	repos := s.store.Repos()
	therapy, err := therapyForPsychologist(ctx, repos, actor, therapyID)
	if err != nil {
		return nil, err
	}
	if in.SessionID != nil {
		session, err := repos.Sessions.FindByID(ctx, *in.SessionID)
		if err != nil {
			return nil, err
		}
		if session.TherapyID != therapy.ID {
			return nil, domain.ErrSessionNotFound
		}
	}

	paidAt := time.Now().UTC()
	if in.PaidAt != nil {
		paidAt = in.PaidAt.UTC()
	}
	method := in.Method
	if method == "" {
		method = "cash"
	}
	p := &domain.Payment{
		TherapyID:    therapy.ID,
		SessionID:    in.SessionID,
		Amount:       in.Amount,
		Method:       method,
		Notes:        in.Notes,
		PaidAt:       paidAt,
		RegisteredBy: actor.UserID,
	}
	if err := repos.Payments.Create(ctx, p); err != nil {
		return nil, err
	}

	var outbox domain.Outbox
	outbox.Add(domain.NotifyPaymentRegistered, therapyPayload(therapy, map[string]any{
		"payment_id": p.ID,
		"amount":     p.Amount,
	}), therapy.ConsultantID)
	s.notifier.Publish(ctx, outbox...)

	s.log.Info().Str("therapy_id", therapy.ID).Str("payment_id", p.ID).Float64("amount", p.Amount).Msg("payment registered")
	return p, nil
}

func (s *PaymentService) List(ctx context.Context, actor domain.Actor, therapyID string, page domain.PageRequest) (*domain.Page[domain.Payment], error) {
	repos := s.store.Repos()
	therapy, err := therapyForViewer(ctx, repos, actor, therapyID)
	if err != nil {
		return nil, err
	}
	items, total, err := repos.Payments.ListByTherapy(ctx, therapy.ID, page)
	if err != nil {
		return nil, err
	}
	return domain.NewPage(items, total, page), nil
}

// MessageService stores therapy chat messages. Every message notifies the
// other participant with a debounced NEW_MESSAGE.
type MessageService struct {
	store    ports.Store
	messages ports.MessageRepository
	notifier ports.Notifier
	log      zerolog.Logger
}

func NewMessageService(store ports.Store, messages ports.MessageRepository, notifier ports.Notifier, log zerolog.Logger) *MessageService {
	return &MessageService{store: store, messages: messages, notifier: notifier, log: log}
}

func (s *MessageService) Send(ctx context.Context, actor domain.Actor, therapyID, content string) (*domain.Message, error) {
	if strings.TrimSpace(content) == "" {
		return nil, domain.ErrValidation.WithMessage("content is required")
	}
	therapy, err := therapyForViewer(ctx, s.store.Repos(), actor, therapyID)
	if err != nil {
		return nil, err
	}
	if !therapy.IsParticipant(actor.UserID) {
		return nil, domain.ErrTherapyNotFound
	}

	m := &domain.Message{
		TherapyID: therapy.ID,
		SenderID:  actor.UserID,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.messages.Insert(ctx, m); err != nil {
		return nil, err
	}

	var outbox domain.Outbox
	outbox.Add(domain.NotifyNewMessage, therapyPayload(therapy, map[string]any{
		"message_id": m.ID,
		"sender_id":  actor.UserID,
	}), therapy.CounterpartOf(actor.UserID))
	s.notifier.Publish(ctx, outbox...)
	return m, nil
}

func (s *MessageService) List(ctx context.Context, actor domain.Actor, therapyID string, page domain.PageRequest) (*domain.Page[domain.Message], error) {
	therapy, err := therapyForViewer(ctx, s.store.Repos(), actor, therapyID)
	if err != nil {
		return nil, err
	}
	items, total, err := s.messages.ListByTherapy(ctx, therapy.ID, page)
	if err != nil {
		return nil, err
	}
	return domain.NewPage(items, total, page), nil
}

// Upload folders accepted by UploadService.
const (
	FolderAvatars  = "avatars"
	FolderSessions = "sessions"
	FolderChat     = "chat"
)

var uploadFolders = map[string]bool{FolderAvatars: true, FolderSessions: true, FolderChat: true}

// UploadService stores user files through the configured uploader.
type UploadService struct {
	store    ports.Store
	uploader ports.FileUploader
	log      zerolog.Logger
}

func NewUploadService(store ports.Store, uploader ports.FileUploader, log zerolog.Logger) *UploadService {
	return &UploadService{store: store, uploader: uploader, log: log}
}

// Upload stores file under folder. Avatars also become the caller's avatar.
func (s *UploadService) Upload(ctx context.Context, actor domain.Actor, folder string, file io.Reader) (string, error) {
	if !uploadFolders[folder] {
		return "", domain.ErrInvalidUploadFolder
	}
	url, err := s.uploader.Upload(ctx, file, folder)
	if err != nil {
		return "", err
	}
	if folder == FolderAvatars {
		if err := s.store.Repos().Users.UpdateAvatar(ctx, actor.UserID, url); err != nil {
			return "", err
		}
	}
	s.log.Info().Str("user_id", actor.UserID).Str("folder", folder).Msg("file uploaded")
	return url, nil
}
