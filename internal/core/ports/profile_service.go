package ports

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/terapia/practice-api/internal/core/domain"
)

// PsychologistProfileInput is a partial update; nil fields are left as is.
type PsychologistProfileInput struct {
	LicenseNumber   *string
	Bio             *string
	Specializations []string
	Modalities      []string
	Languages       []string
	SessionFee      *float64
	YearsExperience *int
}

// SlotInput is one availability window submitted by a psychologist.
type SlotInput struct {
	DayOfWeek int
	StartTime string
	EndTime   string
	Type      domain.AvailabilityType
}

type PsychologistService interface {
	List(ctx context.Context, page domain.PageRequest) (*domain.Page[domain.PsychologistProfile], error)
	Get(ctx context.Context, userID string) (*domain.PsychologistProfile, error)
	MyProfile(ctx context.Context, userID string) (*domain.PsychologistProfile, error)
	UpdateMyProfile(ctx context.Context, userID string, in PsychologistProfileInput) (*domain.PsychologistProfile, error)
	MyAvailability(ctx context.Context, userID string) ([]domain.AvailabilitySlot, error)
	SetMyAvailability(ctx context.Context, userID string, slots []SlotInput) ([]domain.AvailabilitySlot, error)
}

// ConsultantProfileInput is a partial update; nil fields are left as is.
type ConsultantProfileInput struct {
	Phone            *string
	EmergencyContact *string
	BirthDate        *time.Time
}

type ConsultantService interface {
	MyProfile(ctx context.Context, userID string) (*domain.ConsultantProfile, error)
	UpdateMyProfile(ctx context.Context, userID string, in ConsultantProfileInput) (*domain.ConsultantProfile, error)
	SubmitOnboardingStep(ctx context.Context, userID string, step int, data json.RawMessage) (*domain.ConsultantProfile, error)
}

// UploadService stores a user file and returns its URL.
type UploadService interface {
	Upload(ctx context.Context, actor domain.Actor, folder string, file io.Reader) (string, error)
}
