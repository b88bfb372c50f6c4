package postgres

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/terapia/practice-api/internal/core/domain"
)

// users
type userRecord struct {
	ID                 string `gorm:"type:varchar(36);primaryKey"`
	Email              string `gorm:"type:varchar(255);not null;uniqueIndex"`
	Name               string `gorm:"type:varchar(255);not null"`
	PasswordHash       string `gorm:"type:varchar(255);not null"`
	Role               string `gorm:"type:varchar(32);not null;index"`
	AvatarURL          string `gorm:"type:text"`
	MustChangePassword bool   `gorm:"not null;default:false"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
	DeletedAt          gorm.DeletedAt `gorm:"index"`
}

func (userRecord) TableName() string { return "users" }

func userFromDomain(u *domain.User) userRecord {
	return userRecord{
		ID:                 u.ID,
		Email:              u.Email,
		Name:               u.Name,
		PasswordHash:       u.PasswordHash,
		Role:               string(u.Role),
		AvatarURL:          u.AvatarURL,
		MustChangePassword: u.MustChangePassword,
	}
}

func (r *userRecord) toDomain() *domain.User {
	return &domain.User{
		ID:                 r.ID,
		Email:              r.Email,
		Name:               r.Name,
		PasswordHash:       r.PasswordHash,
		Role:               domain.Role(r.Role),
		AvatarURL:          r.AvatarURL,
		MustChangePassword: r.MustChangePassword,
		CreatedAt:          r.CreatedAt.UTC(),
		UpdatedAt:          r.UpdatedAt.UTC(),
	}
}

func (r *userRecord) summary() *domain.UserSummary {
	if r == nil {
		return nil
	}
	return &domain.UserSummary{ID: r.ID, Name: r.Name, Email: r.Email, AvatarURL: r.AvatarURL}
}

// psychologist_profiles
type psychologistRecord struct {
	ID              string                      `gorm:"type:varchar(36);primaryKey"`
	UserID          string                      `gorm:"type:varchar(36);not null;uniqueIndex"`
	LicenseNumber   string                      `gorm:"type:varchar(64)"`
	Bio             string                      `gorm:"type:text"`
	Specializations datatypes.JSONSlice[string] `gorm:"type:json"`
	Modalities      datatypes.JSONSlice[string] `gorm:"type:json"`
	Languages       datatypes.JSONSlice[string] `gorm:"type:json"`
	SessionFee      *float64
	YearsExperience int `gorm:"not null;default:0"`
	CreatedAt       time.Time
	UpdatedAt       time.Time

	User *userRecord `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (psychologistRecord) TableName() string { return "psychologist_profiles" }

func psychologistFromDomain(p *domain.PsychologistProfile) psychologistRecord {
	return psychologistRecord{
		ID:              p.ID,
		UserID:          p.UserID,
		LicenseNumber:   p.LicenseNumber,
		Bio:             p.Bio,
		Specializations: datatypes.JSONSlice[string](nonNil(p.Specializations)),
		Modalities:      datatypes.JSONSlice[string](nonNil(p.Modalities)),
		Languages:       datatypes.JSONSlice[string](nonNil(p.Languages)),
		SessionFee:      p.SessionFee,
		YearsExperience: p.YearsExperience,
	}
}

func (r *psychologistRecord) toDomain() *domain.PsychologistProfile {
	return &domain.PsychologistProfile{
		ID:              r.ID,
		UserID:          r.UserID,
		LicenseNumber:   r.LicenseNumber,
		Bio:             r.Bio,
		Specializations: nonNil(r.Specializations),
		Modalities:      nonNil(r.Modalities),
		Languages:       nonNil(r.Languages),
		SessionFee:      r.SessionFee,
		YearsExperience: r.YearsExperience,
		User:            r.User.summary(),
		CreatedAt:       r.CreatedAt.UTC(),
		UpdatedAt:       r.UpdatedAt.UTC(),
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// availability_slots
type availabilityRecord struct {
	ID        string  `gorm:"type:varchar(36);primaryKey"`
	ProfileID string  `gorm:"type:varchar(36);not null;index"`
	DayOfWeek int     `gorm:"not null"`
	StartTime string  `gorm:"type:varchar(5);not null"`
	EndTime   string  `gorm:"type:varchar(5);not null"`
	Type      string  `gorm:"type:varchar(16);not null;default:'AVAILABLE'"`
	TherapyID *string `gorm:"type:varchar(36);index"`
	CreatedAt time.Time
}

func (availabilityRecord) TableName() string { return "availability_slots" }

func availabilityFromDomain(s *domain.AvailabilitySlot) availabilityRecord {
	return availabilityRecord{
		ID:        s.ID,
		ProfileID: s.ProfileID,
		DayOfWeek: s.DayOfWeek,
		StartTime: s.StartTime,
		EndTime:   s.EndTime,
		Type:      string(s.Type),
		TherapyID: s.TherapyID,
	}
}

func (r *availabilityRecord) toDomain() domain.AvailabilitySlot {
	return domain.AvailabilitySlot{
		ID:        r.ID,
		ProfileID: r.ProfileID,
		DayOfWeek: r.DayOfWeek,
		StartTime: r.StartTime,
		EndTime:   r.EndTime,
		Type:      domain.AvailabilityType(r.Type),
		TherapyID: r.TherapyID,
	}
}

// consultant_profiles
type consultantRecord struct {
	ID               string     `gorm:"type:varchar(36);primaryKey"`
	UserID           string     `gorm:"type:varchar(36);not null;uniqueIndex"`
	Phone            string     `gorm:"type:varchar(32)"`
	BirthDate        *time.Time `gorm:"type:date"`
	EmergencyContact string     `gorm:"type:text"`
	OnboardingStatus string     `gorm:"type:varchar(16);not null;default:'INCOMPLETE'"`
	OnboardingStep   int        `gorm:"not null;default:1"`
	OnboardingData   datatypes.JSON
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (consultantRecord) TableName() string { return "consultant_profiles" }

func consultantFromDomain(p *domain.ConsultantProfile) (consultantRecord, error) {
	data := p.OnboardingData
	if data == nil {
		data = map[string]json.RawMessage{}
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return consultantRecord{}, err
	}
	return consultantRecord{
		ID:               p.ID,
		UserID:           p.UserID,
		Phone:            p.Phone,
		BirthDate:        p.BirthDate,
		EmergencyContact: p.EmergencyContact,
		OnboardingStatus: string(p.OnboardingStatus),
		OnboardingStep:   p.OnboardingStep,
		OnboardingData:   datatypes.JSON(raw),
	}, nil
}

func (r *consultantRecord) toDomain() (*domain.ConsultantProfile, error) {
	data := map[string]json.RawMessage{}
	if len(r.OnboardingData) > 0 {
		if err := json.Unmarshal(r.OnboardingData, &data); err != nil {
			return nil, err
		}
	}
	return &domain.ConsultantProfile{
		ID:               r.ID,
		UserID:           r.UserID,
		Phone:            r.Phone,
		BirthDate:        r.BirthDate,
		EmergencyContact: r.EmergencyContact,
		OnboardingStatus: domain.OnboardingStatus(r.OnboardingStatus),
		OnboardingStep:   r.OnboardingStep,
		OnboardingData:   data,
		CreatedAt:        r.CreatedAt.UTC(),
		UpdatedAt:        r.UpdatedAt.UTC(),
	}, nil
}

// therapies
type therapyRecord struct {
	ID             string `gorm:"type:varchar(36);primaryKey"`
	PsychologistID string `gorm:"type:varchar(36);not null;index"`
	ConsultantID   string `gorm:"type:varchar(36);not null;index"`
	Origin         string `gorm:"type:varchar(32);not null"`
	Status         string `gorm:"type:varchar(16);not null;index"`
	Modality       string `gorm:"type:varchar(32);not null"`
	Notes          string `gorm:"type:text"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
	DeletedAt      gorm.DeletedAt `gorm:"index"`

	Psychologist *userRecord        `gorm:"foreignKey:PsychologistID"`
	Consultant   *userRecord        `gorm:"foreignKey:ConsultantID"`
	BillingPlan  *billingPlanRecord `gorm:"foreignKey:TherapyID;constraint:OnDelete:CASCADE"`
	Recurrence   *recurrenceRecord  `gorm:"foreignKey:TherapyID;constraint:OnDelete:CASCADE"`
}

func (therapyRecord) TableName() string { return "therapies" }

func therapyFromDomain(t *domain.Therapy) therapyRecord {
	rec := therapyRecord{
		ID:             t.ID,
		PsychologistID: t.PsychologistID,
		ConsultantID:   t.ConsultantID,
		Origin:         string(t.Origin),
		Status:         string(t.Status),
		Modality:       t.Modality,
		Notes:          t.Notes,
	}
	if t.BillingPlan != nil {
		bp := billingPlanFromDomain(t.BillingPlan)
		rec.BillingPlan = &bp
	}
	return rec
}

func (r *therapyRecord) toDomain() *domain.Therapy {
	t := &domain.Therapy{
		ID:             r.ID,
		PsychologistID: r.PsychologistID,
		ConsultantID:   r.ConsultantID,
		Origin:         domain.TherapyOrigin(r.Origin),
		Status:         domain.TherapyStatus(r.Status),
		Modality:       r.Modality,
		Notes:          r.Notes,
		Psychologist:   r.Psychologist.summary(),
		Consultant:     r.Consultant.summary(),
		CreatedAt:      r.CreatedAt.UTC(),
		UpdatedAt:      r.UpdatedAt.UTC(),
	}
	if r.BillingPlan != nil {
		t.BillingPlan = r.BillingPlan.toDomain()
	}
	if r.Recurrence != nil {
		t.Recurrence = r.Recurrence.toDomain()
	}
	return t
}

// billing_plans
type billingPlanRecord struct {
	ID          string  `gorm:"type:varchar(36);primaryKey"`
	TherapyID   string  `gorm:"type:varchar(36);not null;uniqueIndex"`
	BillingType string  `gorm:"type:varchar(16);not null"`
	DefaultFee  float64 `gorm:"not null"`
	Recurrence  string  `gorm:"type:varchar(32)"`
}

func (billingPlanRecord) TableName() string { return "billing_plans" }

func billingPlanFromDomain(p *domain.BillingPlan) billingPlanRecord {
	return billingPlanRecord{
		ID:          p.ID,
		TherapyID:   p.TherapyID,
		BillingType: string(p.BillingType),
		DefaultFee:  p.DefaultFee,
		Recurrence:  p.Recurrence,
	}
}

func (r *billingPlanRecord) toDomain() *domain.BillingPlan {
	return &domain.BillingPlan{
		ID:          r.ID,
		TherapyID:   r.TherapyID,
		BillingType: domain.BillingType(r.BillingType),
		DefaultFee:  r.DefaultFee,
		Recurrence:  r.Recurrence,
	}
}

// recurrence_configurations
type recurrenceRecord struct {
	ID            string    `gorm:"type:varchar(36);primaryKey"`
	TherapyID     string    `gorm:"type:varchar(36);not null;uniqueIndex"`
	DayOfWeek     int       `gorm:"not null"`
	StartTime     string    `gorm:"type:varchar(5);not null"`
	Duration      int       `gorm:"not null"`
	Frequency     string    `gorm:"type:varchar(16);not null"`
	SessionsCount *int
	StartDate     time.Time `gorm:"not null"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (recurrenceRecord) TableName() string { return "recurrence_configurations" }

func recurrenceFromDomain(c *domain.RecurrenceConfiguration) recurrenceRecord {
	return recurrenceRecord{
		ID:            c.ID,
		TherapyID:     c.TherapyID,
		DayOfWeek:     c.DayOfWeek,
		StartTime:     c.StartTime,
		Duration:      c.Duration,
		Frequency:     string(c.Frequency),
		SessionsCount: c.SessionsCount,
		StartDate:     c.StartDate.UTC(),
	}
}

func (r *recurrenceRecord) toDomain() *domain.RecurrenceConfiguration {
	return &domain.RecurrenceConfiguration{
		ID:            r.ID,
		TherapyID:     r.TherapyID,
		DayOfWeek:     r.DayOfWeek,
		StartTime:     r.StartTime,
		Duration:      r.Duration,
		Frequency:     domain.Frequency(r.Frequency),
		SessionsCount: r.SessionsCount,
		StartDate:     r.StartDate.UTC(),
		CreatedAt:     r.CreatedAt.UTC(),
		UpdatedAt:     r.UpdatedAt.UTC(),
	}
}

// therapy_sessions
type sessionRecord struct {
	ID            string    `gorm:"type:varchar(36);primaryKey"`
	TherapyID     string    `gorm:"type:varchar(36);not null;index"`
	PropositionID *string   `gorm:"type:varchar(36)"`
	ScheduledAt   time.Time `gorm:"not null;index"`
	Duration      int       `gorm:"not null"`
	Status        string    `gorm:"type:varchar(16);not null;index"`
	Type          string    `gorm:"type:varchar(16);not null"`
	SessionFee    *float64
	PostponedTo   *time.Time
	CancelledBy   *string `gorm:"type:varchar(36)"`
	CancelledAt   *time.Time
	CancelReason  string `gorm:"type:text"`
	MediaURL      string `gorm:"type:text"`
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Therapy *therapyRecord `gorm:"foreignKey:TherapyID;constraint:OnDelete:CASCADE"`
}

func (sessionRecord) TableName() string { return "therapy_sessions" }

func sessionFromDomain(s *domain.TherapySession) sessionRecord {
	return sessionRecord{
		ID:            s.ID,
		TherapyID:     s.TherapyID,
		PropositionID: s.PropositionID,
		ScheduledAt:   s.ScheduledAt.UTC(),
		Duration:      s.Duration,
		Status:        string(s.Status),
		Type:          string(s.Type),
		SessionFee:    s.SessionFee,
		PostponedTo:   utcPtr(s.PostponedTo),
		CancelledBy:   s.CancelledBy,
		CancelledAt:   utcPtr(s.CancelledAt),
		CancelReason:  s.CancelReason,
		MediaURL:      s.MediaURL,
	}
}

func (r *sessionRecord) toDomain() *domain.TherapySession {
	return &domain.TherapySession{
		ID:            r.ID,
		TherapyID:     r.TherapyID,
		PropositionID: r.PropositionID,
		ScheduledAt:   r.ScheduledAt.UTC(),
		Duration:      r.Duration,
		Status:        domain.SessionStatus(r.Status),
		Type:          domain.SessionType(r.Type),
		SessionFee:    r.SessionFee,
		PostponedTo:   utcPtr(r.PostponedTo),
		CancelledBy:   r.CancelledBy,
		CancelledAt:   utcPtr(r.CancelledAt),
		CancelReason:  r.CancelReason,
		MediaURL:      r.MediaURL,
		CreatedAt:     r.CreatedAt.UTC(),
		UpdatedAt:     r.UpdatedAt.UTC(),
	}
}

func (r *sessionRecord) toView() domain.SessionView {
	s := r.toDomain()
	v := domain.SessionView{TherapySession: *s}
	var plan *domain.BillingPlan
	if r.Therapy != nil {
		v.PsychologistID = r.Therapy.PsychologistID
		v.ConsultantID = r.Therapy.ConsultantID
		v.Psychologist = r.Therapy.Psychologist.summary()
		v.Consultant = r.Therapy.Consultant.summary()
		if r.Therapy.BillingPlan != nil {
			plan = r.Therapy.BillingPlan.toDomain()
		}
	}
	v.EffectiveFee = s.ResolveFee(plan)
	return v
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

// schedule_propositions
type propositionRecord struct {
	ID            string                         `gorm:"type:varchar(36);primaryKey"`
	TherapyID     string                         `gorm:"type:varchar(36);not null;index"`
	ProposedSlots datatypes.JSONSlice[time.Time] `gorm:"type:json;not null"`
	SelectedSlot  *time.Time
	Status        string `gorm:"type:varchar(16);not null"`
	Type          string `gorm:"type:varchar(16);not null"`
	Duration      int    `gorm:"not null"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (propositionRecord) TableName() string { return "schedule_propositions" }

func propositionFromDomain(p *domain.ScheduleProposition) propositionRecord {
	slots := make([]time.Time, len(p.ProposedSlots))
	for i, s := range p.ProposedSlots {
		slots[i] = s.UTC()
	}
	return propositionRecord{
		ID:            p.ID,
		TherapyID:     p.TherapyID,
		ProposedSlots: datatypes.JSONSlice[time.Time](slots),
		SelectedSlot:  utcPtr(p.SelectedSlot),
		Status:        string(p.Status),
		Type:          string(p.Type),
		Duration:      p.Duration,
	}
}

func (r *propositionRecord) toDomain() *domain.ScheduleProposition {
	slots := make([]time.Time, len(r.ProposedSlots))
	for i, s := range r.ProposedSlots {
		slots[i] = s.UTC()
	}
	return &domain.ScheduleProposition{
		ID:            r.ID,
		TherapyID:     r.TherapyID,
		ProposedSlots: slots,
		SelectedSlot:  utcPtr(r.SelectedSlot),
		Status:        domain.PropositionStatus(r.Status),
		Type:          domain.SessionType(r.Type),
		Duration:      r.Duration,
		CreatedAt:     r.CreatedAt.UTC(),
		UpdatedAt:     r.UpdatedAt.UTC(),
	}
}

// session_requests
type sessionRequestRecord struct {
	ID           string    `gorm:"type:varchar(36);primaryKey"`
	TherapyID    string    `gorm:"type:varchar(36);not null;index"`
	ConsultantID string    `gorm:"type:varchar(36);not null"`
	ProposedAt   time.Time `gorm:"not null"`
	Duration     int       `gorm:"not null"`
	Type         string    `gorm:"type:varchar(16);not null"`
	Notes        string    `gorm:"type:text"`
	Status       string    `gorm:"type:varchar(16);not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (sessionRequestRecord) TableName() string { return "session_requests" }

func sessionRequestFromDomain(r *domain.SessionRequest) sessionRequestRecord {
	return sessionRequestRecord{
		ID:           r.ID,
		TherapyID:    r.TherapyID,
		ConsultantID: r.ConsultantID,
		ProposedAt:   r.ProposedAt.UTC(),
		Duration:     r.Duration,
		Type:         string(r.Type),
		Notes:        r.Notes,
		Status:       string(r.Status),
	}
}

func (r *sessionRequestRecord) toDomain() *domain.SessionRequest {
	return &domain.SessionRequest{
		ID:           r.ID,
		TherapyID:    r.TherapyID,
		ConsultantID: r.ConsultantID,
		ProposedAt:   r.ProposedAt.UTC(),
		Duration:     r.Duration,
		Type:         domain.SessionType(r.Type),
		Notes:        r.Notes,
		Status:       domain.SessionRequestStatus(r.Status),
		CreatedAt:    r.CreatedAt.UTC(),
		UpdatedAt:    r.UpdatedAt.UTC(),
	}
}

// therapy_requests
type therapyRequestRecord struct {
	ID             string  `gorm:"type:varchar(36);primaryKey"`
	ConsultantID   string  `gorm:"type:varchar(36);not null;index"`
	PsychologistID string  `gorm:"type:varchar(36);not null;index"`
	Message        string  `gorm:"type:text"`
	Status         string  `gorm:"type:varchar(16);not null;index"`
	TherapyID      *string `gorm:"type:varchar(36)"`
	CreatedAt      time.Time
	UpdatedAt      time.Time

	Consultant   *userRecord `gorm:"foreignKey:ConsultantID"`
	Psychologist *userRecord `gorm:"foreignKey:PsychologistID"`
}

func (therapyRequestRecord) TableName() string { return "therapy_requests" }

func therapyRequestFromDomain(r *domain.TherapyRequest) therapyRequestRecord {
	return therapyRequestRecord{
		ID:             r.ID,
		ConsultantID:   r.ConsultantID,
		PsychologistID: r.PsychologistID,
		Message:        r.Message,
		Status:         string(r.Status),
		TherapyID:      r.TherapyID,
	}
}

func (r *therapyRequestRecord) toDomain() *domain.TherapyRequest {
	return &domain.TherapyRequest{
		ID:             r.ID,
		ConsultantID:   r.ConsultantID,
		PsychologistID: r.PsychologistID,
		Message:        r.Message,
		Status:         domain.SessionRequestStatus(r.Status),
		TherapyID:      r.TherapyID,
		Consultant:     r.Consultant.summary(),
		Psychologist:   r.Psychologist.summary(),
		CreatedAt:      r.CreatedAt.UTC(),
		UpdatedAt:      r.UpdatedAt.UTC(),
	}
}

// session_notes
type sessionNoteRecord struct {
	ID        string `gorm:"type:varchar(36);primaryKey"`
	SessionID string `gorm:"type:varchar(36);not null;index"`
	AuthorID  string `gorm:"type:varchar(36);not null"`
	Content   string `gorm:"type:text;not null"`
	IsPrivate bool   `gorm:"not null;default:false"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Author *userRecord `gorm:"foreignKey:AuthorID"`
}

func (sessionNoteRecord) TableName() string { return "session_notes" }

func (r *sessionNoteRecord) toDomain() *domain.SessionNote {
	return &domain.SessionNote{
		ID:        r.ID,
		SessionID: r.SessionID,
		AuthorID:  r.AuthorID,
		Content:   r.Content,
		IsPrivate: r.IsPrivate,
		Author:    r.Author.summary(),
		CreatedAt: r.CreatedAt.UTC(),
		UpdatedAt: r.UpdatedAt.UTC(),
	}
}

// therapy_notes
type therapyNoteRecord struct {
	ID        string `gorm:"type:varchar(36);primaryKey"`
	TherapyID string `gorm:"type:varchar(36);not null;index"`
	AuthorID  string `gorm:"type:varchar(36);not null"`
	Title     string `gorm:"type:varchar(255);not null"`
	Content   string `gorm:"type:text;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (therapyNoteRecord) TableName() string { return "therapy_notes" }

func (r *therapyNoteRecord) toDomain() *domain.TherapyNote {
	return &domain.TherapyNote{
		ID:        r.ID,
		TherapyID: r.TherapyID,
		AuthorID:  r.AuthorID,
		Title:     r.Title,
		Content:   r.Content,
		CreatedAt: r.CreatedAt.UTC(),
		UpdatedAt: r.UpdatedAt.UTC(),
	}
}

// payments
type paymentRecord struct {
	ID           string  `gorm:"type:varchar(36);primaryKey"`
	TherapyID    string  `gorm:"type:varchar(36);not null;index"`
	SessionID    *string `gorm:"type:varchar(36)"`
	Amount       float64 `gorm:"not null"`
	Method       string  `gorm:"type:varchar(32);not null"`
	Notes        string  `gorm:"type:text"`
	PaidAt       time.Time `gorm:"not null"`
	RegisteredBy string    `gorm:"type:varchar(36);not null"`
	CreatedAt    time.Time
}

func (paymentRecord) TableName() string { return "payments" }

func (r *paymentRecord) toDomain() domain.Payment {
	return domain.Payment{
		ID:           r.ID,
		TherapyID:    r.TherapyID,
		SessionID:    r.SessionID,
		Amount:       r.Amount,
		Method:       r.Method,
		Notes:        r.Notes,
		PaidAt:       r.PaidAt.UTC(),
		RegisteredBy: r.RegisteredBy,
		CreatedAt:    r.CreatedAt.UTC(),
	}
}
