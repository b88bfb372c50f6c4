package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/terapia/practice-api/internal/core/ports"
)

// Store implements ports.Store on a gorm handle.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Repos returns repositories bound to the connection pool.
func (s *Store) Repos() ports.Repositories {
	return repositories(s.db)
}

// WithinTx runs fn inside one database transaction. Repositories handed to fn
// share the transaction handle, so row locks taken by one are visible to the
// others until commit.
func (s *Store) WithinTx(ctx context.Context, fn func(tx ports.Repositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(repositories(tx))
	})
}

func repositories(db *gorm.DB) ports.Repositories {
	return ports.Repositories{
		Users:           &UserRepository{db: db},
		Psychologists:   &PsychologistRepository{db: db},
		Availability:    &AvailabilityRepository{db: db},
		Consultants:     &ConsultantRepository{db: db},
		Therapies:       &TherapyRepository{db: db},
		Sessions:        &SessionRepository{db: db},
		Propositions:    &PropositionRepository{db: db},
		SessionRequests: &SessionRequestRepository{db: db},
		TherapyRequests: &TherapyRequestRepository{db: db},
		SessionNotes:    &SessionNoteRepository{db: db},
		TherapyNotes:    &TherapyNoteRepository{db: db},
		Payments:        &PaymentRepository{db: db},
	}
}

// Ping reports whether the database answers.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
