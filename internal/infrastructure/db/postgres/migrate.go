package postgres

import (
	"fmt"

	"gorm.io/gorm"
)

// activeTherapyIndex keeps at most one live ACTIVE therapy per consultant.
const activeTherapyIndex = `CREATE UNIQUE INDEX IF NOT EXISTS ux_therapies_active_consultant
	ON therapies (consultant_id)
	WHERE status = 'ACTIVE' AND deleted_at IS NULL`

// AutoMigrate creates or updates every table of the relational store.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&userRecord{},
		&psychologistRecord{},
		&availabilityRecord{},
		&consultantRecord{},
		&therapyRecord{},
		&billingPlanRecord{},
		&recurrenceRecord{},
		&sessionRecord{},
		&propositionRecord{},
		&sessionRequestRecord{},
		&therapyRequestRecord{},
		&sessionNoteRecord{},
		&therapyNoteRecord{},
		&paymentRecord{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	if err := db.Exec(activeTherapyIndex).Error; err != nil {
		return fmt.Errorf("create active therapy index: %w", err)
	}
	return nil
}
