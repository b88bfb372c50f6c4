package postgres

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// translate maps gorm's not-found error to the given domain error.
func translate(err error, notFound error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return err
}

func forUpdate(db *gorm.DB) *gorm.DB {
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}

func paginate(db *gorm.DB, offset, limit int) *gorm.DB {
	if limit > 0 {
		return db.Limit(limit).Offset(offset)
	}
	return db
}

func ensureID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}
