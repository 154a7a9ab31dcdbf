package models

import "time"

// Version carries the SCD2 bookkeeping columns shared by every versioned
// table. ID is the surrogate key: globally unique across all versions of all
// business keys for a given entity type, never reused, and the only column
// any child table may hold a foreign key to. BusinessKey identifies "the same
// logical thing over time" and repeats across versions.
//
// Exactly one row per business key has IsCurrent = true. That invariant is
// enforced by a partial unique index (see internal/db.EnsureVersionIndexes);
// gorm cannot express a filtered index through tags, so the index is created
// with raw SQL during migration.
type Version struct {
	ID          uint64     `gorm:"primaryKey;autoIncrement" json:"id"`
	BusinessKey string     `gorm:"type:varchar(120);not null;index" json:"business_key"`
	IsCurrent   bool       `gorm:"not null;default:true" json:"is_current"`
	ValidFrom   time.Time  `gorm:"type:timestamptz;not null" json:"valid_from"`
	ValidTo     *time.Time `gorm:"type:timestamptz" json:"valid_to,omitempty"`
}

// Meta returns the bookkeeping columns; satisfies scd.Versioned for any model
// that embeds Version.
func (v *Version) Meta() *Version { return v }
