package models

import "time"

// Anomaly is a persisted validation issue. Warning- and info-level issues
// never block storage, but they are never dropped either: each one lands
// here with the originating business key so suspicious feed behavior
// (score corrections, clock overruns) can be pattern-analyzed later.
type Anomaly struct {
	ID uint64 `gorm:"primaryKey;autoIncrement" json:"id"`

	Entity      string `gorm:"type:varchar(30);not null;index" json:"entity"`
	BusinessKey string `gorm:"type:varchar(120);not null;index" json:"business_key"`

	Severity string `gorm:"type:varchar(10);not null;index" json:"severity"`
	Field    string `gorm:"type:varchar(60);not null" json:"field"`
	Message  string `gorm:"type:text;not null" json:"message"`

	// Blocked marks issues that prevented the delta from being stored.
	Blocked bool `gorm:"not null;default:false" json:"blocked"`

	ObservedAt time.Time `gorm:"type:timestamptz;not null;index" json:"observed_at"`
	CreatedAt  time.Time `gorm:"type:timestamptz;autoCreateTime" json:"created_at"`
}

func (Anomaly) TableName() string {
	return "anomalies"
}
