package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Edge is one observed version of the model-vs-market advantage for a market.
// The business key is "<market ticker>|<model id>" so each model tracks its
// own edge history per market. Surrogate keys of the exact game and market
// versions the edge was computed from are recorded so backtests can replay
// the decision inputs.
type Edge struct {
	Version

	MarketTicker string `gorm:"type:varchar(80);not null;index"`
	GameKey      string `gorm:"type:varchar(120);not null;index"`

	ModelID      string `gorm:"type:varchar(60);not null;index"`
	ModelVersion string `gorm:"type:varchar(20);not null"`

	// Surrogate references into the versioned stores, never business keys.
	GameStateID     uint64 `gorm:"not null"`
	MarketVersionID uint64 `gorm:"not null"`

	// Version-significant numeric fields.
	Probability decimal.Decimal `gorm:"type:numeric(20,10);not null"`
	MarketPrice decimal.Decimal `gorm:"type:numeric(20,10);not null"`
	Value       decimal.Decimal `gorm:"type:numeric(20,10);not null"`

	ComputedAt time.Time `gorm:"type:timestamptz;not null"`
}

func (Edge) TableName() string {
	return "edges"
}

func (e *Edge) Unchanged(prev *Edge) bool {
	if prev == nil {
		return false
	}
	return e.Probability.Equal(prev.Probability) &&
		e.MarketPrice.Equal(prev.MarketPrice) &&
		e.Value.Equal(prev.Value)
}
