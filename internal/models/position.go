package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Position is one observed version of a held position. The business key is a
// generated UUID assigned at entry. Mark-to-market fields (CurrentPrice,
// UnrealizedPnL, Status) are version-significant; the attribution snapshot
// fields (StrategyID, ModelID, EdgeAtEntry, MarketPriceAtEntry, EnteredAt)
// are written once at entry and copied verbatim onto every later version;
// no code path modifies them.
type Position struct {
	Version

	MarketTicker string `gorm:"type:varchar(80);not null;index"`
	GameKey      string `gorm:"type:varchar(120);index"`
	Side         string `gorm:"type:varchar(5);not null"`

	Quantity decimal.Decimal `gorm:"type:numeric(30,10);not null"`

	// Attribution snapshot, immutable after entry.
	StrategyID         uint64          `gorm:"not null;index"`
	ModelID            string          `gorm:"type:varchar(60);not null"`
	ModelVersion       string          `gorm:"type:varchar(20);not null"`
	EdgeAtEntry        decimal.Decimal `gorm:"type:numeric(20,10);not null"`
	MarketPriceAtEntry decimal.Decimal `gorm:"type:numeric(20,10);not null"`
	EnteredAt          time.Time       `gorm:"type:timestamptz;not null"`

	// Mark-to-market, version-significant.
	CurrentPrice  decimal.Decimal `gorm:"type:numeric(20,10);not null"`
	UnrealizedPnL decimal.Decimal `gorm:"column:unrealized_pnl;type:numeric(30,10);not null"`
	Status        string          `gorm:"type:varchar(20);not null;default:'open';index"`
}

func (Position) TableName() string {
	return "positions"
}

func (p *Position) Unchanged(prev *Position) bool {
	if prev == nil {
		return false
	}
	return p.CurrentPrice.Equal(prev.CurrentPrice) &&
		p.UnrealizedPnL.Equal(prev.UnrealizedPnL) &&
		p.Quantity.Equal(prev.Quantity) &&
		p.Status == prev.Status
}
