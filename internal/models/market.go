package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Market is one observed version of an exchange market. The business key is
// the market ticker. Prices are stored as numeric, never float.
type Market struct {
	Version

	SeriesTicker string `gorm:"type:varchar(60);not null;index"`
	EventTicker  string `gorm:"type:varchar(80);not null;index"`
	Title        string `gorm:"type:text;not null"`

	// GameKey links the market to a game business key, resolved by the
	// market sync service from the exchange event ticker. Empty when the
	// market is not matched to a tracked game.
	GameKey string `gorm:"type:varchar(120);index"`

	// Version-significant price fields.
	YesBid    decimal.Decimal `gorm:"type:numeric(20,10);not null"`
	YesAsk    decimal.Decimal `gorm:"type:numeric(20,10);not null"`
	LastPrice decimal.Decimal `gorm:"type:numeric(20,10);not null"`
	Status    string          `gorm:"type:varchar(20);not null;index"`

	Volume       int64 `gorm:"not null;default:0"`
	OpenInterest int64 `gorm:"not null;default:0"`

	LastSeenAt time.Time `gorm:"type:timestamptz;not null"`
}

func (Market) TableName() string {
	return "markets"
}

func (m *Market) Unchanged(prev *Market) bool {
	if prev == nil {
		return false
	}
	return m.YesBid.Equal(prev.YesBid) &&
		m.YesAsk.Equal(prev.YesAsk) &&
		m.LastPrice.Equal(prev.LastPrice) &&
		m.Status == prev.Status
}
