package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Trade is an append-only execution record. It is not versioned: a trade
// happened once and its decision-input snapshot (probability, price, edge,
// strategy and model identity) is frozen at creation. PositionVersionID
// references the position's surrogate key, so the trade stays attached to
// the exact version that existed when it executed.
type Trade struct {
	ID       uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	TradeKey string `gorm:"type:varchar(40);not null;uniqueIndex" json:"trade_key"`

	// PositionVersionID is nil for trades that did not open or touch a
	// tracked position (e.g. paper fills recorded for attribution only).
	PositionVersionID *uint64 `gorm:"index" json:"position_version_id,omitempty"`
	StrategyID        uint64 `gorm:"not null;index" json:"strategy_id"`
	ModelID           string `gorm:"type:varchar(60);not null" json:"model_id"`
	ModelVersion      string `gorm:"type:varchar(20);not null" json:"model_version"`

	MarketTicker string          `gorm:"type:varchar(80);not null;index" json:"market_ticker"`
	Side         string          `gorm:"type:varchar(5);not null" json:"side"`
	Quantity     decimal.Decimal `gorm:"type:numeric(30,10);not null" json:"quantity"`

	// Decision-input snapshot, frozen at creation.
	CalculatedProbability decimal.Decimal `gorm:"type:numeric(20,10);not null" json:"calculated_probability"`
	MarketPrice           decimal.Decimal `gorm:"type:numeric(20,10);not null" json:"market_price"`
	EdgeValue             decimal.Decimal `gorm:"type:numeric(20,10);not null" json:"edge_value"`

	ExecutedAt time.Time `gorm:"type:timestamptz;not null" json:"executed_at"`
	CreatedAt  time.Time `gorm:"type:timestamptz;autoCreateTime" json:"created_at"`
}

func (Trade) TableName() string {
	return "trades"
}
