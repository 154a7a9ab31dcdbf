package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Strategy is one immutable (name, version) strategy configuration. Many rows
// may share Name; each row is a distinct identity and trades reference the
// specific row active when they were created, never "the latest". Config is
// set once at creation and never updated. Status and the performance metrics
// are the only mutable columns.
type Strategy struct {
	ID      uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	Name    string `gorm:"type:varchar(50);not null;uniqueIndex:uq_strategy_name_version,priority:1" json:"name"`
	Semver  string `gorm:"column:version;type:varchar(20);not null;uniqueIndex:uq_strategy_name_version,priority:2" json:"version"`

	Config datatypes.JSON `gorm:"type:jsonb;not null" json:"config"`

	Status string `gorm:"type:varchar(20);not null;default:'draft';index" json:"status"`

	PaperROI         decimal.Decimal `gorm:"column:paper_roi;type:numeric(20,10);not null;default:0" json:"paper_roi"`
	LiveROI          decimal.Decimal `gorm:"column:live_roi;type:numeric(20,10);not null;default:0" json:"live_roi"`
	PaperTradesCount int64           `gorm:"not null;default:0" json:"paper_trades_count"`
	LiveTradesCount  int64           `gorm:"not null;default:0" json:"live_trades_count"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime" json:"updated_at"`
}

func (Strategy) TableName() string {
	return "strategies"
}
