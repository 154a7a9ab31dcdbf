package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"sportsbot/internal/models"
)

type ListTradesParams struct {
	StrategyID   *uint64
	MarketTicker *string
	Since        *time.Time
	Limit        int
	Offset       int
}

type ListAnomaliesParams struct {
	Entity      *string
	BusinessKey *string
	Severity    *string
	Since       *time.Time
	Limit       int
	Offset      int
}

// Repository covers the non-versioned tables. The versioned entities (game
// states, markets, edges, positions) go through scd.Store instead. There are
// no update methods for trades: the decision snapshot on a trade is
// write-once.
type Repository interface {
	InTx(ctx context.Context, fn func(tx *gorm.DB) error) error

	// Strategies. Config is set by InsertStrategy and never updated;
	// status changes go through the guarded update so two operator
	// sessions cannot transition blindly over each other.
	InsertStrategy(ctx context.Context, item *models.Strategy) error
	GetStrategyByID(ctx context.Context, id uint64) (*models.Strategy, error)
	GetStrategyByNameVersion(ctx context.Context, name, version string) (*models.Strategy, error)
	ListStrategies(ctx context.Context) ([]models.Strategy, error)
	ListStrategiesByStatus(ctx context.Context, status string) ([]models.Strategy, error)
	UpdateStrategyStatusGuarded(ctx context.Context, id uint64, from, to string) (int64, error)
	UpdateStrategyMetrics(ctx context.Context, id uint64, fields map[string]any) (int64, error)

	// Trades, append-only.
	InsertTrade(ctx context.Context, item *models.Trade) error
	GetTradeByKey(ctx context.Context, tradeKey string) (*models.Trade, error)
	ListTrades(ctx context.Context, params ListTradesParams) ([]models.Trade, error)

	// Anomalies, append-only.
	InsertAnomalies(ctx context.Context, items []models.Anomaly) error
	ListAnomalies(ctx context.Context, params ListAnomaliesParams) ([]models.Anomaly, error)
}
