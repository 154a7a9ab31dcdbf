package gormrepository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"sportsbot/internal/models"
	"sportsbot/internal/repository"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) InTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.WithContext(ctx).Transaction(fn)
}

// --- Strategies -------------------------------------------------------------

func (s *Store) InsertStrategy(ctx context.Context, item *models.Strategy) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) GetStrategyByID(ctx context.Context, id uint64) (*models.Strategy, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.Strategy
	err := s.db.WithContext(ctx).First(&item, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func (s *Store) GetStrategyByNameVersion(ctx context.Context, name, version string) (*models.Strategy, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	name = strings.TrimSpace(name)
	version = strings.TrimSpace(version)
	if name == "" || version == "" {
		return nil, nil
	}
	var item models.Strategy
	err := s.db.WithContext(ctx).
		Where("name = ? AND version = ?", name, version).
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func (s *Store) ListStrategies(ctx context.Context) ([]models.Strategy, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.Strategy
	err := s.db.WithContext(ctx).
		Order("name asc, version asc").
		Find(&items).Error
	return items, err
}

func (s *Store) ListStrategiesByStatus(ctx context.Context, status string) ([]models.Strategy, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.Strategy
	err := s.db.WithContext(ctx).
		Where("status = ?", status).
		Order("name asc, version asc").
		Find(&items).Error
	return items, err
}

// UpdateStrategyStatusGuarded flips status only when the stored status still
// equals from. Zero rows affected means another session transitioned the row
// first; the manager re-reads and revalidates from the fresh state.
func (s *Store) UpdateStrategyStatusGuarded(ctx context.Context, id uint64, from, to string) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	res := s.db.WithContext(ctx).
		Model(&models.Strategy{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	return res.RowsAffected, res.Error
}

func (s *Store) UpdateStrategyMetrics(ctx context.Context, id uint64, fields map[string]any) (int64, error) {
	if s == nil || s.db == nil || len(fields) == 0 {
		return 0, nil
	}
	res := s.db.WithContext(ctx).
		Model(&models.Strategy{}).
		Where("id = ?", id).
		Updates(fields)
	return res.RowsAffected, res.Error
}

// --- Trades -----------------------------------------------------------------

func (s *Store) InsertTrade(ctx context.Context, item *models.Trade) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) GetTradeByKey(ctx context.Context, tradeKey string) (*models.Trade, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.Trade
	err := s.db.WithContext(ctx).
		Where("trade_key = ?", strings.TrimSpace(tradeKey)).
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func (s *Store) ListTrades(ctx context.Context, params repository.ListTradesParams) ([]models.Trade, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := s.db.WithContext(ctx).Model(&models.Trade{})
	if params.StrategyID != nil {
		query = query.Where("strategy_id = ?", *params.StrategyID)
	}
	if params.MarketTicker != nil && strings.TrimSpace(*params.MarketTicker) != "" {
		query = query.Where("market_ticker = ?", strings.TrimSpace(*params.MarketTicker))
	}
	if params.Since != nil && !params.Since.IsZero() {
		query = query.Where("executed_at >= ?", *params.Since)
	}
	limit := normalizeLimit(params.Limit, 200)
	offset := normalizeOffset(params.Offset)
	var items []models.Trade
	err := query.Order("executed_at desc").Limit(limit).Offset(offset).Find(&items).Error
	return items, err
}

// --- Anomalies --------------------------------------------------------------

func (s *Store) InsertAnomalies(ctx context.Context, items []models.Anomaly) error {
	if s == nil || s.db == nil || len(items) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Create(&items).Error
}

func (s *Store) ListAnomalies(ctx context.Context, params repository.ListAnomaliesParams) ([]models.Anomaly, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := s.db.WithContext(ctx).Model(&models.Anomaly{})
	if params.Entity != nil && strings.TrimSpace(*params.Entity) != "" {
		query = query.Where("entity = ?", strings.TrimSpace(*params.Entity))
	}
	if params.BusinessKey != nil && strings.TrimSpace(*params.BusinessKey) != "" {
		query = query.Where("business_key = ?", strings.TrimSpace(*params.BusinessKey))
	}
	if params.Severity != nil && strings.TrimSpace(*params.Severity) != "" {
		query = query.Where("severity = ?", strings.TrimSpace(*params.Severity))
	}
	if params.Since != nil && !params.Since.IsZero() {
		query = query.Where("observed_at >= ?", *params.Since)
	}
	limit := normalizeLimit(params.Limit, 200)
	offset := normalizeOffset(params.Offset)
	var items []models.Anomaly
	err := query.Order("observed_at desc").Limit(limit).Offset(offset).Find(&items).Error
	return items, err
}

func normalizeLimit(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}
	if limit > 1000 {
		return 1000
	}
	return limit
}

func normalizeOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}
