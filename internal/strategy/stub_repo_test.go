package strategy

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"sportsbot/internal/models"
	"sportsbot/internal/repository"
)

// stubRepo is a test-only in-memory implementation of repository.Repository.
// It mimics the guarded status update semantics so manager tests exercise the
// optimistic-concurrency path without a database.
type stubRepo struct {
	mu         sync.Mutex
	nextID     uint64
	strategies map[uint64]models.Strategy
	trades     []models.Trade
	anomalies  []models.Anomaly
}

func newStubRepo() *stubRepo {
	return &stubRepo{nextID: 1, strategies: map[uint64]models.Strategy{}}
}

func (s *stubRepo) InTx(ctx context.Context, fn func(tx *gorm.DB) error) error { return fn(nil) }

func (s *stubRepo) InsertStrategy(ctx context.Context, item *models.Strategy) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.strategies {
		if existing.Name == item.Name && existing.Semver == item.Semver {
			return gorm.ErrDuplicatedKey
		}
	}
	item.ID = s.nextID
	s.nextID++
	s.strategies[item.ID] = *item
	return nil
}

func (s *stubRepo) GetStrategyByID(ctx context.Context, id uint64) (*models.Strategy, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.strategies[id]
	if !ok {
		return nil, nil
	}
	return &item, nil
}

func (s *stubRepo) GetStrategyByNameVersion(ctx context.Context, name, version string) (*models.Strategy, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range s.strategies {
		if item.Name == name && item.Semver == version {
			out := item
			return &out, nil
		}
	}
	return nil, nil
}

func (s *stubRepo) ListStrategies(ctx context.Context) ([]models.Strategy, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Strategy, 0, len(s.strategies))
	for _, item := range s.strategies {
		out = append(out, item)
	}
	return out, nil
}

func (s *stubRepo) ListStrategiesByStatus(ctx context.Context, status string) ([]models.Strategy, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Strategy
	for _, item := range s.strategies {
		if item.Status == status {
			out = append(out, item)
		}
	}
	return out, nil
}

func (s *stubRepo) UpdateStrategyStatusGuarded(ctx context.Context, id uint64, from, to string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.strategies[id]
	if !ok || item.Status != from {
		return 0, nil
	}
	item.Status = to
	s.strategies[id] = item
	return 1, nil
}

func (s *stubRepo) UpdateStrategyMetrics(ctx context.Context, id uint64, fields map[string]any) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.strategies[id]
	if !ok {
		return 0, nil
	}
	// Only the four metric columns are reachable through this method; the
	// config column is asserted untouched by the immutability test.
	if v, ok := fields["paper_roi"].(decimal.Decimal); ok {
		item.PaperROI = v
	}
	if v, ok := fields["live_roi"].(decimal.Decimal); ok {
		item.LiveROI = v
	}
	if v, ok := fields["paper_trades_count"].(int64); ok {
		item.PaperTradesCount = v
	}
	if v, ok := fields["live_trades_count"].(int64); ok {
		item.LiveTradesCount = v
	}
	s.strategies[id] = item
	return 1, nil
}

func (s *stubRepo) InsertTrade(ctx context.Context, item *models.Trade) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	item.ID = uint64(len(s.trades) + 1)
	s.trades = append(s.trades, *item)
	return nil
}

func (s *stubRepo) GetTradeByKey(ctx context.Context, tradeKey string) (*models.Trade, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range s.trades {
		if item.TradeKey == tradeKey {
			out := item
			return &out, nil
		}
	}
	return nil, nil
}

func (s *stubRepo) ListTrades(ctx context.Context, params repository.ListTradesParams) ([]models.Trade, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Trade(nil), s.trades...), nil
}

func (s *stubRepo) InsertAnomalies(ctx context.Context, items []models.Anomaly) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.anomalies = append(s.anomalies, items...)
	return nil
}

func (s *stubRepo) ListAnomalies(ctx context.Context, params repository.ListAnomaliesParams) ([]models.Anomaly, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Anomaly(nil), s.anomalies...), nil
}
