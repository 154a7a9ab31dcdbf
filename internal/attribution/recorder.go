// Package attribution stamps every trade and position, at creation time,
// with the exact strategy version, model identity and decision-input
// snapshot that produced it. The stamps are write-once: neither this package
// nor the repository exposes a path that modifies them, which is what makes
// post-hoc strategy comparison honest.
package attribution

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"sportsbot/internal/metrics"
	"sportsbot/internal/models"
	"sportsbot/internal/num"
	"sportsbot/internal/repository"
	"sportsbot/internal/scd"
	"sportsbot/internal/strategy"
	"sportsbot/internal/validate"
)

type PositionStore interface {
	Create(ctx context.Context, key string, rec *models.Position) (uint64, error)
	GetCurrent(ctx context.Context, key string) (*models.Position, error)
}

type Recorder struct {
	Repo      repository.Repository
	Positions PositionStore
	Logger    *zap.Logger
}

// TradeInput is everything known at execution time. Probability and price
// arrive as exact decimals; the edge is computed here, not by the caller, so
// every stored edge is guaranteed to be the exact subtraction of its
// neighbors on the same row.
type TradeInput struct {
	// PositionVersionID is the surrogate id of the position version the
	// trade executed against, or nil when no position is involved.
	PositionVersionID     *uint64
	StrategyID            uint64
	ModelID               string
	ModelVersion          string
	MarketTicker          string
	Side                  string
	Quantity              decimal.Decimal
	CalculatedProbability decimal.Decimal
	MarketPrice           decimal.Decimal
	ExecutedAt            time.Time
}

// PositionEntry opens a new position under a freshly generated business key.
type PositionEntry struct {
	MarketTicker          string
	GameKey               string
	Side                  string
	Quantity              decimal.Decimal
	StrategyID            uint64
	ModelID               string
	ModelVersion          string
	CalculatedProbability decimal.Decimal
	MarketPrice           decimal.Decimal
	EnteredAt             time.Time
}

func checkDecisionInputs(entity, key string, probability, price decimal.Decimal) error {
	var res validate.Result
	if err := num.CheckProbability(probability); err != nil {
		res.Errorf("calculated_probability", "%s outside [0, 1]", probability.String())
	}
	if err := num.CheckProbability(price); err != nil {
		res.Errorf("market_price", "%s outside [0, 1]", price.String())
	}
	if issues := res.Errors(); len(issues) > 0 {
		return &validate.ValidationError{Entity: entity, BusinessKey: key, Issues: issues}
	}
	return nil
}

func (r *Recorder) requireStrategy(ctx context.Context, id uint64) (*models.Strategy, error) {
	strat, err := r.Repo.GetStrategyByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if strat == nil {
		return nil, &scd.NotFoundError{Entity: "strategy", BusinessKey: fmt.Sprintf("%d", id)}
	}
	return strat, nil
}

// RecordTrade persists one execution with its full attribution snapshot.
// edge_value is computed as calculated_probability - market_price with exact
// decimal subtraction.
func (r *Recorder) RecordTrade(ctx context.Context, in TradeInput) (*models.Trade, error) {
	if err := checkDecisionInputs("trade", in.MarketTicker, in.CalculatedProbability, in.MarketPrice); err != nil {
		return nil, err
	}
	if _, err := r.requireStrategy(ctx, in.StrategyID); err != nil {
		return nil, err
	}
	if in.ExecutedAt.IsZero() {
		in.ExecutedAt = time.Now().UTC()
	}
	item := &models.Trade{
		TradeKey:              uuid.NewString(),
		PositionVersionID:     in.PositionVersionID,
		StrategyID:            in.StrategyID,
		ModelID:               in.ModelID,
		ModelVersion:          in.ModelVersion,
		MarketTicker:          in.MarketTicker,
		Side:                  in.Side,
		Quantity:              in.Quantity,
		CalculatedProbability: in.CalculatedProbability,
		MarketPrice:           in.MarketPrice,
		EdgeValue:             num.Edge(in.CalculatedProbability, in.MarketPrice),
		ExecutedAt:            in.ExecutedAt,
	}
	if err := r.Repo.InsertTrade(ctx, item); err != nil {
		return nil, fmt.Errorf("insert trade for %s: %w", in.MarketTicker, err)
	}
	metrics.TradesRecorded.Inc()
	if r.Logger != nil {
		r.Logger.Info("trade recorded",
			zap.String("trade_key", item.TradeKey),
			zap.String("market", item.MarketTicker),
			zap.Uint64("strategy_id", item.StrategyID),
			zap.String("edge", item.EdgeValue.String()),
		)
	}
	return item, nil
}

// RecordPositionEntry opens a position locked permanently to the strategy
// version active at entry, never "the latest version of that name". The
// entry snapshot fields are copied verbatim onto every later mark-to-market
// version of the position.
func (r *Recorder) RecordPositionEntry(ctx context.Context, in PositionEntry) (*models.Position, error) {
	if err := checkDecisionInputs("position", in.MarketTicker, in.CalculatedProbability, in.MarketPrice); err != nil {
		return nil, err
	}
	strat, err := r.requireStrategy(ctx, in.StrategyID)
	if err != nil {
		return nil, err
	}
	if strat.Status != string(strategy.StatusActive) {
		return nil, &validate.ValidationError{
			Entity:      "position",
			BusinessKey: in.MarketTicker,
			Issues: []validate.Issue{{
				Severity: validate.SeverityError,
				Field:    "strategy_id",
				Message:  fmt.Sprintf("strategy %s %s is %s, not active", strat.Name, strat.Semver, strat.Status),
			}},
		}
	}
	if in.EnteredAt.IsZero() {
		in.EnteredAt = time.Now().UTC()
	}
	pos := &models.Position{
		MarketTicker:       in.MarketTicker,
		GameKey:            in.GameKey,
		Side:               in.Side,
		Quantity:           in.Quantity,
		StrategyID:         in.StrategyID,
		ModelID:            in.ModelID,
		ModelVersion:       in.ModelVersion,
		EdgeAtEntry:        num.Edge(in.CalculatedProbability, in.MarketPrice),
		MarketPriceAtEntry: in.MarketPrice,
		EnteredAt:          in.EnteredAt,
		CurrentPrice:       in.MarketPrice,
		UnrealizedPnL:      decimal.Zero,
		Status:             "open",
	}
	key := uuid.NewString()
	if _, err := r.Positions.Create(ctx, key, pos); err != nil {
		return nil, fmt.Errorf("open position for %s: %w", in.MarketTicker, err)
	}
	if r.Logger != nil {
		r.Logger.Info("position opened",
			zap.String("business_key", key),
			zap.String("market", in.MarketTicker),
			zap.Uint64("strategy_id", in.StrategyID),
			zap.String("edge_at_entry", pos.EdgeAtEntry.String()),
		)
	}
	return pos, nil
}
