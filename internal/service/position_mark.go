package service

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"sportsbot/internal/models"
	"sportsbot/internal/scd"
)

// PositionMarkService re-marks open positions against the current market
// price. Each price move writes a new position version; the entry snapshot
// fields are copied forward untouched.
type PositionMarkService struct {
	Positions *scd.Store[models.Position, *models.Position]
	Markets   *scd.Store[models.Market, *models.Market]
	Logger    *zap.Logger
}

type PositionMarkResult struct {
	Open     int `json:"open"`
	Versions int `json:"versions"`
	Noops    int `json:"noops"`
	Skipped  int `json:"skipped"`
}

func (s *PositionMarkService) RefreshOnce(ctx context.Context) (PositionMarkResult, error) {
	var result PositionMarkResult
	if s == nil || s.Positions == nil || s.Markets == nil {
		return result, nil
	}
	positions, err := s.Positions.ListCurrent(ctx, 0)
	if err != nil {
		return result, err
	}
	for i := range positions {
		pos := &positions[i]
		if pos.Status != "open" {
			continue
		}
		result.Open++

		market, err := s.Markets.GetCurrent(ctx, pos.MarketTicker)
		if err != nil {
			var nf *scd.NotFoundError
			if errors.As(err, &nf) {
				result.Skipped++
				continue
			}
			return result, err
		}
		price := market.LastPrice
		if price.IsZero() {
			price = market.YesBid
		}

		next := remark(pos, price)
		_, created, err := s.Positions.Upsert(ctx, pos.BusinessKey, next)
		if err != nil {
			return result, err
		}
		if created {
			result.Versions++
		} else {
			result.Noops++
		}
	}
	if s.Logger != nil && result.Versions > 0 {
		s.Logger.Info("positions re-marked",
			zap.Int("open", result.Open),
			zap.Int("versions", result.Versions),
		)
	}
	return result, nil
}

// remark builds the successor version: new mark-to-market section, entry
// snapshot copied verbatim.
func remark(pos *models.Position, price decimal.Decimal) *models.Position {
	move := price.Sub(pos.MarketPriceAtEntry)
	if strings.EqualFold(pos.Side, "no") {
		move = move.Neg()
	}
	return &models.Position{
		MarketTicker:       pos.MarketTicker,
		GameKey:            pos.GameKey,
		Side:               pos.Side,
		Quantity:           pos.Quantity,
		StrategyID:         pos.StrategyID,
		ModelID:            pos.ModelID,
		ModelVersion:       pos.ModelVersion,
		EdgeAtEntry:        pos.EdgeAtEntry,
		MarketPriceAtEntry: pos.MarketPriceAtEntry,
		EnteredAt:          pos.EnteredAt,
		CurrentPrice:       price,
		UnrealizedPnL:      move.Mul(pos.Quantity),
		Status:             pos.Status,
	}
}
