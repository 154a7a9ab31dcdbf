package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"sportsbot/internal/attribution"
	"sportsbot/internal/metrics"
	"sportsbot/internal/models"
	"sportsbot/internal/num"
	"sportsbot/internal/scd"
)

// EdgeScanService recomputes model-vs-market edges across every current
// market that is linked to a tracked game. Each edge version records the
// surrogate ids of the exact game and market versions it was computed from.
type EdgeScanService struct {
	Games   *scd.Store[models.GameState, *models.GameState]
	Markets *scd.Store[models.Market, *models.Market]
	Edges   *scd.Store[models.Edge, *models.Edge]
	Model   attribution.Model
	Logger  *zap.Logger

	// ScanLimit caps how many current markets one scan considers.
	ScanLimit int
}

type EdgeScanResult struct {
	Scanned  int `json:"scanned"`
	Versions int `json:"versions"`
	Noops    int `json:"noops"`
	Skipped  int `json:"skipped"`
}

func (s *EdgeScanService) ScanOnce(ctx context.Context) (EdgeScanResult, error) {
	var result EdgeScanResult
	if s == nil || s.Markets == nil || s.Games == nil || s.Edges == nil || s.Model == nil {
		return result, nil
	}
	markets, err := s.Markets.ListCurrent(ctx, s.ScanLimit)
	if err != nil {
		metrics.PollsTotal.WithLabelValues("edge_scan", "error").Inc()
		return result, err
	}
	for i := range markets {
		market := &markets[i]
		if market.GameKey == "" || market.Status != "active" {
			continue
		}
		result.Scanned++
		created, skipped, err := s.scanMarket(ctx, market)
		if err != nil {
			metrics.PollsTotal.WithLabelValues("edge_scan", "error").Inc()
			return result, err
		}
		switch {
		case skipped:
			result.Skipped++
		case created:
			result.Versions++
		default:
			result.Noops++
		}
	}
	metrics.PollsTotal.WithLabelValues("edge_scan", "ok").Inc()
	return result, nil
}

func (s *EdgeScanService) scanMarket(ctx context.Context, market *models.Market) (created, skipped bool, err error) {
	game, err := s.Games.GetCurrent(ctx, market.GameKey)
	if err != nil {
		var nf *scd.NotFoundError
		if errors.As(err, &nf) {
			if s.Logger != nil {
				s.Logger.Debug("edge scan skipping market with untracked game",
					zap.String("ticker", market.BusinessKey),
					zap.String("game_key", market.GameKey),
				)
			}
			return false, true, nil
		}
		return false, false, err
	}

	probability, err := s.Model.Estimate(game)
	if err != nil {
		return false, false, fmt.Errorf("model %s on %s: %w", s.Model.ID(), market.BusinessKey, err)
	}

	price := market.YesAsk
	if price.IsZero() {
		price = market.LastPrice
	}

	edge := &models.Edge{
		MarketTicker:    market.BusinessKey,
		GameKey:         market.GameKey,
		ModelID:         s.Model.ID(),
		ModelVersion:    s.Model.Version(),
		GameStateID:     game.ID,
		MarketVersionID: market.ID,
		Probability:     probability,
		MarketPrice:     price,
		Value:           num.Edge(probability, price),
		ComputedAt:      time.Now().UTC(),
	}

	key := edgeKey(market.BusinessKey, s.Model.ID())
	_, created, err = s.Edges.Upsert(ctx, key, edge)
	return created, false, err
}

// edgeKey is the edge business key: one history per market and model.
func edgeKey(ticker, modelID string) string {
	return ticker + "|" + modelID
}
