package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"sportsbot/internal/client/kalshi"
	"sportsbot/internal/metrics"
	"sportsbot/internal/models"
	"sportsbot/internal/repository"
	"sportsbot/internal/scd"
	"sportsbot/internal/validate"
)

// GameKeyResolver maps an exchange event ticker to a tracked game business
// key. Returning "" leaves the market unlinked.
type GameKeyResolver func(eventTicker string) string

// StaticResolver resolves game keys from a fixed event-to-game mapping.
func StaticResolver(eventGames map[string]string) GameKeyResolver {
	return func(eventTicker string) string {
		return eventGames[eventTicker]
	}
}

// MarketSyncService polls the exchange markets feed and writes observed price
// deltas into the versioned market store.
type MarketSyncService struct {
	Kalshi     *kalshi.Client
	Markets    *scd.Store[models.Market, *models.Market]
	Repo       repository.Repository
	Logger     *zap.Logger
	Series     []string
	PageLimit  int
	ResolveKey GameKeyResolver
}

type MarketSyncResult struct {
	Markets  int `json:"markets"`
	Versions int `json:"versions"`
	Noops    int `json:"noops"`
	Rejected int `json:"rejected"`
}

func (s *MarketSyncService) PollOnce(ctx context.Context) (MarketSyncResult, error) {
	var result MarketSyncResult
	if s == nil || s.Kalshi == nil || s.Markets == nil {
		return result, nil
	}
	for _, series := range s.Series {
		markets, err := s.Kalshi.GetMarkets(ctx, series, s.PageLimit)
		if err != nil {
			metrics.PollsTotal.WithLabelValues("kalshi", "error").Inc()
			return result, fmt.Errorf("markets %s: %w", series, err)
		}
		for i := range markets {
			result.Markets++
			created, err := s.processMarket(ctx, &markets[i])
			if err != nil {
				var verr *validate.ValidationError
				if errors.As(err, &verr) {
					result.Rejected++
					if s.Logger != nil {
						s.Logger.Warn("market delta rejected", zap.Error(verr))
					}
					continue
				}
				metrics.PollsTotal.WithLabelValues("kalshi", "error").Inc()
				return result, err
			}
			if created {
				result.Versions++
			} else {
				result.Noops++
			}
		}
	}
	metrics.PollsTotal.WithLabelValues("kalshi", "ok").Inc()
	return result, nil
}

func (s *MarketSyncService) processMarket(ctx context.Context, m *kalshi.Market) (bool, error) {
	next := s.buildMarket(m)

	res := validate.Market(next)
	outcome := res.Outcome()
	if err := persistAnomalies(ctx, s.Repo, "market", m.Ticker, res, outcome); err != nil {
		return false, err
	}
	if outcome == validate.Rejected {
		return false, &validate.ValidationError{
			Entity:      "market",
			BusinessKey: m.Ticker,
			Issues:      res.Errors(),
		}
	}

	_, created, err := s.Markets.Upsert(ctx, m.Ticker, next)
	return created, err
}

func (s *MarketSyncService) buildMarket(m *kalshi.Market) *models.Market {
	gameKey := ""
	if s.ResolveKey != nil {
		gameKey = s.ResolveKey(m.EventTicker)
	}
	return &models.Market{
		SeriesTicker: m.SeriesTicker,
		EventTicker:  m.EventTicker,
		Title:        m.Title,
		GameKey:      gameKey,
		YesBid:       m.YesBid,
		YesAsk:       m.YesAsk,
		LastPrice:    m.LastPrice,
		Status:       m.Status,
		Volume:       m.Volume,
		OpenInterest: m.OpenInterest,
		LastSeenAt:   time.Now().UTC(),
	}
}

