package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"sportsbot/internal/client/espn"
	"sportsbot/internal/metrics"
	"sportsbot/internal/models"
	"sportsbot/internal/repository"
	"sportsbot/internal/scd"
	"sportsbot/internal/validate"
)

// League names one scoreboard feed to poll, e.g. {"football", "nfl"}.
type League struct {
	Sport  string
	League string
}

// GameSyncService polls the scoreboard feed and writes observed game deltas
// into the versioned game store. Rejected deltas never reach the store; every
// warning and error is persisted as an anomaly either way.
type GameSyncService struct {
	ESPN    *espn.Client
	Games   *scd.Store[models.GameState, *models.GameState]
	Repo    repository.Repository
	Logger  *zap.Logger
	Leagues []League
}

type GameSyncResult struct {
	Games    int `json:"games"`
	Versions int `json:"versions"`
	Noops    int `json:"noops"`
	Rejected int `json:"rejected"`
}

// PollOnce runs one full poll across all configured leagues. A rejected game
// does not abort the batch: it is logged, counted, and persisted as blocked
// anomalies while the remaining games proceed.
func (s *GameSyncService) PollOnce(ctx context.Context) (GameSyncResult, error) {
	var result GameSyncResult
	if s == nil || s.ESPN == nil || s.Games == nil {
		return result, nil
	}
	for _, league := range s.Leagues {
		games, err := s.ESPN.GetScoreboard(ctx, league.Sport, league.League, "")
		if err != nil {
			metrics.PollsTotal.WithLabelValues("espn", "error").Inc()
			return result, fmt.Errorf("scoreboard %s/%s: %w", league.Sport, league.League, err)
		}
		for i := range games {
			result.Games++
			created, err := s.processGame(ctx, &games[i])
			if err != nil {
				var verr *validate.ValidationError
				if errors.As(err, &verr) {
					result.Rejected++
					if s.Logger != nil {
						s.Logger.Warn("game delta rejected", zap.Error(verr))
					}
					continue
				}
				metrics.PollsTotal.WithLabelValues("espn", "error").Inc()
				return result, err
			}
			if created {
				result.Versions++
			} else {
				result.Noops++
			}
		}
	}
	metrics.PollsTotal.WithLabelValues("espn", "ok").Inc()
	return result, nil
}

// processGame validates one observed game against its stored current version
// and upserts it. The returned error is *validate.ValidationError when the
// delta was rejected.
func (s *GameSyncService) processGame(ctx context.Context, g *espn.Game) (bool, error) {
	next, err := buildGameState(g)
	if err != nil {
		return false, fmt.Errorf("game %s: %w", g.ID, err)
	}

	prev, err := s.Games.GetCurrent(ctx, g.ID)
	if err != nil {
		var nf *scd.NotFoundError
		if !errors.As(err, &nf) {
			return false, err
		}
		prev = nil
	}

	res := validate.GameState(next, prev)
	outcome := res.Outcome()
	if err := persistAnomalies(ctx, s.Repo, "game_state", g.ID, res, outcome); err != nil {
		return false, err
	}
	if outcome == validate.Rejected {
		return false, &validate.ValidationError{
			Entity:      "game_state",
			BusinessKey: g.ID,
			Issues:      res.Errors(),
		}
	}

	_, created, err := s.Games.Upsert(ctx, g.ID, next)
	return created, err
}

// buildGameState converts a normalized scoreboard record into a versioned row,
// encoding the sport-specific situation into its jsonb envelope.
func buildGameState(g *espn.Game) (*models.GameState, error) {
	now := time.Now().UTC()
	state := &models.GameState{
		Sport:        g.Metadata.Sport,
		League:       g.Metadata.League,
		HomeTeam:     g.Metadata.HomeTeam,
		AwayTeam:     g.Metadata.AwayTeam,
		VenueName:    g.Metadata.VenueName,
		StartTime:    g.Metadata.StartTime,
		HomeScore:    g.State.HomeScore,
		AwayScore:    g.State.AwayScore,
		Period:       g.State.Period,
		ClockSeconds: g.State.ClockSeconds,
		Status:       g.State.Status,
		LastSeenAt:   now,
	}

	var situation validate.Situation
	switch g.Metadata.Sport {
	case "football":
		situation = validate.FootballSituation{
			Down:       g.State.Down,
			Distance:   g.State.Distance,
			YardLine:   g.State.YardLine,
			Possession: g.State.Possession,
			RedZone:    g.State.YardLine != validate.SentinelNotApplicable && g.State.YardLine >= 80,
		}
	case "basketball":
		situation = validate.BasketballSituation{
			Possession:       g.State.Possession,
			ShotClockSeconds: validate.SentinelNotApplicable,
		}
	default:
		return state, nil
	}

	raw, err := validate.EncodeSituation(situation)
	if err != nil {
		return nil, err
	}
	state.Situation = raw
	return state, nil
}
