package service

import (
	"testing"
	"time"

	"sportsbot/internal/client/espn"
	"sportsbot/internal/client/kalshi"
	"sportsbot/internal/validate"

	"github.com/shopspring/decimal"
)

func TestBuildGameStateFootball(t *testing.T) {
	g := &espn.Game{
		ID: "401547430",
		Metadata: espn.Metadata{
			Sport:     "football",
			League:    "nfl",
			HomeTeam:  "Kansas City Chiefs",
			AwayTeam:  "Detroit Lions",
			VenueName: "Arrowhead Stadium",
			StartTime: time.Date(2025, 9, 7, 17, 0, 0, 0, time.UTC),
		},
		State: espn.State{
			HomeScore:    21,
			AwayScore:    17,
			Period:       3,
			ClockSeconds: 754,
			Status:       "in_progress",
			Down:         2,
			Distance:     7,
			YardLine:     85,
			Possession:   "12",
		},
	}

	state, err := buildGameState(g)
	if err != nil {
		t.Fatalf("buildGameState failed: %v", err)
	}
	if state.HomeScore != 21 || state.AwayScore != 17 {
		t.Errorf("unexpected score: %d-%d", state.HomeScore, state.AwayScore)
	}
	if state.Status != "in_progress" {
		t.Errorf("unexpected status: %s", state.Status)
	}

	decoded, err := validate.DecodeSituation(state.Situation)
	if err != nil {
		t.Fatalf("DecodeSituation failed: %v", err)
	}
	fb, ok := decoded.(validate.FootballSituation)
	if !ok {
		t.Fatalf("expected FootballSituation, got %T", decoded)
	}
	if fb.Down != 2 || fb.Distance != 7 || fb.YardLine != 85 {
		t.Errorf("unexpected situation: %+v", fb)
	}
	if !fb.RedZone {
		t.Error("yard line 85 should be flagged as red zone")
	}
}

func TestBuildGameStateBasketballSentinel(t *testing.T) {
	g := &espn.Game{
		ID: "401547999",
		Metadata: espn.Metadata{
			Sport:  "basketball",
			League: "nba",
		},
		State: espn.State{
			Status:   "scheduled",
			Down:     -1,
			Distance: -1,
			YardLine: -1,
		},
	}

	state, err := buildGameState(g)
	if err != nil {
		t.Fatalf("buildGameState failed: %v", err)
	}
	decoded, err := validate.DecodeSituation(state.Situation)
	if err != nil {
		t.Fatalf("DecodeSituation failed: %v", err)
	}
	bb, ok := decoded.(validate.BasketballSituation)
	if !ok {
		t.Fatalf("expected BasketballSituation, got %T", decoded)
	}
	if bb.ShotClockSeconds != validate.SentinelNotApplicable {
		t.Errorf("expected -1 shot clock sentinel, got %d", bb.ShotClockSeconds)
	}
}

func TestBuildGameStateUnknownSportHasNoSituation(t *testing.T) {
	g := &espn.Game{
		ID:       "100",
		Metadata: espn.Metadata{Sport: "hockey", League: "nhl"},
		State:    espn.State{Status: "in_progress"},
	}
	state, err := buildGameState(g)
	if err != nil {
		t.Fatalf("buildGameState failed: %v", err)
	}
	if state.Situation != nil {
		t.Errorf("hockey should carry no situation envelope, got %s", state.Situation)
	}
}

func TestBuildMarketLinksGameKey(t *testing.T) {
	svc := &MarketSyncService{
		ResolveKey: func(eventTicker string) string {
			if eventTicker == "KXNFLGAME-25SEP07KCDET" {
				return "401547430"
			}
			return ""
		},
	}
	m := &kalshi.Market{
		Ticker:       "KXNFLGAME-25SEP07KCDET-KC",
		EventTicker:  "KXNFLGAME-25SEP07KCDET",
		SeriesTicker: "KXNFLGAME",
		Title:        "Will the Chiefs beat the Lions?",
		Status:       "active",
		YesBid:       decimal.RequireFromString("0.55"),
		YesAsk:       decimal.RequireFromString("0.57"),
		LastPrice:    decimal.RequireFromString("0.56"),
	}

	row := svc.buildMarket(m)
	if row.GameKey != "401547430" {
		t.Errorf("expected resolved game key, got %q", row.GameKey)
	}
	if !row.YesAsk.Equal(decimal.RequireFromString("0.57")) {
		t.Errorf("unexpected ask: %s", row.YesAsk)
	}

	m.EventTicker = "KXNBA-UNKNOWN"
	if row := svc.buildMarket(m); row.GameKey != "" {
		t.Errorf("unresolved event should leave game key empty, got %q", row.GameKey)
	}
}

func TestEdgeKey(t *testing.T) {
	if got := edgeKey("KXNFLGAME-25SEP07KCDET-KC", "score_diff"); got != "KXNFLGAME-25SEP07KCDET-KC|score_diff" {
		t.Errorf("unexpected edge key: %s", got)
	}
}
