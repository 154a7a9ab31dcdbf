package validate

import "sportsbot/internal/models"

// periodSeconds maps a sport to its regulation period length. Unknown sports
// skip the clock upper-bound check.
var periodSeconds = map[string]int{
	"football":   15 * 60,
	"basketball": 12 * 60,
	"hockey":     20 * 60,
}

// GameState validates an inbound game-state delta against the previously
// stored current version (prev may be nil for a first observation). Scores
// must be non-negative; a decrease versus prev is a warning, not an error,
// because feeds do issue corrections. Clock bounds and sport-specific
// situational fields are checked per the sentinel convention.
func GameState(next *models.GameState, prev *models.GameState) Result {
	var res Result

	if next.HomeScore < 0 {
		res.Errorf("home_score", "negative score %d", next.HomeScore)
	}
	if next.AwayScore < 0 {
		res.Errorf("away_score", "negative score %d", next.AwayScore)
	}
	if prev != nil {
		if next.HomeScore < prev.HomeScore {
			res.Warnf("home_score", "score decreased from %d to %d", prev.HomeScore, next.HomeScore)
		}
		if next.AwayScore < prev.AwayScore {
			res.Warnf("away_score", "score decreased from %d to %d", prev.AwayScore, next.AwayScore)
		}
		if next.Period < prev.Period {
			res.Warnf("period", "period went backward from %d to %d", prev.Period, next.Period)
		}
	}

	if next.ClockSeconds < 0 {
		res.Errorf("clock_seconds", "negative clock %d", next.ClockSeconds)
	} else if limit, ok := periodSeconds[next.Sport]; ok && next.ClockSeconds > limit {
		res.Warnf("clock_seconds", "clock %ds exceeds %s period length %ds", next.ClockSeconds, next.Sport, limit)
	}

	if next.Period < 0 {
		res.Errorf("period", "negative period %d", next.Period)
	}

	if len(next.Situation) > 0 {
		situation, err := DecodeSituation(next.Situation)
		if err != nil {
			res.Errorf("situation", "undecodable situation payload: %v", err)
		} else if situation != nil {
			if situation.Sport() != next.Sport {
				res.Warnf("situation", "situation sport %q does not match game sport %q", situation.Sport(), next.Sport)
			}
			situation.check(&res)
		}
	}

	return res
}

// Market validates an inbound market delta. Price range is checked upstream
// at decimal construction, so only the cross-field invariants are guarded
// here.
func Market(next *models.Market) Result {
	var res Result
	if next.YesBid.GreaterThan(next.YesAsk) {
		res.Warnf("yes_bid", "bid %s crosses ask %s", next.YesBid.String(), next.YesAsk.String())
	}
	if next.Volume < 0 {
		res.Errorf("volume", "negative volume %d", next.Volume)
	}
	if next.OpenInterest < 0 {
		res.Errorf("open_interest", "negative open interest %d", next.OpenInterest)
	}
	return res
}
