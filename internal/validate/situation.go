package validate

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"
)

// SentinelNotApplicable is the documented sentinel for situational fields
// that do not apply to the current play (e.g. down/distance during a kickoff).
// It is distinct from an invalid value: -1 is fine, anything below it is not.
const SentinelNotApplicable = -1

// Situation is the closed set of sport-specific situational payloads. The
// unexported marker keeps the set closed so the validator can handle each
// variant exhaustively instead of probing map keys.
type Situation interface {
	Sport() string
	check(res *Result)
}

// FootballSituation covers gridiron down-and-distance state.
type FootballSituation struct {
	Down       int    `json:"down"`
	Distance   int    `json:"distance"`
	YardLine   int    `json:"yard_line"`
	Possession string `json:"possession"`
	RedZone    bool   `json:"red_zone"`
}

func (FootballSituation) Sport() string { return "football" }

func (s FootballSituation) check(res *Result) {
	if s.Down != SentinelNotApplicable && (s.Down < 1 || s.Down > 4) {
		res.Errorf("situation.down", "down %d outside 1-4 and not the -1 sentinel", s.Down)
	}
	if s.Distance < SentinelNotApplicable {
		res.Errorf("situation.distance", "distance %d below the -1 sentinel", s.Distance)
	}
	if s.YardLine != SentinelNotApplicable && (s.YardLine < 0 || s.YardLine > 100) {
		res.Warnf("situation.yard_line", "yard line %d outside 0-100", s.YardLine)
	}
}

// BasketballSituation covers possession and shot-clock state.
type BasketballSituation struct {
	Possession       string `json:"possession"`
	ShotClockSeconds int    `json:"shot_clock_seconds"`
	Bonus            bool   `json:"bonus"`
}

func (BasketballSituation) Sport() string { return "basketball" }

func (s BasketballSituation) check(res *Result) {
	if s.ShotClockSeconds != SentinelNotApplicable && s.ShotClockSeconds < 0 {
		res.Errorf("situation.shot_clock_seconds", "shot clock %d negative and not the -1 sentinel", s.ShotClockSeconds)
	}
	if s.ShotClockSeconds > 24 {
		res.Warnf("situation.shot_clock_seconds", "shot clock %d exceeds 24", s.ShotClockSeconds)
	}
}

type situationEnvelope struct {
	Sport   string          `json:"sport"`
	Payload json.RawMessage `json:"payload"`
}

// EncodeSituation wraps a situation in a sport-tagged jsonb envelope.
func EncodeSituation(s Situation) (datatypes.JSON, error) {
	if s == nil {
		return nil, nil
	}
	payload, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(situationEnvelope{Sport: s.Sport(), Payload: payload})
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

// DecodeSituation reverses EncodeSituation. Unknown sport tags are an error:
// the variant set is closed on purpose.
func DecodeSituation(raw datatypes.JSON) (Situation, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var env situationEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, err
	}
	switch env.Sport {
	case "football":
		var s FootballSituation
		if err := json.Unmarshal(env.Payload, &s); err != nil {
			return nil, err
		}
		return s, nil
	case "basketball":
		var s BasketballSituation
		if err := json.Unmarshal(env.Payload, &s); err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown situation sport %q", env.Sport)
	}
}
