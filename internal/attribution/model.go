package attribution

import (
	"github.com/shopspring/decimal"

	"sportsbot/internal/models"
)

// Model is a versioned probability source. Only the identity and the
// estimate cross into the core: model internals are external collaborators.
// The (ID, Version) pair is what trades and positions are attributed to.
type Model interface {
	ID() string
	Version() string
	Estimate(g *models.GameState) (decimal.Decimal, error)
}

// ScoreDiffModel is the in-tree reference model: a deterministic win
// probability from the current score differential. It exists so edges and
// trades always have a real model identity to attribute; anything smarter
// plugs in behind the same interface.
type ScoreDiffModel struct {
	ModelID      string
	ModelVersion string

	// PerPointWeight is the probability shift per point of home lead.
	PerPointWeight decimal.Decimal
}

// NewScoreDiffModel uses 0.03 probability per point of lead around a 0.50
// base, clamped into [0.02, 0.98] while the game is live.
func NewScoreDiffModel() ScoreDiffModel {
	return ScoreDiffModel{
		ModelID:        "score_diff",
		ModelVersion:   "v1.0",
		PerPointWeight: decimal.RequireFromString("0.03"),
	}
}

func (m ScoreDiffModel) ID() string      { return m.ModelID }
func (m ScoreDiffModel) Version() string { return m.ModelVersion }

var (
	half     = decimal.RequireFromString("0.5")
	floorP   = decimal.RequireFromString("0.02")
	ceilingP = decimal.RequireFromString("0.98")
)

// Estimate returns the home-side win probability as an exact decimal.
func (m ScoreDiffModel) Estimate(g *models.GameState) (decimal.Decimal, error) {
	lead := decimal.NewFromInt(int64(g.HomeScore - g.AwayScore))
	if g.Status == "final" {
		switch {
		case lead.IsPositive():
			return decimal.NewFromInt(1), nil
		case lead.IsNegative():
			return decimal.Zero, nil
		default:
			return half, nil
		}
	}
	p := half.Add(lead.Mul(m.PerPointWeight))
	if p.LessThan(floorP) {
		return floorP, nil
	}
	if p.GreaterThan(ceilingP) {
		return ceilingP, nil
	}
	return p, nil
}
