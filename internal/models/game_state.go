package models

import (
	"bytes"
	"time"

	"gorm.io/datatypes"
)

// GameState is one observed version of a live game. The business key is the
// upstream game id (e.g. ESPN event id). Static metadata (teams, venue,
// schedule) is carried on every row for query convenience but is not
// version-significant: only the state section (scores, period, clock, status,
// situation) triggers a new version.
type GameState struct {
	Version

	Sport  string `gorm:"type:varchar(20);not null;index"`
	League string `gorm:"type:varchar(20);not null;index"`

	// Metadata section (static).
	HomeTeam  string    `gorm:"type:varchar(60);not null"`
	AwayTeam  string    `gorm:"type:varchar(60);not null"`
	VenueName string    `gorm:"type:varchar(120)"`
	StartTime time.Time `gorm:"type:timestamptz;not null"`

	// State section (dynamic, version-significant).
	HomeScore    int            `gorm:"not null;default:0"`
	AwayScore    int            `gorm:"not null;default:0"`
	Period       int            `gorm:"not null;default:0"`
	ClockSeconds int            `gorm:"not null;default:0"`
	Status       string         `gorm:"type:varchar(20);not null;index"`
	Situation    datatypes.JSON `gorm:"type:jsonb"`

	// LastSeenAt is bookkeeping only and never causes a new version.
	LastSeenAt time.Time `gorm:"type:timestamptz;not null"`
}

func (GameState) TableName() string {
	return "game_states"
}

// Unchanged compares the version-significant state fields against prev.
func (g *GameState) Unchanged(prev *GameState) bool {
	if prev == nil {
		return false
	}
	return g.HomeScore == prev.HomeScore &&
		g.AwayScore == prev.AwayScore &&
		g.Period == prev.Period &&
		g.ClockSeconds == prev.ClockSeconds &&
		g.Status == prev.Status &&
		bytes.Equal(g.Situation, prev.Situation)
}
