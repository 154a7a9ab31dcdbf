package espn

import "time"

// Game is a normalized scoreboard record. Metadata is static over the life
// of the game; State is the dynamic section the versioned store treats as
// version-significant.
type Game struct {
	ID       string
	Metadata Metadata
	State    State
}

type Metadata struct {
	Sport     string
	League    string
	HomeTeam  string
	AwayTeam  string
	VenueName string
	StartTime time.Time
}

type State struct {
	HomeScore    int
	AwayScore    int
	Period       int
	ClockSeconds int
	Status       string
	// Situation is sport-specific; Down/Distance use -1 when not
	// applicable to the current play.
	Down       int
	Distance   int
	YardLine   int
	Possession string
}

// scoreboardResponse mirrors the upstream JSON shape.
type scoreboardResponse struct {
	Events []scoreboardEvent `json:"events"`
}

type scoreboardEvent struct {
	ID           string    `json:"id"`
	Date         time.Time `json:"date"`
	Competitions []struct {
		Venue struct {
			FullName string `json:"fullName"`
		} `json:"venue"`
		Competitors []struct {
			HomeAway string `json:"homeAway"`
			Score    string `json:"score"`
			Team     struct {
				DisplayName string `json:"displayName"`
			} `json:"team"`
		} `json:"competitors"`
		Status struct {
			Period int     `json:"period"`
			Clock  float64 `json:"clock"`
			Type   struct {
				Name  string `json:"name"`
				State string `json:"state"`
			} `json:"type"`
		} `json:"status"`
		Situation *struct {
			Down       int    `json:"down"`
			Distance   int    `json:"distance"`
			YardLine   int    `json:"yardLine"`
			Possession string `json:"possession"`
		} `json:"situation"`
	} `json:"competitions"`
}
