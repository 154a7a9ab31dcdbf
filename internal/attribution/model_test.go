package attribution

import (
	"testing"

	"sportsbot/internal/models"
)

func TestScoreDiffEstimate(t *testing.T) {
	m := NewScoreDiffModel()
	tests := []struct {
		home, away int
		status     string
		want       string
	}{
		{0, 0, "in_progress", "0.5"},
		{7, 0, "in_progress", "0.71"},
		{0, 7, "in_progress", "0.29"},
		{50, 0, "in_progress", "0.98"},
		{0, 50, "in_progress", "0.02"},
		{21, 14, "final", "1"},
		{14, 21, "final", "0"},
		{14, 14, "final", "0.5"},
	}
	for _, tt := range tests {
		g := &models.GameState{HomeScore: tt.home, AwayScore: tt.away, Status: tt.status}
		got, err := m.Estimate(g)
		if err != nil {
			t.Fatal(err)
		}
		if got.String() != tt.want {
			t.Fatalf("Estimate(%d-%d %s) = %s, want %s", tt.home, tt.away, tt.status, got.String(), tt.want)
		}
	}
}
