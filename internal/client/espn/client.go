// Package espn is a thin read-only client for an ESPN-style scoreboard API.
// It normalizes upstream JSON into Game records and applies no validation
// beyond shape: the validate package owns the semantic checks.
package espn

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

type Client struct {
	host       string
	httpClient *http.Client
}

type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (%d): %s", e.Status, e.Body)
}

func NewClient(httpClient *http.Client, host string) *Client {
	if host == "" {
		host = "https://site.api.espn.com/apis/site/v2/sports"
	}
	host = strings.TrimRight(host, "/")
	return &Client{host: host, httpClient: httpClient}
}

func (c *Client) doRequest(ctx context.Context, path string, query url.Values) ([]byte, error) {
	fullURL := c.host + path
	if len(query) > 0 {
		fullURL = fullURL + "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{Status: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}

// GetScoreboard fetches the scoreboard for one league and date (YYYYMMDD,
// empty for today) and returns normalized game records.
func (c *Client) GetScoreboard(ctx context.Context, sport, league, date string) ([]Game, error) {
	if sport == "" || league == "" {
		return nil, fmt.Errorf("sport and league are required")
	}
	query := url.Values{}
	if date != "" {
		query.Set("dates", date)
	}
	body, err := c.doRequest(ctx, fmt.Sprintf("/%s/%s/scoreboard", sport, league), query)
	if err != nil {
		return nil, err
	}
	return parseScoreboard(body, sport, league)
}

func parseScoreboard(body []byte, sport, league string) ([]Game, error) {
	var resp scoreboardResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode scoreboard: %w", err)
	}
	games := make([]Game, 0, len(resp.Events))
	for _, event := range resp.Events {
		if len(event.Competitions) == 0 {
			continue
		}
		comp := event.Competitions[0]
		game := Game{
			ID: event.ID,
			Metadata: Metadata{
				Sport:     sport,
				League:    league,
				VenueName: comp.Venue.FullName,
				StartTime: event.Date,
			},
			State: State{
				Period:       comp.Status.Period,
				ClockSeconds: int(comp.Status.Clock),
				Status:       normalizeStatus(comp.Status.Type.State),
				Down:         -1,
				Distance:     -1,
				YardLine:     -1,
			},
		}
		for _, competitor := range comp.Competitors {
			score, err := strconv.Atoi(strings.TrimSpace(competitor.Score))
			if err != nil && strings.TrimSpace(competitor.Score) != "" {
				return nil, fmt.Errorf("game %s: non-numeric score %q", event.ID, competitor.Score)
			}
			switch competitor.HomeAway {
			case "home":
				game.Metadata.HomeTeam = competitor.Team.DisplayName
				game.State.HomeScore = score
			case "away":
				game.Metadata.AwayTeam = competitor.Team.DisplayName
				game.State.AwayScore = score
			}
		}
		if comp.Situation != nil {
			game.State.Down = zeroToSentinel(comp.Situation.Down)
			game.State.Distance = zeroToSentinel(comp.Situation.Distance)
			game.State.YardLine = comp.Situation.YardLine
			game.State.Possession = comp.Situation.Possession
		}
		games = append(games, game)
	}
	return games, nil
}

// zeroToSentinel maps the feed's "0 means no play in progress" to the
// documented -1 sentinel.
func zeroToSentinel(v int) int {
	if v == 0 {
		return -1
	}
	return v
}

func normalizeStatus(state string) string {
	switch strings.ToLower(state) {
	case "pre":
		return "scheduled"
	case "in":
		return "in_progress"
	case "post":
		return "final"
	default:
		return strings.ToLower(state)
	}
}
