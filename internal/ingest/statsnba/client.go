package statsnba

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"
)

const (
	BaseURL = "https://stats.nba.com/stats"

	// UserAgent is sent on every request; the API rejects default Go agents
	UserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	// MinRequestInterval to prevent rate limiting
	MinRequestInterval = 600 * time.Millisecond
)

// Client handles stats API requests
type Client struct {
	baseURL    string
	httpClient *http.Client

	mu          sync.Mutex
	lastRequest time.Time
	interval    time.Duration
}

// New creates a stats API client with a custom base URL
func New(baseURL string) *Client {
	if baseURL == "" {
		baseURL = BaseURL
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		interval:   MinRequestInterval,
	}
}

// NewClient creates a stats API client with default settings
func NewClient() *Client {
	return New(BaseURL)
}

// FetchLeagueGameLog fetches the team game log for a season. Every game
// appears twice, once per team.
func (c *Client) FetchLeagueGameLog(ctx context.Context, seasonLabel string) (map[string]any, error) {
	params := url.Values{}
	params.Set("Counter", "0")
	params.Set("Direction", "ASC")
	params.Set("LeagueID", "00")
	params.Set("PlayerOrTeam", "T")
	params.Set("Season", seasonLabel)
	params.Set("SeasonType", "Regular Season")
	params.Set("Sorter", "DATE")
	return c.fetch(ctx, "leaguegamelog", params)
}

// FetchTeamInfo fetches a team's city, name, conference and division
func (c *Client) FetchTeamInfo(ctx context.Context, teamID int64, seasonLabel string) (map[string]any, error) {
	params := url.Values{}
	params.Set("LeagueID", "00")
	params.Set("TeamID", strconv.FormatInt(teamID, 10))
	params.Set("Season", seasonLabel)
	params.Set("SeasonType", "Regular Season")
	return c.fetch(ctx, "teaminfocommon", params)
}

// FetchTeamRoster fetches a team's roster for a season
func (c *Client) FetchTeamRoster(ctx context.Context, teamID int64, seasonLabel string) (map[string]any, error) {
	params := url.Values{}
	params.Set("LeagueID", "00")
	params.Set("TeamID", strconv.FormatInt(teamID, 10))
	params.Set("Season", seasonLabel)
	return c.fetch(ctx, "commonteamroster", params)
}

// FetchAllPlayers fetches every player on a roster during the season
func (c *Client) FetchAllPlayers(ctx context.Context, seasonLabel string) (map[string]any, error) {
	params := url.Values{}
	params.Set("IsOnlyCurrentSeason", "1")
	params.Set("LeagueID", "00")
	params.Set("Season", seasonLabel)
	return c.fetch(ctx, "commonallplayers", params)
}

// wait enforces the minimum spacing between requests
func (c *Client) wait(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.lastRequest.IsZero() {
		if elapsed := time.Since(c.lastRequest); elapsed < c.interval {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.interval - elapsed):
			}
		}
	}
	c.lastRequest = time.Now()
	return nil
}

func (c *Client) fetch(ctx context.Context, endpoint string, params url.Values) (map[string]any, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	u := fmt.Sprintf("%s/%s?%s", c.baseURL, endpoint, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Referer", "https://www.nba.com/")
	req.Header.Set("Origin", "https://www.nba.com")
	req.Header.Set("x-nba-stats-origin", "stats")
	req.Header.Set("x-nba-stats-token", "true")

	log.Printf("[statsnba-client] GET %s", u)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("requesting %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s response: %w", endpoint, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s returned %d: %s", endpoint, resp.StatusCode, body[:min(len(body), 200)])
	}

	var result map[string]any
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decoding %s response: %w (body: %s)", endpoint, err, body[:min(len(body), 200)])
	}
	return result, nil
}
