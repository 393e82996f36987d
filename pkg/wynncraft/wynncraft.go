// Package wynncraft provides a minimal HTTP client for the Wynncraft v3
// player API.
package wynncraft

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/Alijeyrad/formsbot/config"
	"github.com/Alijeyrad/formsbot/pkg/constants"
)

var (
	ErrNotFound           = errors.New("wynncraft: player not found")
	ErrNoCharacters       = errors.New("wynncraft: player has no characters")
	ErrUnexpectedResponse = errors.New("wynncraft: unexpected response")
)

type Guild struct {
	Name   string `json:"name"`
	Prefix string `json:"prefix"`
	Rank   string `json:"rank"`
}

type GlobalData struct {
	Wars       int `json:"wars"`
	TotalLevel int `json:"totalLevel"`
}

// Player is the subset of /v3/player/{name} the bot reads.
type Player struct {
	Username    string     `json:"username"`
	SupportRank *string    `json:"supportRank"`
	FirstJoin   string     `json:"firstJoin"`
	LastJoin    string     `json:"lastJoin"`
	Playtime    float64    `json:"playtime"`
	Guild       *Guild     `json:"guild"`
	GlobalData  GlobalData `json:"globalData"`
}

type Character struct {
	Type  string `json:"type"`
	Level int    `json:"level"`
	XP    int64  `json:"xp"`
}

// Profile is a player together with their highest character, ranked by
// level then experience.
type Profile struct {
	Player
	Highest Character
}

// Client is a lightweight Wynncraft HTTP client.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a Client from config. An empty base URL uses the public API.
func New(cfg config.EnrichmentConfig) *Client {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = constants.DefaultEnrichmentBaseURL
	}
	timeout := 10 * time.Second
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	return &Client{
		baseURL:    base,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Player fetches a player's public stats.
func (c *Client) Player(ctx context.Context, name string) (*Player, error) {
	var p Player
	if err := c.get(ctx, "/v3/player/"+url.PathEscape(name), &p); err != nil {
		return nil, fmt.Errorf("wynncraft player: %w", err)
	}
	return &p, nil
}

// Characters fetches a player's characters keyed by character uuid.
func (c *Client) Characters(ctx context.Context, name string) (map[string]Character, error) {
	var chars map[string]Character
	if err := c.get(ctx, "/v3/player/"+url.PathEscape(name)+"/characters", &chars); err != nil {
		return nil, fmt.Errorf("wynncraft characters: %w", err)
	}
	return chars, nil
}

// Profile fetches a player and picks their highest character.
func (c *Client) Profile(ctx context.Context, name string) (*Profile, error) {
	p, err := c.Player(ctx, name)
	if err != nil {
		return nil, err
	}
	chars, err := c.Characters(ctx, name)
	if err != nil {
		return nil, err
	}
	highest, ok := HighestCharacter(chars)
	if !ok {
		return nil, ErrNoCharacters
	}
	return &Profile{Player: *p, Highest: highest}, nil
}

// HighestCharacter returns the character with the highest level, breaking
// ties by experience and then by the smallest character uuid.
func HighestCharacter(chars map[string]Character) (Character, bool) {
	var (
		best  Character
		found bool
	)
	for _, id := range slices.Sorted(maps.Keys(chars)) {
		ch := chars[id]
		if !found || ch.Level > best.Level || (ch.Level == best.Level && ch.XP > best.XP) {
			best, found = ch, true
		}
	}
	return best, found
}

// get sends a GET request to baseURL+path and decodes the JSON response into out.
func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer res.Body.Close()

	switch {
	case res.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case res.StatusCode != http.StatusOK:
		return fmt.Errorf("%w (status=%d)", ErrUnexpectedResponse, res.StatusCode)
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode: %v", ErrUnexpectedResponse, err)
	}
	return nil
}
