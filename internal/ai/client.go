// Package ai talks to the game-AI sidecar that drives bot opponents. The
// sidecar exposes a small JSON-over-HTTP surface; every call is bounded by
// the caller's context and failures are expected; games fall back to a
// local heuristic.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"telegram-minigame-bot/internal/game"
)

// Config configures the sidecar client.
type Config struct {
	BaseURL   string
	Playstyle string
	Skill     float64
	Timeout   time.Duration
}

// Client implements game.Opponent against the sidecar.
type Client struct {
	cfg  Config
	http *http.Client
	log  zerolog.Logger
}

// NewClient builds a sidecar client. A zero Timeout defaults to 2s; the
// per-call context may tighten it further.
func NewClient(cfg Config, log zerolog.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Second
	}
	if cfg.Skill <= 0 {
		cfg.Skill = 0.7
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
		log:  log.With().Str("component", "ai_client").Logger(),
	}
}

// envelope is the sidecar's uniform response wrapper.
type envelope struct {
	OK    bool            `json:"ok"`
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type actionRequest struct {
	SessionID        string         `json:"session_id"`
	MyHP             int            `json:"my_hp"`
	EnemyHP          int            `json:"enemy_hp"`
	AvailableActions []string       `json:"available_actions"`
	Cooldowns        map[string]int `json:"cooldowns,omitempty"`
	EnemyLastAction  string         `json:"enemy_last_action,omitempty"`
	MyMaxHP          int            `json:"my_max_hp"`
	EnemyMaxHP       int            `json:"enemy_max_hp"`
	Playstyle        string         `json:"playstyle,omitempty"`
	SkillLevel       float64        `json:"skill_level"`
}

type actionResponse struct {
	Action     string `json:"action"`
	FlavorText string `json:"flavor_text"`
	Tendency   string `json:"tendency"`
}

// ChooseMove asks the sidecar for the bot's next battle move.
func (c *Client) ChooseMove(ctx context.Context, mc game.MoveContext) (game.MoveDecision, error) {
	req := actionRequest{
		SessionID:        mc.SessionID,
		MyHP:             mc.MyHP,
		EnemyHP:          mc.EnemyHP,
		AvailableActions: mc.Available,
		Cooldowns:        mc.Cooldowns,
		EnemyLastAction:  mc.EnemyLastMove,
		MyMaxHP:          mc.MyMaxHP,
		EnemyMaxHP:       mc.EnemyMaxHP,
		Playstyle:        c.cfg.Playstyle,
		SkillLevel:       c.cfg.Skill,
	}
	var resp actionResponse
	if err := c.post(ctx, "/game-ai/battle/action", req, &resp); err != nil {
		return game.MoveDecision{}, err
	}
	if resp.Action == "" {
		return game.MoveDecision{}, fmt.Errorf("sidecar returned empty action")
	}
	return game.MoveDecision{Move: resp.Action, Flavor: resp.FlavorText}, nil
}

type flavorRequest struct {
	Action    string `json:"action"`
	Tendency  string `json:"tendency"`
	Playstyle string `json:"playstyle"`
}

type flavorResponse struct {
	FlavorText string `json:"flavor_text"`
}

// FlavorText asks the sidecar for a one-liner describing an action.
func (c *Client) FlavorText(ctx context.Context, action, tendency string) (string, error) {
	req := flavorRequest{Action: action, Tendency: tendency, Playstyle: c.cfg.Playstyle}
	var resp flavorResponse
	if err := c.post(ctx, "/game-ai/flavor", req, &resp); err != nil {
		return "", err
	}
	return resp.FlavorText, nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encoding %s request: %w", path, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("building %s request: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("calling %s: %w", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("calling %s: unexpected status %d", path, resp.StatusCode)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}
	if !env.OK {
		if env.Error != nil {
			return fmt.Errorf("sidecar error on %s: %s (%s)", path, env.Error.Message, env.Error.Code)
		}
		return fmt.Errorf("sidecar error on %s", path)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decoding %s data: %w", path, err)
	}
	return nil
}
