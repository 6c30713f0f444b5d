package game

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// PlayerSnapshot is the persistence-ready form of one roster entry.
type PlayerSnapshot struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Score    int64  `json:"score"`
	IsBot    bool   `json:"is_bot"`
	Won      bool   `json:"won"`
}

// Snapshot is the plain, transport-agnostic serialization of a session. The
// game-specific payload is carried as an opaque JSON blob: the engine never
// interprets it, it only round-trips it for statistics and audit.
type Snapshot struct {
	SessionID string           `json:"session_id"`
	GameType  Type             `json:"game_type"`
	ChannelID int64            `json:"channel_id"`
	Status    Status           `json:"status"`
	Players   []PlayerSnapshot `json:"players"`
	TurnIndex int              `json:"turn_index"`
	StartedAt time.Time        `json:"started_at"`
	EndedAt   *time.Time       `json:"ended_at,omitempty"`
	WinnerID  *int64           `json:"winner_id,omitempty"`
	State     json.RawMessage  `json:"state,omitempty"`
}

func (s *Snapshot) encodeState(state any, log zerolog.Logger) {
	if state == nil {
		return
	}
	raw, err := json.Marshal(state)
	if err != nil {
		log.Error().Err(err).Msg("Failed to encode game state for snapshot")
		return
	}
	s.State = raw
}

// Encode marshals the snapshot for persistence.
func (s *Snapshot) Encode() ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return data, nil
}

// DecodeSnapshot restores a snapshot produced by Encode. The game state stays
// opaque; a concrete game can narrow it with DecodeState.
func DecodeSnapshot(data []byte) (*Snapshot, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return &snap, nil
}

// DecodeState narrows the opaque game payload into a concrete state struct.
func DecodeState[T any](snap *Snapshot) (*T, error) {
	var state T
	if len(snap.State) == 0 {
		return &state, nil
	}
	if err := json.Unmarshal(snap.State, &state); err != nil {
		return nil, fmt.Errorf("failed to decode %s state: %w", snap.GameType, err)
	}
	return &state, nil
}
