// Package repository provides data access layer implementations.
package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"telegram-minigame-bot/internal/game"
)

// SessionRepository persists game session snapshots and answers stats
// queries. It implements game.SnapshotStore.
type SessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository creates a new SessionRepository instance.
func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

// SaveSnapshot upserts the snapshot keyed by session id. The same session
// is written at start and again at end, so the row converges on the final
// state.
func (r *SessionRepository) SaveSnapshot(ctx context.Context, snap *game.Snapshot) error {
	const query = `
		INSERT INTO game_sessions
			(session_id, game_type, channel_id, status, started_at, ended_at, winner_id, players, state, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
		ON CONFLICT (session_id) DO UPDATE SET
			status = EXCLUDED.status,
			ended_at = EXCLUDED.ended_at,
			winner_id = EXCLUDED.winner_id,
			players = EXCLUDED.players,
			state = EXCLUDED.state,
			updated_at = NOW()
	`

	players, err := json.Marshal(snap.Players)
	if err != nil {
		return fmt.Errorf("failed to encode players: %w", err)
	}
	state := snap.State
	if len(state) == 0 {
		state = json.RawMessage("null")
	}

	_, err = r.pool.Exec(ctx, query,
		snap.SessionID,
		string(snap.GameType),
		snap.ChannelID,
		string(snap.Status),
		snap.StartedAt,
		snap.EndedAt,
		snap.WinnerID,
		players,
		[]byte(state),
	)
	if err != nil {
		return fmt.Errorf("failed to save session snapshot: %w", err)
	}
	return nil
}

// UserStats aggregates a user's played/won record per game type over ended
// sessions. Bot seats (negative ids) never reach this query.
func (r *SessionRepository) UserStats(ctx context.Context, userID int64) (*game.UserStats, error) {
	const query = `
		SELECT
			game_type,
			COUNT(*) AS played,
			COUNT(*) FILTER (WHERE winner_id = $1) AS won
		FROM game_sessions
		WHERE status = 'ended'
		  AND players @> $2::jsonb
		GROUP BY game_type
		ORDER BY game_type
	`

	member, err := json.Marshal([]map[string]int64{{"user_id": userID}})
	if err != nil {
		return nil, fmt.Errorf("failed to encode membership probe: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, userID, member)
	if err != nil {
		return nil, fmt.Errorf("failed to query user stats: %w", err)
	}
	defer rows.Close()

	stats := &game.UserStats{UserID: userID}
	for rows.Next() {
		var gameType string
		var gs game.GameStats
		if err := rows.Scan(&gameType, &gs.Played, &gs.Won); err != nil {
			return nil, fmt.Errorf("failed to scan user stats row: %w", err)
		}
		gs.Type = game.Type(gameType)
		stats.Games = append(stats.Games, gs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read user stats rows: %w", err)
	}
	return stats, nil
}

// RecentSessions returns the latest snapshots for a channel, newest first.
func (r *SessionRepository) RecentSessions(ctx context.Context, channelID int64, limit int) ([]*game.Snapshot, error) {
	const query = `
		SELECT session_id, game_type, channel_id, status, started_at, ended_at, winner_id, players, state
		FROM game_sessions
		WHERE channel_id = $1
		ORDER BY started_at DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, channelID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent sessions: %w", err)
	}
	defer rows.Close()

	var out []*game.Snapshot
	for rows.Next() {
		var snap game.Snapshot
		var gameType, status string
		var players, state []byte
		if err := rows.Scan(&snap.SessionID, &gameType, &snap.ChannelID, &status,
			&snap.StartedAt, &snap.EndedAt, &snap.WinnerID, &players, &state); err != nil {
			return nil, fmt.Errorf("failed to scan session row: %w", err)
		}
		snap.GameType = game.Type(gameType)
		snap.Status = game.Status(status)
		if err := json.Unmarshal(players, &snap.Players); err != nil {
			return nil, fmt.Errorf("failed to decode players: %w", err)
		}
		snap.State = json.RawMessage(state)
		out = append(out, &snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read session rows: %w", err)
	}
	return out, nil
}
