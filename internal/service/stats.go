// Package service provides business logic implementations.
package service

import (
	"context"
	"fmt"

	"telegram-minigame-bot/internal/game"
	"telegram-minigame-bot/internal/repository"
)

// StatsService answers user statistics queries over persisted sessions.
type StatsService struct {
	sessions *repository.SessionRepository
}

// NewStatsService creates a new StatsService instance.
func NewStatsService(sessions *repository.SessionRepository) *StatsService {
	return &StatsService{sessions: sessions}
}

// GetUserStats returns the user's played/won record per game type.
func (s *StatsService) GetUserStats(ctx context.Context, userID int64) (*game.UserStats, error) {
	stats, err := s.sessions.UserStats(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user stats: %w", err)
	}
	return stats, nil
}

// GetRecentSessions returns the latest snapshots for a channel.
func (s *StatsService) GetRecentSessions(ctx context.Context, channelID int64, limit int) ([]*game.Snapshot, error) {
	snaps, err := s.sessions.RecentSessions(ctx, channelID, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to get recent sessions: %w", err)
	}
	return snaps, nil
}

// clampLimit keeps history page sizes sane. Out-of-range requests fall back
// to the default page of 10.
func clampLimit(limit int) int {
	if limit <= 0 || limit > 20 {
		return 10
	}
	return limit
}
