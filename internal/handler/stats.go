package handler

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"telegram-minigame-bot/internal/service"
)

// StatsHandler handles player statistics commands.
type StatsHandler struct {
	stats *service.StatsService
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(stats *service.StatsService) *StatsHandler {
	return &StatsHandler{stats: stats}
}

// HandleMyStats reports the sender's record across all game types: /mystats
func (h *StatsHandler) HandleMyStats(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}
	stats, err := h.stats.GetUserStats(context.Background(), sender.ID)
	if err != nil {
		log.Error().Err(err).Int64("user_id", sender.ID).Msg("Failed to load user stats")
		return c.Reply("❌ Couldn't load your stats right now.")
	}
	if len(stats.Games) == 0 {
		return c.Reply("You haven't finished any games yet. Start one!")
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "📊 %s's record:\n", displayName(sender))
	total, wins := 0, 0
	for _, g := range stats.Games {
		fmt.Fprintf(&sb, "• %s: %d played, %d won\n", g.Type, g.Played, g.Won)
		total += g.Played
		wins += g.Won
	}
	fmt.Fprintf(&sb, "Overall: %d played, %d won", total, wins)
	return c.Reply(sb.String())
}

// HandleHistory lists the chat's recent sessions: /history
func (h *StatsHandler) HandleHistory(c tele.Context) error {
	chat := c.Chat()
	if chat == nil {
		return nil
	}
	snaps, err := h.stats.GetRecentSessions(context.Background(), chat.ID, 10)
	if err != nil {
		log.Error().Err(err).Int64("chat_id", chat.ID).Msg("Failed to load session history")
		return c.Reply("❌ Couldn't load the history right now.")
	}
	if len(snaps) == 0 {
		return c.Reply("No games played here yet.")
	}

	var sb strings.Builder
	sb.WriteString("🕹 Recent games:\n")
	for _, s := range snaps {
		winner := "—"
		if s.WinnerID != nil {
			for _, p := range s.Players {
				if p.UserID == *s.WinnerID {
					winner = p.Username
				}
			}
		}
		fmt.Fprintf(&sb, "• %s (%s) winner: %s\n", s.GameType, s.Status, winner)
	}
	return c.Reply(sb.String())
}
