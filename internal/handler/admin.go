package handler

import (
	"fmt"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"telegram-minigame-bot/internal/game"
)

// AdminHandler handles administrative commands. All of these are registered
// behind the admin middleware.
type AdminHandler struct {
	manager *game.Manager
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(manager *game.Manager) *AdminHandler {
	return &AdminHandler{manager: manager}
}

// HandleForceClear drops the chat's session entry without running end
// logic: /forceclear. This is the escape hatch for a session stuck beyond
// what /stopgame can fix; it skips OnEnd and the final snapshot on purpose.
func (h *AdminHandler) HandleForceClear(c tele.Context) error {
	chat, sender := c.Chat(), c.Sender()
	if chat == nil {
		return nil
	}
	if h.manager.ForceClear(chat.ID) {
		log.Warn().Int64("chat_id", chat.ID).Int64("admin_id", sender.ID).Msg("Session force-cleared by admin")
		return c.Reply("🧹 Session cleared. A new game can start now.")
	}
	return c.Reply("Nothing to clear here.")
}

// HandleSessions reports how many sessions are live across all chats:
// /sessions
func (h *AdminHandler) HandleSessions(c tele.Context) error {
	return c.Reply(fmt.Sprintf("%d active session(s).", h.manager.Count()))
}
