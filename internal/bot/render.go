package bot

import (
	"sync"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"telegram-minigame-bot/internal/game"
)

// TelegramRenderer delivers game views to Telegram chats. It satisfies
// game.Renderer: sends happen on their own goroutine so game logic never
// blocks on the Telegram API, and failures are only logged.
//
// The renderer is created before the telebot instance exists (the manager
// needs it first) and bound to the bot just before polling starts.
type TelegramRenderer struct {
	mu  sync.RWMutex
	bot *tele.Bot
}

// NewTelegramRenderer creates an unbound renderer adapter.
func NewTelegramRenderer() *TelegramRenderer {
	return &TelegramRenderer{}
}

// Bind attaches the telebot instance. Must be called before games start.
func (r *TelegramRenderer) Bind(bot *tele.Bot) {
	r.mu.Lock()
	r.bot = bot
	r.mu.Unlock()
}

// Render sends the view to the chat, mapping choices onto an inline keyboard.
func (r *TelegramRenderer) Render(channelID int64, view game.View) {
	r.mu.RLock()
	bot := r.bot
	r.mu.RUnlock()
	if bot == nil {
		log.Warn().Int64("chat_id", channelID).Msg("Renderer not bound, dropping game view")
		return
	}
	chat := &tele.Chat{ID: channelID}
	var opts []interface{}
	if len(view.Choices) > 0 {
		markup := &tele.ReplyMarkup{}
		rows := make([]tele.Row, 0, (len(view.Choices)+1)/2)
		var row tele.Row
		for _, c := range view.Choices {
			row = append(row, markup.Data(c.Label, "game", c.Key))
			if len(row) == 2 {
				rows = append(rows, row)
				row = nil
			}
		}
		if len(row) > 0 {
			rows = append(rows, row)
		}
		markup.Inline(rows...)
		opts = append(opts, markup)
	}

	go func() {
		if _, err := bot.Send(chat, view.Text, opts...); err != nil {
			log.Warn().Err(err).Int64("chat_id", channelID).Msg("Failed to send game view")
		}
	}()
}
