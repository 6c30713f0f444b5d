// Package handler provides Telegram bot command handlers.
package handler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"telegram-minigame-bot/internal/game"
)

// GamesHandler maps Telegram commands, callbacks and plain text onto the
// session manager.
type GamesHandler struct {
	manager *game.Manager
}

// NewGamesHandler creates a new GamesHandler.
func NewGamesHandler(manager *game.Manager) *GamesHandler {
	return &GamesHandler{manager: manager}
}

// Start commands. Each parses its own lightweight arguments.

// HandleTrivia starts a trivia quiz: /trivia [rounds] [buzz] [bot]
func (h *GamesHandler) HandleTrivia(c tele.Context) error {
	opts := game.Options{}
	for _, arg := range c.Args() {
		switch {
		case arg == "buzz":
			opts["mode"] = "buzz"
		case arg == "bot":
			opts["bot"] = true
		default:
			if n, err := strconv.Atoi(arg); err == nil {
				opts["rounds"] = n
			}
		}
	}
	return h.start(c, game.TypeTrivia, opts)
}

// HandleBattle starts a battle: /battle [pvp]
func (h *GamesHandler) HandleBattle(c tele.Context) error {
	opts := game.Options{}
	for _, arg := range c.Args() {
		if arg == "pvp" {
			opts["pvp"] = true
		}
	}
	return h.start(c, game.TypeBattle, opts)
}

// HandleAdventure starts an adventure: /adventure
func (h *GamesHandler) HandleAdventure(c tele.Context) error {
	return h.start(c, game.TypeAdventure, game.Options{})
}

// HandleDiceDuel starts a dice duel: /diceduel [rolls] [bot]
func (h *GamesHandler) HandleDiceDuel(c tele.Context) error {
	opts := game.Options{}
	for _, arg := range c.Args() {
		switch {
		case arg == "bot":
			opts["bot"] = true
		default:
			if n, err := strconv.Atoi(arg); err == nil {
				opts["max_rounds"] = n
			}
		}
	}
	return h.start(c, game.TypeDiceDuel, opts)
}

// HandleGuess starts guess-the-number: /guess [max] or /guess [min] [max]
func (h *GamesHandler) HandleGuess(c tele.Context) error {
	opts := game.Options{}
	args := c.Args()
	var nums []int
	for _, arg := range args {
		if n, err := strconv.Atoi(arg); err == nil {
			nums = append(nums, n)
		}
	}
	switch len(nums) {
	case 1:
		opts["max"] = nums[0]
	case 2:
		opts["min"], opts["max"] = nums[0], nums[1]
	}
	return h.start(c, game.TypeGuess, opts)
}

// HandleReaction starts a reaction race: /reaction
func (h *GamesHandler) HandleReaction(c tele.Context) error {
	return h.start(c, game.TypeReaction, game.Options{})
}

// HandleWordChain starts a word chain: /wordchain
func (h *GamesHandler) HandleWordChain(c tele.Context) error {
	return h.start(c, game.TypeWordChain, game.Options{})
}

// HandleAssoc starts the association game: /assoc [rounds]
func (h *GamesHandler) HandleAssoc(c tele.Context) error {
	opts := game.Options{}
	for _, arg := range c.Args() {
		if n, err := strconv.Atoi(arg); err == nil {
			opts["rounds"] = n
		}
	}
	return h.start(c, game.TypeAssoc, opts)
}

func (h *GamesHandler) start(c tele.Context, t game.Type, opts game.Options) error {
	chat, sender := c.Chat(), c.Sender()
	if chat == nil || sender == nil {
		return nil
	}
	channel := game.ChannelRef{ID: chat.ID, Title: chat.Title}
	initiator := game.UserRef{ID: sender.ID, Username: displayName(sender)}

	_, err := h.manager.StartGame(context.Background(), t, channel, initiator, opts)
	switch {
	case errors.Is(err, game.ErrAlreadyActive):
		return c.Reply("⚠️ A game is already running in this chat. Finish it or use /stopgame.")
	case errors.Is(err, game.ErrBadOption):
		return c.Reply(fmt.Sprintf("⚠️ %v", err))
	case err != nil:
		log.Error().Err(err).Str("game_type", string(t)).Int64("chat_id", chat.ID).Msg("Failed to start game")
		return c.Reply("❌ Couldn't start the game, try again later.")
	}
	return nil
}

// HandleStopGame ends the channel's active game: /stopgame
func (h *GamesHandler) HandleStopGame(c tele.Context) error {
	err := h.manager.Stop(context.Background(), c.Chat().ID)
	if errors.Is(err, game.ErrNoActiveGame) {
		return c.Reply("There's no game running here.")
	}
	return nil
}

// HandleGameStatus reports the active session: /gamestatus
func (h *GamesHandler) HandleGameStatus(c tele.Context) error {
	sess := h.manager.Get(c.Chat().ID)
	if sess == nil {
		return c.Reply("No game is running in this chat.")
	}
	snap := sess.Snapshot()
	var sb strings.Builder
	fmt.Fprintf(&sb, "🎮 %s — %s\n", snap.GameType, snap.Status)
	for _, p := range snap.Players {
		fmt.Fprintf(&sb, "• %s: %d\n", p.Username, p.Score)
	}
	return c.Reply(sb.String())
}

// HandleCallback routes inline keyboard presses to the active game.
func (h *GamesHandler) HandleCallback(c tele.Context) error {
	callback := c.Callback()
	if callback == nil {
		return nil
	}
	key := callbackKey(callback.Data)
	if key == "" {
		return c.Respond()
	}

	sess := h.manager.Get(c.Chat().ID)
	if sess == nil {
		return c.Respond(&tele.CallbackResponse{Text: "This game is over."})
	}
	action, payload := mapChoice(sess.Type(), key)
	payload["username"] = displayName(c.Sender())

	res, err := h.manager.Submit(context.Background(), c.Chat().ID, c.Sender().ID, action, payload)
	if errors.Is(err, game.ErrNoActiveGame) {
		return c.Respond(&tele.CallbackResponse{Text: "This game is over."})
	}
	if res.Message != "" {
		return c.Respond(&tele.CallbackResponse{Text: res.Message})
	}
	return c.Respond()
}

// HandleText routes plain chat messages to text-driven games (guesses,
// words). Messages that don't fit the active game are ignored silently so
// normal conversation keeps flowing.
func (h *GamesHandler) HandleText(c tele.Context) error {
	chat, sender := c.Chat(), c.Sender()
	if chat == nil || sender == nil {
		return nil
	}
	sess := h.manager.Get(chat.ID)
	if sess == nil {
		return nil
	}
	text := strings.TrimSpace(c.Text())
	if text == "" || strings.HasPrefix(text, "/") {
		return nil
	}

	var action string
	payload := map[string]any{"username": displayName(sender)}
	switch sess.Type() {
	case game.TypeGuess:
		n, err := strconv.Atoi(text)
		if err != nil {
			return nil
		}
		action, payload["value"] = "guess", n
	case game.TypeWordChain:
		if strings.ContainsRune(text, ' ') {
			return nil
		}
		action, payload["word"] = "word", text
	case game.TypeAssoc:
		if strings.ContainsRune(text, ' ') {
			return nil
		}
		action, payload["word"] = "guess", text
	default:
		return nil
	}

	res, err := h.manager.Submit(context.Background(), chat.ID, sender.ID, action, payload)
	if err != nil {
		return nil
	}
	// Only surface rejections that the player needs to know about; accepted
	// moves already render through the game itself.
	if !res.Accepted && res.Reason != game.ReasonInvalidChoice && res.Message != "" {
		return c.Reply(res.Message)
	}
	return nil
}

// mapChoice translates a rendered choice key back into a game action.
func mapChoice(t game.Type, key string) (string, map[string]any) {
	payload := map[string]any{}
	switch t {
	case game.TypeTrivia:
		if n, err := strconv.Atoi(key); err == nil {
			payload["choice"] = n
			return "answer", payload
		}
	case game.TypeAdventure:
		if n, err := strconv.Atoi(key); err == nil {
			payload["choice"] = n
			return "vote", payload
		}
	case game.TypeBattle:
		if key == "join" {
			return "join", payload
		}
		payload["skill"] = key
		return "skill", payload
	case game.TypeDiceDuel:
		return "roll", payload
	case game.TypeReaction:
		return "press", payload
	case game.TypeWordChain:
		return "join", payload
	}
	return key, payload
}

// callbackKey strips telebot's callback framing ("\f<unique>|<data>") down
// to the choice key.
func callbackKey(data string) string {
	data = strings.TrimPrefix(data, "\f")
	if i := strings.IndexByte(data, '|'); i >= 0 {
		return data[i+1:]
	}
	return data
}

func displayName(u *tele.User) string {
	if u == nil {
		return "player"
	}
	if u.Username != "" {
		return u.Username
	}
	if u.FirstName != "" {
		return u.FirstName
	}
	return fmt.Sprintf("player%d", u.ID)
}
