// Package bot provides the Telegram bot initialization and handler registration.
package bot

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"telegram-minigame-bot/internal/config"
	"telegram-minigame-bot/internal/game"
	"telegram-minigame-bot/internal/handler"
	"telegram-minigame-bot/internal/service"
)

// Bot wraps the telebot instance with application dependencies.
type Bot struct {
	bot     *tele.Bot
	cfg     *config.Config
	manager *game.Manager

	gamesHandler *handler.GamesHandler
	statsHandler *handler.StatsHandler
	adminHandler *handler.AdminHandler
}

// Dependencies holds all the dependencies needed by the bot handlers.
type Dependencies struct {
	Config       *config.Config
	Manager      *game.Manager
	StatsService *service.StatsService
}

// New creates a new Bot instance with the given dependencies. The returned
// bot exposes its telebot instance so the caller can finish wiring the
// renderer before polling starts.
func New(deps *Dependencies) (*Bot, error) {
	if deps.Config.Bot.Token == "" {
		return nil, fmt.Errorf("bot token is required")
	}

	pref := tele.Settings{
		Token:  deps.Config.Bot.Token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}

	teleBot, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	b := &Bot{
		bot:     teleBot,
		cfg:     deps.Config,
		manager: deps.Manager,
	}

	// Initialize handlers
	b.gamesHandler = handler.NewGamesHandler(deps.Manager)
	b.statsHandler = handler.NewStatsHandler(deps.StatsService)
	b.adminHandler = handler.NewAdminHandler(deps.Manager)

	// Register middleware
	b.registerMiddleware()

	// Register handlers
	b.registerHandlers()

	return b, nil
}

// registerMiddleware registers all middleware.
func (b *Bot) registerMiddleware() {
	b.bot.Use(RecoveryMiddleware())
	b.bot.Use(WhitelistMiddleware(b.cfg))
	b.bot.Use(LoggingMiddleware())
}

// registerHandlers registers all command and callback handlers.
func (b *Bot) registerHandlers() {
	// Game start commands
	b.bot.Handle("/trivia", b.gamesHandler.HandleTrivia)
	b.bot.Handle("/battle", b.gamesHandler.HandleBattle)
	b.bot.Handle("/adventure", b.gamesHandler.HandleAdventure)
	b.bot.Handle("/diceduel", b.gamesHandler.HandleDiceDuel)
	b.bot.Handle("/guess", b.gamesHandler.HandleGuess)
	b.bot.Handle("/reaction", b.gamesHandler.HandleReaction)
	b.bot.Handle("/wordchain", b.gamesHandler.HandleWordChain)
	b.bot.Handle("/assoc", b.gamesHandler.HandleAssoc)

	// Session control
	b.bot.Handle("/stopgame", b.gamesHandler.HandleStopGame)
	b.bot.Handle("/gamestatus", b.gamesHandler.HandleGameStatus)

	// Stats
	b.bot.Handle("/mystats", b.statsHandler.HandleMyStats)
	b.bot.Handle("/history", b.statsHandler.HandleHistory)

	// Admin handlers (with admin middleware)
	adminGroup := b.bot.Group()
	adminGroup.Use(AdminMiddleware(b.cfg))
	adminGroup.Handle("/forceclear", b.adminHandler.HandleForceClear)
	adminGroup.Handle("/sessions", b.adminHandler.HandleSessions)

	// Inline keyboard presses and free text feed the active game
	b.bot.Handle(tele.OnCallback, b.gamesHandler.HandleCallback)
	b.bot.Handle(tele.OnText, b.gamesHandler.HandleText)
}

// Start starts the bot polling.
func (b *Bot) Start() {
	log.Info().Msg("Starting bot...")
	b.bot.Start()
}

// Stop stops the bot gracefully.
func (b *Bot) Stop() {
	log.Info().Msg("Stopping bot...")
	b.bot.Stop()
}

// GetBot returns the underlying telebot instance.
func (b *Bot) GetBot() *tele.Bot {
	return b.bot
}
