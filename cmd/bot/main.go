// Package main is the entry point for the Telegram mini-game bot.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"telegram-minigame-bot/internal/ai"
	"telegram-minigame-bot/internal/bot"
	"telegram-minigame-bot/internal/config"
	"telegram-minigame-bot/internal/game"
	"telegram-minigame-bot/internal/game/adventure"
	"telegram-minigame-bot/internal/game/assoc"
	"telegram-minigame-bot/internal/game/battle"
	"telegram-minigame-bot/internal/game/diceduel"
	"telegram-minigame-bot/internal/game/guess"
	"telegram-minigame-bot/internal/game/reaction"
	"telegram-minigame-bot/internal/game/trivia"
	"telegram-minigame-bot/internal/game/wordchain"
	"telegram-minigame-bot/internal/pkg/db"
	"telegram-minigame-bot/internal/repository"
	"telegram-minigame-bot/internal/service"
)

func main() {
	// Configure zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	// Load configuration
	cfg, err := config.Load("config")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log.Info().Msg("Configuration loaded successfully")

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool
	dbPool, err := db.NewPool(ctx, &cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer dbPool.Close()

	// Run database migrations
	if err := runMigrations(ctx, dbPool); err != nil {
		log.Fatal().Err(err).Msg("Failed to run database migrations")
	}

	// Initialize repositories and services
	sessionRepo := repository.NewSessionRepository(dbPool.Pool)
	statsService := service.NewStatsService(sessionRepo)

	// Bot opponent: the AI sidecar when configured, a local heuristic
	// otherwise.
	var opponent game.Opponent
	if cfg.AI.BaseURL != "" {
		opponent = ai.NewClient(ai.Config{
			BaseURL:   cfg.AI.BaseURL,
			Playstyle: cfg.AI.Playstyle,
			Skill:     cfg.AI.Skill,
			Timeout:   cfg.AI.Timeout,
		}, log.Logger)
		log.Info().Str("base_url", cfg.AI.BaseURL).Msg("Using AI sidecar for bot opponents")
	} else {
		opponent = ai.NewLocal(nil)
		log.Info().Msg("No AI sidecar configured, using local bot opponent")
	}

	// Register game factories
	registry := game.NewRegistry()
	registry.Register(game.TypeTrivia, trivia.New(trivia.Config{
		RoundTime:   seconds(cfg.Games.Trivia.RoundSeconds),
		BonusWindow: seconds(cfg.Games.Trivia.BonusSeconds),
		MinInterval: seconds(cfg.Games.Trivia.CooldownSeconds),
	}))
	registry.Register(game.TypeBattle, battle.New(battle.Config{
		TurnTimeout: seconds(cfg.Games.Battle.TurnSeconds),
		JoinTimeout: seconds(cfg.Games.Battle.JoinSeconds),
	}))
	registry.Register(game.TypeAdventure, adventure.New(adventure.Config{
		VoteWindow: seconds(cfg.Games.Adventure.VoteSeconds),
	}))
	registry.Register(game.TypeDiceDuel, diceduel.New(diceduel.Config{
		TurnTimeout: seconds(cfg.Games.Dice.TurnSeconds),
		MinInterval: seconds(cfg.Games.Dice.CooldownSeconds),
	}))
	registry.Register(game.TypeGuess, guess.New(guess.Config{
		Timeout:     seconds(cfg.Games.Guess.TimeoutSeconds),
		MinInterval: seconds(cfg.Games.Guess.CooldownSeconds),
	}))
	registry.Register(game.TypeReaction, reaction.New(reaction.Config{
		MinDelay: seconds(cfg.Games.Reaction.MinDelaySeconds),
		MaxDelay: seconds(cfg.Games.Reaction.MaxDelaySeconds),
		Window:   seconds(cfg.Games.Reaction.WindowSeconds),
	}))
	registry.Register(game.TypeWordChain, wordchain.New(wordchain.Config{
		JoinWindow:  seconds(cfg.Games.WordChain.JoinSeconds),
		TurnTimeout: seconds(cfg.Games.WordChain.TurnSeconds),
	}))
	registry.Register(game.TypeAssoc, assoc.New(assoc.Config{
		HintInterval: seconds(cfg.Games.Assoc.HintSeconds),
		MinInterval:  seconds(cfg.Games.Assoc.CooldownSeconds),
	}))

	log.Info().Int("game_count", registry.Count()).Msg("Games registered")

	// The renderer is bound to the telebot instance after bot.New.
	renderer := bot.NewTelegramRenderer()

	manager := game.NewManager(registry, game.Deps{
		Renderer: renderer,
		Opponent: opponent,
		Store:    sessionRepo,
	})

	// Initialize bot
	telegramBot, err := bot.New(&bot.Dependencies{
		Config:       cfg,
		Manager:      manager,
		StatsService: statsService,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create bot")
	}
	renderer.Bind(telegramBot.GetBot())

	// Setup graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start bot in a goroutine
	go func() {
		log.Info().Msg("Bot is starting...")
		telegramBot.Start()
	}()

	// Wait for shutdown signal
	sig := <-sigChan
	log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")

	// Graceful shutdown: stop polling first, then end live sessions so
	// their final snapshots get persisted.
	telegramBot.Stop()
	manager.Shutdown()
	log.Info().Msg("Bot stopped gracefully")
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}

// runMigrations executes database migrations.
func runMigrations(ctx context.Context, pool *db.Pool) error {
	log.Info().Msg("Running database migrations...")

	// Migration 1: Create game_sessions table
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS game_sessions (
			session_id UUID PRIMARY KEY,
			game_type TEXT NOT NULL,
			channel_id BIGINT NOT NULL,
			status TEXT NOT NULL,
			started_at TIMESTAMPTZ NOT NULL,
			ended_at TIMESTAMPTZ,
			winner_id BIGINT,
			players JSONB NOT NULL DEFAULT '[]',
			state JSONB,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_game_sessions_channel_time ON game_sessions(channel_id, started_at DESC);
		CREATE INDEX IF NOT EXISTS idx_game_sessions_type_status ON game_sessions(game_type, status);
		CREATE INDEX IF NOT EXISTS idx_game_sessions_players ON game_sessions USING GIN (players);
	`)
	if err != nil {
		return err
	}
	log.Info().Msg("Migration 1: game_sessions table created")

	log.Info().Msg("All migrations completed successfully")
	return nil
}
