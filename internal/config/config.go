// Package config provides configuration management using viper.
// It supports loading from YAML files and environment variable overrides.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Bot       BotConfig       `mapstructure:"bot"`
	Database  DatabaseConfig  `mapstructure:"database"`
	AI        AIConfig        `mapstructure:"ai"`
	Admin     AdminConfig     `mapstructure:"admin"`
	Whitelist WhitelistConfig `mapstructure:"whitelist"`
	Games     GamesConfig     `mapstructure:"games"`
}

// BotConfig holds Telegram bot configuration.
type BotConfig struct {
	Token string `mapstructure:"token"`
}

// DatabaseConfig holds PostgreSQL connection configuration.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	PoolSize        int           `mapstructure:"pool_size"`
	ConnectTimeout  time.Duration `mapstructure:"connect_timeout"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `mapstructure:"max_conn_idle_time"`
}

// AIConfig holds the game-AI sidecar configuration. An empty BaseURL
// disables the sidecar; bots then use the local opponent.
type AIConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	Playstyle string        `mapstructure:"playstyle"`
	Skill     float64       `mapstructure:"skill"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// AdminConfig holds admin user configuration.
type AdminConfig struct {
	IDs []int64 `mapstructure:"ids"`
}

// WhitelistConfig holds chat whitelist configuration.
type WhitelistConfig struct {
	Chats []int64 `mapstructure:"chats"`
}

// GamesConfig holds per-game configuration.
type GamesConfig struct {
	Trivia    TriviaConfig    `mapstructure:"trivia"`
	Battle    BattleConfig    `mapstructure:"battle"`
	Adventure AdventureConfig `mapstructure:"adventure"`
	Dice      DiceConfig      `mapstructure:"dice"`
	Guess     GuessConfig     `mapstructure:"guess"`
	Reaction  ReactionConfig  `mapstructure:"reaction"`
	WordChain WordChainConfig `mapstructure:"wordchain"`
	Assoc     AssocConfig     `mapstructure:"assoc"`
}

// TriviaConfig holds trivia configuration.
type TriviaConfig struct {
	RoundSeconds    int `mapstructure:"round_seconds"`
	BonusSeconds    int `mapstructure:"bonus_seconds"`
	CooldownSeconds int `mapstructure:"cooldown_seconds"`
}

// BattleConfig holds battle configuration.
type BattleConfig struct {
	TurnSeconds int `mapstructure:"turn_seconds"`
	JoinSeconds int `mapstructure:"join_seconds"`
}

// AdventureConfig holds adventure configuration.
type AdventureConfig struct {
	VoteSeconds int `mapstructure:"vote_seconds"`
}

// DiceConfig holds dice duel configuration.
type DiceConfig struct {
	TurnSeconds     int `mapstructure:"turn_seconds"`
	CooldownSeconds int `mapstructure:"cooldown_seconds"`
}

// GuessConfig holds guess-the-number configuration.
type GuessConfig struct {
	TimeoutSeconds  int `mapstructure:"timeout_seconds"`
	CooldownSeconds int `mapstructure:"cooldown_seconds"`
}

// ReactionConfig holds reaction race configuration.
type ReactionConfig struct {
	MinDelaySeconds int `mapstructure:"min_delay_seconds"`
	MaxDelaySeconds int `mapstructure:"max_delay_seconds"`
	WindowSeconds   int `mapstructure:"window_seconds"`
}

// WordChainConfig holds word chain configuration.
type WordChainConfig struct {
	JoinSeconds int `mapstructure:"join_seconds"`
	TurnSeconds int `mapstructure:"turn_seconds"`
}

// AssocConfig holds association game configuration.
type AssocConfig struct {
	HintSeconds     int `mapstructure:"hint_seconds"`
	CooldownSeconds int `mapstructure:"cooldown_seconds"`
}

// DSN returns the PostgreSQL connection string.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		d.User, d.Password, d.Host, d.Port, d.Name,
	)
}

// Load reads configuration from file and environment variables.
// It looks for config.yaml in the config directory.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Configure viper
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// Enable environment variable override
	// Environment variables use underscore separator and uppercase
	// e.g., BOT_TOKEN, DATABASE_HOST, AI_BASE_URL
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (optional - env vars can provide all config)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is OK - we can use env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "gamebot")
	v.SetDefault("database.name", "gamebot")
	v.SetDefault("database.pool_size", 20)
	v.SetDefault("database.connect_timeout", "10s")
	v.SetDefault("database.max_conn_lifetime", "1h")
	v.SetDefault("database.max_conn_idle_time", "30m")

	// AI sidecar defaults
	v.SetDefault("ai.playstyle", "balanced")
	v.SetDefault("ai.skill", 0.7)
	v.SetDefault("ai.timeout", "2s")

	// Game defaults
	v.SetDefault("games.trivia.round_seconds", 15)
	v.SetDefault("games.trivia.bonus_seconds", 5)
	v.SetDefault("games.trivia.cooldown_seconds", 1)
	v.SetDefault("games.battle.turn_seconds", 45)
	v.SetDefault("games.battle.join_seconds", 30)
	v.SetDefault("games.adventure.vote_seconds", 30)
	v.SetDefault("games.dice.turn_seconds", 30)
	v.SetDefault("games.dice.cooldown_seconds", 2)
	v.SetDefault("games.guess.timeout_seconds", 120)
	v.SetDefault("games.guess.cooldown_seconds", 2)
	v.SetDefault("games.reaction.min_delay_seconds", 2)
	v.SetDefault("games.reaction.max_delay_seconds", 8)
	v.SetDefault("games.reaction.window_seconds", 5)
	v.SetDefault("games.wordchain.join_seconds", 20)
	v.SetDefault("games.wordchain.turn_seconds", 30)
	v.SetDefault("games.assoc.hint_seconds", 15)
	v.SetDefault("games.assoc.cooldown_seconds", 2)
}

// IsAdmin checks if a user ID is in the admin list.
func (c *Config) IsAdmin(userID int64) bool {
	for _, id := range c.Admin.IDs {
		if id == userID {
			return true
		}
	}
	return false
}

// IsChatAllowed checks if a chat ID is in the whitelist.
func (c *Config) IsChatAllowed(chatID int64) bool {
	// Empty whitelist means all chats are allowed
	if len(c.Whitelist.Chats) == 0 {
		return true
	}
	for _, id := range c.Whitelist.Chats {
		if id == chatID {
			return true
		}
	}
	return false
}
