// Package wordchain implements the sequence word game: each word must start
// with the last letter of the previous one, no repeats, idle players are
// eliminated until one remains.
package wordchain

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"telegram-minigame-bot/internal/game"
)

const (
	// DefaultJoinWindow is the lobby phase before the chain starts.
	DefaultJoinWindow = 20 * time.Second

	// DefaultTurnTimeout eliminates the player who can't come up with a word.
	DefaultTurnTimeout = 30 * time.Second

	// MinWordLen rejects one-letter fillers.
	MinWordLen = 2

	ActionJoin = "join"
	ActionWord = "word"
)

type phase string

const (
	phaseLobby   phase = "lobby"
	phaseRunning phase = "running"
)

// Config holds wordchain tunables supplied at registration time.
type Config struct {
	JoinWindow  time.Duration
	TurnTimeout time.Duration
}

// State is the serializable game payload.
type State struct {
	Phase      phase           `json:"phase"`
	LastWord   string          `json:"last_word,omitempty"`
	NextLetter string          `json:"next_letter,omitempty"`
	Used       map[string]bool `json:"used"`
	Eliminated map[int64]bool  `json:"eliminated"`
	ChainLen   int             `json:"chain_len"`
}

// Chain is the concrete rules value bound to one session.
type Chain struct {
	b   *game.Base
	cfg Config

	state State
}

// New returns the session factory for wordchain.
func New(cfg Config) game.Factory {
	if cfg.JoinWindow <= 0 {
		cfg.JoinWindow = DefaultJoinWindow
	}
	if cfg.TurnTimeout <= 0 {
		cfg.TurnTimeout = DefaultTurnTimeout
	}
	return func(b *game.Base) game.Rules {
		return &Chain{b: b, cfg: cfg}
	}
}

// Type reports the game type tag.
func (c *Chain) Type() game.Type { return game.TypeWordChain }

// Init accepts no options.
func (c *Chain) Init(opts game.Options) error {
	c.state.Phase = phaseLobby
	c.state.Used = make(map[string]bool)
	c.state.Eliminated = make(map[int64]bool)
	return nil
}

// Begin opens the lobby.
func (c *Chain) Begin() {
	c.b.Render(game.View{
		Text: fmt.Sprintf("🔗 Word chain! Each word must start with the last letter of the previous one. Starting in %.0fs — tap to join.",
			c.cfg.JoinWindow.Seconds()),
		Choices: []game.Choice{{Key: ActionJoin, Label: "🙋 Join"}},
	})
	c.b.Schedule(c.cfg.JoinWindow)
}

// OnAction routes lobby joins and word submissions.
func (c *Chain) OnAction(userID int64, action string, payload map[string]any) game.Result {
	switch action {
	case ActionJoin:
		return c.join(userID, payload)
	case ActionWord:
		return c.word(userID, payload)
	default:
		return game.Reject(game.ReasonInvalidChoice, "send a word on your turn")
	}
}

func (c *Chain) join(userID int64, payload map[string]any) game.Result {
	if c.state.Phase != phaseLobby {
		return game.Reject(game.ReasonRoundClosed, "the chain already started")
	}
	if c.b.Player(userID) != nil {
		return game.Reject(game.ReasonAlreadyAnswered, "you're already in")
	}
	username, _ := payload["username"].(string)
	p := c.b.AddPlayer(userID, username)
	return game.Accept(fmt.Sprintf("%s joined", p.Username))
}

func (c *Chain) word(userID int64, payload map[string]any) game.Result {
	if c.state.Phase != phaseRunning {
		return game.Reject(game.ReasonRoundClosed, "the chain hasn't started yet")
	}
	if c.b.Player(userID) == nil || c.state.Eliminated[userID] {
		return game.Reject(game.ReasonNotInGame, "you're not in this chain")
	}
	if !c.b.IsTurn(userID) {
		return game.Reject(game.ReasonNotYourTurn, "wait for your turn")
	}
	raw, _ := payload["word"].(string)
	word := normalize(raw)
	if len([]rune(word)) < MinWordLen || !alphabetic(word) {
		return game.Reject(game.ReasonInvalidChoice, "words only, two letters or more")
	}
	if c.state.NextLetter != "" && !strings.HasPrefix(word, c.state.NextLetter) {
		return game.Reject(game.ReasonInvalidChoice,
			fmt.Sprintf("the word must start with %q", c.state.NextLetter))
	}
	if c.state.Used[word] {
		return game.Reject(game.ReasonInvalidChoice, fmt.Sprintf("%q was already played", word))
	}

	p := c.b.Player(userID)
	p.Score++
	c.state.Used[word] = true
	c.state.LastWord = word
	c.state.NextLetter = lastLetter(word)
	c.state.ChainLen++
	c.b.NextRound()
	c.advance()
	return game.AcceptData(word, map[string]any{"next_letter": c.state.NextLetter})
}

// OnTimeout closes the lobby on the first fire; afterwards it eliminates
// whoever let their turn lapse.
func (c *Chain) OnTimeout(round int) {
	if c.state.Phase == phaseLobby {
		if len(c.b.Players()) < 2 {
			c.b.Render(game.View{Text: "🔗 Not enough players for a chain. Maybe next time."})
			c.b.EndGame(game.EndTimeout)
			return
		}
		c.state.Phase = phaseRunning
		c.b.NextRound()
		c.b.Render(game.View{Text: fmt.Sprintf("🔗 %d players in. %s starts — any word, two letters or more!",
			len(c.b.Players()), c.b.CurrentPlayer().Username)})
		c.b.Schedule(c.cfg.TurnTimeout)
		return
	}

	out := c.b.CurrentPlayer()
	c.state.Eliminated[out.ID] = true
	c.b.Render(game.View{Text: fmt.Sprintf("⏰ %s ran out of words and is eliminated!", out.Username)})
	c.b.NextRound()
	c.advance()
}

// advance moves the turn past eliminated players and either continues the
// chain or ends it with the last player standing.
func (c *Chain) advance() {
	alive := 0
	var survivor *game.Player
	for _, p := range c.b.Players() {
		if !c.state.Eliminated[p.ID] {
			alive++
			survivor = p
		}
	}
	if alive <= 1 {
		if survivor != nil {
			c.b.SetWinner(survivor)
		}
		c.b.EndGame(game.EndCompleted)
		return
	}

	c.b.AdvanceTurn()
	for c.state.Eliminated[c.b.CurrentPlayer().ID] {
		c.b.AdvanceTurn()
	}
	next := c.b.CurrentPlayer()
	prompt := "any word"
	if c.state.NextLetter != "" {
		prompt = fmt.Sprintf("a word starting with %q", c.state.NextLetter)
	}
	c.b.Render(game.View{Text: fmt.Sprintf("👉 %s, %s! (chain: %d)", next.Username, prompt, c.state.ChainLen)})
	c.b.Schedule(c.cfg.TurnTimeout)
}

// OnEnd announces the survivor.
func (c *Chain) OnEnd(reason game.EndReason) {
	if w := c.b.Winner(); w != nil {
		c.b.Render(game.View{Text: fmt.Sprintf("🏆 %s outlasted everyone! Chain length: %d.", w.Username, c.state.ChainLen)})
	}
}

// State returns the serializable payload.
func (c *Chain) State() any { return &c.state }

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func alphabetic(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

// lastLetter returns the final letter rune of the word.
func lastLetter(word string) string {
	runes := []rune(word)
	for i := len(runes) - 1; i >= 0; i-- {
		if unicode.IsLetter(runes[i]) {
			return string(runes[i])
		}
	}
	return ""
}
