// Package guess implements guess-the-number: the session picks a secret
// number and players race to find it with higher/lower hints.
package guess

import (
	"fmt"
	"time"

	"telegram-minigame-bot/internal/game"
)

const (
	DefaultMin      = 1
	DefaultMax      = 100
	DefaultAttempts = 10

	// GameTimeout ends an abandoned round with no winner.
	GameTimeout = 2 * time.Minute

	// ActionGuess carries a numeric guess in its payload.
	ActionGuess = "guess"
)

// Config holds tunables supplied at registration time.
type Config struct {
	Timeout     time.Duration
	MinInterval time.Duration
}

// State is the serializable game payload. The target stays in the snapshot
// so an operator can audit a finished round.
type State struct {
	Min          int   `json:"min"`
	Max          int   `json:"max"`
	Target       int   `json:"target"`
	AttemptsLeft int   `json:"attempts_left"`
	Guesses      []int `json:"guesses"`
}

// Game is the concrete rules value bound to one session.
type Game struct {
	b   *game.Base
	cfg Config

	state State
}

// New returns the session factory for guess-the-number.
func New(cfg Config) game.Factory {
	if cfg.Timeout <= 0 {
		cfg.Timeout = GameTimeout
	}
	return func(b *game.Base) game.Rules {
		return &Game{b: b, cfg: cfg}
	}
}

// Type reports the game type tag.
func (g *Game) Type() game.Type { return game.TypeGuess }

// Init validates options. Supported: "min", "max", "attempts".
func (g *Game) Init(opts game.Options) error {
	g.state.Min = opts.IntOr("min", DefaultMin)
	g.state.Max = opts.IntOr("max", DefaultMax)
	if g.state.Min >= g.state.Max {
		return fmt.Errorf("%w: min %d must be below max %d", game.ErrBadOption, g.state.Min, g.state.Max)
	}
	g.state.AttemptsLeft = opts.IntOr("attempts", DefaultAttempts)
	if g.state.AttemptsLeft < 1 {
		return fmt.Errorf("%w: attempts must be positive, got %d", game.ErrBadOption, g.state.AttemptsLeft)
	}
	g.b.SetMinInterval(g.cfg.MinInterval)
	return nil
}

// Begin draws the secret number and opens the floor.
func (g *Game) Begin() {
	span := g.state.Max - g.state.Min + 1
	g.state.Target = g.state.Min + g.b.Rand().Intn(span)
	g.b.Render(game.View{
		Text: fmt.Sprintf("🔢 I picked a number between %d and %d. The group has %d guesses — go!",
			g.state.Min, g.state.Max, g.state.AttemptsLeft),
	})
	g.b.Schedule(g.cfg.Timeout)
}

// OnAction consumes one guess from the shared attempt budget. Anyone in the
// channel may play; first correct guess wins.
func (g *Game) OnAction(userID int64, action string, payload map[string]any) game.Result {
	if action != ActionGuess {
		return game.Reject(game.ReasonInvalidChoice, "send a number to guess")
	}
	value, ok := game.Options(payload).Int("value")
	if !ok {
		return game.Reject(game.ReasonInvalidChoice, "that doesn't look like a number")
	}
	if value < g.state.Min || value > g.state.Max {
		return game.Reject(game.ReasonInvalidChoice,
			fmt.Sprintf("guess between %d and %d", g.state.Min, g.state.Max))
	}
	if remaining, cooling := g.b.CheckCooldown(userID, ActionGuess); cooling {
		return game.Reject(game.ReasonTooFast, fmt.Sprintf("wait %.0fs between guesses", remaining.Seconds()))
	}

	p := g.b.Player(userID)
	if p == nil {
		username, _ := payload["username"].(string)
		p = g.b.AddPlayer(userID, username)
	}
	g.b.MarkAction(userID, ActionGuess)
	g.state.AttemptsLeft--
	g.state.Guesses = append(g.state.Guesses, value)

	switch {
	case value == g.state.Target:
		p.Score++
		g.b.SetWinner(p)
		g.b.EndGame(game.EndCompleted)
		return game.Accept(fmt.Sprintf("🎉 %d is right!", value))
	case g.state.AttemptsLeft == 0:
		g.b.EndGame(game.EndCompleted)
		return game.Accept(fmt.Sprintf("%d is wrong and that was the last guess.", value))
	case value < g.state.Target:
		g.b.Render(game.View{Text: fmt.Sprintf("📈 %d — higher! %d guesses left.", value, g.state.AttemptsLeft)})
		return game.AcceptData("higher", map[string]any{"hint": "higher"})
	default:
		g.b.Render(game.View{Text: fmt.Sprintf("📉 %d — lower! %d guesses left.", value, g.state.AttemptsLeft)})
		return game.AcceptData("lower", map[string]any{"hint": "lower"})
	}
}

// OnTimeout ends an abandoned round.
func (g *Game) OnTimeout(round int) {
	g.b.Render(game.View{Text: "⏰ Nobody found the number in time."})
	g.b.EndGame(game.EndTimeout)
}

// OnEnd reveals the number.
func (g *Game) OnEnd(reason game.EndReason) {
	if w := g.b.Winner(); w != nil {
		g.b.Render(game.View{Text: fmt.Sprintf("🏆 %s guessed %d!", w.Username, g.state.Target)})
		return
	}
	if reason == game.EndCompleted || reason == game.EndTimeout {
		g.b.Render(game.View{Text: fmt.Sprintf("The number was %d. Better luck next time.", g.state.Target)})
	}
}

// State returns the serializable payload.
func (g *Game) State() any { return &g.state }
