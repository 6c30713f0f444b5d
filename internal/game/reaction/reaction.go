// Package reaction implements the reaction race: after a random delay the
// bot shouts GO and the first press wins. Pressing early is a false start.
package reaction

import (
	"fmt"
	"time"

	"telegram-minigame-bot/internal/game"
)

const (
	// DefaultMinDelay and DefaultMaxDelay bound the random arming delay.
	DefaultMinDelay = 2 * time.Second
	DefaultMaxDelay = 8 * time.Second

	// DefaultWindow is how long after GO a press still counts.
	DefaultWindow = 5 * time.Second

	// ActionPress is the only action: the big red button.
	ActionPress = "press"
)

type phase string

const (
	phaseArming phase = "arming"
	phaseOpen   phase = "open"
)

// Config holds tunables supplied at registration time.
type Config struct {
	MinDelay time.Duration
	MaxDelay time.Duration
	Window   time.Duration
}

// State is the serializable game payload.
type State struct {
	Phase       phase     `json:"phase"`
	GoAt        time.Time `json:"go_at"`
	FalseStarts []int64   `json:"false_starts,omitempty"`
	WinnerMs    int64     `json:"winner_ms,omitempty"`
}

// Game is the concrete rules value bound to one session.
type Game struct {
	b   *game.Base
	cfg Config

	state State
}

// New returns the session factory for reaction races.
func New(cfg Config) game.Factory {
	if cfg.MinDelay <= 0 {
		cfg.MinDelay = DefaultMinDelay
	}
	if cfg.MaxDelay < cfg.MinDelay {
		cfg.MaxDelay = DefaultMaxDelay
	}
	if cfg.Window <= 0 {
		cfg.Window = DefaultWindow
	}
	return func(b *game.Base) game.Rules {
		return &Game{b: b, cfg: cfg}
	}
}

// Type reports the game type tag.
func (g *Game) Type() game.Type { return game.TypeReaction }

// Init accepts no options; the race is the same for everyone.
func (g *Game) Init(opts game.Options) error {
	g.state.Phase = phaseArming
	return nil
}

// Begin announces the race and arms the GO timer with a random delay.
func (g *Game) Begin() {
	g.b.Render(game.View{
		Text:    "⚡ Reaction race! Wait for GO, then smash the button. Pressing early disqualifies you.",
		Choices: []game.Choice{{Key: ActionPress, Label: "🔴 PRESS"}},
	})
	span := g.cfg.MaxDelay - g.cfg.MinDelay
	delay := g.cfg.MinDelay + time.Duration(g.b.Rand().Float64()*float64(span))
	g.b.Schedule(delay)
}

// OnAction handles button presses in both phases: a false start before GO,
// a win for the first press after it.
func (g *Game) OnAction(userID int64, action string, payload map[string]any) game.Result {
	if action != ActionPress {
		return game.Reject(game.ReasonInvalidChoice, "just press the button")
	}
	username, _ := payload["username"].(string)

	if g.state.Phase == phaseArming {
		for _, id := range g.state.FalseStarts {
			if id == userID {
				return game.Reject(game.ReasonAlreadyAnswered, "you already jumped the gun")
			}
		}
		g.state.FalseStarts = append(g.state.FalseStarts, userID)
		g.b.Render(game.View{Text: fmt.Sprintf("🚫 %s pressed before GO and is out of this race.", username)})
		return game.AcceptData("false start", map[string]any{"false_start": true})
	}

	for _, id := range g.state.FalseStarts {
		if id == userID {
			return game.Reject(game.ReasonNotInGame, "false starters sit this one out")
		}
	}
	p := g.b.Player(userID)
	if p == nil {
		p = g.b.AddPlayer(userID, username)
	}
	elapsed := g.b.Now().Sub(g.state.GoAt)
	g.state.WinnerMs = elapsed.Milliseconds()
	p.Score = g.state.WinnerMs
	g.b.SetWinner(p)
	g.b.EndGame(game.EndCompleted)
	return game.AcceptData(fmt.Sprintf("%.0f ms", float64(elapsed.Milliseconds())), map[string]any{"ms": g.state.WinnerMs})
}

// OnTimeout flips the race open on the first fire and closes an unclaimed
// window on the second.
func (g *Game) OnTimeout(round int) {
	if g.state.Phase == phaseArming {
		g.state.Phase = phaseOpen
		g.state.GoAt = g.b.Now()
		g.b.NextRound()
		g.b.Render(game.View{
			Text:    "🟢 GO!",
			Choices: []game.Choice{{Key: ActionPress, Label: "🔴 PRESS"}},
		})
		g.b.Schedule(g.cfg.Window)
		return
	}
	g.b.Render(game.View{Text: "😴 Nobody pressed in time."})
	g.b.EndGame(game.EndTimeout)
}

// OnEnd announces the winner's reaction time.
func (g *Game) OnEnd(reason game.EndReason) {
	if w := g.b.Winner(); w != nil {
		g.b.Render(game.View{Text: fmt.Sprintf("🏆 %s reacted in %d ms!", w.Username, g.state.WinnerMs)})
	}
}

// State returns the serializable payload.
func (g *Game) State() any { return &g.state }
