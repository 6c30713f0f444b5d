// Package diceduel implements the dice duel: a fixed budget of rolls,
// highest total wins.
package diceduel

import (
	"fmt"
	"time"

	"telegram-minigame-bot/internal/game"
)

const (
	// DefaultRolls is the total roll budget when the start options omit one.
	DefaultRolls = 2

	// MaxRolls bounds the configurable roll budget.
	MaxRolls = 12

	// DiceSides is the die used for every roll.
	DiceSides = 6

	// TurnTimeout is how long the current player has to roll before the
	// duel rolls for them.
	TurnTimeout = 30 * time.Second

	// ActionRoll is the single action the duel understands.
	ActionRoll = "roll"
)

// Config holds duel configuration supplied at registration time.
type Config struct {
	TurnTimeout time.Duration
	MinInterval time.Duration
}

// State is the duel's serializable payload.
type State struct {
	RollBudget int    `json:"roll_budget"`
	Rolls      []Roll `json:"rolls"`
	BotPlays   bool   `json:"bot_plays"`
}

// Roll records one accepted roll.
type Roll struct {
	UserID int64 `json:"user_id"`
	Value  int   `json:"value"`
}

// Duel is the concrete rules value bound to one session.
type Duel struct {
	b   *game.Base
	cfg Config

	state State
	bot   *game.Player
}

// New returns the session factory for dice duels.
func New(cfg Config) game.Factory {
	if cfg.TurnTimeout <= 0 {
		cfg.TurnTimeout = TurnTimeout
	}
	return func(b *game.Base) game.Rules {
		return &Duel{b: b, cfg: cfg}
	}
}

// Type reports the game type tag.
func (d *Duel) Type() game.Type { return game.TypeDiceDuel }

// Init validates options. Supported: "max_rounds" (total roll budget) and
// "bot" (play against a bot opponent).
func (d *Duel) Init(opts game.Options) error {
	rolls := opts.IntOr("max_rounds", DefaultRolls)
	if rolls < 1 || rolls > MaxRolls {
		return fmt.Errorf("%w: max_rounds must be 1-%d, got %d", game.ErrBadOption, MaxRolls, rolls)
	}
	d.state.RollBudget = rolls
	d.state.BotPlays = opts.Bool("bot")
	if d.state.BotPlays {
		d.bot = d.b.AddBot("Dice Bot")
	}
	d.b.SetMinInterval(d.cfg.MinInterval)
	return nil
}

// Begin renders the opening prompt and arms the first turn timer.
func (d *Duel) Begin() {
	current := d.b.CurrentPlayer()
	d.b.Render(game.View{
		Text: fmt.Sprintf("🎲 Dice duel! %d rolls total, highest score wins.\n%s rolls first.",
			d.state.RollBudget, current.Username),
		Choices: []game.Choice{{Key: ActionRoll, Label: "🎲 Roll"}},
	})
	d.b.Schedule(d.cfg.TurnTimeout)
}

// OnAction accepts rolls from the player whose turn it is. A second distinct
// user joins the duel with their first roll when no opponent is seated yet.
func (d *Duel) OnAction(userID int64, action string, payload map[string]any) game.Result {
	if action != ActionRoll {
		return game.Reject(game.ReasonInvalidChoice, "that is not part of a dice duel")
	}
	p := d.b.Player(userID)
	if p == nil {
		if len(d.b.Players()) >= 2 {
			return game.Reject(game.ReasonNotInGame, "this duel already has two players")
		}
		username, _ := payload["username"].(string)
		p = d.b.AddPlayer(userID, username)
	}
	if !d.b.IsTurn(userID) {
		return game.Reject(game.ReasonNotYourTurn, "wait for your turn to roll")
	}
	if remaining, cooling := d.b.CheckCooldown(userID, ActionRoll); cooling {
		return game.Reject(game.ReasonTooFast, fmt.Sprintf("hold on %.0fs before rolling again", remaining.Seconds()))
	}

	value := d.rollValue(payload)
	d.b.MarkAction(userID, ActionRoll)
	d.applyRoll(p, value)
	return game.AcceptData(fmt.Sprintf("%s rolled %d", p.Username, value), map[string]any{"value": value})
}

// OnTimeout rolls on behalf of the idle player so a duel always concludes.
func (d *Duel) OnTimeout(round int) {
	p := d.b.CurrentPlayer()
	if p == nil {
		d.b.EndGame(game.EndTimeout)
		return
	}
	value := d.b.Rand().Intn(DiceSides) + 1
	d.b.Render(game.View{Text: fmt.Sprintf("⏰ %s idled — the dice rolled themselves: %d", p.Username, value)})
	d.applyRoll(p, value)
}

// applyRoll records the roll, advances the turn and concludes the duel once
// the roll budget is spent. The session auto-transitions to Ended here; no
// external stop call is needed.
func (d *Duel) applyRoll(p *game.Player, value int) {
	p.Score += int64(value)
	d.state.Rolls = append(d.state.Rolls, Roll{UserID: p.ID, Value: value})
	d.b.NextRound()

	if len(d.state.Rolls) >= d.state.RollBudget {
		d.b.EndGame(game.EndCompleted)
		return
	}

	d.b.AdvanceTurn()
	next := d.b.CurrentPlayer()
	d.b.Render(game.View{
		Text:    fmt.Sprintf("🎲 %s rolled %d. %s is up (%d rolls left).", p.Username, value, next.Username, d.state.RollBudget-len(d.state.Rolls)),
		Choices: []game.Choice{{Key: ActionRoll, Label: "🎲 Roll"}},
	})
	if next.IsBot {
		// Bot rolls on the round timer; a short fuse keeps the duel pacy.
		d.b.Schedule(2 * time.Second)
	} else {
		d.b.Schedule(d.cfg.TurnTimeout)
	}
}

// OnEnd computes the winner and renders the final standings.
func (d *Duel) OnEnd(reason game.EndReason) {
	if reason == game.EndCompleted {
		d.b.SetWinner(highestScore(d.b.Players()))
	}
	text := "🎲 Duel over.\n" + standings(d.b.Players())
	if w := d.b.Winner(); w != nil {
		text += fmt.Sprintf("\n🏆 %s wins!", w.Username)
	} else if reason == game.EndCompleted {
		text += "\n🤝 It's a draw."
	}
	d.b.Render(game.View{Text: text})
}

// State returns the serializable duel payload.
func (d *Duel) State() any { return &d.state }

func (d *Duel) rollValue(payload map[string]any) int {
	// The transport may supply the die value (e.g. a Telegram dice
	// animation); otherwise we roll locally.
	if v, ok := game.Options(payload).Int("value"); ok && v >= 1 && v <= DiceSides {
		return v
	}
	return d.b.Rand().Intn(DiceSides) + 1
}

func highestScore(players []*game.Player) *game.Player {
	var best *game.Player
	tied := false
	for _, p := range players {
		switch {
		case best == nil || p.Score > best.Score:
			best = p
			tied = false
		case p.Score == best.Score:
			tied = true
		}
	}
	if tied {
		return nil
	}
	return best
}

func standings(players []*game.Player) string {
	text := ""
	for _, p := range players {
		text += fmt.Sprintf("• %s: %d\n", p.Username, p.Score)
	}
	return text
}
