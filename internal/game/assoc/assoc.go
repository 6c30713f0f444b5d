// Package assoc implements the association game: a hidden theme drifts
// between rounds through a weighted transition table, hints for a secret
// word appear one by one, and earlier guesses score more.
package assoc

import (
	"fmt"
	"strings"
	"time"

	"telegram-minigame-bot/internal/game"
)

const (
	DefaultRounds = 4
	MaxRoundsCap  = 10

	// HintInterval is the pause between hint reveals; after the last hint
	// the round stays open one more interval before it is forfeit.
	DefaultHintInterval = 15 * time.Second

	// PointsPerHint scores a correct guess: fewer hints seen, more points.
	PointsPerHint = 50

	ActionGuess = "guess"
)

// Config holds association-game tunables supplied at registration time.
type Config struct {
	Themes       []Theme
	Transitions  [][]float64
	HintInterval time.Duration
	MinInterval  time.Duration
}

// State is the serializable game payload.
type State struct {
	RoundsTotal int            `json:"rounds_total"`
	RoundNum    int            `json:"round_num"`
	ThemeIdx    int            `json:"theme_idx"`
	EntryIdx    int            `json:"entry_idx"`
	HintsShown  int            `json:"hints_shown"`
	Used        map[string]bool `json:"used"`
}

// Game is the concrete rules value bound to one session.
type Game struct {
	b   *game.Base
	cfg Config

	state State
}

// New returns the session factory for the association game.
func New(cfg Config) game.Factory {
	if len(cfg.Themes) == 0 {
		cfg.Themes = DefaultThemes
		cfg.Transitions = DefaultTransitions
	}
	if cfg.HintInterval <= 0 {
		cfg.HintInterval = DefaultHintInterval
	}
	return func(b *game.Base) game.Rules {
		return &Game{b: b, cfg: cfg}
	}
}

// Type reports the game type tag.
func (g *Game) Type() game.Type { return game.TypeAssoc }

// Init validates options. Supported: "rounds".
func (g *Game) Init(opts game.Options) error {
	rounds := opts.IntOr("rounds", DefaultRounds)
	if rounds < 1 || rounds > MaxRoundsCap {
		return fmt.Errorf("%w: rounds must be 1-%d, got %d", game.ErrBadOption, MaxRoundsCap, rounds)
	}
	g.state.RoundsTotal = rounds
	g.state.Used = make(map[string]bool)
	g.b.SetMinInterval(g.cfg.MinInterval)
	return nil
}

// Begin samples the opening theme uniformly and starts the first round.
func (g *Game) Begin() {
	g.state.ThemeIdx = g.b.Rand().Intn(len(g.cfg.Themes))
	g.b.Render(game.View{Text: fmt.Sprintf("💡 Association game! %d secret words. Hints appear one by one — guess early for more points.",
		g.state.RoundsTotal)})
	g.openRound()
}

// OnAction checks a guess against the secret word. Anyone may play; a first
// guess seats the player.
func (g *Game) OnAction(userID int64, action string, payload map[string]any) game.Result {
	if action != ActionGuess {
		return game.Reject(game.ReasonInvalidChoice, "send your guess as a word")
	}
	raw, _ := payload["word"].(string)
	guess := strings.ToLower(strings.TrimSpace(raw))
	if guess == "" {
		return game.Reject(game.ReasonInvalidChoice, "send your guess as a word")
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

	if guess != g.entry().Word {
		return game.AcceptData("not it", map[string]any{"correct": false})
	}

	points := int64((len(g.entry().Hints) - g.state.HintsShown + 1) * PointsPerHint)
	if points < PointsPerHint {
		points = PointsPerHint
	}
	p.Score += points
	g.b.Render(game.View{Text: fmt.Sprintf("🎉 %s got it — %q! +%d", p.Username, g.entry().Word, points)})
	g.nextRound()
	return game.AcceptData("correct", map[string]any{"correct": true, "points": points})
}

// OnTimeout reveals the next hint, or forfeits the round once the hints ran
// out.
func (g *Game) OnTimeout(round int) {
	entry := g.entry()
	if g.state.HintsShown < len(entry.Hints) {
		g.revealHint()
		return
	}
	g.b.Render(game.View{Text: fmt.Sprintf("😶 Nobody got it. The word was %q.", entry.Word)})
	g.nextRound()
}

// nextRound drifts the hidden theme through the transition table and opens
// the next round, or ends the game after the last one.
func (g *Game) nextRound() {
	g.state.RoundNum++
	g.b.NextRound()
	if g.state.RoundNum >= g.state.RoundsTotal {
		g.b.EndGame(game.EndCompleted)
		return
	}
	if g.state.ThemeIdx < len(g.cfg.Transitions) {
		g.state.ThemeIdx = game.WeightedIndex(g.b.Rand(), g.cfg.Transitions[g.state.ThemeIdx])
	} else {
		g.state.ThemeIdx = g.b.Rand().Intn(len(g.cfg.Themes))
	}
	g.openRound()
}

// openRound picks an unused entry from the current theme and shows its first
// hint. A theme with no fresh entries falls through to a random other one.
func (g *Game) openRound() {
	theme := g.cfg.Themes[g.state.ThemeIdx]
	idx := g.pickEntry(theme)
	for tries := 0; idx < 0 && tries < len(g.cfg.Themes); tries++ {
		g.state.ThemeIdx = (g.state.ThemeIdx + 1) % len(g.cfg.Themes)
		theme = g.cfg.Themes[g.state.ThemeIdx]
		idx = g.pickEntry(theme)
	}
	if idx < 0 {
		g.b.EndGame(game.EndCompleted)
		return
	}
	g.state.EntryIdx = idx
	g.state.Used[theme.Entries[idx].Word] = true
	g.state.HintsShown = 0
	g.b.Render(game.View{Text: fmt.Sprintf("🔍 Word %d/%d. First hint coming up…", g.state.RoundNum+1, g.state.RoundsTotal)})
	g.revealHint()
}

func (g *Game) revealHint() {
	entry := g.entry()
	g.b.Render(game.View{Text: fmt.Sprintf("💭 Hint %d: %s", g.state.HintsShown+1, entry.Hints[g.state.HintsShown])})
	g.state.HintsShown++
	g.b.Schedule(g.cfg.HintInterval)
}

// pickEntry returns a random unused entry index in the theme, or -1.
func (g *Game) pickEntry(theme Theme) int {
	var fresh []int
	for i, e := range theme.Entries {
		if !g.state.Used[e.Word] {
			fresh = append(fresh, i)
		}
	}
	if len(fresh) == 0 {
		return -1
	}
	return fresh[g.b.Rand().Intn(len(fresh))]
}

// OnEnd declares the winner.
func (g *Game) OnEnd(reason game.EndReason) {
	if reason != game.EndCompleted {
		return
	}
	var best *game.Player
	tied := false
	for _, p := range g.b.Players() {
		switch {
		case best == nil || p.Score > best.Score:
			best = p
			tied = false
		case p.Score == best.Score:
			tied = true
		}
	}
	text := "💡 Game over!\n"
	for _, p := range g.b.Players() {
		text += fmt.Sprintf("• %s: %d\n", p.Username, p.Score)
	}
	if best != nil && !tied && best.Score > 0 {
		g.b.SetWinner(best)
		text += fmt.Sprintf("🏆 %s wins!", best.Username)
	}
	g.b.Render(game.View{Text: text})
}

// State returns the serializable payload.
func (g *Game) State() any { return &g.state }

func (g *Game) entry() Entry {
	return g.cfg.Themes[g.state.ThemeIdx].Entries[g.state.EntryIdx]
}
