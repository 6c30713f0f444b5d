// Package battle implements the turn-based duel: two fighters trade skills
// until one drops. The opponent is another user or an AI-driven bot.
package battle

import (
	"context"
	"fmt"
	"math"
	"time"

	"telegram-minigame-bot/internal/game"
)

const (
	MaxHP       = 100
	BaseDefense = 2

	// MaxTurns caps a stalling battle; highest HP wins at the cap.
	MaxTurns = 40

	// DefaultTurnTimeout is how long a human has to pick a move.
	DefaultTurnTimeout = 45 * time.Second

	// DefaultJoinTimeout is how long a pvp battle waits for a challenger
	// before a bot steps in.
	DefaultJoinTimeout = 30 * time.Second

	botMoveDelay   = 2 * time.Second
	opponentBudget = 1500 * time.Millisecond

	ActionSkill = "skill"
	ActionJoin  = "join"
)

type phase string

const (
	phaseWaiting  phase = "waiting"
	phaseFighting phase = "fighting"
)

// Config holds battle tunables supplied at registration time.
type Config struct {
	TurnTimeout time.Duration
	JoinTimeout time.Duration
}

// Fighter is the per-player combat sheet.
type Fighter struct {
	UserID    int64          `json:"user_id"`
	HP        int            `json:"hp"`
	MaxHP     int            `json:"max_hp"`
	Defense   int            `json:"defense"`
	Buff      int            `json:"buff"`
	Cooldowns map[string]int `json:"cooldowns"`
	LastMove  string         `json:"last_move,omitempty"`
}

// State is the serializable battle payload.
type State struct {
	Phase    phase      `json:"phase"`
	Turn     int        `json:"turn"`
	Fighters []*Fighter `json:"fighters"`
}

// Battle is the concrete rules value bound to one session.
type Battle struct {
	b   *game.Base
	cfg Config

	state State
}

// New returns the session factory for battles.
func New(cfg Config) game.Factory {
	if cfg.TurnTimeout <= 0 {
		cfg.TurnTimeout = DefaultTurnTimeout
	}
	if cfg.JoinTimeout <= 0 {
		cfg.JoinTimeout = DefaultJoinTimeout
	}
	return func(b *game.Base) game.Rules {
		return &Battle{b: b, cfg: cfg}
	}
}

// Type reports the game type tag.
func (g *Battle) Type() game.Type { return game.TypeBattle }

// Init validates options. Supported: "pvp" (wait for a human challenger
// instead of fighting the bot).
func (g *Battle) Init(opts game.Options) error {
	g.state.Phase = phaseWaiting
	g.addFighter(g.b.Players()[0])
	if !opts.Bool("pvp") {
		bot := g.b.AddBot("Battle Bot")
		g.addFighter(bot)
		g.state.Phase = phaseFighting
	}
	return nil
}

// Begin either opens the fight or renders the challenge, depending on
// whether an opponent is already seated.
func (g *Battle) Begin() {
	if g.state.Phase == phaseFighting {
		g.b.Render(game.View{Text: fmt.Sprintf("⚔️ %s challenges the Battle Bot! Both fighters start at %d HP.",
			g.b.Players()[0].Username, MaxHP)})
		g.beginTurn()
		return
	}
	g.b.Render(game.View{
		Text:    fmt.Sprintf("⚔️ %s is looking for a fight! Tap to accept.", g.b.Players()[0].Username),
		Choices: []game.Choice{{Key: ActionJoin, Label: "🥊 Accept"}},
	})
	g.b.Schedule(g.cfg.JoinTimeout)
}

// OnAction routes joins and skill picks.
func (g *Battle) OnAction(userID int64, action string, payload map[string]any) game.Result {
	switch action {
	case ActionJoin:
		return g.join(userID, payload)
	case ActionSkill:
		return g.useSkill(userID, payload)
	default:
		return game.Reject(game.ReasonInvalidChoice, "that is not a battle move")
	}
}

func (g *Battle) join(userID int64, payload map[string]any) game.Result {
	if g.state.Phase != phaseWaiting {
		return game.Reject(game.ReasonInvalidChoice, "this battle is already underway")
	}
	if g.b.Player(userID) != nil {
		return game.Reject(game.ReasonInvalidChoice, "you can't fight yourself")
	}
	username, _ := payload["username"].(string)
	p := g.b.AddPlayer(userID, username)
	g.addFighter(p)
	g.state.Phase = phaseFighting
	g.b.NextRound()
	g.b.Render(game.View{Text: fmt.Sprintf("🥊 %s accepts! Both fighters start at %d HP.", p.Username, MaxHP)})
	g.beginTurn()
	return game.Accept("you're in")
}

func (g *Battle) useSkill(userID int64, payload map[string]any) game.Result {
	if g.state.Phase != phaseFighting {
		return game.Reject(game.ReasonInvalidChoice, "the battle hasn't started yet")
	}
	if !g.b.IsTurn(userID) {
		return game.Reject(game.ReasonNotYourTurn, "it's not your turn")
	}
	key, _ := payload["skill"].(string)
	skill, ok := SkillByKey(key)
	if !ok {
		return game.Reject(game.ReasonInvalidChoice, "unknown move")
	}
	actor := g.fighter(userID)
	if actor.Cooldowns[key] > 0 {
		return game.Reject(game.ReasonInvalidChoice,
			fmt.Sprintf("%s needs %d more turn(s) to recharge", skill.Name, actor.Cooldowns[key]))
	}
	text := g.apply(actor, skill)
	return game.AcceptData(text, map[string]any{"skill": key})
}

// apply resolves one move, advances the turn and arms the next timer. The
// actor's defensive buff from the previous turn is spent before the move.
func (g *Battle) apply(actor *Fighter, skill Skill) string {
	target := g.other(actor)
	actorName := g.b.Player(actor.UserID).Username
	actor.Buff = 0
	actor.LastMove = skill.Key
	if skill.Cooldown > 0 {
		actor.Cooldowns[skill.Key] = skill.Cooldown + 1
	}

	var text string
	switch {
	case skill.Power > 0:
		dmg := Damage(skill.Power, target.Defense, target.Buff)
		target.HP -= dmg
		if target.HP < 0 {
			target.HP = 0
		}
		text = fmt.Sprintf("%s %s uses %s for %d damage!", skill.Emoji, actorName, skill.Name, dmg)
	case skill.Buff > 0:
		actor.Buff = skill.Buff
		text = fmt.Sprintf("%s %s braces behind %s (+%d defense).", skill.Emoji, actorName, skill.Name, skill.Buff)
	case skill.Heal > 0:
		healed := skill.Heal
		if actor.HP+healed > actor.MaxHP {
			healed = actor.MaxHP - actor.HP
		}
		actor.HP += healed
		text = fmt.Sprintf("%s %s heals %d HP.", skill.Emoji, actorName, healed)
	}

	g.state.Turn++
	if target.HP <= 0 {
		g.b.SetWinner(g.b.Player(actor.UserID))
		g.b.EndGame(game.EndCompleted)
		return text
	}
	if g.state.Turn >= MaxTurns {
		g.b.SetWinner(g.b.Player(g.healthier().UserID))
		g.b.EndGame(game.EndCompleted)
		return text
	}

	g.b.Render(game.View{Text: text + "\n" + g.scoreboard()})
	g.b.AdvanceTurn()
	g.beginTurn()
	return text
}

// beginTurn ticks the new actor's cooldowns, renders their keyboard and arms
// the timer: a short fuse for the bot, the turn timeout for humans.
func (g *Battle) beginTurn() {
	g.b.NextRound()
	current := g.b.CurrentPlayer()
	f := g.fighter(current.ID)
	for k, v := range f.Cooldowns {
		if v > 0 {
			f.Cooldowns[k] = v - 1
		}
	}
	if current.IsBot {
		g.b.Schedule(botMoveDelay)
		return
	}
	g.b.Render(game.View{
		Text:    fmt.Sprintf("👉 %s, pick your move:", current.Username),
		Choices: g.keyboard(f),
	})
	g.b.Schedule(g.cfg.TurnTimeout)
}

// OnTimeout covers three cases: nobody accepted a pvp challenge (a bot steps
// in), the bot's move is due, or a human idled and forfeits the turn.
func (g *Battle) OnTimeout(round int) {
	if g.state.Phase == phaseWaiting {
		bot := g.b.AddBot("Battle Bot")
		g.addFighter(bot)
		g.state.Phase = phaseFighting
		g.b.Render(game.View{Text: "Nobody stepped up — the Battle Bot takes the challenge!"})
		g.beginTurn()
		return
	}
	current := g.b.CurrentPlayer()
	if current.IsBot {
		g.botMove()
		return
	}
	g.b.Render(game.View{Text: fmt.Sprintf("⏰ %s hesitated and loses the turn!", current.Username)})
	g.fighter(current.ID).Buff = 0
	g.b.AdvanceTurn()
	g.beginTurn()
}

// botMove asks the AI opponent for a decision, falling back to the first
// usable skill when the sidecar is absent or slow.
func (g *Battle) botMove() {
	current := g.b.CurrentPlayer()
	me := g.fighter(current.ID)
	enemy := g.other(me)

	key := ""
	flavor := ""
	if opp := g.b.Opponent(); opp != nil {
		ctx, cancel := context.WithTimeout(context.Background(), opponentBudget)
		decision, err := opp.ChooseMove(ctx, game.MoveContext{
			SessionID:     g.b.ID(),
			MyHP:          me.HP,
			MyMaxHP:       me.MaxHP,
			EnemyHP:       enemy.HP,
			EnemyMaxHP:    enemy.MaxHP,
			Available:     g.available(me),
			Cooldowns:     me.Cooldowns,
			EnemyLastMove: enemy.LastMove,
		})
		cancel()
		if err != nil {
			log := g.b.Log()
			log.Warn().Err(err).Str("session_id", g.b.ID()).Msg("opponent unavailable, using fallback move")
		} else {
			key = decision.Move
			flavor = decision.Flavor
		}
	}
	skill, ok := SkillByKey(key)
	if !ok || me.Cooldowns[key] > 0 {
		skill = g.fallbackSkill(me)
	}
	if flavor != "" {
		g.b.Render(game.View{Text: fmt.Sprintf("🤖 %s", flavor)})
	}
	g.apply(me, skill)
}

// fallbackSkill is the first skill not on cooldown, in table order.
func (g *Battle) fallbackSkill(f *Fighter) Skill {
	for _, s := range Skills {
		if f.Cooldowns[s.Key] <= 0 {
			return s
		}
	}
	return Skills[0]
}

// OnEnd renders the outcome.
func (g *Battle) OnEnd(reason game.EndReason) {
	w := g.b.Winner()
	switch {
	case w != nil:
		w.Score++
		g.b.Render(game.View{Text: fmt.Sprintf("🏆 %s wins the battle!\n%s", w.Username, g.scoreboard())})
	case reason == game.EndStopped:
		g.b.Render(game.View{Text: "⚔️ The battle was called off."})
	}
}

// State returns the serializable payload.
func (g *Battle) State() any { return &g.state }

// Damage is the flat damage formula: attack power reduced by defense plus
// any active buff, never below 1.
func Damage(power, defense, buff int) int {
	d := math.Round(float64(power) - float64(defense+buff))
	if d < 1 {
		return 1
	}
	return int(d)
}

func (g *Battle) addFighter(p *game.Player) {
	g.state.Fighters = append(g.state.Fighters, &Fighter{
		UserID:    p.ID,
		HP:        MaxHP,
		MaxHP:     MaxHP,
		Defense:   BaseDefense,
		Cooldowns: make(map[string]int),
	})
}

func (g *Battle) fighter(userID int64) *Fighter {
	for _, f := range g.state.Fighters {
		if f.UserID == userID {
			return f
		}
	}
	return nil
}

func (g *Battle) other(f *Fighter) *Fighter {
	for _, o := range g.state.Fighters {
		if o.UserID != f.UserID {
			return o
		}
	}
	return nil
}

func (g *Battle) healthier() *Fighter {
	best := g.state.Fighters[0]
	for _, f := range g.state.Fighters[1:] {
		if f.HP > best.HP {
			best = f
		}
	}
	return best
}

func (g *Battle) available(f *Fighter) []string {
	var keys []string
	for _, s := range Skills {
		if f.Cooldowns[s.Key] <= 0 {
			keys = append(keys, s.Key)
		}
	}
	return keys
}

func (g *Battle) keyboard(f *Fighter) []game.Choice {
	var choices []game.Choice
	for _, s := range Skills {
		label := fmt.Sprintf("%s %s", s.Emoji, s.Name)
		if cd := f.Cooldowns[s.Key]; cd > 0 {
			label += fmt.Sprintf(" (%d)", cd)
		}
		choices = append(choices, game.Choice{Key: s.Key, Label: label})
	}
	return choices
}

func (g *Battle) scoreboard() string {
	text := ""
	for _, f := range g.state.Fighters {
		text += fmt.Sprintf("❤️ %s: %d/%d HP\n", g.b.Player(f.UserID).Username, f.HP, f.MaxHP)
	}
	return text
}
