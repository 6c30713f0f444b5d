// Package trivia implements the quiz game: multiple-choice rounds with a
// speed bonus, in standard (everyone answers) or buzz (first correct wins
// the round) mode.
package trivia

import (
	"fmt"
	"time"

	"telegram-minigame-bot/internal/game"
)

const (
	ModeStandard = "standard"
	ModeBuzz     = "buzz"

	DefaultRounds = 5
	MaxRounds     = 15

	// Scoring: a correct answer earns BasePoints, plus SpeedBonus when it
	// lands inside the bonus window. A wrong answer costs WrongPenalty.
	BasePoints   = 100
	SpeedBonus   = 50
	WrongPenalty = 25

	DefaultRoundTime   = 15 * time.Second
	DefaultBonusWindow = 5 * time.Second

	// Bot behaviour: answers after a random delay with this accuracy.
	botAccuracy = 0.7
	botMinDelay = 1 * time.Second
	botMaxDelay = 6 * time.Second

	ActionAnswer = "answer"
)

// Config holds trivia tunables supplied at registration time.
type Config struct {
	Questions   []Question
	RoundTime   time.Duration
	BonusWindow time.Duration
	MinInterval time.Duration
}

// State is the serializable game payload.
type State struct {
	Mode        string         `json:"mode"`
	RoundsTotal int            `json:"rounds_total"`
	RoundNum    int            `json:"round_num"`
	Order       []int          `json:"order"`
	Answered    map[int64]bool `json:"answered"`
	OpenedAt    time.Time      `json:"opened_at"`
	BotPending  bool           `json:"bot_pending"`
}

// Quiz is the concrete rules value bound to one session.
type Quiz struct {
	b   *game.Base
	cfg Config

	state State
	bot   *game.Player
}

// New returns the session factory for trivia.
func New(cfg Config) game.Factory {
	if len(cfg.Questions) == 0 {
		cfg.Questions = DefaultQuestions
	}
	if cfg.RoundTime <= 0 {
		cfg.RoundTime = DefaultRoundTime
	}
	if cfg.BonusWindow <= 0 {
		cfg.BonusWindow = DefaultBonusWindow
	}
	return func(b *game.Base) game.Rules {
		return &Quiz{b: b, cfg: cfg}
	}
}

// Type reports the game type tag.
func (q *Quiz) Type() game.Type { return game.TypeTrivia }

// Init validates options. Supported: "rounds", "mode" (standard|buzz),
// "bot" (add a bot contestant).
func (q *Quiz) Init(opts game.Options) error {
	rounds := opts.IntOr("rounds", DefaultRounds)
	if rounds < 1 || rounds > MaxRounds {
		return fmt.Errorf("%w: rounds must be 1-%d, got %d", game.ErrBadOption, MaxRounds, rounds)
	}
	if rounds > len(q.cfg.Questions) {
		rounds = len(q.cfg.Questions)
	}
	mode := opts.StringOr("mode", ModeStandard)
	if mode != ModeStandard && mode != ModeBuzz {
		return fmt.Errorf("%w: unknown mode %q", game.ErrBadOption, mode)
	}
	q.state.Mode = mode
	q.state.RoundsTotal = rounds
	if opts.Bool("bot") {
		q.bot = q.b.AddBot("Quiz Bot")
	}
	q.b.SetMinInterval(q.cfg.MinInterval)
	return nil
}

// Begin shuffles the question order and opens the first round.
func (q *Quiz) Begin() {
	q.state.Order = q.shuffle(len(q.cfg.Questions))
	q.b.Render(game.View{Text: fmt.Sprintf("🧠 Trivia time! %d questions, %s mode. Fast answers earn a bonus.",
		q.state.RoundsTotal, q.state.Mode)})
	q.openRound()
}

// OnAction scores one answer. Anyone in the channel may play; their first
// answer seats them.
func (q *Quiz) OnAction(userID int64, action string, payload map[string]any) game.Result {
	if action != ActionAnswer {
		return game.Reject(game.ReasonInvalidChoice, "pick one of the answers")
	}
	choice, ok := game.Options(payload).Int("choice")
	if !ok || choice < 0 || choice > 3 {
		return game.Reject(game.ReasonInvalidChoice, "pick one of the four answers")
	}
	if q.state.Answered[userID] {
		return game.Reject(game.ReasonAlreadyAnswered, "you already answered this one")
	}
	if remaining, cooling := q.b.CheckCooldown(userID, ActionAnswer); cooling {
		return game.Reject(game.ReasonTooFast, fmt.Sprintf("wait %.0fs", remaining.Seconds()))
	}
	p := q.b.Player(userID)
	if p == nil {
		username, _ := payload["username"].(string)
		p = q.b.AddPlayer(userID, username)
	}
	q.b.MarkAction(userID, ActionAnswer)
	return q.score(p, choice)
}

// score applies the answer for a seated player (human or bot).
func (q *Quiz) score(p *game.Player, choice int) game.Result {
	q.state.Answered[p.ID] = true
	question := q.question()
	elapsed := q.b.Now().Sub(q.state.OpenedAt)

	if choice == question.Answer {
		points := int64(BasePoints)
		if elapsed <= q.cfg.BonusWindow {
			points += SpeedBonus
		}
		p.Score += points
		if q.state.Mode == ModeBuzz {
			q.b.Render(game.View{Text: fmt.Sprintf("🔔 %s buzzes in with the right answer! +%d", p.Username, points)})
			q.closeRound(false)
			return game.AcceptData("correct", map[string]any{"points": points})
		}
		q.maybeCloseStandard()
		return game.AcceptData("correct", map[string]any{"points": points})
	}

	p.Score -= WrongPenalty
	q.maybeCloseStandard()
	return game.AcceptData("wrong", map[string]any{"points": -WrongPenalty})
}

// maybeCloseStandard closes a standard round once every seated player
// (including a still-thinking bot) has answered.
func (q *Quiz) maybeCloseStandard() {
	if q.state.Mode != ModeStandard || q.state.BotPending {
		return
	}
	for _, p := range q.b.Players() {
		if !q.state.Answered[p.ID] {
			return
		}
	}
	q.closeRound(true)
}

// OnTimeout fires for the bot's answer delay first (when a bot plays), then
// for the round deadline.
func (q *Quiz) OnTimeout(round int) {
	if q.state.BotPending {
		q.state.BotPending = false
		before := q.state.RoundNum
		q.botAnswer()
		if q.b.Status() != game.StatusActive || q.state.RoundNum != before {
			// The bot's answer closed the round (or the quiz); the next
			// round armed its own timer.
			return
		}
		if remaining := q.cfg.RoundTime - q.b.Now().Sub(q.state.OpenedAt); remaining > 0 {
			q.b.Schedule(remaining)
			return
		}
	}
	q.closeRound(true)
}

// botAnswer makes the bot pick: the right answer with botAccuracy
// probability, otherwise a random wrong one.
func (q *Quiz) botAnswer() {
	if q.bot == nil || q.state.Answered[q.bot.ID] {
		return
	}
	question := q.question()
	choice := question.Answer
	if q.b.Rand().Float64() > botAccuracy {
		choice = (question.Answer + 1 + q.b.Rand().Intn(3)) % 4
	}
	q.b.Render(game.View{Text: fmt.Sprintf("🤖 %s answers: %s", q.bot.Username, question.Choices[choice])})
	q.score(q.bot, choice)
}

// closeRound reveals the answer and advances to the next question or ends
// the quiz after the last one.
func (q *Quiz) closeRound(reveal bool) {
	question := q.question()
	if reveal {
		q.b.Render(game.View{Text: fmt.Sprintf("✅ The answer was: %s\n%s", question.Choices[question.Answer], q.scoreboard())})
	}
	q.state.RoundNum++
	q.b.NextRound()
	if q.state.RoundNum >= q.state.RoundsTotal {
		q.b.EndGame(game.EndCompleted)
		return
	}
	q.openRound()
}

// openRound renders the next question and arms the timer: the bot's answer
// delay when a bot plays, otherwise the round deadline.
func (q *Quiz) openRound() {
	q.state.Answered = make(map[int64]bool)
	q.state.OpenedAt = q.b.Now()
	question := q.question()

	choices := make([]game.Choice, 4)
	for i, c := range question.Choices {
		choices[i] = game.Choice{Key: fmt.Sprintf("%d", i), Label: c}
	}
	q.b.Render(game.View{
		Text:    fmt.Sprintf("❓ Question %d/%d:\n%s", q.state.RoundNum+1, q.state.RoundsTotal, question.Text),
		Choices: choices,
	})

	if q.bot != nil {
		q.state.BotPending = true
		span := botMaxDelay - botMinDelay
		delay := botMinDelay + time.Duration(q.b.Rand().Float64()*float64(span))
		if delay >= q.cfg.RoundTime {
			delay = q.cfg.RoundTime / 2
		}
		q.b.Schedule(delay)
		return
	}
	q.b.Schedule(q.cfg.RoundTime)
}

// OnEnd declares the winner.
func (q *Quiz) OnEnd(reason game.EndReason) {
	if reason != game.EndCompleted {
		return
	}
	var best *game.Player
	tied := false
	for _, p := range q.b.Players() {
		switch {
		case best == nil || p.Score > best.Score:
			best = p
			tied = false
		case p.Score == best.Score:
			tied = true
		}
	}
	text := "🧠 Quiz over!\n" + q.scoreboard()
	if best != nil && !tied && best.Score > 0 {
		q.b.SetWinner(best)
		text += fmt.Sprintf("🏆 %s takes it!", best.Username)
	}
	q.b.Render(game.View{Text: text})
}

// State returns the serializable payload.
func (q *Quiz) State() any { return &q.state }

func (q *Quiz) question() Question {
	return q.cfg.Questions[q.state.Order[q.state.RoundNum]]
}

// shuffle returns a Fisher-Yates permutation of [0,n).
func (q *Quiz) shuffle(n int) []int {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	for i := n - 1; i > 0; i-- {
		j := q.b.Rand().Intn(i + 1)
		order[i], order[j] = order[j], order[i]
	}
	return order
}

func (q *Quiz) scoreboard() string {
	text := ""
	for _, p := range q.b.Players() {
		text += fmt.Sprintf("• %s: %d\n", p.Username, p.Score)
	}
	return text
}
