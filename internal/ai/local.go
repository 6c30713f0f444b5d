package ai

import (
	"context"

	"telegram-minigame-bot/internal/game"
)

// Local is an in-process opponent used when no sidecar is configured. It
// plays a simple tactical line: heal when low, raise a guard against heavy
// hitters, otherwise attack.
type Local struct {
	rng game.Rand
}

// NewLocal builds the in-process opponent.
func NewLocal(rng game.Rand) *Local {
	if rng == nil {
		rng = game.NewRand()
	}
	return &Local{rng: rng}
}

var localFlavor = map[string][]string{
	"strike": {"A solid hit!", "Right where it hurts."},
	"quick":  {"Too fast to follow!", "A jab slips through."},
	"heavy":  {"Winding up for a big one…", "That one left a mark."},
	"guard":  {"Settling into a stance.", "Nothing gets through."},
	"block":  {"A wall goes up.", "Try hitting that."},
	"heal":   {"Patching up.", "A breather, back in shape."},
}

// ChooseMove picks a move from the available set.
func (l *Local) ChooseMove(ctx context.Context, mc game.MoveContext) (game.MoveDecision, error) {
	move := l.pick(mc)
	flavor := ""
	if lines := localFlavor[move]; len(lines) > 0 {
		flavor = lines[l.rng.Intn(len(lines))]
	}
	return game.MoveDecision{Move: move, Flavor: flavor}, nil
}

// FlavorText returns a canned line for the action.
func (l *Local) FlavorText(ctx context.Context, action, tendency string) (string, error) {
	lines := localFlavor[action]
	if len(lines) == 0 {
		return "", nil
	}
	return lines[l.rng.Intn(len(lines))], nil
}

func (l *Local) pick(mc game.MoveContext) string {
	has := func(key string) bool {
		for _, a := range mc.Available {
			if a == key {
				return true
			}
		}
		return false
	}
	hpRatio := 1.0
	if mc.MyMaxHP > 0 {
		hpRatio = float64(mc.MyHP) / float64(mc.MyMaxHP)
	}
	switch {
	case hpRatio < 0.3 && has("heal"):
		return "heal"
	case mc.EnemyLastMove == "heavy" && has("block"):
		return "block"
	case hpRatio < 0.45 && has("guard") && l.rng.Float64() < 0.5:
		return "guard"
	case mc.EnemyHP <= 25 && has("heavy"):
		return "heavy"
	case has("strike"):
		return "strike"
	case len(mc.Available) > 0:
		return mc.Available[l.rng.Intn(len(mc.Available))]
	default:
		return "strike"
	}
}
