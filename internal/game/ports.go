package game

import "context"

// View is a transport-agnostic render request: a text body plus optional
// button-like choices.
type View struct {
	Text    string
	Choices []Choice
}

// Choice is one interactive option offered to the channel.
type Choice struct {
	Key   string // callback payload, routed back as an action
	Label string
}

// Renderer presents session state to the channel. Implementations must be
// fire-and-forget: failures are logged by the adapter, never returned, and
// Render must not block the caller.
type Renderer interface {
	Render(channelID int64, view View)
}

// MoveContext is the state handed to the AI opponent when asking for a move.
type MoveContext struct {
	SessionID     string
	MyHP          int
	MyMaxHP       int
	EnemyHP       int
	EnemyMaxHP    int
	Available     []string
	Cooldowns     map[string]int
	EnemyLastMove string
}

// MoveDecision is the opponent's answer.
type MoveDecision struct {
	Move   string
	Flavor string
}

// Opponent supplies bot move decisions and flavor text. Callers enforce a
// timeout and fall back to a local heuristic on error.
type Opponent interface {
	ChooseMove(ctx context.Context, mc MoveContext) (MoveDecision, error)
	FlavorText(ctx context.Context, action, tendency string) (string, error)
}

// GameStats is the per-game-type slice of a user's aggregated record.
type GameStats struct {
	Type   Type
	Played int
	Won    int
}

// UserStats aggregates a user's record across persisted session snapshots.
type UserStats struct {
	UserID int64
	Games  []GameStats
}

// SnapshotStore persists session snapshots. Saves are best-effort: a
// failure is logged and never aborts gameplay. Stats queries live on the
// concrete repository; the engine never reads snapshots back.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, snap *Snapshot) error
}
