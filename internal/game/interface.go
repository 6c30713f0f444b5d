// Package game implements the mini-game session engine: the per-channel
// session registry, the shared session state machine every concrete game
// builds on, and the turn/timeout/cooldown machinery.
package game

// Type identifies which concrete game logic owns a session. The set is
// closed: every type is registered with an explicit factory at startup.
type Type string

const (
	TypeTrivia    Type = "trivia"
	TypeBattle    Type = "battle"
	TypeAdventure Type = "adventure"
	TypeDiceDuel  Type = "diceduel"
	TypeGuess     Type = "guess"
	TypeReaction  Type = "reaction"
	TypeWordChain Type = "wordchain"
	TypeAssoc     Type = "assoc"
)

// EndReason records why a session ended.
type EndReason string

const (
	EndCompleted EndReason = "completed"
	EndStopped   EndReason = "stopped"
	EndTimeout   EndReason = "timeout"
	EndInternal  EndReason = "internal_error"
	EndShutdown  EndReason = "shutdown"
)

// Rules is implemented by each concrete game. Every method is invoked with
// the session's lock held; implementations mutate their own state and the
// shared Base freely but must not block beyond the bounded external ports.
type Rules interface {
	// Type reports the game type tag.
	Type() Type

	// Init validates start options and registers any extra players. It must
	// not start timers or render output. Malformed options are reported by
	// wrapping ErrBadOption.
	Init(opts Options) error

	// Begin renders the initial state and arms whatever first timer the game
	// needs. Called exactly once, on the Created -> Active transition.
	Begin()

	// OnAction handles one external action from a user. It returns Accepted
	// or Rejected and may conclude the game via Base.EndGame.
	OnAction(userID int64, action string, payload map[string]any) Result

	// OnTimeout performs the game's "no answer" resolution for the given
	// round. It is only invoked when the round is still current.
	OnTimeout(round int)

	// OnEnd computes final standings and renders the summary. Called exactly
	// once, with the session already marked Ended and all timers cancelled.
	OnEnd(reason EndReason)

	// State returns the game-specific payload for serialization. It must be
	// JSON-marshalable.
	State() any
}

// Factory constructs the rules for a new session around its Base.
type Factory func(b *Base) Rules
