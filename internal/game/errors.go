package game

import "errors"

// Registry-level errors. These are user-facing and recoverable by retrying
// with different input.
var (
	ErrAlreadyActive   = errors.New("a game is already running in this channel")
	ErrNoActiveGame    = errors.New("no active game in this channel")
	ErrUnknownGameType = errors.New("unknown game type")
)

// ErrInvalidState signals programmer misuse of the session lifecycle,
// e.g. starting a session twice. It should never surface in a correct
// integration and is logged loudly when it does.
var ErrInvalidState = errors.New("invalid session state")

// ErrBadOption signals malformed start options. Games wrap it with %w and a
// description of the offending option.
var ErrBadOption = errors.New("invalid game option")

// Reason is a stable, user-presentable code attached to a rejected action.
type Reason string

const (
	ReasonTooFast         Reason = "too_fast"
	ReasonNotYourTurn     Reason = "not_your_turn"
	ReasonInvalidChoice   Reason = "invalid_choice"
	ReasonAlreadyAnswered Reason = "already_answered"
	ReasonOutOfAttempts   Reason = "out_of_attempts"
	ReasonNotInGame       Reason = "not_in_game"
	ReasonRoundClosed     Reason = "round_closed"
	ReasonGameOver        Reason = "game_over"
	ReasonInternal        Reason = "internal_error"
)
