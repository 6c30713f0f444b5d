package game

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Status is the session lifecycle state. Transitions only move forward:
// Created -> Active -> Ended.
type Status string

const (
	StatusCreated Status = "created"
	StatusActive  Status = "active"
	StatusEnded   Status = "ended"
)

// Player is one roster entry. The initiator is always players[0].
type Player struct {
	ID       int64
	Username string
	Score    int64
	IsBot    bool
	Won      bool
}

// ChannelRef identifies the chat channel a session is bound to.
type ChannelRef struct {
	ID    int64
	Title string
}

// UserRef identifies a user at the inbound boundary.
type UserRef struct {
	ID       int64
	Username string
}

type cooldownKey struct {
	userID int64
	kind   string
}

// Base is the shared session state machine: identity, roster, turn pointer,
// round counter, the single pending round timer and the cooldown map. Every
// concrete game holds a *Base and drives it from its Rules methods.
//
// All exported mutating methods assume the session lock is held; the Session
// wrapper is the only place that takes it.
type Base struct {
	mu sync.Mutex

	id        string
	gameType  Type
	channelID int64
	status    Status
	players   []*Player
	turnIndex int
	startedAt time.Time
	endedAt   time.Time
	winner    *Player

	round       int
	timer       Timer
	fire        func(round int)
	endPending  bool
	endReason   EndReason
	endNotified bool

	cooldowns   map[cooldownKey]time.Time
	minInterval time.Duration

	clock    Clock
	rng      Rand
	renderer Renderer
	opponent Opponent
	log      zerolog.Logger
}

// NewBase creates the shared state for a fresh session and registers the
// initiator as players[0].
func NewBase(t Type, sessionID string, channel ChannelRef, initiator UserRef, clock Clock, rng Rand, renderer Renderer, opponent Opponent) *Base {
	b := &Base{
		id:        sessionID,
		gameType:  t,
		channelID: channel.ID,
		status:    StatusCreated,
		cooldowns: make(map[cooldownKey]time.Time),
		clock:     clock,
		rng:       rng,
		renderer:  renderer,
		opponent:  opponent,
		log: log.With().
			Str("session_id", sessionID).
			Str("game", string(t)).
			Int64("channel_id", channel.ID).
			Logger(),
	}
	b.players = append(b.players, &Player{ID: initiator.ID, Username: initiator.Username})
	return b
}

// ID returns the session's opaque unique token.
func (b *Base) ID() string { return b.id }

// GameType returns the owning game's type tag.
func (b *Base) GameType() Type { return b.gameType }

// ChannelID returns the bound channel.
func (b *Base) ChannelID() int64 { return b.channelID }

// Log returns the session-scoped logger.
func (b *Base) Log() zerolog.Logger { return b.log }

// Clock returns the session clock.
func (b *Base) Clock() Clock { return b.clock }

// Now is shorthand for Clock().Now().
func (b *Base) Now() time.Time { return b.clock.Now() }

// Rand returns the session random source.
func (b *Base) Rand() Rand { return b.rng }

// Opponent returns the AI opponent port, which may be nil.
func (b *Base) Opponent() Opponent { return b.opponent }

// Players returns the roster in join order.
func (b *Base) Players() []*Player { return b.players }

// Player looks up a roster entry by user ID.
func (b *Base) Player(userID int64) *Player {
	for _, p := range b.players {
		if p.ID == userID {
			return p
		}
	}
	return nil
}

// AddPlayer appends a human player. Duplicate IDs return the existing entry.
func (b *Base) AddPlayer(userID int64, username string) *Player {
	if p := b.Player(userID); p != nil {
		return p
	}
	p := &Player{ID: userID, Username: username}
	b.players = append(b.players, p)
	return p
}

// AddBot appends a bot-controlled player. Bot IDs are negative so they can
// never collide with real user IDs.
func (b *Base) AddBot(username string) *Player {
	p := &Player{ID: -int64(len(b.players) + 1), Username: username, IsBot: true}
	b.players = append(b.players, p)
	return p
}

// Winner returns the winning player, if one has been set.
func (b *Base) Winner() *Player { return b.winner }

// SetWinner marks p as the session winner. The first call wins; later calls
// are ignored so end paths cannot overwrite a decided result.
func (b *Base) SetWinner(p *Player) {
	if b.winner != nil || p == nil {
		return
	}
	b.winner = p
	p.Won = true
}

// CurrentPlayer returns the roster entry owning the current turn.
func (b *Base) CurrentPlayer() *Player {
	if len(b.players) == 0 {
		return nil
	}
	return b.players[b.turnIndex%len(b.players)]
}

// TurnIndex returns the raw turn cursor.
func (b *Base) TurnIndex() int { return b.turnIndex }

// AdvanceTurn moves the turn pointer to the next player.
func (b *Base) AdvanceTurn() {
	b.turnIndex++
}

// IsTurn reports whether userID owns the current turn.
func (b *Base) IsTurn(userID int64) bool {
	p := b.CurrentPlayer()
	return p != nil && p.ID == userID
}

// Round returns the current round sequence number. It starts at 0 and only
// ever increases; a pending timer is bound to the round it was armed in.
func (b *Base) Round() int { return b.round }

// NextRound advances the round counter and cancels any timer still pending
// for the previous round, making a late fire a guaranteed no-op.
func (b *Base) NextRound() int {
	b.round++
	b.stopTimer()
	return b.round
}

// Schedule arms the session's single round timer for the current round.
// Re-arming replaces a pending timer; at most one is ever outstanding.
func (b *Base) Schedule(d time.Duration) {
	b.stopTimer()
	seq := b.round
	fire := b.fire
	if fire == nil {
		return
	}
	b.timer = b.clock.AfterFunc(d, func() { fire(seq) })
}

func (b *Base) stopTimer() {
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
}

// SetMinInterval configures the per-(user, action-kind) cooldown window.
// Zero disables cooldown checks.
func (b *Base) SetMinInterval(d time.Duration) { b.minInterval = d }

// CheckCooldown reports whether an action of the given kind from userID is
// inside the cooldown window, and if so how long remains. Rejections must
// not call MarkAction, so rapid invalid attempts neither reset nor extend
// the window.
func (b *Base) CheckCooldown(userID int64, kind string) (time.Duration, bool) {
	if b.minInterval <= 0 {
		return 0, false
	}
	last, ok := b.cooldowns[cooldownKey{userID: userID, kind: kind}]
	if !ok {
		return 0, false
	}
	elapsed := b.clock.Now().Sub(last)
	if elapsed < b.minInterval {
		return b.minInterval - elapsed, true
	}
	return 0, false
}

// MarkAction records the acceptance timestamp for a (user, kind) pair.
func (b *Base) MarkAction(userID int64, kind string) {
	if b.minInterval <= 0 {
		return
	}
	b.cooldowns[cooldownKey{userID: userID, kind: kind}] = b.clock.Now()
}

// Render sends a view to the channel through the transport port. Nil-safe so
// engine tests can run without an adapter.
func (b *Base) Render(view View) {
	if b.renderer == nil {
		return
	}
	b.renderer.Render(b.channelID, view)
}

// EndGame requests session termination. The surrounding Session wrapper
// completes the transition once the current handler returns, so rules can
// call this from the middle of OnAction or OnTimeout.
func (b *Base) EndGame(reason EndReason) {
	if b.status == StatusEnded || b.endPending {
		return
	}
	b.endPending = true
	b.endReason = reason
}

// Status returns the lifecycle state.
func (b *Base) Status() Status { return b.status }

// StartedAt returns the activation timestamp.
func (b *Base) StartedAt() time.Time { return b.startedAt }

// EndedAt returns the termination timestamp, zero while the session lives.
func (b *Base) EndedAt() time.Time { return b.endedAt }

// Session binds a Base to its concrete Rules and serializes every mutation:
// user actions, timer callbacks, and stop requests all funnel through the
// session lock, so no two handler invocations ever interleave.
type Session struct {
	base  *Base
	rules Rules
	onEnd func(s *Session, snap *Snapshot)
}

// NewSession wires rules to their base. onEnd is invoked exactly once, after
// the session's own end handling has fully run, with the final snapshot.
func NewSession(b *Base, rules Rules, onEnd func(s *Session, snap *Snapshot)) *Session {
	s := &Session{base: b, rules: rules, onEnd: onEnd}
	b.fire = s.fireTimeout
	return s
}

// Base exposes the shared state, mainly for tests and the manager.
func (s *Session) Base() *Base { return s.base }

// Type returns the owning game type.
func (s *Session) Type() Type { return s.base.gameType }

// ChannelID returns the bound channel.
func (s *Session) ChannelID() int64 { return s.base.channelID }

// Ended reports whether the session reached its terminal state.
func (s *Session) Ended() bool {
	s.base.mu.Lock()
	defer s.base.mu.Unlock()
	return s.base.status == StatusEnded
}

// Start transitions Created -> Active, stamps startedAt and lets the rules
// render their initial state and arm the first timer. Starting a session
// that is not Created is a programmer error.
func (s *Session) Start() error {
	b := s.base
	b.mu.Lock()
	if b.status != StatusCreated {
		b.mu.Unlock()
		return fmt.Errorf("%w: start on %s session", ErrInvalidState, b.status)
	}
	b.status = StatusActive
	b.startedAt = b.clock.Now()
	s.guarded(func() { s.rules.Begin() })
	ended, snap := s.settleLocked()
	b.mu.Unlock()
	s.notify(ended, snap)
	return nil
}

// Submit routes one external action into the rules. It never panics outward:
// a panic inside the rules ends the session with reason internal_error and
// is reported as a rejected action.
func (s *Session) Submit(userID int64, action string, payload map[string]any) Result {
	b := s.base
	b.mu.Lock()
	if b.status != StatusActive {
		b.mu.Unlock()
		return Reject(ReasonGameOver, "the game is over")
	}
	res := Reject(ReasonInternal, "something went wrong")
	s.guarded(func() { res = s.rules.OnAction(userID, action, payload) })
	ended, snap := s.settleLocked()
	b.mu.Unlock()
	s.notify(ended, snap)
	return res
}

// Stop force-ends the session. Idempotent: a second call is a no-op.
func (s *Session) Stop(reason EndReason) {
	b := s.base
	b.mu.Lock()
	if b.status == StatusEnded {
		b.mu.Unlock()
		return
	}
	b.EndGame(reason)
	ended, snap := s.settleLocked()
	b.mu.Unlock()
	s.notify(ended, snap)
}

// Snapshot serializes the full session, including the opaque game state.
func (s *Session) Snapshot() *Snapshot {
	s.base.mu.Lock()
	defer s.base.mu.Unlock()
	return s.snapshotLocked()
}

// fireTimeout is the single entry point for round timers. A timer racing
// with end or with a round-resolving action loses here: the status and
// round-sequence checks make the stale callback a no-op.
func (s *Session) fireTimeout(round int) {
	b := s.base
	b.mu.Lock()
	if b.status != StatusActive || b.round != round {
		b.mu.Unlock()
		return
	}
	s.guarded(func() { s.rules.OnTimeout(round) })
	ended, snap := s.settleLocked()
	b.mu.Unlock()
	s.notify(ended, snap)
}

// guarded runs fn and converts a panic into an internal-error end request.
func (s *Session) guarded(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			s.base.log.Error().Interface("panic", r).Msg("Game rules panicked")
			s.base.EndGame(EndInternal)
		}
	}()
	fn()
}

// settleLocked completes a pending end transition: cancels the timer, stamps
// endedAt, runs the rules' summary hook and produces the final snapshot.
func (s *Session) settleLocked() (bool, *Snapshot) {
	b := s.base
	if !b.endPending || b.status == StatusEnded {
		return false, nil
	}
	b.endPending = false
	b.status = StatusEnded
	b.endedAt = b.clock.Now()
	b.stopTimer()
	reason := b.endReason
	s.guarded(func() { s.rules.OnEnd(reason) })
	if b.endNotified {
		return false, nil
	}
	b.endNotified = true
	b.log.Info().Str("reason", string(reason)).Msg("Session ended")
	return true, s.snapshotLocked()
}

func (s *Session) notify(ended bool, snap *Snapshot) {
	if ended && s.onEnd != nil {
		s.onEnd(s, snap)
	}
}

func (s *Session) snapshotLocked() *Snapshot {
	b := s.base
	snap := &Snapshot{
		SessionID: b.id,
		GameType:  b.gameType,
		ChannelID: b.channelID,
		Status:    b.status,
		TurnIndex: b.turnIndex,
		StartedAt: b.startedAt,
	}
	if !b.endedAt.IsZero() {
		t := b.endedAt
		snap.EndedAt = &t
	}
	if b.winner != nil {
		id := b.winner.ID
		snap.WinnerID = &id
	}
	for _, p := range b.players {
		snap.Players = append(snap.Players, PlayerSnapshot{
			UserID:   p.ID,
			Username: p.Username,
			Score:    p.Score,
			IsBot:    p.IsBot,
			Won:      p.Won,
		})
	}
	snap.encodeState(s.rules.State(), b.log)
	return snap
}
