package game

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// persistTimeout bounds best-effort snapshot writes so a slow store can
// never stall a session's turn clock.
const persistTimeout = 5 * time.Second

// Manager is the session registry: it maps each channel to at most one live
// session and is the only entry point the surrounding command layer talks to.
// The channel map is guarded by a single mutex; each session serializes its
// own mutations independently.
// Lock ordering: a session's lock is never held while acquiring the
// manager's, so manager -> session acquisition is always safe.
type Manager struct {
	registry *Registry
	deps     Deps

	mu       sync.Mutex
	sessions map[int64]*Session
}

// Deps are the external collaborators handed to every session.
type Deps struct {
	Renderer Renderer
	Opponent Opponent
	Store    SnapshotStore
	Clock    Clock
	Rand     Rand
}

// NewManager creates the registry. Clock and Rand default to the real
// implementations when nil.
func NewManager(registry *Registry, deps Deps) *Manager {
	if deps.Clock == nil {
		deps.Clock = RealClock()
	}
	if deps.Rand == nil {
		deps.Rand = NewRand()
	}
	return &Manager{
		registry: registry,
		deps:     deps,
		sessions: make(map[int64]*Session),
	}
}

// StartGame creates, initializes and starts a session for the channel. The
// check-then-create is atomic with respect to the channel key: under
// concurrent start requests exactly one session ever exists per channel.
func (m *Manager) StartGame(ctx context.Context, t Type, channel ChannelRef, initiator UserRef, opts Options) (*Session, error) {
	factory, ok := m.registry.Get(t)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownGameType, t)
	}

	m.mu.Lock()
	if existing, ok := m.sessions[channel.ID]; ok && !existing.Ended() {
		m.mu.Unlock()
		return nil, ErrAlreadyActive
	}

	base := NewBase(t, uuid.NewString(), channel, initiator, m.deps.Clock, m.deps.Rand, m.deps.Renderer, m.deps.Opponent)
	rules := factory(base)
	if err := rules.Init(opts); err != nil {
		m.mu.Unlock()
		return nil, err
	}
	sess := NewSession(base, rules, m.sessionEnded)
	m.sessions[channel.ID] = sess
	m.mu.Unlock()

	if err := sess.Start(); err != nil {
		m.mu.Lock()
		delete(m.sessions, channel.ID)
		m.mu.Unlock()
		return nil, err
	}

	log.Info().
		Str("session_id", base.ID()).
		Str("game", string(t)).
		Int64("channel_id", channel.ID).
		Int64("user_id", initiator.ID).
		Msg("Game started")

	m.persist(sess.Snapshot())
	return sess, nil
}

// Submit forwards one external action to the channel's live session.
func (m *Manager) Submit(ctx context.Context, channelID, userID int64, action string, payload map[string]any) (Result, error) {
	sess := m.Get(channelID)
	if sess == nil {
		return Result{}, ErrNoActiveGame
	}
	return sess.Submit(userID, action, payload), nil
}

// Stop force-ends the channel's live session through the normal end path.
func (m *Manager) Stop(ctx context.Context, channelID int64) error {
	sess := m.Get(channelID)
	if sess == nil {
		return ErrNoActiveGame
	}
	sess.Stop(EndStopped)
	return nil
}

// ForceClear drops a channel's session from the live map without running its
// end logic. Last-resort escape hatch for a stuck session: timers it owned
// may still be pending, which every timer callback guards against by
// checking the session status first.
func (m *Manager) ForceClear(channelID int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[channelID]; !ok {
		return false
	}
	delete(m.sessions, channelID)
	log.Warn().Int64("channel_id", channelID).Msg("Session force-cleared without end handling")
	return true
}

// Get returns the channel's live session, or nil.
func (m *Manager) Get(channelID int64) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[channelID]
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Shutdown ends every live session with reason shutdown, cancelling their
// timers. Called once at process exit.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	live := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		live = append(live, s)
	}
	m.mu.Unlock()

	for _, s := range live {
		s.Stop(EndShutdown)
	}
	log.Info().Int("count", len(live)).Msg("All sessions stopped")
}

// sessionEnded runs after a session's own end handling (summary render and
// standings) has fully completed. The session lock is released by then.
func (m *Manager) sessionEnded(s *Session, snap *Snapshot) {
	m.mu.Lock()
	if current, ok := m.sessions[s.ChannelID()]; ok && current == s {
		delete(m.sessions, s.ChannelID())
	}
	m.mu.Unlock()
	m.persist(snap)
}

// persist writes a snapshot best-effort: failures are logged, never surfaced
// to gameplay.
func (m *Manager) persist(snap *Snapshot) {
	if m.deps.Store == nil || snap == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		if err := m.deps.Store.SaveSnapshot(ctx, snap); err != nil {
			log.Error().Err(err).
				Str("session_id", snap.SessionID).
				Msg("Failed to save session snapshot")
		}
	}()
}
