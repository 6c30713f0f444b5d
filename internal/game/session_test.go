package game

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubRules is a minimal Rules implementation for driving the session state
// machine from tests.
type stubRules struct {
	b *Base

	begun      int
	timeouts   []int
	endReasons []EndReason

	onBegin   func()
	onAction  func(userID int64, action string, payload map[string]any) Result
	onTimeout func(round int)
}

func (r *stubRules) Type() Type              { return Type("stub") }
func (r *stubRules) Init(opts Options) error { return nil }
func (r *stubRules) State() any              { return map[string]string{"kind": "stub"} }
func (r *stubRules) OnEnd(reason EndReason)  { r.endReasons = append(r.endReasons, reason) }

func (r *stubRules) Begin() {
	r.begun++
	if r.onBegin != nil {
		r.onBegin()
	}
}

func (r *stubRules) OnAction(userID int64, action string, payload map[string]any) Result {
	if r.onAction != nil {
		return r.onAction(userID, action, payload)
	}
	return Accept("ok")
}

func (r *stubRules) OnTimeout(round int) {
	r.timeouts = append(r.timeouts, round)
	if r.onTimeout != nil {
		r.onTimeout(round)
	}
}

func newTestSession(t *testing.T, clock Clock) (*Session, *stubRules, *int) {
	t.Helper()
	base := NewBase(Type("stub"), "sess-1", ChannelRef{ID: 42}, UserRef{ID: 7, Username: "alice"},
		clock, NewSeededRand(1), nil, nil)
	rules := &stubRules{b: base}
	ends := 0
	sess := NewSession(base, rules, func(s *Session, snap *Snapshot) { ends++ })
	return sess, rules, &ends
}

func TestSessionLifecycleForwardOnly(t *testing.T) {
	clock := NewManualClock(time.Unix(1000, 0))
	sess, rules, ends := newTestSession(t, clock)

	assert.Equal(t, StatusCreated, sess.Base().Status())

	require.NoError(t, sess.Start())
	assert.Equal(t, StatusActive, sess.Base().Status())
	assert.Equal(t, 1, rules.begun)

	// Starting twice is a programmer error, not a silent restart.
	err := sess.Start()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidState))
	assert.Equal(t, 1, rules.begun)

	sess.Stop(EndStopped)
	assert.Equal(t, StatusEnded, sess.Base().Status())
	assert.Equal(t, []EndReason{EndStopped}, rules.endReasons)
	assert.Equal(t, 1, *ends)

	// End is idempotent: no second OnEnd, no second notification.
	sess.Stop(EndStopped)
	assert.Equal(t, []EndReason{EndStopped}, rules.endReasons)
	assert.Equal(t, 1, *ends)

	// Actions after the end are rejected, not errored.
	res := sess.Submit(7, "anything", nil)
	assert.False(t, res.Accepted)
	assert.Equal(t, ReasonGameOver, res.Reason)
}

func TestSessionEndFromAction(t *testing.T) {
	clock := NewManualClock(time.Unix(1000, 0))
	sess, rules, ends := newTestSession(t, clock)
	rules.onAction = func(userID int64, action string, payload map[string]any) Result {
		rules.b.EndGame(EndCompleted)
		// A second request in the same handler must not double-end.
		rules.b.EndGame(EndTimeout)
		return Accept("done")
	}
	require.NoError(t, sess.Start())

	res := sess.Submit(7, "finish", nil)
	assert.True(t, res.Accepted)
	assert.Equal(t, StatusEnded, sess.Base().Status())
	assert.Equal(t, []EndReason{EndCompleted}, rules.endReasons)
	assert.Equal(t, 1, *ends)
}

func TestCooldownWindow(t *testing.T) {
	clock := NewManualClock(time.Unix(1000, 0))
	sess, rules, _ := newTestSession(t, clock)
	rules.b.SetMinInterval(5 * time.Second)
	rules.onAction = func(userID int64, action string, payload map[string]any) Result {
		if remaining, cooling := rules.b.CheckCooldown(userID, "act"); cooling {
			_ = remaining
			return Reject(ReasonTooFast, "too fast")
		}
		rules.b.MarkAction(userID, "act")
		return Accept("ok")
	}
	require.NoError(t, sess.Start())

	assert.True(t, sess.Submit(7, "act", nil).Accepted)

	// Inside the window: rejected, and the rejection must not extend it.
	clock.Advance(4999 * time.Millisecond)
	res := sess.Submit(7, "act", nil)
	assert.False(t, res.Accepted)
	assert.Equal(t, ReasonTooFast, res.Reason)

	// 2ms later the original window has elapsed: accepted. If the rejection
	// above had refreshed the timestamp this would still be rejected.
	clock.Advance(2 * time.Millisecond)
	assert.True(t, sess.Submit(7, "act", nil).Accepted)

	// Other users are unaffected throughout.
	assert.True(t, sess.Submit(8, "act", nil).Accepted)
}

func TestRoundTimerFires(t *testing.T) {
	clock := NewManualClock(time.Unix(1000, 0))
	sess, rules, _ := newTestSession(t, clock)
	rules.onBegin = func() { rules.b.Schedule(10 * time.Second) }
	require.NoError(t, sess.Start())

	clock.Advance(9 * time.Second)
	assert.Empty(t, rules.timeouts)

	clock.Advance(1 * time.Second)
	assert.Equal(t, []int{0}, rules.timeouts)
}

func TestActionBeatsTimer(t *testing.T) {
	clock := NewManualClock(time.Unix(1000, 0))
	sess, rules, _ := newTestSession(t, clock)
	rules.onBegin = func() { rules.b.Schedule(10 * time.Second) }
	rules.onAction = func(userID int64, action string, payload map[string]any) Result {
		rules.b.NextRound()
		rules.b.Schedule(10 * time.Second)
		return Accept("resolved")
	}
	require.NoError(t, sess.Start())

	// The action resolves round 0 just before its timer would fire.
	clock.Advance(9 * time.Second)
	assert.True(t, sess.Submit(7, "act", nil).Accepted)

	// Old deadline passes: round 0's timer must not fire.
	clock.Advance(1 * time.Second)
	assert.Empty(t, rules.timeouts)

	// Round 1's own timer fires at its own deadline.
	clock.Advance(9 * time.Second)
	assert.Equal(t, []int{1}, rules.timeouts)
}

func TestTimerBeatsAction(t *testing.T) {
	clock := NewManualClock(time.Unix(1000, 0))
	sess, rules, ends := newTestSession(t, clock)
	rules.onBegin = func() { rules.b.Schedule(10 * time.Second) }
	rules.onTimeout = func(round int) { rules.b.EndGame(EndTimeout) }
	require.NoError(t, sess.Start())

	clock.Advance(10 * time.Second)
	assert.Equal(t, StatusEnded, sess.Base().Status())
	assert.Equal(t, 1, *ends)

	// The "simultaneous" action arrives after the timer won: rejected.
	res := sess.Submit(7, "act", nil)
	assert.False(t, res.Accepted)
	assert.Equal(t, ReasonGameOver, res.Reason)
	assert.Equal(t, []EndReason{EndTimeout}, rules.endReasons)
}

func TestStaleTimerAfterEndIsNoop(t *testing.T) {
	clock := NewManualClock(time.Unix(1000, 0))
	sess, rules, _ := newTestSession(t, clock)
	rules.onBegin = func() { rules.b.Schedule(10 * time.Second) }
	require.NoError(t, sess.Start())

	sess.Stop(EndStopped)
	clock.Advance(10 * time.Second)
	assert.Empty(t, rules.timeouts)
}

func TestPanicInRulesEndsSession(t *testing.T) {
	clock := NewManualClock(time.Unix(1000, 0))
	sess, rules, ends := newTestSession(t, clock)
	rules.onAction = func(userID int64, action string, payload map[string]any) Result {
		panic("boom")
	}
	require.NoError(t, sess.Start())

	res := sess.Submit(7, "act", nil)
	assert.False(t, res.Accepted)
	assert.Equal(t, ReasonInternal, res.Reason)
	assert.Equal(t, StatusEnded, sess.Base().Status())
	assert.Equal(t, []EndReason{EndInternal}, rules.endReasons)
	assert.Equal(t, 1, *ends)
}

func TestSnapshotCarriesRosterAndWinner(t *testing.T) {
	clock := NewManualClock(time.Unix(1000, 0))
	sess, rules, _ := newTestSession(t, clock)
	rules.onAction = func(userID int64, action string, payload map[string]any) Result {
		p := rules.b.AddPlayer(8, "bob")
		p.Score = 3
		rules.b.SetWinner(p)
		rules.b.EndGame(EndCompleted)
		return Accept("done")
	}
	require.NoError(t, sess.Start())
	sess.Submit(7, "act", nil)

	snap := sess.Snapshot()
	assert.Equal(t, StatusEnded, snap.Status)
	require.NotNil(t, snap.EndedAt)
	require.NotNil(t, snap.WinnerID)
	assert.Equal(t, int64(8), *snap.WinnerID)
	require.Len(t, snap.Players, 2)
	assert.Equal(t, "alice", snap.Players[0].Username)
	assert.True(t, snap.Players[1].Won)

	// Round-trip through the wire encoding.
	data, err := snap.Encode()
	require.NoError(t, err)
	decoded, err := DecodeSnapshot(data)
	require.NoError(t, err)
	assert.Equal(t, snap.SessionID, decoded.SessionID)
	assert.Equal(t, *snap.WinnerID, *decoded.WinnerID)
}

func TestSetWinnerFirstCallWins(t *testing.T) {
	base := NewBase(Type("stub"), "s", ChannelRef{ID: 1}, UserRef{ID: 1, Username: "a"},
		NewManualClock(time.Unix(0, 0)), NewSeededRand(1), nil, nil)
	b := base.AddPlayer(2, "b")
	base.SetWinner(base.Player(1))
	base.SetWinner(b)
	assert.Equal(t, int64(1), base.Winner().ID)
	assert.False(t, b.Won)
}

func TestAddBotAssignsNegativeIDs(t *testing.T) {
	base := NewBase(Type("stub"), "s", ChannelRef{ID: 1}, UserRef{ID: 100, Username: "a"},
		NewManualClock(time.Unix(0, 0)), NewSeededRand(1), nil, nil)
	bot1 := base.AddBot("bot one")
	bot2 := base.AddBot("bot two")
	assert.Negative(t, bot1.ID)
	assert.Negative(t, bot2.ID)
	assert.NotEqual(t, bot1.ID, bot2.ID)
}
