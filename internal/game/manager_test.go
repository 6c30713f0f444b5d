package game

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// memStore is an in-memory SnapshotStore for manager tests.
type memStore struct {
	mu    sync.Mutex
	saved []*Snapshot
}

func newMemStore() *memStore {
	return &memStore{}
}

func (s *memStore) SaveSnapshot(ctx context.Context, snap *Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = append(s.saved, snap)
	return nil
}

func (s *memStore) savedWith(sessionID string, status Status) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, snap := range s.saved {
		if snap.SessionID == sessionID && snap.Status == status {
			return true
		}
	}
	return false
}

func newTestManager(t *testing.T) (*Manager, *ManualClock) {
	t.Helper()
	registry := NewRegistry()
	require.NoError(t, registry.Register(Type("stub"), func(b *Base) Rules {
		return &stubRules{b: b}
	}))
	clock := NewManualClock(time.Unix(1000, 0))
	m := NewManager(registry, Deps{Clock: clock, Rand: NewSeededRand(1), Store: newMemStore()})
	return m, clock
}

func TestStartGameExclusivePerChannel(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()
	channel := ChannelRef{ID: 5}
	user := UserRef{ID: 1, Username: "alice"}

	_, err := m.StartGame(ctx, Type("stub"), channel, user, nil)
	require.NoError(t, err)

	_, err = m.StartGame(ctx, Type("stub"), channel, user, nil)
	assert.True(t, errors.Is(err, ErrAlreadyActive))

	// A different channel is independent.
	_, err = m.StartGame(ctx, Type("stub"), ChannelRef{ID: 6}, user, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, m.Count())

	// Ending the game frees the channel.
	require.NoError(t, m.Stop(ctx, channel.ID))
	assert.Equal(t, 1, m.Count())
	_, err = m.StartGame(ctx, Type("stub"), channel, user, nil)
	require.NoError(t, err)
}

func TestStartGameUnknownType(t *testing.T) {
	m, _ := newTestManager(t)
	_, err := m.StartGame(context.Background(), Type("nope"), ChannelRef{ID: 1}, UserRef{ID: 1}, nil)
	assert.True(t, errors.Is(err, ErrUnknownGameType))
	assert.Equal(t, 0, m.Count())
}

func TestSubmitAndStopWithoutSession(t *testing.T) {
	m, _ := newTestManager(t)
	_, err := m.Submit(context.Background(), 99, 1, "act", nil)
	assert.True(t, errors.Is(err, ErrNoActiveGame))
	assert.True(t, errors.Is(m.Stop(context.Background(), 99), ErrNoActiveGame))
}

func TestForceClearDropsWithoutEndLogic(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()
	sess, err := m.StartGame(ctx, Type("stub"), ChannelRef{ID: 5}, UserRef{ID: 1}, nil)
	require.NoError(t, err)

	assert.True(t, m.ForceClear(5))
	assert.Equal(t, 0, m.Count())
	assert.False(t, m.ForceClear(5))

	// The session never went through its end path.
	assert.False(t, sess.Ended())

	// The channel is free for a fresh game immediately.
	_, err = m.StartGame(ctx, Type("stub"), ChannelRef{ID: 5}, UserRef{ID: 1}, nil)
	require.NoError(t, err)
}

func TestShutdownStopsEverySession(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()
	var sessions []*Session
	for id := int64(1); id <= 4; id++ {
		s, err := m.StartGame(ctx, Type("stub"), ChannelRef{ID: id}, UserRef{ID: id}, nil)
		require.NoError(t, err)
		sessions = append(sessions, s)
	}

	m.Shutdown()
	assert.Equal(t, 0, m.Count())
	for _, s := range sessions {
		assert.True(t, s.Ended())
	}
}

// TestConcurrentStartProperty checks the registry's core invariant: under
// any number of racing start requests for one channel, exactly one wins and
// the rest observe ErrAlreadyActive.
func TestConcurrentStartProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		registry := NewRegistry()
		if err := registry.Register(Type("stub"), func(b *Base) Rules {
			return &stubRules{b: b}
		}); err != nil {
			t.Fatalf("register: %v", err)
		}
		m := NewManager(registry, Deps{
			Clock: NewManualClock(time.Unix(0, 0)),
			Rand:  NewSeededRand(1),
		})

		channelID := rapid.Int64Range(1, 1000).Draw(t, "channelID")
		starters := rapid.IntRange(2, 16).Draw(t, "starters")

		var wg sync.WaitGroup
		errs := make([]error, starters)
		for i := 0; i < starters; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, errs[i] = m.StartGame(context.Background(), Type("stub"),
					ChannelRef{ID: channelID}, UserRef{ID: int64(i + 1)}, nil)
			}(i)
		}
		wg.Wait()

		won := 0
		for _, err := range errs {
			switch {
			case err == nil:
				won++
			case errors.Is(err, ErrAlreadyActive):
			default:
				t.Fatalf("unexpected error: %v", err)
			}
		}
		if won != 1 {
			t.Fatalf("expected exactly one winner, got %d", won)
		}
		if m.Count() != 1 {
			t.Fatalf("expected exactly one live session, got %d", m.Count())
		}
	})
}

func TestPersistedSnapshotOnEnd(t *testing.T) {
	store := newMemStore()
	registry := NewRegistry()
	require.NoError(t, registry.Register(Type("stub"), func(b *Base) Rules {
		return &stubRules{b: b}
	}))
	m := NewManager(registry, Deps{
		Clock: NewManualClock(time.Unix(1000, 0)),
		Rand:  NewSeededRand(1),
		Store: store,
	})

	sess, err := m.StartGame(context.Background(), Type("stub"), ChannelRef{ID: 9}, UserRef{ID: 1, Username: "alice"}, nil)
	require.NoError(t, err)
	require.NoError(t, m.Stop(context.Background(), 9))

	// Persistence is asynchronous but bounded.
	require.Eventually(t, func() bool {
		return store.savedWith(sess.Base().ID(), StatusEnded)
	}, 2*time.Second, 10*time.Millisecond)
}
