package wordchain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"telegram-minigame-bot/internal/game"
)

func newChain(t *testing.T) (*game.Session, *Chain, *game.ManualClock) {
	t.Helper()
	clock := game.NewManualClock(time.Unix(1000, 0))
	base := game.NewBase(game.TypeWordChain, "chain-1", game.ChannelRef{ID: 1},
		game.UserRef{ID: 10, Username: "alice"}, clock, game.NewSeededRand(1), nil, nil)
	rules := New(Config{})(base).(*Chain)
	require.NoError(t, rules.Init(nil))
	sess := game.NewSession(base, rules, nil)
	require.NoError(t, sess.Start())
	return sess, rules, clock
}

func join(sess *game.Session, userID int64, username string) game.Result {
	return sess.Submit(userID, ActionJoin, map[string]any{"username": username})
}

func say(sess *game.Session, userID int64, word string) game.Result {
	return sess.Submit(userID, ActionWord, map[string]any{"word": word})
}

func TestChainLobbyNeedsTwoPlayers(t *testing.T) {
	sess, _, clock := newChain(t)

	clock.Advance(DefaultJoinWindow)
	assert.True(t, sess.Ended())
	assert.Nil(t, sess.Base().Winner())
}

func TestChainLobbyRules(t *testing.T) {
	sess, rules, clock := newChain(t)

	require.True(t, join(sess, 20, "bob").Accepted)
	res := join(sess, 20, "bob")
	assert.Equal(t, game.ReasonAlreadyAnswered, res.Reason)

	// Words don't count until the lobby closes.
	res = say(sess, 10, "apple")
	assert.Equal(t, game.ReasonRoundClosed, res.Reason)

	clock.Advance(DefaultJoinWindow)
	require.Equal(t, phaseRunning, rules.state.Phase)

	// And nobody joins a running chain.
	res = join(sess, 30, "carol")
	assert.Equal(t, game.ReasonRoundClosed, res.Reason)
}

func TestChainWordValidation(t *testing.T) {
	sess, rules, clock := newChain(t)
	require.True(t, join(sess, 20, "bob").Accepted)
	clock.Advance(DefaultJoinWindow)

	tests := []struct {
		name string
		word string
	}{
		{"too short", "a"},
		{"not alphabetic", "h4x"},
		{"spaces inside", "two words"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := say(sess, 10, tt.word)
			assert.Equal(t, game.ReasonInvalidChoice, res.Reason)
		})
	}

	res := say(sess, 10, "  Apple ")
	require.True(t, res.Accepted)
	assert.Equal(t, "e", res.Data["next_letter"])

	// The next word must pick up where the previous left off, and repeats
	// are dead.
	res = say(sess, 20, "tiger")
	assert.Equal(t, game.ReasonInvalidChoice, res.Reason)
	res = say(sess, 20, "apple")
	assert.Equal(t, game.ReasonInvalidChoice, res.Reason)

	require.True(t, say(sess, 20, "elephant").Accepted)
	assert.Equal(t, "t", rules.state.NextLetter)
	assert.Equal(t, 2, rules.state.ChainLen)
}

func TestChainTurnAndMembership(t *testing.T) {
	sess, _, clock := newChain(t)
	require.True(t, join(sess, 20, "bob").Accepted)
	clock.Advance(DefaultJoinWindow)

	res := say(sess, 20, "apple")
	assert.Equal(t, game.ReasonNotYourTurn, res.Reason)

	res = say(sess, 30, "apple")
	assert.Equal(t, game.ReasonNotInGame, res.Reason)
}

// TestChainEliminationToLastStanding runs a three-player chain where idle
// turns knock players out until one remains.
func TestChainEliminationToLastStanding(t *testing.T) {
	sess, rules, clock := newChain(t)
	require.True(t, join(sess, 20, "bob").Accepted)
	require.True(t, join(sess, 30, "carol").Accepted)
	clock.Advance(DefaultJoinWindow)

	require.True(t, say(sess, 10, "apple").Accepted)

	// bob lets the turn lapse and is out; the turn skips to carol.
	clock.Advance(DefaultTurnTimeout)
	assert.True(t, rules.state.Eliminated[int64(20)])
	assert.False(t, sess.Ended())

	require.True(t, say(sess, 30, "elephant").Accepted)

	// alice idles too; carol is the last one standing.
	clock.Advance(DefaultTurnTimeout)
	assert.True(t, sess.Ended())
	require.NotNil(t, sess.Base().Winner())
	assert.Equal(t, int64(30), sess.Base().Winner().ID)
	assert.Equal(t, 2, rules.state.ChainLen)
}
