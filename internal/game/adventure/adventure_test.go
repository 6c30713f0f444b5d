package adventure

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"telegram-minigame-bot/internal/game"
)

// forkStory is a two-path story with one good and one bad ending.
func forkStory() *Story {
	return &Story{
		Title: "Fork",
		Start: "fork",
		Nodes: map[string]*Node{
			"fork": {ID: "fork", Text: "left or right?", Paths: []Path{
				{Label: "Left", Next: "good"},
				{Label: "Right", Next: "bad"},
			}},
			"good": {ID: "good", Text: "riches", Reward: 100},
			"bad":  {ID: "bad", Text: "a pit", Reward: -20},
		},
	}
}

func newAdventure(t *testing.T, story *Story) (*game.Session, *Game, *game.ManualClock) {
	t.Helper()
	clock := game.NewManualClock(time.Unix(1000, 0))
	base := game.NewBase(game.TypeAdventure, "adv-1", game.ChannelRef{ID: 1},
		game.UserRef{ID: 10, Username: "alice"}, clock, game.NewSeededRand(1), nil, nil)
	rules := New(Config{Story: story})(base).(*Game)
	require.NoError(t, rules.Init(nil))
	sess := game.NewSession(base, rules, nil)
	require.NoError(t, sess.Start())
	return sess, rules, clock
}

func vote(sess *game.Session, userID int64, choice int, username string) game.Result {
	return sess.Submit(userID, ActionVote, map[string]any{"choice": choice, "username": username})
}

func TestAdventureMajoritySteers(t *testing.T) {
	sess, _, clock := newAdventure(t, forkStory())

	require.True(t, vote(sess, 10, 0, "alice").Accepted)
	require.True(t, vote(sess, 20, 1, "bob").Accepted)
	require.True(t, vote(sess, 30, 1, "carol").Accepted)

	clock.Advance(DefaultVoteWindow)
	assert.True(t, sess.Ended())
	for _, p := range sess.Base().Players() {
		assert.Equal(t, int64(-20), p.Score)
	}
}

func TestAdventureTieTakesLowestIndex(t *testing.T) {
	sess, _, clock := newAdventure(t, forkStory())

	require.True(t, vote(sess, 10, 1, "alice").Accepted)
	require.True(t, vote(sess, 20, 0, "bob").Accepted)

	clock.Advance(DefaultVoteWindow)
	assert.True(t, sess.Ended())
	assert.Equal(t, int64(100), sess.Base().Player(10).Score)
}

func TestAdventureNoVotesTakesFirstPath(t *testing.T) {
	sess, rules, clock := newAdventure(t, forkStory())

	clock.Advance(DefaultVoteWindow)
	assert.True(t, sess.Ended())
	assert.Equal(t, []string{"good"}, rules.state.Path)
}

func TestAdventureRevoteReplacesEarlierVote(t *testing.T) {
	sess, rules, clock := newAdventure(t, forkStory())

	require.True(t, vote(sess, 10, 0, "alice").Accepted)
	require.True(t, vote(sess, 10, 1, "alice").Accepted)
	assert.Len(t, rules.state.Votes, 1)

	clock.Advance(DefaultVoteWindow)
	assert.True(t, sess.Ended())
	assert.Equal(t, []string{"bad"}, rules.state.Path)
}

func TestAdventureRejectsBadVotes(t *testing.T) {
	sess, _, _ := newAdventure(t, forkStory())

	res := sess.Submit(10, "shout", nil)
	assert.Equal(t, game.ReasonInvalidChoice, res.Reason)

	res = vote(sess, 10, 5, "alice")
	assert.Equal(t, game.ReasonInvalidChoice, res.Reason)

	res = sess.Submit(10, ActionVote, map[string]any{})
	assert.Equal(t, game.ReasonInvalidChoice, res.Reason)
}

// TestAdventureItemGatesPath hides a branch until the party holds its item,
// and checks vote indexes are over the visible list only.
func TestAdventureItemGatesPath(t *testing.T) {
	story := &Story{
		Title: "Locked Door",
		Start: "room",
		Nodes: map[string]*Node{
			"room": {ID: "room", Text: "a chest and a door", Paths: []Path{
				{Label: "Open the chest", Next: "room2", GrantsItem: "key"},
				{Label: "Leave", Next: "out"},
			}},
			"room2": {ID: "room2", Text: "the door again", Paths: []Path{
				{Label: "Unlock the door", Next: "prize", RequiresItem: "key"},
				{Label: "Unlock the vault", Next: "prize", RequiresItem: "crowbar"},
				{Label: "Leave", Next: "out"},
			}},
			"prize": {ID: "prize", Text: "treasure", Reward: 50},
			"out":   {ID: "out", Text: "outside", Reward: 0},
		},
	}
	sess, rules, clock := newAdventure(t, story)

	require.True(t, vote(sess, 10, 0, "alice").Accepted)
	clock.Advance(DefaultVoteWindow)
	assert.Equal(t, []string{"key"}, rules.state.Inventory)

	// The crowbar branch stays hidden, so index 1 is "Leave" and index 2 is
	// out of range.
	visible := rules.visiblePaths()
	require.Len(t, visible, 2)
	assert.Equal(t, "Leave", visible[1].Label)
	res := vote(sess, 10, 2, "alice")
	assert.Equal(t, game.ReasonInvalidChoice, res.Reason)

	require.True(t, vote(sess, 10, 0, "alice").Accepted)
	clock.Advance(DefaultVoteWindow)
	assert.True(t, sess.Ended())
	assert.Equal(t, int64(50), sess.Base().Player(10).Score)
}

// TestAdventureDefaultStoryVaultRun walks the built-in story down its best
// line: torch, draft, vault.
func TestAdventureDefaultStoryVaultRun(t *testing.T) {
	sess, rules, clock := newAdventure(t, nil)

	steps := []int{0, 0, 0} // gate -> hall -> hall_lit -> vault
	for _, choice := range steps {
		require.True(t, vote(sess, 10, choice, "alice").Accepted)
		clock.Advance(DefaultVoteWindow)
	}

	assert.True(t, sess.Ended())
	assert.Equal(t, []string{"hall", "hall_lit", "vault"}, rules.state.Path)
	assert.Equal(t, []string{"torch"}, rules.state.Inventory)
	// 5 for the torch, 100 for the vault.
	assert.Equal(t, int64(105), sess.Base().Player(10).Score)
}

func TestAdventureBrokenGraphAborts(t *testing.T) {
	story := &Story{
		Title: "Broken",
		Start: "a",
		Nodes: map[string]*Node{
			"a": {ID: "a", Text: "?", Paths: []Path{{Label: "Go", Next: "missing"}}},
		},
	}
	sess, _, clock := newAdventure(t, story)

	clock.Advance(DefaultVoteWindow)
	assert.True(t, sess.Ended())
	assert.Nil(t, sess.Base().Winner())
}
