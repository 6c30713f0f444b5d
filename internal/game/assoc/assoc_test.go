package assoc

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"telegram-minigame-bot/internal/game"
)

var testThemes = []Theme{
	{Name: "fruit", Entries: []Entry{
		{Word: "apple", Hints: []string{"red", "orchard", "pie"}},
		{Word: "banana", Hints: []string{"yellow", "bunch", "peel"}},
	}},
	{Name: "tools", Entries: []Entry{
		{Word: "hammer", Hints: []string{"heavy", "nails", "thor"}},
		{Word: "saw", Hints: []string{"teeth", "planks", "back and forth"}},
	}},
}

// flipTransitions forces the theme to alternate every round.
var flipTransitions = [][]float64{
	{0, 1},
	{1, 0},
}

func newAssoc(t *testing.T, opts game.Options) (*game.Session, *Game, *game.ManualClock) {
	t.Helper()
	clock := game.NewManualClock(time.Unix(1000, 0))
	base := game.NewBase(game.TypeAssoc, "assoc-1", game.ChannelRef{ID: 1},
		game.UserRef{ID: 10, Username: "alice"}, clock, game.NewSeededRand(1), nil, nil)
	rules := New(Config{Themes: testThemes, Transitions: flipTransitions})(base).(*Game)
	require.NoError(t, rules.Init(opts))
	sess := game.NewSession(base, rules, nil)
	require.NoError(t, sess.Start())
	return sess, rules, clock
}

func guess(sess *game.Session, userID int64, word, username string) game.Result {
	return sess.Submit(userID, ActionGuess, map[string]any{"word": word, "username": username})
}

func TestAssocInitOptions(t *testing.T) {
	tests := []struct {
		name    string
		opts    game.Options
		wantErr bool
	}{
		{"defaults", nil, false},
		{"explicit rounds", game.Options{"rounds": 3}, false},
		{"zero rounds", game.Options{"rounds": 0}, true},
		{"too many rounds", game.Options{"rounds": 11}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base := game.NewBase(game.TypeAssoc, "a", game.ChannelRef{ID: 1},
				game.UserRef{ID: 10, Username: "alice"}, game.NewManualClock(time.Unix(0, 0)),
				game.NewSeededRand(1), nil, nil)
			err := New(Config{Themes: testThemes, Transitions: flipTransitions})(base).Init(tt.opts)
			if tt.wantErr {
				assert.ErrorIs(t, err, game.ErrBadOption)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// TestAssocEarlierGuessScoresMore compares a first-hint guess against a
// last-hint guess across two rounds.
func TestAssocEarlierGuessScoresMore(t *testing.T) {
	sess, rules, clock := newAssoc(t, game.Options{"rounds": 2})

	// One hint shown; three hints total.
	res := guess(sess, 10, rules.entry().Word, "alice")
	require.True(t, res.Accepted)
	assert.Equal(t, int64(3*PointsPerHint), res.Data["points"])

	// Sit through the remaining hints of the next word.
	clock.Advance(DefaultHintInterval)
	clock.Advance(DefaultHintInterval)
	require.Equal(t, 3, rules.state.HintsShown)

	res = guess(sess, 10, rules.entry().Word, "alice")
	require.True(t, res.Accepted)
	assert.Equal(t, int64(PointsPerHint), res.Data["points"])

	assert.True(t, sess.Ended())
	require.NotNil(t, sess.Base().Winner())
	assert.Equal(t, int64(4*PointsPerHint), sess.Base().Winner().Score)
}

func TestAssocWrongAndEmptyGuesses(t *testing.T) {
	sess, rules, _ := newAssoc(t, game.Options{"rounds": 1})

	res := guess(sess, 10, "definitely not it", "alice")
	require.True(t, res.Accepted)
	assert.Equal(t, false, res.Data["correct"])

	res = guess(sess, 10, "   ", "alice")
	assert.Equal(t, game.ReasonInvalidChoice, res.Reason)

	// Guessing is case- and whitespace-insensitive.
	word := "  " + rules.entry().Word + " "
	require.True(t, guess(sess, 10, word, "alice").Accepted)
	assert.True(t, sess.Ended())
}

// TestAssocThemeFlipsEveryRound drives the certain transition table: after
// each solved word the hidden theme is the other one.
func TestAssocThemeFlipsEveryRound(t *testing.T) {
	sess, rules, _ := newAssoc(t, game.Options{"rounds": 3})

	first := rules.state.ThemeIdx
	require.True(t, guess(sess, 10, rules.entry().Word, "alice").Accepted)
	assert.Equal(t, 1-first, rules.state.ThemeIdx)

	require.True(t, guess(sess, 10, rules.entry().Word, "alice").Accepted)
	assert.Equal(t, first, rules.state.ThemeIdx)
	assert.False(t, sess.Ended())
}

func TestAssocHintsRunOutAndRoundForfeits(t *testing.T) {
	sess, rules, clock := newAssoc(t, game.Options{"rounds": 1})

	// Two more hints, then one grace interval with nothing left to reveal.
	clock.Advance(DefaultHintInterval)
	clock.Advance(DefaultHintInterval)
	require.Equal(t, 3, rules.state.HintsShown)
	assert.False(t, sess.Ended())

	clock.Advance(DefaultHintInterval)
	assert.True(t, sess.Ended())
	assert.Nil(t, sess.Base().Winner())
}

// TestAssocWordsNeverRepeat exhausts the pool: four entries, four rounds,
// four distinct words.
func TestAssocWordsNeverRepeat(t *testing.T) {
	sess, rules, _ := newAssoc(t, game.Options{"rounds": 4})

	words := make(map[string]bool)
	for i := 0; i < 4; i++ {
		word := rules.entry().Word
		assert.False(t, words[word])
		words[word] = true
		require.True(t, guess(sess, 10, word, "alice").Accepted)
	}
	assert.True(t, sess.Ended())
	assert.Len(t, words, 4)
}
