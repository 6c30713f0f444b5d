package trivia

import (
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"telegram-minigame-bot/internal/game"
)

var testQuestions = []Question{
	{Text: "Q1", Choices: [4]string{"a", "b", "c", "d"}, Answer: 0},
	{Text: "Q2", Choices: [4]string{"a", "b", "c", "d"}, Answer: 1},
	{Text: "Q3", Choices: [4]string{"a", "b", "c", "d"}, Answer: 2},
	{Text: "Q4", Choices: [4]string{"a", "b", "c", "d"}, Answer: 3},
}

func newQuiz(t *testing.T, opts game.Options) (*game.Session, *Quiz, *game.ManualClock) {
	t.Helper()
	clock := game.NewManualClock(time.Unix(1000, 0))
	base := game.NewBase(game.TypeTrivia, "quiz-1", game.ChannelRef{ID: 1},
		game.UserRef{ID: 10, Username: "alice"}, clock, game.NewSeededRand(1), nil, nil)
	rules := New(Config{Questions: testQuestions})(base).(*Quiz)
	require.NoError(t, rules.Init(opts))
	sess := game.NewSession(base, rules, nil)
	require.NoError(t, sess.Start())
	return sess, rules, clock
}

// answer submits the given choice for the current question.
func answer(sess *game.Session, userID int64, choice int, username string) game.Result {
	return sess.Submit(userID, ActionAnswer, map[string]any{"choice": choice, "username": username})
}

func TestQuizInitOptions(t *testing.T) {
	tests := []struct {
		name    string
		opts    game.Options
		wantErr bool
	}{
		{"defaults", nil, false},
		{"buzz mode", game.Options{"mode": "buzz"}, false},
		{"zero rounds", game.Options{"rounds": 0}, true},
		{"too many rounds", game.Options{"rounds": 16}, true},
		{"unknown mode", game.Options{"mode": "lightning"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base := game.NewBase(game.TypeTrivia, "q", game.ChannelRef{ID: 1},
				game.UserRef{ID: 10, Username: "alice"}, game.NewManualClock(time.Unix(0, 0)),
				game.NewSeededRand(1), nil, nil)
			err := New(Config{Questions: testQuestions})(base).Init(tt.opts)
			if tt.wantErr {
				assert.ErrorIs(t, err, game.ErrBadOption)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestQuizShuffleIsPermutation(t *testing.T) {
	_, rules, _ := newQuiz(t, nil)
	order := append([]int(nil), rules.state.Order...)
	sort.Ints(order)
	assert.Equal(t, []int{0, 1, 2, 3}, order)
}

// TestQuizSpeedBonus scores a fast correct answer at 150 and a slow one at
// the base 100.
func TestQuizSpeedBonus(t *testing.T) {
	sess, rules, clock := newQuiz(t, game.Options{"rounds": 2})

	res := answer(sess, 10, rules.question().Answer, "alice")
	require.True(t, res.Accepted)
	assert.Equal(t, int64(BasePoints+SpeedBonus), res.Data["points"])

	// Past the bonus window on the next question.
	clock.Advance(DefaultBonusWindow + time.Second)
	res = answer(sess, 10, rules.question().Answer, "alice")
	require.True(t, res.Accepted)
	assert.Equal(t, int64(BasePoints), res.Data["points"])

	assert.True(t, sess.Ended())
	require.NotNil(t, sess.Base().Winner())
	assert.Equal(t, int64(10), sess.Base().Winner().ID)
	assert.Equal(t, int64(250), sess.Base().Players()[0].Score)
}

func TestQuizWrongAnswerCosts(t *testing.T) {
	sess, rules, _ := newQuiz(t, game.Options{"rounds": 1})

	wrong := (rules.question().Answer + 1) % 4
	res := answer(sess, 10, wrong, "alice")
	require.True(t, res.Accepted)
	assert.Equal(t, "wrong", res.Message)

	assert.True(t, sess.Ended())
	assert.Equal(t, int64(-WrongPenalty), sess.Base().Players()[0].Score)
	// A negative score never wins.
	assert.Nil(t, sess.Base().Winner())
}

func TestQuizRejectsBadAnswers(t *testing.T) {
	sess, rules, _ := newQuiz(t, game.Options{"mode": "buzz"})

	res := sess.Submit(10, "shout", nil)
	assert.Equal(t, game.ReasonInvalidChoice, res.Reason)

	res = answer(sess, 10, 7, "alice")
	assert.Equal(t, game.ReasonInvalidChoice, res.Reason)

	// A wrong buzz leaves the round open but locks the player out of it.
	wrong := (rules.question().Answer + 1) % 4
	require.True(t, answer(sess, 10, wrong, "alice").Accepted)
	res = answer(sess, 10, rules.question().Answer, "alice")
	assert.Equal(t, game.ReasonAlreadyAnswered, res.Reason)
}

// TestQuizBuzzFirstCorrectTakesRound: in buzz mode a correct answer closes
// the round immediately, wrong buzzes only cost their senders.
func TestQuizBuzzFirstCorrectTakesRound(t *testing.T) {
	sess, rules, _ := newQuiz(t, game.Options{"mode": "buzz", "rounds": 1})

	wrong := (rules.question().Answer + 1) % 4
	require.True(t, answer(sess, 10, wrong, "alice").Accepted)
	require.True(t, answer(sess, 20, rules.question().Answer, "bob").Accepted)

	assert.True(t, sess.Ended())
	require.NotNil(t, sess.Base().Winner())
	assert.Equal(t, int64(20), sess.Base().Winner().ID)
	assert.Equal(t, int64(-WrongPenalty), sess.Base().Player(10).Score)
	assert.Equal(t, int64(BasePoints+SpeedBonus), sess.Base().Player(20).Score)
}

func TestQuizRoundDeadlineMovesOn(t *testing.T) {
	sess, rules, clock := newQuiz(t, game.Options{"rounds": 2})

	clock.Advance(DefaultRoundTime)
	assert.False(t, sess.Ended())
	assert.Equal(t, 1, rules.state.RoundNum)

	clock.Advance(DefaultRoundTime)
	assert.True(t, sess.Ended())
	assert.Nil(t, sess.Base().Winner())
}

// TestQuizBotAnswersThenRoundStaysOpen drives the two-stage timer: the bot
// answers on its delay, the round stays open for humans until the deadline.
func TestQuizBotAnswersThenRoundStaysOpen(t *testing.T) {
	sess, rules, clock := newQuiz(t, game.Options{"rounds": 1, "bot": true})
	require.True(t, rules.state.BotPending)

	clock.Advance(botMaxDelay)
	assert.False(t, rules.state.BotPending)
	assert.False(t, sess.Ended())

	bot := sess.Base().Players()[1]
	require.True(t, bot.IsBot)
	assert.NotZero(t, bot.Score)

	// The human's answer completes the roster and closes the quiz.
	require.True(t, answer(sess, 10, rules.question().Answer, "alice").Accepted)
	assert.True(t, sess.Ended())
	assert.GreaterOrEqual(t, sess.Base().Players()[0].Score, int64(BasePoints))
}
