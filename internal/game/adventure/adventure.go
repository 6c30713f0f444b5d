// Package adventure implements the branching party adventure: the channel
// votes on each fork and the majority steers the story.
package adventure

import (
	"fmt"
	"time"

	"telegram-minigame-bot/internal/game"
)

const (
	// DefaultVoteWindow is how long each fork stays open for votes.
	DefaultVoteWindow = 30 * time.Second

	// MaxNodes guards against a malformed story graph looping forever.
	MaxNodes = 50

	// ActionVote carries the index of a visible path in its payload.
	ActionVote = "vote"
)

// Config holds adventure tunables supplied at registration time.
type Config struct {
	Story      *Story
	VoteWindow time.Duration
}

// State is the serializable game payload.
type State struct {
	NodeID    string        `json:"node_id"`
	Path      []string      `json:"path"`
	Inventory []string      `json:"inventory,omitempty"`
	Votes     map[int64]int `json:"votes"`
	Visited   int           `json:"visited"`
}

// Game is the concrete rules value bound to one session.
type Game struct {
	b   *game.Base
	cfg Config

	state State
}

// New returns the session factory for adventures.
func New(cfg Config) game.Factory {
	if cfg.Story == nil {
		cfg.Story = DefaultStory()
	}
	if cfg.VoteWindow <= 0 {
		cfg.VoteWindow = DefaultVoteWindow
	}
	return func(b *game.Base) game.Rules {
		return &Game{b: b, cfg: cfg}
	}
}

// Type reports the game type tag.
func (g *Game) Type() game.Type { return game.TypeAdventure }

// Init accepts no options; the story is fixed per deployment.
func (g *Game) Init(opts game.Options) error {
	g.state.NodeID = g.cfg.Story.Start
	g.state.Votes = make(map[int64]int)
	return nil
}

// Begin renders the opening scene and opens the first vote.
func (g *Game) Begin() {
	g.b.Render(game.View{Text: fmt.Sprintf("📜 %s — an adventure for the whole channel. Majority picks the path!", g.cfg.Story.Title)})
	g.renderNode()
}

// OnAction records a vote for one of the visible paths. Votes are revotable
// until the window closes; anyone who votes joins the party.
func (g *Game) OnAction(userID int64, action string, payload map[string]any) game.Result {
	if action != ActionVote {
		return game.Reject(game.ReasonInvalidChoice, "cast a vote to play")
	}
	idx, ok := game.Options(payload).Int("choice")
	if !ok {
		return game.Reject(game.ReasonInvalidChoice, "pick one of the offered paths")
	}
	visible := g.visiblePaths()
	if idx < 0 || idx >= len(visible) {
		return game.Reject(game.ReasonInvalidChoice, "that path isn't on offer")
	}
	if g.b.Player(userID) == nil {
		username, _ := payload["username"].(string)
		g.b.AddPlayer(userID, username)
	}
	g.state.Votes[userID] = idx
	return game.AcceptData(fmt.Sprintf("vote recorded: %s", visible[idx].Label), map[string]any{"choice": idx})
}

// OnTimeout closes the vote window and resolves the current tally.
func (g *Game) OnTimeout(round int) {
	g.resolve()
}

// resolve tallies votes over the visible paths: majority wins, ties go to
// the lowest path index, an empty tally takes the first path.
func (g *Game) resolve() {
	visible := g.visiblePaths()
	counts := make([]int, len(visible))
	for _, idx := range g.state.Votes {
		if idx >= 0 && idx < len(visible) {
			counts[idx]++
		}
	}
	winner := 0
	for i, c := range counts {
		if c > counts[winner] {
			winner = i
		}
	}
	chosen := visible[winner]

	g.b.Render(game.View{Text: fmt.Sprintf("🗳 The party goes: %s (%d vote(s))", chosen.Label, counts[winner])})
	if chosen.GrantsItem != "" {
		g.state.Inventory = append(g.state.Inventory, chosen.GrantsItem)
		g.b.Render(game.View{Text: fmt.Sprintf("🎒 The party obtained: %s", chosen.GrantsItem)})
	}
	if chosen.ScoreDelta != 0 {
		g.payout(chosen.ScoreDelta)
	}

	g.state.NodeID = chosen.Next
	g.state.Path = append(g.state.Path, chosen.Next)
	g.state.Visited++
	g.state.Votes = make(map[int64]int)
	g.b.NextRound()

	node := g.cfg.Story.Node(g.state.NodeID)
	if node == nil || g.state.Visited >= MaxNodes {
		log := g.b.Log()
		log.Error().Str("node_id", g.state.NodeID).Msg("story graph is broken, aborting adventure")
		g.b.EndGame(game.EndInternal)
		return
	}
	if len(node.Paths) == 0 {
		g.b.Render(game.View{Text: node.Text})
		g.payout(node.Reward)
		g.b.EndGame(game.EndCompleted)
		return
	}
	g.renderNode()
}

// renderNode shows the current scene with its visible paths and opens the
// vote window.
func (g *Game) renderNode() {
	node := g.cfg.Story.Node(g.state.NodeID)
	choices := make([]game.Choice, 0, len(node.Paths))
	for i, p := range g.visiblePaths() {
		choices = append(choices, game.Choice{Key: fmt.Sprintf("%d", i), Label: p.Label})
	}
	g.b.Render(game.View{Text: node.Text, Choices: choices})
	g.b.Schedule(g.cfg.VoteWindow)
}

// visiblePaths filters the current node's paths by the party inventory.
func (g *Game) visiblePaths() []Path {
	node := g.cfg.Story.Node(g.state.NodeID)
	if node == nil {
		return nil
	}
	var out []Path
	for _, p := range node.Paths {
		if p.RequiresItem != "" && !g.hasItem(p.RequiresItem) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func (g *Game) hasItem(item string) bool {
	for _, it := range g.state.Inventory {
		if it == item {
			return true
		}
	}
	return false
}

// payout applies a score delta to every party member.
func (g *Game) payout(delta int) {
	for _, p := range g.b.Players() {
		p.Score += int64(delta)
	}
}

// OnEnd renders the epilogue with final scores.
func (g *Game) OnEnd(reason game.EndReason) {
	if reason != game.EndCompleted {
		return
	}
	text := "📜 The adventure ends.\n"
	for _, p := range g.b.Players() {
		text += fmt.Sprintf("• %s: %d\n", p.Username, p.Score)
	}
	g.b.Render(game.View{Text: text})
}

// State returns the serializable payload.
func (g *Game) State() any { return &g.state }
