package adventure

// Path describes one selectable branch out of a node. RequiresItem hides the
// branch until the party inventory holds the item; GrantsItem adds to the
// party inventory when the branch is taken.
type Path struct {
	Label        string `json:"label"`
	Next         string `json:"next"`
	RequiresItem string `json:"requires_item,omitempty"`
	GrantsItem   string `json:"grants_item,omitempty"`
	ScoreDelta   int    `json:"score_delta,omitempty"`
}

// Node is one scene of the story. A node without paths is an ending; its
// Reward (possibly negative) is paid to every party member.
type Node struct {
	ID     string `json:"id"`
	Text   string `json:"text"`
	Paths  []Path `json:"paths,omitempty"`
	Reward int    `json:"reward,omitempty"`
}

// Story is a complete node graph with a designated entry node.
type Story struct {
	Title string
	Start string
	Nodes map[string]*Node
}

// Node returns the node with the given id, or nil.
func (s *Story) Node(id string) *Node { return s.Nodes[id] }

// DefaultStory is the built-in dungeon crawl.
func DefaultStory() *Story {
	nodes := []*Node{
		{
			ID:   "gate",
			Text: "🏰 The party stands before a ruined keep. A rusted gate hangs open; beside it, a collapsed wall gapes into darkness.",
			Paths: []Path{
				{Label: "Enter through the gate", Next: "hall"},
				{Label: "Climb through the wall", Next: "cellar"},
			},
		},
		{
			ID:   "hall",
			Text: "🕯 The great hall. A torch still burns in a sconce, and stairs descend into a pitch-black passage.",
			Paths: []Path{
				{Label: "Take the torch", Next: "hall_lit", GrantsItem: "torch", ScoreDelta: 5},
				{Label: "Descend in the dark", Next: "fall"},
			},
		},
		{
			ID:   "hall_lit",
			Text: "🔥 Torch in hand, the stairs are no longer a threat. Below, the passage splits: a draft from the left, dripping water to the right.",
			Paths: []Path{
				{Label: "Follow the draft", Next: "vault", RequiresItem: "torch"},
				{Label: "Follow the water", Next: "cellar"},
			},
		},
		{
			ID:   "cellar",
			Text: "🍷 A flooded cellar. Something glitters under the water, but the ripples are not from your boots.",
			Paths: []Path{
				{Label: "Dive for the glitter", Next: "eel", ScoreDelta: -5},
				{Label: "Wade out quietly", Next: "courtyard"},
			},
		},
		{
			ID:   "courtyard",
			Text: "🌿 An overgrown courtyard under open sky. The keep's treasury door stands here, locked but half-rotten.",
			Paths: []Path{
				{Label: "Force the treasury door", Next: "treasury"},
				{Label: "Leave while you can", Next: "escape"},
			},
		},
		{
			ID:     "vault",
			Text:   "👑 The draft leads to the hidden vault. Coin, plate and a crown nobody will miss. The party walks out rich.",
			Reward: 100,
		},
		{
			ID:     "treasury",
			Text:   "💰 The door splinters. The treasury holds a respectable hoard — and an angry ghost, but you outrun it.",
			Reward: 50,
		},
		{
			ID:     "escape",
			Text:   "🚪 The party slips away with their lives and a good story. Not every expedition pays in gold.",
			Reward: 10,
		},
		{
			ID:     "fall",
			Text:   "🕳 Ten steps down, the eleventh is missing. The party limps home bruised and empty-handed.",
			Reward: -20,
		},
		{
			ID:     "eel",
			Text:   "⚡ The glitter was bait. The eel was not small. The party flees the cellar soaked and poorer.",
			Reward: -10,
		},
	}
	m := make(map[string]*Node, len(nodes))
	for _, n := range nodes {
		m[n.ID] = n
	}
	return &Story{Title: "The Ruined Keep", Start: "gate", Nodes: m}
}
