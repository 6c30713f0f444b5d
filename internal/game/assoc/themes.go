package assoc

// Entry is one secret word with its association hints, ordered from vague
// to obvious.
type Entry struct {
	Word  string   `json:"word"`
	Hints []string `json:"hints"`
}

// Theme groups entries under a hidden topic. Players never see the theme
// name directly; it only shapes which words come up.
type Theme struct {
	Name    string  `json:"name"`
	Entries []Entry `json:"entries"`
}

// DefaultThemes is the built-in theme pool.
var DefaultThemes = []Theme{
	{
		Name: "ocean",
		Entries: []Entry{
			{Word: "lighthouse", Hints: []string{"it stands alone", "sailors trust it", "its light sweeps the dark"}},
			{Word: "anchor", Hints: []string{"heavy by design", "it keeps you in place", "chained to the bow"}},
			{Word: "coral", Hints: []string{"alive but looks like stone", "reefs are made of it", "bleaches when the water warms"}},
			{Word: "tide", Hints: []string{"the moon pulls it", "it comes in and goes out", "fishermen read its tables"}},
		},
	},
	{
		Name: "space",
		Entries: []Entry{
			{Word: "comet", Hints: []string{"a dirty snowball", "it grows a tail near the sun", "Halley's is the famous one"}},
			{Word: "orbit", Hints: []string{"falling forever", "a closed path", "satellites live in one"}},
			{Word: "eclipse", Hints: []string{"one body hides another", "day turns briefly to night", "never look at it bare-eyed"}},
			{Word: "nebula", Hints: []string{"a cloud between stars", "stars are born inside it", "the Orion one is a nursery"}},
		},
	},
	{
		Name: "kitchen",
		Entries: []Entry{
			{Word: "whisk", Hints: []string{"wire loops on a handle", "it puts air into things", "egg whites fear it"}},
			{Word: "sourdough", Hints: []string{"it needs a starter", "wild yeast does the work", "tangy bread"}},
			{Word: "simmer", Hints: []string{"just below the boil", "small bubbles at the edge", "soups like it slow"}},
			{Word: "mortar", Hints: []string{"it comes with a pestle", "stone bowl", "spices get crushed in it"}},
		},
	},
	{
		Name: "music",
		Entries: []Entry{
			{Word: "metronome", Hints: []string{"it never rushes", "tick, tock, in tempo", "pianists practice with it"}},
			{Word: "chorus", Hints: []string{"everyone knows this part", "it comes back after each verse", "the catchiest bit"}},
			{Word: "vinyl", Hints: []string{"it spins at 33 or 45", "grooves carry the sound", "collectors love the crackle"}},
			{Word: "encore", Hints: []string{"the crowd demands it", "one more song", "after the set ends"}},
		},
	},
}

// DefaultTransitions is the hidden-state transition table over DefaultThemes:
// row i holds the sampling weights for the theme following theme i. Themes
// mostly persist, with a drift toward their neighbours.
var DefaultTransitions = [][]float64{
	{0.5, 0.2, 0.2, 0.1},
	{0.2, 0.5, 0.1, 0.2},
	{0.2, 0.1, 0.5, 0.2},
	{0.1, 0.2, 0.2, 0.5},
}
