package battle

// Skill describes one battle move. Power is flat damage, Buff is a defensive
// bonus held until the user's next turn, Heal restores HP, Cooldown is how
// many of the user's own turns the skill rests after use.
type Skill struct {
	Key      string
	Name     string
	Emoji    string
	Power    int
	Buff     int
	Heal     int
	Cooldown int
}

// Skills is the fixed move set, in keyboard order.
var Skills = []Skill{
	{Key: "strike", Name: "Strike", Emoji: "⚔️", Power: 15},
	{Key: "quick", Name: "Quick Jab", Emoji: "🗡", Power: 8},
	{Key: "heavy", Name: "Heavy Blow", Emoji: "🔨", Power: 25, Cooldown: 1},
	{Key: "guard", Name: "Guard", Emoji: "🛡", Buff: 5},
	{Key: "block", Name: "Block", Emoji: "🧱", Buff: 8, Cooldown: 1},
	{Key: "heal", Name: "Heal", Emoji: "💊", Heal: 20, Cooldown: 2},
}

// SkillByKey looks a skill up by its action key.
func SkillByKey(key string) (Skill, bool) {
	for _, s := range Skills {
		if s.Key == key {
			return s, true
		}
	}
	return Skill{}, false
}

// SkillKeys returns the keys of the full move set.
func SkillKeys() []string {
	keys := make([]string, len(Skills))
	for i, s := range Skills {
		keys[i] = s.Key
	}
	return keys
}
