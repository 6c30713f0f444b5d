package trivia

// Question is one trivia entry. Answer indexes into Choices.
type Question struct {
	Text    string    `json:"text"`
	Choices [4]string `json:"choices"`
	Answer  int       `json:"answer"`
}

// DefaultQuestions is the built-in question pool.
var DefaultQuestions = []Question{
	{Text: "Which planet has the most moons?", Choices: [4]string{"Mars", "Saturn", "Neptune", "Venus"}, Answer: 1},
	{Text: "What is the chemical symbol for gold?", Choices: [4]string{"Gd", "Go", "Au", "Ag"}, Answer: 2},
	{Text: "Which ocean is the deepest?", Choices: [4]string{"Atlantic", "Indian", "Arctic", "Pacific"}, Answer: 3},
	{Text: "Who painted the Sistine Chapel ceiling?", Choices: [4]string{"Michelangelo", "Raphael", "Da Vinci", "Donatello"}, Answer: 0},
	{Text: "What is the largest land animal?", Choices: [4]string{"Hippopotamus", "African elephant", "White rhino", "Giraffe"}, Answer: 1},
	{Text: "Which country invented paper?", Choices: [4]string{"Egypt", "Greece", "China", "India"}, Answer: 2},
	{Text: "How many bones are in the adult human body?", Choices: [4]string{"186", "206", "226", "246"}, Answer: 1},
	{Text: "What gas do plants absorb from the atmosphere?", Choices: [4]string{"Oxygen", "Nitrogen", "Hydrogen", "Carbon dioxide"}, Answer: 3},
	{Text: "Which composer became deaf later in life?", Choices: [4]string{"Mozart", "Beethoven", "Bach", "Chopin"}, Answer: 1},
	{Text: "What is the capital of Canada?", Choices: [4]string{"Toronto", "Vancouver", "Ottawa", "Montreal"}, Answer: 2},
	{Text: "Which metal is liquid at room temperature?", Choices: [4]string{"Mercury", "Gallium", "Sodium", "Lead"}, Answer: 0},
	{Text: "How many players are on a volleyball court per team?", Choices: [4]string{"5", "6", "7", "8"}, Answer: 1},
	{Text: "What is the longest river in the world?", Choices: [4]string{"Amazon", "Yangtze", "Mississippi", "Nile"}, Answer: 3},
	{Text: "Which language has the most native speakers?", Choices: [4]string{"English", "Mandarin Chinese", "Hindi", "Spanish"}, Answer: 1},
	{Text: "What year did the Berlin Wall fall?", Choices: [4]string{"1987", "1989", "1991", "1993"}, Answer: 1},
	{Text: "Which element has atomic number 1?", Choices: [4]string{"Helium", "Oxygen", "Hydrogen", "Carbon"}, Answer: 2},
}
