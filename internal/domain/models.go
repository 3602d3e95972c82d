package domain

// Difficulty of a trivia question, in the provider's vocabulary.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
	// DifficultyAll is only valid as a quiz filter, never on a question.
	DifficultyAll Difficulty = "all"
)

// MaxPoints returns the maximum awardable base points for the difficulty.
func (d Difficulty) MaxPoints() int {
	switch d {
	case DifficultyEasy:
		return 700
	case DifficultyMedium:
		return 850
	case DifficultyHard:
		return 1000
	}
	return 0
}

// QuizOptions configures a quiz session. Immutable once the session starts.
type QuizOptions struct {
	Difficulty    Difficulty `yaml:"difficulty" json:"difficulty"`
	CategoryID    int        `yaml:"category" json:"categoryId"` // 0 = all categories
	QuestionCount int        `yaml:"questions" json:"questionCount"`
}

// Question is a normalized multiple-choice question. Alternatives keep
// their shuffled display order; CorrectAlternative is always one of them.
type Question struct {
	Text               string     `json:"text"`
	Alternatives       []string   `json:"alternatives"`
	CorrectAlternative string     `json:"correctAlternative"`
	Difficulty         Difficulty `json:"difficulty"`
}

// LeaderboardEntry is one submitted play. Entries are append-only; every
// finished game adds a new row, history is never overwritten.
type LeaderboardEntry struct {
	Username   string `json:"username"`
	Score      int    `json:"score"`
	CategoryID int    `json:"category"`
}

// SubmitResult is the outcome of posting a score to the leaderboard.
// Position is the 1-based rank within the category's top 10, or -1 when
// the score did not reach the board.
type SubmitResult struct {
	Position         int  `json:"leaderboardPosition"`
	IsPersonalRecord bool `json:"isPersonalRecord"`
}
