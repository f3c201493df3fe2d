package domain

type SummaryType string

const (
	SummaryBrief        SummaryType = "BRIEF"
	SummaryDetailed     SummaryType = "DETAILED"
	SummaryBulletPoints SummaryType = "BULLET_POINTS"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "EASY"
	DifficultyMedium Difficulty = "MEDIUM"
	DifficultyHard   Difficulty = "HARD"
)

// QuizQuestion is one parsed multiple-choice question.
// Parsing keeps partial questions, so Options or CorrectAnswer may be empty.
type QuizQuestion struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer,omitempty"`
	Explanation   string   `json:"explanation,omitempty"`
}
