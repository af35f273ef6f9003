package model

import "time"

// QuizExport is the top-level JSON structure for attempt export.
type QuizExport struct {
	Title        string       `json:"title"`
	GeneratedAt  time.Time    `json:"generated_at"`
	NumQuestions int          `json:"num_questions"`
	Results      []UserResult `json:"results"`
}

// UserResult holds one user's attempts.
type UserResult struct {
	Username    string          `json:"username"`
	DisplayName string          `json:"display_name"`
	Answered    int             `json:"answered"`
	Correct     int             `json:"correct"`
	Score       float64         `json:"score"`
	Attempts    []AttemptResult `json:"attempts"`
}

// AttemptResult is a single exported attempt.
type AttemptResult struct {
	Number   string    `json:"number"`
	Selected string    `json:"selected"`
	Answer   string    `json:"answer"`
	Correct  bool      `json:"correct"`
	At       time.Time `json:"at"`
}
