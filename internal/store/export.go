package store

import (
	"fmt"

	"github.com/pavelanni/dumpquiz/internal/model"
)

// ExportResults builds per-user attempt summaries for every user that
// submitted at least one answer.
func (s *Store) ExportResults() ([]model.UserResult, error) {
	users, err := s.ListUsers()
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	questions, err := s.ListQuestions()
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	byID := make(map[int64]model.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	var results []model.UserResult
	for _, u := range users {
		attempts, err := s.ListAttempts(u.ID)
		if err != nil {
			return nil, fmt.Errorf("list attempts for %s: %w", u.Username, err)
		}
		if len(attempts) == 0 {
			continue
		}

		res := model.UserResult{
			Username:    u.Username,
			DisplayName: u.DisplayName,
		}
		// The newest attempt per question decides the score.
		latest := make(map[int64]bool)
		for _, a := range attempts {
			q := byID[a.QuestionID]
			res.Attempts = append(res.Attempts, model.AttemptResult{
				Number:   q.Number,
				Selected: a.Selected.String(),
				Answer:   q.Answer.String(),
				Correct:  a.Correct,
				At:       a.At,
			})
			latest[a.QuestionID] = a.Correct
		}
		res.Answered = len(latest)
		for _, ok := range latest {
			if ok {
				res.Correct++
			}
		}
		if len(questions) > 0 {
			res.Score = float64(res.Correct) / float64(len(questions)) * 100
		}
		results = append(results, res)
	}
	return results, nil
}
