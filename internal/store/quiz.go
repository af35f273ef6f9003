package store

import (
	"database/sql"
	"time"

	"github.com/pavelanni/dumpquiz/internal/model"
	"github.com/pavelanni/dumpquiz/internal/qa"
)

// GetQuizState loads a user's progress. A user who never opened the quiz
// gets an empty state at index 0.
func (s *Store) GetQuizState(userID int64) (*model.QuizState, error) {
	st := &model.QuizState{
		UserID:       userID,
		Selections:   make(map[int64]qa.AnswerSet),
		LastAttempts: make(map[int64]model.Attempt),
	}

	err := s.db.QueryRow(`SELECT current_index FROM quiz_state WHERE user_id = ?`, userID).Scan(&st.CurrentIndex)
	if err != nil && err != sql.ErrNoRows {
		return nil, err
	}

	rows, err := s.db.Query(`SELECT question_id, selected FROM selections WHERE user_id = ?`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var qid int64
		var selected string
		if err := rows.Scan(&qid, &selected); err != nil {
			return nil, err
		}
		st.Selections[qid] = qa.ParseAnswer(selected)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	attempts, err := s.lastAttempts(userID)
	if err != nil {
		return nil, err
	}
	for _, a := range attempts {
		st.LastAttempts[a.QuestionID] = a
	}
	return st, nil
}

// SetCurrentIndex stores the question the user is looking at.
func (s *Store) SetCurrentIndex(userID int64, index int) error {
	_, err := s.db.Exec(
		`INSERT INTO quiz_state (user_id, current_index) VALUES (?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET current_index = excluded.current_index`,
		userID, index,
	)
	return err
}

// SetSelection stores the currently selected letters for a question.
func (s *Store) SetSelection(userID, questionID int64, selected qa.AnswerSet) error {
	_, err := s.db.Exec(
		`INSERT INTO selections (user_id, question_id, selected) VALUES (?, ?, ?)
		 ON CONFLICT(user_id, question_id) DO UPDATE SET selected = excluded.selected`,
		userID, questionID, selected.String(),
	)
	return err
}

// RecordAttempt stores a submitted answer.
func (s *Store) RecordAttempt(a model.Attempt) (int64, error) {
	if a.At.IsZero() {
		a.At = time.Now()
	}
	res, err := s.db.Exec(
		`INSERT INTO attempts (user_id, question_id, selected, correct, at) VALUES (?, ?, ?, ?, ?)`,
		a.UserID, a.QuestionID, a.Selected.Sorted().String(), a.Correct, a.At,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ListAttempts returns all attempts of a user, oldest first.
func (s *Store) ListAttempts(userID int64) ([]model.Attempt, error) {
	return s.queryAttempts(
		`SELECT id, user_id, question_id, selected, correct, at FROM attempts WHERE user_id = ? ORDER BY id`, userID,
	)
}

// lastAttempts returns the newest attempt per question for a user.
func (s *Store) lastAttempts(userID int64) ([]model.Attempt, error) {
	return s.queryAttempts(
		`SELECT id, user_id, question_id, selected, correct, at FROM attempts
		 WHERE id IN (SELECT MAX(id) FROM attempts WHERE user_id = ? GROUP BY question_id)
		 ORDER BY id`, userID,
	)
}

func (s *Store) queryAttempts(query string, args ...any) ([]model.Attempt, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var attempts []model.Attempt
	for rows.Next() {
		var a model.Attempt
		var selected string
		if err := rows.Scan(&a.ID, &a.UserID, &a.QuestionID, &selected, &a.Correct, &a.At); err != nil {
			return nil, err
		}
		a.Selected = qa.ParseAnswer(selected)
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}

// ResetProgress clears a user's position, selections and attempts.
func (s *Store) ResetProgress(userID int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, q := range []string{
		`DELETE FROM quiz_state WHERE user_id = ?`,
		`DELETE FROM selections WHERE user_id = ?`,
		`DELETE FROM attempts WHERE user_id = ?`,
	} {
		if _, err := tx.Exec(q, userID); err != nil {
			return err
		}
	}
	return tx.Commit()
}
