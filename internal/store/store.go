package store

import (
	"database/sql"
	"fmt"
	"slices"

	"github.com/pavelanni/dumpquiz/internal/model"
	"github.com/pavelanni/dumpquiz/internal/qa"

	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// A single connection keeps ":memory:" databases shared and
	// serializes writers.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL UNIQUE,
		display_name TEXT NOT NULL DEFAULT '',
		password_hash TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'student',
		active BOOLEAN NOT NULL DEFAULT 1,
		created_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS auth_sessions (
		id TEXT PRIMARY KEY,
		user_id INTEGER NOT NULL,
		created_at DATETIME NOT NULL,
		expires_at DATETIME NOT NULL,
		FOREIGN KEY (user_id) REFERENCES users(id)
	);

	CREATE TABLE IF NOT EXISTS questions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		number TEXT NOT NULL UNIQUE,
		position INTEGER NOT NULL DEFAULT 0,
		text TEXT NOT NULL,
		option_a TEXT NOT NULL DEFAULT '',
		option_b TEXT NOT NULL DEFAULT '',
		option_c TEXT NOT NULL DEFAULT '',
		option_d TEXT NOT NULL DEFAULT '',
		option_e TEXT NOT NULL DEFAULT '',
		option_f TEXT NOT NULL DEFAULT '',
		answer TEXT NOT NULL DEFAULT '',
		explanation TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS quiz_state (
		user_id INTEGER PRIMARY KEY,
		current_index INTEGER NOT NULL DEFAULT 0,
		FOREIGN KEY (user_id) REFERENCES users(id)
	);

	CREATE TABLE IF NOT EXISTS selections (
		user_id INTEGER NOT NULL,
		question_id INTEGER NOT NULL,
		selected TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (user_id, question_id),
		FOREIGN KEY (user_id) REFERENCES users(id),
		FOREIGN KEY (question_id) REFERENCES questions(id)
	);

	CREATE TABLE IF NOT EXISTS attempts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		question_id INTEGER NOT NULL,
		selected TEXT NOT NULL DEFAULT '',
		correct BOOLEAN NOT NULL,
		at DATETIME NOT NULL,
		FOREIGN KEY (user_id) REFERENCES users(id),
		FOREIGN KEY (question_id) REFERENCES questions(id)
	);

	CREATE TABLE IF NOT EXISTS imported_files (
		path TEXT PRIMARY KEY,
		hash TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS metadata (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

const questionColumns = `id, number, position, text, option_a, option_b, option_c, option_d, option_e, option_f, answer, explanation`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanQuestion(row rowScanner) (model.Question, error) {
	var q model.Question
	var opts [qa.MaxOptions]string
	var answer string
	err := row.Scan(&q.ID, &q.Number, &q.Position, &q.Text,
		&opts[0], &opts[1], &opts[2], &opts[3], &opts[4], &opts[5],
		&answer, &q.Explanation)
	if err != nil {
		return q, err
	}
	for _, o := range opts {
		if o != "" {
			q.Options = append(q.Options, o)
		}
	}
	q.Answer = qa.ParseAnswer(answer)
	return q, nil
}

const upsertQuestionSQL = `INSERT INTO questions (number, position, text, option_a, option_b, option_c, option_d, option_e, option_f, answer, explanation)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(number) DO UPDATE SET
		   position = excluded.position, text = excluded.text,
		   option_a = excluded.option_a, option_b = excluded.option_b, option_c = excluded.option_c,
		   option_d = excluded.option_d, option_e = excluded.option_e, option_f = excluded.option_f,
		   answer = excluded.answer, explanation = excluded.explanation`

// questionArgs matches the placeholders of upsertQuestionSQL.
func questionArgs(q model.Question) []any {
	args := []any{q.Number, q.Position, q.Text}
	for i := 0; i < qa.MaxOptions; i++ {
		opt := ""
		if i < len(q.Options) {
			opt = q.Options[i]
		}
		args = append(args, opt)
	}
	return append(args, q.Answer.String(), q.Explanation)
}

// UpsertQuestion stores a question keyed by its number. A question with
// the same number is replaced; the row id is kept so progress survives.
func (s *Store) UpsertQuestion(q model.Question) (int64, error) {
	var id int64
	err := s.db.QueryRow(
		upsertQuestionSQL+` RETURNING id`, questionArgs(q)...,
	).Scan(&id)
	return id, err
}

// ImportTable upserts every record of a table in one transaction and
// returns how many were written.
func (s *Store) ImportTable(t *qa.Table) (int, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(upsertQuestionSQL)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	n := 0
	for _, r := range t.Records() {
		q := model.QuestionFromRecord(r)
		if _, err := stmt.Exec(questionArgs(q)...); err != nil {
			return n, fmt.Errorf("insert %q: %w", q.Number, err)
		}
		n++
	}
	return n, tx.Commit()
}

// ListQuestions returns all questions ordered by numeric id. Ids without
// a number sort last.
func (s *Store) ListQuestions() ([]model.Question, error) {
	rows, err := s.db.Query(`SELECT ` + questionColumns + ` FROM questions ORDER BY position, number`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var questions []model.Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	slices.SortStableFunc(questions, func(a, b model.Question) int {
		switch {
		case qa.Less(a.Number, b.Number):
			return -1
		case qa.Less(b.Number, a.Number):
			return 1
		}
		return 0
	})
	return questions, nil
}

// GetQuestion returns a question by ID.
func (s *Store) GetQuestion(id int64) (model.Question, error) {
	return scanQuestion(s.db.QueryRow(`SELECT `+questionColumns+` FROM questions WHERE id = ?`, id))
}

// SetExplanation replaces a question's explanation.
func (s *Store) SetExplanation(id int64, explanation string) error {
	_, err := s.db.Exec(`UPDATE questions SET explanation = ? WHERE id = ?`, explanation, id)
	return err
}

// QuestionCount returns the number of questions in the database.
func (s *Store) QuestionCount() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM questions`).Scan(&count)
	return count, err
}

// GetImportedFileHash returns the stored hash for a question file, or ""
// if it was never imported.
func (s *Store) GetImportedFileHash(path string) (string, error) {
	var hash string
	err := s.db.QueryRow(`SELECT hash FROM imported_files WHERE path = ?`, path).Scan(&hash)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return hash, err
}

// SetImportedFileHash records the hash of an imported question file.
func (s *Store) SetImportedFileHash(path, hash string) error {
	_, err := s.db.Exec(
		`INSERT INTO imported_files (path, hash) VALUES (?, ?)
		 ON CONFLICT(path) DO UPDATE SET hash = excluded.hash`,
		path, hash,
	)
	return err
}
