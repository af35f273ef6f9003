package store

import (
	"database/sql"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/pavelanni/dumpquiz/internal/model"
	"github.com/pavelanni/dumpquiz/internal/qa"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("newTestStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func insertTestQuestion(t *testing.T, s *Store, number string, answer ...string) model.Question {
	t.Helper()
	q := model.QuestionFromRecord(qa.Record{
		ID:          number,
		Question:    "text of " + number,
		Options:     []string{"A. first", "B. second", "C. third"},
		Answer:      qa.AnswerSet(answer),
		Explanation: "because",
	})
	id, err := s.UpsertQuestion(q)
	if err != nil {
		t.Fatalf("insertTestQuestion: %v", err)
	}
	q.ID = id
	return q
}

func insertTestUser(t *testing.T, s *Store, username string) int64 {
	t.Helper()
	id, err := s.CreateUser(model.User{
		Username:     username,
		DisplayName:  "User " + username,
		PasswordHash: "hash",
		Role:         model.UserRoleStudent,
		Active:       true,
	})
	if err != nil {
		t.Fatalf("insertTestUser: %v", err)
	}
	return id
}

func TestQuestionCRUD(t *testing.T) {
	s := newTestStore(t)

	count, err := s.QuestionCount()
	if err != nil {
		t.Fatalf("QuestionCount: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected 0 questions, got %d", count)
	}

	q := insertTestQuestion(t, s, "QUESTION NO: 10", "A", "C")
	got, err := s.GetQuestion(q.ID)
	if err != nil {
		t.Fatalf("GetQuestion: %v", err)
	}
	if got.Number != "QUESTION NO: 10" || got.Position != 10 {
		t.Errorf("unexpected number/position: %q %d", got.Number, got.Position)
	}
	if !slices.Equal(got.Options, q.Options) {
		t.Errorf("options = %v, want %v", got.Options, q.Options)
	}
	if !got.Answer.Equal(qa.AnswerSet{"A", "C"}) {
		t.Errorf("answer = %v", got.Answer)
	}

	_, err = s.GetQuestion(9999)
	if err != sql.ErrNoRows {
		t.Errorf("expected ErrNoRows, got %v", err)
	}

	// Upsert with the same number keeps the id and replaces content.
	q.Text = "updated"
	id, err := s.UpsertQuestion(q)
	if err != nil {
		t.Fatalf("UpsertQuestion: %v", err)
	}
	if id != q.ID {
		t.Errorf("upsert changed id from %d to %d", q.ID, id)
	}
	got, _ = s.GetQuestion(q.ID)
	if got.Text != "updated" {
		t.Errorf("text = %q, want updated", got.Text)
	}

	if err := s.SetExplanation(q.ID, "new explanation"); err != nil {
		t.Fatalf("SetExplanation: %v", err)
	}
	got, _ = s.GetQuestion(q.ID)
	if got.Explanation != "new explanation" {
		t.Errorf("explanation = %q", got.Explanation)
	}
}

func TestListQuestionsOrdered(t *testing.T) {
	s := newTestStore(t)
	insertTestQuestion(t, s, "QUESTION NO: 10", "A")
	insertTestQuestion(t, s, "QUESTION NO: 2", "B")
	insertTestQuestion(t, s, "QUESTION NO: 1", "C")

	list, err := s.ListQuestions()
	if err != nil {
		t.Fatalf("ListQuestions: %v", err)
	}
	var numbers []string
	for _, q := range list {
		numbers = append(numbers, q.Number)
	}
	want := []string{"QUESTION NO: 1", "QUESTION NO: 2", "QUESTION NO: 10"}
	if !slices.Equal(numbers, want) {
		t.Errorf("order = %v, want %v", numbers, want)
	}
}

func TestImportTable(t *testing.T) {
	s := newTestStore(t)
	tbl := qa.NewTable()
	tbl.Put(qa.Record{ID: "QUESTION NO: 1", Question: "one", Options: []string{"A. yes1"}, Answer: qa.AnswerSet{"A"}})
	tbl.Put(qa.Record{ID: "QUESTION NO: 2", Question: "two", Options: []string{"A. yes2", "B. no22"}, Answer: qa.AnswerSet{"B"}})

	n, err := s.ImportTable(tbl)
	if err != nil {
		t.Fatalf("ImportTable: %v", err)
	}
	if n != 2 {
		t.Errorf("imported %d, want 2", n)
	}

	// Importing again replaces rows instead of duplicating them.
	if _, err := s.ImportTable(tbl); err != nil {
		t.Fatalf("ImportTable again: %v", err)
	}
	count, _ := s.QuestionCount()
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}
}

func TestQuizState(t *testing.T) {
	s := newTestStore(t)
	uid := insertTestUser(t, s, "alice")
	q1 := insertTestQuestion(t, s, "QUESTION NO: 1", "A")
	q2 := insertTestQuestion(t, s, "QUESTION NO: 2", "A", "B")

	st, err := s.GetQuizState(uid)
	if err != nil {
		t.Fatalf("GetQuizState: %v", err)
	}
	if st.CurrentIndex != 0 || len(st.Selections) != 0 || len(st.LastAttempts) != 0 {
		t.Fatalf("expected empty state, got %+v", st)
	}

	if err := s.SetCurrentIndex(uid, 1); err != nil {
		t.Fatalf("SetCurrentIndex: %v", err)
	}
	if err := s.SetSelection(uid, q2.ID, qa.AnswerSet{"B", "A"}); err != nil {
		t.Fatalf("SetSelection: %v", err)
	}
	if _, err := s.RecordAttempt(model.Attempt{UserID: uid, QuestionID: q1.ID, Selected: qa.AnswerSet{"B"}, Correct: false}); err != nil {
		t.Fatalf("RecordAttempt: %v", err)
	}
	if _, err := s.RecordAttempt(model.Attempt{UserID: uid, QuestionID: q1.ID, Selected: qa.AnswerSet{"A"}, Correct: true}); err != nil {
		t.Fatalf("RecordAttempt: %v", err)
	}

	st, err = s.GetQuizState(uid)
	if err != nil {
		t.Fatalf("GetQuizState: %v", err)
	}
	if st.CurrentIndex != 1 {
		t.Errorf("CurrentIndex = %d, want 1", st.CurrentIndex)
	}
	if !st.Selection(q2.ID).Equal(qa.AnswerSet{"A", "B"}) {
		t.Errorf("selection = %v", st.Selection(q2.ID))
	}
	last, ok := st.LastAttempts[q1.ID]
	if !ok || !last.Correct {
		t.Errorf("expected latest attempt to be correct, got %+v", last)
	}

	all, err := s.ListAttempts(uid)
	if err != nil {
		t.Fatalf("ListAttempts: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("expected 2 attempts, got %d", len(all))
	}

	if err := s.ResetProgress(uid); err != nil {
		t.Fatalf("ResetProgress: %v", err)
	}
	st, _ = s.GetQuizState(uid)
	if st.CurrentIndex != 0 || len(st.Selections) != 0 || len(st.LastAttempts) != 0 {
		t.Errorf("expected reset state, got %+v", st)
	}
}

func TestUsers(t *testing.T) {
	s := newTestStore(t)

	u, err := s.GetUserByUsername("nobody")
	if err != nil || u != nil {
		t.Fatalf("expected nil user, got %v, %v", u, err)
	}

	id := insertTestUser(t, s, "bob")
	u, err = s.GetUserByID(id)
	if err != nil || u == nil {
		t.Fatalf("GetUserByID: %v, %v", u, err)
	}
	if u.Username != "bob" || !u.Active || u.Role != model.UserRoleStudent {
		t.Errorf("unexpected user %+v", u)
	}

	token, err := s.CreateAuthSession(id)
	if err != nil {
		t.Fatalf("CreateAuthSession: %v", err)
	}

	if err := s.ToggleUserActive(id); err != nil {
		t.Fatalf("ToggleUserActive: %v", err)
	}
	u, _ = s.GetUserByID(id)
	if u.Active {
		t.Error("expected user to be inactive")
	}
	sess, err := s.GetAuthSession(token)
	if err != nil || sess != nil {
		t.Errorf("expected session removed on deactivate, got %v, %v", sess, err)
	}

	users, err := s.ListUsers()
	if err != nil || len(users) != 1 {
		t.Errorf("ListUsers = %v, %v", users, err)
	}
	count, _ := s.UserCount()
	if count != 1 {
		t.Errorf("UserCount = %d", count)
	}
}

func TestAuthSessions(t *testing.T) {
	s := newTestStore(t)
	uid := insertTestUser(t, s, "carol")

	token, err := s.CreateAuthSession(uid)
	if err != nil {
		t.Fatalf("CreateAuthSession: %v", err)
	}
	sess, err := s.GetAuthSession(token)
	if err != nil || sess == nil || sess.UserID != uid {
		t.Fatalf("GetAuthSession = %+v, %v", sess, err)
	}

	// Force expiry.
	if _, err := s.db.Exec(`UPDATE auth_sessions SET expires_at = ? WHERE id = ?`, time.Now().Add(-time.Hour), token); err != nil {
		t.Fatal(err)
	}
	sess, err = s.GetAuthSession(token)
	if err != nil || sess != nil {
		t.Errorf("expected expired session to be nil, got %+v, %v", sess, err)
	}

	if err := s.DeleteAuthSession("unknown"); err != nil {
		t.Errorf("DeleteAuthSession: %v", err)
	}
	if _, err := s.CleanupExpiredSessions(); err != nil {
		t.Errorf("CleanupExpiredSessions: %v", err)
	}
}

func TestImportedFileHash(t *testing.T) {
	s := newTestStore(t)

	hash, err := s.GetImportedFileHash("/some/path.csv")
	if err != nil {
		t.Fatalf("GetImportedFileHash: %v", err)
	}
	if hash != "" {
		t.Errorf("expected empty hash, got %q", hash)
	}

	if err := s.SetImportedFileHash("/some/path.csv", "abc123"); err != nil {
		t.Fatalf("SetImportedFileHash: %v", err)
	}
	hash, _ = s.GetImportedFileHash("/some/path.csv")
	if hash != "abc123" {
		t.Errorf("expected 'abc123', got %q", hash)
	}

	if err := s.SetImportedFileHash("/some/path.csv", "def456"); err != nil {
		t.Fatalf("SetImportedFileHash update: %v", err)
	}
	hash, _ = s.GetImportedFileHash("/some/path.csv")
	if hash != "def456" {
		t.Errorf("expected 'def456', got %q", hash)
	}
}

func TestMetadata(t *testing.T) {
	s := newTestStore(t)
	v, err := s.GetMetadata(MetaTitle)
	if err != nil || v != "" {
		t.Fatalf("GetMetadata missing = %q, %v", v, err)
	}
	if err := s.SetMetadata(MetaTitle, "App Builder"); err != nil {
		t.Fatal(err)
	}
	if err := s.SetMetadata(MetaTitle, "App Builder Quiz"); err != nil {
		t.Fatal(err)
	}
	v, _ = s.GetMetadata(MetaTitle)
	if v != "App Builder Quiz" {
		t.Errorf("title = %q", v)
	}
}

func TestExportResults(t *testing.T) {
	s := newTestStore(t)
	alice := insertTestUser(t, s, "alice")
	insertTestUser(t, s, "idle")
	q1 := insertTestQuestion(t, s, "QUESTION NO: 1", "A")
	q2 := insertTestQuestion(t, s, "QUESTION NO: 2", "B")

	for _, a := range []model.Attempt{
		{UserID: alice, QuestionID: q1.ID, Selected: qa.AnswerSet{"B"}, Correct: false},
		{UserID: alice, QuestionID: q1.ID, Selected: qa.AnswerSet{"A"}, Correct: true},
		{UserID: alice, QuestionID: q2.ID, Selected: qa.AnswerSet{"A"}, Correct: false},
	} {
		if _, err := s.RecordAttempt(a); err != nil {
			t.Fatal(err)
		}
	}

	results, err := s.ExportResults()
	if err != nil {
		t.Fatalf("ExportResults: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result (idle user skipped), got %d", len(results))
	}
	r := results[0]
	if r.Username != "alice" || r.Answered != 2 || r.Correct != 1 || r.Score != 50 {
		t.Errorf("unexpected result %+v", r)
	}
	if len(r.Attempts) != 3 || r.Attempts[0].Number != "QUESTION NO: 1" {
		t.Errorf("attempts = %+v", r.Attempts)
	}
}

func TestListQuestionsNonNumericLast(t *testing.T) {
	s := newTestStore(t)
	insertTestQuestion(t, s, "BONUS", "A")
	insertTestQuestion(t, s, "QUESTION NO: 3", "A")

	list, err := s.ListQuestions()
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].Number != "QUESTION NO: 3" || list[1].Number != "BONUS" {
		t.Errorf("order = %+v, want numbered first", list)
	}
}
