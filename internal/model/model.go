package model

import (
	"context"
	"time"

	"github.com/pavelanni/dumpquiz/internal/qa"
)

// UserRole represents a user's access level.
type UserRole string

const (
	// UserRoleStudent can take the quiz.
	UserRoleStudent UserRole = "student"
	// UserRoleAdmin can also manage users and questions.
	UserRoleAdmin UserRole = "admin"
)

// User represents a system user.
type User struct {
	ID           int64
	Username     string
	DisplayName  string
	PasswordHash string
	Role         UserRole
	Active       bool
	CreatedAt    time.Time
}

// AuthSession represents an authentication session.
type AuthSession struct {
	ID        string
	UserID    int64
	CreatedAt time.Time
	ExpiresAt time.Time
}

type userCtxKey struct{}

// ContextWithUser stores a user in the request context.
func ContextWithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, userCtxKey{}, u)
}

// UserFromContext retrieves the authenticated user from context, or nil.
func UserFromContext(ctx context.Context) *User {
	u, _ := ctx.Value(userCtxKey{}).(*User)
	return u
}

type basePathCtxKey struct{}

// ContextWithBasePath stores the base path prefix in context.
func ContextWithBasePath(ctx context.Context, basePath string) context.Context {
	return context.WithValue(ctx, basePathCtxKey{}, basePath)
}

// BasePathFromContext retrieves the base path from context (empty string if not set).
func BasePathFromContext(ctx context.Context) string {
	bp, _ := ctx.Value(basePathCtxKey{}).(string)
	return bp
}

type csrfCtxKey struct{}

// ContextWithCSRFToken stores the CSRF token in context.
func ContextWithCSRFToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, csrfCtxKey{}, token)
}

// CSRFTokenFromContext retrieves the CSRF token from context.
func CSRFTokenFromContext(ctx context.Context) string {
	t, _ := ctx.Value(csrfCtxKey{}).(string)
	return t
}

// Question is a stored quiz question. Number is the raw id from the
// dump ("QUESTION NO: 4"); Position is its numeric part used for ordering.
type Question struct {
	ID          int64        `json:"id"`
	Number      string       `json:"number"`
	Position    int          `json:"position"`
	Text        string       `json:"text"`
	Options     []string     `json:"options"`
	Answer      qa.AnswerSet `json:"answer"`
	Explanation string       `json:"explanation"`
}

// Record converts the question back to its extraction form.
func (q Question) Record() qa.Record {
	return qa.Record{
		ID:          q.Number,
		Question:    q.Text,
		Options:     q.Options,
		Answer:      q.Answer,
		Explanation: q.Explanation,
	}
}

// QuestionFromRecord builds a question from a parsed record.
func QuestionFromRecord(r qa.Record) Question {
	pos, _ := qa.Number(r.ID)
	return Question{
		Number:      r.ID,
		Position:    pos,
		Text:        r.Question,
		Options:     r.Options,
		Answer:      r.Answer,
		Explanation: r.Explanation,
	}
}

// Attempt is one submitted answer.
type Attempt struct {
	ID         int64        `json:"id"`
	UserID     int64        `json:"user_id"`
	QuestionID int64        `json:"question_id"`
	Selected   qa.AnswerSet `json:"selected"`
	Correct    bool         `json:"correct"`
	At         time.Time    `json:"at"`
}

// QuizState is the per-user quiz progress: where the user is, what is
// currently selected on each question and the last submitted attempt.
type QuizState struct {
	UserID       int64
	CurrentIndex int
	Selections   map[int64]qa.AnswerSet
	LastAttempts map[int64]Attempt
}

// Selection returns the current selection for a question.
func (s *QuizState) Selection(questionID int64) qa.AnswerSet {
	return s.Selections[questionID]
}

// Toggle applies a click on an option letter. Multi-choice questions
// toggle the letter in the set; single-choice questions select the letter
// or clear it when it was already the selection.
func (s *QuizState) Toggle(q Question, letter string) qa.AnswerSet {
	current := s.Selections[q.ID]
	var next qa.AnswerSet
	if len(q.Answer) > 1 {
		removed := false
		for _, l := range current {
			if l == letter {
				removed = true
				continue
			}
			next = append(next, l)
		}
		if !removed {
			next = append(next, letter)
		}
	} else if !current.Contains(letter) {
		next = qa.AnswerSet{letter}
	}
	if s.Selections == nil {
		s.Selections = make(map[int64]qa.AnswerSet)
	}
	s.Selections[q.ID] = next
	return next
}

// QuizConfig holds runtime quiz parameters set via CLI flags.
type QuizConfig struct {
	Title          string
	BasePath       string // URL prefix for sub-path deployments (e.g. "/quiz")
	SecureCookies  bool   // Set Secure flag on cookies (disable for local dev)
	ExplainWithLLM bool   // Ask the LLM when a question has no explanation
}

// QuestionView is everything the quiz page needs for one question.
type QuestionView struct {
	Question    Question
	Index       int // 0-based position in the ordered question list
	Total       int
	Selected    qa.AnswerSet
	LastAttempt *Attempt
}

// HasPrev reports whether a previous question exists.
func (v QuestionView) HasPrev() bool { return v.Index > 0 }

// HasNext reports whether a next question exists.
func (v QuestionView) HasNext() bool { return v.Index < v.Total-1 }
