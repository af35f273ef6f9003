package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/pavelanni/dumpquiz/internal/handler/views"
	appI18n "github.com/pavelanni/dumpquiz/internal/i18n"
	"github.com/pavelanni/dumpquiz/internal/llm"
	"github.com/pavelanni/dumpquiz/internal/model"
	"github.com/pavelanni/dumpquiz/internal/store"
)

// Handler holds shared dependencies for HTTP handlers.
type Handler struct {
	store  *store.Store
	llm    *llm.Client
	config model.QuizConfig
}

// New creates a new Handler. l may be nil when no LLM is configured.
func New(s *store.Store, l *llm.Client, cfg model.QuizConfig) (*Handler, error) {
	if s == nil {
		return nil, errors.New("store is required")
	}
	return &Handler{store: s, llm: l, config: cfg}, nil
}

// Routes registers all HTTP routes.
func (h *Handler) Routes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.csrfMiddleware)
		r.Get("/login", h.handleLoginPage)
		r.Post("/login", h.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(h.requireAuth)
			r.Post("/logout", h.handleLogout)
			r.Get("/", h.handleIndex)
			r.Post("/quiz/reset", h.handleReset)
			r.Get("/quiz/{index}", h.handleQuestion)
			r.Post("/quiz/{index}/select/{letter}", h.handleSelect)
			r.Post("/quiz/{index}/submit", h.handleSubmit)
			r.Get("/quiz/{index}/explain", h.handleExplain)

			r.Route("/admin", func(r chi.Router) {
				r.Use(requireRole(model.UserRoleAdmin))
				r.Get("/users", h.handleAdminUsersPage)
				r.Post("/users", h.handleCreateUser)
				r.Post("/users/{userID}/toggle", h.handleToggleUserActive)
				r.Get("/questions", h.handleAdminQuestionsPage)
				r.Post("/questions", h.handleUploadQuestions)
			})
		})
	})
}

// BasePathMiddleware stores the configured base path in the request context
// so views can build links.
func (h *Handler) BasePathMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := model.ContextWithBasePath(r.Context(), h.config.BasePath)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) path(p string) string {
	return h.config.BasePath + p
}

func (h *Handler) cookiePath() string {
	if h.config.BasePath != "" {
		return h.config.BasePath + "/"
	}
	return "/"
}

func (h *Handler) quizPath(index int) string {
	return h.path(fmt.Sprintf("/quiz/%d", index+1))
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	user := model.UserFromContext(r.Context())
	count, err := h.store.QuestionCount()
	if err != nil {
		h.serverError(w, "count questions", err)
		return
	}
	if count == 0 {
		h.renderNoQuestions(w, r)
		return
	}
	state, err := h.store.GetQuizState(user.ID)
	if err != nil {
		h.serverError(w, "load quiz state", err)
		return
	}
	idx := state.CurrentIndex
	if idx < 0 || idx >= count {
		idx = 0
	}
	http.Redirect(w, r, h.quizPath(idx), http.StatusSeeOther)
}

// quizContext is what every /quiz/{index} handler needs.
type quizContext struct {
	user      *model.User
	questions []model.Question
	index     int
	question  model.Question
	state     *model.QuizState
}

// loadQuiz resolves the {index} URL parameter against the ordered question
// list. It writes the response and returns false when the request cannot
// continue.
func (h *Handler) loadQuiz(w http.ResponseWriter, r *http.Request) (*quizContext, bool) {
	user := model.UserFromContext(r.Context())
	questions, err := h.store.ListQuestions()
	if err != nil {
		h.serverError(w, "list questions", err)
		return nil, false
	}
	if len(questions) == 0 {
		h.renderNoQuestions(w, r)
		return nil, false
	}

	n, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || n < 1 || n > len(questions) {
		http.Error(w, "question not found", http.StatusNotFound)
		return nil, false
	}

	state, err := h.store.GetQuizState(user.ID)
	if err != nil {
		h.serverError(w, "load quiz state", err)
		return nil, false
	}
	return &quizContext{
		user:      user,
		questions: questions,
		index:     n - 1,
		question:  questions[n-1],
		state:     state,
	}, true
}

func (h *Handler) handleQuestion(w http.ResponseWriter, r *http.Request) {
	qc, ok := h.loadQuiz(w, r)
	if !ok {
		return
	}
	if qc.state.CurrentIndex != qc.index {
		if err := h.store.SetCurrentIndex(qc.user.ID, qc.index); err != nil {
			h.serverError(w, "save current index", err)
			return
		}
	}

	view := model.QuestionView{
		Question: qc.question,
		Index:    qc.index,
		Total:    len(qc.questions),
		Selected: qc.state.Selection(qc.question.ID),
	}
	if a, ok := qc.state.LastAttempts[qc.question.ID]; ok {
		view.LastAttempt = &a
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := views.QuizPage(view, h.config.Title, h.canExplain()).Render(r.Context(), w); err != nil {
		slog.Error("render error", "error", err)
	}
}

func (h *Handler) handleSelect(w http.ResponseWriter, r *http.Request) {
	qc, ok := h.loadQuiz(w, r)
	if !ok {
		return
	}
	letter := strings.ToUpper(chi.URLParam(r, "letter"))
	valid := false
	for _, l := range qc.question.Record().Letters() {
		if l == letter {
			valid = true
			break
		}
	}
	if !valid {
		http.Error(w, "unknown option", http.StatusBadRequest)
		return
	}

	selected := qc.state.Toggle(qc.question, letter)
	if err := h.store.SetSelection(qc.user.ID, qc.question.ID, selected); err != nil {
		h.serverError(w, "save selection", err)
		return
	}
	http.Redirect(w, r, h.quizPath(qc.index), http.StatusSeeOther)
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	qc, ok := h.loadQuiz(w, r)
	if !ok {
		return
	}
	selected := qc.state.Selection(qc.question.ID)
	if len(selected) == 0 {
		http.Redirect(w, r, h.quizPath(qc.index), http.StatusSeeOther)
		return
	}

	correct := qc.question.Record().Check(selected)
	if _, err := h.store.RecordAttempt(model.Attempt{
		UserID:     qc.user.ID,
		QuestionID: qc.question.ID,
		Selected:   selected,
		Correct:    correct,
	}); err != nil {
		h.serverError(w, "record attempt", err)
		return
	}
	slog.Info("answer submitted",
		"user", qc.user.Username,
		"question", qc.question.Number,
		"selected", selected.Sorted().String(),
		"correct", correct,
	)
	http.Redirect(w, r, h.quizPath(qc.index), http.StatusSeeOther)
}

func (h *Handler) handleExplain(w http.ResponseWriter, r *http.Request) {
	qc, ok := h.loadQuiz(w, r)
	if !ok {
		return
	}
	q := qc.question
	text := q.Explanation
	if text == "" && h.canExplain() {
		generated, err := h.llm.Explain(r.Context(), q.Record())
		if err != nil {
			slog.Error("LLM explanation failed", "question", q.Number, "error", err)
			http.Error(w, "explanation failed", http.StatusBadGateway)
			return
		}
		if err := h.store.SetExplanation(q.ID, generated); err != nil {
			slog.Warn("failed to cache explanation", "question", q.Number, "error", err)
		}
		text = generated
	}

	if text == "" {
		text = appI18n.T(r.Context(), "ExplanationUnavailable")
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := views.ExplanationFragment(text).Render(r.Context(), w); err != nil {
		slog.Error("render error", "error", err)
	}
}

func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	user := model.UserFromContext(r.Context())
	if err := h.store.ResetProgress(user.ID); err != nil {
		h.serverError(w, "reset progress", err)
		return
	}
	slog.Info("quiz progress reset", "user", user.Username)
	http.Redirect(w, r, h.quizPath(0), http.StatusSeeOther)
}

func (h *Handler) canExplain() bool {
	return h.config.ExplainWithLLM && h.llm != nil
}

func (h *Handler) renderNoQuestions(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := views.NoQuestionsPage(h.config.Title).Render(r.Context(), w); err != nil {
		slog.Error("render error", "error", err)
	}
}

func (h *Handler) serverError(w http.ResponseWriter, msg string, err error) {
	slog.Error(msg, "error", err)
	http.Error(w, "internal error", http.StatusInternalServerError)
}
