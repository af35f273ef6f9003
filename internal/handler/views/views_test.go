package views

import (
	"context"
	"strings"
	"testing"

	"github.com/a-h/templ"

	appI18n "github.com/pavelanni/dumpquiz/internal/i18n"
	"github.com/pavelanni/dumpquiz/internal/model"
	"github.com/pavelanni/dumpquiz/internal/qa"
)

func render(t *testing.T, ctx context.Context, c templ.Component) string {
	t.Helper()
	if err := appI18n.Init("en"); err != nil {
		t.Fatalf("init i18n: %v", err)
	}
	ctx = appI18n.WithLocalizer(ctx, appI18n.NewLocalizer("en"))
	var sb strings.Builder
	if err := c.Render(ctx, &sb); err != nil {
		t.Fatalf("render: %v", err)
	}
	return sb.String()
}

func quizView() model.QuestionView {
	return model.QuestionView{
		Question: model.Question{
			ID:      1,
			Number:  "QUESTION NO: 1",
			Text:    "Which tag runs code?",
			Options: []string{"A. <script>alert(1)</script>", "B. <p>", "C. <b>"},
			Answer:  qa.AnswerSet{"A"},
		},
		Index: 0,
		Total: 2,
	}
}

func TestQuizPage(t *testing.T) {
	tests := []struct {
		name     string
		selected qa.AnswerSet
		attempt  *model.Attempt
		want     []string
		notWant  []string
	}{
		{
			name: "nothing selected",
			want: []string{
				`<button type="submit" disabled>Submit</button>`,
				`&lt;script&gt;alert(1)&lt;/script&gt;`,
				`<button disabled>&larr; Previous</button>`,
				`href="/app/quiz/2"`,
				`action="/app/quiz/1/select/A"`,
			},
			notWant: []string{"<script>alert(1)", `class="selected"`},
		},
		{
			name:     "option selected",
			selected: qa.AnswerSet{"B"},
			want: []string{
				`<button type="submit">Submit</button>`,
				`class="selected" aria-pressed="true">B. &lt;p&gt;</button>`,
				`aria-pressed="false">C. &lt;b&gt;</button>`,
			},
		},
		{
			name:     "wrong attempt",
			selected: qa.AnswerSet{"C"},
			attempt:  &model.Attempt{Correct: false},
			want:     []string{`<p class="feedback wrong">Wrong. The correct answer(s): A</p>`},
			notWant:  []string{"feedback correct"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := quizView()
			v.Selected = tt.selected
			v.LastAttempt = tt.attempt
			ctx := model.ContextWithBasePath(context.Background(), "/app")
			body := render(t, ctx, QuizPage(v, "Quiz", false))
			for _, w := range tt.want {
				if !strings.Contains(body, w) {
					t.Errorf("body missing %q", w)
				}
			}
			for _, w := range tt.notWant {
				if strings.Contains(body, w) {
					t.Errorf("body unexpectedly contains %q", w)
				}
			}
		})
	}
}

func TestUnsafeBasePathIsSanitized(t *testing.T) {
	ctx := model.ContextWithBasePath(context.Background(), "javascript:alert(1)//")
	body := render(t, ctx, LoginPage(""))
	if strings.Contains(body, "javascript:") {
		t.Errorf("unsafe URL rendered: %s", body)
	}
	if !strings.Contains(body, `action="`+string(templ.FailedSanitizationURL)+`"`) {
		t.Errorf("login form action not sanitized: %s", body)
	}
}

func TestLoginPageEscapesError(t *testing.T) {
	body := render(t, context.Background(), LoginPage(`<img src=x onerror=alert(1)>`))
	if !strings.Contains(body, `<p class="error">&lt;img src=x onerror=alert(1)&gt;</p>`) {
		t.Errorf("error message not escaped: %s", body)
	}
}
