package i18n

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func initLang(t *testing.T, lang string) context.Context {
	t.Helper()
	if err := Init(lang); err != nil {
		t.Fatalf("Init(%q): %v", lang, err)
	}
	loc := NewLocalizer(lang)
	return WithLocalizer(context.Background(), loc)
}

func TestTranslateEnglish(t *testing.T) {
	ctx := initLang(t, "en")

	if got := T(ctx, "Submit"); got != "Submit" {
		t.Errorf("T(Submit) = %q, want 'Submit'", got)
	}
	if got := T(ctx, "Previous"); got != "Previous" {
		t.Errorf("T(Previous) = %q, want 'Previous'", got)
	}
}

func TestTranslateChinese(t *testing.T) {
	ctx := initLang(t, "zh")

	if got := T(ctx, "Submit"); got != "提交" {
		t.Errorf("T(Submit) = %q, want '提交'", got)
	}
	if got := T(ctx, "Next"); got != "下一题" {
		t.Errorf("T(Next) = %q, want '下一题'", got)
	}
}

func TestPluralTranslation(t *testing.T) {
	ctx := initLang(t, "en")

	if got := Tp(ctx, "QuestionsAvailable", 1); got != "1 question available." {
		t.Errorf("Tp(QuestionsAvailable, 1) = %q", got)
	}
	if got := Tp(ctx, "QuestionsAvailable", 5); got != "5 questions available." {
		t.Errorf("Tp(QuestionsAvailable, 5) = %q", got)
	}
}

func TestTemplateDataTranslation(t *testing.T) {
	ctx := initLang(t, "en")

	got := Td(ctx, "QuestionNOfM", map[string]any{"N": 3, "Total": 120})
	if got != "Question 3 of 120" {
		t.Errorf("Td(QuestionNOfM) = %q, want 'Question 3 of 120'", got)
	}
	got = Td(ctx, "Wrong", map[string]any{"Answer": "A, C"})
	if got != "Wrong. The correct answer(s): A, C" {
		t.Errorf("Td(Wrong) = %q", got)
	}
}

func TestMissingKey(t *testing.T) {
	ctx := initLang(t, "en")

	if got := T(ctx, "NonExistentKey"); got != "NonExistentKey" {
		t.Errorf("T(NonExistentKey) = %q, want 'NonExistentKey'", got)
	}
}

func TestMiddlewareAcceptLanguage(t *testing.T) {
	if err := Init("en"); err != nil {
		t.Fatal(err)
	}
	var got string
	h := Middleware("en")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = T(r.Context(), "Submit")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Language", "zh-CN,zh;q=0.9")
	h.ServeHTTP(httptest.NewRecorder(), req)
	if got != "提交" {
		t.Errorf("with zh header got %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	h.ServeHTTP(httptest.NewRecorder(), req)
	if got != "Submit" {
		t.Errorf("without header got %q", got)
	}
}

func TestNewLocalizerKeepsCallerSlice(t *testing.T) {
	initLang(t, "en")

	backing := make([]string, 1, 2)
	backing[0] = "zh"
	spare := backing[:2]
	spare[1] = "sentinel"

	NewLocalizer(backing...)
	if spare[1] != "sentinel" {
		t.Errorf("caller backing array overwritten: %q", spare[1])
	}
}
