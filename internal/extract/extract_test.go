package extract

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/pavelanni/dumpquiz/internal/qa"
)

const footer = "IT Certification Guaranteed, The Easy Way!"

func TestCleanPage(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"page number only", "  12  \n", ""},
		{
			"numbers footer and blanks",
			"QUESTION NO: 1\n12\nWhat is it?\n" + footer + "\n\n   7 \nA. first option",
			"QUESTION NO: 1\nWhat is it?\nA. first option",
		},
		{"footer inside line", "Answer: B " + footer, "Answer: B"},
		{"digits inside text kept", "Version 12 of 3\n42", "Version 12 of 3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanPage(tt.in, footer); got != tt.want {
				t.Errorf("CleanPage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestJoinPages(t *testing.T) {
	got := JoinPages([]string{"one\n1", "", "two"}, footer)
	if got != "one\ntwo\n" {
		t.Errorf("JoinPages() = %q", got)
	}
}

func TestSplitBlocks(t *testing.T) {
	const m = "QUESTION NO:"
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"empty", "", []string{""}},
		{"no marker", "just some text", []string{"just some text"}},
		{"starts with marker", m + " 1\nabc\n" + m + " 2\ndef\n", []string{m + " 1\nabc\n", m + " 2\ndef\n"}},
		{"preamble", "intro\n" + m + " 1\nabc", []string{"intro\n", m + " 1\nabc"}},
		{"adjacent markers", m + m, []string{m, m}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blocks := SplitBlocks(tt.text, m)
			var texts []string
			var joined strings.Builder
			for i, b := range blocks {
				texts = append(texts, b.Text)
				joined.WriteString(b.Text)
				if i > 0 && !strings.HasPrefix(b.Text, m) {
					t.Errorf("block %d does not start with marker: %q", i, b.Text)
				}
				if tt.text[b.Offset:b.Offset+len(b.Text)] != b.Text {
					t.Errorf("block %d offset %d does not match text", i, b.Offset)
				}
			}
			if !slices.Equal(texts, tt.want) {
				t.Errorf("SplitBlocks() = %q, want %q", texts, tt.want)
			}
			if joined.String() != tt.text {
				t.Errorf("blocks do not reconstruct text: %q", joined.String())
			}
		})
	}
}

func TestParseBlock(t *testing.T) {
	p := DefaultProfile()

	t.Run("three options single answer", func(t *testing.T) {
		block := "QUESTION NO: 4\nWhat is the value?\nA. alpha\nB. beta\nC. gamma\nAnswer: B\nExplanation: text"
		id, rec, err := ParseBlock(block, p)
		if err != nil {
			t.Fatalf("ParseBlock: %v", err)
		}
		if id != "QUESTION NO: 4" || rec.ID != id {
			t.Errorf("id = %q, rec.ID = %q", id, rec.ID)
		}
		if rec.Question != "What is the value?" {
			t.Errorf("question = %q", rec.Question)
		}
		want := []string{"A. alpha", "B. beta", "C. gamma"}
		if !slices.Equal(rec.Options, want) {
			t.Errorf("options = %q, want %q", rec.Options, want)
		}
		if !rec.Answer.Equal(qa.AnswerSet{"B"}) {
			t.Errorf("answer = %v, want [B]", rec.Answer)
		}
		if rec.Explanation != "text" {
			t.Errorf("explanation = %q, want text", rec.Explanation)
		}
	})

	t.Run("multi answer", func(t *testing.T) {
		block := "QUESTION NO: 5\nPick two.\nA. red one\nB. blue one\nC. green one\nAnswer: A,C"
		_, rec, err := ParseBlock(block, p)
		if err != nil {
			t.Fatalf("ParseBlock: %v", err)
		}
		if !rec.Answer.Equal(qa.AnswerSet{"C", "A"}) {
			t.Errorf("answer = %v, want {A,C}", rec.Answer)
		}
		if rec.Explanation != "" {
			t.Errorf("explanation = %q, want empty", rec.Explanation)
		}
		if rec.Options[2] != "C. green one" {
			t.Errorf("last option = %q", rec.Options[2])
		}
	})

	t.Run("no option marker", func(t *testing.T) {
		id, rec, err := ParseBlock("QUESTION NO: 6\ntrailing fragment", p)
		if !errors.Is(err, ErrNoOptions) {
			t.Fatalf("expected ErrNoOptions, got %v", err)
		}
		if rec != nil {
			t.Error("expected nil record")
		}
		if id != "QUESTION NO: 6" {
			t.Errorf("id = %q", id)
		}
	})

	t.Run("bare marker dropped", func(t *testing.T) {
		block := "QUESTION NO: 7\nWhich?\nA. first\nB. second\nC. third\nD.\nAnswer: A"
		_, rec, err := ParseBlock(block, p)
		if err != nil {
			t.Fatalf("ParseBlock: %v", err)
		}
		if len(rec.Options) != 3 {
			t.Errorf("expected 3 options, got %q", rec.Options)
		}
	})

	t.Run("whitespace collapsed", func(t *testing.T) {
		block := "QUESTION NO: 8\nQ\nA. spread\n  over   lines\nB. short one\nAnswer: B"
		_, rec, err := ParseBlock(block, p)
		if err != nil {
			t.Fatalf("ParseBlock: %v", err)
		}
		if rec.Options[0] != "A. spread over lines" {
			t.Errorf("option = %q", rec.Options[0])
		}
	})

	t.Run("no answer marker", func(t *testing.T) {
		block := "QUESTION NO: 9\nQ\nA. first\nB. second\nExplanation: only this"
		_, rec, err := ParseBlock(block, p)
		if err != nil {
			t.Fatalf("ParseBlock: %v", err)
		}
		if len(rec.Answer) != 0 {
			t.Errorf("answer = %v, want empty", rec.Answer)
		}
		if rec.Explanation != "only this" {
			t.Errorf("explanation = %q", rec.Explanation)
		}
		if rec.Options[1] != "B. second" {
			t.Errorf("option B = %q", rec.Options[1])
		}
	})

	t.Run("empty answer", func(t *testing.T) {
		block := "QUESTION NO: 10\nQ\nA. first\nAnswer:\nExplanation: none given"
		_, rec, err := ParseBlock(block, p)
		if err != nil {
			t.Fatalf("ParseBlock: %v", err)
		}
		if len(rec.Answer) != 0 {
			t.Errorf("answer = %v, want empty", rec.Answer)
		}
	})

	t.Run("option letter inside explanation", func(t *testing.T) {
		block := "QUESTION NO: 12\nWhich field is the key?\nA. Owner\nB. Name\nC. Created date\nAnswer: A\nExplanation: The record ID. is unique."
		_, rec, err := ParseBlock(block, p)
		if err != nil {
			t.Fatalf("ParseBlock: %v", err)
		}
		want := []string{"A. Owner", "B. Name", "C. Created date"}
		if !slices.Equal(rec.Options, want) {
			t.Errorf("options = %q, want %q", rec.Options, want)
		}
		if !rec.Answer.Equal(qa.AnswerSet{"A"}) {
			t.Errorf("answer = %v, want [A]", rec.Answer)
		}
		if rec.Explanation != "The record ID. is unique." {
			t.Errorf("explanation = %q", rec.Explanation)
		}
	})

	t.Run("id without newline", func(t *testing.T) {
		id, _, err := ParseBlock("QUESTION NO: 11", p)
		if !errors.Is(err, ErrNoOptions) || id != "QUESTION NO: 11" {
			t.Errorf("id = %q, err = %v", id, err)
		}
	})

	t.Run("six options", func(t *testing.T) {
		block := "QUESTION NO: 12\nQ\nA. one1\nB. two2\nC. three\nD. four\nE. five\nF. six6\nAnswer: F"
		_, rec, err := ParseBlock(block, p)
		if err != nil {
			t.Fatalf("ParseBlock: %v", err)
		}
		if len(rec.Options) != 6 || rec.Options[5] != "F. six6" {
			t.Errorf("options = %q", rec.Options)
		}
	})
}

func TestProcess(t *testing.T) {
	e, err := New(DefaultProfile(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	pages := []string{
		"Exam dump preface\nQUESTION NO: 1\nQ one?\nA. alpha\nB. beta\nAnswer: A\n1\n" + footer,
		"QUESTION NO: 2\nbroken fragment",
		"QUESTION NO: 3\nQ three?\nA. red one\nB. blue one\nAnswer: A,B\nExplanation: both",
		"QUESTION NO: 1\nQ one again?\nA. alpha\nB. beta\nAnswer: B",
	}
	res, err := e.Process(context.Background(), pages)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if res.RunID == "" {
		t.Error("expected run id")
	}
	if res.Table.Len() != 2 {
		t.Fatalf("expected 2 questions, got %d", res.Table.Len())
	}
	if len(res.Skipped) != 1 || res.Skipped[0].ID != "QUESTION NO: 2" {
		t.Errorf("skipped = %+v", res.Skipped)
	}
	if !slices.Equal(res.Duplicates, []string{"QUESTION NO: 1"}) {
		t.Errorf("duplicates = %v", res.Duplicates)
	}
	q1, _ := res.Table.Get("QUESTION NO: 1")
	if q1.Question != "Q one again?" {
		t.Errorf("expected last duplicate to win, got %q", q1.Question)
	}
	if _, ok := res.Table.Get("QUESTION NO: 2"); ok {
		t.Error("malformed question should not be in table")
	}
	q3, _ := res.Table.Get("QUESTION NO: 3")
	if !q3.Answer.Equal(qa.AnswerSet{"A", "B"}) || q3.Explanation != "both" {
		t.Errorf("q3 = %+v", q3)
	}
}

func TestProcessEmpty(t *testing.T) {
	e, err := New(DefaultProfile(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	res, err := e.Process(context.Background(), []string{"no questions here"})
	if !errors.Is(err, ErrNoQuestions) {
		t.Fatalf("expected ErrNoQuestions, got %v", err)
	}
	if res == nil || res.Table.Len() != 0 {
		t.Error("expected empty result")
	}
}

func TestProcessCanceled(t *testing.T) {
	e, _ := New(DefaultProfile(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := e.Process(ctx, []string{"QUESTION NO: 1\nQ\nA. alpha\nAnswer: A"})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestProcessPDFOnlyProfile(t *testing.T) {
	e, err := New(PDFOnlyProfile(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	res, err := e.Process(context.Background(), []string{"NO. 7\nWhich?\nA. one1\nB. two2\nAnswer: B"})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if _, ok := res.Table.Get("NO. 7"); !ok {
		t.Error("expected question NO. 7")
	}
}

func TestRunMissingFile(t *testing.T) {
	e, _ := New(DefaultProfile(), nil)
	_, err := e.Run(context.Background(), filepath.Join(t.TempDir(), "missing.pdf"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("err = %v, want a not-exist error", err)
	}
}

func TestReadPDF(t *testing.T) {
	pages, err := ReadPDF(context.Background(), filepath.Join("testdata", "questions.pdf"))
	if err != nil {
		t.Fatalf("ReadPDF: %v", err)
	}
	if len(pages) != 3 {
		t.Fatalf("pages = %d, want 3", len(pages))
	}

	want := "QUESTION NO: 1\nWhich color is the sky on a clear day?\nA. Green\nB. Blue\nC. Red\nAnswer: B\nExplanation: Rayleigh scattering.\n"
	if pages[0] != want {
		t.Errorf("page 1 =\n%q\nwant\n%q", pages[0], want)
	}
	// No content stream: rows come back empty and the plain text
	// fallback yields nothing.
	if pages[1] != "" {
		t.Errorf("page 2 = %q, want empty", pages[1])
	}
	if !strings.HasPrefix(pages[2], "QUESTION NO: 2\n") {
		t.Errorf("page 3 = %q", pages[2])
	}
}

func TestReadPDFNotAPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.pdf")
	if err := os.WriteFile(path, []byte("plain text, not a pdf\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadPDF(context.Background(), path); err == nil {
		t.Fatal("expected error for non-PDF input")
	}
}

func TestRunFixture(t *testing.T) {
	e, err := New(DefaultProfile(), nil)
	if err != nil {
		t.Fatal(err)
	}
	res, err := e.Run(context.Background(), filepath.Join("testdata", "questions.pdf"))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Pages != 3 || res.Table.Len() != 2 {
		t.Fatalf("pages = %d, questions = %d", res.Pages, res.Table.Len())
	}

	q1, _ := res.Table.Get("QUESTION NO: 1")
	if !q1.Answer.Equal(qa.AnswerSet{"B"}) || q1.Explanation != "Rayleigh scattering." {
		t.Errorf("question 1 = %+v", q1)
	}
	q2, _ := res.Table.Get("QUESTION NO: 2")
	want := []string{"A. Record ID", "B. Owner", "C. Created date"}
	if !slices.Equal(q2.Options, want) {
		t.Errorf("question 2 options = %q, want %q", q2.Options, want)
	}
	if !q2.Answer.Equal(qa.AnswerSet{"A"}) || q2.Explanation != "The record ID. is unique." {
		t.Errorf("question 2 = %+v", q2)
	}
}

func TestProfiles(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "good.yaml")
	if err := os.WriteFile(good, []byte("id_marker: \"NO.\"\nfooter: \"\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	p, err := LoadProfile(good)
	if err != nil {
		t.Fatalf("LoadProfile: %v", err)
	}
	if p.IDMarker != "NO." || p.Footer != "" || p.AnswerMarker != "Answer:" {
		t.Errorf("profile = %+v", p)
	}

	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("option_letters: [\"AB\"]\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadProfile(bad); err == nil {
		t.Error("expected validation error")
	}

	if _, err := ProfileByName("pdf-only"); err != nil {
		t.Errorf("ProfileByName(pdf-only): %v", err)
	}
	if _, err := ProfileByName("nope"); err == nil {
		t.Error("expected error for unknown profile")
	}
}
