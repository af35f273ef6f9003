package loader

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/pavelanni/dumpquiz/internal/store"
)

const sampleCSV = `number,question,optionA,optionB,optionC,optionD,optionE,optionF,answer,explanation
QUESTION NO: 2,Second?,A. yes,B. no,,,,,A,
QUESTION NO: 1,First?,A. one,B. two,C. three,,,,"B, C",Because.
`

func testStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestImport(t *testing.T) {
	s := testStore(t)

	out, err := Import(s, "dump.csv", []byte(sampleCSV))
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if out.Count != 2 || out.Unchanged {
		t.Errorf("first import = %+v, want 2 rows imported", out)
	}

	qs, err := s.ListQuestions()
	if err != nil {
		t.Fatal(err)
	}
	if len(qs) != 2 || qs[0].Number != "QUESTION NO: 1" {
		t.Fatalf("questions = %+v, want numeric order", qs)
	}
	if got := qs[0].Answer.String(); got != "B,C" {
		t.Errorf("answer = %q, want B,C", got)
	}

	last, _ := s.GetMetadata(store.MetaLastImport)
	count, _ := s.GetMetadata(store.MetaImportCount)
	if last != "dump.csv" || count != "2" {
		t.Errorf("metadata = %q/%q", last, count)
	}

	t.Run("same content skipped", func(t *testing.T) {
		out, err := Import(s, "dump.csv", []byte(sampleCSV))
		if err != nil {
			t.Fatal(err)
		}
		if !out.Unchanged || out.Count != 0 {
			t.Errorf("second import = %+v, want unchanged", out)
		}
	})

	t.Run("changed content re-imported", func(t *testing.T) {
		changed := sampleCSV + "QUESTION NO: 3,Third?,A. x,B. y,,,,,B,\n"
		out, err := Import(s, "dump.csv", []byte(changed))
		if err != nil {
			t.Fatal(err)
		}
		if out.Unchanged || out.Count != 3 {
			t.Errorf("changed import = %+v", out)
		}
		n, _ := s.QuestionCount()
		if n != 3 {
			t.Errorf("QuestionCount = %d, want 3", n)
		}
	})
}

func TestImportErrors(t *testing.T) {
	s := testStore(t)

	t.Run("bad header", func(t *testing.T) {
		_, err := Import(s, "bad.csv", []byte("id,text\n1,x\n"))
		if err == nil {
			t.Fatal("expected error")
		}
		h, _ := s.GetImportedFileHash("bad.csv")
		if h != "" {
			t.Error("failed import should not record a hash")
		}
	})

	t.Run("header only", func(t *testing.T) {
		_, err := Import(s, "empty.csv", []byte("number,question,optionA,optionB,optionC,optionD,optionE,optionF,answer,explanation\n"))
		if !errors.Is(err, ErrEmptyFile) {
			t.Errorf("err = %v, want ErrEmptyFile", err)
		}
	})
}

func TestLoadFiles(t *testing.T) {
	s := testStore(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "q.csv")
	if err := os.WriteFile(path, []byte(sampleCSV), 0o644); err != nil {
		t.Fatal(err)
	}

	outs, err := LoadFiles(s, []string{path})
	if err != nil {
		t.Fatalf("LoadFiles: %v", err)
	}
	if len(outs) != 1 || outs[0].Count != 2 {
		t.Errorf("outcomes = %+v", outs)
	}

	if _, err := LoadFiles(s, []string{filepath.Join(dir, "missing.csv")}); err == nil {
		t.Error("expected error for missing file")
	}
}
