package main

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pavelanni/dumpquiz/internal/extract"
	"github.com/pavelanni/dumpquiz/internal/model"
	"github.com/pavelanni/dumpquiz/internal/qa"
	"github.com/pavelanni/dumpquiz/internal/store"
)

func testStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSeedAdmin(t *testing.T) {
	s := testStore(t)

	if err := seedAdmin(s, ""); err == nil {
		t.Fatal("expected error without password")
	}
	if err := seedAdmin(s, "secret"); err != nil {
		t.Fatalf("seedAdmin: %v", err)
	}
	u, err := s.GetUserByUsername("admin")
	if err != nil || u == nil {
		t.Fatalf("admin not created: %v", err)
	}
	if u.Role != model.UserRoleAdmin || u.PasswordHash == "secret" {
		t.Errorf("admin = %+v", u)
	}

	// Existing users: no password needed, nothing created.
	if err := seedAdmin(s, ""); err != nil {
		t.Errorf("second seedAdmin: %v", err)
	}
	if n, _ := s.UserCount(); n != 1 {
		t.Errorf("UserCount = %d, want 1", n)
	}
}

func TestResolveTitle(t *testing.T) {
	s := testStore(t)

	got, err := resolveTitle(s, "", true)
	if err != nil || got != "" {
		t.Fatalf("empty store title = %q, %v", got, err)
	}
	if got, _ := resolveTitle(s, "AWS SAA", false); got != "AWS SAA" {
		t.Errorf("flag title = %q", got)
	}
	if got, _ := resolveTitle(s, "", false); got != "" {
		t.Errorf("unsaved flag leaked into store: %q", got)
	}
	_, _ = resolveTitle(s, "AWS SAA", true)
	if got, _ := resolveTitle(s, "", false); got != "AWS SAA" {
		t.Errorf("stored title = %q", got)
	}
}

func TestWriteCSVFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.csv")
	records := []qa.Record{{
		ID:       "QUESTION NO: 1",
		Question: "Q?",
		Options:  []string{"A. yes", "B. no"},
		Answer:   qa.AnswerSet{"A"},
	}}

	if err := writeCSVFile(path, records); err != nil {
		t.Fatalf("writeCSVFile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := "number,question,optionA,optionB,optionC,optionD,optionE,optionF,answer,explanation\n" +
		"QUESTION NO: 1,Q?,A. yes,B. no,,,,,A,\n"
	if string(data) != want {
		t.Errorf("csv =\n%s\nwant\n%s", data, want)
	}

	entries, _ := os.ReadDir(dir)
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".dumpquiz-") {
			t.Errorf("temporary file left behind: %s", e.Name())
		}
	}
}

func TestWriteDiagnostics(t *testing.T) {
	if err := writeDiagnostics("", nil); err != nil {
		t.Errorf("empty path: %v", err)
	}

	path := filepath.Join(t.TempDir(), "skipped.json")
	skipped := []extract.SkipDiagnostic{{Offset: 42, ID: "QUESTION NO: 9", Reason: "no option marker found"}}
	if err := writeDiagnostics(path, skipped); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var got []extract.SkipDiagnostic
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0] != skipped[0] {
		t.Errorf("diagnostics = %+v", got)
	}
}

func TestRunExtractMissingInput(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out.csv")

	cmd := rootCmd()
	cmd.SetArgs([]string{"extract", "--input", filepath.Join(dir, "missing.pdf"), "--output", out})
	cmd.SetOut(os.Stderr)
	err := cmd.Execute()
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("err = %v, want a not-exist error", err)
	}
	if errors.Is(err, extract.ErrNoQuestions) {
		t.Error("missing PDF reported as no questions")
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Errorf("output file should not exist, stat err = %v", err)
	}
}
