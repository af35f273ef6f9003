// Package loader imports question CSV files into the store. A file whose
// content hash matches the last import under the same name is skipped.
package loader

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/pavelanni/dumpquiz/internal/qa"
	"github.com/pavelanni/dumpquiz/internal/store"
)

// ErrEmptyFile is returned for a CSV file with a header but no rows.
var ErrEmptyFile = errors.New("no questions found")

// Store is the part of the question store the loader writes to.
type Store interface {
	GetImportedFileHash(path string) (string, error)
	SetImportedFileHash(path, hash string) error
	ImportTable(t *qa.Table) (int, error)
	SetMetadata(key, value string) error
}

// Outcome describes what happened to one file.
type Outcome struct {
	Name      string
	Hash      string
	Count     int
	Unchanged bool
}

// Import parses data as a questions CSV and upserts its rows. name keys
// the hash bookkeeping, usually the file path or upload file name.
func Import(st Store, name string, data []byte) (Outcome, error) {
	out := Outcome{Name: name, Hash: sha256sum(data)}

	stored, err := st.GetImportedFileHash(name)
	if err != nil {
		return out, fmt.Errorf("check import status for %s: %w", name, err)
	}
	if stored == out.Hash {
		out.Unchanged = true
		slog.Info("questions file unchanged, skipping", "name", name)
		return out, nil
	}

	table, err := qa.ReadCSV(bytes.NewReader(data))
	if err != nil {
		return out, fmt.Errorf("parse %s: %w", name, err)
	}
	if table.Len() == 0 {
		return out, fmt.Errorf("%s: %w", name, ErrEmptyFile)
	}
	for _, r := range table.Records() {
		if err := r.Validate(); err != nil {
			slog.Warn("question does not validate", "name", name, "id", r.ID, "error", err)
		}
	}

	n, err := st.ImportTable(table)
	if err != nil {
		return out, fmt.Errorf("import %s: %w", name, err)
	}
	out.Count = n

	if err := st.SetImportedFileHash(name, out.Hash); err != nil {
		return out, fmt.Errorf("record import for %s: %w", name, err)
	}
	if err := st.SetMetadata(store.MetaLastImport, name); err != nil {
		return out, err
	}
	if err := st.SetMetadata(store.MetaImportCount, strconv.Itoa(n)); err != nil {
		return out, err
	}

	if stored != "" {
		slog.Info("questions file changed, re-imported", "name", name, "count", n)
	} else {
		slog.Info("imported questions", "name", name, "count", n)
	}
	return out, nil
}

// LoadFiles imports every path in order and stops at the first error.
func LoadFiles(st Store, paths []string) ([]Outcome, error) {
	var outcomes []Outcome
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return outcomes, fmt.Errorf("read %s: %w", path, err)
		}
		out, err := Import(st, path, data)
		if err != nil {
			return outcomes, err
		}
		outcomes = append(outcomes, out)
	}
	return outcomes, nil
}

func sha256sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
