// Package extract turns exam-dump PDFs into question records.
//
// The pipeline is linear: page text is cleaned, joined, cut into blocks on
// the question id marker and each block is parsed with a forward-only
// marker scan. Malformed blocks are skipped and reported, never fatal.
package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/ledongthuc/pdf"

	"github.com/pavelanni/dumpquiz/internal/qa"
)

// ErrNoQuestions is returned when a run produced an empty table.
var ErrNoQuestions = errors.New("no questions found")

// SkipDiagnostic describes a block that was dropped.
type SkipDiagnostic struct {
	Offset int    `json:"offset"`
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

// Result is the outcome of one extraction run.
type Result struct {
	RunID      string
	Pages      int
	Table      *qa.Table
	Skipped    []SkipDiagnostic
	Duplicates []string
}

// Extractor runs the pipeline with a fixed profile.
type Extractor struct {
	profile Profile
	log     *slog.Logger
}

// New creates an Extractor. A nil logger uses slog.Default.
func New(p Profile, log *slog.Logger) (*Extractor, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = slog.Default()
	}
	return &Extractor{profile: p, log: log}, nil
}

// Run extracts questions from the PDF at path. A missing or unreadable
// file is an error; an empty result is ErrNoQuestions with the (empty)
// result still returned.
func (e *Extractor) Run(ctx context.Context, path string) (*Result, error) {
	pages, err := ReadPDF(ctx, path)
	if err != nil {
		return nil, err
	}
	return e.Process(ctx, pages)
}

// Process runs the text stages on already-extracted page text.
func (e *Extractor) Process(ctx context.Context, pages []string) (*Result, error) {
	res := &Result{
		RunID: uuid.NewString(),
		Pages: len(pages),
		Table: qa.NewTable(),
	}
	log := e.log.With("run_id", res.RunID)

	text := JoinPages(pages, e.profile.Footer)
	blocks := SplitBlocks(text, e.profile.IDMarker)
	log.Debug("split text into blocks", "pages", len(pages), "blocks", len(blocks), "chars", len(text))

	for _, b := range blocks {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		body := strings.TrimSpace(b.Text)
		if !strings.HasPrefix(body, e.profile.IDMarker) {
			continue
		}

		id, rec, err := e.parse(body)
		if err != nil {
			d := SkipDiagnostic{Offset: b.Offset, ID: id, Reason: err.Error()}
			res.Skipped = append(res.Skipped, d)
			log.Warn("skipping block", "offset", d.Offset, "id", d.ID, "reason", d.Reason)
			continue
		}
		if err := rec.Validate(); err != nil {
			log.Warn("question kept with inconsistent answer", "id", id, "error", err)
		}
		if res.Table.Put(*rec) {
			res.Duplicates = append(res.Duplicates, id)
			log.Warn("duplicate question id, keeping last", "id", id, "offset", b.Offset)
		}
		log.Debug("question processed", "id", id, "question", preview(rec.Question, 50))
	}

	log.Info("extraction finished",
		"questions", res.Table.Len(),
		"skipped", len(res.Skipped),
		"duplicates", len(res.Duplicates),
	)
	if res.Table.Len() == 0 {
		return res, ErrNoQuestions
	}
	return res, nil
}

// parse wraps ParseBlock so that a panic on a malformed block becomes a
// skip instead of ending the run.
func (e *Extractor) parse(body string) (id string, rec *qa.Record, err error) {
	defer func() {
		if r := recover(); r != nil {
			rec = nil
			err = fmt.Errorf("parse panic: %v", r)
		}
	}()
	return ParseBlock(body, e.profile)
}

// ReadPDF returns the text of every page, in page order. Pages without
// a text layer yield "".
func ReadPDF(ctx context.Context, path string) ([]string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	numPages := r.NumPage()
	pages := make([]string, 0, numPages)
	fonts := make(map[string]*pdf.Font)

	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p := r.Page(i)
		if p.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		for _, name := range p.Fonts() {
			if _, ok := fonts[name]; !ok {
				font := p.Font(name)
				fonts[name] = &font
			}
		}

		text, err := pageText(p, fonts)
		if err != nil {
			return nil, fmt.Errorf("read pdf page %d: %w", i, err)
		}
		pages = append(pages, text)
	}
	return pages, nil
}

// pageText rebuilds line breaks from text rows, falling back to the plain
// text stream when rows cannot be read.
func pageText(p pdf.Page, fonts map[string]*pdf.Font) (string, error) {
	rows, err := p.GetTextByRow()
	if err != nil || len(rows) == 0 {
		return p.GetPlainText(fonts)
	}
	var sb strings.Builder
	for _, row := range rows {
		for _, word := range row.Content {
			sb.WriteString(word.S)
		}
		sb.WriteByte('\n')
	}
	return sb.String(), nil
}

func preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
