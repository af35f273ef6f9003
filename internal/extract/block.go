package extract

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/pavelanni/dumpquiz/internal/qa"
)

// ErrNoOptions means a block has no first option marker and cannot be a
// question.
var ErrNoOptions = errors.New("no option marker found")

// scanner walks an immutable block left to right. Every search starts at
// or after the cursor.
type scanner struct {
	text string
	pos  int
}

// find returns the index of marker at or after from, or -1.
func (s *scanner) find(marker string, from int) int {
	if from > len(s.text) {
		return -1
	}
	i := strings.Index(s.text[from:], marker)
	if i < 0 {
		return -1
	}
	return from + i
}

// firstOf returns the first of markers found at or after from, in
// priority order, or end of text.
func (s *scanner) firstOf(from int, markers ...string) int {
	for _, m := range markers {
		if m == "" {
			continue
		}
		if i := s.find(m, from); i >= 0 {
			return i
		}
	}
	return len(s.text)
}

// ParseBlock parses one question block that starts with the id marker.
// It returns ErrNoOptions when the first option marker is missing; the id
// is returned even then so callers can report it.
func ParseBlock(block string, p Profile) (string, *qa.Record, error) {
	s := &scanner{text: block}

	idEnd := strings.IndexByte(block, '\n')
	if idEnd < 0 {
		idEnd = len(block)
	}
	id := strings.TrimSpace(block[:idEnd])
	s.pos = idEnd

	markers := make([]string, len(p.OptionLetters))
	for i, l := range p.OptionLetters {
		markers[i] = l + "."
	}

	if len(markers) == 0 {
		return id, nil, ErrNoOptions
	}
	first := s.find(markers[0], s.pos)
	if first < 0 {
		return id, nil, ErrNoOptions
	}
	rec := &qa.Record{
		ID:       id,
		Question: strings.TrimSpace(block[s.pos:first]),
	}
	s.pos = first

	// The answer is located from the first option so that option letters
	// appearing in the explanation cannot swallow it.
	ans := s.find(p.AnswerMarker, first)
	opts := s
	if ans >= 0 {
		opts = &scanner{text: block[:ans], pos: s.pos}
	}

	for i, marker := range markers {
		start := opts.find(marker, opts.pos)
		if start < 0 {
			break
		}
		var end int
		if i+1 < len(markers) {
			end = opts.firstOf(start, markers[i+1], p.AnswerMarker, p.ExplanationMarker)
		} else {
			end = opts.firstOf(start, p.AnswerMarker, p.ExplanationMarker)
		}
		opt := strings.Join(strings.Fields(block[start:end]), " ")
		if utf8.RuneCountInString(opt) >= p.MinOptionLen {
			rec.Options = append(rec.Options, opt)
		}
		opts.pos = end
	}

	explFrom := opts.pos
	if ans >= 0 {
		valStart := ans + len(p.AnswerMarker)
		valEnd := s.firstOf(valStart, p.ExplanationMarker)
		rec.Answer = qa.ParseAnswer(block[valStart:valEnd])
		explFrom = valStart
	}
	if expl := s.find(p.ExplanationMarker, explFrom); expl >= 0 {
		rec.Explanation = strings.TrimSpace(block[expl+len(p.ExplanationMarker):])
	}

	return id, rec, nil
}
