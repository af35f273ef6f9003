// Package qa holds the question/answer records produced by extraction and
// the CSV hand-off format read by the quiz server.
package qa

import (
	"fmt"
	"slices"
	"sort"
	"strconv"
	"strings"
)

// IDPrefix is the question id marker used by the exam dumps.
const IDPrefix = "QUESTION NO:"

// idPrefixes are stripped, in order, when deriving a numeric id.
var idPrefixes = []string{IDPrefix, "NO."}

// AnswerSet is a set of answer letters. Order is kept for display but
// ignored for comparison.
type AnswerSet []string

// ParseAnswer splits a raw answer field on commas.
// A field without commas is a single answer; an empty field is no answer.
func ParseAnswer(raw string) AnswerSet {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if !strings.Contains(raw, ",") {
		return AnswerSet{raw}
	}
	var set AnswerSet
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			set = append(set, part)
		}
	}
	return set
}

// String renders the set comma-joined, in stored order.
func (a AnswerSet) String() string {
	return strings.Join(a, ",")
}

// Display renders the set for people: letters joined by ", ".
func (a AnswerSet) Display() string {
	return strings.Join(a, ", ")
}

// Sorted returns a sorted copy.
func (a AnswerSet) Sorted() AnswerSet {
	out := slices.Clone(a)
	sort.Strings(out)
	return out
}

// Equal reports whether both sets hold the same letters, in any order.
func (a AnswerSet) Equal(b AnswerSet) bool {
	return slices.Equal(a.Sorted(), b.Sorted())
}

// Contains reports whether letter is in the set.
func (a AnswerSet) Contains(letter string) bool {
	return slices.Contains(a, letter)
}

// Record is one parsed question.
type Record struct {
	ID          string    `json:"id"`
	Question    string    `json:"question"`
	Options     []string  `json:"options"`
	Answer      AnswerSet `json:"answer"`
	Explanation string    `json:"explanation"`
}

// Letters returns the option letters, taken from the first character of
// each option ("A. text" -> "A").
func (r Record) Letters() []string {
	letters := make([]string, 0, len(r.Options))
	for _, opt := range r.Options {
		letters = append(letters, OptionLetter(opt))
	}
	return letters
}

// IsMultiChoice reports whether more than one answer is correct.
func (r Record) IsMultiChoice() bool {
	return len(r.Answer) > 1
}

// Check compares a selection against the correct answers.
func (r Record) Check(selected AnswerSet) bool {
	return selected.Equal(r.Answer)
}

// Validate reports answers that do not name one of the record's options.
// Extraction keeps such records; callers decide whether to warn.
func (r Record) Validate() error {
	if len(r.Answer) == 0 {
		return fmt.Errorf("question %q has no answer", r.ID)
	}
	letters := r.Letters()
	var unknown []string
	for _, a := range r.Answer {
		if !slices.Contains(letters, a) {
			unknown = append(unknown, a)
		}
	}
	if len(unknown) > 0 {
		return fmt.Errorf("question %q: answer %s not among options %s",
			r.ID, strings.Join(unknown, ","), strings.Join(letters, ","))
	}
	return nil
}

// OptionLetter returns the leading letter of an option string.
func OptionLetter(option string) string {
	if option == "" {
		return ""
	}
	return option[:1]
}

// Number parses the numeric part of a question id such as "QUESTION NO: 4".
func Number(id string) (int, bool) {
	rest := strings.TrimSpace(id)
	for _, p := range idPrefixes {
		if strings.HasPrefix(rest, p) {
			rest = strings.TrimSpace(strings.TrimPrefix(rest, p))
			break
		}
	}
	n, err := strconv.Atoi(rest)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Less orders question ids numerically; ids without a number sort last,
// by string.
func Less(a, b string) bool {
	na, oka := Number(a)
	nb, okb := Number(b)
	switch {
	case oka && okb:
		if na != nb {
			return na < nb
		}
		return a < b
	case oka:
		return true
	case okb:
		return false
	default:
		return a < b
	}
}
