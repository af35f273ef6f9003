package qa

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
)

// MaxOptions is the number of option columns in the CSV format.
const MaxOptions = 6

// Header is the fixed CSV header row.
var Header = []string{
	"number", "question",
	"optionA", "optionB", "optionC", "optionD", "optionE", "optionF",
	"answer", "explanation",
}

// ErrBadHeader is returned by ReadCSV when a required column is missing.
var ErrBadHeader = errors.New("csv header missing required column")

// WriteCSV writes the header followed by one row per record, in the order
// given. Option lists are padded to six columns.
func WriteCSV(w io.Writer, records []Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range records {
		if err := cw.Write(row(r)); err != nil {
			return fmt.Errorf("write %q: %w", r.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func row(r Record) []string {
	out := make([]string, 0, len(Header))
	out = append(out, r.ID, r.Question)
	for i := 0; i < MaxOptions; i++ {
		if i < len(r.Options) {
			out = append(out, r.Options[i])
		} else {
			out = append(out, "")
		}
	}
	return append(out, r.Answer.String(), r.Explanation)
}

// ReadCSV reads records written by WriteCSV. Columns are looked up by
// header name; empty option cells are dropped. Duplicate numbers keep the
// last row.
func ReadCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	head, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	col := make(map[string]int, len(head))
	for i, name := range head {
		col[name] = i
	}
	for _, name := range Header {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrBadHeader, name)
		}
	}

	table := NewTable()
	for {
		fields, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		get := func(name string) string {
			i := col[name]
			if i < len(fields) {
				return fields[i]
			}
			return ""
		}

		rec := Record{
			ID:          get("number"),
			Question:    get("question"),
			Answer:      ParseAnswer(get("answer")),
			Explanation: get("explanation"),
		}
		for _, name := range Header[2 : 2+MaxOptions] {
			if opt := get(name); opt != "" {
				rec.Options = append(rec.Options, opt)
			}
		}
		table.Put(rec)
	}
	return table, nil
}
