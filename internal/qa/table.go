package qa

import "sort"

// Table maps question ids to records. It remembers insertion order so
// callers can iterate the way the table was built.
type Table struct {
	order   []string
	records map[string]Record
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{records: make(map[string]Record)}
}

// Put stores r under r.ID. A record with the same id is overwritten in
// place; replaced reports whether that happened.
func (t *Table) Put(r Record) (replaced bool) {
	if _, ok := t.records[r.ID]; ok {
		replaced = true
	} else {
		t.order = append(t.order, r.ID)
	}
	t.records[r.ID] = r
	return replaced
}

// Get returns the record for id.
func (t *Table) Get(id string) (Record, bool) {
	r, ok := t.records[id]
	return r, ok
}

// Len returns the number of records.
func (t *Table) Len() int {
	return len(t.order)
}

// Records returns all records in insertion order.
func (t *Table) Records() []Record {
	out := make([]Record, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, t.records[id])
	}
	return out
}

// Sorted returns all records ordered by numeric question id.
func (t *Table) Sorted() []Record {
	out := t.Records()
	sort.SliceStable(out, func(i, j int) bool {
		return Less(out[i].ID, out[j].ID)
	})
	return out
}
