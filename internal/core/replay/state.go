package replay

import (
	"sort"
)

// Column names under which record bookkeeping timestamps are reported.
const (
	CreatedAtColumn   = "created_at"
	LastUpdatedColumn = "last_updated"
)

// Record is the materialized state of one entity after replay.
// Fields is an open bag: payload keys vary per event and no schema is applied.
type Record struct {
	ID          string
	CreatedAt   int64 // ts of the create that (re)initialized the record
	LastUpdated int64 // ts of the most recent applied event
	Fields      map[string]interface{}
}

// Get returns a field value and whether it is present.
func (r *Record) Get(field string) (interface{}, bool) {
	v, ok := r.Fields[field]
	return v, ok
}

// TableState maps entity id to Record and remembers the order in which ids
// were first created. Re-creating an existing id overwrites it in place.
type TableState struct {
	records map[string]*Record
	order   []string
}

// NewTableState creates an empty table state.
func NewTableState() *TableState {
	return &TableState{
		records: make(map[string]*Record),
	}
}

// Get returns the record for id, or nil if no create has been observed.
func (s *TableState) Get(id string) *Record {
	if s == nil {
		return nil
	}
	return s.records[id]
}

// Len returns the number of entities.
func (s *TableState) Len() int {
	if s == nil {
		return 0
	}
	return len(s.order)
}

// IDs returns entity ids in first-create order.
func (s *TableState) IDs() []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Records returns the records in first-create order.
func (s *TableState) Records() []*Record {
	if s == nil {
		return nil
	}
	out := make([]*Record, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.records[id])
	}
	return out
}

// Columns returns every field key in the order it is first seen, walking
// records in first-create order and each record's keys alphabetically.
func (s *TableState) Columns() []string {
	seen := make(map[string]bool)
	var columns []string
	for _, rec := range s.Records() {
		keys := make([]string, 0, len(rec.Fields))
		for k := range rec.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if !seen[k] {
				seen[k] = true
				columns = append(columns, k)
			}
		}
	}
	return columns
}

func (s *TableState) put(rec *Record) {
	if _, exists := s.records[rec.ID]; !exists {
		s.order = append(s.order, rec.ID)
	}
	s.records[rec.ID] = rec
}
