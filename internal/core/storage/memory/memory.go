package memory

import (
	"context"
	"fmt"
	"sort"

	v1 "github.com/aevon-lab/event-replay/internal/api/v1"
	eventerr "github.com/aevon-lab/event-replay/internal/core/errors"
)

// Source is an in-memory implementation of storage.EventSource.
// Useful for testing and for embedding the pipeline over events that are
// already decoded.
type Source struct {
	tables map[string][]*v1.Event
}

// NewSource creates an empty in-memory event source.
func NewSource() *Source {
	return &Source{
		tables: make(map[string][]*v1.Event),
	}
}

// AddTable registers a table with no events. Reading it yields an empty log.
func (s *Source) AddTable(table string) {
	if _, ok := s.tables[table]; !ok {
		s.tables[table] = []*v1.Event{}
	}
}

// Append adds events to a table. Events without a sequence token get one
// past the highest token already in the table, mirroring numbered files on disk.
func (s *Source) Append(table string, events ...v1.Event) {
	log := s.tables[table]
	if log == nil {
		log = []*v1.Event{}
	}
	var lastSeq int64
	for _, evt := range log {
		if evt.Seq > lastSeq {
			lastSeq = evt.Seq
		}
	}
	for _, evt := range events {
		next := evt
		if next.Seq == 0 {
			next.Seq = lastSeq + 1
		}
		if next.Seq > lastSeq {
			lastSeq = next.Seq
		}
		if next.Unit == "" {
			next.Unit = fmt.Sprintf("%d.json", next.Seq)
		}
		log = append(log, &next)
	}
	s.tables[table] = log
}

// ReadTable returns copies of the table's events ordered by sequence token.
func (s *Source) ReadTable(ctx context.Context, table string) ([]*v1.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	log, ok := s.tables[table]
	if !ok {
		return nil, eventerr.SourceNotFound(table, "memory")
	}

	out := make([]*v1.Event, 0, len(log))
	for _, evt := range log {
		// Return a copy to prevent external modification
		copy := *evt
		out = append(out, &copy)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Seq < out[j].Seq
	})
	return out, nil
}
