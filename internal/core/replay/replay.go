package replay

import (
	v1 "github.com/aevon-lab/event-replay/internal/api/v1"
)

// Applier defines how one event op folds into table state.
// To support a new op: implement Applier and register it in Appliers.
type Applier interface {
	// Apply folds evt into state and reports whether it changed anything.
	Apply(state *TableState, evt *v1.Event) bool
}

// Appliers is the registry of supported event ops.
// Events whose op has no entry here are skipped.
var Appliers = map[v1.Op]Applier{
	v1.OpCreate: createApplier{},
	v1.OpUpdate: updateApplier{},
}

// Stats counts what happened to each event of a replay pass.
type Stats struct {
	Events  int // events seen
	Applied int // events that changed state
	Skipped int // empty id or unsupported op
	Dropped int // updates for an id with no prior create
}

// Replay folds events, strictly in the given order, into a table state.
// The order must be sequence order; timestamps are never consulted for precedence.
func Replay(events []*v1.Event) *TableState {
	state, _ := ReplayWithStats(events)
	return state
}

// ReplayWithStats is Replay plus per-outcome counters.
// Orphan updates are counted, never reported as errors.
func ReplayWithStats(events []*v1.Event) (*TableState, Stats) {
	state := NewTableState()
	stats := Stats{Events: len(events)}

	for _, evt := range events {
		if evt == nil || evt.Replayable() != nil {
			stats.Skipped++
			continue
		}

		applier, ok := Appliers[evt.Op]
		if !ok {
			stats.Skipped++
			continue
		}

		if applier.Apply(state, evt) {
			stats.Applied++
		} else {
			stats.Dropped++
		}
	}

	return state, stats
}

// createApplier (re)initializes the record, discarding any earlier state for the id.
type createApplier struct{}

func (createApplier) Apply(state *TableState, evt *v1.Event) bool {
	rec := &Record{
		ID:          evt.ID,
		CreatedAt:   evt.TS,
		LastUpdated: evt.TS,
		Fields:      make(map[string]interface{}, len(evt.Data)),
	}
	merge(rec.Fields, evt.Payload())
	state.put(rec)
	return true
}

// updateApplier shallow-merges Set into an existing record.
// An update for an unknown id is dropped.
type updateApplier struct{}

func (updateApplier) Apply(state *TableState, evt *v1.Event) bool {
	rec := state.Get(evt.ID)
	if rec == nil {
		return false
	}
	rec.LastUpdated = evt.TS
	merge(rec.Fields, evt.Payload())
	return true
}

func merge(dst, src map[string]interface{}) {
	for k, v := range src {
		dst[k] = v
	}
}
