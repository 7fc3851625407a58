package projection

import (
	v1 "github.com/aevon-lab/event-replay/internal/api/v1"
	"github.com/aevon-lab/event-replay/internal/core/ledger"
	"github.com/aevon-lab/event-replay/internal/core/linkage"
	"github.com/aevon-lab/event-replay/internal/core/replay"
	"github.com/google/uuid"
)

// Options configures a pipeline run.
type Options struct {
	Tables       []string // read and replayed in this order
	PrimaryTable string   // empty disables the join
	LinkRules    []linkage.Rule
	LedgerRules  []ledger.Rule
}

// TableResult is one replayed table.
type TableResult struct {
	Name   string
	Events []*v1.Event
	State  *replay.TableState
	Stats  replay.Stats
}

// Result holds every view a run produces.
type Result struct {
	RunID        uuid.UUID
	Tables       []TableResult
	Denormalized *linkage.View
	Transactions []ledger.Transaction
}

// Table returns the result for a table, or nil if it was not part of the run.
func (r *Result) Table(name string) *TableResult {
	if r == nil {
		return nil
	}
	for i := range r.Tables {
		if r.Tables[i].Name == name {
			return &r.Tables[i]
		}
	}
	return nil
}

// States maps table name to replayed state.
func (r *Result) States() map[string]*replay.TableState {
	states := make(map[string]*replay.TableState, len(r.Tables))
	for _, t := range r.Tables {
		states[t.Name] = t.State
	}
	return states
}
