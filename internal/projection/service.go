package projection

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aevon-lab/event-replay/internal/core/ledger"
	"github.com/aevon-lab/event-replay/internal/core/linkage"
	"github.com/aevon-lab/event-replay/internal/core/replay"
	"github.com/aevon-lab/event-replay/internal/core/storage"
	"github.com/google/uuid"
)

// Service runs the batch pipeline: read, replay, join, ledger.
// A run is all-or-nothing; the first read failure aborts it.
type Service struct {
	source storage.EventSource
	opts   Options
	newID  func() uuid.UUID
}

// NewService creates a new pipeline service.
func NewService(source storage.EventSource, opts Options) *Service {
	return &Service{
		source: source,
		opts:   opts,
		newID:  uuid.New,
	}
}

// Run executes one replay pass over every configured table.
func (s *Service) Run(ctx context.Context) (*Result, error) {
	result := &Result{RunID: s.newID()}
	logger := slog.With("run_id", result.RunID.String())

	logger.Info("[Pipeline] Starting replay", "tables", len(s.opts.Tables))

	for _, table := range s.opts.Tables {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		events, err := s.source.ReadTable(ctx, table)
		if err != nil {
			return nil, fmt.Errorf("read table %q: %w", table, err)
		}

		state, stats := replay.ReplayWithStats(events)
		logger.Debug("[Pipeline] Replayed table",
			"table", table,
			"events", stats.Events,
			"entities", state.Len(),
		)

		result.Tables = append(result.Tables, TableResult{
			Name:   table,
			Events: events,
			State:  state,
			Stats:  stats,
		})
	}

	if s.opts.PrimaryTable != "" {
		result.Denormalized = linkage.NewLinker(s.opts.LinkRules).Join(s.opts.PrimaryTable, result.States())
	}

	var sources []ledger.Source
	for _, rule := range s.opts.LedgerRules {
		t := result.Table(rule.Table)
		if t == nil {
			continue
		}
		sources = append(sources, ledger.Source{Rule: rule, Events: t.Events, State: t.State})
	}
	result.Transactions = ledger.Extract(sources...)

	logger.Info("[Pipeline] Replay complete",
		"tables", len(result.Tables),
		"linked_rows", result.Denormalized.Len(),
		"transactions", len(result.Transactions),
	)

	return result, nil
}
