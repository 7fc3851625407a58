package storage

import (
	"context"

	v1 "github.com/aevon-lab/event-replay/internal/api/v1"
)

// EventSource defines the interface for reading a table's change log.
type EventSource interface {
	// ReadTable returns every event of the table ordered by sequence token (ascending).
	// Returns errors.ErrSourceNotFound if the table does not exist and a
	// *errors.MalformedEventError if any stored unit fails to decode.
	// Implementations re-read from scratch on every call.
	ReadTable(ctx context.Context, table string) ([]*v1.Event, error)
}
