package v1

import (
	"fmt"
)

// Op is the kind of change an event records against one entity.
type Op string

const (
	OpCreate Op = "c"
	OpUpdate Op = "u"
)

// Event is one immutable entry of a table's change log.
// It separates the envelope (ID, Op, TS) from the payload (Data or Set).
type Event struct {
	// ID is the entity the event applies to, not a unique event identifier.
	ID string `json:"id"`

	// Op is "c" for create and "u" for update. No delete kind exists.
	Op Op `json:"op"`

	// TS is the event time in epoch milliseconds.
	// It is bookkeeping only: replay order comes from Seq, never from TS.
	TS int64 `json:"ts"`

	// Data is the full initial field set. Present on creates.
	Data map[string]interface{} `json:"data,omitempty"`

	// Set holds the changed fields. Present on updates.
	Set map[string]interface{} `json:"set,omitempty"`

	// Seq is the numeric sequence token taken from the stored unit name.
	// Set by the reader, not part of the wire format.
	Seq int64 `json:"-"`

	// Unit names the stored unit the event was read from (e.g. "12.json").
	Unit string `json:"-"`
}

// Payload returns the field mapping carried by the event for its op.
func (e *Event) Payload() map[string]interface{} {
	switch e.Op {
	case OpCreate:
		return e.Data
	case OpUpdate:
		return e.Set
	default:
		return nil
	}
}

// Replayable reports why an event cannot take part in replay.
// A nil error means the event carries an entity id and a known op.
func (e *Event) Replayable() error {
	if e.ID == "" {
		return fmt.Errorf("id is required")
	}

	switch e.Op {
	case OpCreate, OpUpdate:
		return nil
	case "":
		return fmt.Errorf("op is required")
	default:
		return fmt.Errorf("unsupported op %q", e.Op)
	}
}

// Changes reports whether an update event carries a value for field.
func (e *Event) Changes(field string) bool {
	if e.Op != OpUpdate || e.Set == nil {
		return false
	}
	_, ok := e.Set[field]
	return ok
}
