package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrSourceNotFound is returned when a table's storage location does not exist.
	ErrSourceNotFound = errors.New("event source not found")

	// ErrMalformedEvent is returned when a stored unit does not decode to one event object.
	ErrMalformedEvent = errors.New("malformed event")
)

// MalformedEventError identifies the stored unit that failed to decode.
type MalformedEventError struct {
	Table string `json:"table"`
	Unit  string `json:"unit"`
	Err   error  `json:"-"`
}

func (e *MalformedEventError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: table %s unit %s", ErrMalformedEvent, e.Table, e.Unit)
	}
	return fmt.Sprintf("%s: table %s unit %s: %v", ErrMalformedEvent, e.Table, e.Unit, e.Err)
}

// Is lets errors.Is(err, ErrMalformedEvent) match without unwrapping to the sentinel.
func (e *MalformedEventError) Is(target error) bool {
	return target == ErrMalformedEvent
}

func (e *MalformedEventError) Unwrap() error {
	return e.Err
}

// NewMalformedEventError wraps a decode failure for one unit of a table.
func NewMalformedEventError(table, unit string, err error) *MalformedEventError {
	return &MalformedEventError{Table: table, Unit: unit, Err: err}
}

// SourceNotFound builds an ErrSourceNotFound naming the missing table location.
func SourceNotFound(table, location string) error {
	return fmt.Errorf("%w: table %q at %s", ErrSourceNotFound, table, location)
}
