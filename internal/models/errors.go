package models

import "errors"

var (
	// ErrNotFound is returned when a mutation or lookup names an unknown id.
	ErrNotFound = errors.New("not found")
	// ErrCorrupt marks a structured file that failed to parse.
	ErrCorrupt = errors.New("corrupt file")
	// ErrIO wraps a rejected filesystem call.
	ErrIO = errors.New("io failure")
	// ErrExportPrecondition is returned when there is nothing eligible to export.
	ErrExportPrecondition = errors.New("nothing to export")
	// ErrInvalidID is returned for ids that cannot name a file.
	ErrInvalidID = errors.New("invalid id")
)

// LoadOutcome tells a caller how a read path produced its value. Public read
// APIs collapse every outcome into a usable value; the outcome is exposed so
// that callers and tests can tell an empty store from a recovered one.
type LoadOutcome int

const (
	// OutcomeLoaded means the persisted record was read and parsed.
	OutcomeLoaded LoadOutcome = iota
	// OutcomeEmpty means nothing was persisted yet.
	OutcomeEmpty
	// OutcomeRecovered means a read or parse failure was replaced by a default.
	OutcomeRecovered
)

func (o LoadOutcome) String() string {
	switch o {
	case OutcomeLoaded:
		return "loaded"
	case OutcomeEmpty:
		return "empty"
	case OutcomeRecovered:
		return "recovered"
	}
	return "unknown"
}
