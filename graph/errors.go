package graph

import (
	"errors"
	"fmt"
)

// ErrInvalidOperation is the root of the validation error family. Every
// rejected mutation wraps it, so callers can match the whole family with
// errors.Is(err, ErrInvalidOperation) or a specific cause with the
// narrower sentinels below.
var ErrInvalidOperation = errors.New("graph: invalid operation")

var (
	// ErrNilCell rejects an operation on a nil cell argument.
	ErrNilCell = fmt.Errorf("%w: nil cell", ErrInvalidOperation)

	// ErrCycle rejects an insert that would make a cell its own ancestor.
	ErrCycle = fmt.Errorf("%w: insert would create a cycle", ErrInvalidOperation)

	// ErrIndexOutOfRange rejects a child index outside the valid range.
	ErrIndexOutOfRange = fmt.Errorf("%w: child index out of range", ErrInvalidOperation)

	// ErrNotEdge rejects a terminal operation on a non-edge cell.
	ErrNotEdge = fmt.Errorf("%w: cell is not an edge", ErrInvalidOperation)

	// ErrNotInDocument rejects an operation on a cell that is not part of
	// the document tree.
	ErrNotInDocument = fmt.Errorf("%w: cell is not in the document", ErrInvalidOperation)
)

var (
	// ErrUnknownCell reports a journal or snapshot reference to a cell ID
	// the document does not contain.
	ErrUnknownCell = errors.New("graph: unknown cell ID")

	// ErrFingerprintMismatch reports that a replayed document diverged
	// from the fingerprint stored in the journal.
	ErrFingerprintMismatch = errors.New("graph: fingerprint mismatch after replay")
)
