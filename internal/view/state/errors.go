package state

import "errors"

// Store errors.
var (
	// ErrStaleTransform is returned when a submitted transform's
	// generation does not match the current ingest generation. The
	// caller should resubmit against a fresh ingest.
	ErrStaleTransform = errors.New("transform generation is stale")

	// ErrUnknownSplit is returned when an operation targets a split
	// the store has never seen.
	ErrUnknownSplit = errors.New("unknown split")

	// ErrUnknownBuffer is returned when a transform targets a buffer
	// the split has never displayed.
	ErrUnknownBuffer = errors.New("buffer has no view state in split")
)
