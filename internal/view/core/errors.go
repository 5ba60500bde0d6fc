package core

import "errors"

// Pipeline errors. All are local, recoverable conditions; a rejection
// keeps the previous stream, never a blank frame.
var (
	// ErrInvalidAnchor is returned when a stream carries a source
	// anchor outside the ingested slice.
	ErrInvalidAnchor = errors.New("anchor outside ingested slice")

	// ErrMalformedPayload is returned when a stream's mapping length
	// does not match its character length.
	ErrMalformedPayload = errors.New("mapping length does not match stream length")
)
