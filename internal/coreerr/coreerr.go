// Package coreerr defines the sentinel error taxonomy shared by the
// completion pipeline (spec.md §7). Components wrap one of these with
// fmt.Errorf and %w so callers can classify an error with errors.Is while
// still seeing the concrete cause in the message.
package coreerr

import "errors"

var (
	// ErrInput marks a malformed or out-of-range request (bad buffer id,
	// cursor outside the buffer, unknown dialect).
	ErrInput = errors.New("invalid input")

	// ErrParse marks a condition the Statement Parser could not make sense
	// of; the pipeline degrades to token-based classification rather than
	// failing the request.
	ErrParse = errors.New("parse error")

	// ErrClassifierDegraded marks a classification that fell back past its
	// preferred rule, order (e.g. token-based TABLE/COLUMN context instead
	// of clause-driven routing) — not a hard failure, but worth recording.
	ErrClassifierDegraded = errors.New("classifier degraded")

	// ErrMetadata marks a failure from the metadata.Source collaborator
	// (query failed, connection lost).
	ErrMetadata = errors.New("metadata error")

	// ErrCancelled marks a request whose context was cancelled by its
	// caller before the pipeline finished.
	ErrCancelled = errors.New("cancelled")

	// ErrTimeout marks a request that exceeded its deadline, typically
	// during metadata fan-out or FK graph traversal.
	ErrTimeout = errors.New("timeout")

	// ErrFatal marks an unrecoverable internal invariant violation; the
	// pipeline never panics, it returns this instead.
	ErrFatal = errors.New("fatal")
)
