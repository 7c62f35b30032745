package domain

import "errors"

// Sentinel errors for the caller-facing failure taxonomy. Callers classify
// with errors.Is; messages wrapped around these carry the context needed to
// self-correct (session id attempted, index given, query given).
var (
	// ErrNoSearchTerms is returned when the term list is empty after
	// trimming and case-insensitive deduplication.
	ErrNoSearchTerms = errors.New("at least one non-empty search term is required")

	// ErrInvalidLocation is returned for a malformed postal code or a
	// radius outside the documented range.
	ErrInvalidLocation = errors.New("invalid location")

	// ErrNotFound is returned when no active session matches a lookup.
	ErrNotFound = errors.New("no active search session")

	// ErrSessionExpired is returned when the resolved session is past its
	// time-to-live.
	ErrSessionExpired = errors.New("session expired")

	// ErrIndexOutOfRange is returned for a 1-based index outside the
	// session's flattened listing sequence.
	ErrIndexOutOfRange = errors.New("job index out of range")

	// ErrNoMatch is returned when a query matches no listing in the session.
	ErrNoMatch = errors.New("no listing matches the query")

	// ErrMissingSelector is returned when neither an index nor a query was
	// supplied.
	ErrMissingSelector = errors.New("either job_index or query must be provided")

	// ErrDetailParse is returned when a fetched page cannot be interpreted
	// as a job posting at all.
	ErrDetailParse = errors.New("page could not be parsed as a job posting")
)
