package usecase

import "github.com/m-mizutani/goerr/v2"

var (
	// ErrFetchFailed marks a failed batch fetch. The cycle is aborted and
	// no state is mutated; the next timer tick retries naturally.
	ErrFetchFailed = goerr.New("failed to fetch case batch")

	// ErrStaleCycle marks a cycle whose fetched batch belongs to a mode
	// that is no longer active. The result must be discarded, not rendered.
	ErrStaleCycle = goerr.New("poll cycle superseded by mode switch")

	// ErrCaseNotFound is returned when a reprocess target cannot be found
	// in the active queue.
	ErrCaseNotFound = goerr.New("case not found in active queue")
)

// Error value keys
const (
	CaseIDKey = "case_id"
	ModeKey   = "mode"
)
