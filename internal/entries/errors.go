package entries

import "errors"

var (
	// ErrUnsatisfiable marks a well-formed query that can match no entries.
	// It is a designed terminal state, not a fault: callers translate it
	// into an empty result set rather than surfacing an error.
	ErrUnsatisfiable = errors.New("query cannot match any entries")

	// ErrAlreadyPrepared is returned when Prepare is invoked twice on the
	// same criteria.
	ErrAlreadyPrepared = errors.New("criteria already prepared")
)
