package things

import "errors"

// Domain errors surfaced by parameter validation and payload construction.
var (
	// ErrTokenRequired is returned when no auth token could be resolved
	// for an update-class command.
	ErrTokenRequired = errors.New("auth token required: pass auth_token or set THINGS_AUTH_TOKEN")

	// ErrMissingTitle is returned when a create operation has no title.
	ErrMissingTitle = errors.New("title is required")

	// ErrMissingID is returned when an operation targets an item without an id.
	ErrMissingID = errors.New("id is required")

	// ErrMissingQuery is returned when a search has nothing to search for.
	ErrMissingQuery = errors.New("query is required")

	// ErrNoOperations is returned when a batch would be empty.
	ErrNoOperations = errors.New("no operations in batch")
)
