package auctions

import "errors"

var (
	// ErrNotFound means the auction id is unknown or already deleted.
	ErrNotFound = errors.New("auction not found")

	// ErrAlreadyExists means a create collided with an existing auction id.
	ErrAlreadyExists = errors.New("auction already exists")

	// ErrInvalidContribution means the gift payload is malformed
	// (non-positive amount or missing donor). Contributions failing this
	// check are logged and dropped, never surfaced to viewers.
	ErrInvalidContribution = errors.New("invalid contribution")
)
