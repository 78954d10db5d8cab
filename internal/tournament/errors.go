package tournament

import "errors"

var (
	// ErrTooFewItems indicates a tournament was created with fewer than two items.
	ErrTooFewItems = errors.New("tournament needs at least two items")

	// ErrDuplicateItem indicates two entries share the same path.
	ErrDuplicateItem = errors.New("duplicate item path")

	// ErrInvalidThreshold indicates an advancement threshold outside (0,1].
	ErrInvalidThreshold = errors.New("advancement threshold must be in (0,1]")

	// ErrNoCurrentPairing indicates the round has no unresolved pairing left.
	ErrNoCurrentPairing = errors.New("no current pairing")

	// ErrWinnerNotInPairing indicates the winner index is not part of the current pairing.
	ErrWinnerNotInPairing = errors.New("winner is not part of the current pairing")
)
