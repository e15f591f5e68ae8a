package brackets

import "errors"

// Engine errors. Handlers and services match on these with errors.Is.
var (
	// Generation errors.
	ErrInvalidEntrantCount = errors.New("not enough entrants to generate a bracket")
	ErrDuplicateSeed       = errors.New("duplicate seed number among entrants")

	// Transition errors.
	ErrIllegalTransition = errors.New("illegal match state transition")
	ErrUnresolvedSlot    = errors.New("match slot is still an unresolved placeholder")
	ErrInvalidScore      = errors.New("score does not satisfy the format's win condition")

	// ErrDanglingAdvancement indicates a generation-time bug: an advancement
	// pointer targets a match or slot that does not exist. It is fatal for the
	// bracket and never auto-repaired.
	ErrDanglingAdvancement = errors.New("advancement pointer targets a missing match or slot")

	// ErrRoundNotComplete guards round-level operations (Swiss regeneration,
	// group stage promotion) invoked before every match of the round is done.
	ErrRoundNotComplete = errors.New("round has uncompleted matches")
)
