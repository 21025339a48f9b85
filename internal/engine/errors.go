package engine

import "errors"

// ErrUnknownSymbol is returned when a submission names a symbol the
// engine was never configured with.
var ErrUnknownSymbol = errors.New("engine: unknown symbol")

// ErrFOKUnfillable describes the (non-error) outcome of a fill-or-kill
// order whose two-phase dry-run could not account for its full quantity.
// Submit does not return it: that outcome comes back as a SubmitResult
// with Status StatusRejected and Reason ReasonFOKUnfillable.
var ErrFOKUnfillable = errors.New("engine: fill-or-kill order could not be filled in full")

// ErrSymbolFaulted is returned when a symbol's actor has already hit an
// InvariantViolation and is refusing further submissions.
var ErrSymbolFaulted = errors.New("engine: symbol is faulted and refusing submissions")

// ErrShuttingDown names the engine's shutdown state. No Engine method
// returns it: a Submit after Close ends with its ctx's error instead.
var ErrShuttingDown = errors.New("engine: shutting down")

// ValidationError reports an admission-time rejection: unknown symbol
// (wrapped separately as ErrUnknownSymbol), an off-tick price, an
// off-lot quantity, a missing price on a priced order type, a price
// present on a market order, or a non-positive quantity.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "engine: validation failed on " + e.Field + ": " + e.Reason
}

// InvariantViolation marks that the matching core produced or observed
// state it should never reach for Symbol. The owning actor is faulted:
// it stops accepting submissions, but other symbols' actors are
// unaffected.
type InvariantViolation struct {
	Symbol string
	Reason string
}

func (e *InvariantViolation) Error() string {
	return "engine: invariant violation on " + e.Symbol + ": " + e.Reason
}
