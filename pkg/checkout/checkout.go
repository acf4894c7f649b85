// Package checkout walks a user session through data collection, pricing,
// payment-method selection, confirmation and completion, invoking the
// purchase orchestrator exactly once per terminal attempt.
package checkout

import (
	"errors"
	"fmt"
)

// State is one step of a checkout session.
type State string

const (
	StateDataCollection        State = "DATA_COLLECTION"
	StatePricing               State = "PRICING"
	StatePaymentMethodSelected State = "PAYMENT_METHOD_SELECTED"
	StateConfirming            State = "CONFIRMING"
	StateMinting               State = "MINTING"
	StateConfirmed             State = "CONFIRMED"
	StateError                 State = "ERROR"
)

// Event drives a session from one state to the next.
type Event string

const (
	EventSubmitDetails Event = "SUBMIT_DETAILS"
	EventSelectMethod  Event = "SELECT_PAYMENT_METHOD"
	EventConfirm       Event = "CONFIRM"
	EventMinted        Event = "MINTED"
	EventComplete      Event = "COMPLETE"
	EventFail          Event = "FAIL"
)

// transitions is the full (state, event) → state table.  ERROR allows a
// retry of the purchase attempt and a fresh pricing round.
var transitions = map[State]map[Event]State{
	StateDataCollection: {
		EventSubmitDetails: StatePricing,
	},
	StatePricing: {
		EventSelectMethod: StatePaymentMethodSelected,
		EventFail:         StateError,
	},
	StatePaymentMethodSelected: {
		EventConfirm: StateConfirming,
	},
	StateConfirming: {
		EventMinted: StateMinting,
		EventFail:   StateError,
	},
	StateMinting: {
		EventComplete: StateConfirmed,
	},
	StateError: {
		EventConfirm:       StateConfirming,
		EventSubmitDetails: StatePricing,
	},
}

// ErrInvalidTransition is returned when an event is not legal in the
// session's current state.
var ErrInvalidTransition = errors.New("invalid checkout transition")

// ErrPurchaseInFlight is returned when a confirm request arrives while a
// purchase attempt is already outstanding.  The first attempt's outcome
// stays authoritative; the second request is rejected, not queued.
var ErrPurchaseInFlight = errors.New("purchase attempt already in flight")

// ErrNoQuote is returned when a payment method is selected before pricing
// completed.
var ErrNoQuote = errors.New("no quote available")

// ErrNoSwapRoute is returned when swap payment is selected but the quote
// carries no swap route.
var ErrNoSwapRoute = errors.New("quote carries no swap route")

func (s State) step(event Event) (State, error) {
	next, ok := transitions[s][event]
	if !ok {
		return s, fmt.Errorf("%w: %s in %s", ErrInvalidTransition, event, s)
	}

	return next, nil
}
