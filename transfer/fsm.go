// Package transfer orchestrates one payment attempt end to end: optional
// off-chain intent creation, transaction build, signing, and submission.
//
// The finite state machine (FSM) enforces legal step transitions for an
// attempt. Every attempt starts from StepIdle; there is no resume — a
// failed attempt is retried by invoking the orchestrator again, which
// rebuilds a fresh transaction with a fresh sequence number and fee.
package transfer

import (
	"fmt"

	"github.com/stellar-pay/sdk-go/errors"
)

// Step identifies where a transfer attempt is in its lifecycle.
type Step string

const (
	// StepIdle is the initial state of every attempt.
	StepIdle Step = "idle"

	// StepCreatingPayment covers the off-chain intent call (bridged mode only).
	StepCreatingPayment Step = "creating_payment"

	// StepBuilding covers constructing the unsigned transaction.
	StepBuilding Step = "building_transaction"

	// StepSigning covers the external signing round-trip.
	StepSigning Step = "signing"

	// StepSubmitting covers ledger submission. Nothing before this step
	// has observable side effects on the ledger.
	StepSubmitting Step = "submitting"

	// StepSucceeded is the terminal success state.
	StepSucceeded Step = "succeeded"

	// StepFailed is the terminal failure state.
	StepFailed Step = "failed"
)

// legalTransitions defines the allowed step transitions for an attempt.
// Each key is a "from" step, and the value is a set of valid "to" steps.
//
// Terminal steps (succeeded, failed) have no outgoing transitions.
var legalTransitions = map[Step]map[Step]bool{
	StepIdle: {
		StepCreatingPayment: true, // bridged mode
		StepBuilding:        true, // direct mode
		StepFailed:          true,
	},
	StepCreatingPayment: {
		StepBuilding: true,
		StepFailed:   true,
	},
	StepBuilding: {
		StepSigning: true,
		StepFailed:  true,
	},
	StepSigning: {
		StepSubmitting: true,
		StepFailed:     true,
	},
	StepSubmitting: {
		StepSucceeded: true,
		StepFailed:    true,
	},
	// Terminal steps have no outgoing transitions
	StepSucceeded: {},
	StepFailed:    {},
}

// ValidateTransition checks if a step transition from "from" to "to" is
// legal.
//
// Returns nil if the transition is valid, or an error with code
// TRANSITION_INVALID if the transition is not allowed.
func ValidateTransition(from, to Step) error {
	validToSteps, exists := legalTransitions[from]
	if !exists {
		return errors.NewTransferError(
			errors.TRANSITION_INVALID,
			fmt.Sprintf("unknown source step: %s", from),
			nil,
		)
	}

	if !validToSteps[to] {
		return errors.NewTransferError(
			errors.TRANSITION_INVALID,
			fmt.Sprintf("illegal transition from %s to %s", from, to),
			nil,
		)
	}

	return nil
}

// IsTerminal reports whether a step has no outgoing transitions.
func IsTerminal(step Step) bool {
	return step == StepSucceeded || step == StepFailed
}
