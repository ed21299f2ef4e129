package transfer

import (
	stellarpay "github.com/stellar-pay/sdk-go"
)

// Route selects how a transfer attempt reaches its destination. It is a
// closed union: the only implementations are DirectRoute and BridgedRoute,
// and the orchestrator switches on the concrete type.
type Route interface {
	mode() string
}

// DirectRoute sends the order straight to the ledger with no off-chain
// payment record service involved. A local payment record with a generated
// id is attached to the result so receipts stay uniform across modes.
type DirectRoute struct{}

func (DirectRoute) mode() string { return "direct" }

// BridgedRoute creates an off-chain payment record through the intent
// service before touching the ledger. The record's receiving address,
// amount, and memo override the order's values for the on-chain leg, so
// the chain transaction always matches what the service expects to see.
type BridgedRoute struct {
	// Display describes the payment for human-facing surfaces. Zero-value
	// fields are defaulted from the order.
	Display stellarpay.PaymentDisplay

	// ExternalID is the caller's idempotency key for the payment record.
	ExternalID string

	// ChainID overrides the destination chain identifier sent to the
	// intent service. Defaults to the Stellar chain.
	ChainID string

	// PreferredChain and PreferredToken hint the service toward a
	// settlement rail. Both default to the Stellar-side values.
	PreferredChain string
	PreferredToken string

	// Metadata is passed through to the service verbatim.
	Metadata map[string]any
}

func (BridgedRoute) mode() string { return "bridged" }

// Attempt carries the state of one transfer attempt through its lifecycle
// hooks. Hook handlers receive the same *Attempt for every event of one
// Transfer call.
type Attempt struct {
	// Step is the attempt's current lifecycle step.
	Step Step

	// Mode is the route mode, "direct" or "bridged".
	Mode string

	// Order is the transfer order as the caller supplied it.
	Order stellarpay.TransferOrder

	// Payment is the payment record attached to the attempt, once known.
	Payment *stellarpay.PaymentRecord

	// Hash is the transaction hash, set when the attempt succeeds.
	Hash string

	// Err is the failure cause, set when the attempt fails.
	Err error
}
