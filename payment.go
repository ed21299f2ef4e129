package stellarpay

import "time"

// TransferOrder is a normalized description of one transfer attempt. Orders
// are constructed fresh per attempt and never persisted by the SDK.
type TransferOrder struct {
	// Destination is the receiving Stellar account (G...).
	Destination string

	// Asset identifies what is being sent.
	Asset Asset

	// Amount is a decimal string, carried verbatim into the payment
	// operation. It is never converted through a float.
	Amount string

	// Reference is an optional idempotency salt attached as a text memo.
	// Must encode to at most 28 bytes; empty means no memo at all.
	Reference string
}

// PaymentDisplay is the user-facing description of a payment intent.
type PaymentDisplay struct {
	Intent       string `json:"intent"`
	PaymentValue string `json:"paymentValue"`
	Currency     string `json:"currency"`
}

// PaymentDestination describes where and how a payment settles.
type PaymentDestination struct {
	DestinationAddress string `json:"destinationAddress"`
	ChainID            string `json:"chainId"`
	AmountUnits        string `json:"amountUnits"`
	TokenSymbol        string `json:"tokenSymbol"`
	TokenAddress       string `json:"tokenAddress"`
}

// PaymentMetadata carries the intent service's routing details. For bridged
// transfers ReceivingAddress is the settlement address the transaction must
// pay, which may differ from the order's original recipient.
type PaymentMetadata struct {
	ReceivingAddress string `json:"receivingAddress,omitempty"`
	Memo             string `json:"memo,omitempty"`
	OrderID          string `json:"daimoOrderId,omitempty"`
	Intent           string `json:"intent,omitempty"`
}

// PaymentRecord is the off-chain record associated with a transfer. Bridged
// transfers receive one from the intent service; direct transfers fabricate
// a local record with the same shape so receipt handling is uniform.
type PaymentRecord struct {
	ID          string             `json:"id"`
	Source      string             `json:"source,omitempty"` // "intent", "fallback", or "local"
	Status      string             `json:"status,omitempty"`
	Display     PaymentDisplay     `json:"display"`
	Destination PaymentDestination `json:"destination"`
	Metadata    PaymentMetadata    `json:"metadata"`
	ExternalID  string             `json:"externalId,omitempty"`
	CreatedAt   time.Time          `json:"createdAt,omitempty"`
}

// TransferResult is the terminal artifact of one orchestration run.
type TransferResult struct {
	// Hash is the ledger transaction hash (64-char hex).
	Hash string

	// Successful is true only when the ledger accepted the submission.
	Successful bool

	// Payment is the associated payment record, intent-issued or local.
	Payment *PaymentRecord
}

// Receipt links a completed transfer to its payment record for later
// lookup, keyed by payment id.
type Receipt struct {
	PaymentID string
	Hash      string
	Account   string
	Payment   *PaymentRecord
	CreatedAt time.Time
}
