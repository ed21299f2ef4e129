// Package stellarpay provides a Go SDK for orchestrating Stellar payments:
// building transfer transactions, enabling asset trustlines, coordinating
// signing with an external custody service, and reconciling off-chain payment
// intents with on-chain submission. It delegates key custody, identity, and
// persistence to the caller.
package stellarpay

import (
	"context"
	"time"
)

// ChainStellar is the chain identifier passed to external raw-hash signers.
const ChainStellar = "stellar"

// SignHashRequest carries the inputs an external signer needs to produce a
// signature over a transaction hash.
type SignHashRequest struct {
	// Address is the Stellar account (G...) whose key should sign.
	Address string

	// ChainType identifies the target chain for multi-chain signers.
	ChainType string

	// Hash is the 32-byte transaction hash, hex-encoded with a 0x prefix.
	Hash string
}

// RawHashSigner is the minimal contract for an external signing capability.
// The SDK does not manage keys or wallet sessions; the caller provides a
// RawHashSigner and the SDK hands it transaction hashes.
type RawHashSigner interface {
	// Address returns the Stellar address (G...) this signer controls.
	Address() string

	// SignRawHash signs the given transaction hash and returns the
	// signature hex-encoded (a 0x prefix is accepted and stripped).
	// Implementations should return an error mentioning authentication
	// when the caller's session has expired.
	SignRawHash(ctx context.Context, req SignHashRequest) (string, error)
}

// SessionRefresher is an optional capability for silently refreshing an
// expired signer session. The signing coordinator invokes it at most once
// per sign attempt; it never re-signs automatically afterwards.
type SessionRefresher interface {
	RefreshSession(ctx context.Context) error
}

// Path is one candidate conversion path returned by the ledger's
// strict-send path finding.
type Path struct {
	SourceAmount      string
	DestinationAmount string
}

// SubmitResult is the ledger's verdict on a submitted transaction.
type SubmitResult struct {
	Successful bool
	Hash       string
	Ledger     int32
	ResultXDR  string

	// TransactionCode and OperationCodes carry the ledger's raw failure
	// reason verbatim when Successful is false. They are empty on success.
	TransactionCode string
	OperationCodes  []string
}

// LedgerClient is the surface of the public ledger the SDK consumes.
// The canonical implementation is core/account.HorizonLedgerClient; tests
// substitute their own.
type LedgerClient interface {
	// LoadAccount fetches the current on-ledger state of an account.
	// When the ledger reports the account does not exist, the returned
	// error carries code ACCOUNT_NOT_FOUND, distinct from transient
	// network failures.
	LoadAccount(ctx context.Context, publicKey string) (*AccountSnapshot, error)

	// FetchBaseFee returns the network-recommended fee, in stroops.
	// Fees fluctuate; callers must not cache the result across builds.
	FetchBaseFee(ctx context.Context) (int64, error)

	// StrictSendPaths returns candidate conversion paths for sending an
	// exact amount of sendAsset toward any of the destination assets.
	StrictSendPaths(ctx context.Context, sendAsset Asset, sendAmount string, destAssets []Asset) ([]Path, error)

	// SubmitTransaction submits a signed envelope. A rejection surfaces
	// as an error with code TRANSACTION_REJECTED whose context carries
	// the raw result codes; the returned SubmitResult, when non-nil,
	// carries the same codes for programmatic inspection.
	SubmitTransaction(ctx context.Context, tx *SignedTransaction) (*SubmitResult, error)
}

// ReceiptStore is the persistence interface for payment receipts. The
// developer implements this against their own database; store/memory
// provides an in-memory implementation for examples and tests.
type ReceiptStore interface {
	// Save persists a new receipt.
	Save(ctx context.Context, receipt *Receipt) error

	// FindByPaymentID retrieves a receipt by its payment record id.
	FindByPaymentID(ctx context.Context, paymentID string) (*Receipt, error)

	// FindByAccount returns all receipts for a source account, ordered
	// by creation time descending.
	FindByAccount(ctx context.Context, account string) ([]*Receipt, error)
}

// SessionContext binds one authenticated session: the bound public key, its
// signing capability, and a ledger client handle. It is constructed once per
// session and injected into the components that need it, rather than shared
// through a global.
type SessionContext struct {
	PublicKey     string
	Signer        RawHashSigner
	Ledger        LedgerClient
	Refresher     SessionRefresher // optional
	Authenticated bool
}

// Ready reports whether the session satisfies the orchestrator's entry
// precondition: authenticated, a source key bound, and a ledger handle.
func (s *SessionContext) Ready() bool {
	return s != nil && s.Authenticated && s.PublicKey != "" && s.Signer != nil && s.Ledger != nil
}

// PaymentEvent represents a Stellar payment detected by the observer.
type PaymentEvent struct {
	ID              string
	From            string
	To              string
	Asset           string
	Amount          string
	Cursor          string
	TransactionHash string
	ClosedAt        time.Time
}

// PaymentHandler is a callback invoked when the observer detects a payment
// matching the registered filters.
type PaymentHandler func(event PaymentEvent) error

// PaymentFilter narrows which payments trigger a handler.
type PaymentFilter func(PaymentEvent) bool
