// Package payment builds unsigned transfer transactions from normalized
// orders, and quotes asset conversions over the ledger's path finding.
package payment

import (
	"context"

	"github.com/stellar/go/amount"
	"github.com/stellar/go/keypair"
	"github.com/stellar/go/txnbuild"

	stellarpay "github.com/stellar-pay/sdk-go"
	"github.com/stellar-pay/sdk-go/errors"
)

const (
	// DefaultTimeout bounds the validity window of a built transaction,
	// in seconds, so a stale unsigned envelope cannot be replayed
	// indefinitely.
	DefaultTimeout int64 = 180

	// maxMemoBytes is the ledger's limit for a text memo.
	maxMemoBytes = 28
)

// Builder constructs unsigned payment transactions. Sequence number and fee
// are fetched fresh on every build; nothing is cached between calls, so a
// rebuild after a rejection always carries current values.
type Builder struct {
	ledger            stellarpay.LedgerClient
	registry          *stellarpay.Registry
	networkPassphrase string
	timeoutSeconds    int64
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithTimeout overrides the transaction validity window, in seconds.
func WithTimeout(seconds int64) BuilderOption {
	return func(b *Builder) {
		b.timeoutSeconds = seconds
	}
}

// NewBuilder creates a transaction builder.
func NewBuilder(ledger stellarpay.LedgerClient, registry *stellarpay.Registry, networkPassphrase string, opts ...BuilderOption) *Builder {
	b := &Builder{
		ledger:            ledger,
		registry:          registry,
		networkPassphrase: networkPassphrase,
		timeoutSeconds:    DefaultTimeout,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build constructs an unsigned transaction carrying exactly one payment
// operation for the order. The amount travels as a decimal string end to
// end and is never converted through a float. A text memo is attached only
// when the order carries a reference; an absent reference means no memo
// field at all, which the ledger treats differently from an empty one.
func (b *Builder) Build(ctx context.Context, source string, order stellarpay.TransferOrder) (*stellarpay.UnsignedTransaction, error) {
	if _, err := keypair.ParseAddress(order.Destination); err != nil {
		return nil, errors.NewCoreError(errors.INVALID_DESTINATION, "invalid destination address", err)
	}
	if _, err := amount.ParseInt64(order.Amount); err != nil {
		return nil, errors.NewCoreError(errors.INVALID_AMOUNT, "invalid payment amount: "+order.Amount, err)
	}

	asset, err := b.registry.Lookup(order.Asset.Code)
	if err != nil {
		return nil, err
	}

	var memo txnbuild.Memo
	if order.Reference != "" {
		if len([]byte(order.Reference)) > maxMemoBytes {
			return nil, errors.NewCoreError(errors.MEMO_TOO_LONG, "memo reference exceeds 28 bytes", nil)
		}
		memo = txnbuild.MemoText(order.Reference)
	}

	// Fresh account and fee per build: stale sequence numbers cause
	// ledger rejection, and fee markets fluctuate.
	account, err := b.ledger.LoadAccount(ctx, source)
	if err != nil {
		return nil, err
	}

	fee, err := b.ledger.FetchBaseFee(ctx)
	if err != nil {
		return nil, err
	}
	if fee < txnbuild.MinBaseFee {
		fee = txnbuild.MinBaseFee
	}

	tx, err := txnbuild.NewTransaction(txnbuild.TransactionParams{
		SourceAccount: &txnbuild.SimpleAccount{
			AccountID: account.PublicKey,
			Sequence:  account.Sequence,
		},
		IncrementSequenceNum: true,
		Operations: []txnbuild.Operation{
			&txnbuild.Payment{
				Destination: order.Destination,
				Amount:      order.Amount,
				Asset:       toTxnBuildAsset(asset),
			},
		},
		Memo:    memo,
		BaseFee: fee,
		Preconditions: txnbuild.Preconditions{
			TimeBounds: txnbuild.NewTimeout(b.timeoutSeconds),
		},
	})
	if err != nil {
		return nil, errors.NewCoreError(errors.ENVELOPE_ENCODE_FAILED, "failed to build payment transaction", err)
	}

	return stellarpay.WrapUnsigned(tx), nil
}

// toTxnBuildAsset maps a descriptor to its ledger representation: the
// built-in native type, or a (code, issuer) credit asset.
func toTxnBuildAsset(a stellarpay.Asset) txnbuild.Asset {
	if a.Native {
		return txnbuild.NativeAsset{}
	}
	return txnbuild.CreditAsset{Code: a.Code, Issuer: a.Issuer}
}
