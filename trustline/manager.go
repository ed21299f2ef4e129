// Package trustline builds and submits the change-trust operation that opts
// an account into holding an issued asset.
package trustline

import (
	"context"
	"fmt"
	"strings"

	"github.com/stellar/go/amount"
	"github.com/stellar/go/txnbuild"

	stellarpay "github.com/stellar-pay/sdk-go"
	"github.com/stellar-pay/sdk-go/errors"
)

const (
	// DefaultReserve is the native balance required before a trustline is
	// attempted: the ledger's minimum-balance reserve plus a buffer for
	// the trustline's own reserve and fees. A client-side guard only; the
	// ledger remains the final arbiter.
	DefaultReserve = "1.5"

	// defaultTimeout bounds the validity window of the built transaction,
	// in seconds.
	defaultTimeout = 30
)

// Manager builds unsigned change-trust transactions with pre-flight
// reserve checks.
type Manager struct {
	ledger            stellarpay.LedgerClient
	registry          *stellarpay.Registry
	networkPassphrase string
	reserveStroops    int64
	timeoutSeconds    int64
}

// Option configures a Manager.
type Option func(*Manager) error

// WithReserve overrides the reserve-balance threshold, given in native
// units as a decimal string.
func WithReserve(native string) Option {
	return func(m *Manager) error {
		stroops, err := amount.ParseInt64(native)
		if err != nil {
			return fmt.Errorf("invalid reserve threshold %q: %w", native, err)
		}
		m.reserveStroops = stroops
		return nil
	}
}

// WithTimeout overrides the transaction validity window, in seconds.
func WithTimeout(seconds int64) Option {
	return func(m *Manager) error {
		m.timeoutSeconds = seconds
		return nil
	}
}

// NewManager creates a trustline manager.
func NewManager(ledger stellarpay.LedgerClient, registry *stellarpay.Registry, networkPassphrase string, opts ...Option) (*Manager, error) {
	defaultStroops, err := amount.ParseInt64(DefaultReserve)
	if err != nil {
		return nil, err
	}
	m := &Manager{
		ledger:            ledger,
		registry:          registry,
		networkPassphrase: networkPassphrase,
		reserveStroops:    defaultStroops,
		timeoutSeconds:    defaultTimeout,
	}
	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Enable builds an unsigned transaction extending trust to the given asset
// with the maximum limit.
//
// The reserve guard runs against the caller's current snapshot before any
// network call: a native balance below the threshold fails with
// INSUFFICIENT_RESERVE and no transaction is built. The transaction itself
// is built against a freshly reloaded account so its sequence number is
// current at build time; a fresh reload reporting the account absent fails
// with ACCOUNT_NOT_ACTIVATED.
func (m *Manager) Enable(ctx context.Context, assetCode string, snapshot *stellarpay.AccountSnapshot) (*stellarpay.UnsignedTransaction, error) {
	asset, err := m.registry.Lookup(assetCode)
	if err != nil {
		return nil, err
	}
	if asset.Native {
		return nil, errors.NewLedgerError(errors.TRUSTLINE_NOT_NEEDED, "the native asset does not require a trustline", nil)
	}

	if snapshot == nil || snapshot.PublicKey == "" {
		return nil, errors.NewLedgerError(errors.ACCOUNT_NOT_ACTIVATED, "no account snapshot available", nil)
	}

	nativeStroops, err := amount.ParseInt64(snapshot.NativeBalance())
	if err != nil {
		nativeStroops = 0
	}
	if nativeStroops < m.reserveStroops {
		return nil, errors.NewLedgerError(
			errors.INSUFFICIENT_RESERVE,
			fmt.Sprintf("enabling %s requires at least %s XLM, account holds %s",
				asset.Code, amount.StringFromInt64(m.reserveStroops), snapshot.NativeBalance()),
			nil,
		).With("required", amount.StringFromInt64(m.reserveStroops)).
			With("current", snapshot.NativeBalance())
	}

	fresh, err := m.ledger.LoadAccount(ctx, snapshot.PublicKey)
	if err != nil {
		if errors.HasCode(err, errors.ACCOUNT_NOT_FOUND) {
			return nil, errors.NewLedgerError(
				errors.ACCOUNT_NOT_ACTIVATED,
				"account must be activated before enabling a trustline; fund it with XLM first",
				err,
			)
		}
		return nil, err
	}

	tx, err := txnbuild.NewTransaction(txnbuild.TransactionParams{
		SourceAccount: &txnbuild.SimpleAccount{
			AccountID: fresh.PublicKey,
			Sequence:  fresh.Sequence,
		},
		IncrementSequenceNum: true,
		Operations: []txnbuild.Operation{
			&txnbuild.ChangeTrust{
				Line: txnbuild.ChangeTrustAssetWrapper{
					Asset: txnbuild.CreditAsset{Code: asset.Code, Issuer: asset.Issuer},
				},
				Limit: txnbuild.MaxTrustlineLimit,
			},
		},
		BaseFee: txnbuild.MinBaseFee,
		Preconditions: txnbuild.Preconditions{
			TimeBounds: txnbuild.NewTimeout(m.timeoutSeconds),
		},
	})
	if err != nil {
		return nil, errors.NewCoreError(errors.ENVELOPE_ENCODE_FAILED, "failed to build change-trust transaction", err)
	}

	return stellarpay.WrapUnsigned(tx), nil
}

// SubmitEnable submits a signed change-trust transaction. A ledger response
// indicating the trustline already exists is normalized to success, not
// surfaced as a rejection; enabling a trustline is idempotent in effect.
func (m *Manager) SubmitEnable(ctx context.Context, tx *stellarpay.SignedTransaction) (*stellarpay.SubmitResult, error) {
	result, err := m.ledger.SubmitTransaction(ctx, tx)
	if err != nil {
		if AlreadyExists(result, err) {
			normalized := &stellarpay.SubmitResult{Successful: true}
			if result != nil {
				normalized.Hash = result.Hash
			}
			return normalized, nil
		}
		return result, err
	}
	return result, nil
}

// AlreadyExists reports whether a submission outcome indicates the
// trustline was already in place.
func AlreadyExists(result *stellarpay.SubmitResult, err error) bool {
	if result != nil {
		for _, code := range result.OperationCodes {
			if code == "op_already_exists" {
				return true
			}
		}
	}
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "already exists")
}
