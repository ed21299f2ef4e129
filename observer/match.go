package observer

import (
	"context"

	"github.com/stellar/go/amount"

	stellarpay "github.com/stellar-pay/sdk-go"
	"github.com/stellar-pay/sdk-go/core/account"
	"github.com/stellar-pay/sdk-go/errors"
)

// Filter constructors. Filters passed to OnPayment are ANDed together.

// ForAsset matches payments of a specific asset in canonical form:
// "native" for XLM, "CODE:ISSUER" for issued assets.
func ForAsset(canonical string) stellarpay.PaymentFilter {
	return func(evt stellarpay.PaymentEvent) bool {
		return evt.Asset == canonical
	}
}

// ForAccount matches payments sent to or from a specific account.
func ForAccount(accountID string) stellarpay.PaymentFilter {
	return func(evt stellarpay.PaymentEvent) bool {
		return evt.From == accountID || evt.To == accountID
	}
}

// ForDestination matches payments sent to a specific account.
func ForDestination(accountID string) stellarpay.PaymentFilter {
	return func(evt stellarpay.PaymentEvent) bool {
		return evt.To == accountID
	}
}

// ForSource matches payments sent from a specific account.
func ForSource(accountID string) stellarpay.PaymentFilter {
	return func(evt stellarpay.PaymentEvent) bool {
		return evt.From == accountID
	}
}

// MinAmount matches payments of at least the given decimal amount. Events
// whose amount fails to parse never match.
func MinAmount(min string) stellarpay.PaymentFilter {
	floor, err := amount.ParseInt64(min)
	return func(evt stellarpay.PaymentEvent) bool {
		if err != nil {
			return false
		}
		v, perr := amount.ParseInt64(evt.Amount)
		if perr != nil {
			return false
		}
		return v >= floor
	}
}

// WatchAccount wires a watcher to a snapshot cache: every payment touching
// the account triggers a cache refresh, so cached balances track on-chain
// activity without callers polling.
//
// This also covers activation. A create_account funding of a previously
// unknown account streams through as a native payment, and the refresh
// flips the cache's not-found marker to a live snapshot.
func WatchAccount(w *Watcher, cache *account.SnapshotCache, publicKey string) error {
	if w == nil {
		return errors.NewObserverError(errors.STREAM_ERROR, "watcher is nil", nil)
	}
	if cache == nil {
		return errors.NewObserverError(errors.STREAM_ERROR, "snapshot cache is nil", nil)
	}
	if publicKey == "" {
		return errors.NewObserverError(errors.STREAM_ERROR, "account public key is empty", nil)
	}

	w.OnPayment(
		func(evt stellarpay.PaymentEvent) error {
			_, _, err := cache.Refresh(context.Background(), publicKey)
			return err
		},
		ForAccount(publicKey),
	)

	return nil
}
