// Package account provides the Horizon-backed ledger client and the account
// snapshot cache.
package account

import (
	"context"
	"fmt"
	"strings"

	"github.com/stellar/go-stellar-sdk/clients/horizonclient"
	hProtocol "github.com/stellar/go-stellar-sdk/protocols/horizon"

	stellarpay "github.com/stellar-pay/sdk-go"
	"github.com/stellar-pay/sdk-go/errors"
)

// HorizonLedgerClient implements stellarpay.LedgerClient against a Horizon
// server.
type HorizonLedgerClient struct {
	client   *horizonclient.Client
	registry *stellarpay.Registry
}

// NewHorizonLedgerClient creates a ledger client backed by the given Horizon
// URL. The registry resolves balance entries to known asset descriptors;
// balances for assets outside the registry keep their on-ledger code and
// issuer with 7 decimals.
func NewHorizonLedgerClient(horizonURL string, registry *stellarpay.Registry) *HorizonLedgerClient {
	return &HorizonLedgerClient{
		client:   &horizonclient.Client{HorizonURL: horizonURL},
		registry: registry,
	}
}

// LoadAccount fetches the current ledger state of an account. A Horizon 404
// maps to ACCOUNT_NOT_FOUND; every other failure maps to NETWORK_ERROR.
func (c *HorizonLedgerClient) LoadAccount(_ context.Context, publicKey string) (*stellarpay.AccountSnapshot, error) {
	acct, err := c.client.AccountDetail(horizonclient.AccountRequest{
		AccountID: publicKey,
	})
	if err != nil {
		if horizonclient.IsNotFoundError(err) {
			return nil, errors.NewLedgerError(
				errors.ACCOUNT_NOT_FOUND,
				fmt.Sprintf("account %s not found on the ledger", publicKey),
				err,
			)
		}
		return nil, errors.NewLedgerError(errors.NETWORK_ERROR, "failed to load account", err)
	}

	seq, err := acct.GetSequenceNumber()
	if err != nil {
		return nil, errors.NewLedgerError(errors.NETWORK_ERROR, "failed to parse account sequence", err)
	}

	snapshot := &stellarpay.AccountSnapshot{
		PublicKey: acct.AccountID,
		Sequence:  seq,
		Balances:  make([]stellarpay.Balance, 0, len(acct.Balances)),
	}
	for _, b := range acct.Balances {
		snapshot.Balances = append(snapshot.Balances, stellarpay.Balance{
			Asset:  c.resolveAsset(b),
			Amount: b.Balance,
		})
	}
	return snapshot, nil
}

// resolveAsset maps a Horizon balance entry to an asset descriptor,
// preferring the registry's identity for known codes.
func (c *HorizonLedgerClient) resolveAsset(b hProtocol.Balance) stellarpay.Asset {
	if b.Type == "native" {
		return c.registry.Native()
	}
	if known, err := c.registry.Lookup(b.Code); err == nil && known.Issuer == b.Issuer {
		return known
	}
	return stellarpay.Asset{Code: b.Code, Issuer: b.Issuer, Decimals: 7}
}

// FetchBaseFee returns the fee charged by the last closed ledger, in
// stroops. Fee markets fluctuate, so callers fetch this fresh per build.
func (c *HorizonLedgerClient) FetchBaseFee(_ context.Context) (int64, error) {
	stats, err := c.client.FeeStats()
	if err != nil {
		return 0, errors.NewLedgerError(errors.NETWORK_ERROR, "failed to fetch fee stats", err)
	}
	return stats.LastLedgerBaseFee, nil
}

// StrictSendPaths returns candidate conversion paths for sending an exact
// amount of sendAsset toward the destination assets.
func (c *HorizonLedgerClient) StrictSendPaths(_ context.Context, sendAsset stellarpay.Asset, sendAmount string, destAssets []stellarpay.Asset) ([]stellarpay.Path, error) {
	req := horizonclient.StrictSendPathsRequest{
		SourceAmount:      sendAmount,
		DestinationAssets: destinationAssetList(destAssets),
	}
	if sendAsset.Native {
		req.SourceAssetType = horizonclient.AssetTypeNative
	} else {
		req.SourceAssetType = assetType(sendAsset.Code)
		req.SourceAssetCode = sendAsset.Code
		req.SourceAssetIssuer = sendAsset.Issuer
	}

	page, err := c.client.StrictSendPaths(req)
	if err != nil {
		return nil, errors.NewLedgerError(errors.NETWORK_ERROR, "failed to find payment paths", err)
	}

	paths := make([]stellarpay.Path, 0, len(page.Embedded.Records))
	for _, rec := range page.Embedded.Records {
		paths = append(paths, stellarpay.Path{
			SourceAmount:      rec.SourceAmount,
			DestinationAmount: rec.DestinationAmount,
		})
	}
	return paths, nil
}

// SubmitTransaction submits a signed envelope to the network. A rejected
// transaction surfaces as TRANSACTION_REJECTED with the ledger's raw result
// codes attached to both the error context and the returned SubmitResult.
func (c *HorizonLedgerClient) SubmitTransaction(_ context.Context, tx *stellarpay.SignedTransaction) (*stellarpay.SubmitResult, error) {
	if tx == nil {
		return nil, errors.NewLedgerError(errors.TRANSACTION_REJECTED, "no signed transaction to submit", nil)
	}

	envelope, err := tx.Base64()
	if err != nil {
		return nil, err
	}

	res, err := c.client.SubmitTransactionXDR(envelope)
	if err != nil {
		result := &stellarpay.SubmitResult{Successful: false}
		rejection := errors.NewLedgerError(errors.TRANSACTION_REJECTED, "the ledger rejected the transaction", err)
		if herr, ok := err.(*horizonclient.Error); ok {
			if codes, cerr := herr.ResultCodes(); cerr == nil && codes != nil {
				result.TransactionCode = codes.TransactionCode
				result.OperationCodes = codes.OperationCodes
				rejection.With("transaction_code", codes.TransactionCode)
				rejection.With("operation_codes", codes.OperationCodes)
			}
		}
		return result, rejection
	}

	return &stellarpay.SubmitResult{
		Successful: res.Successful,
		Hash:       res.Hash,
		Ledger:     res.Ledger,
		ResultXDR:  res.ResultXdr,
	}, nil
}

// destinationAssetList renders assets in Horizon's comma-separated
// "native" / "CODE:ISSUER" request format.
func destinationAssetList(assets []stellarpay.Asset) string {
	parts := make([]string, 0, len(assets))
	for _, a := range assets {
		parts = append(parts, a.Canonical())
	}
	return strings.Join(parts, ",")
}

// assetType classifies an issued asset code by length.
func assetType(code string) horizonclient.AssetType {
	if len(code) <= 4 {
		return horizonclient.AssetType4
	}
	return horizonclient.AssetType12
}

// Compile-time interface check
var _ stellarpay.LedgerClient = (*HorizonLedgerClient)(nil)
