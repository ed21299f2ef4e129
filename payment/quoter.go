package payment

import (
	"context"
	"math/big"

	"github.com/stellar/go/amount"

	stellarpay "github.com/stellar-pay/sdk-go"
	"github.com/stellar-pay/sdk-go/errors"
)

// DefaultSlippageBps is the slippage tolerance applied to a quoted
// conversion, in basis points. An empirical policy value, not a protocol
// constant.
const DefaultSlippageBps int64 = 500

// Quoter estimates the minimum destination amount for converting an exact
// send of the native asset into an issued asset, using the ledger's
// strict-send path finding.
type Quoter struct {
	ledger      stellarpay.LedgerClient
	registry    *stellarpay.Registry
	slippageBps int64
}

// QuoterOption configures a Quoter.
type QuoterOption func(*Quoter)

// WithSlippageBps overrides the slippage tolerance, in basis points.
func WithSlippageBps(bps int64) QuoterOption {
	return func(q *Quoter) {
		q.slippageBps = bps
	}
}

// NewQuoter creates a conversion quoter.
func NewQuoter(ledger stellarpay.LedgerClient, registry *stellarpay.Registry, opts ...QuoterOption) *Quoter {
	q := &Quoter{
		ledger:      ledger,
		registry:    registry,
		slippageBps: DefaultSlippageBps,
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// QuoteStrictSend returns the minimum destination amount, after slippage,
// for sending exactly sendAmount of the native asset toward destCode. The
// arithmetic stays in stroops; no floats touch the amounts.
func (q *Quoter) QuoteStrictSend(ctx context.Context, sendAmount string, destCode string) (string, error) {
	dest, err := q.registry.Lookup(destCode)
	if err != nil {
		return "", err
	}

	paths, err := q.ledger.StrictSendPaths(ctx, q.registry.Native(), sendAmount, []stellarpay.Asset{dest})
	if err != nil {
		return "", err
	}
	if len(paths) == 0 {
		return "", errors.NewLedgerError(
			errors.ROUTE_UNAVAILABLE,
			"no conversion path found for "+q.registry.Native().Code+" to "+dest.Code,
			nil,
		)
	}

	best := paths[0]
	destStroops, err := amount.ParseInt64(best.DestinationAmount)
	if err != nil {
		return "", errors.NewCoreError(errors.INVALID_AMOUNT, "invalid path destination amount: "+best.DestinationAmount, err)
	}

	// destStroops*(10000-bps) can exceed int64 for large ledger amounts,
	// so the scaling runs through big.Int before narrowing back.
	min := new(big.Int).Mul(big.NewInt(destStroops), big.NewInt(10_000-q.slippageBps))
	min.Quo(min, big.NewInt(10_000))
	return amount.StringFromInt64(min.Int64()), nil
}
