package payment

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	stellarpay "github.com/stellar-pay/sdk-go"
	"github.com/stellar-pay/sdk-go/errors"
)

func TestQuoteStrictSendAppliesSlippage(t *testing.T) {
	ledger := &fakeLedger{
		paths: []stellarpay.Path{
			{SourceAmount: "100.0000000", DestinationAmount: "25.0000000"},
		},
	}
	quoter := NewQuoter(ledger, testRegistry(t))

	// 25 USDC minus the default 5% slippage.
	min, err := quoter.QuoteStrictSend(context.Background(), "100", "USDC")
	require.NoError(t, err)
	assert.Equal(t, "23.7500000", min)
}

func TestQuoteStrictSendCustomSlippage(t *testing.T) {
	ledger := &fakeLedger{
		paths: []stellarpay.Path{
			{SourceAmount: "100.0000000", DestinationAmount: "25.0000000"},
		},
	}
	quoter := NewQuoter(ledger, testRegistry(t), WithSlippageBps(100))

	min, err := quoter.QuoteStrictSend(context.Background(), "100", "USDC")
	require.NoError(t, err)
	assert.Equal(t, "24.7500000", min)
}

func TestQuoteStrictSendUsesBestPath(t *testing.T) {
	ledger := &fakeLedger{
		paths: []stellarpay.Path{
			{SourceAmount: "10", DestinationAmount: "10.0000000"},
			{SourceAmount: "10", DestinationAmount: "9.0000000"},
		},
	}
	quoter := NewQuoter(ledger, testRegistry(t), WithSlippageBps(0))

	min, err := quoter.QuoteStrictSend(context.Background(), "10", "USDC")
	require.NoError(t, err)
	assert.Equal(t, "10.0000000", min)
}

func TestQuoteStrictSendLargeAmount(t *testing.T) {
	// Amounts near the ledger maximum (922,337,203,685 XLM) must not
	// overflow the slippage arithmetic; the minimum always stays below
	// the quoted amount.
	ledger := &fakeLedger{
		paths: []stellarpay.Path{
			{SourceAmount: "900000000000", DestinationAmount: "900000000000"},
		},
	}
	quoter := NewQuoter(ledger, testRegistry(t))

	min, err := quoter.QuoteStrictSend(context.Background(), "900000000000", "USDC")
	require.NoError(t, err)
	assert.Equal(t, "855000000000.0000000", min)
}

func TestQuoteStrictSendMaxLedgerAmount(t *testing.T) {
	ledger := &fakeLedger{
		paths: []stellarpay.Path{
			{SourceAmount: "1", DestinationAmount: "922337203685.4775807"},
		},
	}
	quoter := NewQuoter(ledger, testRegistry(t), WithSlippageBps(0))

	min, err := quoter.QuoteStrictSend(context.Background(), "1", "USDC")
	require.NoError(t, err)
	assert.Equal(t, "922337203685.4775807", min)
}

func TestQuoteStrictSendNoRoute(t *testing.T) {
	quoter := NewQuoter(&fakeLedger{}, testRegistry(t))

	_, err := quoter.QuoteStrictSend(context.Background(), "100", "USDC")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ROUTE_UNAVAILABLE))
}

func TestQuoteStrictSendUnknownAsset(t *testing.T) {
	ledger := &fakeLedger{}
	quoter := NewQuoter(ledger, testRegistry(t))

	_, err := quoter.QuoteStrictSend(context.Background(), "100", "DOGE")
	assert.True(t, errors.HasCode(err, errors.ASSET_NOT_FOUND))
	assert.Zero(t, ledger.pathsCalls)
}
